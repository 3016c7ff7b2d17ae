package floorstore

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/indoorroute/pkg/connector"
	errs "github.com/matzehuels/indoorroute/pkg/errors"
	"github.com/matzehuels/indoorroute/pkg/floorplan"
)

// ConnectorsFile is the connector table's file name inside a data directory.
const ConnectorsFile = "verticals.json"

// DirSource reads <dir>/<floor>.json and <dir>/verticals.json.
type DirSource struct {
	dir string
}

// NewDirSource returns a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Dir returns the data directory.
func (s *DirSource) Dir() string { return s.dir }

// Floor implements Source. Floor keys are validated before touching the
// filesystem.
func (s *DirSource) Floor(ctx context.Context, floor string) (*floorplan.FloorData, error) {
	if err := errs.ValidateFloorKey(floor); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, floor+".json"))
	if os.IsNotExist(err) {
		return nil, errs.New(errs.ErrCodeNotFound, "floor %s not found in %s", floor, s.dir)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "open floor %s", floor)
	}
	defer f.Close()
	return floorplan.Decode(f, floor)
}

// Connectors implements Source. A missing table means a single-floor
// building and yields no connectors.
func (s *DirSource) Connectors(ctx context.Context) ([]connector.Connector, error) {
	f, err := os.Open(filepath.Join(s.dir, ConnectorsFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "open connector table")
	}
	defer f.Close()
	return connector.DecodeTable(f)
}

// Floors implements Source.
func (s *DirSource) Floors(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "list %s", s.dir)
	}
	var floors []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == ConnectorsFile || filepath.Ext(name) != ".json" {
			continue
		}
		key := strings.TrimSuffix(name, ".json")
		if errs.ValidateFloorKey(key) == nil {
			floors = append(floors, key)
		}
	}
	slices.Sort(floors)
	return floors, nil
}

var _ Source = (*DirSource)(nil)
