package floorplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	errs "github.com/matzehuels/indoorroute/pkg/errors"
)

var (
	// ErrEmptyNodeID is returned by [FloorData.Validate] when a node or
	// entrance has no id.
	ErrEmptyNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [FloorData.Validate] when two nodes
	// (path or entrance) share an id. Ids must be unique per floor.
	ErrDuplicateNodeID = errors.New("duplicate node ID")
)

// Decode reads one floor's JSON document and stamps floor onto every node,
// entrance and place that does not already carry a floor key.
func Decode(r io.Reader, floor string) (*FloorData, error) {
	var data FloorData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode floor %s", floor)
	}
	data.Normalize(floor)
	if err := data.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "floor %s", floor)
	}
	return &data, nil
}

// Normalize fills in missing floor keys and node types. It is called once at
// load time; the rest of the system trusts the stamped values.
func (d *FloorData) Normalize(floor string) {
	if floor != "" {
		d.Floor = floor
	}
	for i := range d.Nodes {
		if d.Nodes[i].Floor == "" {
			d.Nodes[i].Floor = d.Floor
		}
		if d.Nodes[i].Type == "" {
			d.Nodes[i].Type = NodeTypePath
		}
	}
	for i := range d.Entrances {
		if d.Entrances[i].Floor == "" {
			d.Entrances[i].Floor = d.Floor
		}
		d.Entrances[i].Type = NodeTypeEntrance
	}
	for i := range d.Places {
		if d.Places[i].Floor == "" {
			d.Places[i].Floor = d.Floor
		}
	}
}

// Validate checks id uniqueness across path nodes and entrances.
func (d *FloorData) Validate() error {
	seen := make(map[string]struct{}, len(d.Nodes)+len(d.Entrances))
	check := func(n Node) error {
		if n.ID == "" {
			return ErrEmptyNodeID
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
		}
		seen[n.ID] = struct{}{}
		return nil
	}
	for _, n := range d.Nodes {
		if err := check(n); err != nil {
			return err
		}
	}
	for _, n := range d.Entrances {
		if err := check(n); err != nil {
			return err
		}
	}
	return nil
}
