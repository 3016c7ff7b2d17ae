package router

import (
	"slices"
	"strings"

	errs "github.com/matzehuels/indoorroute/pkg/errors"
	"github.com/matzehuels/indoorroute/pkg/floorplan"
)

// Strategy is one way of resolving an identifier to places.
type Strategy int

const (
	// ByID matches place ids.
	ByID Strategy = iota
	// ByName matches place names. Several places may share one.
	ByName
	// ByEntranceMembership treats the identifier as an entrance id and
	// wraps that entrance in a zero-footprint place.
	ByEntranceMembership
)

// String returns the strategy name used in logs.
func (s Strategy) String() string {
	switch s {
	case ByID:
		return "id"
	case ByName:
		return "name"
	case ByEntranceMembership:
		return "entrance"
	default:
		return "unknown"
	}
}

// ParseStrategy parses a strategy name as printed by String.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "id":
		return ByID, nil
	case "name":
		return ByName, nil
	case "entrance":
		return ByEntranceMembership, nil
	}
	return 0, errs.New(errs.ErrCodeInvalidConfig, "unknown lookup strategy %q (want id, name or entrance)", s)
}

// DefaultPrecedence is the lookup order used by [NewPlaceFinder].
var DefaultPrecedence = []Strategy{ByID, ByName, ByEntranceMembership}

// EntrancePlaceType is the Type of places synthesized from a raw entrance.
const EntrancePlaceType = "entrance"

// PlaceFinder resolves identifiers to place records.
type PlaceFinder struct {
	g      *floorplan.Graph
	order  []Strategy
	byID   map[string][]int
	byName map[string][]int
}

// NewPlaceFinder indexes g's places. If order is empty, DefaultPrecedence
// is used.
func NewPlaceFinder(g *floorplan.Graph, order ...Strategy) *PlaceFinder {
	if len(order) == 0 {
		order = DefaultPrecedence
	}
	f := &PlaceFinder{
		g:      g,
		order:  order,
		byID:   make(map[string][]int),
		byName: make(map[string][]int),
	}
	for i, p := range g.Places() {
		f.byID[p.ID] = append(f.byID[p.ID], i)
		f.byName[p.Name] = append(f.byName[p.Name], i)
	}
	return f
}

// FindPlace returns the first place matched by the first strategy that has
// any match, along with that strategy.
func (f *PlaceFinder) FindPlace(identifier string) (floorplan.Place, Strategy, bool) {
	for _, s := range f.order {
		if ps := f.lookup(s, identifier); len(ps) > 0 {
			return ps[0], s, true
		}
	}
	return floorplan.Place{}, 0, false
}

// FindCandidates returns every place whose id or name equals identifier:
// id matches first, then name matches, without repeats. When nothing
// matches, the entrance strategy is tried.
func (f *PlaceFinder) FindCandidates(identifier string) []floorplan.Place {
	idx := slices.Clone(f.byID[identifier])
	for _, i := range f.byName[identifier] {
		if !slices.Contains(idx, i) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return f.lookup(ByEntranceMembership, identifier)
	}

	places := f.g.Places()
	out := make([]floorplan.Place, len(idx))
	for k, i := range idx {
		out[k] = places[i]
	}
	return out
}

// PlaceWithEntrance returns the first place listing entranceID among its
// entrances.
func (f *PlaceFinder) PlaceWithEntrance(entranceID string) (floorplan.Place, bool) {
	for _, p := range f.g.Places() {
		if slices.Contains(p.EntranceNodes, entranceID) {
			return p, true
		}
	}
	return floorplan.Place{}, false
}

func (f *PlaceFinder) lookup(s Strategy, identifier string) []floorplan.Place {
	places := f.g.Places()
	switch s {
	case ByID, ByName:
		index := f.byID
		if s == ByName {
			index = f.byName
		}
		var out []floorplan.Place
		for _, i := range index[identifier] {
			out = append(out, places[i])
		}
		return out
	case ByEntranceMembership:
		e, ok := f.g.Node(identifier)
		if !ok || !e.IsEntrance() {
			return nil
		}
		return []floorplan.Place{{
			ID:            e.ID,
			Name:          e.ID,
			Type:          EntrancePlaceType,
			EntranceNodes: []string{e.ID},
			Floor:         e.Floor,
			Centroid:      e.Point(),
		}}
	}
	return nil
}
