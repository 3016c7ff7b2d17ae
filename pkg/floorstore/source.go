// Package floorstore loads floor graphs and the connector table.
//
// A [Source] supplies the two external inputs of the router: one document
// per floor ({nodes, entrances, places}) and one building-wide connector
// table ({verticals}). [DirSource] reads them from JSON files and
// [MongoSource] from MongoDB collections.
package floorstore

import (
	"context"

	"github.com/matzehuels/indoorroute/pkg/connector"
	"github.com/matzehuels/indoorroute/pkg/floorplan"
)

// Source supplies floor data and connectors.
type Source interface {
	// Floor returns the normalized, validated data for one floor. An
	// unknown floor yields a NOT_FOUND error.
	Floor(ctx context.Context, floor string) (*floorplan.FloorData, error)

	// Connectors returns the normalized connector table.
	Connectors(ctx context.Context) ([]connector.Connector, error)

	// Floors lists the available floor keys in sorted order.
	Floors(ctx context.Context) ([]string, error)
}
