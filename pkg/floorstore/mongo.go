package floorstore

import (
	"context"
	"errors"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/indoorroute/pkg/connector"
	errs "github.com/matzehuels/indoorroute/pkg/errors"
	"github.com/matzehuels/indoorroute/pkg/floorplan"
)

// Collection names used by MongoSource.
const (
	FloorsCollection     = "floors"
	ConnectorsCollection = "verticals"
)

// MongoSource reads floors from the "floors" collection (one document per
// floor, keyed by _id) and connectors from the "verticals" collection. The
// connector table is read in _id order, so ObjectIds give insertion order
// and explicit _id values give authored order.
type MongoSource struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoSource connects to uri and uses database name.
func NewMongoSource(ctx context.Context, uri, name string) (*MongoSource, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "connect to mongodb")
	}
	return &MongoSource{client: client, db: client.Database(name)}, nil
}

// Floor implements Source.
func (s *MongoSource) Floor(ctx context.Context, floor string) (*floorplan.FloorData, error) {
	if err := errs.ValidateFloorKey(floor); err != nil {
		return nil, err
	}
	var data floorplan.FloorData
	err := s.db.Collection(FloorsCollection).FindOne(ctx, bson.M{"_id": floor}).Decode(&data)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.New(errs.ErrCodeNotFound, "floor %s not found", floor)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "load floor %s", floor)
	}
	data.Normalize(floor)
	if err := data.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "floor %s", floor)
	}
	return &data, nil
}

// Connectors implements Source.
func (s *MongoSource) Connectors(ctx context.Context) ([]connector.Connector, error) {
	cur, err := s.db.Collection(ConnectorsCollection).Find(ctx, bson.M{}, connectorsFind())
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "query connectors")
	}
	var out []connector.Connector
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "decode connectors")
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

// connectorsFind fixes the table order, which decides BFS tie-breaks.
func connectorsFind() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
}

// Floors implements Source.
func (s *MongoSource) Floors(ctx context.Context) ([]string, error) {
	values, err := s.db.Collection(FloorsCollection).Distinct(ctx, "_id", bson.M{})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "list floors")
	}
	keys := make([]string, 0, len(values))
	for _, v := range values {
		if k, ok := v.(string); ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Close disconnects the client.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Source = (*MongoSource)(nil)
