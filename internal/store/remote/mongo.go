package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bloodlink/internal/domain"
)

// Mongo stores each collection in the Mongo collection of the same name,
// with documents addressed by their "id" field.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func (m *Mongo) Probe(ctx context.Context) error {
	if err := m.db.Client().Ping(ctx, nil); err != nil {
		return unavailable("probe", err)
	}
	return nil
}

func (m *Mongo) List(ctx context.Context, c domain.Collection) ([]json.RawMessage, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 0}).
		SetSort(bson.M{"_id": 1})
	cursor, err := m.db.Collection(c.String()).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, unavailable("list "+c.String(), err)
	}
	defer cursor.Close(ctx)

	records := []json.RawMessage{}
	for cursor.Next(ctx) {
		record, err := documentJSON(cursor.Current)
		if err != nil {
			return nil, unavailable("list "+c.String(), err)
		}
		records = append(records, record)
	}
	if err := cursor.Err(); err != nil {
		return nil, unavailable("list "+c.String(), err)
	}
	return records, nil
}

func (m *Mongo) Create(ctx context.Context, c domain.Collection, record json.RawMessage) error {
	doc, err := jsonDocument(record)
	if err != nil {
		return err
	}
	if _, err := m.db.Collection(c.String()).InsertOne(ctx, doc); err != nil {
		return unavailable("create "+c.String(), err)
	}
	return nil
}

func (m *Mongo) Update(ctx context.Context, c domain.Collection, id string, patch json.RawMessage) error {
	fields, err := jsonDocument(patch)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	if _, err := m.db.Collection(c.String()).UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields}); err != nil {
		return unavailable("update "+c.String(), err)
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, c domain.Collection, id string) error {
	if _, err := m.db.Collection(c.String()).DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return unavailable("delete "+c.String(), err)
	}
	return nil
}

// jsonDocument converts a JSON object into a BSON document.
func jsonDocument(raw json.RawMessage) (bson.M, error) {
	var doc bson.M
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil, fmt.Errorf("remote: decode record: %w", err)
	}
	return doc, nil
}

// documentJSON renders a stored document as relaxed JSON.
func documentJSON(doc bson.Raw) (json.RawMessage, error) {
	out, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, fmt.Errorf("remote: encode record: %w", err)
	}
	return json.RawMessage(out), nil
}
