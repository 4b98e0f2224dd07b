package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/prasertw/voltbook/internal/domain/models"
	"github.com/prasertw/voltbook/internal/repository"
)

const (
	recordsCollection = "electricity_records"
	usersCollection   = "users"
)

// Client owns the MongoDB connection shared by the repositories.
type Client struct {
	client *mongo.Client
	dbName string
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string, dbName string) (*Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Client{client: client, dbName: dbName}, nil
}

// Close disconnects the underlying MongoDB client.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *Client) collection(name string) *mongo.Collection {
	return c.client.Database(c.dbName).Collection(name)
}

// storeErr wraps driver failures with the retryable sentinel the services
// key their error handling on.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", repository.ErrUnavailable, op, err)
}

// RecordRepository is the MongoDB-backed RecordStore.
type RecordRepository struct {
	coll *mongo.Collection
}

// NewRecordRepository builds the repository over the electricity_records
// collection.
func NewRecordRepository(c *Client) *RecordRepository {
	return &RecordRepository{coll: c.collection(recordsCollection)}
}

type recordDoc struct {
	OID                  primitive.ObjectID `bson:"_id,omitempty"`
	models.BillingRecord `bson:",inline"`
}

func (d recordDoc) toModel() models.BillingRecord {
	rec := d.BillingRecord
	rec.ID = d.OID.Hex()
	return rec
}

// Insert stores a new record and returns the store-assigned id.
func (r *RecordRepository) Insert(ctx context.Context, rec models.BillingRecord) (string, error) {
	res, err := r.coll.InsertOne(ctx, recordDoc{BillingRecord: rec})
	if err != nil {
		return "", storeErr("insert record", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", storeErr("insert record", fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	return oid.Hex(), nil
}

// Update applies a partial field set to an existing record.
func (r *RecordRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return storeErr("update record", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes one record by id.
func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storeErr("delete record", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetByID fetches a single record.
func (r *RecordRepository) GetByID(ctx context.Context, id string) (*models.BillingRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	var doc recordDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, storeErr("get record", err)
	}

	rec := doc.toModel()
	return &rec, nil
}

// Find runs an equality query. The result set is unordered.
func (r *RecordRepository) Find(ctx context.Context, filters repository.Filters) ([]models.BillingRecord, error) {
	filter := bson.M{}
	for field, value := range filters {
		filter[field] = value
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, storeErr("query records", err)
	}
	defer cursor.Close(ctx)

	var docs []recordDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storeErr("decode records", err)
	}

	records := make([]models.BillingRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, doc.toModel())
	}
	return records, nil
}
