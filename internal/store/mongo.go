package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is the production Store, backed by a MongoDB database. One instance is
// constructed at startup and handed to every service (no package-level client).
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo connects to MongoDB and pings it before returning.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("unable to create mongo client: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("unable to ping mongo: %w", err)
	}

	return &Mongo{client: client, db: client.Database(database)}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) GetOne(ctx context.Context, collection, key string, dest interface{}) error {
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": key}).Decode(dest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return classify("getOne", err)
	}
	return nil
}

func (m *Mongo) ListMany(ctx context.Context, collection string, q Query, dest interface{}) (string, error) {
	filter, err := buildFilter(q)
	if err != nil {
		return "", err
	}

	opts := options.Find()
	if q.Sort != nil {
		dir := 1
		if q.Sort.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.Sort.Field, Value: dir}, {Key: "_id", Value: 1}})
	} else {
		opts.SetSort(bson.D{{Key: "_id", Value: 1}})
	}
	if q.Page.Size > 0 {
		// one extra record to know whether another page exists
		opts.SetLimit(int64(q.Page.Size) + 1)
	}

	cur, err := m.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return "", classify("listMany", err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return "", classify("listMany", err)
	}

	next := ""
	if q.Page.Size > 0 && len(docs) > q.Page.Size {
		docs = docs[:q.Page.Size]
		next = nextCursor(docs[len(docs)-1], q.Sort)
	}

	return next, decodeDocs(docs, dest)
}

func (m *Mongo) Create(ctx context.Context, collection, key string, doc interface{}) (string, error) {
	raw, err := toDoc(doc)
	if err != nil {
		return "", &BackendError{Op: "create", Err: err}
	}
	if key == "" {
		key = uuid.NewString()
	}
	raw["_id"] = key
	now := time.Now().UTC()
	raw["createdAt"] = now
	raw["updatedAt"] = now

	if _, err := m.db.Collection(collection).InsertOne(ctx, raw); err != nil {
		return "", classify("create", err)
	}
	return key, nil
}

func (m *Mongo) Update(ctx context.Context, collection, key string, partial map[string]interface{}, dest interface{}) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for path, value := range partial {
		set[path] = value
	}

	res := m.db.Collection(collection).FindOneAndUpdate(ctx,
		bson.M{"_id": key},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return classify("update", err)
	}
	if dest == nil {
		return nil
	}
	if err := res.Decode(dest); err != nil {
		return classify("update", err)
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, collection, key string) (bool, error) {
	res, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return false, classify("delete", err)
	}
	return res.DeletedCount > 0, nil
}

// WithTransaction runs fn inside a MongoDB multi-document transaction.
// Requires the deployment to be a replica set or sharded cluster.
func (m *Mongo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return classify("transaction", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

var mongoOps = map[Op]string{
	OpEq:  "$eq",
	OpNe:  "$ne",
	OpLt:  "$lt",
	OpLte: "$lte",
	OpGt:  "$gt",
	OpGte: "$gte",
}

func buildFilter(q Query) (bson.M, error) {
	conditions := bson.M{}
	for _, f := range q.Filters {
		op, ok := mongoOps[f.Op]
		if !ok {
			return nil, &QueryError{Reason: "unknown operator " + string(f.Op)}
		}
		field, ok := conditions[f.Field].(bson.M)
		if !ok {
			field = bson.M{}
			conditions[f.Field] = field
		}
		field[op] = f.Value
	}

	if q.Page.Cursor == "" {
		return conditions, nil
	}

	cur, err := decodeCursor(q.Page.Cursor)
	if err != nil {
		return nil, &QueryError{Reason: err.Error()}
	}

	if q.Sort == nil {
		id, ok := conditions["_id"].(bson.M)
		if !ok {
			id = bson.M{}
			conditions["_id"] = id
		}
		id["$gt"] = cur.ID
		return conditions, nil
	}

	past := "$gt"
	if q.Sort.Desc {
		past = "$lt"
	}
	// resume strictly after the cursor record, using _id as tiebreak
	resume := bson.M{"$or": bson.A{
		bson.M{q.Sort.Field: bson.M{past: cur.Value}},
		bson.M{q.Sort.Field: cur.Value, "_id": bson.M{"$gt": cur.ID}},
	}}
	return bson.M{"$and": bson.A{conditions, resume}}, nil
}

func classify(op string, err error) error {
	if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(err.Error(), "server selection") {
		return &NetworkError{Op: op, Err: err}
	}
	return &BackendError{Op: op, Err: err}
}
