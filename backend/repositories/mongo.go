package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/logging"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongoStore connects to MongoDB, ensures the indexes and returns the
// Mongo-backed repositories sharing cb.
func NewMongoStore(ctx context.Context, uri, dbName string, cb *gobreaker.CircuitBreaker) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	logging.Logger.Infof("Event ID: MONGO_CONNECTED, Description: Connected to MongoDB database %s", dbName)

	db := client.Database(dbName)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Store{
		Collaborators: NewCollaboratorRepo(db, cb),
		Projects:      NewProjectRepo(db, cb),
		Tasks:         NewTaskRepo(db, cb),
		Users:         NewUserRepo(db, cb),
		Ping: func(ctx context.Context) error {
			return run(cb, func() error { return client.Ping(ctx, readpref.Primary()) })
		},
		Close: client.Disconnect,
		Clear: func(ctx context.Context) error {
			for _, name := range []string{collaboratorsCollection, projectsCollection, tasksCollection} {
				if err := run(cb, func() error {
					_, err := db.Collection(name).DeleteMany(ctx, bson.M{})
					return err
				}); err != nil {
					return fmt.Errorf("clear %s: %w", name, err)
				}
			}
			return nil
		},
	}, nil
}

// EnsureIndexes creates the unique and lookup indexes. Creating an index that
// already exists with the same definition is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		collaboratorsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
			{Keys: bson.D{{Key: "matricula", Value: 1}}, Options: options.Index().SetUnique(true).SetName("matricula_unique")},
		},
		projectsCollection: {
			{Keys: bson.D{{Key: "colaboradores.colaborador", Value: 1}}, Options: options.Index().SetName("assigned_collaborators")},
			{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("status")},
		},
		tasksCollection: {
			{Keys: bson.D{{Key: "projeto", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("project_status")},
			{Keys: bson.D{{Key: "responsavel", Value: 1}}, Options: options.Index().SetName("responsible")},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		},
	}

	for collection, idx := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

var dupIndexPattern = regexp.MustCompile(`index: (\S+) dup key`)

// translateWriteError maps a duplicate key failure to *models.DuplicateKeyError
// naming the field behind the violated index.
func translateWriteError(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return &models.DuplicateKeyError{Field: duplicateField(err.Error())}
}

func duplicateField(msg string) string {
	m := dupIndexPattern.FindStringSubmatch(msg)
	if m == nil {
		return "value"
	}
	name := m[1]
	if i := strings.LastIndex(name, "$"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "_unique")
	name = strings.TrimSuffix(name, "_1")
	return name
}

// searchPattern builds a case-insensitive regex matching s literally.
func searchPattern(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func searchAny(s string, fields ...string) bson.A {
	or := bson.A{}
	for _, f := range fields {
		or = append(or, bson.M{f: searchPattern(s)})
	}
	return or
}

func pageOptions(p utils.Pagination, sort bson.D) *options.FindOptions {
	return options.Find().SetSort(sort).SetSkip(p.Skip()).SetLimit(p.Limit)
}

// findPage runs the count and the page query for filter.
func findPage[T any](ctx context.Context, cb *gobreaker.CircuitBreaker, coll *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]T, int64, error) {
	total, err := execute(cb, func() (int64, error) {
		return coll.CountDocuments(ctx, filter)
	})
	if err != nil {
		return nil, 0, err
	}
	items, err := findAll[T](ctx, cb, coll, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func findAll[T any](ctx context.Context, cb *gobreaker.CircuitBreaker, coll *mongo.Collection, filter any, opts *options.FindOptions) ([]T, error) {
	return execute(cb, func() ([]T, error) {
		cursor, err := coll.Find(ctx, filter, opts)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		items := []T{}
		if err := cursor.All(ctx, &items); err != nil {
			return nil, err
		}
		return items, nil
	})
}

func findOne[T any](ctx context.Context, cb *gobreaker.CircuitBreaker, coll *mongo.Collection, filter any, entity string) (*T, error) {
	return execute(cb, func() (*T, error) {
		var item T
		err := coll.FindOne(ctx, filter).Decode(&item)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NotFound(entity)
		}
		if err != nil {
			return nil, err
		}
		return &item, nil
	})
}

func insertOne(ctx context.Context, cb *gobreaker.CircuitBreaker, coll *mongo.Collection, doc any) (primitive.ObjectID, error) {
	return execute(cb, func() (primitive.ObjectID, error) {
		res, err := coll.InsertOne(ctx, doc)
		if err != nil {
			return primitive.NilObjectID, translateWriteError(err)
		}
		id, _ := res.InsertedID.(primitive.ObjectID)
		return id, nil
	})
}

func replaceOne(ctx context.Context, cb *gobreaker.CircuitBreaker, coll *mongo.Collection, id primitive.ObjectID, doc any, entity string) error {
	return run(cb, func() error {
		res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
		if err != nil {
			return translateWriteError(err)
		}
		if res.MatchedCount == 0 {
			return models.NotFound(entity)
		}
		return nil
	})
}

// setFields builds a $set of every field of doc except _id and skip.
func setFields(doc any, skip ...string) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	fields := bson.M{}
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	delete(fields, "_id")
	for _, f := range skip {
		delete(fields, f)
	}
	return bson.M{"$set": fields}, nil
}

// saveFields overwrites the fields of the document with the given id,
// leaving the skipped ones as stored.
func saveFields(ctx context.Context, cb *gobreaker.CircuitBreaker, coll *mongo.Collection, id primitive.ObjectID, doc any, entity string, skip ...string) error {
	update, err := setFields(doc, skip...)
	if err != nil {
		return fmt.Errorf("encode %s: %w", strings.ToLower(entity), err)
	}
	return run(cb, func() error {
		res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update)
		if err != nil {
			return translateWriteError(err)
		}
		if res.MatchedCount == 0 {
			return models.NotFound(entity)
		}
		return nil
	})
}

func deleteOne(ctx context.Context, cb *gobreaker.CircuitBreaker, coll *mongo.Collection, id primitive.ObjectID, entity string) error {
	return run(cb, func() error {
		res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return models.NotFound(entity)
		}
		return nil
	})
}

func byIDs(ids []primitive.ObjectID) bson.M {
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return bson.M{"_id": bson.M{"$in": ids}}
}

func touch(at time.Time) bson.M {
	return bson.M{"updatedAt": at}
}
