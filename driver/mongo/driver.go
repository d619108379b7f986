// Package mongo implements core.Driver for MongoDB. Collections map to
// schemas, documents to records and LIKE patterns to anchored,
// case-insensitive regular expressions.
package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/leandroluk/querykit/core"
	"go.mongodb.org/mongo-driver/bson"
	mgo "go.mongodb.org/mongo-driver/mongo"
	mopt "go.mongodb.org/mongo-driver/mongo/options"
)

const driverName = "mongo"

// ErrNoDatabase is returned when neither the schema nor the driver names a
// database.
var ErrNoDatabase = errors.New("mongo driver: database name is empty")

// mongoTransaction ends its session on Commit and on Rollback.
type mongoTransaction struct {
	session mgo.Session
}

func (t *mongoTransaction) Commit(ctx context.Context) error {
	defer t.session.EndSession(ctx)
	return core.NewDriverError(driverName, "commit", t.session.CommitTransaction(ctx))
}

func (t *mongoTransaction) Rollback(ctx context.Context) error {
	defer t.session.EndSession(ctx)
	return core.NewDriverError(driverName, "rollback", t.session.AbortTransaction(ctx))
}

//region MongoDriver

type MongoDriver struct {
	client          *mgo.Client
	defaultDatabase string
}

var _ core.Driver = (*MongoDriver)(nil)

func NewMongoDriver(ctx context.Context, uri string, defaultDB string) (*MongoDriver, error) {
	opts := mopt.Client().ApplyURI(uri)
	opts.SetConnectTimeout(10 * time.Second).SetServerSelectionTimeout(10 * time.Second)
	client, err := mgo.Connect(ctx, opts)
	if err != nil {
		return nil, core.NewDriverError(driverName, "connect", err)
	}
	return &MongoDriver{client: client, defaultDatabase: defaultDB}, nil
}

func (driver *MongoDriver) coll(schema *core.SchemaCore) (*mgo.Collection, error) {
	dbName := driver.defaultDatabase
	if schema.Database != "" {
		dbName = schema.Database
	}
	if dbName == "" {
		return nil, ErrNoDatabase
	}
	return driver.client.Database(dbName).Collection(schema.Collection), nil
}

// withSession binds the transaction carried by ctx, if any.
func (driver *MongoDriver) withSession(ctx context.Context) context.Context {
	if tx := core.TransactionFrom(ctx); tx != nil {
		if mt, ok := tx.(*mongoTransaction); ok {
			return mgo.NewSessionContext(ctx, mt.session)
		}
	}
	return ctx
}

func (driver *MongoDriver) Connect(ctx context.Context) error {
	return core.NewDriverError(driverName, "connect", driver.client.Ping(ctx, nil))
}

func (driver *MongoDriver) Ping(ctx context.Context) error {
	return core.NewDriverError(driverName, "ping", driver.client.Ping(ctx, nil))
}

func (driver *MongoDriver) Close(ctx context.Context) error {
	return core.NewDriverError(driverName, "close", driver.client.Disconnect(ctx))
}

func (driver *MongoDriver) Transaction(ctx context.Context) (core.Transaction, error) {
	session, err := driver.client.StartSession()
	if err != nil {
		return nil, core.NewDriverError(driverName, "begin", err)
	}
	if err := session.StartTransaction(); err != nil {
		session.EndSession(ctx)
		return nil, core.NewDriverError(driverName, "begin", err)
	}
	return &mongoTransaction{session: session}, nil
}

func (driver *MongoDriver) Insert(ctx context.Context, schema *core.SchemaCore, records ...core.Record) error {
	if len(records) == 0 {
		return nil
	}
	collection, err := driver.coll(schema)
	if err != nil {
		return core.NewDriverError(driverName, "insert", err)
	}
	documentList := make([]any, 0, len(records))
	for _, record := range records {
		documentList = append(documentList, bson.M(record))
	}
	_, err = collection.InsertMany(driver.withSession(ctx), documentList)
	return core.NewDriverError(driverName, "insert", err)
}

// FindMany runs the descriptor and nests any requested relations into the
// returned records.
func (driver *MongoDriver) FindMany(ctx context.Context, schema *core.SchemaCore, query *core.Descriptor) ([]core.Record, error) {
	collection, err := driver.coll(schema)
	if err != nil {
		return nil, core.NewDriverError(driverName, "find", err)
	}
	if query == nil {
		query = &core.Descriptor{}
	}

	findOpts := mopt.Find()
	if len(query.Order) > 0 {
		findOpts.SetSort(buildSort(query.Order))
	}
	if projection := buildProjection(schema, query); projection != nil {
		findOpts.SetProjection(projection)
	}
	if query.Limit > 0 {
		findOpts.SetLimit(int64(query.Limit))
	}
	if query.Offset > 0 {
		findOpts.SetSkip(int64(query.Offset))
	}

	sessionCtx := driver.withSession(ctx)
	cursor, err := collection.Find(sessionCtx, buildFilter(coerceCondition(schema, query.Where)), findOpts)
	if err != nil {
		return nil, core.NewDriverError(driverName, "find", err)
	}
	defer cursor.Close(sessionCtx)

	resultList := []core.Record{}
	for cursor.Next(sessionCtx) {
		var document bson.M
		if err := cursor.Decode(&document); err != nil {
			return nil, core.NewDriverError(driverName, "find", err)
		}
		resultList = append(resultList, core.Record(document))
	}
	if err := cursor.Err(); err != nil {
		return nil, core.NewDriverError(driverName, "find", err)
	}

	if len(query.Include) > 0 {
		if err := core.ResolveIncludes(ctx, driver, resultList, query.Include); err != nil {
			return nil, err
		}
	}
	return resultList, nil
}

//endregion
