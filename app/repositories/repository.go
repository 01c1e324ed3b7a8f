package repositories

import (
	"context"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store bundles the repositories of one backend together with its shutdown.
type Store struct {
	Posts PostRepository
	Users UserRepository

	closeFn func(ctx context.Context) error
}

// Close releases the underlying database handle.
func (s *Store) Close(ctx context.Context) error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn(ctx)
}

// OpenBadgerStore opens (or creates) a Badger database at path. An empty
// path opens an in-memory database, which is what the tests use.
func OpenBadgerStore(path string, logger badger.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(logger)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(path, 0755); err != nil {
		return nil, errors.Wrap(err, "create badger directory")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open badger at %q", path)
	}

	store := NewBadgerStore(db)
	store.closeFn = func(context.Context) error { return db.Close() }
	return store, nil
}

// NewBadgerStore wraps an already open Badger database. The caller keeps
// ownership of db.
func NewBadgerStore(db *badger.DB) *Store {
	return &Store{
		Posts: NewBadgerPostRepository(db),
		Users: NewBadgerUserRepository(db),
	}
}

// OpenMongoStore connects to MongoDB, verifies the connection and makes sure
// the indexes the repositories depend on exist.
func OpenMongoStore(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongo")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "ping mongo")
	}

	db := client.Database(database)
	if err := EnsureIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	store := NewMongoStore(db)
	store.closeFn = client.Disconnect
	return store, nil
}

// NewMongoStore wraps a MongoDB database handle.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Posts: NewMongoPostRepository(db),
		Users: NewMongoUserRepository(db),
	}
}

// EnsureIndexes creates the unique email index and the tag index used by
// search. Creating an index that already exists is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "create users email index")
	}

	_, err = db.Collection(PostsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tags", Value: 1}},
	})
	if err != nil {
		return errors.Wrap(err, "create posts tags index")
	}
	return nil
}
