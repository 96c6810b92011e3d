package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the service.
const (
	CollectionTodos    = "todos"
	CollectionUsers    = "users"
	CollectionSessions = "sessions"
)

// Store is the process-wide handle to the document database. It is constructed
// once at startup and passed into repositories; lifecycle is Connect at boot
// and Disconnect at shutdown.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client, verifies connectivity with a ping and returns the
// store handle. The caller owns the handle and must call Disconnect.
func Connect(ctx context.Context, uri, dbName string, timeout time.Duration) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Collection returns a handle to the named collection.
func (s *Store) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// WithTransaction runs fn inside a session transaction. The session is ended
// on every exit path; the transaction is committed when fn returns nil and
// aborted otherwise. Requires the deployment to support transactions
// (replica set or sharded cluster).
func (s *Store) WithTransaction(ctx context.Context, fn func(sc mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	sess, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)
	return sess.WithTransaction(ctx, fn)
}

// Ping verifies the connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Disconnect releases the underlying connection pool.
func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
