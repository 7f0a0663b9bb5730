package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// TxRunner runs fn atomically. The ctx handed to fn must be used for every
// store call that belongs to the transaction.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Reads inside a transaction see one snapshot; a concurrent write to a
// document the transaction also writes is a write conflict, which the
// driver retries.
var txOptions = options.Transaction().
	SetReadConcern(readconcern.Snapshot()).
	SetWriteConcern(writeconcern.Majority())

// MongoTxRunner relies on the driver's WithTransaction, which retries the
// callback on TransientTransactionError and the commit on
// UnknownTransactionCommitResult. Requires a replica set.
type MongoTxRunner struct {
	client *mongo.Client
}

func NewTxRunner(db *mongo.Database) *MongoTxRunner {
	return &MongoTxRunner{client: db.Client()}
}

func (r *MongoTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txOptions)
	return err
}
