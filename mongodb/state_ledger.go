package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/pilab-dev/fitlink/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StateLedger implements domain.StateLedger. A TTL index purges states the
// server-side reaper finds expired; Consume does not rely on it.
type StateLedger struct {
	collection *mongo.Collection
}

var _ domain.StateLedger = (*StateLedger)(nil)

func NewStateLedger(ctx context.Context, db *mongo.Database) (*StateLedger, error) {
	ledger := &StateLedger{collection: db.Collection(StatesCollection)}

	_, err := ledger.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes for %s collection: %w", StatesCollection, err)
	}
	log.Info().Msgf("Indexes for %s collection ensured.", StatesCollection)

	return ledger, nil
}

func (l *StateLedger) Save(ctx context.Context, state *domain.HandshakeState) error {
	if _, err := l.collection.InsertOne(ctx, state); err != nil {
		return storeErr("save state", err)
	}
	return nil
}

func (l *StateLedger) Lookup(ctx context.Context, state string) (*domain.HandshakeState, error) {
	var hs domain.HandshakeState
	if err := l.collection.FindOne(ctx, bson.M{"state": state}).Decode(&hs); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("lookup state", err)
	}
	return &hs, nil
}

// Consume removes the record in the same operation that reads it, so two
// callbacks racing on one state cannot both succeed.
func (l *StateLedger) Consume(ctx context.Context, state string, provider domain.Provider) (*domain.HandshakeState, error) {
	var hs domain.HandshakeState
	err := l.collection.FindOneAndDelete(ctx, bson.M{"state": state, "provider": provider}).Decode(&hs)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("consume state", err)
	}
	return &hs, nil
}
