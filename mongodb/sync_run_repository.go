package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pilab-dev/fitlink/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SyncRunRepository implements domain.SyncRunRepository.
type SyncRunRepository struct {
	collection *mongo.Collection
}

var _ domain.SyncRunRepository = (*SyncRunRepository)(nil)

func NewSyncRunRepository(ctx context.Context, db *mongo.Database) (*SyncRunRepository, error) {
	repo := &SyncRunRepository{collection: db.Collection(SyncRunsCollection)}

	_, err := repo.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "connection_id", Value: 1}, {Key: "started_at", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes for %s collection: %w", SyncRunsCollection, err)
	}
	log.Info().Msgf("Indexes for %s collection ensured.", SyncRunsCollection)

	return repo, nil
}

func (r *SyncRunRepository) Create(ctx context.Context, run *domain.SyncRun) error {
	if _, err := r.collection.InsertOne(ctx, run); err != nil {
		return storeErr("create sync run", err)
	}
	return nil
}

// Complete only matches runs still in the running state. A miss is resolved
// with a second read to tell a finished run from an unknown id.
func (r *SyncRunRepository) Complete(ctx context.Context, id string, status domain.SyncStatus, counters domain.SyncCounters,
	errMsg *string, errDetail map[string]any, at time.Time,
) (*domain.SyncRun, error) {
	filter := bson.M{"_id": id, "status": domain.SyncStatusRunning}
	update := bson.M{"$set": bson.M{
		"status":          status,
		"completed_at":    at,
		"records_fetched": counters.Fetched,
		"records_created": counters.Created,
		"records_updated": counters.Updated,
		"records_skipped": counters.Skipped,
		"error_message":   errMsg,
		"error_detail":    errDetail,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var run domain.SyncRun
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&run)
	if err == nil {
		return &run, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storeErr("complete sync run", err)
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, storeErr("complete sync run", err)
	}
	if n > 0 {
		return nil, domain.ErrSyncRunCompleted
	}
	return nil, domain.ErrNotFound
}

func (r *SyncRunRepository) History(ctx context.Context, connectionID string, limit int) ([]*domain.SyncRun, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"connection_id": connectionID}, opts)
	if err != nil {
		return nil, storeErr("list sync runs", err)
	}
	defer cursor.Close(ctx)

	runs := make([]*domain.SyncRun, 0)
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, storeErr("decode sync runs", err)
	}
	return runs, nil
}

func (r *SyncRunRepository) Latest(ctx context.Context, connectionID string) (*domain.SyncRun, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "started_at", Value: -1}, {Key: "_id", Value: -1}})

	var run domain.SyncRun
	if err := r.collection.FindOne(ctx, bson.M{"connection_id": connectionID}, opts).Decode(&run); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("latest sync run", err)
	}
	return &run, nil
}
