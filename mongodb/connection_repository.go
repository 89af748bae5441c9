package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pilab-dev/fitlink/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectionRepository implements domain.ConnectionRepository.
type ConnectionRepository struct {
	collection *mongo.Collection
}

var _ domain.ConnectionRepository = (*ConnectionRepository)(nil)

// NewConnectionRepository creates the repository and ensures its indexes. The
// unique (user_id, provider) index is what makes concurrent upserts safe, so a
// failure to create it is fatal.
func NewConnectionRepository(ctx context.Context, db *mongo.Database) (*ConnectionRepository, error) {
	repo := &ConnectionRepository{
		collection: db.Collection(ConnectionsCollection),
	}
	if err := repo.createIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ConnectionRepository) createIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "provider", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "is_active", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes for %s collection: %w", ConnectionsCollection, err)
	}
	log.Info().Msgf("Indexes for %s collection ensured.", ConnectionsCollection)
	return nil
}

// Upsert creates or refreshes the connection for (userID, provider) with one
// findAndModify. When two first-time upserts race, the loser gets a duplicate
// key error which is reported as domain.ErrConnectionConflict.
func (r *ConnectionRepository) Upsert(ctx context.Context, userID string, provider domain.Provider, cred *domain.Credential, now time.Time) (*domain.Connection, error) {
	filter := bson.M{"user_id": userID, "provider": provider}
	update := bson.M{
		"$set": bson.M{
			"provider_user_id":  cred.ProviderUserID,
			"provider_username": cred.ProviderUsername,
			"provider_email":    cred.ProviderEmail,
			"provider_profile":  cred.Profile,
			"access_token":      cred.AccessToken,
			"refresh_token":     cred.RefreshToken,
			"token_expires_at":  cred.ExpiresAt,
			"scopes":            cred.Scopes,
			"is_active":         true,
			"last_sync_at":      now,
			"updated_at":        now,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var conn domain.Connection
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&conn)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrConnectionConflict
		}
		log.Error().Err(err).Str("userID", userID).Str("provider", provider.String()).Msg("Error upserting connection")
		return nil, storeErr("upsert connection", err)
	}

	return &conn, nil
}

func (r *ConnectionRepository) findOne(ctx context.Context, filter bson.M) (*domain.Connection, error) {
	var conn domain.Connection
	if err := r.collection.FindOne(ctx, filter).Decode(&conn); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("find connection", err)
	}
	return &conn, nil
}

func (r *ConnectionRepository) GetByID(ctx context.Context, id, userID string) (*domain.Connection, error) {
	return r.findOne(ctx, bson.M{"_id": id, "user_id": userID})
}

func (r *ConnectionRepository) FindByID(ctx context.Context, id string) (*domain.Connection, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ConnectionRepository) GetByProvider(ctx context.Context, userID string, provider domain.Provider) (*domain.Connection, error) {
	return r.findOne(ctx, bson.M{"user_id": userID, "provider": provider})
}

func (r *ConnectionRepository) List(ctx context.Context, userID string, activeOnly bool) ([]*domain.Connection, error) {
	filter := bson.M{"user_id": userID}
	if activeOnly {
		filter["is_active"] = true
	}
	return r.find(ctx, filter)
}

func (r *ConnectionRepository) ListActive(ctx context.Context) ([]*domain.Connection, error) {
	return r.find(ctx, bson.M{"is_active": true})
}

func (r *ConnectionRepository) find(ctx context.Context, filter bson.M) ([]*domain.Connection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr("list connections", err)
	}
	defer cursor.Close(ctx)

	conns := make([]*domain.Connection, 0)
	if err := cursor.All(ctx, &conns); err != nil {
		return nil, storeErr("decode connections", err)
	}
	return conns, nil
}

// Update applies only the fields set in patch.
func (r *ConnectionRepository) Update(ctx context.Context, id, userID string, patch *domain.ConnectionPatch, now time.Time) (*domain.Connection, error) {
	set := bson.M{"updated_at": now}
	if patch.AccessToken != nil {
		set["access_token"] = *patch.AccessToken
	}
	if patch.RefreshToken != nil {
		set["refresh_token"] = *patch.RefreshToken
	}
	if patch.TokenExpiresAt != nil {
		set["token_expires_at"] = *patch.TokenExpiresAt
	}
	if patch.IsActive != nil {
		set["is_active"] = *patch.IsActive
	}
	if patch.LastSyncAt != nil {
		set["last_sync_at"] = *patch.LastSyncAt
	}
	if patch.ProviderProfile != nil {
		set["provider_profile"] = patch.ProviderProfile
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var conn domain.Connection
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": set}, opts).Decode(&conn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("update connection", err)
	}
	return &conn, nil
}

// RecordSync touches only the sync bookkeeping fields so it never clobbers a
// token refresh running in parallel.
func (r *ConnectionRepository) RecordSync(ctx context.Context, id string, at time.Time, syncErr *string) error {
	update := bson.M{"$set": bson.M{
		"last_sync_at":    at,
		"last_sync_error": syncErr,
	}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return storeErr("record sync", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ConnectionRepository) Delete(ctx context.Context, id, userID string) error {
	return r.deleteOne(ctx, bson.M{"_id": id, "user_id": userID})
}

func (r *ConnectionRepository) DeleteByProvider(ctx context.Context, userID string, provider domain.Provider) error {
	return r.deleteOne(ctx, bson.M{"user_id": userID, "provider": provider})
}

func (r *ConnectionRepository) deleteOne(ctx context.Context, filter bson.M) error {
	res, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return storeErr("delete connection", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
