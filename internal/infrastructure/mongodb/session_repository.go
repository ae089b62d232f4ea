package mongodb

import (
	"context"
	"fmt"

	"github.com/morevans/booking-service/internal/domain"
	"github.com/morevans/booking-service/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollection = "wizard_sessions"

// SessionRepository persists the wizard session mirror in MongoDB
type SessionRepository struct {
	collection *mongodb.InstrumentedCollection
}

func NewSessionRepository(client *mongodb.InstrumentedClient) *SessionRepository {
	repo := &SessionRepository{
		collection: client.Collection(sessionCollection),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *SessionRepository) ensureIndexes(ctx context.Context) {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sessionId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: -1}}},
	}
	for _, model := range models {
		r.collection.CreateIndex(ctx, model)
	}
}

// Save upserts the session by its session id
func (r *SessionRepository) Save(ctx context.Context, session *domain.WizardSession) error {
	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"sessionId": session.SessionID}

	if _, err := r.collection.ReplaceOne(ctx, filter, session, opts); err != nil {
		return fmt.Errorf("failed to save wizard session: %w", err)
	}
	return nil
}

// FindBySessionID returns (nil, nil) when the session does not exist
func (r *SessionRepository) FindBySessionID(ctx context.Context, sessionID string) (*domain.WizardSession, error) {
	var session domain.WizardSession
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find wizard session: %w", err)
	}
	return &session, nil
}

// Delete removes the session; deleting a missing session is not an error
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"sessionId": sessionID}); err != nil {
		return fmt.Errorf("failed to delete wizard session: %w", err)
	}
	return nil
}

// ListDrafts returns draft sessions ordered by most recently updated
func (r *SessionRepository) ListDrafts(ctx context.Context, limit, offset int64) ([]*domain.WizardSession, error) {
	opts := options.Find().
		SetSort(mongodb.SortDescending("updatedAt")).
		SetSkip(offset).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"status": domain.SessionStatusDraft}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*domain.WizardSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode draft sessions: %w", err)
	}
	return sessions, nil
}
