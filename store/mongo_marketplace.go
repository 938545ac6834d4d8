package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/OmPrakash-X/Konnekt-sub001/models"
)

type mongoSessions struct {
	c *mongo.Collection
}

func (r *mongoSessions) Create(ctx context.Context, s *models.Session) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, s)
	return mapMongoErr(err)
}

func (r *mongoSessions) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	var s models.Session
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, mapMongoErr(err)
	}
	return &s, nil
}

func (r *mongoSessions) ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.Session, error) {
	filter := bson.M{"$or": bson.A{bson.M{"provider": userID}, bson.M{"learner": userID}}}
	cursor, err := r.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []models.Session{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// transition is a status CAS: the expected statuses are part of the update
// filter, so at most one concurrent caller can win.
func (r *mongoSessions) transition(ctx context.Context, id primitive.ObjectID, from []string, update bson.M) error {
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": id, "status": bson.M{"$in": from}}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStaleTransition
	}
	return nil
}

func (r *mongoSessions) Confirm(ctx context.Context, id primitive.ObjectID) error {
	return r.transition(ctx, id, []string{models.SessionPending},
		bson.M{"$set": bson.M{"status": models.SessionConfirmed}})
}

func (r *mongoSessions) Complete(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.transition(ctx, id, []string{models.SessionConfirmed},
		bson.M{"$set": bson.M{"status": models.SessionCompleted, "completed_at": at}})
}

func (r *mongoSessions) RevertComplete(ctx context.Context, id primitive.ObjectID) error {
	return r.transition(ctx, id, []string{models.SessionCompleted}, bson.M{
		"$set":   bson.M{"status": models.SessionConfirmed},
		"$unset": bson.M{"completed_at": ""},
	})
}

func (r *mongoSessions) MarkPaid(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"is_paid": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoSessions) Cancel(ctx context.Context, id, by primitive.ObjectID, reason string, at time.Time) error {
	return r.transition(ctx, id, []string{models.SessionPending, models.SessionConfirmed}, bson.M{
		"$set": bson.M{
			"status":              models.SessionCancelled,
			"cancelled_by":        by,
			"cancelled_at":        at,
			"cancellation_reason": reason,
		},
	})
}

type mongoTxs struct {
	c *mongo.Collection
}

func (r *mongoTxs) Create(ctx context.Context, t *models.Transaction) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, t)
	return mapMongoErr(err)
}

func (r *mongoTxs) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, mapMongoErr(err)
	}
	return &t, nil
}

func (r *mongoTxs) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error) {
	filter := bson.M{"$or": bson.A{bson.M{"from": userID}, bson.M{"to": userID}}}
	cursor, err := r.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	txs := []models.Transaction{}
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *mongoTxs) SetStatus(ctx context.Context, id primitive.ObjectID, from, to string) error {
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStaleTransition
	}
	return nil
}

type mongoReviews struct {
	c *mongo.Collection
}

func (r *mongoReviews) Create(ctx context.Context, rev *models.Review) error {
	if rev.ID.IsZero() {
		rev.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, rev)
	return mapMongoErr(err)
}

func (r *mongoReviews) ListBySkill(ctx context.Context, skillID primitive.ObjectID) ([]models.Review, error) {
	cursor, err := r.c.Find(ctx, bson.M{"skill": skillID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
