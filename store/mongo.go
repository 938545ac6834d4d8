package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/OmPrakash-X/Konnekt-sub001/models"
)

// Mongo implements Store on a mongo database.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo { return &Mongo{db: db} }

func (m *Mongo) Users() UserRepository               { return &mongoUsers{c: m.db.Collection("users")} }
func (m *Mongo) Skills() SkillRepository             { return &mongoSkills{c: m.db.Collection("skills")} }
func (m *Mongo) Sessions() SessionRepository         { return &mongoSessions{c: m.db.Collection("sessions")} }
func (m *Mongo) Transactions() TransactionRepository { return &mongoTxs{c: m.db.Collection("transactions")} }
func (m *Mongo) Reviews() ReviewRepository           { return &mongoReviews{c: m.db.Collection("reviews")} }

// EnsureIndexes creates the unique indexes the invariants rely on:
// one account per email, one referral code per account, one review per
// session.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "referral_code", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return err
	}
	_, err = m.db.Collection("reviews").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = m.db.Collection("transactions").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "from", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "to", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func mapMongoErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

type mongoUsers struct {
	c *mongo.Collection
}

func (r *mongoUsers) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, u)
	return mapMongoErr(err)
}

func (r *mongoUsers) getOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mapMongoErr(err)
	}
	return &u, nil
}

func (r *mongoUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.getOne(ctx, bson.M{"_id": id})
}

func (r *mongoUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, bson.M{"email": email})
}

func (r *mongoUsers) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	return r.getOne(ctx, bson.M{"referral_code": code})
}

func (r *mongoUsers) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, bio string, loc *models.GeoPoint) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if name != "" {
		set["name"] = name
	}
	if bio != "" {
		set["bio"] = bio
	}
	if loc != nil {
		set["location"] = loc
	}
	return r.updateByID(ctx, id, bson.M{"$set": set})
}

func (r *mongoUsers) SetAccountStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"account_status": status}})
}

func (r *mongoUsers) SetVerifyOTP(ctx context.Context, id primitive.ObjectID, slot *models.OTPSlot) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"verify_otp": slot}})
}

func (r *mongoUsers) ClearVerifyOTP(ctx context.Context, id primitive.ObjectID, markVerified bool) error {
	update := bson.M{"$unset": bson.M{"verify_otp": ""}}
	if markVerified {
		update["$set"] = bson.M{"is_verified": true}
	}
	// The slot-exists precondition makes verification single-shot.
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": id, "verify_otp": bson.M{"$exists": true}}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStaleTransition
	}
	return nil
}

func (r *mongoUsers) SetResetOTP(ctx context.Context, id primitive.ObjectID, slot *models.OTPSlot) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"reset_otp": slot, "is_otp_verified": false}})
}

func (r *mongoUsers) MarkResetOTPVerified(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": id, "reset_otp": bson.M{"$exists": true}},
		bson.M{"$set": bson.M{"is_otp_verified": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStaleTransition
	}
	return nil
}

func (r *mongoUsers) ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set":   bson.M{"password_hash": passwordHash, "is_otp_verified": false},
		"$unset": bson.M{"reset_otp": ""},
	})
}

// Debit is the atomic overdraw guard: the balance condition sits in the
// update filter, so two racing debits can never both pass the check.
func (r *mongoUsers) Debit(ctx context.Context, id primitive.ObjectID, amount int64) (int64, error) {
	var u models.User
	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "wallet_balance": bson.M{"$gte": amount}},
		bson.M{"$inc": bson.M{"wallet_balance": -amount}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err == nil {
		return u.WalletBalance, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, err
	}
	// Distinguish a missing account from an uncovered balance.
	if _, gerr := r.GetByID(ctx, id); gerr != nil {
		return 0, gerr
	}
	return 0, ErrInsufficientFunds
}

func (r *mongoUsers) Credit(ctx context.Context, id primitive.ObjectID, amount int64) (int64, error) {
	var u models.User
	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"wallet_balance": amount}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return 0, mapMongoErr(err)
	}
	return u.WalletBalance, nil
}

func (r *mongoUsers) updateByID(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type mongoSkills struct {
	c *mongo.Collection
}

func (r *mongoSkills) Create(ctx context.Context, s *models.Skill) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, s)
	return mapMongoErr(err)
}

func (r *mongoSkills) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Skill, error) {
	var s models.Skill
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, mapMongoErr(err)
	}
	return &s, nil
}

func (r *mongoSkills) List(ctx context.Context, category string) ([]models.Skill, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	cursor, err := r.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	skills := []models.Skill{}
	if err := cursor.All(ctx, &skills); err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *mongoSkills) Update(ctx context.Context, id primitive.ObjectID, upd SkillUpdate) error {
	set := bson.M{}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.CreditsPerHour != nil {
		set["credits_per_hour"] = *upd.CreditsPerHour
	}
	if len(set) == 0 {
		return nil
	}
	res, err := r.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoSkills) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoSkills) Endorse(ctx context.Context, id, endorser primitive.ObjectID) error {
	res, err := r.c.UpdateByID(ctx, id, bson.M{"$addToSet": bson.M{"endorsements": endorser}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
