// Package store defines the repository interfaces the services run on,
// with a MongoDB implementation for production and an in-memory
// implementation for tests. Balance mutations and status transitions are
// expressed as conditional updates so concurrent requests cannot overdraw
// a wallet or settle a session twice.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/OmPrakash-X/Konnekt-sub001/models"
)

var (
	ErrNotFound          = errors.New("store: not found")
	ErrDuplicate         = errors.New("store: duplicate key")
	ErrInsufficientFunds = errors.New("store: insufficient funds")
	// ErrStaleTransition means a conditional update matched no document
	// because its status/state precondition no longer held.
	ErrStaleTransition = errors.New("store: stale transition")
)

// Store bundles the per-collection repositories.
type Store interface {
	Users() UserRepository
	Skills() SkillRepository
	Sessions() SessionRepository
	Transactions() TransactionRepository
	Reviews() ReviewRepository
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error // ErrDuplicate on email clash
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByReferralCode(ctx context.Context, code string) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, bio string, loc *models.GeoPoint) error
	SetAccountStatus(ctx context.Context, id primitive.ObjectID, status string) error

	// OTP slots. ClearVerifyOTP fails with ErrStaleTransition when the slot
	// is already gone, which is what makes "verify exactly once" hold under
	// replays.
	SetVerifyOTP(ctx context.Context, id primitive.ObjectID, slot *models.OTPSlot) error
	ClearVerifyOTP(ctx context.Context, id primitive.ObjectID, markVerified bool) error
	SetResetOTP(ctx context.Context, id primitive.ObjectID, slot *models.OTPSlot) error
	MarkResetOTPVerified(ctx context.Context, id primitive.ObjectID) error
	// ResetPassword replaces the hash and clears the reset gate and slot in
	// one update.
	ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error

	// Debit subtracts amount only if the stored balance covers it
	// (ErrInsufficientFunds otherwise) and returns the balance after.
	// Credit adds unconditionally and returns the balance after.
	Debit(ctx context.Context, id primitive.ObjectID, amount int64) (int64, error)
	Credit(ctx context.Context, id primitive.ObjectID, amount int64) (int64, error)
}

type SkillRepository interface {
	Create(ctx context.Context, s *models.Skill) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Skill, error)
	List(ctx context.Context, category string) ([]models.Skill, error)
	Update(ctx context.Context, id primitive.ObjectID, upd SkillUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// Endorse adds the endorser to the skill's endorsement set; adding the
	// same user twice is a no-op.
	Endorse(ctx context.Context, id, endorser primitive.ObjectID) error
}

// SkillUpdate is a partial update; nil fields are left untouched.
type SkillUpdate struct {
	Title          *string
	Description    *string
	Category       *string
	CreditsPerHour *int64
}

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error)
	ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.Session, error)

	// Status transitions are compare-and-swap on the current status; a
	// failed precondition yields ErrStaleTransition. Exactly one of any
	// number of concurrent callers can win a given transition.
	Confirm(ctx context.Context, id primitive.ObjectID) error
	Complete(ctx context.Context, id primitive.ObjectID, at time.Time) error
	// RevertComplete undoes a claim made by Complete when settlement fails.
	RevertComplete(ctx context.Context, id primitive.ObjectID) error
	MarkPaid(ctx context.Context, id primitive.ObjectID) error
	Cancel(ctx context.Context, id primitive.ObjectID, by primitive.ObjectID, reason string, at time.Time) error
}

type TransactionRepository interface {
	Create(ctx context.Context, t *models.Transaction) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error)
	// SetStatus is a CAS from -> to on the transaction status
	// (ErrStaleTransition on precondition failure).
	SetStatus(ctx context.Context, id primitive.ObjectID, from, to string) error
}

type ReviewRepository interface {
	Create(ctx context.Context, r *models.Review) error // ErrDuplicate per session
	ListBySkill(ctx context.Context, skillID primitive.ObjectID) ([]models.Review, error)
}
