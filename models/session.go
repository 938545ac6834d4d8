package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session statuses. Disputed is declared for parity with the data model
// but nothing transitions into it yet.
const (
	SessionPending   = "pending"
	SessionConfirmed = "confirmed"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
	SessionDisputed  = "disputed"
)

// Session is a booked meeting between a learner and a skill provider.
// CreditsCharged is computed once at booking time and never recomputed;
// IsPaid flips false->true exactly once, together with the ledger transfer.
type Session struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Provider           primitive.ObjectID  `bson:"provider" json:"provider"`
	Learner            primitive.ObjectID  `bson:"learner" json:"learner"`
	Skill              primitive.ObjectID  `bson:"skill" json:"skill"`
	ScheduledDate      time.Time           `bson:"scheduled_date" json:"scheduled_date"`
	Duration           int                 `bson:"duration" json:"duration"` // minutes
	CreditsCharged     int64               `bson:"credits_charged" json:"credits_charged"`
	Status             string              `bson:"status" json:"status"`
	IsPaid             bool                `bson:"is_paid" json:"is_paid"`
	CompletedAt        *time.Time          `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CancelledBy        *primitive.ObjectID `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time          `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	CancellationReason string              `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time           `bson:"created_at" json:"created_at"`
}

// HasParticipant reports whether the given user is the provider or the
// learner of this session.
func (s *Session) HasParticipant(userID primitive.ObjectID) bool {
	return s.Provider == userID || s.Learner == userID
}
