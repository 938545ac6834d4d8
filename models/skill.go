package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Skill is a bookable offering owned by one user. Endorsements is a set:
// repeat endorsements by the same user are idempotent.
type Skill struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID   `bson:"user_id" json:"user_id"`
	Title          string               `bson:"title" json:"title"`
	Description    string               `bson:"description,omitempty" json:"description,omitempty"`
	Category       string               `bson:"category,omitempty" json:"category,omitempty"`
	CreditsPerHour int64                `bson:"credits_per_hour" json:"credits_per_hour"`
	IsVerified     bool                 `bson:"is_verified" json:"is_verified"`
	Endorsements   []primitive.ObjectID `bson:"endorsements,omitempty" json:"endorsements,omitempty"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
}
