package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is left by the learner of a completed session; at most one per
// session (unique index on Session).
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Session   primitive.ObjectID `bson:"session" json:"session"`
	Skill     primitive.ObjectID `bson:"skill" json:"skill"`
	Reviewer  primitive.ObjectID `bson:"reviewer" json:"reviewer"`
	Provider  primitive.ObjectID `bson:"provider" json:"provider"`
	Rating    int                `bson:"rating" json:"rating"` // 1..5
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
