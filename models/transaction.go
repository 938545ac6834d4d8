package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction types.
const (
	TxSessionPayment  = "session_payment"
	TxBadgeReward     = "badge_reward"
	TxSignupBonus     = "signup_bonus"
	TxReferralBonus   = "referral_bonus"
	TxRefund          = "refund"
	TxAdminAdjustment = "admin_adjustment"
)

// Transaction statuses.
const (
	TxPending   = "pending"
	TxCompleted = "completed"
	TxFailed    = "failed"
	TxReversed  = "reversed"
)

// Transaction is one immutable ledger entry. From is nil for
// system-originated credits (signup bonus, referral bonus, admin grants).
// FromBalance and ToBalance snapshot each party's balance after the
// transfer so the ledger can be audited without replay.
type Transaction struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	From        *primitive.ObjectID `bson:"from,omitempty" json:"from,omitempty"`
	To          primitive.ObjectID  `bson:"to" json:"to"`
	Amount      int64               `bson:"amount" json:"amount"`
	Type        string              `bson:"type" json:"type"`
	Status      string              `bson:"status" json:"status"`
	FromBalance *int64              `bson:"from_balance,omitempty" json:"from_balance,omitempty"`
	ToBalance   int64               `bson:"to_balance" json:"to_balance"`
	Session     *primitive.ObjectID `bson:"session,omitempty" json:"session,omitempty"`
	Note        string              `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
}
