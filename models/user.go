package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold. Experts can list skills; admins can adjust
// credits and suspend accounts.
const (
	RoleUser   = "user"
	RoleExpert = "expert"
	RoleAdmin  = "admin"
)

const (
	AccountActive    = "active"
	AccountSuspended = "suspended"
)

// OTPSlot is a single one-time code with its expiry. Signup verification
// and password reset each get their own slot so the two flows can never
// clobber each other's codes.
type OTPSlot struct {
	Code      string    `bson:"code" json:"-"`
	ExpiresAt time.Time `bson:"expires_at" json:"-"`
}

// GeoPoint is a geocoded location attached to a profile.
type GeoPoint struct {
	Lat       float64 `bson:"lat" json:"lat"`
	Lng       float64 `bson:"lng" json:"lng"`
	PlaceName string  `bson:"place_name" json:"place_name"`
}

// User is the account document. WalletBalance is the derived credit
// balance; every change to it goes through the ledger.
type User struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name          string              `bson:"name" json:"name"`
	Email         string              `bson:"email" json:"email"`
	Password      string              `bson:"password_hash" json:"-"` // bcrypt hash
	Role          string              `bson:"role" json:"role"`
	IsVerified    bool                `bson:"is_verified" json:"is_verified"`
	WalletBalance int64               `bson:"wallet_balance" json:"wallet_balance"`
	AccountStatus string              `bson:"account_status" json:"account_status"`
	VerifyOTP     *OTPSlot            `bson:"verify_otp,omitempty" json:"-"`
	ResetOTP      *OTPSlot            `bson:"reset_otp,omitempty" json:"-"`
	IsOTPVerified bool                `bson:"is_otp_verified" json:"-"` // reset-flow gate
	ReferralCode  string              `bson:"referral_code" json:"referral_code"`
	ReferredBy    *primitive.ObjectID `bson:"referred_by,omitempty" json:"-"`
	Bio           string              `bson:"bio,omitempty" json:"bio,omitempty"`
	Location      *GeoPoint           `bson:"location,omitempty" json:"location,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
