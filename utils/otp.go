package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateOTP generates a numeric OTP of n digits (cryptographically random).
func GenerateOTP(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	otp := make([]byte, n)
	for i := 0; i < n; i++ {
		otp[i] = '0' + (bytes[i] % 10)
	}
	return string(otp), nil
}

// GenerateReferralCode returns a short random hex code used to credit
// referrers at signup.
func GenerateReferralCode() (string, error) {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate referral code: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
