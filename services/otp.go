package services

import (
	"context"
	"fmt"
	"time"

	"github.com/OmPrakash-X/Konnekt-sub001/apperr"
	"github.com/OmPrakash-X/Konnekt-sub001/models"
	"github.com/OmPrakash-X/Konnekt-sub001/utils"
)

const otpDigits = 6

// checkOTPSlot validates a submitted code against a stored slot with fixed
// precedence: no code issued, then expired, then mismatch.
func checkOTPSlot(slot *models.OTPSlot, code string) error {
	if slot == nil {
		return apperr.Validation("no code issued")
	}
	if time.Now().After(slot.ExpiresAt) {
		return apperr.Validation("code expired")
	}
	if slot.Code != code {
		return apperr.Validation("incorrect code")
	}
	return nil
}

func (s *AuthService) newOTPSlot() (*models.OTPSlot, string, error) {
	code, err := utils.GenerateOTP(otpDigits)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	return &models.OTPSlot{Code: code, ExpiresAt: time.Now().Add(s.cfg.OTPTTL)}, code, nil
}

func (s *AuthService) issueVerifyOTP(ctx context.Context, user *models.User) error {
	slot, code, err := s.newOTPSlot()
	if err != nil {
		return err
	}
	if err := s.store.Users().SetVerifyOTP(ctx, user.ID, slot); err != nil {
		return apperr.Internal(err)
	}
	msg := utils.Message{
		To:      user.Email,
		Subject: "Verify your Konnekt account",
		Body: fmt.Sprintf("Hi %s,\n\nYour verification code is: %s\nIt expires in %d minutes.\n",
			user.Name, code, int(s.cfg.OTPTTL.Minutes())),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return apperr.Upstream(err, "could not send verification email")
	}
	return nil
}

func (s *AuthService) issueResetOTP(ctx context.Context, user *models.User) error {
	slot, code, err := s.newOTPSlot()
	if err != nil {
		return err
	}
	if err := s.store.Users().SetResetOTP(ctx, user.ID, slot); err != nil {
		return apperr.Internal(err)
	}
	msg := utils.Message{
		To:      user.Email,
		Subject: "Your password reset code",
		Body: fmt.Sprintf("Your password reset code is: %s\nIt expires in %d minutes.\nIf you did not request this, ignore this email.\n",
			code, int(s.cfg.OTPTTL.Minutes())),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return apperr.Upstream(err, "could not send reset email")
	}
	return nil
}
