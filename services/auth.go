package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/OmPrakash-X/Konnekt-sub001/apperr"
	"github.com/OmPrakash-X/Konnekt-sub001/models"
	"github.com/OmPrakash-X/Konnekt-sub001/ratelimit"
	"github.com/OmPrakash-X/Konnekt-sub001/store"
	"github.com/OmPrakash-X/Konnekt-sub001/utils"
)

// AuthConfig carries the knobs of the account flows.
type AuthConfig struct {
	JWTSecret     []byte
	TokenTTL      time.Duration // 7 days
	OTPTTL        time.Duration // 15 minutes
	SignupBonus   int64
	ReferralBonus int64
}

// AuthService owns the credential store and the OTP-gated flows: signup,
// email verification, sign-in, and password reset.
type AuthService struct {
	store   store.Store
	mailer  utils.Mailer
	limiter ratelimit.Limiter
	ledger  *LedgerService
	cfg     AuthConfig
	log     *slog.Logger
}

func NewAuthService(st store.Store, mailer utils.Mailer, limiter ratelimit.Limiter, ledger *LedgerService, cfg AuthConfig, log *slog.Logger) *AuthService {
	return &AuthService{store: st, mailer: mailer, limiter: limiter, ledger: ledger, cfg: cfg, log: log}
}

// Signup creates an unverified account and emails a verification code. A
// previous unverified signup for the same email is replaced; a verified one
// conflicts. If the email cannot be sent the account is deleted again so no
// unverifiable accounts accumulate.
func (s *AuthService) Signup(ctx context.Context, name, email, password, role, referralCode string) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleExpert {
		return nil, apperr.Validation("role must be user or expert")
	}
	if err := s.allowOTP(ctx, "signup:"+email); err != nil {
		return nil, err
	}

	users := s.store.Users()

	if existing, err := users.GetByEmail(ctx, email); err == nil {
		if existing.IsVerified {
			return nil, apperr.Conflict("email already registered")
		}
		// Newer signup wins over a stale unverified account.
		if err := users.Delete(ctx, existing.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Internal(err)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	var referredBy *models.User
	if referralCode != "" {
		ref, err := users.GetByReferralCode(ctx, referralCode)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperr.Validation("unknown referral code")
			}
			return nil, apperr.Internal(err)
		}
		referredBy = ref
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	myCode, err := utils.GenerateReferralCode()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		Name:          name,
		Email:         email,
		Password:      hash,
		Role:          role,
		IsVerified:    false,
		WalletBalance: 0,
		AccountStatus: models.AccountActive,
		ReferralCode:  myCode,
		CreatedAt:     time.Now().UTC(),
	}
	if referredBy != nil {
		id := referredBy.ID
		user.ReferredBy = &id
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, apperr.Internal(err)
	}

	if err := s.issueVerifyOTP(ctx, user); err != nil {
		// Compensating delete: a signup whose code never went out must not
		// leave an account behind.
		if derr := users.Delete(ctx, user.ID); derr != nil {
			s.log.Error("failed to roll back unverifiable signup", "user", user.ID.Hex(), "err", derr)
		}
		return nil, err
	}
	return user, nil
}

// VerifyEmail checks the signup code and activates the account. Success
// also grants the signup bonus and pays the referrer, exactly once: the
// slot-clearing update is the single-shot gate.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) (*models.User, error) {
	users := s.store.Users()
	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, apperr.Conflict("email already verified")
	}
	if err := checkOTPSlot(user.VerifyOTP, code); err != nil {
		return nil, err
	}
	if err := users.ClearVerifyOTP(ctx, user.ID, true); err != nil {
		if errors.Is(err, store.ErrStaleTransition) {
			return nil, apperr.Validation("no verification code issued")
		}
		return nil, apperr.Internal(err)
	}

	if s.cfg.SignupBonus > 0 {
		if _, err := s.ledger.Grant(ctx, user.ID, s.cfg.SignupBonus, models.TxSignupBonus, "welcome bonus"); err != nil {
			s.log.Error("signup bonus grant failed", "user", user.ID.Hex(), "err", err)
		}
	}
	if user.ReferredBy != nil && s.cfg.ReferralBonus > 0 {
		if _, err := s.ledger.Grant(ctx, *user.ReferredBy, s.cfg.ReferralBonus, models.TxReferralBonus, "referred "+user.Email); err != nil {
			s.log.Error("referral bonus grant failed", "referrer", user.ReferredBy.Hex(), "err", err)
		}
	}

	return users.GetByID(ctx, user.ID)
}

// SignIn checks credentials and mints the 7-day token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", apperr.Unauthenticated("invalid credentials")
		}
		return nil, "", apperr.Internal(err)
	}
	if err := utils.CheckPassword(user.Password, password); err != nil {
		return nil, "", apperr.Unauthenticated("invalid credentials")
	}
	if !user.IsVerified {
		return nil, "", apperr.Forbidden("email not verified")
	}
	if user.AccountStatus != models.AccountActive {
		return nil, "", apperr.Forbidden("account suspended")
	}

	token, err := utils.SignToken(user.ID.Hex(), s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	return user, token, nil
}

// RequestPasswordReset issues a reset code for a verified account. The
// controller masks NotFound into a generic response so the endpoint does
// not reveal which emails exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if err := s.allowOTP(ctx, "reset:"+email); err != nil {
		return err
	}
	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !user.IsVerified {
		return apperr.NotFound("account not found")
	}
	return s.issueResetOTP(ctx, user)
}

// VerifyResetOTP checks the reset code and opens the reset gate; the slot
// is retained until the password is actually replaced.
func (s *AuthService) VerifyResetOTP(ctx context.Context, email, code string) error {
	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := checkOTPSlot(user.ResetOTP, code); err != nil {
		return err
	}
	if err := s.store.Users().MarkResetOTPVerified(ctx, user.ID); err != nil {
		if errors.Is(err, store.ErrStaleTransition) {
			return apperr.Validation("no reset code issued")
		}
		return apperr.Internal(err)
	}
	return nil
}

// ResetPassword replaces the password hash; only allowed after the reset
// code was verified. Clears the gate and the slot in the same update.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !user.IsOTPVerified {
		return apperr.Forbidden("reset not authorized")
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.store.Users().ResetPassword(ctx, user.ID, hash); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *AuthService) getByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("account not found")
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

func (s *AuthService) allowOTP(ctx context.Context, key string) error {
	ok, err := s.limiter.Allow(ctx, key)
	if err != nil {
		// A broken limiter should not lock everyone out.
		s.log.Warn("otp rate limiter unavailable", "err", err)
		return nil
	}
	if !ok {
		return apperr.RateLimited("too many codes requested, try again later")
	}
	return nil
}
