package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OmPrakash-X/Konnekt-sub001/apperr"
	"github.com/OmPrakash-X/Konnekt-sub001/models"
	"github.com/OmPrakash-X/Konnekt-sub001/utils"
)

// otpFromMail digs the 6-digit code out of the last email sent.
func otpFromMail(t *testing.T, m *fakeMailer) string {
	t.Helper()
	body := m.last(t).Body
	for _, field := range strings.Fields(body) {
		if len(field) == 6 && strings.Trim(field, "0123456789") == "" {
			return field
		}
	}
	t.Fatalf("no 6-digit code in email body: %q", body)
	return ""
}

func TestSignupIssuesOTPAndEmailsIt(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	user, err := e.auth.Signup(ctx, "Asha", "asha@example.com", "secret123", models.RoleUser, "")
	require.NoError(t, err)
	require.False(t, user.IsVerified)
	require.Equal(t, int64(0), user.WalletBalance)

	stored, err := e.store.Users().GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.VerifyOTP)
	require.Len(t, stored.VerifyOTP.Code, 6)
	require.True(t, stored.VerifyOTP.ExpiresAt.After(time.Now()))

	require.Equal(t, "asha@example.com", e.mailer.last(t).To)
	require.Contains(t, e.mailer.last(t).Body, stored.VerifyOTP.Code)
}

func TestSignupEmailFailureRollsBackAccount(t *testing.T) {
	e := newTestEnv(t)
	e.mailer.fail = true

	_, err := e.auth.Signup(context.Background(), "Asha", "asha@example.com", "secret123", models.RoleUser, "")
	require.True(t, apperr.Is(err, "UPSTREAM"))

	// No orphaned unverifiable account.
	_, err = e.store.Users().GetByEmail(context.Background(), "asha@example.com")
	require.Error(t, err)
}

func TestSignupDuplicateEmail(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	first, err := e.auth.Signup(ctx, "Asha", "asha@example.com", "secret123", models.RoleUser, "")
	require.NoError(t, err)

	// Unverified duplicate is replaced by the newer signup.
	second, err := e.auth.Signup(ctx, "Asha Again", "asha@example.com", "secret456", models.RoleUser, "")
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
	_, err = e.store.Users().GetByID(ctx, first.ID)
	require.Error(t, err)

	// Verified duplicate conflicts.
	code := otpFromMail(t, e.mailer)
	_, err = e.auth.VerifyEmail(ctx, "asha@example.com", code)
	require.NoError(t, err)
	_, err = e.auth.Signup(ctx, "Impostor", "asha@example.com", "hunter22", models.RoleUser, "")
	require.True(t, apperr.Is(err, "CONFLICT"))
}

func TestVerifyEmailPrecedenceAndSingleUse(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	// Unknown account.
	_, err := e.auth.VerifyEmail(ctx, "ghost@example.com", "123456")
	require.True(t, apperr.Is(err, "NOT_FOUND"))

	_, err = e.auth.Signup(ctx, "Asha", "asha@example.com", "secret123", models.RoleUser, "")
	require.NoError(t, err)
	code := otpFromMail(t, e.mailer)

	// Wrong code.
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err = e.auth.VerifyEmail(ctx, "asha@example.com", wrong)
	require.True(t, apperr.Is(err, "VALIDATION"))

	// Correct code succeeds exactly once.
	user, err := e.auth.VerifyEmail(ctx, "asha@example.com", code)
	require.NoError(t, err)
	require.True(t, user.IsVerified)

	// Replay: the account is already verified.
	_, err = e.auth.VerifyEmail(ctx, "asha@example.com", code)
	require.True(t, apperr.Is(err, "CONFLICT"))
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	user, err := e.auth.Signup(ctx, "Asha", "asha@example.com", "secret123", models.RoleUser, "")
	require.NoError(t, err)
	code := otpFromMail(t, e.mailer)

	// Age the slot past its expiry.
	require.NoError(t, e.store.Users().SetVerifyOTP(ctx, user.ID,
		&models.OTPSlot{Code: code, ExpiresAt: time.Now().Add(-time.Minute)}))

	_, err = e.auth.VerifyEmail(ctx, "asha@example.com", code)
	require.True(t, apperr.Is(err, "VALIDATION"))
	require.Contains(t, err.Error(), "expired")
}

func TestVerifyEmailGrantsSignupBonusOnce(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.auth.Signup(ctx, "Asha", "asha@example.com", "secret123", models.RoleUser, "")
	require.NoError(t, err)
	code := otpFromMail(t, e.mailer)

	user, err := e.auth.VerifyEmail(ctx, "asha@example.com", code)
	require.NoError(t, err)
	require.Equal(t, int64(100), user.WalletBalance)

	txs, err := e.ledger.History(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, models.TxSignupBonus, txs[0].Type)
	require.Nil(t, txs[0].From)
}

func TestReferralBonusPaidOnVerification(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	referrer := e.seedUser(t, models.RoleUser, 0)

	_, err := e.auth.Signup(ctx, "Ravi", "ravi@example.com", "secret123", models.RoleUser, referrer.ReferralCode)
	require.NoError(t, err)
	code := otpFromMail(t, e.mailer)
	_, err = e.auth.VerifyEmail(ctx, "ravi@example.com", code)
	require.NoError(t, err)

	require.Equal(t, int64(25), e.balance(t, referrer.ID))
	txs, err := e.ledger.History(ctx, referrer.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, models.TxReferralBonus, txs[0].Type)
}

func TestSignupUnknownReferralCode(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.auth.Signup(context.Background(), "Ravi", "ravi@example.com", "secret123", models.RoleUser, "nope")
	require.True(t, apperr.Is(err, "VALIDATION"))
}

func TestSignInFlow(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.auth.Signup(ctx, "Asha", "asha@example.com", "secret123", models.RoleUser, "")
	require.NoError(t, err)

	// Unverified accounts cannot sign in.
	_, _, err = e.auth.SignIn(ctx, "asha@example.com", "secret123")
	require.True(t, apperr.Is(err, "FORBIDDEN"))

	code := otpFromMail(t, e.mailer)
	_, err = e.auth.VerifyEmail(ctx, "asha@example.com", code)
	require.NoError(t, err)

	_, _, err = e.auth.SignIn(ctx, "asha@example.com", "wrongpass")
	require.True(t, apperr.Is(err, "UNAUTHENTICATED"))

	user, token, err := e.auth.SignIn(ctx, "asha@example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	uid, err := utils.VerifyToken(token, []byte("test-secret"))
	require.NoError(t, err)
	require.Equal(t, user.ID.Hex(), uid)

	// Suspended accounts are rejected.
	require.NoError(t, e.store.Users().SetAccountStatus(ctx, user.ID, models.AccountSuspended))
	_, _, err = e.auth.SignIn(ctx, "asha@example.com", "secret123")
	require.True(t, apperr.Is(err, "FORBIDDEN"))
}

func TestPasswordResetFlow(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.auth.Signup(ctx, "Asha", "asha@example.com", "secret123", models.RoleUser, "")
	require.NoError(t, err)
	code := otpFromMail(t, e.mailer)
	_, err = e.auth.VerifyEmail(ctx, "asha@example.com", code)
	require.NoError(t, err)

	// Reset before requesting a code is not authorized.
	err = e.auth.ResetPassword(ctx, "asha@example.com", "newpass99")
	require.True(t, apperr.Is(err, "FORBIDDEN"))

	require.NoError(t, e.auth.RequestPasswordReset(ctx, "asha@example.com"))
	resetCode := otpFromMail(t, e.mailer)

	// Reset still gated until the code is verified.
	err = e.auth.ResetPassword(ctx, "asha@example.com", "newpass99")
	require.True(t, apperr.Is(err, "FORBIDDEN"))

	require.NoError(t, e.auth.VerifyResetOTP(ctx, "asha@example.com", resetCode))
	require.NoError(t, e.auth.ResetPassword(ctx, "asha@example.com", "newpass99"))

	// Old password dead, new one works, gate closed again.
	_, _, err = e.auth.SignIn(ctx, "asha@example.com", "secret123")
	require.True(t, apperr.Is(err, "UNAUTHENTICATED"))
	_, _, err = e.auth.SignIn(ctx, "asha@example.com", "newpass99")
	require.NoError(t, err)
	err = e.auth.ResetPassword(ctx, "asha@example.com", "anotherpass")
	require.True(t, apperr.Is(err, "FORBIDDEN"))
}

func TestResetRequestForUnverifiedUserNotFound(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.auth.Signup(ctx, "Asha", "asha@example.com", "secret123", models.RoleUser, "")
	require.NoError(t, err)

	err = e.auth.RequestPasswordReset(ctx, "asha@example.com")
	require.True(t, apperr.Is(err, "NOT_FOUND"))
	err = e.auth.RequestPasswordReset(ctx, "ghost@example.com")
	require.True(t, apperr.Is(err, "NOT_FOUND"))
}

// The two OTP slots are independent: an in-flight password reset does not
// disturb signup verification and vice versa.
func TestOTPSlotsAreIndependent(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := e.seedUser(t, models.RoleUser, 0)

	require.NoError(t, e.auth.RequestPasswordReset(ctx, user.Email))
	resetCode := otpFromMail(t, e.mailer)

	// A verification slot appearing later must not clobber the reset slot.
	require.NoError(t, e.store.Users().SetVerifyOTP(ctx, user.ID,
		&models.OTPSlot{Code: "999999", ExpiresAt: time.Now().Add(15 * time.Minute)}))

	require.NoError(t, e.auth.VerifyResetOTP(ctx, user.Email, resetCode))

	got, err := e.store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.VerifyOTP)
	require.Equal(t, "999999", got.VerifyOTP.Code)
}
