package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/OmPrakash-X/Konnekt-sub001/models"
	"github.com/OmPrakash-X/Konnekt-sub001/ratelimit"
	"github.com/OmPrakash-X/Konnekt-sub001/store"
	"github.com/OmPrakash-X/Konnekt-sub001/utils"
)

// fakeMailer records outbound mail and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []utils.Message
	fail bool
}

func (m *fakeMailer) Send(ctx context.Context, msg utils.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) last(t *testing.T) utils.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

type testEnv struct {
	store    *store.Memory
	mailer   *fakeMailer
	ledger   *LedgerService
	sessions *SessionService
	auth     *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemory()
	mailer := &fakeMailer{}
	ledger := NewLedgerService(st, logger)
	sessions := NewSessionService(st, ledger, logger)
	auth := NewAuthService(st, mailer, ratelimit.Noop{}, ledger, AuthConfig{
		JWTSecret:     []byte("test-secret"),
		TokenTTL:      7 * 24 * time.Hour,
		OTPTTL:        15 * time.Minute,
		SignupBonus:   100,
		ReferralBonus: 25,
	}, logger)
	return &testEnv{store: st, mailer: mailer, ledger: ledger, sessions: sessions, auth: auth}
}

// seedUser inserts a verified active user with the given balance.
func (e *testEnv) seedUser(t *testing.T, role string, balance int64) *models.User {
	t.Helper()
	u := &models.User{
		Name:          "user-" + primitive.NewObjectID().Hex()[:8],
		Email:         primitive.NewObjectID().Hex() + "@example.com",
		Password:      "$2a$10$irrelevant",
		Role:          role,
		IsVerified:    true,
		WalletBalance: balance,
		AccountStatus: models.AccountActive,
		ReferralCode:  primitive.NewObjectID().Hex()[16:],
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	return u
}

// seedSkill inserts a skill owned by the given user.
func (e *testEnv) seedSkill(t *testing.T, owner primitive.ObjectID, creditsPerHour int64) *models.Skill {
	t.Helper()
	s := &models.Skill{
		UserID:         owner,
		Title:          "Guitar lessons",
		Category:       "music",
		CreditsPerHour: creditsPerHour,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, e.store.Skills().Create(context.Background(), s))
	return s
}

func (e *testEnv) balance(t *testing.T, id primitive.ObjectID) int64 {
	t.Helper()
	u, err := e.store.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	return u.WalletBalance
}
