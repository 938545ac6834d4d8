package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/OmPrakash-X/Konnekt-sub001/apperr"
	"github.com/OmPrakash-X/Konnekt-sub001/models"
	"github.com/OmPrakash-X/Konnekt-sub001/store"
)

// SessionService drives the booking state machine:
// pending -> confirmed -> completed, with pending|confirmed -> cancelled.
// Settlement (the credit transfer) happens exactly once, on completion.
type SessionService struct {
	store  store.Store
	ledger *LedgerService
	log    *slog.Logger
}

func NewSessionService(st store.Store, ledger *LedgerService, log *slog.Logger) *SessionService {
	return &SessionService{store: st, ledger: ledger, log: log}
}

// Book creates a pending session. The learner's balance check here is
// advisory only: nothing is reserved, and completion re-checks atomically
// at settlement time.
func (s *SessionService) Book(ctx context.Context, learner *models.User, skillID primitive.ObjectID, scheduled time.Time, durationMin int) (*models.Session, error) {
	if durationMin <= 0 {
		return nil, apperr.Validation("duration must be positive")
	}
	if !scheduled.After(time.Now()) {
		return nil, apperr.Validation("session must be scheduled in the future")
	}

	skill, err := s.store.Skills().GetByID(ctx, skillID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("skill not found")
		}
		return nil, apperr.Internal(err)
	}
	if skill.UserID == learner.ID {
		return nil, apperr.Validation("cannot book a session on your own skill")
	}

	// Fixed at creation, never recomputed.
	credits := skill.CreditsPerHour * int64(durationMin) / 60
	if credits <= 0 {
		return nil, apperr.Validation("session is too short to be charged")
	}
	if learner.WalletBalance < credits {
		return nil, apperr.InsufficientFunds("insufficient credits to book this session")
	}

	sess := &models.Session{
		Provider:       skill.UserID,
		Learner:        learner.ID,
		Skill:          skill.ID,
		ScheduledDate:  scheduled,
		Duration:       durationMin,
		CreditsCharged: credits,
		Status:         models.SessionPending,
		IsPaid:         false,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.Sessions().Create(ctx, sess); err != nil {
		return nil, apperr.Internal(err)
	}
	return sess, nil
}

// Confirm moves pending -> confirmed; only the provider may confirm.
func (s *SessionService) Confirm(ctx context.Context, actor *models.User, id primitive.ObjectID) (*models.Session, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Provider != actor.ID {
		return nil, apperr.Forbidden("only the provider can confirm a session")
	}
	if err := s.store.Sessions().Confirm(ctx, id); err != nil {
		if errors.Is(err, store.ErrStaleTransition) {
			return nil, apperr.Conflict("session is not pending")
		}
		return nil, apperr.Internal(err)
	}
	return s.get(ctx, id)
}

// Complete settles a confirmed session: the status CAS claims it first, so
// of any number of concurrent callers exactly one reaches the transfer.
// If the transfer fails the claim is rolled back and the session stays
// confirmed; a session is never marked completed without its payment.
func (s *SessionService) Complete(ctx context.Context, actor *models.User, id primitive.ObjectID) (*models.Session, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.HasParticipant(actor.ID) {
		return nil, apperr.Forbidden("only a participant can complete a session")
	}

	sessions := s.store.Sessions()
	if err := sessions.Complete(ctx, id, time.Now().UTC()); err != nil {
		if errors.Is(err, store.ErrStaleTransition) {
			return nil, apperr.Conflict("session is not confirmed")
		}
		return nil, apperr.Internal(err)
	}

	sessID := sess.ID
	if _, err := s.ledger.Transfer(ctx, &sess.Learner, sess.Provider, sess.CreditsCharged, models.TxSessionPayment, &sessID, "session payment"); err != nil {
		if rerr := sessions.RevertComplete(ctx, id); rerr != nil {
			s.log.Error("failed to revert unsettled completion", "session", id.Hex(), "err", rerr)
		}
		return nil, err
	}
	if err := sessions.MarkPaid(ctx, id); err != nil {
		s.log.Error("settled session could not be marked paid", "session", id.Hex(), "err", err)
	}
	return s.get(ctx, id)
}

// Cancel moves pending|confirmed -> cancelled and records who, when, why.
// If the session was somehow already paid, the payment is refunded.
func (s *SessionService) Cancel(ctx context.Context, actor *models.User, id primitive.ObjectID, reason string) (*models.Session, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.HasParticipant(actor.ID) {
		return nil, apperr.Forbidden("only a participant can cancel a session")
	}
	if err := s.store.Sessions().Cancel(ctx, id, actor.ID, reason, time.Now().UTC()); err != nil {
		if errors.Is(err, store.ErrStaleTransition) {
			return nil, apperr.Conflict("session can no longer be cancelled")
		}
		return nil, apperr.Internal(err)
	}

	// Shouldn't happen given the transition ordering, but a paid session
	// that still reached cancellation gets its payment back.
	if sess.IsPaid {
		sessID := sess.ID
		if _, err := s.ledger.Transfer(ctx, &sess.Provider, sess.Learner, sess.CreditsCharged, models.TxRefund, &sessID, "cancellation refund"); err != nil {
			s.log.Error("cancellation refund failed", "session", id.Hex(), "err", err)
		}
	}
	return s.get(ctx, id)
}

// Get returns a session visible only to its participants.
func (s *SessionService) Get(ctx context.Context, actor *models.User, id primitive.ObjectID) (*models.Session, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.HasParticipant(actor.ID) && actor.Role != models.RoleAdmin {
		return nil, apperr.Forbidden("not a participant of this session")
	}
	return sess, nil
}

// ListMine returns every session the user participates in, newest first.
func (s *SessionService) ListMine(ctx context.Context, userID primitive.ObjectID) ([]models.Session, error) {
	sessions, err := s.store.Sessions().ListByParticipant(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return sessions, nil
}

func (s *SessionService) get(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	sess, err := s.store.Sessions().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("session not found")
		}
		return nil, apperr.Internal(err)
	}
	return sess, nil
}
