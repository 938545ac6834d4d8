// Package services holds the transactional core: the ledger engine, the
// session lifecycle state machine, and the OTP-gated account flows.
// Controllers stay thin on top of it.
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

// LedgerService moves credits between wallets and records every move as an
// immutable transaction. Wallet balances never change outside this service.
type LedgerService struct {
	store store.Store
	log   *slog.Logger
}

func NewLedgerService(st store.Store, log *slog.Logger) *LedgerService {
	return &LedgerService{store: st, log: log}
}

// Transfer debits from (skipped when nil, i.e. a system-originated credit),
// credits to, and writes one completed transaction stamped with both
// post-transfer balances. The debit carries its own balance guard, so the
// insufficient-funds check and the mutation are one atomic step; later
// steps failing trigger compensating updates so balances and ledger never
// drift apart.
func (s *LedgerService) Transfer(ctx context.Context, from *primitive.ObjectID, to primitive.ObjectID, amount int64, txType string, sessionID *primitive.ObjectID, note string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperr.Validation("transfer amount must be positive")
	}

	users := s.store.Users()

	var fromBalance *int64
	if from != nil {
		bal, err := users.Debit(ctx, *from, amount)
		if err != nil {
			if errors.Is(err, store.ErrInsufficientFunds) {
				return nil, apperr.InsufficientFunds("insufficient credits")
			}
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperr.NotFound("payer account not found")
			}
			return nil, apperr.Internal(err)
		}
		fromBalance = &bal
	}

	toBalance, err := users.Credit(ctx, to, amount)
	if err != nil {
		s.compensate(ctx, from, nil, amount)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("payee account not found")
		}
		return nil, apperr.Internal(err)
	}

	tx := &models.Transaction{
		From:        from,
		To:          to,
		Amount:      amount,
		Type:        txType,
		Status:      models.TxCompleted,
		FromBalance: fromBalance,
		ToBalance:   toBalance,
		Session:     sessionID,
		Note:        note,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Transactions().Create(ctx, tx); err != nil {
		s.compensate(ctx, from, &to, amount)
		return nil, apperr.Internal(err)
	}
	return tx, nil
}

// compensate undoes balance mutations after a partial failure: credit the
// payer back, take the amount back from the payee. Failures here are logged
// and nothing else; they indicate a storage layer that is already broken.
func (s *LedgerService) compensate(ctx context.Context, from *primitive.ObjectID, to *primitive.ObjectID, amount int64) {
	users := s.store.Users()
	if to != nil {
		if _, err := users.Debit(ctx, *to, amount); err != nil {
			s.log.Error("ledger compensation failed", "user", to.Hex(), "amount", amount, "err", err)
		}
	}
	if from != nil {
		if _, err := users.Credit(ctx, *from, amount); err != nil {
			s.log.Error("ledger compensation failed", "user", from.Hex(), "amount", amount, "err", err)
		}
	}
}

// Reverse refunds a completed transaction: the original's status flips to
// reversed exactly once, and a new refund row moves the amount back. The
// original row is never deleted or otherwise mutated.
func (s *LedgerService) Reverse(ctx context.Context, txID primitive.ObjectID) (*models.Transaction, error) {
	txs := s.store.Transactions()

	orig, err := txs.GetByID(ctx, txID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("transaction not found")
		}
		return nil, apperr.Internal(err)
	}
	if orig.From == nil {
		return nil, apperr.Validation("system transactions cannot be reversed")
	}

	// Claim the reversal first so a racing second reverse loses.
	if err := txs.SetStatus(ctx, txID, models.TxCompleted, models.TxReversed); err != nil {
		if errors.Is(err, store.ErrStaleTransition) {
			return nil, apperr.Conflict("transaction already reversed")
		}
		return nil, apperr.Internal(err)
	}

	refund, err := s.Transfer(ctx, &orig.To, *orig.From, orig.Amount, models.TxRefund, orig.Session, "reversal of "+orig.ID.Hex())
	if err != nil {
		if rerr := txs.SetStatus(ctx, txID, models.TxReversed, models.TxCompleted); rerr != nil {
			s.log.Error("failed to release reversal claim", "tx", txID.Hex(), "err", rerr)
		}
		return nil, err
	}
	return refund, nil
}

// Grant credits a wallet from the system (signup bonus, referral bonus,
// admin adjustments).
func (s *LedgerService) Grant(ctx context.Context, to primitive.ObjectID, amount int64, txType, note string) (*models.Transaction, error) {
	return s.Transfer(ctx, nil, to, amount, txType, nil, note)
}

// History returns the user's ledger entries, newest first.
func (s *LedgerService) History(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error) {
	txs, err := s.store.Transactions().ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return txs, nil
}
