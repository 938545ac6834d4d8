package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OmPrakash-X/Konnekt-sub001/apperr"
	"github.com/OmPrakash-X/Konnekt-sub001/models"
)

func TestTransferMovesCreditsAndSnapshotsBalances(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	payer := e.seedUser(t, models.RoleUser, 100)
	payee := e.seedUser(t, models.RoleExpert, 40)

	tx, err := e.ledger.Transfer(ctx, &payer.ID, payee.ID, 50, models.TxSessionPayment, nil, "")
	require.NoError(t, err)

	require.Equal(t, models.TxCompleted, tx.Status)
	require.NotNil(t, tx.FromBalance)
	require.Equal(t, int64(50), *tx.FromBalance)
	require.Equal(t, int64(90), tx.ToBalance)

	require.Equal(t, int64(50), e.balance(t, payer.ID))
	require.Equal(t, int64(90), e.balance(t, payee.ID))
}

func TestTransferInsufficientFundsLeavesNoTrace(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	payer := e.seedUser(t, models.RoleUser, 20)
	payee := e.seedUser(t, models.RoleExpert, 0)

	_, err := e.ledger.Transfer(ctx, &payer.ID, payee.ID, 50, models.TxSessionPayment, nil, "")
	require.True(t, apperr.Is(err, "INSUFFICIENT_FUNDS"))

	require.Equal(t, int64(20), e.balance(t, payer.ID))
	require.Equal(t, int64(0), e.balance(t, payee.ID))

	txs, err := e.ledger.History(ctx, payer.ID)
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestTransferRejectsNonPositiveAmount(t *testing.T) {
	e := newTestEnv(t)
	payer := e.seedUser(t, models.RoleUser, 100)
	payee := e.seedUser(t, models.RoleExpert, 0)

	for _, amount := range []int64{0, -5} {
		_, err := e.ledger.Transfer(context.Background(), &payer.ID, payee.ID, amount, models.TxSessionPayment, nil, "")
		require.True(t, apperr.Is(err, "VALIDATION"))
	}
}

func TestSystemGrantSkipsDebit(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := e.seedUser(t, models.RoleUser, 0)

	tx, err := e.ledger.Grant(ctx, user.ID, 100, models.TxSignupBonus, "welcome bonus")
	require.NoError(t, err)
	require.Nil(t, tx.From)
	require.Nil(t, tx.FromBalance)
	require.Equal(t, int64(100), tx.ToBalance)
	require.Equal(t, int64(100), e.balance(t, user.ID))
}

func TestReverseIsSingleShot(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	payer := e.seedUser(t, models.RoleUser, 100)
	payee := e.seedUser(t, models.RoleExpert, 0)

	tx, err := e.ledger.Transfer(ctx, &payer.ID, payee.ID, 60, models.TxSessionPayment, nil, "")
	require.NoError(t, err)

	refund, err := e.ledger.Reverse(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, models.TxRefund, refund.Type)
	require.Equal(t, int64(100), e.balance(t, payer.ID))
	require.Equal(t, int64(0), e.balance(t, payee.ID))

	orig, err := e.store.Transactions().GetByID(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, models.TxReversed, orig.Status)

	_, err = e.ledger.Reverse(ctx, tx.ID)
	require.True(t, apperr.Is(err, "CONFLICT"), "second reverse must conflict")
}

func TestReverseRejectsSystemTransactions(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := e.seedUser(t, models.RoleUser, 0)

	grant, err := e.ledger.Grant(ctx, user.ID, 50, models.TxAdminAdjustment, "")
	require.NoError(t, err)

	_, err = e.ledger.Reverse(ctx, grant.ID)
	require.True(t, apperr.Is(err, "VALIDATION"))
}

// Replaying a user's ledger reconstructs the wallet balance exactly.
func TestLedgerReplayMatchesBalance(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.seedUser(t, models.RoleUser, 0)
	b := e.seedUser(t, models.RoleExpert, 0)

	_, err := e.ledger.Grant(ctx, a.ID, 100, models.TxSignupBonus, "")
	require.NoError(t, err)
	_, err = e.ledger.Grant(ctx, b.ID, 100, models.TxSignupBonus, "")
	require.NoError(t, err)
	_, err = e.ledger.Transfer(ctx, &a.ID, b.ID, 30, models.TxSessionPayment, nil, "")
	require.NoError(t, err)
	_, err = e.ledger.Transfer(ctx, &b.ID, a.ID, 10, models.TxSessionPayment, nil, "")
	require.NoError(t, err)

	for _, id := range []struct{ u *models.User }{{a}, {b}} {
		txs, err := e.ledger.History(ctx, id.u.ID)
		require.NoError(t, err)
		var replayed int64
		for _, tx := range txs {
			if tx.To == id.u.ID {
				replayed += tx.Amount
			}
			if tx.From != nil && *tx.From == id.u.ID {
				replayed -= tx.Amount
			}
		}
		require.Equal(t, e.balance(t, id.u.ID), replayed)
	}
}

// Across the whole ledger, session payment debits equal session payment
// credits (conservation).
func TestSessionPaymentsConserveCredits(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.seedUser(t, models.RoleUser, 500)
	b := e.seedUser(t, models.RoleExpert, 500)

	amounts := []int64{50, 75, 120}
	for _, amt := range amounts {
		_, err := e.ledger.Transfer(ctx, &a.ID, b.ID, amt, models.TxSessionPayment, nil, "")
		require.NoError(t, err)
	}

	require.Equal(t, int64(1000), e.balance(t, a.ID)+e.balance(t, b.ID), "credits are conserved")
}
