package repository

import (
	"context"

	"github.com/Davlaati/humo-ai/internal/features/payments/models"
	usermodels "github.com/Davlaati/humo-ai/internal/features/user/models"
)

// Confirmation carries everything a confirmed payment writes: the user
// row to guarantee (the channel path may deliver a payment for an
// identity the store has never seen), the balance mutation and the
// success ledger row.
type Confirmation struct {
	User       *usermodels.User
	SetPremium bool
	StarsDelta int
	Transaction *models.Transaction
}

// TransactionRepository owns the append-only ledger and the atomic
// credit-and-log unit of work.
type TransactionRepository interface {
	// AppendPending records the pending row created at invoice time.
	AppendPending(ctx context.Context, trx *models.Transaction) error
	// ApplyConfirmation ensures the user row exists, applies the premium
	// flag or stars credit, and appends the success row — all in one
	// database transaction.
	ApplyConfirmation(ctx context.Context, conf Confirmation) error
}
