package models

import "time"

// Kind classifies ledger events. Only purchases are produced today;
// conversion is reserved for coin-to-stars exchange.
type Kind string

const (
	KindPurchase   Kind = "purchase"
	KindConversion Kind = "conversion"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// CurrencyStars is the Telegram Stars currency code.
const CurrencyStars = "XTR"

// Transaction is one append-only ledger row. A purchase produces two
// independent rows: a pending one at invoice creation and a success one
// at confirmation.
type Transaction struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Kind             Kind      `json:"kind"`
	Amount           int       `json:"amount"`
	Currency         string    `json:"currency"`
	Status           Status    `json:"status"`
	ProviderChargeID string    `json:"provider_charge_id,omitempty"`
	Payload          string    `json:"payload,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
