package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Davlaati/humo-ai/internal/common/logger"
	"github.com/Davlaati/humo-ai/internal/features/payments/models"
	"github.com/Davlaati/humo-ai/internal/features/payments/repository"
	"github.com/Davlaati/humo-ai/internal/platform/telegram"
	usermodels "github.com/Davlaati/humo-ai/internal/features/user/models"
	userrepo "github.com/Davlaati/humo-ai/internal/features/user/repository"
)

var (
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	ErrUnknownUser         = errors.New("user not found")
	ErrUnknownItem         = errors.New("unknown catalog item")
)

// InvoiceLinkCreator mints shareable invoice links at the payment
// provider. Implemented by the platform Telegram client.
type InvoiceLinkCreator interface {
	CreateInvoiceLink(ctx context.Context, req telegram.InvoiceLinkRequest) (string, error)
}

// ChannelIdentity is the payer identity resolvable from the bot channel
// when a confirmation arrives in-band.
type ChannelIdentity struct {
	ID       int64
	Name     string
	Username string
}

// Invoice is the result of a successful invoice creation.
type Invoice struct {
	Link    string `json:"invoice_link"`
	Payload string `json:"payload"`
}

// Service reconciles the payment ledger: it opens pending invoices and
// applies confirmations onto the user's balance exactly as delivered.
//
// Confirmations are applied as received: there is no idempotency check
// against the provider charge id, and no correlation back to the pending
// invoice row, so duplicate delivery credits the user twice.
// TODO: correlate confirmations with their pending rows and enforce a
// unique provider_charge_id before trusting upstream delivery counts.
type Service struct {
	users    userrepo.UserRepository
	ledger   repository.TransactionRepository
	provider InvoiceLinkCreator
	now      func() time.Time
}

func NewService(users userrepo.UserRepository, ledger repository.TransactionRepository, provider InvoiceLinkCreator) *Service {
	return &Service{
		users:    users,
		ledger:   ledger,
		provider: provider,
		now:      time.Now,
	}
}

// CreateInvoice prices the item, asks the provider for a shareable link
// and only then records the pending ledger row — the provider call must
// complete before any database work so no lock spans the network
// round trip, and a provider failure leaves no state behind.
func (s *Service) CreateInvoice(ctx context.Context, userID int64, item models.Item) (*Invoice, error) {
	entry, ok := models.PriceFor(item)
	if !ok {
		return nil, ErrUnknownItem
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	now := s.now().UTC()
	payload := models.EncodePayload(item, userID, now)

	link, err := s.provider.CreateInvoiceLink(ctx, telegram.InvoiceLinkRequest{
		Title:       "HUMO AI Purchase",
		Description: fmt.Sprintf("Purchase %s", item),
		Payload:     payload,
		Currency:    models.CurrencyStars,
		Prices:      []telegram.LabeledPrice{{Label: entry.Label, Amount: entry.Amount}},
	})
	if err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Msg("Invoice link creation failed")
		return nil, ErrProviderUnavailable
	}

	trx := &models.Transaction{
		UserID:    userID,
		Kind:      models.KindPurchase,
		Amount:    entry.Amount,
		Currency:  models.CurrencyStars,
		Status:    models.StatusPending,
		Payload:   payload,
		CreatedAt: now,
	}
	if err := s.ledger.AppendPending(ctx, trx); err != nil {
		return nil, err
	}

	return &Invoice{Link: link, Payload: payload}, nil
}

// Reconcile applies an out-of-band confirmation for a known user. It
// never creates the user on this path.
func (s *Service) Reconcile(ctx context.Context, userID int64, amount int, currency, chargeID, payload string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return ErrUnknownUser
		}
		return err
	}

	return s.applyConfirmation(ctx, user, amount, currency, chargeID, payload)
}

// ReconcileFromChannel applies an in-band confirmation where the payer
// identity travels with the message; the user row is created with
// default progression fields when missing. The credit and branch logic
// is identical to Reconcile.
func (s *Service) ReconcileFromChannel(ctx context.Context, identity ChannelIdentity, amount int, currency, chargeID, payload string) error {
	user, err := s.users.GetByID(ctx, identity.ID)
	if err != nil {
		if !errors.Is(err, userrepo.ErrUserNotFound) {
			return err
		}
		user = usermodels.NewUser(identity.ID, identity.Name, identity.Username, s.now().UTC())
	}

	return s.applyConfirmation(ctx, user, amount, currency, chargeID, payload)
}

// ApprovePreCheckout answers the provider's pre-checkout probe: the
// payload must carry this backend's namespace prefix. A liveness gate
// only — the signed confirmation arrives separately.
func (s *Service) ApprovePreCheckout(payload string) bool {
	return models.HasPayloadPrefix(payload)
}

func (s *Service) applyConfirmation(ctx context.Context, user *usermodels.User, amount int, currency, chargeID, payload string) error {
	item, _ := models.ItemFromPayload(payload)

	conf := repository.Confirmation{
		User: user,
		Transaction: &models.Transaction{
			UserID:           user.ID,
			Kind:             models.KindPurchase,
			Amount:           amount,
			Currency:         currency,
			Status:           models.StatusSuccess,
			ProviderChargeID: chargeID,
			Payload:          payload,
			CreatedAt:        s.now().UTC(),
		},
	}

	// Premium purchases flip the flag; anything else credits stars.
	if item == models.ItemPremium {
		conf.SetPremium = true
	} else {
		conf.StarsDelta = amount
	}

	if err := s.ledger.ApplyConfirmation(ctx, conf); err != nil {
		return fmt.Errorf("failed to apply confirmation: %w", err)
	}

	logger.Info().
		Int64("user_id", user.ID).
		Int("amount", amount).
		Str("currency", currency).
		Bool("premium", conf.SetPremium).
		Msg("Payment reconciled")

	return nil
}
