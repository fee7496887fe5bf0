package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Davlaati/humo-ai/internal/common/logger"
	"github.com/Davlaati/humo-ai/internal/features/payments/service"
)

// Bot consumes Telegram updates over long polling and feeds payment
// events into the reconciler. Processing errors are logged and absorbed
// so the update loop never dies on a single bad event.
type Bot struct {
	api      *tgbotapi.BotAPI
	payments *service.Service
	inflight chan struct{}
	timeout  int
}

func New(token string, payments *service.Service, updateTimeout, maxInflight int) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if maxInflight <= 0 {
		maxInflight = 16
	}
	return &Bot{
		api:      api,
		payments: payments,
		inflight: make(chan struct{}, maxInflight),
		timeout:  updateTimeout,
	}, nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.timeout
	cfg.AllowedUpdates = []string{"message", "pre_checkout_query"}

	updates := b.api.GetUpdatesChan(cfg)
	logger.Info().Str("bot", b.api.Self.UserName).Msg("Bot update loop started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.inflight <- struct{}{}
			go func(u tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handle(ctx, u)
			}(update)
		}
	}
}

func (b *Bot) handle(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.PreCheckoutQuery != nil:
		b.handlePreCheckout(update.PreCheckoutQuery)
	case update.Message != nil && update.Message.SuccessfulPayment != nil:
		b.handleSuccessfulPayment(ctx, update.Message)
	}
}

func (b *Bot) handlePreCheckout(q *tgbotapi.PreCheckoutQuery) {
	answer := tgbotapi.PreCheckoutConfig{
		PreCheckoutQueryID: q.ID,
		OK:                 b.payments.ApprovePreCheckout(q.InvoicePayload),
	}
	if !answer.OK {
		answer.ErrorMessage = "This invoice was not issued by HUMO AI."
	}
	if _, err := b.api.Request(answer); err != nil {
		logger.Error().Err(err).Str("query_id", q.ID).Msg("Failed to answer pre-checkout query")
	}
}

func (b *Bot) handleSuccessfulPayment(ctx context.Context, msg *tgbotapi.Message) {
	payment := msg.SuccessfulPayment
	identity := service.ChannelIdentity{
		ID:       msg.From.ID,
		Name:     msg.From.FirstName,
		Username: msg.From.UserName,
	}

	err := b.payments.ReconcileFromChannel(ctx, identity,
		payment.TotalAmount, payment.Currency,
		payment.TelegramPaymentChargeID, payment.InvoicePayload)
	if err != nil {
		logger.Error().Err(err).
			Int64("user_id", identity.ID).
			Str("charge_id", payment.TelegramPaymentChargeID).
			Msg("Failed to reconcile successful payment")
	}
}
