package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davlaati/humo-ai/internal/features/payments/models"
	"github.com/Davlaati/humo-ai/internal/features/payments/repository"
	"github.com/Davlaati/humo-ai/internal/platform/telegram"
	usermodels "github.com/Davlaati/humo-ai/internal/features/user/models"
	userrepo "github.com/Davlaati/humo-ai/internal/features/user/repository"
)

type stubUserRepo struct {
	users map[int64]*usermodels.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[int64]*usermodels.User{}}
}

func (r *stubUserRepo) GetByID(_ context.Context, id int64) (*usermodels.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, userrepo.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) Create(_ context.Context, u *usermodels.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, u *usermodels.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) Leaderboard(_ context.Context, _ *time.Time, _ int) ([]*usermodels.LeaderboardEntry, error) {
	return nil, nil
}

// memoryLedger mirrors the credit semantics of the postgres repository:
// ApplyConfirmation upserts the user, applies the credit and appends the
// success row in one step.
type memoryLedger struct {
	users        *stubUserRepo
	transactions []*models.Transaction
}

func (l *memoryLedger) AppendPending(_ context.Context, trx *models.Transaction) error {
	cp := *trx
	l.transactions = append(l.transactions, &cp)
	return nil
}

func (l *memoryLedger) ApplyConfirmation(ctx context.Context, conf repository.Confirmation) error {
	if _, ok := l.users.users[conf.User.ID]; !ok {
		cp := *conf.User
		l.users.users[conf.User.ID] = &cp
	}
	u := l.users.users[conf.User.ID]
	u.IsPremium = u.IsPremium || conf.SetPremium
	u.TelegramStars += conf.StarsDelta

	cp := *conf.Transaction
	l.transactions = append(l.transactions, &cp)
	return nil
}

func (l *memoryLedger) byStatus(status models.Status) []*models.Transaction {
	var out []*models.Transaction
	for _, trx := range l.transactions {
		if trx.Status == status {
			out = append(out, trx)
		}
	}
	return out
}

type stubProvider struct {
	link     string
	err      error
	requests []telegram.InvoiceLinkRequest
}

func (p *stubProvider) CreateInvoiceLink(_ context.Context, req telegram.InvoiceLinkRequest) (string, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return "", p.err
	}
	return p.link, nil
}

func newTestService(t *testing.T) (*Service, *stubUserRepo, *memoryLedger, *stubProvider) {
	t.Helper()
	users := newStubUserRepo()
	ledger := &memoryLedger{users: users}
	provider := &stubProvider{link: "https://t.me/$invoice"}
	svc := NewService(users, ledger, provider)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, users, ledger, provider
}

func seedUser(users *stubUserRepo, id int64) {
	u := usermodels.NewUser(id, "Test", "test", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	users.users[id] = u
}

func TestCreateInvoiceRecordsPendingAfterProviderSucceeds(t *testing.T) {
	svc, users, ledger, provider := newTestService(t)
	seedUser(users, 7)

	invoice, err := svc.CreateInvoice(context.Background(), 7, models.ItemPremium)
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/$invoice", invoice.Link)
	assert.Equal(t, "humo:premium:7:1748779200", invoice.Payload)

	require.Len(t, provider.requests, 1)
	assert.Equal(t, models.CurrencyStars, provider.requests[0].Currency)
	assert.Equal(t, 150, provider.requests[0].Prices[0].Amount)

	pending := ledger.byStatus(models.StatusPending)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(7), pending[0].UserID)
	assert.Equal(t, invoice.Payload, pending[0].Payload)
}

func TestCreateInvoiceProviderFailureLeavesNoState(t *testing.T) {
	svc, users, ledger, provider := newTestService(t)
	seedUser(users, 7)
	provider.err = errors.New("telegram is down")

	_, err := svc.CreateInvoice(context.Background(), 7, models.ItemStarsPack)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Empty(t, ledger.transactions, "no pending row may exist for an invoice that was never issued")
}

func TestCreateInvoiceUnknownUser(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.CreateInvoice(context.Background(), 404, models.ItemPremium)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestReconcilePremiumSetsFlagWithoutStars(t *testing.T) {
	svc, users, ledger, _ := newTestService(t)
	seedUser(users, 7)

	payload := models.EncodePayload(models.ItemPremium, 7, time.Now())
	err := svc.Reconcile(context.Background(), 7, 150, models.CurrencyStars, "charge-1", payload)
	require.NoError(t, err)

	u := users.users[7]
	assert.True(t, u.IsPremium)
	assert.Equal(t, 0, u.TelegramStars)

	success := ledger.byStatus(models.StatusSuccess)
	require.Len(t, success, 1)
	assert.Equal(t, "charge-1", success[0].ProviderChargeID)
	assert.Equal(t, 150, success[0].Amount)
}

func TestReconcileStarsPackCreditsAmount(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	seedUser(users, 7)

	payload := models.EncodePayload(models.ItemStarsPack, 7, time.Now())
	err := svc.Reconcile(context.Background(), 7, 100, models.CurrencyStars, "charge-2", payload)
	require.NoError(t, err)

	u := users.users[7]
	assert.False(t, u.IsPremium)
	assert.Equal(t, 100, u.TelegramStars)
}

func TestReconcileUnknownPayloadFallsBackToStarsCredit(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	seedUser(users, 7)

	err := svc.Reconcile(context.Background(), 7, 42, models.CurrencyStars, "charge-3", "something-external")
	require.NoError(t, err)
	assert.Equal(t, 42, users.users[7].TelegramStars)
}

func TestReconcileUnknownUser(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.Reconcile(context.Background(), 404, 100, models.CurrencyStars, "charge-4", "humo:stars_pack:404:0")
	assert.ErrorIs(t, err, ErrUnknownUser)
}

// Duplicate confirmations credit twice: the reconciler trusts upstream
// delivery counts and keeps no charge id index. Documents current
// behavior until pending-row correlation lands.
func TestReconcileDuplicateChargeCreditsTwice(t *testing.T) {
	svc, users, ledger, _ := newTestService(t)
	seedUser(users, 7)

	payload := models.EncodePayload(models.ItemStarsPack, 7, time.Now())
	require.NoError(t, svc.Reconcile(context.Background(), 7, 100, models.CurrencyStars, "charge-5", payload))
	require.NoError(t, svc.Reconcile(context.Background(), 7, 100, models.CurrencyStars, "charge-5", payload))

	assert.Equal(t, 200, users.users[7].TelegramStars)
	assert.Len(t, ledger.byStatus(models.StatusSuccess), 2)
}

func TestReconcileFromChannelCreatesUnknownUser(t *testing.T) {
	svc, users, ledger, _ := newTestService(t)

	identity := ChannelIdentity{ID: 8, Name: "Firuz", Username: "firuz"}
	payload := models.EncodePayload(models.ItemStarsPack, 8, time.Now())

	err := svc.ReconcileFromChannel(context.Background(), identity, 100, models.CurrencyStars, "charge-6", payload)
	require.NoError(t, err)

	u, ok := users.users[8]
	require.True(t, ok, "channel path must seed the user row")
	assert.Equal(t, "Firuz", u.Name)
	assert.Equal(t, 100, u.TelegramStars)
	assert.Len(t, ledger.byStatus(models.StatusSuccess), 1)
}

func TestApprovePreCheckout(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	assert.True(t, svc.ApprovePreCheckout("humo:premium:7:123"))
	assert.True(t, svc.ApprovePreCheckout("humo:stars_pack:7:123"))
	assert.False(t, svc.ApprovePreCheckout("other:premium:7:123"))
	assert.False(t, svc.ApprovePreCheckout("humo"))
	assert.False(t, svc.ApprovePreCheckout(""))
}
