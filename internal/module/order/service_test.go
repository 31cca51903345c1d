package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shoutly/server/internal/module/notification"
	"github.com/shoutly/server/internal/module/storage"
	"github.com/shoutly/server/internal/module/user"
	apperrors "github.com/shoutly/server/internal/shared/errors"
)

// --- Fakes ---

type fakeRepo struct {
	orders map[uuid.UUID]*Order
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[uuid.UUID]*Order)}
}

func (f *fakeRepo) Create(_ context.Context, o *Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.PaymentIntentID != nil {
		for _, other := range f.orders {
			if other.PaymentIntentID != nil && *other.PaymentIntentID == *o.PaymentIntentID {
				return ErrDuplicateSession
			}
		}
	}
	copied := *o
	f.orders[o.ID] = &copied
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeRepo) GetByPaymentIntentID(_ context.Context, sessionID string) (*Order, error) {
	for _, o := range f.orders {
		if o.PaymentIntentID != nil && *o.PaymentIntentID == sessionID {
			copied := *o
			return &copied, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (f *fakeRepo) List(_ context.Context, filter *Filter, limit, offset int) ([]*Order, int64, error) {
	var out []*Order
	for _, o := range f.orders {
		if filter != nil && filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		copied := *o
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.orders[id]; !ok {
		return ErrOrderNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeRepo) UpdateStatusIf(_ context.Context, id uuid.UUID, from, to Status, paymentStatus string) (bool, error) {
	o, ok := f.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	if paymentStatus != "" {
		o.PaymentStatus = paymentStatus
	}
	return true, nil
}

func (f *fakeRepo) OverrideStatus(_ context.Context, id uuid.UUID, to Status) (bool, error) {
	o, ok := f.orders[id]
	if !ok {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (f *fakeRepo) CompleteIf(_ context.Context, id uuid.UUID, finalVideoKey string) (bool, error) {
	o, ok := f.orders[id]
	if !ok || (o.Status != StatusPaid && o.Status != StatusProcessing) {
		return false, nil
	}
	o.Status = StatusComplete
	o.FinalVideoKey = finalVideoKey
	return true, nil
}

func (f *fakeRepo) BindPaymentSession(_ context.Context, id uuid.UUID, sessionID, paymentStatus string) error {
	for _, other := range f.orders {
		if other.ID != id && other.PaymentIntentID != nil && *other.PaymentIntentID == sessionID {
			return ErrDuplicateSession
		}
	}
	o, ok := f.orders[id]
	if !ok || o.PaymentIntentID != nil {
		return ErrSessionAlreadyBound
	}
	o.PaymentIntentID = &sessionID
	o.PaymentStatus = paymentStatus
	return nil
}

func (f *fakeRepo) SetPaymentStatus(_ context.Context, id uuid.UUID, paymentStatus string) error {
	if o, ok := f.orders[id]; ok {
		o.PaymentStatus = paymentStatus
	}
	return nil
}

type fakeUserRepo struct {
	users map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*user.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindOrCreate(ctx context.Context, candidate *user.User) (*user.User, error) {
	if existing, err := f.GetByEmail(ctx, candidate.Email); err == nil {
		return existing, nil
	}
	if err := f.Create(ctx, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

func (f *fakeUserRepo) Update(_ context.Context, _ *user.User) error { return nil }

type fakeVideoStore struct {
	objects map[string]bool
}

func newFakeVideoStore(keys ...string) *fakeVideoStore {
	objects := make(map[string]bool)
	for _, k := range keys {
		objects[k] = true
	}
	return &fakeVideoStore{objects: objects}
}

func (f *fakeVideoStore) ObjectExists(_ context.Context, key string) (bool, error) {
	return f.objects[key], nil
}

func (f *fakeVideoStore) PresignDownload(_ context.Context, key string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://signed.example.com/" + key, Method: "GET"}, nil
}

type fakeNotifier struct {
	confirmations []uuid.UUID
	adminAlerts   []uuid.UUID
	completions   []*notification.OrderEmailData
	failures      []uuid.UUID
}

func (f *fakeNotifier) SendOrderConfirmation(_ context.Context, d *notification.OrderEmailData) {
	f.confirmations = append(f.confirmations, d.OrderID)
}

func (f *fakeNotifier) SendAdminOrderAlert(_ context.Context, d *notification.OrderEmailData) {
	f.adminAlerts = append(f.adminAlerts, d.OrderID)
}

func (f *fakeNotifier) SendOrderCompleted(_ context.Context, d *notification.OrderEmailData) {
	f.completions = append(f.completions, d)
}

func (f *fakeNotifier) SendPaymentFailed(_ context.Context, d *notification.OrderEmailData) {
	f.failures = append(f.failures, d.OrderID)
}

// --- Helpers ---

type serviceFixture struct {
	svc      *Service
	repo     *fakeRepo
	users    *fakeUserRepo
	videos   *fakeVideoStore
	notifier *fakeNotifier
}

func newFixture(videoKeys ...string) *serviceFixture {
	repo := newFakeRepo()
	users := newFakeUserRepo()
	videos := newFakeVideoStore(videoKeys...)
	notifier := &fakeNotifier{}
	svc := NewService(repo, users, videos, notifier, nil, zap.NewNop())
	return &serviceFixture{svc: svc, repo: repo, users: users, videos: videos, notifier: notifier}
}

func validRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		FirstName:        "Ada",
		LastName:         "Lovelace",
		Email:            "ada@example.com",
		Price:            5000,
		Duration:         30,
		OriginalVideoKey: "uploads/abc.mp4",
		PaymentMethod:    PaymentMethodCard,
	}
}

// --- Tests ---

func TestCreate_Valid(t *testing.T) {
	f := newFixture("uploads/abc.mp4")

	o, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.Nil(t, o.PaymentIntentID)
	assert.Equal(t, int64(5000), o.Price)
	require.NotNil(t, o.User)
	assert.Equal(t, "ada@example.com", o.User.Email)

	// No email goes out at creation; notifications wait for confirmed payment
	assert.Empty(t, f.notifier.confirmations)
}

func TestCreate_ReusesExistingUser(t *testing.T) {
	f := newFixture("uploads/abc.mp4")

	first, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, first.UserID, second.UserID)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture("uploads/abc.mp4")

	tests := []struct {
		name   string
		mutate func(*CreateOrderRequest)
	}{
		{"zero price", func(r *CreateOrderRequest) { r.Price = 0 }},
		{"negative price", func(r *CreateOrderRequest) { r.Price = -100 }},
		{"zero duration", func(r *CreateOrderRequest) { r.Duration = 0 }},
		{"unknown method", func(r *CreateOrderRequest) { r.PaymentMethod = "cash" }},
		{"missing video", func(r *CreateOrderRequest) { r.OriginalVideoKey = "uploads/nope.mp4" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			_, err := f.svc.Create(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, 400, apperrors.GetStatusCode(err))
		})
	}
}

func TestApplyPaymentEvent_CapturedOnce(t *testing.T) {
	f := newFixture("uploads/abc.mp4")
	o, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	changed, err := f.svc.ApplyPaymentEvent(context.Background(), o, EventPaymentCaptured, "COMPLETED")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusPaid, o.Status)

	stored, err := f.repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, stored.Status)
	assert.Equal(t, "COMPLETED", stored.PaymentStatus)

	assert.Len(t, f.notifier.confirmations, 1)
	assert.Len(t, f.notifier.adminAlerts, 1)
}

func TestApplyPaymentEvent_ReplayIsNoOp(t *testing.T) {
	f := newFixture("uploads/abc.mp4")
	o, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	changed, err := f.svc.ApplyPaymentEvent(context.Background(), o, EventPaymentCaptured, "COMPLETED")
	require.NoError(t, err)
	require.True(t, changed)

	// Replayed delivery of the same event
	replayed, err := f.repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	changed, err = f.svc.ApplyPaymentEvent(context.Background(), replayed, EventPaymentCaptured, "COMPLETED")
	require.NoError(t, err)
	assert.False(t, changed)

	// Exactly one confirmation email total
	assert.Len(t, f.notifier.confirmations, 1)
	assert.Len(t, f.notifier.adminAlerts, 1)
}

func TestApplyPaymentEvent_RaceLoserDoesNotNotify(t *testing.T) {
	f := newFixture("uploads/abc.mp4")
	o, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	// Two handlers read the same pending order
	first, err := f.repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	second, err := f.repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)

	changed, err := f.svc.ApplyPaymentEvent(context.Background(), first, EventPaymentCaptured, "COMPLETED")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.svc.ApplyPaymentEvent(context.Background(), second, EventPaymentCaptured, "COMPLETED")
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Len(t, f.notifier.confirmations, 1)
}

func TestApplyPaymentEvent_Failed(t *testing.T) {
	f := newFixture("uploads/abc.mp4")
	o, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	changed, err := f.svc.ApplyPaymentEvent(context.Background(), o, EventPaymentFailed, "DENIED")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusPaymentFailed, o.Status)
	assert.Len(t, f.notifier.failures, 1)
	assert.Empty(t, f.notifier.confirmations)
}

func TestApplyPaymentEvent_PendingKeepsProviderStatusFresh(t *testing.T) {
	f := newFixture("uploads/abc.mp4")
	o, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	changed, err := f.svc.ApplyPaymentEvent(context.Background(), o, EventPaymentPending, "APPROVED")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, StatusPending, o.Status)

	stored, err := f.repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", stored.PaymentStatus)
}

func TestAdminComplete(t *testing.T) {
	f := newFixture("uploads/abc.mp4", "final/abc.mp4")
	o, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	// Completing a pending order is rejected
	_, err = f.svc.AdminComplete(context.Background(), o.ID, "final/abc.mp4")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = f.svc.ApplyPaymentEvent(context.Background(), o, EventPaymentCaptured, "COMPLETED")
	require.NoError(t, err)

	completed, err := f.svc.AdminComplete(context.Background(), o.ID, "final/abc.mp4")
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, completed.Status)
	assert.Equal(t, "final/abc.mp4", completed.FinalVideoKey)

	require.Len(t, f.notifier.completions, 1)
	assert.Contains(t, f.notifier.completions[0].DownloadURL, "final/abc.mp4")
}

func TestAdminComplete_MissingVideo(t *testing.T) {
	f := newFixture("uploads/abc.mp4")
	o, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	_, err = f.svc.ApplyPaymentEvent(context.Background(), o, EventPaymentCaptured, "COMPLETED")
	require.NoError(t, err)

	_, err = f.svc.AdminComplete(context.Background(), o.ID, "final/missing.mp4")
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.GetStatusCode(err))

	_, err = f.svc.AdminComplete(context.Background(), o.ID, "")
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.GetStatusCode(err))
}

func TestAdminOverrideStatus(t *testing.T) {
	f := newFixture("uploads/abc.mp4")
	o, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	updated, err := f.svc.AdminOverrideStatus(context.Background(), o.ID, StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, updated.Status)

	// Unknown status is rejected with the valid values listed
	_, err = f.svc.AdminOverrideStatus(context.Background(), o.ID, Status("shipped"))
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.GetStatusCode(err))
	assert.Contains(t, err.Error(), "pending")

	// Complete without a final video is rejected
	_, err = f.svc.AdminOverrideStatus(context.Background(), o.ID, StatusComplete)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestBindPaymentSession(t *testing.T) {
	f := newFixture("uploads/abc.mp4")
	first, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Email = "bob@example.com"
	second, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	require.NoError(t, f.svc.BindPaymentSession(context.Background(), first.ID, "sess_123", "created"))

	// Same session cannot bind to a second order
	err = f.svc.BindPaymentSession(context.Background(), second.ID, "sess_123", "created")
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.GetStatusCode(err))
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.GetStatusCode(err))
}

func TestList_FiltersByStatus(t *testing.T) {
	f := newFixture("uploads/abc.mp4")
	o, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	_, err = f.svc.ApplyPaymentEvent(context.Background(), o, EventPaymentCaptured, "COMPLETED")
	require.NoError(t, err)

	req := validRequest()
	req.Email = "bob@example.com"
	_, err = f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	paid := StatusPaid
	orders, total, err := f.svc.List(context.Background(), &Filter{Status: &paid}, 20, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, StatusPaid, orders[0].Status)

	bogus := Status("shipped")
	_, _, err = f.svc.List(context.Background(), &Filter{Status: &bogus}, 20, 0)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.GetStatusCode(err))
}
