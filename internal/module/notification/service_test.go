package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent    []sentEmail
	failErr error
}

type sentEmail struct {
	to      []string
	subject string
	body    string
}

func (f *fakeSender) Send(_ context.Context, to []string, subject, body string) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

type fakeRepo struct {
	records []*Record
}

func (f *fakeRepo) Create(_ context.Context, record *Record) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRepo) ListByOrder(_ context.Context, _ uuid.UUID) ([]*Record, error) {
	return f.records, nil
}

func testData() *OrderEmailData {
	return &OrderEmailData{
		OrderID:       uuid.New(),
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		PriceCents:    4999,
		Duration:      60,
		PaymentMethod: "card",
		DownloadURL:   "https://cdn.example.com/final.mp4",
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	sender := &fakeSender{}
	repo := &fakeRepo{}
	svc := NewService(sender, repo, nil, zap.NewNop(), "ops@example.com")

	data := testData()
	svc.SendOrderConfirmation(context.Background(), data)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"ada@example.com"}, sender.sent[0].to)
	assert.Contains(t, sender.sent[0].body, "Ada Lovelace")
	assert.Contains(t, sender.sent[0].body, "$49.99")
	assert.Contains(t, sender.sent[0].body, data.OrderID.String())

	require.Len(t, repo.records, 1)
	assert.True(t, repo.records[0].Sent)
	assert.Equal(t, TemplateOrderConfirmation, repo.records[0].Template)
	require.NotNil(t, repo.records[0].OrderID)
	assert.Equal(t, data.OrderID, *repo.records[0].OrderID)
}

func TestSendAdminOrderAlert_UsesAlertAddress(t *testing.T) {
	sender := &fakeSender{}
	repo := &fakeRepo{}
	svc := NewService(sender, repo, nil, zap.NewNop(), "ops@example.com")

	svc.SendAdminOrderAlert(context.Background(), testData())

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"ops@example.com"}, sender.sent[0].to)
	assert.Contains(t, sender.sent[0].body, "ada@example.com")
}

func TestSendAdminOrderAlert_NoAddressConfigured(t *testing.T) {
	sender := &fakeSender{}
	repo := &fakeRepo{}
	svc := NewService(sender, repo, nil, zap.NewNop(), "")

	svc.SendAdminOrderAlert(context.Background(), testData())

	assert.Empty(t, sender.sent)
	assert.Empty(t, repo.records)
}

func TestSendOrderCompleted_IncludesDownloadLink(t *testing.T) {
	sender := &fakeSender{}
	repo := &fakeRepo{}
	svc := NewService(sender, repo, nil, zap.NewNop(), "")

	svc.SendOrderCompleted(context.Background(), testData())

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].body, "https://cdn.example.com/final.mp4")
}

func TestSend_DeliveryFailureIsRecorded(t *testing.T) {
	sender := &fakeSender{failErr: errors.New("smtp down")}
	repo := &fakeRepo{}
	svc := NewService(sender, repo, nil, zap.NewNop(), "")

	svc.SendOrderConfirmation(context.Background(), testData())

	require.Len(t, repo.records, 1)
	assert.False(t, repo.records[0].Sent)
	require.NotNil(t, repo.records[0].Error)
	assert.Contains(t, *repo.records[0].Error, "smtp down")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$0.00", FormatPrice(0))
	assert.Equal(t, "$0.99", FormatPrice(99))
	assert.Equal(t, "$123.45", FormatPrice(12345))
}
