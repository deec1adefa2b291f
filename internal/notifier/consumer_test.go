package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jsivak/soleplug-backend/pkg/enums"
	"github.com/jsivak/soleplug-backend/pkg/logger"
	"github.com/jsivak/soleplug-backend/pkg/mailer"
	"github.com/jsivak/soleplug-backend/pkg/outbox"
	"github.com/jsivak/soleplug-backend/pkg/outbox/idempotency"
	"github.com/jsivak/soleplug-backend/pkg/outbox/payloads"
)

type fakeStore struct {
	keys map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{keys: map[string]string{}}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, error) {
	return s.keys[key], nil
}

func (s *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = "1"
	return true, nil
}

func (s *fakeStore) IdempotencyKey(scope, id string) string {
	return "sp:idempotency:" + scope + ":" + id
}

func (s *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.keys, key)
	}
	return nil
}

type fakeRepo struct {
	email string
	err   error
}

func (r *fakeRepo) SellerEmail(_ context.Context, _ uuid.UUID) (string, error) {
	return r.email, r.err
}

type fakeMailer struct {
	sent []mailer.Email
	err  error
}

func (m *fakeMailer) Send(_ context.Context, email mailer.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func newTestConsumer(t *testing.T, repo Repository, mail mailSender) (*Consumer, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	manager, err := idempotency.NewManager(store, time.Hour)
	require.NoError(t, err)
	return &Consumer{
		repo:        repo,
		idempotency: manager,
		mail:        mail,
		logg:        logger.New(logger.Options{ServiceName: "notifier-test", Output: io.Discard}),
	}, store
}

func buildMessage(t *testing.T, eventType enums.OutboxEventType, eventID uuid.UUID, payload any) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID.String(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	require.NoError(t, err)
	return &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       envelope,
		Attributes: map[string]string{"event_type": string(eventType)},
	}
}

func TestConsumerSendsAcceptedEmail(t *testing.T) {
	repo := &fakeRepo{email: "seller@example.com"}
	mail := &fakeMailer{}
	consumer, _ := newTestConsumer(t, repo, mail)

	msg := buildMessage(t, enums.EventSaleAccepted, uuid.New(), payloads.SaleAcceptedEvent{
		SaleID:      uuid.New(),
		SellerID:    uuid.New(),
		ProductName: "Air Zoom Test",
		Size:        "9.5",
		SalePrice:   decimal.NewFromInt(200),
		Payout:      decimal.NewFromInt(155),
		ExternalID:  "AIR-001",
	})

	result := consumer.process(context.Background(), msg)
	require.True(t, result.ack)
	require.False(t, result.nack)
	require.Len(t, mail.sent, 1)
	require.Equal(t, "seller@example.com", mail.sent[0].To)
	require.Contains(t, mail.sent[0].Subject, "Air Zoom Test")
	require.Contains(t, mail.sent[0].HTML, "155.00")
}

func TestConsumerDoesNotEmailOnStatusChanges(t *testing.T) {
	repo := &fakeRepo{email: "seller@example.com"}
	mail := &fakeMailer{}
	consumer, _ := newTestConsumer(t, repo, mail)

	// sellers are only emailed at conversion; a stray status-change event
	// from an older deploy is acked and dropped
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{"new_status":"shipped"}`),
	})
	require.NoError(t, err)
	msg := &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       envelope,
		Attributes: map[string]string{"event_type": "sale_status_changed"},
	}

	result := consumer.process(context.Background(), msg)
	require.True(t, result.ack)
	require.False(t, result.nack)
	require.Empty(t, mail.sent)
}

func TestConsumerSkipsDuplicateEvents(t *testing.T) {
	repo := &fakeRepo{email: "seller@example.com"}
	mail := &fakeMailer{}
	consumer, _ := newTestConsumer(t, repo, mail)

	eventID := uuid.New()
	msg := buildMessage(t, enums.EventSaleAccepted, eventID, payloads.SaleAcceptedEvent{
		SellerID: uuid.New(),
	})

	require.True(t, consumer.process(context.Background(), msg).ack)
	require.True(t, consumer.process(context.Background(), msg).ack)
	require.Len(t, mail.sent, 1)
}

func TestConsumerNacksAndUnmarksOnSendFailure(t *testing.T) {
	repo := &fakeRepo{email: "seller@example.com"}
	mail := &fakeMailer{err: errors.New("webhook down")}
	consumer, store := newTestConsumer(t, repo, mail)

	msg := buildMessage(t, enums.EventSaleAccepted, uuid.New(), payloads.SaleAcceptedEvent{
		SellerID: uuid.New(),
	})

	result := consumer.process(context.Background(), msg)
	require.True(t, result.nack)
	// marker removed so a redelivery can retry
	require.Empty(t, store.keys)
}

func TestConsumerAcksUnknownEvents(t *testing.T) {
	repo := &fakeRepo{email: "seller@example.com"}
	mail := &fakeMailer{}
	consumer, _ := newTestConsumer(t, repo, mail)

	msg := &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       []byte("{}"),
		Attributes: map[string]string{"event_type": "something_else"},
	}

	result := consumer.process(context.Background(), msg)
	require.True(t, result.ack)
	require.Empty(t, mail.sent)
}

func TestConsumerSkipsSellersWithoutEmail(t *testing.T) {
	repo := &fakeRepo{email: ""}
	mail := &fakeMailer{}
	consumer, _ := newTestConsumer(t, repo, mail)

	msg := buildMessage(t, enums.EventSaleAccepted, uuid.New(), payloads.SaleAcceptedEvent{
		SellerID: uuid.New(),
	})

	result := consumer.process(context.Background(), msg)
	require.True(t, result.ack)
	require.Empty(t, mail.sent)
}
