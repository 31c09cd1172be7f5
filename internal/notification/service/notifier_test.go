package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

type fakeUsers struct {
	users map[int64]domain.User
}

func (f fakeUsers) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	return &u, nil
}

type fakeSettings struct {
	settings domain.Settings
	err      error
}

func (f fakeSettings) Get(ctx context.Context) (*domain.Settings, error) {
	return &f.settings, f.err
}

type recordingMailer struct {
	sent []Email
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, cfg domain.SMTPSettings, msg Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func configuredSettings() domain.Settings {
	return domain.Settings{
		StoreName: "Bloom",
		Currency:  "USD",
		SMTP:      domain.SMTPSettings{Host: "smtp.local", Port: 25, From: "shop@bloom.test"},
	}
}

func eventBody(t *testing.T, ev domain.OrderEvent) []byte {
	t.Helper()
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	return body
}

func placedEvent() domain.OrderEvent {
	return domain.OrderEvent{
		EventID:     "e-1",
		Type:        domain.EventOrderPlaced,
		OrderID:     5,
		OrderNumber: "BLM-20260501-ABCD1234",
		UserID:      7,
		Status:      domain.OrderStatusPending,
		Total:       decimal.RequireFromString("42.5"),
		OccurredAt:  time.Now(),
	}
}

func TestHandle_SendsPlacedEmail(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifier(
		fakeUsers{users: map[int64]domain.User{7: {ID: 7, Name: "Ana", Email: "ana@example.com"}}},
		fakeSettings{settings: configuredSettings()},
		mailer,
		zap.NewNop(),
	)

	require.NoError(t, n.Handle(context.Background(), eventBody(t, placedEvent())))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ana@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Subject, "BLM-20260501-ABCD1234")
	assert.Contains(t, mailer.sent[0].Body, "Total: 42.50 USD")
}

func TestHandle_SkipsWithoutSMTP(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifier(fakeUsers{}, fakeSettings{settings: domain.Settings{StoreName: "Bloom"}}, mailer, zap.NewNop())

	assert.NoError(t, n.Handle(context.Background(), eventBody(t, placedEvent())))
	assert.Empty(t, mailer.sent)
}

func TestHandle_PermanentFailures(t *testing.T) {
	n := NewNotifier(fakeUsers{}, fakeSettings{settings: configuredSettings()}, &recordingMailer{}, zap.NewNop())

	err := n.Handle(context.Background(), []byte("{not json"))
	assert.True(t, isPermanent(err))

	err = n.Handle(context.Background(), eventBody(t, placedEvent()))
	assert.True(t, isPermanent(err), "unknown user should not be retried")

	ev := placedEvent()
	ev.Type = "order.deleted"
	err = n.Handle(context.Background(), eventBody(t, ev))
	assert.True(t, isPermanent(err))
}

func TestHandle_TransientFailure(t *testing.T) {
	n := NewNotifier(
		fakeUsers{users: map[int64]domain.User{7: {ID: 7, Name: "Ana", Email: "ana@example.com"}}},
		fakeSettings{settings: configuredSettings()},
		&recordingMailer{err: errors.New("connection refused")},
		zap.NewNop(),
	)

	err := n.Handle(context.Background(), eventBody(t, placedEvent()))
	require.Error(t, err)
	assert.False(t, isPermanent(err))
}

type blockingMailer struct{}

func (blockingMailer) Send(ctx context.Context, cfg domain.SMTPSettings, msg Email) error {
	<-ctx.Done()
	return ctx.Err()
}

type recordingAcker struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *recordingAcker) Ack(tag uint64, multiple bool) error {
	a.acked++
	return nil
}

func (a *recordingAcker) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *recordingAcker) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestHandleDelivery_BoundsSlowMailer(t *testing.T) {
	n := NewNotifier(
		fakeUsers{users: map[int64]domain.User{7: {ID: 7, Name: "Ana", Email: "ana@example.com"}}},
		fakeSettings{settings: configuredSettings()},
		blockingMailer{},
		zap.NewNop(),
	)
	n.timeout = 50 * time.Millisecond

	acker := &recordingAcker{}
	body := eventBody(t, placedEvent())
	done := make(chan struct{})
	go func() {
		defer close(done)
		n.HandleDelivery(context.Background(), amqp.Delivery{Acknowledger: acker, Body: body})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("HandleDelivery did not give up on the mailer")
	}
	assert.Equal(t, 0, acker.acked)
	assert.Equal(t, 1, acker.nacked)
	assert.True(t, acker.requeue)
}

func TestHandleDelivery_AcksPermanentFailures(t *testing.T) {
	n := NewNotifier(fakeUsers{}, fakeSettings{settings: configuredSettings()}, &recordingMailer{}, zap.NewNop())
	acker := &recordingAcker{}

	n.HandleDelivery(context.Background(), amqp.Delivery{Acknowledger: acker, Body: []byte("{not json")})

	assert.Equal(t, 1, acker.acked)
	assert.Equal(t, 0, acker.nacked)
}

func TestRenderEmail_StatusChange(t *testing.T) {
	ev := placedEvent()
	ev.Type = domain.EventOrderStatusChanged
	ev.Previous = domain.OrderStatusConfirmed
	ev.Status = domain.OrderStatusShipped

	msg := RenderEmail(ev, domain.User{Name: "Ana", Email: "ana@example.com"}, configuredSettings())

	assert.Equal(t, "Bloom: order BLM-20260501-ABCD1234 is now shipped", msg.Subject)
	assert.Contains(t, msg.Body, "changed from confirmed to shipped")
}
