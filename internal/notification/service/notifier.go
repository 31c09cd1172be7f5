package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

type UserReader interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

type SettingsReader interface {
	Get(ctx context.Context) (*domain.Settings, error)
}

// Email is a rendered plain-text message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// DeliveryTimeout bounds the handling of one broker message.
const DeliveryTimeout = 30 * time.Second

type Mailer interface {
	Send(ctx context.Context, cfg domain.SMTPSettings, msg Email) error
}

// Notifier turns order events into customer emails.
type Notifier struct {
	users    UserReader
	settings SettingsReader
	mailer   Mailer
	logger   *zap.Logger
	timeout  time.Duration
}

func NewNotifier(users UserReader, settings SettingsReader, mailer Mailer, logger *zap.Logger) *Notifier {
	return &Notifier{users: users, settings: settings, mailer: mailer, logger: logger, timeout: DeliveryTimeout}
}

// HandleDelivery processes one broker message. Malformed messages and events
// for unknown users are acked and dropped; transient failures are requeued once.
func (n *Notifier) HandleDelivery(ctx context.Context, msg amqp.Delivery) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	err := n.Handle(ctx, msg.Body)
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case isPermanent(err):
		n.logger.Warn("dropping order event", zap.String("messageType", msg.Type), zap.Error(err))
		_ = msg.Ack(false)
	default:
		n.logger.Error("order event handling failed",
			zap.String("messageType", msg.Type),
			zap.Bool("redelivered", msg.Redelivered),
			zap.Error(err),
		)
		_ = msg.Nack(false, !msg.Redelivered)
	}
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func isPermanent(err error) bool {
	_, ok := err.(permanentError)
	return ok
}

// Handle decodes an order event and emails the customer.
func (n *Notifier) Handle(ctx context.Context, body []byte) error {
	var ev domain.OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return permanentError{fmt.Errorf("decoding order event: %w", err)}
	}
	if ev.Type != domain.EventOrderPlaced && ev.Type != domain.EventOrderStatusChanged {
		return permanentError{fmt.Errorf("unsupported event type %q", ev.Type)}
	}

	settings, err := n.settings.Get(ctx)
	if err != nil {
		return err
	}
	if !settings.SMTP.Configured() {
		n.logger.Info("smtp not configured, skipping order email",
			zap.String("eventType", ev.Type),
			zap.String("orderNumber", ev.OrderNumber),
		)
		return nil
	}

	user, err := n.users.FindByID(ctx, ev.UserID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return permanentError{err}
		}
		return err
	}

	msg := RenderEmail(ev, *user, *settings)
	if err := n.mailer.Send(ctx, settings.SMTP, msg); err != nil {
		return fmt.Errorf("sending email for order %s: %w", ev.OrderNumber, err)
	}

	n.logger.Info("order email sent",
		zap.String("eventType", ev.Type),
		zap.String("orderNumber", ev.OrderNumber),
		zap.Int64("userId", user.ID),
	)
	return nil
}

// RenderEmail builds the plain-text message for ev.
func RenderEmail(ev domain.OrderEvent, user domain.User, settings domain.Settings) Email {
	var subject string
	var b strings.Builder

	fmt.Fprintf(&b, "Hello %s,\n\n", user.Name)
	switch ev.Type {
	case domain.EventOrderPlaced:
		subject = fmt.Sprintf("%s: order %s received", settings.StoreName, ev.OrderNumber)
		fmt.Fprintf(&b, "Thank you for your order %s.\n", ev.OrderNumber)
		fmt.Fprintf(&b, "Total: %s %s\n", ev.Total.StringFixed(2), settings.Currency)
		b.WriteString("We will let you know as soon as it moves along.\n")
	default:
		subject = fmt.Sprintf("%s: order %s is now %s", settings.StoreName, ev.OrderNumber, statusLabel(ev.Status))
		if ev.Previous != "" {
			fmt.Fprintf(&b, "Your order %s changed from %s to %s.\n", ev.OrderNumber, statusLabel(ev.Previous), statusLabel(ev.Status))
		} else {
			fmt.Fprintf(&b, "Your order %s is now %s.\n", ev.OrderNumber, statusLabel(ev.Status))
		}
	}
	fmt.Fprintf(&b, "\n%s\n", settings.StoreName)

	return Email{To: user.Email, Subject: subject, Body: b.String()}
}

func statusLabel(s domain.OrderStatus) string {
	return strings.ToLower(string(s))
}
