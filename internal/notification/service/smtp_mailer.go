package service

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	gomail "github.com/wneessen/go-mail"

	"bloom/internal/domain"
)

const (
	DefaultSMTPTimeout = 15 * time.Second
	defaultSMTPPort    = 25
)

// SMTPMailer delivers mail through the server configured in store settings.
// Timeout bounds the dial and every read and write on the connection.
type SMTPMailer struct {
	Timeout time.Duration
}

func (m SMTPMailer) timeout() time.Duration {
	if m.Timeout <= 0 {
		return DefaultSMTPTimeout
	}
	return m.Timeout
}

func (m SMTPMailer) Send(ctx context.Context, cfg domain.SMTPSettings, msg Email) error {
	message, err := newMessage(cfg.From, msg)
	if err != nil {
		return err
	}

	port := cfg.Port
	if port == 0 {
		port = defaultSMTPPort
	}

	dialer := &deadlineDialer{ctx: ctx, timeout: m.timeout()}
	defer dialer.release()

	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTimeout(m.timeout()),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithDialContextFunc(dialer.DialContext),
	}
	if cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.User),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("sending mail: %w", ctxErr)
		}
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

func newMessage(from string, msg Email) (*gomail.Msg, error) {
	message := gomail.NewMsg()
	if err := message.From(from); err != nil {
		return nil, fmt.Errorf("parsing from address: %w", err)
	}
	if err := message.To(msg.To); err != nil {
		return nil, fmt.Errorf("parsing recipient address: %w", err)
	}
	message.Subject(msg.Subject)
	message.SetDate()
	message.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return message, nil
}

// deadlineDialer puts an absolute deadline on every connection it opens and
// expires it early when ctx is cancelled, so a silent server cannot hold the
// sender past the timeout.
type deadlineDialer struct {
	ctx     context.Context
	timeout time.Duration

	mu    sync.Mutex
	stops []func() bool
}

func (d *deadlineDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := (&net.Dialer{Timeout: d.timeout}).DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	if err := conn.SetDeadline(time.Now().Add(d.timeout)); err != nil {
		conn.Close()
		return nil, err
	}

	stop := context.AfterFunc(d.ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	d.mu.Lock()
	d.stops = append(d.stops, stop)
	d.mu.Unlock()
	return conn, nil
}

func (d *deadlineDialer) release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, stop := range d.stops {
		stop()
	}
	d.stops = nil
}
