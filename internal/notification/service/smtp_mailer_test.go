package service

import (
	"bytes"
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloom/internal/domain"
)

func TestNewMessage(t *testing.T) {
	msg, err := newMessage(`"Bloom" <shop@bloom.test>`, Email{To: "ana@example.com", Subject: "Order received", Body: "line one\nline two\n"})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "shop@bloom.test")
	assert.Contains(t, raw, "ana@example.com")
	assert.Contains(t, raw, "Order received")
	assert.Contains(t, raw, "line one")
}

func TestSMTPMailer_RejectsBadAddresses(t *testing.T) {
	err := SMTPMailer{}.Send(context.Background(), domain.SMTPSettings{Host: "localhost", Port: 25, From: "not an address"}, Email{To: "ana@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from address")

	err = SMTPMailer{}.Send(context.Background(), domain.SMTPSettings{Host: "localhost", Port: 25, From: "shop@bloom.test"}, Email{To: "nobody"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipient address")
}

// silentServer accepts connections and never sends the SMTP greeting.
func silentServer(t *testing.T) domain.SMTPSettings {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var conns []net.Conn
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, conn)
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		<-done
		for _, c := range conns {
			c.Close()
		}
	})

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return domain.SMTPSettings{Host: host, Port: port, From: "shop@bloom.test"}
}

func sendAsync(mailer SMTPMailer, ctx context.Context, cfg domain.SMTPSettings) <-chan error {
	result := make(chan error, 1)
	go func() {
		result <- mailer.Send(ctx, cfg, Email{To: "ana@example.com", Subject: "hi", Body: "hi"})
	}()
	return result
}

func TestSMTPMailer_TimesOutOnSilentServer(t *testing.T) {
	cfg := silentServer(t)

	select {
	case err := <-sendAsync(SMTPMailer{Timeout: 200 * time.Millisecond}, context.Background(), cfg):
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Send did not return after the connection timeout")
	}
}

func TestSMTPMailer_StopsWhenContextCancelled(t *testing.T) {
	cfg := silentServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	select {
	case err := <-sendAsync(SMTPMailer{Timeout: time.Minute}, ctx, cfg):
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("Send did not return after the context expired")
	}
}
