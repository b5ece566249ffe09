package notification

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/storefront/internal/testutil"
)

func TestSMTPMailer_Send(t *testing.T) {
	config := SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "mailer", Password: "s3cret",
		From: "no-reply@example.com"}

	t.Run("Success_ComposesHTMLMessage", func(t *testing.T) {
		mailer := NewSMTPMailer(config)
		mailer.now = func() time.Time { return time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC) }

		var gotAddr, gotFrom string
		var gotTo []string
		var gotAuth smtp.Auth
		var gotMsg []byte
		mailer.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
			return nil
		}

		err := mailer.Send(context.Background(), Message{To: "ada@example.com", Subject: "Hello", HTML: "<p>Hi</p>"})
		require.NoError(t, err)

		assert.Equal(t, "smtp.example.com:587", gotAddr)
		assert.NotNil(t, gotAuth)
		assert.Equal(t, "no-reply@example.com", gotFrom)
		assert.Equal(t, []string{"ada@example.com"}, gotTo)

		head, body, found := strings.Cut(string(gotMsg), "\r\n\r\n")
		require.True(t, found)
		assert.Contains(t, head, "To: ada@example.com\r\n")
		assert.Contains(t, head, "Subject: Hello\r\n")
		assert.Contains(t, head, "Content-Type: text/html; charset=UTF-8")
		assert.Contains(t, head, "Date: Mon, 01 Jun 2026 08:00:00 +0000")
		assert.Equal(t, "<p>Hi</p>", body)
	})

	t.Run("Success_NoAuthWithoutUsername", func(t *testing.T) {
		mailer := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25, From: "no-reply@example.com"})
		mailer.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			assert.Nil(t, a)
			return nil
		}

		assert.NoError(t, mailer.Send(context.Background(), Message{To: "ada@example.com"}))
	})

	t.Run("Error_RelayFailure", func(t *testing.T) {
		mailer := NewSMTPMailer(config)
		mailer.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			return errors.New("535 authentication failed")
		}

		err := mailer.Send(context.Background(), Message{To: "ada@example.com"})
		assert.ErrorContains(t, err, "failed to send mail to ada@example.com")
	})

	t.Run("Error_ContextCancelled", func(t *testing.T) {
		mailer := NewSMTPMailer(config)
		mailer.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			t.Fatal("relay must not be contacted")
			return nil
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, mailer.Send(ctx, Message{To: "ada@example.com"}), context.Canceled)
	})
}

func TestLogMailer_Send(t *testing.T) {
	mailer := NewLogMailer(testutil.DiscardLogger())
	assert.NoError(t, mailer.Send(context.Background(), Message{To: "ada@example.com", Subject: "Hello"}))
}
