package service

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"go_course_progress/internal/config"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmtpMailer_Send(t *testing.T) {
	m := NewSmtpMailer(config.SMTPConfig{Host: "mail.local", Port: 2525, From: "noreply@example.com"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, m.Send(context.Background(), "learner@example.com", "修了証", "本文"))
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"learner@example.com"}, gotTo)
	msg := string(gotMsg)
	assert.True(t, strings.HasPrefix(msg, "From: noreply@example.com\r\n"))
	assert.Contains(t, msg, "Subject: 修了証\r\n")
	assert.Contains(t, msg, "charset=UTF-8")
	assert.True(t, strings.HasSuffix(msg, "\r\n本文\r\n"))

	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	assert.Error(t, m.Send(context.Background(), "learner@example.com", "s", "b"))
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := &SESMailer{client: client, from: "noreply@example.com"}

	require.NoError(t, m.Send(context.Background(), "learner@example.com", "件名", "本文"))
	require.NotNil(t, client.input)
	assert.Equal(t, "noreply@example.com", *client.input.FromEmailAddress)
	assert.Equal(t, []string{"learner@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "件名", *client.input.Content.Simple.Subject.Data)
	assert.Equal(t, "本文", *client.input.Content.Simple.Body.Text.Data)

	client.err = errors.New("throttled")
	assert.Error(t, m.Send(context.Background(), "learner@example.com", "件名", "本文"))
}

func TestNewMailer(t *testing.T) {
	ctx := context.Background()

	m, err := NewMailer(ctx, &config.Config{})
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	m, err = NewMailer(ctx, &config.Config{Mailer: config.MailerConfig{Type: "smtp"}})
	require.NoError(t, err)
	assert.IsType(t, &SmtpMailer{}, m)

	_, err = NewMailer(ctx, &config.Config{
		Mailer: config.MailerConfig{Type: "ses"},
		SES:    config.SESConfig{Region: "ap-northeast-1", AuthType: "static_credentials"},
	})
	assert.Error(t, err, "static_credentials without keys is rejected")
}
