package email

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestTemplateManager_Render(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"application_status", "broadcast", "deadline_reminder", "invitation",
		"otp", "password_reset", "welcome",
	}, tm.TemplateNames())

	html, err := tm.Render("otp", TemplateData{
		"AppName":          "Campus Placements",
		"Name":             "Asha",
		"Code":             "123456",
		"ExpiresInMinutes": 10,
	})
	require.NoError(t, err)
	assert.Contains(t, html, "123456")
	assert.Contains(t, html, "Campus Placements")
	assert.Contains(t, html, "10 minutes")
}

func TestTemplateManager_EscapesInput(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	html, err := tm.Render("broadcast", TemplateData{"Title": "Hi", "Message": "<script>x</script>"})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestTemplateManager_Unknown(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	_, err = tm.Render("nope", nil)
	assert.Error(t, err)
}

func TestSMTPProvider_BuildsMessage(t *testing.T) {
	p, err := NewSMTPProvider(Config{
		SMTPHost:  "smtp.university.edu",
		SMTPPort:  587,
		FromEmail: "placements@university.edu",
		FromName:  "Placement Cell",
		UseTLS:    true,
	})
	require.NoError(t, err)
	assert.False(t, p.dialer.SSL)

	var captured *gomail.Message
	p.send = func(m *gomail.Message) error {
		captured = m
		return nil
	}

	err = p.Send(context.Background(), &Email{
		To:       []string{"student@university.edu"},
		Subject:  "Application update",
		HTMLBody: "<p>shortlisted</p>",
	})
	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, []string{"student@university.edu"}, captured.GetHeader("To"))
	assert.Equal(t, []string{"Application update"}, captured.GetHeader("Subject"))
	assert.Contains(t, captured.GetHeader("From")[0], "placements@university.edu")
}

func TestSMTPProvider_ImplicitTLSPort(t *testing.T) {
	p, err := NewSMTPProvider(Config{SMTPHost: "smtp.x", SMTPPort: 465, FromEmail: "a@x.edu", UseTLS: true})
	require.NoError(t, err)
	assert.True(t, p.dialer.SSL)
}

func TestSMTPProvider_SendError(t *testing.T) {
	p, err := NewSMTPProvider(Config{SMTPHost: "smtp.x", SMTPPort: 25, FromEmail: "a@x.edu"})
	require.NoError(t, err)
	p.send = func(*gomail.Message) error { return errors.New("connection refused") }

	err = p.Send(context.Background(), &Email{To: []string{"b@x.edu"}, Body: "hi"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestSMTPProvider_DefaultSendDialsServer(t *testing.T) {
	// свободный порт, на котором никто не слушает
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	p, err := NewSMTPProvider(Config{SMTPHost: "127.0.0.1", SMTPPort: port, FromEmail: "a@x.edu"})
	require.NoError(t, err)

	err = p.Send(context.Background(), &Email{To: []string{"b@x.edu"}, Subject: "hi", Body: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp send")
}

func TestValidateEmail(t *testing.T) {
	assert.ErrorIs(t, validateEmail(&Email{Body: "x"}), ErrNoRecipients)
	assert.ErrorIs(t, validateEmail(&Email{To: []string{"a@b.c"}}), ErrEmptyBody)
	assert.Error(t, validateEmail(&Email{To: []string{"not-an-address"}, Body: "x"}))
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESProvider_Send(t *testing.T) {
	fake := &fakeSES{}
	p := &SESProvider{client: fake, from: "Placement Cell <placements@university.edu>"}

	err := p.Send(context.Background(), &Email{
		To:       []string{"student@university.edu"},
		Subject:  "Your code",
		HTMLBody: "<b>123456</b>",
		Body:     "123456",
		ReplyTo:  "help@university.edu",
	})
	require.NoError(t, err)

	require.NotNil(t, fake.input)
	assert.Equal(t, "Placement Cell <placements@university.edu>", aws.ToString(fake.input.FromEmailAddress))
	assert.Equal(t, []string{"student@university.edu"}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "Your code", aws.ToString(fake.input.Content.Simple.Subject.Data))
	assert.Equal(t, "<b>123456</b>", aws.ToString(fake.input.Content.Simple.Body.Html.Data))
	assert.Equal(t, "123456", aws.ToString(fake.input.Content.Simple.Body.Text.Data))
	assert.Equal(t, []string{"help@university.edu"}, fake.input.ReplyToAddresses)
}

func TestSESProvider_Error(t *testing.T) {
	p := &SESProvider{client: &fakeSES{err: errors.New("throttled")}, from: "a@x.edu"}
	err := p.Send(context.Background(), &Email{To: []string{"b@x.edu"}, Body: "x"})
	assert.ErrorContains(t, err, "throttled")
}

func TestLogProvider_RecordsMessages(t *testing.T) {
	p := NewLogProvider()
	require.NoError(t, p.Send(context.Background(), &Email{To: []string{"a@x.edu"}, Subject: "s", Body: "b"}))

	sent := p.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "s", sent[0].Subject)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Name())

	_, err = NewProvider(context.Background(), Config{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}
