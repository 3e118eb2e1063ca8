package email

import (
	"context"
	"fmt"
	"log"
	"sync"

	"cottonwood-backend/internal/models"

	"github.com/resend/resend-go/v2"
)

// Provider delivers one rendered message and returns the provider message id
type Provider interface {
	Send(ctx context.Context, msg models.EmailMessage) (string, error)
	Name() string
}

// ResendProvider implements Provider with the Resend API
type ResendProvider struct {
	client  *resend.Client
	From    string
	ReplyTo string
}

// NewResendProvider creates a provider for the given API key and sender
func NewResendProvider(apiKey, from, replyTo string) *ResendProvider {
	return &ResendProvider{
		client:  resend.NewClient(apiKey),
		From:    from,
		ReplyTo: replyTo,
	}
}

func (p *ResendProvider) Name() string { return "resend" }

// Send delivers msg to a single recipient
func (p *ResendProvider) Send(ctx context.Context, msg models.EmailMessage) (string, error) {
	req := &resend.SendEmailRequest{
		From:    p.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if p.ReplyTo != "" {
		req.ReplyTo = p.ReplyTo
	}

	sent, err := p.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	return sent.Id, nil
}

// MockProvider logs messages instead of sending them (development without an API key)
type MockProvider struct {
	mu   sync.Mutex
	Sent []models.EmailMessage
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Name() string { return "mock" }

// Send records the message and prints it to the log
func (p *MockProvider) Send(ctx context.Context, msg models.EmailMessage) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Sent = append(p.Sent, msg)
	log.Printf("[Email] MOCK send to=%s subject=%q", msg.To, msg.Subject)
	return fmt.Sprintf("mock-%d", len(p.Sent)), nil
}
