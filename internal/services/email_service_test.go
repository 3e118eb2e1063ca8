package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"cottonwood-backend/internal/email"
	"cottonwood-backend/internal/models"
)

// flakyProvider fails for the listed addresses
type flakyProvider struct {
	mu   sync.Mutex
	fail map[string]bool
	sent []models.EmailMessage
}

func (p *flakyProvider) Name() string { return "flaky" }

func (p *flakyProvider) Send(ctx context.Context, msg models.EmailMessage) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail[msg.To] {
		return "", errors.New("mailbox unavailable")
	}
	p.sent = append(p.sent, msg)
	return "id", nil
}

func TestSendEmailPartialFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.store.Put(&models.Member{Email: "a@example.com", Name: "Ann <Admin>", JoinDate: mustDate(t, "2023-01-10")})
	b := env.store.Put(&models.Member{Email: "b@example.com", Name: "Ben"})
	c := env.store.Put(&models.Member{Email: "c@example.com", Name: "Cat"})

	provider := &flakyProvider{fail: map[string]bool{"b@example.com": true}}
	svc := NewEmailService(env.members, provider, 2)

	resp, err := svc.Send(ctx, &models.SendEmailRequest{
		MemberIDs: []string{a.ID, b.ID, c.ID, "unknown", a.ID},
		Subject:   "Hello {name}",
		HTMLBody:  "<p>Hi {name}, renew by {renewalDate}.</p>",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.SentCount != 2 || resp.FailedCount != 2 || !resp.Success {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.SentCount+resp.FailedCount != 4 {
		t.Error("counts do not cover every distinct id")
	}

	var toAnn models.EmailMessage
	for _, m := range provider.sent {
		if m.To == "a@example.com" {
			toAnn = m
		}
	}
	if toAnn.Subject != "Hello Ann <Admin>" {
		t.Errorf("subject = %q", toAnn.Subject)
	}
	if !strings.Contains(toAnn.HTML, "Hi Ann &lt;Admin&gt;, renew by Jan 10, 2024.") {
		t.Errorf("html not personalised: %s", toAnn.HTML)
	}
	if !strings.Contains(toAnn.HTML, "Club Cottonwood") {
		t.Error("html not wrapped in branded layout")
	}
	if toAnn.Text != "Hi Ann <Admin>, renew by Jan 10, 2024." {
		t.Errorf("text = %q", toAnn.Text)
	}

	entries, _ := env.logs.List(ctx, 100, models.ActivityEmailSent)
	if len(entries) != 2 {
		t.Errorf("email_sent entries = %d, want 2", len(entries))
	}
}

func TestSendEmailValidation(t *testing.T) {
	env := newTestEnv(t)
	provider := email.NewMockProvider()
	svc := NewEmailService(env.members, provider, 0)
	m := env.store.Put(&models.Member{Email: "a@example.com", Name: "A"})

	tests := []struct {
		name string
		req  *models.SendEmailRequest
	}{
		{"nil", nil},
		{"blank subject", &models.SendEmailRequest{MemberIDs: []string{m.ID}, Subject: "  ", HTMLBody: "<p>x</p>"}},
		{"blank body", &models.SendEmailRequest{MemberIDs: []string{m.ID}, Subject: "S", HTMLBody: " "}},
		{"no recipients", &models.SendEmailRequest{MemberIDs: []string{" "}, Subject: "S", HTMLBody: "<p>x</p>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(context.Background(), tt.req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("err = %v, want ValidationError", err)
			}
		})
	}
	if len(provider.Sent) != 0 {
		t.Error("provider called for an invalid request")
	}
}

func TestSendEmailUsesTextBody(t *testing.T) {
	env := newTestEnv(t)
	provider := email.NewMockProvider()
	svc := NewEmailService(env.members, provider, 1)
	m := env.store.Put(&models.Member{Email: "p@example.com", Name: "Pat"})

	resp, err := svc.Send(context.Background(), &models.SendEmailRequest{
		MemberIDs: []string{m.ID},
		Subject:   "Join us",
		HTMLBody:  "<b>Hi</b>",
		TextBody:  "Hi {name}, see you before {renewalDate}",
	})
	if err != nil || resp.SentCount != 1 {
		t.Fatalf("resp=%+v err=%v", resp, err)
	}
	if got := provider.Sent[0].Text; got != "Hi Pat, see you before your renewal date" {
		t.Errorf("text = %q", got)
	}
}
