package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cottonwood-backend/internal/email"
	"cottonwood-backend/internal/membership"
	"cottonwood-backend/internal/metrics"
	"cottonwood-backend/internal/models"
	"cottonwood-backend/internal/timeutil"

	"golang.org/x/sync/errgroup"
)

// MaxEmailRecipients bounds one outreach request
const MaxEmailRecipients = 1000

type EmailService struct {
	Members     *MemberService
	Provider    email.Provider
	Concurrency int
}

func NewEmailService(members *MemberService, provider email.Provider, concurrency int) *EmailService {
	if concurrency <= 0 {
		concurrency = 5
	}
	return &EmailService{Members: members, Provider: provider, Concurrency: concurrency}
}

type delivery struct {
	member *models.Member
	target string
	err    error
}

// Send delivers a personalised copy of the message to each member. Delivery
// is best effort: every distinct id is counted as sent or failed.
func (s *EmailService) Send(ctx context.Context, req *models.SendEmailRequest) (*models.SendEmailResponse, error) {
	if req == nil {
		return nil, invalid("", "request body is required")
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, invalid("subject", "is required")
	}
	if strings.TrimSpace(req.HTMLBody) == "" {
		return nil, invalid("htmlBody", "is required")
	}

	ids := dedupe(req.MemberIDs)
	if len(ids) == 0 {
		return nil, invalid("memberIds", "at least one member is required")
	}
	if len(ids) > MaxEmailRecipients {
		return nil, invalid("memberIds", fmt.Sprintf("at most %d members per request", MaxEmailRecipients))
	}

	members, err := s.Members.Repo.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipients: %w", err)
	}
	byID := make(map[string]*models.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	results := make([]delivery, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)
	for i, id := range ids {
		m, ok := byID[id]
		if !ok {
			results[i] = delivery{target: id, err: ErrMemberNotFound}
			continue
		}
		if strings.TrimSpace(m.Email) == "" {
			results[i] = delivery{member: m, target: m.Name, err: invalid("email", "member has no email address")}
			continue
		}
		g.Go(func() error {
			msg, err := s.render(m, subject, req.HTMLBody, req.TextBody)
			if err == nil {
				_, err = s.Provider.Send(gctx, msg)
			}
			results[i] = delivery{member: m, target: m.Email, err: err}
			// per-recipient failures never cancel the others
			return nil
		})
	}
	g.Wait()

	resp := &models.SendEmailResponse{}
	for _, d := range results {
		if d.err != nil {
			resp.FailedCount++
			resp.FailedEmails = append(resp.FailedEmails, d.target)
			metrics.EmailsTotal.WithLabelValues("failed").Inc()
			log.Printf("[Email] Failed to send to %s via %s: %v", d.target, s.Provider.Name(), d.err)
			continue
		}
		resp.SentCount++
		metrics.EmailsTotal.WithLabelValues("sent").Inc()
		s.Members.recordActivity(ctx, models.ActivityEmailSent, fmt.Sprintf("Sent email: %s", subject), d.member)
	}
	resp.Success = resp.SentCount > 0

	log.Printf("[Email] Outreach %q: %d sent, %d failed", subject, resp.SentCount, resp.FailedCount)
	return resp, nil
}

// render personalises and wraps the message for one member. The renewal date
// is the member's effective due date even when the tag has been removed.
func (s *EmailService) render(m *models.Member, subject, htmlBody, textBody string) (models.EmailMessage, error) {
	renewal := ""
	if due := membership.EffectiveDueDate(m); due != nil {
		renewal = due.Format(timeutil.DisplayLayout)
	}

	body := email.Personalize(htmlBody, m.Name, renewal, true)
	wrapped, err := email.Wrap(body)
	if err != nil {
		return models.EmailMessage{}, fmt.Errorf("render template: %w", err)
	}

	text := email.StripHTML(body)
	if strings.TrimSpace(textBody) != "" {
		text = email.Personalize(textBody, m.Name, renewal, false)
	}

	return models.EmailMessage{
		To:      m.Email,
		Subject: email.Personalize(subject, m.Name, renewal, false),
		HTML:    wrapped,
		Text:    text,
	}, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
