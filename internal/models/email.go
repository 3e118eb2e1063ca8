package models

// SendEmailRequest is a bulk outreach request from staff
type SendEmailRequest struct {
	MemberIDs []string `json:"memberIds"`
	Subject   string   `json:"subject"`
	HTMLBody  string   `json:"htmlBody"`
	TextBody  string   `json:"textBody,omitempty"`
}

// SendEmailResponse reports per-request delivery counts
type SendEmailResponse struct {
	Success      bool     `json:"success"`
	SentCount    int      `json:"sentCount"`
	FailedCount  int      `json:"failedCount"`
	FailedEmails []string `json:"failedEmails,omitempty"`
}

// EmailMessage is a single rendered message handed to a provider
type EmailMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// EmailSettings are the staff-editable outreach defaults
type EmailSettings struct {
	DefaultSubject          string `json:"defaultSubject"`
	Greeting                string `json:"greeting"`
	Signature               string `json:"signature"`
	IncludeRenewalDate      bool   `json:"includeRenewalDate"`
	IncludeMembershipStatus bool   `json:"includeMembershipStatus"`
	IncludeOrderHistory     bool   `json:"includeOrderHistory"`
}

// DefaultEmailSettings returns the settings used before staff change anything
func DefaultEmailSettings() EmailSettings {
	return EmailSettings{
		DefaultSubject:          "Club Cottonwood Membership Update",
		Greeting:                "Dear {name},",
		Signature:               "Best regards,\nClub Cottonwood Team",
		IncludeRenewalDate:      true,
		IncludeMembershipStatus: true,
		IncludeOrderHistory:     false,
	}
}
