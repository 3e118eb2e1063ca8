package email

import (
	"strings"
	"testing"
)

func TestWrapIncludesBrandingAndBody(t *testing.T) {
	out, err := Wrap("<p>Your renewal is coming up.</p>")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Club Cottonwood", "#5CB3E5", "<p>Your renewal is coming up.</p>", "Cottonwood in the Park"} {
		if !strings.Contains(out, want) {
			t.Errorf("wrapped email missing %q", want)
		}
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p>Hello&nbsp;there</p>", "Hello there"},
		{"<b>Tom &amp; Jerry</b>", "Tom & Jerry"},
		{"<p>One</p><p>Two</p>", "One\nTwo"},
		{"  plain  ", "plain"},
		{"a<br/>b", "a\nb"},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPersonalize(t *testing.T) {
	got := Personalize("Dear {name}, renew by {renewalDate}.", "Tom & Co", "Jan 10, 2024", true)
	if got != "Dear Tom &amp; Co, renew by Jan 10, 2024." {
		t.Errorf("got %q", got)
	}
	got = Personalize("{renewalDate}", "x", "", false)
	if got != "your renewal date" {
		t.Errorf("got %q", got)
	}
}
