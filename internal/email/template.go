package email

import (
	"bytes"
	"html"
	"html/template"
	"regexp"
	"strings"
)

var brandedLayout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background-color: #5CB3E5; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background-color: #ffffff; padding: 30px; border: 1px solid #e0e0e0; border-top: none; }
    .footer { background-color: #f5f5f5; padding: 20px; text-align: center; font-size: 12px; color: #666; border-radius: 0 0 8px 8px; }
  </style>
</head>
<body>
  <div class="header">
    <h1 style="margin: 0;">Club Cottonwood</h1>
  </div>
  <div class="content">
    {{.Body}}
  </div>
  <div class="footer">
    <p>Cottonwood in the Park</p>
    <p>You are receiving this email because you are a Club Cottonwood member.</p>
  </div>
</body>
</html>
`))

// Wrap places staff-authored HTML inside the branded Club Cottonwood layout.
// The body is trusted staff content and is not escaped.
func Wrap(body string) (string, error) {
	var buf bytes.Buffer
	err := brandedLayout.Execute(&buf, struct{ Body template.HTML }{template.HTML(body)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

var (
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	blankLinesRe = regexp.MustCompile(`\n\s*\n\s*\n+`)
	blockEndRe   = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr)>|<br\s*/?>`)
)

// StripHTML derives a plain-text fallback: block ends become newlines, tags are
// removed and entities decoded
func StripHTML(s string) string {
	s = blockEndRe.ReplaceAllString(s, "\n")
	s = tagRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = html.UnescapeString(s)
	s = blankLinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Personalize substitutes {name} and {renewalDate}. The name is HTML-escaped
// when escape is set.
func Personalize(s, name, renewalDate string, escape bool) string {
	if escape {
		name = html.EscapeString(name)
	}
	if renewalDate == "" {
		renewalDate = "your renewal date"
	}
	return strings.NewReplacer("{name}", name, "{renewalDate}", renewalDate).Replace(s)
}
