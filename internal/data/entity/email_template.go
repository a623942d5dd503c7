package entity

import "strings"

const (
	TemplateQuoteSent        = "quote_sent"
	TemplateInvoiceSent      = "invoice_sent"
	TemplateBookingConfirmed = "booking_confirmed"
)

type EmailTemplate struct {
	BaseSimple
	TemplateName string `db:"template_name"`
	Subject      string `db:"subject"`
	BodyHTML     string `db:"body_html"`
	IsActive     bool   `db:"is_active"`
}

// Render substitutes every {key} in subject and body; unknown placeholders are left as-is.
func (t *EmailTemplate) Render(vars map[string]string) (subject, body string) {
	return Substitute(t.Subject, vars), Substitute(t.BodyHTML, vars)
}

func Substitute(text string, vars map[string]string) string {
	if len(vars) == 0 {
		return text
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
