package response

import "chauffeur-booking/internal/data/entity"

type EmailTemplateResponse struct {
	ID           string `json:"id"`
	TemplateName string `json:"template_name"`
	Subject      string `json:"subject"`
	BodyHTML     string `json:"body_html"`
	IsActive     bool   `json:"is_active"`
}

func EmailTemplateToResponse(t *entity.EmailTemplate) EmailTemplateResponse {
	return EmailTemplateResponse{
		ID:           t.ID.String(),
		TemplateName: t.TemplateName,
		Subject:      t.Subject,
		BodyHTML:     t.BodyHTML,
		IsActive:     t.IsActive,
	}
}
