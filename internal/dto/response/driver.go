package response

import "chauffeur-booking/internal/data/entity"

type DriverResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Phone       string              `json:"phone"`
	Status      entity.DriverStatus `json:"status"`
	HasTelegram bool                `json:"has_telegram"`
}

func DriverToResponse(d *entity.Driver) DriverResponse {
	return DriverResponse{
		ID:          d.ID.String(),
		Name:        d.Name,
		Phone:       d.Phone,
		Status:      d.Status,
		HasTelegram: d.TelegramChatID != nil,
	}
}
