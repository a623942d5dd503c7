package entity

type DriverStatus string

const (
	DriverStatusAvailable DriverStatus = "Available"
	DriverStatusOnJob     DriverStatus = "On Job"
	DriverStatusOffline   DriverStatus = "Offline"
)

type Driver struct {
	Base
	Name           string       `db:"name"`
	Phone          string       `db:"phone"`
	Status         DriverStatus `db:"status"`
	TelegramChatID *int64       `db:"telegram_chat_id"`
}
