package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Email    EmailConfig
	Admin    AdminConfig
	Pricing  PricingConfig
	Notifier NotifierConfig
	RabbitMQ RabbitMQConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Debug          bool
	LogPath        string
	Timezone       string
	RequestTimeout time.Duration
	CORSOrigins    []string
}

// Location returns the business timezone; pickup dates and times are local to it.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

type DatabaseConfig struct {
	Host           string
	Port           string
	Name           string
	User           string
	Password       string
	MaxConns       int32
	AutoMigrate    bool
	MigrationsPath string
}

type EmailConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	Secure     bool
	AdminInbox string
}

type AdminConfig struct {
	Username     string
	PasswordHash string
	JWTSecret    string
	ExpiryHours  int
}

type PricingConfig struct {
	FallbackEstimate float64
}

type NotifierConfig struct {
	Interval         time.Duration
	WindowMinutes    int
	Console          bool
	TelegramToken    string
	TelegramAdminID  int64
	DriverBotEnabled bool
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "chauffeur-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("APP_TIMEZONE", "Australia/Melbourne")
	viper.SetDefault("REQUEST_TIMEOUT", "10s")
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_AUTO_MIGRATE", false)
	viper.SetDefault("DB_MIGRATIONS_PATH", "migrations")
	viper.SetDefault("SMTP_HOST", "smtp.gmail.com")
	viper.SetDefault("SMTP_PORT", 465)
	viper.SetDefault("SMTP_SECURE", true)
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("PRICING_FALLBACK_ESTIMATE", 150.0)
	viper.SetDefault("NOTIFIER_INTERVAL", "60s")
	viper.SetDefault("NOTIFIER_WINDOW_MINUTES", 60)
	viper.SetDefault("NOTIFIER_CONSOLE", true)
	viper.SetDefault("DRIVER_BOT_ENABLED", false)
	viper.SetDefault("RABBITMQ_EXCHANGE", "booking.events")

	// .env is optional, the environment always wins
	if err := viper.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:           viper.GetString("APP_NAME"),
			Port:           viper.GetString("PORT"),
			Debug:          viper.GetBool("DEBUG"),
			LogPath:        viper.GetString("LOG_PATH"),
			Timezone:       viper.GetString("APP_TIMEZONE"),
			RequestTimeout: viper.GetDuration("REQUEST_TIMEOUT"),
			CORSOrigins:    splitList(viper.GetString("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:           viper.GetString("DB_HOST"),
			Port:           viper.GetString("DB_PORT"),
			Name:           viper.GetString("DB_NAME"),
			User:           viper.GetString("DB_USER"),
			Password:       viper.GetString("DB_PASS"),
			MaxConns:       viper.GetInt32("DB_MAX_CONNS"),
			AutoMigrate:    viper.GetBool("DB_AUTO_MIGRATE"),
			MigrationsPath: viper.GetString("DB_MIGRATIONS_PATH"),
		},
		Email: EmailConfig{
			Host:       viper.GetString("SMTP_HOST"),
			Port:       viper.GetInt("SMTP_PORT"),
			User:       viper.GetString("SMTP_USER"),
			Password:   viper.GetString("SMTP_PASS"),
			From:       viper.GetString("EMAIL_FROM"),
			Secure:     viper.GetBool("SMTP_SECURE"),
			AdminInbox: viper.GetString("ADMIN_INBOX"),
		},
		Admin: AdminConfig{
			Username:     viper.GetString("ADMIN_USERNAME"),
			PasswordHash: viper.GetString("ADMIN_PASSWORD_HASH"),
			JWTSecret:    viper.GetString("JWT_SECRET"),
			ExpiryHours:  viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		Pricing: PricingConfig{
			FallbackEstimate: viper.GetFloat64("PRICING_FALLBACK_ESTIMATE"),
		},
		Notifier: NotifierConfig{
			Interval:         viper.GetDuration("NOTIFIER_INTERVAL"),
			WindowMinutes:    viper.GetInt("NOTIFIER_WINDOW_MINUTES"),
			Console:          viper.GetBool("NOTIFIER_CONSOLE"),
			TelegramToken:    viper.GetString("TELEGRAM_BOT_TOKEN"),
			TelegramAdminID:  viper.GetInt64("TELEGRAM_ADMIN_CHAT_ID"),
			DriverBotEnabled: viper.GetBool("DRIVER_BOT_ENABLED"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      viper.GetString("RABBITMQ_URL"),
			Exchange: viper.GetString("RABBITMQ_EXCHANGE"),
		},
	}

	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
