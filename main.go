// main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"chauffeur-booking/cmd"
	"chauffeur-booking/internal/data/repository"
	"chauffeur-booking/internal/notifier"
	"chauffeur-booking/internal/usecase"
	"chauffeur-booking/internal/wire"
	"chauffeur-booking/pkg/database"
	"chauffeur-booking/pkg/events"
	"chauffeur-booking/pkg/mailer"
	"chauffeur-booking/pkg/telegram"
	"chauffeur-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	mode := flag.String("mode", "all", "what to run: server, notifier or all")
	hashPassword := flag.String("hash-password", "", "print a bcrypt hash for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := utils.HashPassword(*hashPassword)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	runServer := *mode == "server" || *mode == "all"
	runNotifier := *mode == "notifier" || *mode == "all"
	if !runServer && !runNotifier {
		log.Fatalf("Unknown mode %q", *mode)
	}

	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("mode", *mode),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if config.Database.AutoMigrate {
		if err := database.Migrate(config.Database, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Outbound channels. Each one is optional.
	publisher := events.Noop()
	if config.RabbitMQ.URL != "" {
		publisher, err = events.NewRabbitPublisher(config.RabbitMQ.URL, config.RabbitMQ.Exchange, logger)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, booking events disabled", zap.Error(err))
			publisher = events.Noop()
		}
	}
	defer publisher.Close()

	var messenger telegram.Messenger
	if config.Notifier.TelegramToken != "" {
		messenger, err = telegram.New(config.Notifier.TelegramToken, logger)
		if err != nil {
			logger.Warn("Telegram unavailable, driver notices and chat alerts disabled", zap.Error(err))
			messenger = nil
		}
	}

	var hub *notifier.Hub
	if runServer && runNotifier {
		hub = notifier.NewHub(config.App.CORSOrigins, logger)
	}

	var wg sync.WaitGroup

	if hub != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Run(ctx)
		}()
	}

	if runNotifier {
		alerter := cmd.Alerter(config, messenger, hub)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := cmd.UpcomingTripNotifier(ctx, repos, alerter, config, logger); err != nil {
				logger.Error("Notifier stopped with error", zap.Error(err))
			}
		}()
	}

	if runServer {
		deps := usecase.Dependencies{
			Mailer: mailer.New(config.Email, config.App.RequestTimeout, logger),
			Events: publisher,
		}
		if config.Notifier.DriverBotEnabled {
			deps.Telegram = messenger
		}

		// Wire all dependencies
		app := wire.Wiring(repos, config, deps, hub, logger)

		// Start server
		if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}

	wg.Wait()
	logger.Info("Application stopped")
}
