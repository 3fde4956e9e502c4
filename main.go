package main

import (
	"context"

	"surveyreg/internal/config"
	"surveyreg/internal/database"
	logger "surveyreg/internal/logging"
	"surveyreg/internal/router"
	"surveyreg/internal/services"

	"go.uber.org/zap"
)

func main() {
	// Initialize Logger
	log, err := logger.Init("logs")
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize Configuration
	if err := config.Init(".", log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Database
	database.Init(log)

	// Import survey fixtures at startup
	if config.Conf.Importer.Enabled {
		if err := services.ImportSurveys(context.Background(), log, config.Conf.Importer.Directory); err != nil {
			log.Fatal("Failed to import survey fixtures", zap.Error(err))
		}
	}

	// Start the stale submission reminder scheduler
	emailService := services.NewEmailService(log)
	services.NewScheduler(log, emailService).Start()

	// Setup router, passing the logger to it
	r := router.Setup(log)

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
