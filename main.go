package main

import (
	"context"
	"log"

	"moldcare-backend/controller"
	"moldcare-backend/models"
	"moldcare-backend/utils"
	"moldcare-backend/utils/logger"
	"moldcare-backend/worker"

	"github.com/gin-gonic/gin"
)

var config *models.Config

func Init() {
	var err error
	config, err = utils.GetConfig()
	if err != nil {
		log.Fatal(err)
	}
}

// @title MoldCare Backend API
// @version 1.0
// @description Maintenance service backend for injection moulding machines:
// @description service request lifecycle, process tracking, report generation
// @description and OTP based password reset.
// @description
// @description ## Authentication
// @description 1. Register via **POST /auth/signup** or log in via **POST /auth/login**
// @description 2. Use the returned token as `Bearer <token>` in the Authorization header
// @description 3. The **Authorize** button on this page can log in and apply the token automatically

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Enter 'Bearer' [space] and then your token.
func main() {
	Init()

	ctx := context.Background()
	appLogger := logger.NewLogger(config.LogLevel, config.LogFormat)
	appLogger.Infof("Starting %s %s (%s)", config.AppName, config.AppVersion, config.AppEnv)

	r := gin.New()
	c := controller.NewController(ctx, config, appLogger)

	// Start server (this is blocking)
	go func() {
		if err := c.RegisterRoutes(ctx, config, r, config.BasePath); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Background worker: table provisioning plus the SLA sweep
	bgWorker, err := worker.NewService(ctx, config, appLogger)
	if err != nil {
		log.Fatalf("Failed to create background worker: %v", err)
	}

	if err := bgWorker.StartInBackground(); err != nil {
		log.Fatalf("Failed to start background worker: %v", err)
	}

	// Keep main goroutine alive
	select {}
}
