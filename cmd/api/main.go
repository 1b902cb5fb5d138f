package main

import (
	"log"

	_ "trainingdesk/api/swagger" // swagger docs
	"trainingdesk/internal/auth"
	"trainingdesk/internal/config"
	"trainingdesk/internal/database"
	"trainingdesk/internal/handler"
	"trainingdesk/internal/repository"
	"trainingdesk/internal/scheduler"
	"trainingdesk/internal/service"
	"trainingdesk/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Training Desk API
// @version         1.0
// @description     Back office for trainings, trainer payments, contracts and warranty money.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	trainingTypeRepo := repository.NewTrainingTypeRepository(db)
	trainingRepo := repository.NewTrainingRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	rateRepo := repository.NewRateRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	contractRepo := repository.NewContractRepository(db)
	warrantyRepo := repository.NewWarrantyRepository(db)
	innovatorRepo := repository.NewInnovatorRepository(db)
	innovationRepo := repository.NewInnovationRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)

	userService := service.NewUserService(userRepo, auditRepo, txManager, tokens)
	departmentService := service.NewDepartmentService(departmentRepo, userRepo)
	trainingService := service.NewTrainingService(trainingTypeRepo, trainingRepo, userRepo)
	applicationService := service.NewApplicationService(applicationRepo, trainingRepo, auditRepo, txManager, wsHub)
	certificateService := service.NewCertificateService(certificateRepo, userRepo, trainingRepo, auditRepo, txManager)
	rateService := service.NewRateService(rateRepo, userRepo, auditRepo, txManager)
	paymentService := service.NewPaymentService(paymentRepo, applicationRepo, rateRepo, auditRepo, txManager, wsHub)
	contractService := service.NewContractService(contractRepo, trainingTypeRepo, auditRepo, txManager, wsHub)
	warrantyService := service.NewWarrantyService(warrantyRepo, userRepo, auditRepo, txManager, wsHub)
	innovationService := service.NewInnovationService(innovatorRepo, innovationRepo)
	auditService := service.NewAuditService(auditRepo)
	statisticsService := service.NewStatisticsService(statisticsRepo)

	sweep, err := scheduler.StartWarrantySweep(cfg.WarrantySweepCron, warrantyService)
	if err != nil {
		log.Fatalf("Scheduler setup failed: %v", err)
	}
	if sweep != nil {
		defer sweep.Stop()
	}

	// Set up Gin Router
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, tokens)
	})

	api := router.Group("/api")
	handler.NewUserHandler(userService, tokens).RegisterRoutes(api)
	handler.NewDepartmentHandler(departmentService, tokens).RegisterRoutes(api)
	handler.NewInnovationHandler(innovationService, tokens).RegisterRoutes(api)
	handler.NewTrainingHandler(trainingService, applicationService, certificateService, tokens).RegisterRoutes(api)
	handler.NewPaymentHandler(paymentService, rateService, tokens).RegisterRoutes(api)
	handler.NewContractHandler(contractService, tokens).RegisterRoutes(api)
	handler.NewWarrantyHandler(warrantyService, tokens).RegisterRoutes(api)
	handler.NewAuditHandler(auditService, tokens).RegisterRoutes(api)
	handler.NewStatisticsHandler(statisticsService, tokens).RegisterRoutes(api)

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
