package routes

import (
	"context"
	"time"

	"lifeline/config"
	"lifeline/controllers"
	"lifeline/middleware"
	"lifeline/repositories"
	"lifeline/services"
	"lifeline/utils"
	"lifeline/workers"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRoutes wires repositories, services and controllers and registers
// every route group.
func SetupRoutes(db *mongo.Database, redisClient *redis.Client, cfg *config.Config, pool *workers.Pool) *gin.Engine {
	router := gin.New()

	repos := initializeRepositories(db)
	svcs := initializeServices(repos, cfg, pool)
	ctrls := initializeControllers(svcs)

	setupGlobalMiddleware(router, redisClient, cfg)
	setupPublicRoutes(router, db, redisClient)

	jwtService := utils.NewJWTService(cfg.JWTSecret)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.RequireAuth())

	SetupEmergencyRoutes(v1, ctrls.Emergency, authMiddleware)
	SetupAmbulanceRoutes(v1, ctrls.Ambulance, authMiddleware)
	SetupHospitalRoutes(v1, ctrls.Hospital, authMiddleware)
	SetupBloodRoutes(v1, ctrls.Blood, authMiddleware)
	SetupInsuranceRoutes(v1, ctrls.Insurance)
	SetupVitalsRoutes(v1, ctrls.Vitals)

	return router
}

type Repositories struct {
	Emergency    *repositories.EmergencyRepository
	Ambulance    *repositories.AmbulanceRepository
	Hospital     *repositories.HospitalRepository
	Blood        *repositories.BloodRepository
	Insurance    *repositories.InsuranceRepository
	Notification *repositories.NotificationRepository
}

func initializeRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Emergency:    repositories.NewEmergencyRepository(db),
		Ambulance:    repositories.NewAmbulanceRepository(db),
		Hospital:     repositories.NewHospitalRepository(db),
		Blood:        repositories.NewBloodRepository(db),
		Insurance:    repositories.NewInsuranceRepository(db),
		Notification: repositories.NewNotificationRepository(db),
	}
}

type Services struct {
	Emergency *services.EmergencyService
	Dispatch  *services.DispatchService
	Ambulance *services.AmbulanceService
	Hospital  *services.HospitalService
	Blood     *services.BloodService
	Insurance *services.InsuranceService
	Vitals    *services.VitalsService
}

func initializeServices(repos *Repositories, cfg *config.Config, pool *workers.Pool) *Services {
	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	smsService := services.NewSMSService(cfg)
	pushService := services.NewPushService(startupCtx, cfg)
	locationService := services.NewLocationService(cfg)

	notificationService := services.NewNotificationService(smsService, pushService, repos.Notification)
	emergencyService := services.NewEmergencyService(repos.Emergency)
	insuranceService := services.NewInsuranceService(repos.Insurance)

	dispatchService := services.NewDispatchService(
		emergencyService,
		repos.Ambulance,
		repos.Hospital,
		notificationService,
		insuranceService,
		locationService,
		locationService,
		pool,
		cfg,
	)

	return &Services{
		Emergency: emergencyService,
		Dispatch:  dispatchService,
		Ambulance: services.NewAmbulanceService(repos.Ambulance, repos.Emergency, locationService),
		Hospital:  services.NewHospitalService(repos.Hospital),
		Blood:     services.NewBloodService(repos.Blood, notificationService, repos.Emergency, cfg),
		Insurance: insuranceService,
		Vitals:    services.NewVitalsService(),
	}
}

type Controllers struct {
	Emergency *controllers.EmergencyController
	Ambulance *controllers.AmbulanceController
	Hospital  *controllers.HospitalController
	Blood     *controllers.BloodController
	Insurance *controllers.InsuranceController
	Vitals    *controllers.VitalsController
}

func initializeControllers(svcs *Services) *Controllers {
	validator := utils.NewValidationService()

	return &Controllers{
		Emergency: controllers.NewEmergencyController(svcs.Dispatch, svcs.Emergency, validator),
		Ambulance: controllers.NewAmbulanceController(svcs.Ambulance, validator),
		Hospital:  controllers.NewHospitalController(svcs.Hospital, validator),
		Blood:     controllers.NewBloodController(svcs.Blood, validator),
		Insurance: controllers.NewInsuranceController(svcs.Insurance, validator),
		Vitals:    controllers.NewVitalsController(svcs.Vitals),
	}
}

func setupGlobalMiddleware(router *gin.Engine, redisClient *redis.Client, cfg *config.Config) {
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware(cfg.Environment))

	limiter := middleware.NewRateLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow)
	router.Use(limiter.Middleware())
}
