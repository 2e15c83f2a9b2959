package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"roomrental/internal/config"
	"roomrental/internal/database"
	"roomrental/internal/kafka"
	"roomrental/internal/middleware"
	"roomrental/internal/modules/admin"
	"roomrental/internal/modules/auth"
	"roomrental/internal/modules/notification"
	"roomrental/internal/modules/rental"
	jwtsvc "roomrental/internal/pkg/jwt"
	"roomrental/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	requestRepo := repository.NewRentalRequestRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	producer := kafka.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	hub := notification.NewHub()
	notifService := notification.NewService(producer, cfg.KafkaNotificationsTopic, hub)
	notifHandler := notification.NewHandler(hub)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	rentalService := rental.NewService(requestRepo, locationRepo, notifService)
	rentalHandler := rental.NewHandler(rentalService)

	adminService := admin.NewService(requestRepo, userRepo, notifService)
	adminHandler := admin.NewHandler(adminService)

	r := gin.Default()
	r.Use(middleware.CORS(), middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)
		rentalHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.AdminOnly())
			{
				adminHandler.RegisterRoutes(adminGroup)
				notifHandler.RegisterRoutes(adminGroup)
			}
		}
	}

	log.Printf("listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
