package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/Dias221467/FoodShare/internal/config"
	"github.com/Dias221467/FoodShare/internal/database"
	"github.com/Dias221467/FoodShare/internal/handlers"
	"github.com/Dias221467/FoodShare/internal/jobs"
	"github.com/Dias221467/FoodShare/internal/repository"
	cronjobs "github.com/Dias221467/FoodShare/internal/scheduler"
	"github.com/Dias221467/FoodShare/internal/services"
	"github.com/Dias221467/FoodShare/pkg/email"
	"github.com/Dias221467/FoodShare/pkg/logger"
	"github.com/Dias221467/FoodShare/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}
	defer database.Disconnect(db)

	// --- Repositories ---
	listingRepo := repository.NewListingRepository(db)
	userRepo := repository.NewUserRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo, email.SMTPSender{}, cfg.VerifyBaseURL)
	listingService := services.NewListingService(listingRepo, userRepo)
	discoveryService := services.NewDiscoveryService(listingRepo)
	notificationService := services.NewNotificationService(listingRepo, userRepo)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, listingService, cfg)
	listingHandler := handlers.NewListingHandler(listingService, discoveryService, cfg.UploadDir)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Expiry sweeping: once at startup, then every 10 minutes
	sweeper := jobs.NewExpirySweeper(listingRepo)
	expiryCron := cronjobs.StartExpirySweep(sweeper)
	defer expiryCron.Stop()

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message": "Backend is running!"}`))
	}).Methods("GET")

	router.HandleFunc("/api/auth/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/api/auth/login", userHandler.LoginUserHandler).Methods("POST")
	router.HandleFunc("/api/auth/verify/{token}", userHandler.VerifyEmailHandler).Methods("GET")

	router.HandleFunc("/api/listings", listingHandler.GetListingsHandler).Methods("GET")
	router.HandleFunc("/api/listings/{id}", listingHandler.GetListingHandler).Methods("GET")

	// Protected auth routes
	protectedAuthRoutes := router.PathPrefix("/api/auth").Subrouter()
	protectedAuthRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedAuthRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")

	// Protected listing routes
	protectedListingRoutes := router.PathPrefix("/api/listings").Subrouter()
	protectedListingRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedListingRoutes.HandleFunc("", listingHandler.CreateListingHandler).Methods("POST")
	protectedListingRoutes.HandleFunc("/{id}", listingHandler.UpdateListingHandler).Methods("PUT")
	protectedListingRoutes.HandleFunc("/{id}", listingHandler.DeleteListingHandler).Methods("DELETE")
	protectedListingRoutes.HandleFunc("/{id}/claim", listingHandler.ClaimListingHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/api/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/profile", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/profile", userHandler.UpdateProfileHandler).Methods("PUT")
	protectedUserRoutes.HandleFunc("/my-listings", userHandler.MyListingsHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/claimed-items", userHandler.ClaimedItemsHandler).Methods("GET")

	// Notification routes
	protectedNotificationRoutes := router.PathPrefix("/api/notifications").Subrouter()
	protectedNotificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedNotificationRoutes.HandleFunc("/emails/{listingId}", notificationHandler.GetEligibleRecipientsHandler).Methods("GET")

	// Uploaded images are served statically
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
