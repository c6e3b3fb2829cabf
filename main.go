package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/ymmiz/berrifyApp/config"
	"github.com/ymmiz/berrifyApp/database"
	"github.com/ymmiz/berrifyApp/handlers"
	"github.com/ymmiz/berrifyApp/middleware"
	"github.com/ymmiz/berrifyApp/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Error loading configuration: %v", err)
	}

	if err := database.Connect(cfg.MongoURI, cfg.MongoDB); err != nil {
		log.Fatalf("❌ Error connecting to MongoDB: %v", err)
	}
	defer database.Close()

	// Firebase is optional: without credentials the server still runs,
	// it just drops push deliveries.
	var fcmService services.Notifier
	fcm, err := services.NewFCMService(cfg.FirebaseCredentialsFile)
	if err != nil {
		log.Printf("⚠️  Firebase initialization failed: %v", err)
		log.Println("⚠️  Server starting WITHOUT push notifications")
		fcmService = services.NewDisabledFCMService()
	} else {
		fcmService = fcm
	}

	// Repositories and the reminder job
	userRepo := database.NewUserRepository(database.DB)
	plantRepo := database.NewPlantRepository(database.DB)

	reminderService := services.NewReminderService(plantRepo, userRepo, fcmService, cfg.ReminderTimezone)

	reminderCron, err := services.NewReminderCron(reminderService, cfg.ReminderCron, cfg.ReminderTimezone)
	if err != nil {
		log.Fatalf("❌ Error setting up reminder schedule: %v", err)
	}
	if err := reminderCron.Start(); err != nil {
		log.Fatalf("❌ Error starting reminder schedule: %v", err)
	}
	defer reminderCron.Stop()

	slackService := services.NewSlackService(cfg.SlackWebhookURL)

	// Router and global middleware
	router := mux.NewRouter()
	router.Use(middleware.Logging(slackService))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	// Handlers
	authHandler := handlers.NewAuthHandler(database.DB, cfg.JWTSecret, fcmService)
	healthHandler := handlers.NewHealthHandler(cfg.Environment)
	plantHandler := handlers.NewPlantHandler(database.DB)
	diaryHandler := handlers.NewDiaryHandler(database.DB)
	deviceHandler := handlers.NewDeviceHandler(database.DB)
	moistureHandler := handlers.NewMoistureHandler(database.DB)
	scanHandler := handlers.NewScanHandler(database.DB)
	fcmHandler := handlers.NewFCMHandler(database.DB, cfg.FCMVAPIDKey)
	adminHandler := handlers.NewAdminHandler(database.DB)
	reminderHandler := handlers.NewReminderHandler(reminderService)
	notificationHandler := handlers.NewNotificationHandler(
		database.DB,
		cfg.VAPIDPublicKey,
		cfg.VAPIDPrivateKey,
		cfg.VAPIDSubject,
	)

	guestMiddleware := middleware.Guest(cfg.JWTSecret)

	// Public routes
	router.Handle("/api/auth/register", guestMiddleware(http.HandlerFunc(authHandler.Register))).Methods("POST", "OPTIONS")
	router.Handle("/api/auth/login", guestMiddleware(http.HandlerFunc(authHandler.Login))).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/health", healthHandler.Health).Methods("GET")

	// Push subscription keys (public, clients need them before sign-in)
	router.HandleFunc("/api/fcm/vapid-key", fcmHandler.GetVAPIDKey).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/notifications/vapid-public-key", notificationHandler.GetVAPIDPublicKey).Methods("GET", "OPTIONS")

	// Hardware device routes (devices authenticate by device id, they
	// carry no user session)
	router.HandleFunc("/api/devices/{device_id}/scan-jobs/next", scanHandler.Poll).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/scan-jobs/{job_id}/complete", scanHandler.Complete).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/plants/{plant_id}/moisture", moistureHandler.Ingest).Methods("POST", "OPTIONS")

	// Protected routes
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.Auth(cfg.JWTSecret))

	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET", "OPTIONS")

	protected.HandleFunc("/plants", plantHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/plants", plantHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/plants/{plant_id}", plantHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/plants/{plant_id}", plantHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/plants/{plant_id}", plantHandler.Delete).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/plants/{plant_id}/water", plantHandler.Water).Methods("POST", "OPTIONS")

	protected.HandleFunc("/plants/{plant_id}/diary", diaryHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/plants/{plant_id}/diary", diaryHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/plants/{plant_id}/diary/{entry_id}", diaryHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/plants/{plant_id}/diary/{entry_id}", diaryHandler.Delete).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/plants/{plant_id}/device", deviceHandler.Link).Methods("POST", "OPTIONS")
	protected.HandleFunc("/plants/{plant_id}/device", deviceHandler.Unlink).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/plants/{plant_id}/moisture/history", moistureHandler.History).Methods("GET", "OPTIONS")
	protected.HandleFunc("/plants/{plant_id}/scan", scanHandler.Request).Methods("POST", "OPTIONS")

	protected.HandleFunc("/fcm/token", fcmHandler.RegisterToken).Methods("POST", "OPTIONS")
	protected.HandleFunc("/fcm/token/remove", fcmHandler.UnregisterToken).Methods("POST", "OPTIONS")

	protected.HandleFunc("/notifications/subscribe", notificationHandler.Subscribe).Methods("POST", "OPTIONS")
	protected.HandleFunc("/notifications/unsubscribe", notificationHandler.Unsubscribe).Methods("POST", "OPTIONS")
	protected.HandleFunc("/notifications/test", notificationHandler.SendTest).Methods("POST", "OPTIONS")

	// Admin routes (Auth + RequireAdmin)
	adminRouter := protected.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.RequireAdmin(database.DB))

	adminRouter.HandleFunc("/users", adminHandler.ListUsers).Methods("GET", "OPTIONS")
	adminRouter.HandleFunc("/users/{user_id}", adminHandler.UpdateUser).Methods("PUT", "OPTIONS")
	adminRouter.HandleFunc("/plants", adminHandler.ListPlants).Methods("GET", "OPTIONS")
	adminRouter.HandleFunc("/stats", adminHandler.Stats).Methods("GET", "OPTIONS")
	adminRouter.HandleFunc("/reminders/send", reminderHandler.SendNow).Methods("POST", "OPTIONS")

	// Superadmin routes (Auth + RequireRoot)
	rootRouter := protected.PathPrefix("/admin").Subrouter()
	rootRouter.Use(middleware.RequireRoot(database.DB))

	rootRouter.HandleFunc("/promote", adminHandler.Promote).Methods("POST", "OPTIONS")
	rootRouter.HandleFunc("/demote", adminHandler.Demote).Methods("POST", "OPTIONS")
	rootRouter.HandleFunc("/users/{user_id}", adminHandler.DeleteUser).Methods("DELETE", "OPTIONS")

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Printf("🚀 Server started on http://%s", addr)
		log.Printf("📝 Environment: %s", cfg.Environment)
		log.Printf("🗄️  Database: MongoDB")
		log.Printf("🔔 Watering reminders: %s (%s)", cfg.ReminderCron, cfg.ReminderTimezone)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("⏳ Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Forced shutdown: %v", err)
	}

	log.Println("✓ Server stopped")
}
