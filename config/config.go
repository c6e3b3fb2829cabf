package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the application
type Config struct {
	Port                    string
	Host                    string
	MongoURI                string
	MongoDB                 string
	JWTSecret               string
	Environment             string
	CORSOrigins             []string
	FirebaseCredentialsFile string
	FCMVAPIDKey             string
	ReminderTimezone        string
	ReminderCron            string
	VAPIDPublicKey          string
	VAPIDPrivateKey         string
	VAPIDSubject            string
	SlackWebhookURL         string
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env if present
	_ = godotenv.Load()

	config := &Config{
		Port:                    getEnv("PORT", "8090"),
		Host:                    getEnv("HOST", "0.0.0.0"), // 0.0.0.0 for cloud deploys
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:                 getEnv("MONGO_DB", "berrify_db"),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		Environment:             getEnv("ENVIRONMENT", "development"),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", "firebase-service-account.json"),
		FCMVAPIDKey:             getEnv("FCM_VAPID_KEY", ""),
		ReminderTimezone:        getEnv("REMINDER_TIMEZONE", "Asia/Bangkok"),
		ReminderCron:            getEnv("REMINDER_CRON", "0 20 * * *"), // daily at 20:00
		VAPIDPublicKey:          getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey:         getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubject:            getEnv("VAPID_SUBJECT", "mailto:contact@example.com"),
		SlackWebhookURL:         getEnv("SLACK_WEBHOOK_URL", ""),
	}

	// Parse CORS origins
	origins := getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	originsList := strings.Split(origins, ",")
	config.CORSOrigins = make([]string, 0, len(originsList))
	for _, origin := range originsList {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			config.CORSOrigins = append(config.CORSOrigins, trimmed)
		}
	}

	// Validate required settings
	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// VAPID keys are optional (FCM is the primary push channel)

	return config, nil
}

// getEnv reads an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
