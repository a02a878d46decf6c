package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type Config struct {
	Environment string
	Port        string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string

	// Firebase Config
	FirebaseCredentials string

	// Twilio Config
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	// Google Maps Config
	GoogleMapsAPIKey string

	// Public emergency hotline used when no private ambulance is available
	HotlineNumber string

	// Search radii (km)
	AmbulanceSearchRadius float64
	HospitalSearchRadius  float64
	BloodBankSearchRadius float64

	// Collaborator call budget (geocode, routing, SMS, push, AI)
	CollaboratorTimeout time.Duration

	// Dispatch worker pool
	DispatchWorkers   int
	DispatchQueueSize int

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "mongodb://localhost:27017/lifeline"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me-in-production"),

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),

		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),

		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),

		HotlineNumber: getEnv("EMERGENCY_HOTLINE_NUMBER", "+91108"),

		AmbulanceSearchRadius: getEnvAsFloat("AMBULANCE_SEARCH_RADIUS_KM", 15),
		HospitalSearchRadius:  getEnvAsFloat("HOSPITAL_SEARCH_RADIUS_KM", 20),
		BloodBankSearchRadius: getEnvAsFloat("BLOOD_BANK_SEARCH_RADIUS_KM", 25),

		CollaboratorTimeout: getEnvAsDuration("COLLABORATOR_TIMEOUT", 5*time.Second),

		DispatchWorkers:   getEnvAsInt("DISPATCH_WORKERS", 8),
		DispatchQueueSize: getEnvAsInt("DISPATCH_QUEUE_SIZE", 256),

		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
	}
}

func InitRedis(cfg *Config) *redis.Client {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		opt = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}

	return redis.NewClient(opt)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
