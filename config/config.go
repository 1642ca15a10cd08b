package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Settings is the service configuration, read from the environment
type Settings struct {
	DBDSN       string
	Port        string
	JWTSecret   string
	FrontendURL string
	Timezone    string
	SeedDemo    bool

	PhotoStore     string // local, gcs or minio
	UploadDir      string
	GCSBucket      string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSecure    bool

	SessionStore  string // memory or redis
	SessionTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginRatePerMinute int
	LoginBurst         int
}

var App = Defaults()

// Defaults are used for every variable left unset
func Defaults() Settings {
	return Settings{
		Port:               "8080",
		FrontendURL:        "http://localhost:3000",
		Timezone:           "Asia/Kolkata",
		PhotoStore:         "local",
		UploadDir:          "./uploads",
		MinioBucket:        "saf-geotag",
		SessionStore:       "memory",
		SessionTTL:         2 * time.Hour,
		RedisAddr:          "localhost:6379",
		LoginRatePerMinute: 10,
		LoginBurst:         5,
	}
}

// Load reads .env (if present) and the process environment into App
func Load() Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	d := Defaults()
	App = Settings{
		DBDSN:       os.Getenv("DB_DSN"),
		Port:        getEnv("PORT", d.Port),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		FrontendURL: getEnv("FRONTEND_URL", d.FrontendURL),
		Timezone:    getEnv("TIMEZONE", d.Timezone),
		SeedDemo:    getBool("SEED_DEMO", false),

		PhotoStore:     getEnv("PHOTO_STORE", d.PhotoStore),
		UploadDir:      getEnv("UPLOAD_DIR", d.UploadDir),
		GCSBucket:      os.Getenv("GCS_BUCKET"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", d.MinioBucket),
		MinioSecure:    getBool("MINIO_SECURE", false),

		SessionStore:  getEnv("SESSION_STORE", d.SessionStore),
		SessionTTL:    getDuration("SESSION_TTL", d.SessionTTL),
		RedisAddr:     getEnv("REDIS_ADDR", d.RedisAddr),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		LoginRatePerMinute: getInt("LOGIN_RATE_PER_MINUTE", d.LoginRatePerMinute),
		LoginBurst:         getInt("LOGIN_BURST", d.LoginBurst),
	}
	if App.JWTSecret == "" {
		log.Println("[CONFIG] JWT_SECRET is empty, tokens are signed with an empty key")
	}
	return App
}

// Location is the display zone for dates
func (s Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		log.Printf("[CONFIG] unknown TIMEZONE %q, using local time", s.Timezone)
		return time.Local
	}
	return loc
}

// Connect opens the Postgres database named by DB_DSN
func Connect() {
	var err error
	DB, err = gorm.Open(postgres.Open(App.DBDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
