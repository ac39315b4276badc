package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Firebase FirebaseConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Catalog  CatalogConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Port           string
	Environment    string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Path string
}

type FirebaseConfig struct {
	ProjectID         string
	CredentialsJSON   string
	CredentialsBase64 string
	WebAPIKey         string // used for password sign-in through Identity Toolkit
	StorageBucket     string
}

type AuthConfig struct {
	Provider  string // "firebase" or "local"
	JWTSecret string
	TokenTTL  time.Duration
	Disabled  bool // development only: trust the X-Dev-User header
}

type RedisConfig struct {
	URL string
}

type StorageConfig struct {
	Type      string // "firebase" or "local"
	LocalPath string
}

type CatalogConfig struct {
	PageSize       int
	SearchDebounce time.Duration
	SessionTTL     time.Duration
}

type SecurityConfig struct {
	EncryptionKey string
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// findProjectRoot walks up from the working directory until it finds go.mod.
func findProjectRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Load reads an optional .env file and builds the configuration from the
// environment.
func Load() *Config {
	envPaths := []string{}
	if projectRoot := findProjectRoot(); projectRoot != "" {
		envPaths = append(envPaths, filepath.Join(projectRoot, ".env"))
	}
	envPaths = append(envPaths, ".env")

	loaded := false
	for _, envPath := range envPaths {
		if err := godotenv.Load(envPath); err == nil {
			loaded = true
			break
		}
	}
	if !loaded {
		log.Println("No .env file found, using system environment variables")
	}

	env := getEnv("ENVIRONMENT", getEnv("APP_ENV", "development"))

	dbPath := getEnv("DATABASE_PATH", "./studybuddy.db")
	if os.Getenv("FLY_APP_NAME") != "" {
		dbPath = filepath.Join("/data", "studybuddy.db")
	}
	if os.Getenv("TEST_DB") == "1" {
		dbPath = ":memory:"
	}

	authProvider := getEnv("AUTH_PROVIDER", "")
	if authProvider == "" {
		authProvider = "local"
		if hasFirebaseCredentials() {
			authProvider = "firebase"
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Environment:    env,
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", DefaultAllowedOrigins),
		},
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Firebase: FirebaseConfig{
			ProjectID:         getEnv("FIREBASE_PROJECT_ID", "studybuddy-dev"),
			CredentialsJSON:   getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", os.Getenv("FIREBASE_SERVICE_ACCOUNT")),
			CredentialsBase64: getEnv("FIREBASE_SERVICE_ACCOUNT_BASE64", ""),
			WebAPIKey:         getEnv("FIREBASE_WEB_API_KEY", ""),
			StorageBucket:     getEnv("FIREBASE_STORAGE_BUCKET", ""),
		},
		Auth: AuthConfig{
			Provider:  authProvider,
			JWTSecret: getEnv("JWT_SECRET", "dev-jwt-secret-change-me"),
			TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),
			Disabled:  env != "production" && os.Getenv("AUTH_DISABLED") == "true",
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Storage: StorageConfig{
			Type:      getEnv("STORAGE_TYPE", "local"),
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
		},
		Catalog: CatalogConfig{
			PageSize:       getEnvInt("CATALOG_PAGE_SIZE", 8),
			SearchDebounce: getEnvDuration("SEARCH_DEBOUNCE", 300*time.Millisecond),
			SessionTTL:     getEnvDuration("SESSION_TTL", 30*time.Minute),
		},
		Security: SecurityConfig{
			EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		},
	}
}

// DefaultAllowedOrigins are the development front-end origins.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:5500",
	"http://127.0.0.1:5500",
}

func hasFirebaseCredentials() bool {
	return os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON") != "" ||
		os.Getenv("FIREBASE_SERVICE_ACCOUNT_BASE64") != "" ||
		os.Getenv("FIREBASE_SERVICE_ACCOUNT") != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
