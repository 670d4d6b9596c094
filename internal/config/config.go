package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIBaseURL = "https://pann-pos.onrender.com/api/v1"
	DefaultAppPort    = "8090"
	DefaultOrigin     = "http://localhost:8080"
	DefaultStoreDir   = ".storefront"
)

var (
	DefaultExcludedPromotions = []string{"PWD", "Senior Citizen"}
	DefaultDrinkKeywords      = []string{
		"drink", "7 up", "bottle", "can", "juice", "soda", "water", "alaska",
		"coke", "pepsi", "sprite", "mountain dew", "gatorade", "powerade",
		"tea", "coffee", "milk",
	}
)

type Config struct {
	AppEnv  string
	AppPort string

	APIBaseURL      string
	APIServiceToken string
	APIRateLimit    float64
	APITimeout      time.Duration

	PayMongoPublicKey string
	PayMongoSecretKey string
	PayMongoMode      string
	StoreOrigin       string

	StoreDriver string
	StoreDir    string
	DBURL       string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string

	CacheTTL        time.Duration
	CacheMaxEntries int

	ExcludedPromotions []string
	DrinkKeywords      []string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:  os.Getenv("APP_ENV"),
		AppPort: getEnv("APP_PORT", DefaultAppPort),

		APIBaseURL:      baseURL(os.Getenv("API_BASE_URL")),
		APIServiceToken: os.Getenv("API_SERVICE_TOKEN"),
		APIRateLimit:    getFloat("API_RATE_LIMIT", 10),
		APITimeout:      getDuration("API_TIMEOUT", 15*time.Second),

		PayMongoPublicKey: os.Getenv("PAYMONGO_PUBLIC_KEY"),
		PayMongoSecretKey: os.Getenv("PAYMONGO_SECRET_KEY"),
		PayMongoMode:      getEnv("PAYMONGO_MODE", "test"),
		StoreOrigin:       strings.TrimRight(getEnv("STORE_ORIGIN", DefaultOrigin), "/"),

		StoreDriver: getEnv("STORE_DRIVER", "file"),
		StoreDir:    getEnv("STORE_DIR", DefaultStoreDir),
		DBURL:       os.Getenv("DB_URL"),
		DBHost:      os.Getenv("DB_HOST"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBPort:      getEnv("DB_PORT", "5432"),

		CacheTTL:        getDuration("CACHE_TTL", 5*time.Minute),
		CacheMaxEntries: getInt("CACHE_MAX_ENTRIES", 256),

		ExcludedPromotions: getList("EXCLUDED_PROMOTIONS", DefaultExcludedPromotions),
		DrinkKeywords:      getList("DRINK_KEYWORDS", DefaultDrinkKeywords),
	}

	return cfg
}

// baseURL rejects relative bases; the backend is always remote.
func baseURL(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(v, "/") {
		return DefaultAPIBaseURL
	}
	return strings.TrimRight(v, "/")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getList(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return append([]string(nil), def...)
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), def...)
	}
	return out
}
