package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port        int    `json:"port"`
	Environment string `json:"environment"`

	// MongoDB configuration
	MongoURI      string `json:"mongo_uri"`
	MongoDatabase string `json:"mongo_database"`

	// Redis configuration
	RedisURI       string        `json:"redis_uri"`
	RedisPassword  string        `json:"redis_password"`
	RedisDB        int           `json:"redis_db"`
	SessionTTL     time.Duration `json:"session_ttl"`
	LookupCacheTTL time.Duration `json:"lookup_cache_ttl"`

	// Collection names
	FilingAttemptCollection    string `json:"mongo_filing_attempt_collection"`
	InvoiceCollection          string `json:"mongo_invoice_collection"`
	CreditNoteCollection       string `json:"mongo_credit_note_collection"`
	PayrollEmployeeCollection  string `json:"mongo_payroll_employee_collection"`
	VisitedCountriesCollection string `json:"mongo_visited_countries_collection"`
	SavedItemCollection        string `json:"mongo_saved_item_collection"`

	// External tax authority API
	EtaxBaseURL string        `json:"etax_base_url"`
	EtaxAPIKey  string        `json:"etax_api_key"`
	EtaxTimeout time.Duration `json:"etax_timeout"`

	// Customs lookup proxy (HS codes, currency conversion)
	CustomsBaseURL string `json:"customs_base_url"`
	CustomsAPIKey  string `json:"customs_api_key"`

	// WhatsApp configuration
	WhatsAppEnabled      bool   `json:"whatsapp_enabled"`
	WhatsAppBaseURL      string `json:"whatsapp_base_url"`
	WhatsAppUsername     string `json:"whatsapp_username"`
	WhatsAppPassword     string `json:"whatsapp_password"`
	WhatsAppCostCenterID string `json:"whatsapp_cost_center_id"`
	WhatsAppCampaignName string `json:"whatsapp_campaign_name"`
	WhatsAppHSMID        string `json:"whatsapp_hsm_id"`

	// Notification worker configuration
	NotifyMaxRetries int `json:"notify_max_retries"`

	// Tracing configuration
	TracingEnabled  bool   `json:"tracing_enabled"`
	TracingEndpoint string `json:"tracing_endpoint"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from environment variables
func LoadConfig() error {
	// Local development convenience; missing .env is fine
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sessionTTL, err := time.ParseDuration(getEnvOrDefault("SESSION_TTL", "30m"))
	if err != nil {
		return fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	lookupCacheTTL, err := time.ParseDuration(getEnvOrDefault("LOOKUP_CACHE_TTL", "10m"))
	if err != nil {
		return fmt.Errorf("invalid LOOKUP_CACHE_TTL: %w", err)
	}

	etaxTimeout, err := time.ParseDuration(getEnvOrDefault("ETAX_TIMEOUT", "30s"))
	if err != nil {
		return fmt.Errorf("invalid ETAX_TIMEOUT: %w", err)
	}

	notifyMaxRetries, err := strconv.Atoi(getEnvOrDefault("NOTIFY_MAX_RETRIES", "3"))
	if err != nil {
		return fmt.Errorf("invalid NOTIFY_MAX_RETRIES: %w", err)
	}

	etaxBaseURL := os.Getenv("ETAX_BASE_URL")
	if etaxBaseURL == "" {
		return fmt.Errorf("ETAX_BASE_URL environment variable is required")
	}

	AppConfig = &Config{
		// Server configuration
		Port:        port,
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		// MongoDB configuration
		MongoURI:      getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnvOrDefault("MONGODB_DATABASE", "tsp"),

		// Redis configuration
		RedisURI:       getEnvOrDefault("REDIS_URI", "localhost:6379"),
		RedisPassword:  getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:        redisDB,
		SessionTTL:     sessionTTL,
		LookupCacheTTL: lookupCacheTTL,

		// Collection names
		FilingAttemptCollection:    getEnvOrDefault("MONGODB_FILING_ATTEMPT_COLLECTION", "filing_attempts"),
		InvoiceCollection:          getEnvOrDefault("MONGODB_INVOICE_COLLECTION", "invoices"),
		CreditNoteCollection:       getEnvOrDefault("MONGODB_CREDIT_NOTE_COLLECTION", "credit_notes"),
		PayrollEmployeeCollection:  getEnvOrDefault("MONGODB_PAYROLL_EMPLOYEE_COLLECTION", "payroll_employees"),
		VisitedCountriesCollection: getEnvOrDefault("MONGODB_VISITED_COUNTRIES_COLLECTION", "visited_countries"),
		SavedItemCollection:        getEnvOrDefault("MONGODB_SAVED_ITEM_COLLECTION", "saved_items"),

		// External tax authority API
		EtaxBaseURL: etaxBaseURL,
		EtaxAPIKey:  getEnvOrDefault("ETAX_API_KEY", ""),
		EtaxTimeout: etaxTimeout,

		// Customs lookup proxy
		CustomsBaseURL: getEnvOrDefault("CUSTOMS_BASE_URL", ""),
		CustomsAPIKey:  getEnvOrDefault("CUSTOMS_API_KEY", ""),

		// WhatsApp configuration
		WhatsAppEnabled:      getEnvOrDefault("WHATSAPP_ENABLED", "false") == "true",
		WhatsAppBaseURL:      getEnvOrDefault("WHATSAPP_BASE_URL", ""),
		WhatsAppUsername:     getEnvOrDefault("WHATSAPP_USERNAME", ""),
		WhatsAppPassword:     getEnvOrDefault("WHATSAPP_PASSWORD", ""),
		WhatsAppCostCenterID: getEnvOrDefault("WHATSAPP_COST_CENTER_ID", "0"),
		WhatsAppCampaignName: getEnvOrDefault("WHATSAPP_CAMPAIGN_NAME", "tsp-filing"),
		WhatsAppHSMID:        getEnvOrDefault("WHATSAPP_HSM_ID", ""),

		// Notification worker configuration
		NotifyMaxRetries: notifyMaxRetries,

		// Tracing configuration
		TracingEnabled:  getEnvOrDefault("TRACING_ENABLED", "false") == "true",
		TracingEndpoint: getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
