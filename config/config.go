package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Venue time configuration. All clubs run in one fixed civil
	// timezone with no DST transitions.
	VenueUTCOffsetHours int

	// Dynamic pricing configuration
	EventGraceHours int

	// Fee configuration
	CoverCommissionRate decimal.Decimal
	EventCommissionRate decimal.Decimal
	MenuCommissionRate  decimal.Decimal
	GatewayFixedFee     decimal.Decimal
	GatewayVariableRate decimal.Decimal
	GatewayFeeTaxRate   decimal.Decimal
	MinTransactionTotal decimal.Decimal

	// Gateway circuit breaker
	BreakerMaxRequests  int
	BreakerWindow       time.Duration
	BreakerCooldown     time.Duration
	BreakerFailureRatio float64

	// Checkout configuration
	PollInterval    time.Duration
	MaxPollAttempts int
	CartLockTTL     time.Duration
	LockSweepEvery  time.Duration
	CartMaxAge      time.Duration
	SessionTTL      time.Duration

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration (buyer-facing push)
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// QR payload encryption key, 64 hex chars (32 bytes)
	QRSecretKey string

	// FlashPay gateway configuration
	FlashPay FlashPayConfig

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

type FlashPayConfig struct {
	BaseURL   string `json:"baseUrl" mapstructure:"base_url"`
	PartnerID string `json:"partnerId" mapstructure:"partner_id"`
	ClientID  string `json:"clientId" mapstructure:"client_id"`
	ClientKey string `json:"clientKey" mapstructure:"client_key"`
	HMACKey   string `json:"hmacKey" mapstructure:"hmac_key"`
	Currency  string `json:"currency" mapstructure:"currency"`

	PNSubKey    string `json:"pn_subkey" mapstructure:"pn_subkey"`
	PNSubSecret string `json:"pn_subsecret" mapstructure:"pn_subsecret"`
	PNUUID      string `json:"pn_uuid" mapstructure:"pn_uuid"`
	PNChannel   string `json:"pn_channel" mapstructure:"pn_channel"`
	PNCipherKey string `json:"pn_cipherKey" mapstructure:"pn_cipherkey"`
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Venue time
		VenueUTCOffsetHours: getEnvAsInt("VENUE_UTC_OFFSET_HOURS", -5),

		// Pricing
		EventGraceHours: getEnvAsInt("EVENT_GRACE_HOURS", 3),

		// Fees
		CoverCommissionRate: getEnvAsDecimal("COVER_COMMISSION_RATE", "0.05"),
		EventCommissionRate: getEnvAsDecimal("EVENT_COMMISSION_RATE", "0.10"),
		MenuCommissionRate:  getEnvAsDecimal("MENU_COMMISSION_RATE", "0.025"),
		GatewayFixedFee:     getEnvAsDecimal("GATEWAY_FIXED_FEE", "900"),
		GatewayVariableRate: getEnvAsDecimal("GATEWAY_VARIABLE_RATE", "0.0299"),
		GatewayFeeTaxRate:   getEnvAsDecimal("GATEWAY_FEE_TAX_RATE", "0.19"),
		MinTransactionTotal: getEnvAsDecimal("MIN_TRANSACTION_TOTAL", "1500"),

		// Circuit breaker
		BreakerMaxRequests:  getEnvAsInt("GATEWAY_BREAKER_MAX_REQUESTS", 100),
		BreakerWindow:       getEnvAsDuration("GATEWAY_BREAKER_WINDOW", "60s"),
		BreakerCooldown:     getEnvAsDuration("GATEWAY_BREAKER_COOLDOWN", "60s"),
		BreakerFailureRatio: getEnvAsFloat("GATEWAY_BREAKER_FAILURE_RATIO", 0.6),

		// Checkout
		PollInterval:    getEnvAsDuration("CHECKOUT_POLL_INTERVAL", "5s"),
		MaxPollAttempts: getEnvAsInt("CHECKOUT_MAX_POLL_ATTEMPTS", 60),
		CartLockTTL:     getEnvAsDuration("CART_LOCK_TTL", "10m"),
		LockSweepEvery:  getEnvAsDuration("LOCK_SWEEP_INTERVAL", "5m"),
		CartMaxAge:      getEnvAsDuration("CART_MAX_AGE", "30m"),
		SessionTTL:      getEnvAsDuration("CHECKOUT_SESSION_TTL", "10m"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// QR
		QRSecretKey: getEnv("QR_SECRET_KEY", ""),

		// FlashPay
		FlashPay: FlashPayConfig{
			BaseURL:   getEnv("FLASHPAY_BASE_URL", ""),
			PartnerID: getEnv("FLASHPAY_PARTNER_ID", ""),
			ClientID:  getEnv("FLASHPAY_CLIENT_ID", ""),
			ClientKey: getEnv("FLASHPAY_CLIENT_KEY", ""),
			HMACKey:   getEnv("FLASHPAY_HMAC_KEY", ""),
			Currency:  getEnv("FLASHPAY_CURRENCY", "COP"),

			PNSubKey:    getEnv("FLASHPAY_PN_SUBKEY", ""),
			PNSubSecret: getEnv("FLASHPAY_PN_SECRET", ""),
			PNUUID:      getEnv("FLASHPAY_PN_UUID", ""),
			PNChannel:   getEnv("FLASHPAY_PN_CHANNEL", ""),
			PNCipherKey: getEnv("FLASHPAY_PN_CIPHERKEY", ""),
		},

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsDecimal(key string, defaultValue string) decimal.Decimal {
	valueStr := getEnv(key, defaultValue)
	if value, err := decimal.NewFromString(valueStr); err == nil {
		return value
	}
	value, _ := decimal.NewFromString(defaultValue)
	return value
}
