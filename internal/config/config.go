package config

import (
	"os"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables

	// BrevoAPIKey authenticates against the Brevo SMTP relay. The OTP email
	// path cannot operate without it; everything else runs fine.
	BrevoAPIKey string
	SMTPHost    string
	SMTPPort    string
	SMTPFrom    string
	SMTPSender  string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users     string
	EmailOtps string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Users:     getEnv("DYNAMO_TABLE_USERS", "users"),
			EmailOtps: getEnv("DYNAMO_TABLE_EMAIL_OTPS", "email_otps"),
		},

		BrevoAPIKey: getEnv("BREVO_API_KEY", ""),
		SMTPHost:    getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:    getEnv("SMTP_PORT", "587"),
		SMTPFrom:    getEnv("SMTP_FROM", "no-reply@calligro.digital"),
		SMTPSender:  getEnv("SMTP_SENDER", "Calligro App"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
