package config

import "os"

// Config holds everything the server reads from the environment. It is
// loaded once in main and injected into constructors; nothing below main
// touches os.Getenv.
type Config struct {
	Port string

	// AdminSecret gates the /api/admin endpoints. Empty means the admin
	// surface is deliberately unconfigured and must fail closed.
	AdminSecret string

	StripeKey        string
	DonationCurrency string

	RedisURL string

	FirebaseCredentialsPath string
	MembersCollection       string

	SMTPHost  string
	SMTPPort  string
	SMTPUser  string
	SMTPPass  string
	EmailFrom string
}

// Load reads the process environment into a Config.
func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		AdminSecret:             os.Getenv("ADMIN_SECRET"),
		StripeKey:               os.Getenv("STRIPE_SECRET_KEY"),
		DonationCurrency:        getEnv("DONATION_CURRENCY", "usd"),
		RedisURL:                os.Getenv("REDIS_URL"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase-service-account.json"),
		MembersCollection:       getEnv("FIRESTORE_MEMBERS_COLLECTION", "members"),
		SMTPHost:                os.Getenv("SMTP_HOST"),
		SMTPPort:                os.Getenv("SMTP_PORT"),
		SMTPUser:                os.Getenv("SMTP_USER"),
		SMTPPass:                os.Getenv("SMTP_PASS"),
		EmailFrom:               os.Getenv("EMAIL_FROM"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
