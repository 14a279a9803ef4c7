package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the storefront session configuration. A value is built once
// at startup and passed down explicitly; there is no package-level state.
type Config struct {
	// BackendURL is the base URL of the remote product/order API,
	// including any path prefix.
	BackendURL string
	// VendorKey selects whose catalog this session sells. Required: there
	// is deliberately no default vendor identity.
	VendorKey string
	// Currency is the currency code stamped on hosted-payment items.
	Currency string
	// CreatorID is the placeholder identity attached to cart lines and
	// orders while the storefront has no authentication.
	CreatorID int
	// Port is the local port the view surface listens on.
	Port string
}

// Load reads configuration from the environment, with optional .env support.
func Load() (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	vendorKey := os.Getenv("VENDOR_KEY")
	if vendorKey == "" {
		return Config{}, fmt.Errorf("VENDOR_KEY is required")
	}

	cfg := Config{
		BackendURL: getEnv("BACKEND_URL", "https://ecommerceplantilla-back.fileit-contact.workers.dev/api"),
		VendorKey:  vendorKey,
		Currency:   getEnv("CURRENCY", "ARS"),
		CreatorID:  2,
		Port:       getEnv("PORT", "8080"),
	}

	if raw := os.Getenv("CREATOR_ID"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CREATOR_ID %q: %w", raw, err)
		}
		cfg.CreatorID = id
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
