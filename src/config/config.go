package config

import (
	"fmt"
	"os"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const (
	pesapalSandboxURL    = "https://cybqa.pesapal.com/pesapalv3"
	pesapalProductionURL = "https://pay.pesapal.com/v3"

	FlutterwaveBaseURL = "https://api.flutterwave.com/v3"
)

// PesapalBaseURL picks the sandbox or production endpoint from PESAPAL_ENV.
// Anything other than "production" stays on the sandbox.
func PesapalBaseURL() string {
	if os.Getenv("PESAPAL_ENV") == "production" {
		return pesapalProductionURL
	}
	return pesapalSandboxURL
}

const DATE_PARSE_FORMAT = "2006-01-02"
