package config

import (
	"os"
)

// Config holds all environment-sourced settings, read once at startup. The
// credentials package checks the credential fields per tool invocation, so a
// missing key fails only the calls that need it.
type Config struct {
	// Google Maps Platform (geocoding, places, directions, distance matrix)
	MapsAPIKey string

	// SerpAPI (google_finance and google_flights engines)
	SerpAPIKey string

	// Optional news search key; finance news sections degrade without it
	NewsAPIKey string

	// Google OAuth bundle for Gmail and Calendar
	GoogleClientID     string
	GoogleClientSecret string
	GoogleAccessToken  string
	GoogleRefreshToken string
	GoogleRedirectURL  string

	// Default calendar used when a tool call omits calendarId
	DefaultCalendarID string
}

// DefaultRedirectURL is the redirect used during the one-time interactive
// token acquisition. It is fixed here so the stored refresh token keeps
// working even when the variable is unset.
const DefaultRedirectURL = "http://localhost:4100/code"

func Load() *Config {
	return &Config{
		MapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),

		SerpAPIKey: getEnv("SERPAPI_API_KEY", ""),
		NewsAPIKey: getEnv("NEWS_API_KEY", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleAccessToken:  getEnv("GOOGLE_ACCESS_TOKEN", ""),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", DefaultRedirectURL),

		DefaultCalendarID: getEnv("GOOGLE_CALENDAR_ID", "primary"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
