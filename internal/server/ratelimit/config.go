package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Name   string        // Tier name; requests in the same tier share a bucket per client
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// HealthPath is never rate limited
const HealthPath = "/api/health"

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{
			Enabled: false,
		}
	}

	return &Config{
		Enabled:         enabled,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		BucketTTL:       getEnvDuration("RATE_LIMIT_BUCKET_TTL", time.Hour),
		Whitelist:       parseIPList(getEnvString("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseIPList(getEnvString("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: DefaultEndpointConfigs(getEnvInt("RATE_LIMIT_START_PER_HOUR", 30)),
	}
}

// DefaultEndpointConfigs returns the interview API tiers. startsPerHour bounds how many
// interviews one client may open.
func DefaultEndpointConfigs(startsPerHour int) []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: new sessions (strictest limits)
		{Name: "start", Path: "/api/interview/start", Method: "POST", Limit: startsPerHour, Window: time.Hour, Burst: 5},

		// Tier 2: session writes (moderate limits)
		{Name: "message", Path: "/api/interview/message", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Name: "finalize", Path: "/api/interview/finalize", Method: "POST", Limit: 30, Window: time.Minute, Burst: 10},
		{Name: "terminate", Path: "/api/interview/", Method: "DELETE", Limit: 30, Window: time.Minute, Burst: 10},

		// Tier 3: reads - handled by default limit
		// Tier 4: health check (unlimited) - handled by special case in matcher
	}
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
