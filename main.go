package main

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/color-game/consolidation/api"
	"github.com/color-game/consolidation/consolidation"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		var iv *consolidation.InvariantViolation
		if errors.As(err, &iv) {
			slog.Error("consolidation rejected",
				"invariant", iv.Invariant,
				"expected", iv.Expected,
				"actual", iv.Actual,
				"entry", iv.Entry,
			)
		} else {
			slog.Error("command failed", "error", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "consolidation",
		Short:         "Consolidate a legacy colour list into a curated palette",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(getEnv("LOG_LEVEL", "info"), getEnvBool("DEV_MODE", true)))
		},
	}

	root.AddCommand(
		newServeCmd(),
		newClassifyCmd(),
		newMigrateCmd(),
		newHashPasswordCmd(),
	)
	return root
}

func newLogger(level string, color bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.DateTime,
		NoColor:    !color,
	}))
}

// loadConfig reads the service configuration from the environment
func loadConfig() api.Config {
	return api.Config{
		HTTPPort:          getEnv("HTTP_PORT", ":8080"),
		DatabaseType:      getEnv("DB_TYPE", "postgres"),
		DatabaseHost:      getEnv("DB_HOST", "localhost"),
		DatabaseUser:      getEnv("DB_USER", "postgres"),
		DatabasePassword:  getEnv("DB_PASSWORD", ""),
		DatabaseName:      getEnv("DB_NAME", "palette"),
		SSLMode:           getEnv("SSL_MODE", "disable"),
		JwtSecret:         getEnv("JWT_SECRET", "your-secret-key-change-this"),
		JwtAccessDuration: getEnvInt("JWT_ACCESS_DURATION", 3600), // 1 hour
		JwtDomain:         getEnv("JWT_DOMAIN", ""),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		AllowedOrigins:    getEnvSlice("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		DevMode:           getEnvBool("DEV_MODE", true),
		PalettePath:       getEnv("PALETTE_PATH", "data/palette.toml"),
		Workers:           getEnvInt("CLASSIFY_WORKERS", 0),
		RescanInterval:    getEnvDuration("RESCAN_INTERVAL", 10*time.Minute),
		Thresholds:        thresholdsFromEnv(),
	}
}

func thresholdsFromEnv() consolidation.Thresholds {
	d := consolidation.DefaultThresholds()
	return consolidation.Thresholds{
		Exact:     getEnvFloat("THRESHOLD_EXACT", d.Exact),
		Merged:    getEnvFloat("THRESHOLD_MERGED", d.Merged),
		Far:       getEnvFloat("THRESHOLD_FAR", d.Far),
		Unmatched: getEnvFloat("THRESHOLD_UNMATCHED", d.Unmatched),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatVal
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getEnvSlice(key, defaultValue string) []string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
