package config

import (
	"os"
	"strconv"
)

type Config struct {
	ListenAddr             string
	DBPath                 string
	LayoutBackend          string
	LayoutPath             string
	PaletteFile            string
	CanvasWidth            float64
	CanvasHeight           float64
	PlacementClamp         bool
	PlacementRejectOverlap bool
	LogLevel               string
	LogFile                string
}

func Load() *Config {
	return &Config{
		ListenAddr:             getEnv("LISTEN_ADDR", ":8080"),
		DBPath:                 getEnv("DB_PATH", "/data/floorplan.db"),
		LayoutBackend:          getEnv("LAYOUT_BACKEND", "sqlite"),
		LayoutPath:             getEnv("LAYOUT_PATH", "/data/layouts"),
		PaletteFile:            getEnv("PALETTE_FILE", ""),
		CanvasWidth:            getEnvFloat("CANVAS_WIDTH", 800),
		CanvasHeight:           getEnvFloat("CANVAS_HEIGHT", 494),
		PlacementClamp:         getEnvBool("PLACEMENT_CLAMP", true),
		PlacementRejectOverlap: getEnvBool("PLACEMENT_REJECT_OVERLAP", false),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFile:                getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

// getEnvFloat falls back to defaultVal for unparsable or non-positive values.
func getEnvFloat(key string, defaultVal float64) float64 {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f <= 0 {
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
