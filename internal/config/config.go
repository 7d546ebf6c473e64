package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 int
	AdminPassword        string
	ModelBackend         string // "onnx" lub "opencv"
	ModelPath            string
	ModelURL             string
	ModelDownloadTimeout int // sekundy
	ONNXLibraryPath      string
	ONNXInputName        string
	ONNXOutputName       string
	DatabasePath         string
	Theme                string
	ThemeFile            string
	BufferLimit          int // Maksymalna liczba predykcji buforowanych na sesję
	FlushInterval        int // Co ile sekund zapisywać bufor do bazy
	MaxUploadSizeMB      int64
	MaxImagePixels       int64 // limit szerokość×wysokość zdjęcia
	LogDirectory         string
	StaticDirectory      string
}

// Load reads an optional .env file and builds the configuration from the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                 getEnvAsInt("PORT", 8080),
		AdminPassword:        getEnv("ADMIN_PASSWORD", "catsanddogs"),
		ModelBackend:         getEnv("MODEL_BACKEND", "onnx"),
		ModelPath:            getEnv("MODEL_PATH", filepath.Join(".", "models", "cat_dog_classifier.onnx")),
		ModelURL:             getEnv("MODEL_URL", ""),
		ModelDownloadTimeout: getEnvAsInt("MODEL_DOWNLOAD_TIMEOUT", 120),
		ONNXLibraryPath:      getEnv("ONNX_LIBRARY_PATH", ""),
		ONNXInputName:        getEnv("ONNX_INPUT_NAME", ""),
		ONNXOutputName:       getEnv("ONNX_OUTPUT_NAME", ""),
		DatabasePath:         getEnv("DB_PATH", filepath.Join(".", "data", "catdog.db")),
		Theme:                getEnv("THEME", "classic"),
		ThemeFile:            getEnv("THEME_FILE", ""),
		BufferLimit:          getEnvAsInt("BUFFER_LIMIT", 50),
		FlushInterval:        getEnvAsInt("FLUSH_INTERVAL", 30),
		MaxUploadSizeMB:      getEnvAsInt64("MAX_UPLOAD_SIZE_MB", 10),
		MaxImagePixels:       getEnvAsInt64("MAX_IMAGE_PIXELS", 40_000_000),
		LogDirectory:         getEnv("LOG_DIR", filepath.Join(".", "logs")),
		StaticDirectory:      getEnv("STATIC_DIR", filepath.Join(".", "static")),
	}
}

// MaxUploadBytes returns the multipart upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	if c.MaxUploadSizeMB <= 0 {
		return 10 << 20
	}
	return c.MaxUploadSizeMB << 20
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
