package testutils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/joho/godotenv"
)

const TEST_CONFIG_PATH_ENV = "TEST_CONFIG_PATH"

// LoadEnv loads the .env file from the project root directory
func LoadEnv() error {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)

	// pkg/testutils -> project root
	envPath := filepath.Join(dir, "..", "..", ".env")
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		return nil
	}

	return godotenv.Load(envPath)
}

// LoadEnvOrPanic loads the .env file and panics if there's an error
func LoadEnvOrPanic() {
	if err := LoadEnv(); err != nil {
		panic("Failed to load .env file: " + err.Error())
	}
}

// GetEnvOrDefault gets an environment variable with a default value
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ConfigPathOrSkip returns the service config used by integration tests,
// skipping the test when none is provided.
func ConfigPathOrSkip(t testing.TB) string {
	t.Helper()
	LoadEnvOrPanic()
	path := os.Getenv(TEST_CONFIG_PATH_ENV)
	if path == "" {
		t.Skip(TEST_CONFIG_PATH_ENV + " not set, skip integration test")
	}
	return path
}
