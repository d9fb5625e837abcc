package config

import (
	"fmt"
	"os"
	"strings"
)

func BasePath() string {
	return os.Getenv("APP_BASE_PATH")
}

// Port is the listen address of the game server, ":8080" unless APP_PORT
// says otherwise.
func Port() string {
	port, ok := os.LookupEnv("APP_PORT")
	if !ok || port == "" {
		return ":8080"
	}
	if port[0] != ':' {
		port = ":" + port
	}
	return port
}

// LogFile is an optional path the server mirrors its logs to.
func LogFile() string {
	return os.Getenv("LOG_FILE")
}

func lookup(name string) (string, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("%s env variable is not set", name)
	}
	return value, nil
}

// lookupSecret reads name or, failing that, the file named by name_FILE.
func lookupSecret(name string) ([]byte, error) {
	value, ok := os.LookupEnv(name)
	if ok {
		return []byte(value), nil
	}
	path, ok := os.LookupEnv(name + "_FILE")
	if !ok {
		return nil, fmt.Errorf("no %s or %s_FILE env variable set", name, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s_FILE: %w", name, err)
	}
	return data, nil
}

// CorsOrigins lists the origins allowed to call the API with credentials.
// Empty means any origin.
func CorsOrigins() []string {
	s := os.Getenv("CORS_ALLOWED_ORIGINS")
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
