package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Argon2 cost parameters are deliberately absent: they are part of every derived key.
type Config struct {
	Port           string `envconfig:"PORT" default:"8080"`
	ListenHost     string `envconfig:"LISTEN_HOST" default:"127.0.0.1"`
	MaxConcurrent  int    `envconfig:"MAX_CONCURRENT_DERIVATIONS" default:"2"`
	RatePerMinute  int    `envconfig:"DERIVE_RATE_PER_MINUTE" default:"30"`
	QRSize         int    `envconfig:"QR_SIZE" default:"256"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if c.MaxConcurrent < 1 {
		return errors.New("MAX_CONCURRENT_DERIVATIONS must be at least 1")
	}
	if c.QRSize < 21 {
		return errors.New("QR_SIZE must be at least 21 pixels")
	}
	cfg = c
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetListenAddr returns host:port the HTTP API listens on
func GetListenAddr() string {
	return Get().ListenHost + ":" + Get().Port
}

// GetMaxConcurrent returns how many derivations may run at once
func GetMaxConcurrent() int {
	return Get().MaxConcurrent
}

// GetRatePerMinute returns the derive request rate limit, 0 or less disables it
func GetRatePerMinute() int {
	return Get().RatePerMinute
}

// GetQRSize returns QR PNG size in pixels
func GetQRSize() int {
	return Get().QRSize
}

// PromptSecret prompts the user for a secret in the terminal.
// The input is read without echoing. Caller must zero the returned slice after use.
func PromptSecret(label string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter secrets")
	}
	fmt.Fprintf(os.Stderr, "Enter %s: ", label)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", label, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", label)
	}

	out := make([]byte, len(raw))
	copy(out, raw)
	clear(raw)
	return out, nil
}
