package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr     string
	CatalogBaseURL string
	PolicyBaseURL  string
	RulePackPath   string
	HTTPTimeout    time.Duration
}

func New() (*Config, error) {
	// .env é opcional; em produção as variáveis vêm do ambiente.
	_ = godotenv.Load()

	catalogURL := os.Getenv("CATALOG_BASE_URL")
	if catalogURL == "" {
		return nil, fmt.Errorf("CATALOG_BASE_URL environment variable is not set")
	}
	policyURL := os.Getenv("POLICY_BASE_URL")
	if policyURL == "" {
		return nil, fmt.Errorf("POLICY_BASE_URL environment variable is not set")
	}

	cfg := &Config{
		ListenAddr:     ":8080",
		CatalogBaseURL: catalogURL,
		PolicyBaseURL:  policyURL,
		RulePackPath:   os.Getenv("RULE_PACK_PATH"),
		HTTPTimeout:    15 * time.Second,
	}

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if raw := os.Getenv("HTTP_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("HTTP_TIMEOUT inválido: %w", err)
		}
		cfg.HTTPTimeout = timeout
	}

	return cfg, nil
}
