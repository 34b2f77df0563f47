package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Image generation
	GeminiAPIKey     string `yaml:"gemini_api_key"`
	GeminiImageModel string `yaml:"gemini_image_model"`

	// Social link resolution
	FxTwitterAPIBaseURL string   `yaml:"fxtwitter_api_base_url"`
	AllowedSocialHosts  []string `yaml:"allowed_social_hosts"`

	// IPFS pinning
	PinataJWT        string `yaml:"pinata_jwt"`
	PinataAPIBaseURL string `yaml:"pinata_api_base_url"`
	IPFSGatewayURL   string `yaml:"ipfs_gateway_url"`

	// Coin deployment
	SolanaRPCURL           string `yaml:"solana_rpc_url"`
	SolanaCluster          string `yaml:"solana_cluster"`
	SolanaMintAuthorityKey string `yaml:"solana_mint_authority_key"`
	CoinDecimals           uint8  `yaml:"coin_decimals"`
	CoinInitialSupply      uint64 `yaml:"coin_initial_supply"`

	// Record store
	RecordsFile string `yaml:"records_file"`
	DatabaseURL string `yaml:"database_url"`

	// Supabase image mirror
	SupabaseURL           string `yaml:"supabase_url"`
	SupabaseServiceKey    string `yaml:"supabase_service_key"`
	SupabaseStorageBucket string `yaml:"supabase_storage_bucket"`

	// Wallet auth
	WalletJWTSecret string `yaml:"wallet_jwt_secret"`

	// Gallery
	BattleDuration time.Duration `yaml:"battle_duration"`

	// Server
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	BaseURL     string `yaml:"base_url"`
}

func defaults() *Config {
	return &Config{
		GeminiImageModel:      "gemini-2.0-flash-preview-image-generation",
		FxTwitterAPIBaseURL:   "https://api.fxtwitter.com",
		AllowedSocialHosts:    []string{"x.com", "twitter.com"},
		PinataAPIBaseURL:      "https://api.pinata.cloud",
		IPFSGatewayURL:        "https://gateway.pinata.cloud/ipfs/",
		SolanaRPCURL:          "https://api.devnet.solana.com",
		SolanaCluster:         "devnet",
		CoinDecimals:          6,
		CoinInitialSupply:     1_000_000_000,
		RecordsFile:           "db.json",
		SupabaseStorageBucket: "memories",
		BattleDuration:        5 * time.Minute,
		Port:                  "8080",
		Environment:           "development",
		BaseURL:               "http://localhost:8080",
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in increasing priority.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiImageModel = getEnv("GEMINI_IMAGE_MODEL", c.GeminiImageModel)

	c.FxTwitterAPIBaseURL = getEnv("FXTWITTER_API_BASE_URL", c.FxTwitterAPIBaseURL)
	if hosts := os.Getenv("ALLOWED_SOCIAL_HOSTS"); hosts != "" {
		c.AllowedSocialHosts = splitList(hosts)
	}

	c.PinataJWT = getEnv("PINATA_JWT", c.PinataJWT)
	c.PinataAPIBaseURL = getEnv("PINATA_API_BASE_URL", c.PinataAPIBaseURL)
	c.IPFSGatewayURL = getEnv("IPFS_GATEWAY_URL", c.IPFSGatewayURL)

	c.SolanaRPCURL = getEnv("SOLANA_RPC_URL", c.SolanaRPCURL)
	c.SolanaCluster = getEnv("SOLANA_CLUSTER", c.SolanaCluster)
	c.SolanaMintAuthorityKey = getEnv("SOLANA_MINT_AUTHORITY_KEY", c.SolanaMintAuthorityKey)
	if v := os.Getenv("COIN_DECIMALS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("COIN_DECIMALS: %w", err)
		}
		c.CoinDecimals = uint8(n)
	}
	if v := os.Getenv("COIN_INITIAL_SUPPLY"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("COIN_INITIAL_SUPPLY: %w", err)
		}
		c.CoinInitialSupply = n
	}

	c.RecordsFile = getEnv("RECORDS_FILE", c.RecordsFile)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)

	c.SupabaseURL = getEnv("SUPABASE_URL", c.SupabaseURL)
	c.SupabaseServiceKey = getEnv("SUPABASE_SERVICE_KEY", c.SupabaseServiceKey)
	c.SupabaseStorageBucket = getEnv("SUPABASE_STORAGE_BUCKET", c.SupabaseStorageBucket)

	c.WalletJWTSecret = getEnv("WALLET_JWT_SECRET", c.WalletJWTSecret)

	if v := os.Getenv("BATTLE_DURATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BATTLE_DURATION: %w", err)
		}
		c.BattleDuration = d
	}

	c.Port = getEnv("PORT", c.Port)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.BaseURL = getEnv("BASE_URL", c.BaseURL)
	return nil
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.PinataJWT == "" {
		return fmt.Errorf("PINATA_JWT is required")
	}
	if c.SolanaMintAuthorityKey == "" {
		return fmt.Errorf("SOLANA_MINT_AUTHORITY_KEY is required")
	}
	if c.BattleDuration <= 0 {
		return fmt.Errorf("BATTLE_DURATION must be positive")
	}
	if len(c.AllowedSocialHosts) == 0 {
		return fmt.Errorf("ALLOWED_SOCIAL_HOSTS must not be empty")
	}
	return nil
}

// SupabaseEnabled reports whether the image mirror is configured.
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
