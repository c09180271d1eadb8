package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Chains maps the chain selector to its default public RPC URL.
var Chains = map[string]string{
	"mainnet": "https://rpc.berachain.com",
	"bepolia": "https://bepolia.rpc.berachain.com",
}

// DataFile returns the data file path for a record kind and chain.
func DataFile(dataDir, kind, chain string) string {
	return filepath.Join(dataDir, kind, chain+".json")
}

// newViper builds the shared flag/env/config-file merge. A .env file in the
// working directory is loaded first so credentials can live outside the
// shell environment.
func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("METALIST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("data-dir", "./src")
	v.SetDefault("schema-dir", "./schemas")
	v.SetDefault("assets-dir", "./src/assets")
	v.SetDefault("chain", "mainnet")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

// ValidateConfig holds settings for the schema validation pass.
type ValidateConfig struct {
	SchemaDir string
	DataDir   string
	LogLevel  string
}

// LoadValidate merges config sources for the validate command.
func LoadValidate(cfgFile string, flags *pflag.FlagSet) (ValidateConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ValidateConfig{}, err
	}
	return ValidateConfig{
		SchemaDir: v.GetString("schema-dir"),
		DataDir:   v.GetString("data-dir"),
		LogLevel:  v.GetString("log-level"),
	}, nil
}

// AssetsConfig holds settings for the asset maintenance commands.
type AssetsConfig struct {
	AssetsDir string
	LogLevel  string
}

// LoadAssets merges config sources for the assets commands.
func LoadAssets(cfgFile string, flags *pflag.FlagSet) (AssetsConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return AssetsConfig{}, err
	}
	return AssetsConfig{
		AssetsDir: v.GetString("assets-dir"),
		LogLevel:  v.GetString("log-level"),
	}, nil
}

// ReconcileConfig holds settings for the vault reconciliation command.
type ReconcileConfig struct {
	DataDir      string
	Chain        string
	Endpoint     string
	MaxRetries   int
	RetryBackoff time.Duration
	PageDelay    time.Duration
	ReportPath   string
	PGDSN        string
	DryRun       bool
	LogLevel     string
}

// LoadReconcile merges config sources for the reconcile command.
func LoadReconcile(cfgFile string, flags *pflag.FlagSet) (ReconcileConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ReconcileConfig{}, err
	}

	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("page-delay", 200*time.Millisecond)
	v.SetDefault("report", "./data/reconcile.jsonl")

	cfg := ReconcileConfig{
		DataDir:      v.GetString("data-dir"),
		Chain:        v.GetString("chain"),
		Endpoint:     v.GetString("endpoint"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		PageDelay:    v.GetDuration("page-delay"),
		ReportPath:   v.GetString("report"),
		PGDSN:        v.GetString("pg-dsn"),
		DryRun:       v.GetBool("dry-run"),
		LogLevel:     v.GetString("log-level"),
	}

	if _, ok := Chains[cfg.Chain]; !ok {
		return ReconcileConfig{}, fmt.Errorf("unknown chain %q", cfg.Chain)
	}
	return cfg, nil
}

// IconConfig holds settings for the vault icon generation command.
type IconConfig struct {
	DataDir      string
	AssetsDir    string
	Chain        string
	RPCURL       string
	VaultAddress string
	BrandColor   string
	All          bool
	DryRun       bool
	Force        bool
	SaveLocal    bool
	OutDir       string
	CloudName    string
	APIKey       string
	APISecret    string
	Folder       string
	LogLevel     string
}

// LoadIcon merges config sources for the icon command. Image host
// credentials come from CLOUDINARY_* environment variables or a .env file.
func LoadIcon(cfgFile string, flags *pflag.FlagSet) (IconConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return IconConfig{}, err
	}

	v.SetDefault("out", "./data/icons")
	v.SetDefault("folder", "vaults")
	_ = v.BindEnv("cloud-name", "CLOUDINARY_CLOUD_NAME")
	_ = v.BindEnv("api-key", "CLOUDINARY_API_KEY")
	_ = v.BindEnv("api-secret", "CLOUDINARY_API_SECRET")

	cfg := IconConfig{
		DataDir:      v.GetString("data-dir"),
		AssetsDir:    v.GetString("assets-dir"),
		Chain:        v.GetString("chain"),
		RPCURL:       v.GetString("rpc"),
		VaultAddress: v.GetString("vault-address"),
		BrandColor:   v.GetString("brand-color"),
		All:          v.GetBool("all"),
		DryRun:       v.GetBool("dry-run"),
		Force:        v.GetBool("force"),
		SaveLocal:    v.GetBool("save-local"),
		OutDir:       v.GetString("out"),
		CloudName:    v.GetString("cloud-name"),
		APIKey:       v.GetString("api-key"),
		APISecret:    v.GetString("api-secret"),
		Folder:       v.GetString("folder"),
		LogLevel:     v.GetString("log-level"),
	}

	rpcURL, ok := Chains[cfg.Chain]
	if !ok {
		return IconConfig{}, fmt.Errorf("unknown chain %q", cfg.Chain)
	}
	if cfg.RPCURL == "" {
		cfg.RPCURL = rpcURL
	}
	return cfg, nil
}

// GapcheckConfig holds settings for the metadata gap check.
type GapcheckConfig struct {
	APIBaseURL string
	APIToken   string
	LogLevel   string
}

// LoadGapcheck merges config sources for the gapcheck command.
func LoadGapcheck(cfgFile string, flags *pflag.FlagSet) (GapcheckConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return GapcheckConfig{}, err
	}

	_ = v.BindEnv("api-base-url", "METADATA_API_URL")
	_ = v.BindEnv("api-token", "METADATA_API_TOKEN")

	return GapcheckConfig{
		APIBaseURL: v.GetString("api-base-url"),
		APIToken:   v.GetString("api-token"),
		LogLevel:   v.GetString("log-level"),
	}, nil
}
