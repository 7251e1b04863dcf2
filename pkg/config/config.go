package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vamshi205/reconcilation-credit-sub001/pkg/matcher"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/models"
)

// Config is the process-wide configuration, built from defaults, an
// optional config.yaml, RECON_* environment variables and flag overrides.
type Config struct {
	ListenAddr  string `mapstructure:"listen_addr"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	RulesFile   string `mapstructure:"rules_file"`

	Store struct {
		Timeout       time.Duration `mapstructure:"timeout"`
		RetryAttempts int           `mapstructure:"retry_attempts"`
		RetryBase     time.Duration `mapstructure:"retry_base"`
	} `mapstructure:"store"`

	Matcher matcher.Config `mapstructure:"matcher"`

	Parser struct {
		MaxHeaderScan int `mapstructure:"max_header_scan"`
	} `mapstructure:"parser"`

	// Loaded from RulesFile, not from viper.
	Rules Rules `mapstructure:"-"`
}

// Rules extends column aliases and category keywords per deployment.
type Rules struct {
	ColumnAliases map[string][]string   `yaml:"column_aliases"`
	Categories    []models.CategoryRule `yaml:"categories"`
}

// Build resolves configuration in precedence order: flags > env > config
// file > defaults. cfgFile may be empty, in which case config.yaml is used
// when present.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	m := matcher.DefaultConfig()
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("rules_file", "")
	v.SetDefault("store.timeout", 5*time.Second)
	v.SetDefault("store.retry_attempts", 3)
	v.SetDefault("store.retry_base", 200*time.Millisecond)
	v.SetDefault("matcher.min_overlap", m.MinOverlap)
	v.SetDefault("matcher.strong_overlap", m.StrongOverlap)
	v.SetDefault("matcher.min_shared_words", m.MinSharedWords)
	v.SetDefault("matcher.min_length_ratio", m.MinLengthRatio)
	v.SetDefault("matcher.cache_ttl", m.CacheTTL)
	v.SetDefault("matcher.store_timeout", m.StoreTimeout)
	v.SetDefault("parser.max_header_scan", 10)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("RECON")
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; anything else is a real problem.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.RulesFile != "" {
		rules, err := LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		cfg.Rules = *rules
	}
	return &cfg, nil
}

// LoadRules reads extra column aliases and category keyword rules from YAML.
func LoadRules(path string) (*Rules, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var rules Rules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	return &rules, nil
}
