package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PipelineConfig tunes the invoice delivery pipeline: how long the
// listener waits for a rendered document and how subscription retries
// back off.
type PipelineConfig struct {
	PollAttempts        int           `mapstructure:"pollAttempts"`
	PollInterval        time.Duration `mapstructure:"pollInterval"`
	SubscribeRetries    int           `mapstructure:"subscribeRetries"`
	SubscribeBackoffMin time.Duration `mapstructure:"subscribeBackoffMin"`
	SubscribeBackoffMax time.Duration `mapstructure:"subscribeBackoffMax"`
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		PollAttempts:        5,
		PollInterval:        2 * time.Second,
		SubscribeRetries:    5,
		SubscribeBackoffMin: time.Second,
		SubscribeBackoffMax: 30 * time.Second,
	}
}

type PipelineConfigHolder struct {
	current atomic.Value // holds PipelineConfig
}

func NewPipelineConfigHolder() (*PipelineConfigHolder, error) {
	return newPipelineConfigHolder("/etc/facture", ".")
}

func newPipelineConfigHolder(searchPaths ...string) (*PipelineConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("pipeline")
	v.SetConfigType("yml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("FACTURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// defaults are always registered so a partial pipeline.yml only
	// overrides the keys it names
	defaults := DefaultPipelineConfig()
	v.SetDefault("pollAttempts", defaults.PollAttempts)
	v.SetDefault("pollInterval", defaults.PollInterval)
	v.SetDefault("subscribeRetries", defaults.SubscribeRetries)
	v.SetDefault("subscribeBackoffMin", defaults.SubscribeBackoffMin)
	v.SetDefault("subscribeBackoffMax", defaults.SubscribeBackoffMax)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := validatePipelineConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PipelineConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PipelineConfig
		if err := v.Unmarshal(&updated); err != nil {
			log.Printf("[pipeline-config] reload failed: %v", err)
			return
		}
		if err := validatePipelineConfig(updated); err != nil {
			log.Printf("[pipeline-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[pipeline-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPipelineConfigHolder wraps a fixed config with no file
// watching behind it. Used by tests and one-shot tooling.
func NewStaticPipelineConfigHolder(cfg PipelineConfig) (*PipelineConfigHolder, error) {
	if err := validatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	holder := &PipelineConfigHolder{}
	holder.current.Store(cfg)
	return holder, nil
}

func (h *PipelineConfigHolder) Get() PipelineConfig {
	return h.current.Load().(PipelineConfig)
}

func validatePipelineConfig(cfg PipelineConfig) error {
	if cfg.PollAttempts <= 0 {
		return errors.New("pipeline.pollAttempts must be positive")
	}
	if cfg.PollInterval <= 0 {
		return errors.New("pipeline.pollInterval must be positive")
	}
	if cfg.SubscribeBackoffMin <= 0 || cfg.SubscribeBackoffMax < cfg.SubscribeBackoffMin {
		return errors.New("pipeline.subscribeBackoff window is invalid")
	}
	return nil
}
