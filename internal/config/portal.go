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

// PortalConfig holds runtime-tunable portal settings.
type PortalConfig struct {
	// ProfileLookupTimeout bounds profile resolution; a lookup that does
	// not return within it is treated as a failure, not a stall.
	ProfileLookupTimeout time.Duration `mapstructure:"profileLookupTimeout"`
	SessionTTL           time.Duration `mapstructure:"sessionTTL"`
	ResetTokenTTL        time.Duration `mapstructure:"resetTokenTTL"`
	LoginRatePerMinute   float64       `mapstructure:"loginRatePerMinute"`
	LoginBurst           int           `mapstructure:"loginBurst"`
}

func DefaultPortalConfig() PortalConfig {
	return PortalConfig{
		ProfileLookupTimeout: 10 * time.Second,
		SessionTTL:           7 * 24 * time.Hour,
		ResetTokenTTL:        30 * time.Minute,
		LoginRatePerMinute:   10,
		LoginBurst:           5,
	}
}

// PortalConfigHolder serves the current portal config and hot-reloads it
// when portal.yml changes on disk.
type PortalConfigHolder struct {
	current atomic.Value // holds PortalConfig
}

func NewPortalConfigHolder() (*PortalConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("portal")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/printhaus/config")
	v.AddConfigPath("/etc/printhaus")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPortalConfig()
	v.SetDefault("portal.profileLookupTimeout", defaults.ProfileLookupTimeout)
	v.SetDefault("portal.sessionTTL", defaults.SessionTTL)
	v.SetDefault("portal.resetTokenTTL", defaults.ResetTokenTTL)
	v.SetDefault("portal.loginRatePerMinute", defaults.LoginRatePerMinute)
	v.SetDefault("portal.loginBurst", defaults.LoginBurst)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg PortalConfig
	if err := v.UnmarshalKey("portal", &cfg); err != nil {
		return nil, err
	}
	if err := validatePortalConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PortalConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PortalConfig
		if err := v.UnmarshalKey("portal", &updated); err != nil {
			log.Printf("[portal-config] reload failed: %v", err)
			return
		}
		if err := validatePortalConfig(updated); err != nil {
			log.Printf("[portal-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[portal-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPortalConfigHolder wraps a fixed config, bypassing the file
// watcher. Intended for tests.
func NewStaticPortalConfigHolder(cfg PortalConfig) *PortalConfigHolder {
	holder := &PortalConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PortalConfigHolder) Get() PortalConfig {
	return h.current.Load().(PortalConfig)
}

func validatePortalConfig(cfg PortalConfig) error {
	if cfg.ProfileLookupTimeout <= 0 {
		return errors.New("portal.profileLookupTimeout must be positive")
	}
	if cfg.SessionTTL <= 0 {
		return errors.New("portal.sessionTTL must be positive")
	}
	if cfg.ResetTokenTTL <= 0 {
		return errors.New("portal.resetTokenTTL must be positive")
	}
	return nil
}
