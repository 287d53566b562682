package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ReportConfig controls how the sales report PDF is rendered.
type ReportConfig struct {
	Title          string `mapstructure:"title"`
	CompanyName    string `mapstructure:"companyName"`
	CurrencySymbol string `mapstructure:"currencySymbol"`
	MaxRows        int    `mapstructure:"maxRows"`
}

func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Title:          "Sales report",
		CompanyName:    "Birracraft",
		CurrencySymbol: "$",
		MaxRows:        500,
	}
}

type ReportConfigHolder struct {
	current atomic.Value // holds ReportConfig
}

func NewReportConfigHolder() (*ReportConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("report")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/birracraft")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BIRRACRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultReportConfig()
	v.SetDefault("report.title", defaults.Title)
	v.SetDefault("report.companyName", defaults.CompanyName)
	v.SetDefault("report.currencySymbol", defaults.CurrencySymbol)
	v.SetDefault("report.maxRows", defaults.MaxRows)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg ReportConfig
	if err := v.UnmarshalKey("report", &cfg); err != nil {
		return nil, err
	}
	if err := validateReportConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticReportConfigHolder(cfg)

	if fileLoaded {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated ReportConfig
			if err := v.UnmarshalKey("report", &updated); err != nil {
				log.Printf("[report-config] reload failed: %v", err)
				return
			}
			if err := validateReportConfig(updated); err != nil {
				log.Printf("[report-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[report-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

// NewStaticReportConfigHolder returns a holder that never reloads.
func NewStaticReportConfigHolder(cfg ReportConfig) *ReportConfigHolder {
	holder := &ReportConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *ReportConfigHolder) Get() ReportConfig {
	return h.current.Load().(ReportConfig)
}

func validateReportConfig(cfg ReportConfig) error {
	if strings.TrimSpace(cfg.Title) == "" {
		return errors.New("report.title cannot be empty")
	}
	if cfg.MaxRows <= 0 {
		return errors.New("report.maxRows must be positive")
	}
	return nil
}
