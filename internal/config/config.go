package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "NOTICE_WATCHER_CONFIG"
	webhookURLEnv   = "NOTICE_WEBHOOK_URL"
	statePathEnv    = "NOTICE_STATE_PATH"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	State     StateConfig     `yaml:"state"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Backfill  BackfillConfig  `yaml:"backfill"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Sites     []SiteConfig    `yaml:"sites"`
}

// LoggingConfig selects handler verbosity and format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StateConfig locates the persisted seen-set document.
type StateConfig struct {
	Path string `yaml:"path"`
}

// WebhookConfig wires the delivery sink. The URL is a secret and is
// only ever read from the environment, never from the config file and
// never written to logs.
type WebhookConfig struct {
	URL           string   `yaml:"-"`
	Footer        string   `yaml:"footer"`
	MaxAttempts   int      `yaml:"maxAttempts"`
	FallbackDelay Duration `yaml:"fallbackDelay"`
	Spacing       Duration `yaml:"spacing"`
	Timeout       Duration `yaml:"timeout"`
}

// FetchConfig tunes listing-page retrieval.
type FetchConfig struct {
	Timeout   Duration `yaml:"timeout"`
	UserAgent string   `yaml:"userAgent"`
}

// BackfillConfig bounds what a single run may deliver per section.
// CapPerSection <= 0 removes the cap; RecencyDays <= 0 disables the
// recency window.
type BackfillConfig struct {
	CapPerSection int `yaml:"capPerSection"`
	RecencyDays   int `yaml:"recencyDays"`
}

// SchedulerConfig defines the optional watch mode. An empty cron
// expression means one run per invocation.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// SiteConfig describes a single monitored site with its scanner strategy.
type SiteConfig struct {
	Name      string          `yaml:"name"`
	Scanner   string          `yaml:"scanner"`
	Origin    string          `yaml:"origin"`
	ViewPaths []string        `yaml:"viewPaths"`
	Sections  []SectionConfig `yaml:"sections"`
}

// SectionConfig holds one listing page to poll.
type SectionConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

// Validate enforces startup preconditions. A missing webhook endpoint
// aborts the process before any fetch or state write happens.
func (c Config) Validate() error {
	if c.Webhook.URL == "" {
		return fmt.Errorf("missing %s environment variable", webhookURLEnv)
	}
	if len(c.Sites) == 0 {
		return fmt.Errorf("no sites configured")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(webhookURLEnv); v != "" {
		c.Webhook.URL = v
	}

	if v := os.Getenv(statePathEnv); v != "" {
		c.State.Path = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.State.Path != "" {
		base.State.Path = override.State.Path
	}

	if override.Webhook.Footer != "" {
		base.Webhook.Footer = override.Webhook.Footer
	}
	if override.Webhook.MaxAttempts != 0 {
		base.Webhook.MaxAttempts = override.Webhook.MaxAttempts
	}
	if override.Webhook.FallbackDelay != 0 {
		base.Webhook.FallbackDelay = override.Webhook.FallbackDelay
	}
	if override.Webhook.Spacing != 0 {
		base.Webhook.Spacing = override.Webhook.Spacing
	}
	if override.Webhook.Timeout != 0 {
		base.Webhook.Timeout = override.Webhook.Timeout
	}

	if override.Fetch.Timeout != 0 {
		base.Fetch.Timeout = override.Fetch.Timeout
	}
	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}

	if override.Backfill.CapPerSection != 0 {
		base.Backfill.CapPerSection = override.Backfill.CapPerSection
	}
	if override.Backfill.RecencyDays != 0 {
		base.Backfill.RecencyDays = override.Backfill.RecencyDays
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		State:   StateConfig{Path: ".state/seen.json"},
		Webhook: WebhookConfig{
			Footer:        "#maple-web-notices • MapleSEA Web Monitor",
			MaxAttempts:   5,
			FallbackDelay: Duration(2 * time.Second),
			Spacing:       Duration(500 * time.Millisecond),
			Timeout:       Duration(30 * time.Second),
		},
		Fetch: FetchConfig{
			Timeout:   Duration(30 * time.Second),
			UserAgent: "NoticeWatcher/1.0",
		},
		Backfill:  BackfillConfig{CapPerSection: 15, RecencyDays: 0},
		Scheduler: SchedulerConfig{CronExpression: "", Timezone: defaultTimezone, location: tz},
		Sites: []SiteConfig{
			{
				Name:    "maplesea",
				Scanner: "listing",
				Origin:  "https://www.maplesea.com",
				ViewPaths: []string{
					"/announcements/view/",
					"/news/view/",
					"/events/view/",
					"/notices/view/",
					"/updates/view/",
					"/newnameauction/view/",
				},
				Sections: []SectionConfig{
					{Name: "Updates", URL: "https://www.maplesea.com/updates"},
					{Name: "News", URL: "https://www.maplesea.com/news"},
					{Name: "Notices", URL: "https://www.maplesea.com/notices"},
					{Name: "Events", URL: "https://www.maplesea.com/events"},
					{Name: "Announcements", URL: "https://www.maplesea.com/announcements"},
				},
			},
		},
	}
}
