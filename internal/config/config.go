// Package config handles service configuration from YAML files, with
// compiled-in defaults covering the standard Bay Area organization list and
// the daily check schedule.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Organization is one watched organization: a display name, the page to
// fetch, and the lowercase substrings considered noteworthy when present in
// page text.
type Organization struct {
	Name          string   `yaml:"name"`
	Website       string   `yaml:"website"`
	TryoutPage    string   `yaml:"tryout_page,omitempty"`
	CheckPatterns []string `yaml:"check_patterns"`
}

// URL returns the page to fetch: the dedicated tryout page when configured,
// otherwise the organization's home page.
func (o Organization) URL() string {
	if o.TryoutPage != "" {
		return o.TryoutPage
	}
	return o.Website
}

// SchedulerConfig controls the periodic check job.
type SchedulerConfig struct {
	// Schedule is a cron expression. "0 9 * * *" = every day at 9:00 AM.
	Schedule string `yaml:"schedule"`
	Timezone string `yaml:"timezone"`
	// Enabled turns periodic triggering on. Defaults to true only when
	// APP_ENV=production, so development runs don't hit partner sites.
	Enabled *bool `yaml:"enabled"`
}

// IsEnabled resolves the Enabled flag, applying the deployment-mode default.
func (s SchedulerConfig) IsEnabled() bool {
	if s.Enabled != nil {
		return *s.Enabled
	}
	return os.Getenv("APP_ENV") == "production"
}

// ScraperConfig controls per-site fetching.
type ScraperConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// StorageConfig controls where check results are persisted.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// NotifyConfig controls change notification sinks.
type NotifyConfig struct {
	// WebhookURL, when set, receives a JSON POST of changed results after
	// each run that detected changes.
	WebhookURL string `yaml:"webhook_url,omitempty"`
}

// Config is the top-level service configuration.
type Config struct {
	Scheduler     SchedulerConfig `yaml:"scheduler"`
	Scraper       ScraperConfig   `yaml:"scraper"`
	Server        ServerConfig    `yaml:"server"`
	Storage       StorageConfig   `yaml:"storage"`
	Notify        NotifyConfig    `yaml:"notify"`
	Organizations []Organization  `yaml:"organizations"`
}

// Default returns the compiled-in configuration: the standard organization
// watch list and a daily 9:00 AM Pacific check.
func Default() *Config {
	cfg := &Config{
		Organizations: defaultOrganizations(),
	}
	cfg.applyDefaults()
	return cfg
}

// LoadFile reads a YAML configuration file, applies defaults for anything
// unset, and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scheduler.Schedule == "" {
		c.Scheduler.Schedule = "0 9 * * *"
	}
	if c.Scheduler.Timezone == "" {
		c.Scheduler.Timezone = "America/Los_Angeles"
	}
	if c.Scraper.Timeout <= 0 {
		c.Scraper.Timeout = 10 * time.Second
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = ".scraper-data"
	}
	if len(c.Organizations) == 0 {
		c.Organizations = defaultOrganizations()
	}
}

// Validate checks invariants the rest of the system relies on, most
// importantly that organization names are unique: the name is the join key
// for all historical comparisons.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Organizations))
	for _, org := range c.Organizations {
		if org.Name == "" {
			return fmt.Errorf("organization with URL %q has no name", org.URL())
		}
		if seen[org.Name] {
			return fmt.Errorf("duplicate organization name: %q", org.Name)
		}
		seen[org.Name] = true
		if org.URL() == "" {
			return fmt.Errorf("organization %q has no website or tryout page", org.Name)
		}
	}
	return nil
}

// defaultOrganizations is the standard watch list of Bay Area AAU basketball
// programs.
func defaultOrganizations() []Organization {
	return []Organization{
		{
			Name:          "Bay Area Wildcats Basketball",
			Website:       "https://bayareawildcats.org",
			CheckPatterns: []string{"tryout", "registration", "schedule"},
		},
		{
			Name:          "Team Arsenal AAU",
			Website:       "https://teamarsenalaau.com",
			TryoutPage:    "https://teamarsenalaau.com/tryouts",
			CheckPatterns: []string{"tryout", "14u", "15u", "16u", "17u"},
		},
		{
			Name:          "Bay City Basketball",
			Website:       "https://www.baycitybasketball.com",
			CheckPatterns: []string{"tryout", "registration", "warriors", "3ssb"},
		},
		{
			Name:          "Bay Area Mambas AAU",
			Website:       "https://bayareamambas.com",
			CheckPatterns: []string{"tryout", "14u", "registration"},
		},
		{
			Name:          "SFBA AAU",
			Website:       "https://www.sfbasportsperformance.com/sfbaaaubasketballsanfrancisco",
			CheckPatterns: []string{"tryout", "2026", "spring", "summer"},
		},
		{
			Name:          "LAKESHOW Bay Area AAU",
			Website:       "https://www.lakeshowhoops.com",
			TryoutPage:    "https://www.lakeshowhoops.com/2025-spring-tryouts",
			CheckPatterns: []string{"tryout", "spring", "2025", "high school"},
		},
		{
			Name:          "NorCal Rush Basketball",
			Website:       "https://www.norcalrushbasketball.com",
			TryoutPage:    "https://www.norcalrushbasketball.com/tryouts",
			CheckPatterns: []string{"tryout", "fall", "2025", "peninsula", "san francisco"},
		},
		{
			Name:          "Bay Area Lava",
			Website:       "https://www.bayarealava.com",
			CheckPatterns: []string{"tryout", "december", "high school"},
		},
	}
}
