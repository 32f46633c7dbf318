package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/avd")
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 20.0, cfg.DivergenceThreshold)
	assert.Equal(t, 3, cfg.ConsensusReminderDays)
	assert.Equal(t, "0 2 * * *", cfg.DiscrepancyCron)
	assert.Equal(t, DefaultPerformanceBands, cfg.PerformanceBands)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/avd")
	t.Setenv("CONSENSUS_DIVERGENCE_THRESHOLD", "15.5")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("RATING_SCALE_MAX", "100")
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg := Load()
	assert.Equal(t, 15.5, cfg.DivergenceThreshold)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 100.0, cfg.RatingScaleMax)
	assert.Equal(t, 587, cfg.SMTPPort)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		t.Setenv("DATABASE_URL", "postgres://localhost/avd")
		return Load()
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database", func(c *Config) { c.DatabaseURL = "" }},
		{"production without secret", func(c *Config) { c.Environment = "production"; c.JWTSecret = "" }},
		{"inverted scale", func(c *Config) { c.RatingScaleMin = 5; c.RatingScaleMax = 1 }},
		{"threshold above 100", func(c *Config) { c.DivergenceThreshold = 120 }},
		{"alert below acceptable", func(c *Config) { c.DiscrepancyAlertPct = 5 }},
		{"unknown eligibility rule", func(c *Config) { c.BonusEligibilityRule = "some" }},
		{"email without host", func(c *Config) { c.EmailEnabled = true; c.SMTPHost = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
