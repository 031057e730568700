package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.Host)
	assert.True(t, cfg.Frontend.Enabled)
	assert.Equal(t, "primary", cfg.Google.CalendarId)
	assert.Equal(t, "Europe/Madrid", cfg.Google.Timezone)
	assert.Equal(t, 30, cfg.Sync.WindowDays)
	assert.Equal(t, 10, cfg.Sync.IntervalMinutes)
	assert.Equal(t, "./tressly.db", cfg.Database.Path)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRESSLY_GOOGLE_CALENDARID", "salon@group.calendar.google.com")
	t.Setenv("TRESSLY_SYNC_WINDOWDAYS", "7")

	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)

	assert.Equal(t, "salon@group.calendar.google.com", cfg.Google.CalendarId)
	assert.Equal(t, 7, cfg.Sync.WindowDays)
}
