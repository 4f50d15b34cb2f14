package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Käsewagen Nord")
	cfg.Remote.BaseURL = "https://ledger.example.com"

	path := filepath.Join(t.TempDir(), "curdbook.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Business.Name, got.Business.Name)
	assert.Equal(t, cfg.Remote.BaseURL, got.Remote.BaseURL)
	assert.Equal(t, cfg.Remote.TimeoutSeconds, got.Remote.TimeoutSeconds)
	assert.Equal(t, cfg.Defaults.Currency, got.Defaults.Currency)
	assert.InDelta(t, cfg.Defaults.OverheadFraction, got.Defaults.OverheadFraction, 0.001)
	assert.Equal(t, cfg.Defaults.ProjectionMonths, got.Defaults.ProjectionMonths)
}

func TestDefaults(t *testing.T) {
	cfg := Default("My Stand")

	assert.Equal(t, "My Stand", cfg.Business.Name)
	assert.Equal(t, "EUR", cfg.Defaults.Currency)
	assert.InDelta(t, 0.30, cfg.Defaults.OverheadFraction, 0.001)
	assert.Equal(t, 6, cfg.Defaults.ProjectionMonths)
	assert.Equal(t, 15, cfg.Remote.TimeoutSeconds)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
