package config

import (
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingManifestUsesDefault(t *testing.T) {
	m, err := Load(fstest.MapFS{})
	require.NoError(t, err)
	assert.Equal(t, Default(), m)
}

func TestLoadManifest(t *testing.T) {
	m, err := Load(fstest.MapFS{
		ManifestFile: {Data: []byte(`
packages:
  - name: app
    root: src
  - name: lib
    root: vendor/lib
prelude: [std::io::println]
log:
  level: debug
  sections: [check, resolve]
`)},
	})
	require.NoError(t, err)

	assert.Equal(t, []Package{{Name: "app", Root: "src"}, {Name: "lib", Root: "vendor/lib"}}, m.Packages)
	assert.Equal(t, []string{"std::io::println"}, m.Prelude)
	assert.Equal(t, []string{"check", "resolve"}, m.Log.Sections)
	l, err := m.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
}

func TestDotEnvOverridesManifest(t *testing.T) {
	m, err := Load(fstest.MapFS{
		ManifestFile: {Data: []byte("packages: [{name: app, root: .}]\nlog: {level: error}\n")},
		EnvFile:      {Data: []byte("TARN_LOG_LEVEL=info\nTARN_LOG_SECTIONS=glance, upcast\n")},
	})
	require.NoError(t, err)
	assert.Equal(t, "info", m.Log.Level)
	assert.Equal(t, []string{"glance", "upcast"}, m.Log.Sections)
}

func TestEnvironmentOverridesDotEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	m, err := Load(fstest.MapFS{
		EnvFile: {Data: []byte("TARN_LOG_LEVEL=info\n")},
	})
	require.NoError(t, err)
	l, err := m.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)
}

func TestInvalidManifests(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     string
	}{
		{"bad yaml", "packages: [", "could not parse"},
		{"no packages", "packages: []", "no packages declared"},
		{"unnamed", "packages: [{root: .}]", "has no name"},
		{"qualified", "packages: [{name: a::b}]", "single identifier"},
		{"std", "packages: [{name: std}]", "reserved"},
		{"duplicate", "packages: [{name: a}, {name: a}]", "declared twice"},
		{"level", "packages: [{name: a}]\nlog: {level: loud}", "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(fstest.MapFS{ManifestFile: {Data: []byte(tt.manifest)}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
