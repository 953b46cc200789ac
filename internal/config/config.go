// Package config reads a project manifest, tarn.yaml, from the project
// root. Settings can be overridden from a .env file next to the manifest
// and from the process environment, in increasing priority.
package config

import (
	"bytes"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	ManifestFile = "tarn.yaml"
	EnvFile      = ".env"

	EnvLogLevel    = "TARN_LOG_LEVEL"
	EnvLogSections = "TARN_LOG_SECTIONS"
)

// Manifest describes a project
type Manifest struct {
	Packages []Package `yaml:"packages"`
	// Prelude replaces the default prelude when not empty
	Prelude []string `yaml:"prelude"`
	Log     Log      `yaml:"log"`
}

// Package is a named directory of *.ast.yaml module files
type Package struct {
	Name string `yaml:"name"`
	Root string `yaml:"root"`
}

type Log struct {
	Level    string   `yaml:"level"`
	Sections []string `yaml:"sections"`
}

// Default is used when a project has no manifest: a single package called
// app rooted at the project directory
func Default() *Manifest {
	return &Manifest{
		Packages: []Package{{Name: "app", Root: "."}},
		Log:      Log{Level: "error"},
	}
}

// Load reads the manifest and .env overrides from fsys. A missing manifest
// yields Default.
func Load(fsys fs.FS) (*Manifest, error) {
	m := Default()
	data, err := fs.ReadFile(fsys, ManifestFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, errors.Wrapf(err, "could not read %s", ManifestFile)
	default:
		m = &Manifest{}
		if err := yaml.Unmarshal(data, m); err != nil {
			return nil, errors.Wrapf(err, "could not parse %s", ManifestFile)
		}
	}

	env, err := readEnv(fsys)
	if err != nil {
		return nil, err
	}
	m.applyEnv(env)

	if err := m.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", ManifestFile)
	}
	return m, nil
}

func readEnv(fsys fs.FS) (map[string]string, error) {
	data, err := fs.ReadFile(fsys, EnvFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", EnvFile)
	}
	env, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse %s", EnvFile)
	}
	return env, nil
}

// applyEnv lets the process environment win over the .env file
func (m *Manifest) applyEnv(dotenv map[string]string) {
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if v, ok := lookup(EnvLogLevel); ok {
		m.Log.Level = v
	}
	if v, ok := lookup(EnvLogSections); ok {
		m.Log.Sections = nil
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				m.Log.Sections = append(m.Log.Sections, s)
			}
		}
	}
}

func (m *Manifest) Validate() error {
	if len(m.Packages) == 0 {
		return errors.New("no packages declared")
	}
	seen := make(map[string]bool, len(m.Packages))
	for i, p := range m.Packages {
		switch {
		case p.Name == "":
			return errors.Errorf("package %d has no name", i)
		case strings.Contains(p.Name, "::"):
			return errors.Errorf("package name %q must be a single identifier", p.Name)
		case p.Name == "std":
			return errors.New("package name std is reserved")
		case seen[p.Name]:
			return errors.Errorf("package %q declared twice", p.Name)
		}
		seen[p.Name] = true
	}
	if _, err := m.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level, which defaults to error
func (m *Manifest) LogLevel() (slog.Level, error) {
	if m.Log.Level == "" {
		return slog.LevelError, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(m.Log.Level)); err != nil {
		return l, errors.Wrapf(err, "invalid log level %q", m.Log.Level)
	}
	return l, nil
}
