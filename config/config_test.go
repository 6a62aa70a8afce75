package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFS reports a fixed set of paths as present and records LoadEnv calls.
type fakeFS struct {
	present map[string]bool
	loaded  []string
	loadErr error
}

func (f *fakeFS) Exists(path string) bool { return f.present[path] }

func (f *fakeFS) LoadEnv(path string) error {
	f.loaded = append(f.loaded, path)
	return f.loadErr
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_DefaultsWithoutFiles(t *testing.T) {
	cfg, err := Load("svc", WithFileSystem(&fakeFS{}))
	require.NoError(t, err)

	assert.False(t, cfg.DI.Autowire)
	assert.Empty(t, cfg.DI.Manifest)
	assert.Empty(t, cfg.DI.Namespaces)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Log.Timestamp)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
di:
  autowire: true
  manifest: manifest.yaml
  namespaces:
    - example.com/app/services
    - example.com/app/store
log:
  level: debug
  format: json
`)

	cfg, err := Load("svc", WithConfigFile(path))
	require.NoError(t, err)

	assert.True(t, cfg.DI.Autowire)
	assert.Equal(t, "manifest.yaml", cfg.DI.Manifest)
	assert.Equal(t, []string{"example.com/app/services", "example.com/app/store"}, cfg.DI.Namespaces)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "di:\n  autowire: false\nlog:\n  level: info\n")

	t.Setenv("DI_AUTOWIRE", "true")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("svc", WithConfigFile(path))
	require.NoError(t, err)

	assert.True(t, cfg.DI.Autowire)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "DI_MANIFEST=from-dotenv.yaml\n")
	t.Cleanup(func() { _ = os.Unsetenv("DI_MANIFEST") })

	cfg, err := Load("svc", WithEnvFile(envPath), WithFileSystem(&envOnlyFS{path: envPath}))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.yaml", cfg.DI.Manifest)
}

// envOnlyFS exposes only the given env file and delegates loading to godotenv.
type envOnlyFS struct{ path string }

func (f *envOnlyFS) Exists(path string) bool   { return path == f.path }
func (f *envOnlyFS) LoadEnv(path string) error { return RealFileSystem{}.LoadEnv(path) }

func TestLoad_Errors(t *testing.T) {
	t.Run("missing explicit config file", func(t *testing.T) {
		_, err := Load("svc", WithConfigFile("/does/not/exist.yml"), WithFileSystem(&fakeFS{}))
		require.ErrorContains(t, err, "not found")
	})

	t.Run("env file load error", func(t *testing.T) {
		fs := &fakeFS{present: map[string]bool{".env": true}, loadErr: errors.New("denied")}
		_, err := Load("svc", WithFileSystem(fs))
		require.ErrorContains(t, err, "denied")
		assert.Equal(t, []string{".env"}, fs.loaded)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "config.yml", "di: [unclosed")
		_, err := Load("svc", WithConfigFile(path))
		require.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("invalid log level", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "config.yml", "log:\n  level: chatty\n")
		_, err := Load("svc", WithConfigFile(path))
		require.ErrorContains(t, err, "logging.level")
	})
}

func TestLoad_DiscoversServiceConfig(t *testing.T) {
	fs := &fakeFS{present: map[string]bool{"./cmd/svc/config.yml": true}}

	// The discovered path is passed to viper, which reads the real file system;
	// a missing file there surfaces as a read error naming the path.
	_, err := Load("svc", WithFileSystem(fs))
	require.ErrorContains(t, err, "./cmd/svc/config.yml")
}

func TestValidate_EmptyNamespace(t *testing.T) {
	t.Parallel()

	cfg := Config{DI: DIConfig{Namespaces: []string{"ok", ""}}}
	cfg.ApplyDefaults()
	require.ErrorContains(t, cfg.Validate(), "di.namespaces[1]")
}
