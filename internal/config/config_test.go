package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) Env {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func load(t *testing.T, args []string, env map[string]string) (Config, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	return Load(fs, args, envMap(env))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DefaultRequestTimeout, cfg.Timeout())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tehran", loc.String())
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "todo.toml", `
listen_addr = "0.0.0.0:9000"
db_path = "/from/file.db"
api_url = "http://file:9000"
request_timeout = "3s"
log_level = "warn"
`)
	env := map[string]string{
		"TODO_DB_PATH":   "/from/env.db",
		"TODO_API_URL":   "http://env:9000",
		"TODO_LOG_LEVEL": "error",
	}

	cfg, err := load(t, []string{"--config", path, "--api-url", "http://flag:9000"}, env)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr, "file over default")
	assert.Equal(t, "/from/env.db", cfg.DBPath, "env over file")
	assert.Equal(t, "http://flag:9000", cfg.APIURL, "flag over env")
	assert.Equal(t, 3*time.Second, cfg.Timeout())
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	cfg, err := load(t, []string{"--log-format", "json"}, map[string]string{"TODO_LISTEN_ADDR": ":7000"})
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_JSONWithComments(t *testing.T) {
	path := writeFile(t, "todo.jsonc", `{
	// local server
	"listen_addr": ":8080",
	"request_timeout": "250ms",
	"timezone": "UTC", // trailing comma is fine
}`)

	cfg, err := load(t, nil, map[string]string{"TODO_CONFIG": path})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout())
	assert.Equal(t, "UTC", cfg.Timezone)
}

func TestLoad_UserConfigDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "todo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "todo", "config.toml"), []byte(`timezone = "UTC"`), 0o644))
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Timezone)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
		env  map[string]string
	}{
		{"missing explicit file", func(t *testing.T) []string {
			return []string{"--config", filepath.Join(t.TempDir(), "nope.toml")}
		}, nil},
		{"bad toml", func(t *testing.T) []string {
			return []string{"--config", writeFile(t, "bad.toml", "listen_addr = ")}
		}, nil},
		{"bad extension", func(t *testing.T) []string {
			return []string{"--config", writeFile(t, "todo.yaml", "a: b")}
		}, nil},
		{"bad duration", func(t *testing.T) []string {
			return []string{"--config", writeFile(t, "todo.json", `{"request_timeout": "soon"}`)}
		}, nil},
		{"bad log level", nil, map[string]string{"TODO_LOG_LEVEL": "loud"}},
		{"bad timezone", nil, map[string]string{"TODO_TIMEZONE": "Mars/Olympus"}},
		{"zero timeout", func(*testing.T) []string { return []string{"--timeout", "0s"} }, nil},
		{"unknown flag", func(*testing.T) []string { return []string{"--nope"} }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var args []string
			if tt.args != nil {
				args = tt.args(t)
			}
			_, err := load(t, args, tt.env)
			require.Error(t, err)
		})
	}
}

func TestState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	s, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, State{}, s)

	want := State{LastListID: "list-1", LastView: "tasks"}
	require.NoError(t, SaveState(path, want))

	got, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadState(path)
	require.Error(t, err)
}

func TestDefaultStatePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	path, err := DefaultStatePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "todo", "state.json"), path)
}
