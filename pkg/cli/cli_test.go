package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv は環境変数の影響を受けないようにする
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HEADLESS", "")
	t.Setenv("TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "")
}

// writeConfig は dir に設定ファイルを書き込む
func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseArgs_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := ParseArgs([]string{dir})
	require.NoError(t, err)

	want := defaults()
	want.ProjectPath = dir
	assert.Equal(t, &want, cfg)
}

func TestParseArgs_ValidArgs(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name:  "タイムアウト指定",
			args:  []string{"--timeout", "10"},
			check: func(t *testing.T, cfg *Config) { assert.Equal(t, 10*time.Second, cfg.Timeout) },
		},
		{
			name:  "タイムアウト指定（短縮形）",
			args:  []string{"-t", "5"},
			check: func(t *testing.T, cfg *Config) { assert.Equal(t, 5*time.Second, cfg.Timeout) },
		},
		{
			name:  "ログレベル指定（短縮形）",
			args:  []string{"-l", "ERROR"},
			check: func(t *testing.T, cfg *Config) { assert.Equal(t, "error", cfg.LogLevel) },
		},
		{
			name: "イベント指定",
			args: []string{"--map", "3", "--event", "7", "--common-event", "2"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3, cfg.MapID)
				assert.Equal(t, 7, cfg.EventID)
				assert.Equal(t, 2, cfg.CommonEventID)
			},
		},
		{
			name: "ヘッドレス実行",
			args: []string{"--headless", "--frames", "600", "--auto-advance", "5", "--log-format", "json"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Headless)
				assert.Equal(t, 600, cfg.Frames)
				assert.Equal(t, 5, cfg.AutoAdvance)
				assert.Equal(t, "json", cfg.LogFormat)
			},
		},
		{
			name: "データとオーディオ",
			args: []string{"--encoding", "shift_jis", "--soundfont", "GM.sf2", "--watch"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "shift_jis", cfg.Encoding)
				assert.Equal(t, "GM.sf2", cfg.SoundFont)
				assert.True(t, cfg.Watch)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseArgs(append(tt.args, dir))
			require.NoError(t, err)
			assert.Equal(t, dir, cfg.ProjectPath)
			tt.check(t, cfg)
		})
	}
}

func TestParseArgs_InvalidArgs(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"負のタイムアウト", []string{"--timeout", "-5"}},
		{"負のフレーム数", []string{"--frames", "-1"}},
		{"負のイベントID", []string{"--event", "-2"}},
		{"負の自動送り", []string{"--auto-advance", "-1"}},
		{"無効なログレベル", []string{"--log-level", "verbose"}},
		{"無効なログ形式", []string{"--log-format", "xml"}},
		{"無効な文字コード", []string{"--encoding", "latin1"}},
		{"数値でないタイムアウト", []string{"--timeout", "abc"}},
		{"未知のフラグ", []string{"--unknown"}},
		{"位置引数が多すぎる", []string{dir, dir}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if len(args) == 0 || args[len(args)-1] != dir {
				args = append(args, dir)
			}
			_, err := ParseArgs(args)
			assert.Error(t, err)
		})
	}
}

func TestParseArgs_Help(t *testing.T) {
	clearEnv(t)

	cfg, err := ParseArgs([]string{"--help"})
	require.NoError(t, err)
	assert.True(t, cfg.ShowHelp)
}

func TestConfigFile_Default(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, dir, DefaultConfigName, `
map: 4
frames: 120
timeout: 30s
log_level: debug
headless: true
auto_advance: 2
`)

	cfg, err := ParseArgs([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, dir, cfg.ProjectPath)
	assert.Equal(t, 4, cfg.MapID)
	assert.Equal(t, 120, cfg.Frames)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 2, cfg.AutoAdvance)
	// ファイルにない項目はデフォルトのまま
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestConfigFile_CaseInsensitiveName(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, "EVRUN.YAML", "frames: 9\n")

	cfg, err := ParseArgs([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Frames)
}

func TestConfigFile_FlagsWin(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, DefaultConfigName, "frames: 120\nheadless: true\nlog_level: warn\n")

	cfg, err := ParseArgs([]string{"--frames", "10", "--headless=false", dir})
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Frames)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestConfigFile_Explicit(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	other := writeConfig(t, t.TempDir(), "custom.yaml", "event: 5\n")
	writeConfig(t, dir, DefaultConfigName, "event: 1\n")

	cfg, err := ParseArgs([]string{"--config", other, dir})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.EventID)
	assert.Equal(t, other, cfg.ConfigFile)
}

func TestConfigFile_Errors(t *testing.T) {
	clearEnv(t)

	t.Run("明示したファイルがない", func(t *testing.T) {
		_, err := ParseArgs([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), t.TempDir()})
		assert.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("壊れたYAML", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, DefaultConfigName, "frames: [1, 2\n")
		_, err := ParseArgs([]string{dir})
		assert.ErrorContains(t, err, "failed to parse config file")
	})

	t.Run("ファイル内の無効な値", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, DefaultConfigName, "log_format: xml\n")
		_, err := ParseArgs([]string{dir})
		assert.ErrorContains(t, err, "invalid log format")
	})
}

func TestEnvironmentVariables(t *testing.T) {
	t.Run("環境変数が設定ファイルより優先", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		writeConfig(t, dir, DefaultConfigName, "log_level: warn\nheadless: false\n")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("HEADLESS", "true")
		t.Setenv("TIMEOUT", "15")

		cfg, err := ParseArgs([]string{dir})
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.True(t, cfg.Headless)
		assert.Equal(t, 15*time.Second, cfg.Timeout)
	})

	t.Run("フラグが環境変数より優先", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("TIMEOUT", "15")

		cfg, err := ParseArgs([]string{"-l", "error", "-t", "3", t.TempDir()})
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.LogLevel)
		assert.Equal(t, 3*time.Second, cfg.Timeout)
	})

	t.Run("無効なTIMEOUTは無視", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TIMEOUT", "-4")

		cfg, err := ParseArgs([]string{t.TempDir()})
		require.NoError(t, err)
		assert.Zero(t, cfg.Timeout)
	})

	t.Run("HEADLESS=1", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HEADLESS", "1")

		cfg, err := ParseArgs([]string{t.TempDir()})
		require.NoError(t, err)
		assert.True(t, cfg.Headless)
	})
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	require.NoError(t, cfg.Validate())

	cfg.Frames = -1
	cfg.LogLevel = "loud"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "frames must be non-negative")
	assert.ErrorContains(t, err, "invalid log level")
}
