package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zurustar/evrun/pkg/database"
	"github.com/zurustar/evrun/pkg/fileutil"
	"github.com/zurustar/evrun/pkg/logger"
)

// DefaultConfigName はプロジェクトディレクトリ内で探す設定ファイル名
const DefaultConfigName = "evrun.yaml"

// Config はコマンドライン引数、設定ファイル、環境変数から組み立てた設定を保持する
// 優先順位は フラグ > 環境変数 > 設定ファイル > デフォルト
type Config struct {
	ProjectPath   string        `yaml:"-"`            // プロジェクトのディレクトリ
	ConfigFile    string        `yaml:"-"`            // 読み込んだ設定ファイル（なければ空）
	MapID         int           `yaml:"map"`          // 開始マップ（0はSystem.jsonの設定）
	EventID       int           `yaml:"event"`        // 開始時に起動するマップイベント
	CommonEventID int           `yaml:"common_event"` // 開始時に起動するコモンイベント
	Frames        int           `yaml:"frames"`       // 実行するフレーム数（0は無制限）
	Timeout       time.Duration `yaml:"timeout"`      // タイムアウト時間（0は無制限）
	LogLevel      string        `yaml:"log_level"`    // ログレベル（debug, info, warn, error）
	LogFormat     string        `yaml:"log_format"`   // ログ形式（text, json）
	Headless      bool          `yaml:"headless"`     // ヘッドレスモード
	Encoding      string        `yaml:"encoding"`     // データファイルの文字コード
	SoundFont     string        `yaml:"soundfont"`    // MIDI 再生に使う SoundFont
	AutoAdvance   int           `yaml:"auto_advance"` // メッセージを自動で送るまでのフレーム数（0は手動）
	Watch         bool          `yaml:"watch"`        // データファイルの変更を監視して再読み込みする
	ShowHelp      bool          `yaml:"-"`            // ヘルプ表示フラグ
}

// defaults はデフォルト設定を返す
func defaults() Config {
	return Config{
		ProjectPath: ".",
		LogLevel:    "info",
		LogFormat:   "text",
		Encoding:    database.EncodingUTF8,
	}
}

// RunFunc は設定が確定した後に呼ばれる処理
type RunFunc func(ctx context.Context, cfg *Config) error

// flagValues はコマンドラインで指定された値
type flagValues struct {
	Config
	timeoutSec int
}

// NewCommand はルートコマンドを作成する
func NewCommand(run RunFunc) *cobra.Command {
	var fv flagValues

	cmd := &cobra.Command{
		Use:   "evrun [project-dir]",
		Short: "RPG Maker MV イベントコマンドインタプリタ",
		Long: `evrun - RPG Maker MV イベントコマンドインタプリタ

プロジェクトのデータファイル（data/*.json）を読み込み、マップイベントと
コモンイベントを1フレームずつ実行する。

設定ファイル:
  <project-dir>/evrun.yaml があれば読み込む（--config で変更可能）

Environment Variables:
  HEADLESS=1                  ヘッドレスモードを有効化
  TIMEOUT=<seconds>           タイムアウト時間（秒）
  LOG_LEVEL=<level>           ログレベル`,
		Example: `  evrun /path/to/project                  ウィンドウで実行
  evrun --headless --frames 600 ./game     600フレーム実行してメッセージを出力
  evrun --headless --event 3 ./game        マップイベント3を起動
  evrun --watch ./game                     データファイルの変更を反映`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, args, &fv)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&fv.MapID, "map", 0, "開始マップID（0はSystem.jsonの設定）")
	flags.IntVar(&fv.EventID, "event", 0, "開始時に起動するマップイベントID")
	flags.IntVar(&fv.CommonEventID, "common-event", 0, "開始時に起動するコモンイベントID")
	flags.IntVar(&fv.Frames, "frames", 0, "実行するフレーム数（0は無制限）")
	flags.IntVarP(&fv.timeoutSec, "timeout", "t", 0, "指定秒数後にプログラムを終了（0は無制限）")
	flags.StringVarP(&fv.LogLevel, "log-level", "l", "info", "ログレベル: debug, info, warn, error")
	flags.StringVar(&fv.LogFormat, "log-format", "text", "ログ形式: text, json")
	flags.BoolVar(&fv.Headless, "headless", false, "ヘッドレスモード（GUIなし）")
	flags.StringVar(&fv.Encoding, "encoding", database.EncodingUTF8, "データファイルの文字コード: utf-8, shift_jis")
	flags.StringVar(&fv.SoundFont, "soundfont", "", "MIDI 再生に使う SoundFont ファイル")
	flags.IntVar(&fv.AutoAdvance, "auto-advance", 0, "メッセージを自動で送るまでのフレーム数（0は手動）")
	flags.BoolVar(&fv.Watch, "watch", false, "データファイルの変更を監視して再読み込みする")
	flags.StringVar(&fv.ConfigFile, "config", "", "設定ファイルのパス（デフォルト: <project-dir>/evrun.yaml）")

	return cmd
}

// ParseArgs コマンドライン引数を解析してConfigを返す
// ヘルプが要求された場合は ShowHelp が true の Config を返す
func ParseArgs(args []string) (*Config, error) {
	return parse(args, io.Discard)
}

func parse(args []string, out io.Writer) (*Config, error) {
	var cfg *Config
	cmd := NewCommand(func(_ context.Context, c *Config) error {
		cfg = c
		return nil
	})
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)
	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	if cfg == nil {
		return &Config{ShowHelp: true}, nil
	}
	return cfg, nil
}

// Execute はルートコマンドを os.Args で実行する
func Execute(ctx context.Context, run RunFunc) error {
	return NewCommand(run).ExecuteContext(ctx)
}

// buildConfig はデフォルト、設定ファイル、環境変数、フラグの順に設定を重ねる
func buildConfig(cmd *cobra.Command, args []string, fv *flagValues) (*Config, error) {
	cfg := defaults()
	if len(args) > 0 {
		cfg.ProjectPath = args[0]
	}

	flags := cmd.Flags()
	if err := loadConfigFile(&cfg, fv.ConfigFile, flags.Changed("config")); err != nil {
		return nil, err
	}
	applyEnv(&cfg)

	if flags.Changed("map") {
		cfg.MapID = fv.MapID
	}
	if flags.Changed("event") {
		cfg.EventID = fv.EventID
	}
	if flags.Changed("common-event") {
		cfg.CommonEventID = fv.CommonEventID
	}
	if flags.Changed("frames") {
		cfg.Frames = fv.Frames
	}
	if flags.Changed("timeout") {
		if fv.timeoutSec < 0 {
			return nil, fmt.Errorf("timeout must be non-negative, got %d", fv.timeoutSec)
		}
		cfg.Timeout = time.Duration(fv.timeoutSec) * time.Second
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = fv.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = fv.LogFormat
	}
	if flags.Changed("headless") {
		cfg.Headless = fv.Headless
	}
	if flags.Changed("encoding") {
		cfg.Encoding = fv.Encoding
	}
	if flags.Changed("soundfont") {
		cfg.SoundFont = fv.SoundFont
	}
	if flags.Changed("auto-advance") {
		cfg.AutoAdvance = fv.AutoAdvance
	}
	if flags.Changed("watch") {
		cfg.Watch = fv.Watch
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFile は設定ファイルを cfg に読み込む
// 明示的に指定されたファイルが無い場合だけエラーにする
func loadConfigFile(cfg *Config, path string, explicit bool) error {
	if !explicit {
		found, err := fileutil.FindFileCaseInsensitive(cfg.ProjectPath, DefaultConfigName)
		if err != nil {
			return nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	project := cfg.ProjectPath
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.ProjectPath = project
	cfg.ConfigFile = path
	return nil
}

// applyEnv は環境変数の設定を cfg に反映する
func applyEnv(cfg *Config) {
	if v := os.Getenv("HEADLESS"); v != "" {
		cfg.Headless = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("TIMEOUT"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			cfg.Timeout = time.Duration(sec) * time.Second
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
}

// Validate は設定値を検証する
func (c *Config) Validate() error {
	var errs []error
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must be non-negative, got %v", c.Timeout))
	}
	if c.Frames < 0 {
		errs = append(errs, fmt.Errorf("frames must be non-negative, got %d", c.Frames))
	}
	if c.MapID < 0 || c.EventID < 0 || c.CommonEventID < 0 {
		errs = append(errs, errors.New("map, event and common event ids must be non-negative"))
	}
	if c.AutoAdvance < 0 {
		errs = append(errs, fmt.Errorf("auto-advance must be non-negative, got %d", c.AutoAdvance))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid log format: %s (must be text or json)", c.LogFormat))
	}
	if !database.ValidEncoding(c.Encoding) {
		errs = append(errs, fmt.Errorf("unsupported encoding: %s", c.Encoding))
	}
	return errors.Join(errs...)
}
