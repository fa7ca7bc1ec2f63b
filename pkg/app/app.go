package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zurustar/evrun/pkg/audio"
	"github.com/zurustar/evrun/pkg/cli"
	"github.com/zurustar/evrun/pkg/database"
	"github.com/zurustar/evrun/pkg/engine"
	"github.com/zurustar/evrun/pkg/fileutil"
	"github.com/zurustar/evrun/pkg/game"
	"github.com/zurustar/evrun/pkg/logger"
	"github.com/zurustar/evrun/pkg/scripting"
	"github.com/zurustar/evrun/pkg/window"
)

// IdleFrames はフレーム数の指定がないヘッドレス実行で、マップインタプリタが
// これだけ続けて何もしなければ終了するフレーム数
const IdleFrames = 60

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config *cli.Config
	log    *slog.Logger
	out    io.Writer // トランスクリプトの出力先
	logOut io.Writer // ログの出力先

	fsys   *fileutil.FS
	db     *database.Database
	world  *game.World
	engine *engine.Engine
	audio  *audio.Manager
}

// Option は Application の設定
type Option func(*Application)

// WithOutput はトランスクリプトの出力先を設定する
func WithOutput(w io.Writer) Option {
	return func(a *Application) { a.out = w }
}

// WithLogOutput はログの出力先を設定する
func WithLogOutput(w io.Writer) Option {
	return func(a *Application) { a.logOut = w }
}

// New Applicationを作成
func New(opts ...Option) *Application {
	a := &Application{out: os.Stdout, logOut: os.Stderr}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Main はコマンドラインを解析してアプリケーションを実行する
func (a *Application) Main(ctx context.Context, args []string) error {
	cmd := cli.NewCommand(a.Run)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// Run アプリケーションを実行
func (a *Application) Run(ctx context.Context, cfg *cli.Config) error {
	a.config = cfg

	// 1. ロガーの初期化
	if err := logger.InitLogger(cfg.LogLevel, cfg.LogFormat, a.logOut); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = logger.GetLogger()
	a.log.Info("Application started", "project", cfg.ProjectPath, "config", cfg.ConfigFile)

	// 2. データの読み込み
	if err := a.load(); err != nil {
		return err
	}

	// 3. ワールドとエンジンの構築
	eval, err := scripting.New(scripting.WithLogger(a.log))
	if err != nil {
		return fmt.Errorf("failed to create evaluator: %w", err)
	}
	defer eval.Close()

	if err := a.setup(eval); err != nil {
		return err
	}
	if a.audio != nil {
		defer a.audio.Close()
	}

	// 4. データファイルの監視
	if cfg.Watch {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		closer, err := a.watch(ctx)
		if err != nil {
			return err
		}
		defer closer.Close()
	}

	// 5. 実行
	if cfg.Headless {
		err = a.runHeadless(ctx)
	} else {
		err = a.runWindow()
	}
	if err != nil {
		return err
	}

	a.log.Info("Application terminated normally", "frames", a.engine.Frames())
	return nil
}

// load はプロジェクトのデータファイルを読み込む
func (a *Application) load() error {
	info, err := os.Stat(a.config.ProjectPath)
	if err != nil {
		return fmt.Errorf("failed to open project: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project path is not a directory: %s", a.config.ProjectPath)
	}

	a.fsys = fileutil.NewRealFS(a.config.ProjectPath)
	db, err := a.loadDatabase()
	if err != nil {
		return fmt.Errorf("failed to load project data: %w", err)
	}
	a.db = db
	return nil
}

func (a *Application) loadDatabase() (*database.Database, error) {
	return database.Load(a.fsys,
		database.WithEncoding(a.config.Encoding),
		database.WithLogger(a.log),
	)
}

// setup はワールド、オーディオ、エンジンを構築して開始イベントを予約する
func (a *Application) setup(eval game.Evaluator) error {
	cfg := a.config
	opts := []game.WorldOption{game.WithWorldLogger(a.log)}

	switch {
	case cfg.Headless:
		// ヘッドレスでは誰もメッセージを送らない
		opts = append(opts, game.WithAutoAdvance(max(cfg.AutoAdvance, 1)))
	case cfg.AutoAdvance > 0:
		opts = append(opts, game.WithAutoAdvance(cfg.AutoAdvance))
	}

	if !cfg.Headless {
		a.audio = audio.NewManager(a.fsys,
			audio.WithSoundFont(a.loadSoundFont()),
			audio.WithLogger(a.log),
		)
		opts = append(opts, game.WithAudio(a.audio))
	}

	a.world = game.NewWorld(a.db.Seed(cfg.MapID), opts...)

	e, err := engine.New(a.world, a.db, eval,
		engine.WithLogger(a.log),
		engine.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	a.engine = e

	if cfg.EventID > 0 && !e.StartEvent(cfg.EventID) {
		a.log.Warn("event has no active page", "event", cfg.EventID, "map", a.world.Map.MapID())
	}
	if cfg.CommonEventID > 0 && !e.StartCommonEvent(cfg.CommonEventID) {
		a.log.Warn("common event not found", "commonEvent", cfg.CommonEventID)
	}
	return nil
}

// runHeadless はウィンドウなしでエンジンを回し、最後にトランスクリプトを出力する
// --frames がなければマップインタプリタが IdleFrames フレーム続けて
// 何もしなくなった時点で終わる
func (a *Application) runHeadless(ctx context.Context) error {
	a.log.Info("Headless mode", "frames", a.config.Frames, "timeout", a.config.Timeout)

	err := a.loop(ctx)
	if werr := a.writeTranscript(); werr != nil && err == nil {
		err = werr
	}
	return err
}

func (a *Application) loop(ctx context.Context) error {
	idle := 0
	for {
		select {
		case <-ctx.Done():
			a.log.Info("Interrupted", "frames", a.engine.Frames())
			return nil
		default:
		}

		if err := a.engine.Update(); err != nil {
			if errors.Is(err, engine.ErrTerminated) {
				return nil
			}
			return fmt.Errorf("frame %d: %w", a.engine.Frames(), err)
		}

		if a.config.Frames > 0 {
			if a.engine.Frames() >= a.config.Frames {
				return nil
			}
			continue
		}
		if a.idle() {
			idle++
			if idle >= IdleFrames {
				a.log.Debug("map interpreter idle", "frames", a.engine.Frames())
				return nil
			}
		} else {
			idle = 0
		}
	}
}

// idle はマップインタプリタが何もしていないかを返す
// 並列イベントは見ない
func (a *Application) idle() bool {
	w := a.world
	return !a.engine.MapInterpreter().IsRunning() &&
		!w.Message.IsBusy() &&
		!w.Player.IsTransferring() &&
		w.Scene.Current() == game.SceneMap
}

// runWindow はウィンドウを開いてエンジンを回す
func (a *Application) runWindow() error {
	title := a.db.System.GameTitle
	if title == "" {
		title = "evrun"
	}
	opts := []window.Option{
		window.WithLogger(a.log),
		window.WithFrameLimit(a.config.Frames),
	}
	if a.audio != nil {
		opts = append(opts, window.WithUpdater(a.audio))
	}
	return window.Run(window.NewGame(a.engine, opts...), title)
}

// writeTranscript は表示されたメッセージを出力する
func (a *Application) writeTranscript() error {
	if err := WriteTranscript(a.out, a.world.Message.Transcript()); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	_, err := fmt.Fprintf(a.out, "-- %d frames, map %d\n", a.engine.Frames(), a.world.Map.MapID())
	return err
}

// WriteTranscript はメッセージのページを1ページずつ w に書き出す
// 顔グラフィックは "[名前]"、話者は "名前:" の行になる
// 選択肢は選ばれたものに "> " を付ける
func WriteTranscript(w io.Writer, pages []game.Page) error {
	for i, p := range pages {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if p.Face != "" {
			if _, err := fmt.Fprintf(w, "[%s]\n", p.Face); err != nil {
				return err
			}
		}
		if p.Speaker != "" {
			if _, err := fmt.Fprintf(w, "%s:\n", p.Speaker); err != nil {
				return err
			}
		}
		for _, line := range p.Lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		for j, c := range p.Choices {
			mark := "  "
			if j == p.Chosen {
				mark = "> "
			}
			if _, err := fmt.Fprintf(w, "%s%s\n", mark, c); err != nil {
				return err
			}
		}
	}
	return nil
}
