package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zurustar/evrun/pkg/database"
)

// ReloadDelay は最後の変更からデータを読み直すまでの待ち時間
// エディタの保存で続けて届くイベントをまとめる
const ReloadDelay = 200 * time.Millisecond

// watch はデータディレクトリを監視し、JSON ファイルが変わるとデータを読み直して
// エンジンに渡す。読み込みに失敗した場合は今のデータのまま続ける
func (a *Application) watch(ctx context.Context) (io.Closer, error) {
	dir, ok := a.fsys.OSPath(database.DataDir)
	if !ok {
		dir = a.config.ProjectPath
	}

	return watchDir(ctx, dir, a.log, func() {
		db, err := a.loadDatabase()
		if err != nil {
			a.log.Warn("reload failed, keeping current data", "error", err)
			return
		}
		a.engine.Reload(db)
	})
}

// watchDir は dir 内の JSON ファイルの変更を監視し、変更が落ち着くたびに onChange を呼ぶ
// 返した io.Closer を閉じるか ctx が終わると監視をやめる
func watchDir(ctx context.Context, dir string, log *slog.Logger, onChange func()) (io.Closer, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Info("watching data files", "dir", dir)

	go func() {
		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op == fsnotify.Chmod || !strings.EqualFold(filepath.Ext(ev.Name), ".json") {
					continue
				}
				log.Debug("data file changed", "file", ev.Name, "op", ev.Op.String())
				pending = time.After(ReloadDelay)
			case <-pending:
				pending = nil
				onChange()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("watch error", "error", err)
			}
		}
	}()
	return w, nil
}
