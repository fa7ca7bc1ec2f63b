// Package fileutil はプロジェクトのファイルを大文字小文字を区別せずに解決する。
// 実ファイルシステムと埋め込みファイルシステムを同じように扱う。
package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// FileSystem はプロジェクトファイルへの読み取り専用アクセス
type FileSystem interface {
	// ReadFile はファイルの内容を読み込む（大文字小文字を無視）
	ReadFile(name string) ([]byte, error)
	// Resolve は大文字小文字を無視してファイルを探し、実際の相対パスを返す
	Resolve(name string) (string, error)
	// List はディレクトリ内のファイル名を名前順に返す
	List(dir string) ([]string, error)
	// BasePath はベースパスを返す
	BasePath() string
	// IsEmbedded は埋め込みファイルシステムかどうかを返す
	IsEmbedded() bool
}

// FS は fs.FS の上に大文字小文字を無視したパス解決を載せた FileSystem
type FS struct {
	fsys     fs.FS
	basePath string
	embedded bool
}

// NewRealFS は実ファイルシステム用のFileSystemを作成する
func NewRealFS(basePath string) *FS {
	if basePath == "" {
		basePath = "."
	}
	return &FS{fsys: os.DirFS(basePath), basePath: basePath}
}

// NewEmbedFS は埋め込みファイルシステム用のFileSystemを作成する
// basePath が空または "." の場合はルートをそのまま使う
func NewEmbedFS(fsys fs.FS, basePath string) (*FS, error) {
	basePath = strings.Trim(filepath.ToSlash(basePath), "/")
	if basePath != "" && basePath != "." {
		sub, err := fs.Sub(fsys, basePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded directory %s: %w", basePath, err)
		}
		fsys = sub
	}
	return &FS{fsys: fsys, basePath: basePath, embedded: true}, nil
}

func (f *FS) BasePath() string { return f.basePath }
func (f *FS) IsEmbedded() bool { return f.embedded }

// Resolve は各パス要素を大文字小文字を無視して照合する
func (f *FS) Resolve(name string) (string, error) {
	clean := cleanPath(name)
	if clean == "." {
		return clean, nil
	}
	// まず直接アクセスを試みる
	if _, err := fs.Stat(f.fsys, clean); err == nil {
		return clean, nil
	}

	dir := "."
	for _, part := range strings.Split(clean, "/") {
		actual, err := FindFileCaseInsensitiveFS(f.fsys, dir, part)
		if err != nil {
			return "", err
		}
		dir = actual
	}
	return dir, nil
}

func (f *FS) ReadFile(name string) ([]byte, error) {
	actual, err := f.Resolve(name)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(f.fsys, actual)
}

func (f *FS) List(dir string) ([]string, error) {
	actual, err := f.Resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(f.fsys, actual)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// OSPath は実ファイルシステム上のパスを返す。埋め込みの場合は false
func (f *FS) OSPath(name string) (string, bool) {
	if f.embedded {
		return "", false
	}
	actual, err := f.Resolve(name)
	if err != nil {
		return "", false
	}
	return filepath.Join(f.basePath, filepath.FromSlash(actual)), true
}

// cleanPath は先頭の "/" や "\" を除去し、区切りを "/" に揃える
func cleanPath(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "."
	}
	return path.Clean(name)
}

// FindFileCaseInsensitive は dir 内で filename に一致するエントリを大文字小文字を無視して探す
//
// 使用例:
//
//	path, err := FindFileCaseInsensitive("/path/to/game", "Data")
//	// "data", "DATA", "Data" のいずれにも一致する
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if strings.EqualFold(entry.Name(), filename) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("file not found: %s (searched in %s)", filename, dir)
}

// FindFileCaseInsensitiveFS は fs.FS 版の FindFileCaseInsensitive
// 返すパスは "/" 区切り
func FindFileCaseInsensitiveFS(fsys fs.FS, dir, filename string) (string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if strings.EqualFold(entry.Name(), filename) {
			return path.Join(dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("file not found: %s (searched in %s)", filename, dir)
}
