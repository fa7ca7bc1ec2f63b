package audio

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/zurustar/evrun/pkg/fileutil"
)

// ErrSoundFontNotFound は SoundFont ファイルが見つからない場合のエラー
var ErrSoundFontNotFound = errors.New("SoundFont file not found")

// ReadSoundFontFS は FileSystem から SoundFont ファイルを読み込む
// fsys が nil の場合は os.ReadFile を使う
func ReadSoundFontFS(fsys fileutil.FileSystem, path string) ([]byte, error) {
	if fsys == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrSoundFontNotFound, path)
			}
			return nil, fmt.Errorf("failed to read SoundFont file: %w", err)
		}
		return data, nil
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSoundFontNotFound, path)
	}
	return data, nil
}

// LoadSoundFontFS は SoundFont ファイルを読み込んで解析する
func LoadSoundFontFS(fsys fileutil.FileSystem, path string) (*meltysynth.SoundFont, error) {
	data, err := ReadSoundFontFS(fsys, path)
	if err != nil {
		return nil, err
	}

	soundFont, err := meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SoundFont: %w", err)
	}
	return soundFont, nil
}
