// Package audio は Ebitengine のオーディオで BGM・BGS・ME・SE を再生する。
// Manager は game.Audio を実装し、プロジェクトの audio ディレクトリから
// Ogg Vorbis・WAV・MIDI ファイルを読み込む。MIDI は go-meltysynth で合成する。
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/zurustar/evrun/pkg/fileutil"
	"github.com/zurustar/evrun/pkg/logger"
	"github.com/zurustar/evrun/pkg/opcode"
)

// SampleRate は再生とMIDI合成のサンプルレート
const SampleRate = 44100

// FramesPerSecond はフェード時間の換算に使うフレームレート
const FramesPerSecond = 60

var (
	// ErrAudioFileNotFound はオーディオファイルが見つからない場合のエラー
	ErrAudioFileNotFound = errors.New("audio file not found")

	// ErrInvalidFormat はオーディオファイルの形式が不正な場合のエラー
	ErrInvalidFormat = errors.New("invalid audio file format")
)

// extensions はファイル名に付けて探す拡張子（優先順）
var extensions = []string{".ogg", ".wav", ".mid", ".midi"}

// channel は BGM・BGS・ME の再生中トラック
type channel struct {
	player   *audio.Player
	stop     func()
	file     opcode.AudioFile
	duration time.Duration

	fadeTotal int
	fadeRest  int
}

// finished は再生が終わったかどうかを返す
// MIDI はストリームが終わらないため長さで判定する
func (c *channel) finished() bool {
	if c.duration > 0 {
		return c.player.Position() >= c.duration
	}
	return !c.player.IsPlaying()
}

func (c *channel) close() {
	if c.stop != nil {
		c.stop()
	}
	c.player.Close()
}

// Manager は game.Audio の Ebitengine 実装
type Manager struct {
	ctx       *audio.Context
	fs        fileutil.FileSystem
	soundFont *meltysynth.SoundFont
	log       *slog.Logger

	bgm *channel
	bgs *channel
	me  *channel
	se  []*audio.Player

	currentBGM opcode.AudioFile
	currentBGS opcode.AudioFile
	bgmPaused  bool
	muted      bool

	mu sync.Mutex
}

// Option は Manager の設定
type Option func(*Manager)

// WithContext は共有するオーディオコンテキストを設定する
func WithContext(ctx *audio.Context) Option {
	return func(m *Manager) {
		m.ctx = ctx
	}
}

// WithSoundFont は MIDI 合成に使う SoundFont を設定する
func WithSoundFont(sf *meltysynth.SoundFont) Option {
	return func(m *Manager) {
		m.soundFont = sf
	}
}

// WithLogger はロガーを設定する
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithMuted は音量0で再生する（ヘッドレス用）
func WithMuted(muted bool) Option {
	return func(m *Manager) {
		m.muted = muted
	}
}

// NewManager は fsys の audio ディレクトリから再生する Manager を作成する
func NewManager(fsys fileutil.FileSystem, opts ...Option) *Manager {
	m := &Manager{
		fs:  fsys,
		log: logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.ctx == nil {
		m.ctx = audio.CurrentContext()
	}
	if m.ctx == nil {
		m.ctx = audio.NewContext(SampleRate)
	}
	return m
}

// PlayBGM は BGM を再生する。同じ曲が再生中なら音量だけ更新する
func (m *Manager) PlayBGM(bgm opcode.AudioFile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentBGM = bgm
	if m.bgm != nil && bgm.Name != "" && m.bgm.file.Name == bgm.Name {
		m.bgm.file = bgm
		m.bgm.fadeTotal, m.bgm.fadeRest = 0, 0
		m.applyVolume(m.bgm)
		return
	}
	m.closeChannel(&m.bgm)
	m.bgmPaused = false
	if bgm.Name == "" {
		return
	}
	ch, err := m.start("bgm", bgm, true)
	if err != nil {
		m.log.Warn("failed to play BGM", "name", bgm.Name, "error", err)
		return
	}
	m.bgm = ch
	// ME 再生中は ME の終了後に再生する
	if m.me != nil {
		m.bgmPaused = true
		return
	}
	ch.player.Play()
}

// FadeOutBGM は BGM を seconds 秒でフェードアウトする
func (m *Manager) FadeOutBGM(seconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentBGM = opcode.AudioFile{}
	m.fadeOut(&m.bgm, seconds)
}

// PlayBGS は BGS を再生する
func (m *Manager) PlayBGS(bgs opcode.AudioFile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentBGS = bgs
	if m.bgs != nil && bgs.Name != "" && m.bgs.file.Name == bgs.Name {
		m.bgs.file = bgs
		m.bgs.fadeTotal, m.bgs.fadeRest = 0, 0
		m.applyVolume(m.bgs)
		return
	}
	m.closeChannel(&m.bgs)
	if bgs.Name == "" {
		return
	}
	ch, err := m.start("bgs", bgs, true)
	if err != nil {
		m.log.Warn("failed to play BGS", "name", bgs.Name, "error", err)
		return
	}
	m.bgs = ch
	ch.player.Play()
}

// FadeOutBGS は BGS を seconds 秒でフェードアウトする
func (m *Manager) FadeOutBGS(seconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentBGS = opcode.AudioFile{}
	m.fadeOut(&m.bgs, seconds)
}

// PlayME は BGM を一時停止して ME を再生する。BGM は ME の終了後に再開する
func (m *Manager) PlayME(me opcode.AudioFile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeChannel(&m.me)
	if me.Name == "" {
		m.resumeBGM()
		return
	}
	ch, err := m.start("me", me, false)
	if err != nil {
		m.log.Warn("failed to play ME", "name", me.Name, "error", err)
		m.resumeBGM()
		return
	}
	if m.bgm != nil && !m.bgmPaused {
		m.bgm.player.Pause()
		m.bgmPaused = true
	}
	m.me = ch
	ch.player.Play()
}

// PlaySE は効果音を再生する。効果音は重ねて鳴らせる
func (m *Manager) PlaySE(se opcode.AudioFile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupSE()
	if se.Name == "" {
		return
	}
	ch, err := m.start("se", se, false)
	if err != nil {
		m.log.Warn("failed to play SE", "name", se.Name, "error", err)
		return
	}
	ch.player.Play()
	m.se = append(m.se, ch.player)
}

// StopSE は再生中の効果音をすべて止める
func (m *Manager) StopSE() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.se {
		p.Close()
	}
	m.se = nil
}

// CurrentBGM は再生中の BGM を返す
func (m *Manager) CurrentBGM() opcode.AudioFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentBGM
}

// ReplayBGM は保存した BGM を再生し直す
func (m *Manager) ReplayBGM(bgm opcode.AudioFile) {
	m.PlayBGM(bgm)
}

// SetMuted はすべてのトラックの消音を切り替える
func (m *Manager) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
	for _, ch := range []*channel{m.bgm, m.bgs, m.me} {
		if ch != nil {
			m.applyVolume(ch)
		}
	}
	for _, p := range m.se {
		if muted {
			p.SetVolume(0)
		}
	}
}

// IsMuted は消音中かどうかを返す
func (m *Manager) IsMuted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// Update はフェードと ME 終了を1フレーム分進める。ホストが毎フレーム呼ぶ
func (m *Manager) Update() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateFade(&m.bgm)
	m.updateFade(&m.bgs)
	if m.me != nil && m.me.finished() {
		m.closeChannel(&m.me)
		m.resumeBGM()
	}
	m.cleanupSE()
}

// Close はすべてのプレイヤーを閉じる
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeChannel(&m.bgm)
	m.closeChannel(&m.bgs)
	m.closeChannel(&m.me)
	for _, p := range m.se {
		p.Close()
	}
	m.se = nil
}

func (m *Manager) resumeBGM() {
	if m.bgm != nil && m.bgmPaused {
		m.bgm.player.Play()
	}
	m.bgmPaused = false
}

func (m *Manager) fadeOut(slot **channel, seconds int) {
	ch := *slot
	if ch == nil {
		return
	}
	frames := seconds * FramesPerSecond
	if frames <= 0 {
		m.closeChannel(slot)
		return
	}
	ch.fadeTotal, ch.fadeRest = frames, frames
}

func (m *Manager) updateFade(slot **channel) {
	ch := *slot
	if ch == nil || ch.fadeTotal == 0 {
		return
	}
	ch.fadeRest--
	if ch.fadeRest <= 0 {
		m.closeChannel(slot)
		return
	}
	m.applyVolume(ch)
}

func (m *Manager) closeChannel(slot **channel) {
	if *slot != nil {
		(*slot).close()
		*slot = nil
	}
}

// applyVolume はファイルの音量（0〜100）とフェード・消音を反映する
func (m *Manager) applyVolume(ch *channel) {
	ch.player.SetVolume(volume(ch.file.Volume, ch.fadeRest, ch.fadeTotal, m.muted))
}

func volume(v, fadeRest, fadeTotal int, muted bool) float64 {
	if muted {
		return 0
	}
	vol := float64(min(max(v, 0), 100)) / 100
	if fadeTotal > 0 {
		vol *= float64(fadeRest) / float64(fadeTotal)
	}
	return vol
}

// cleanupSE は再生の終わった効果音を閉じる
func (m *Manager) cleanupSE() {
	active := m.se[:0]
	for _, p := range m.se {
		if p.IsPlaying() {
			active = append(active, p)
		} else {
			p.Close()
		}
	}
	m.se = active
}

// start はファイルを開いてプレイヤーを作成する（再生はしない）
func (m *Manager) start(dir string, file opcode.AudioFile, loop bool) (*channel, error) {
	data, ext, err := m.read(dir, file.Name)
	if err != nil {
		return nil, err
	}
	ch := &channel{file: file}
	var src io.Reader
	switch ext {
	case ".ogg":
		s, err := vorbis.DecodeWithSampleRate(SampleRate, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		src = s
		if loop {
			src = audio.NewInfiniteLoop(s, s.Length())
		}
	case ".wav":
		s, err := wav.DecodeWithSampleRate(SampleRate, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		src = s
		if loop {
			src = audio.NewInfiniteLoop(s, s.Length())
		}
	default:
		s, err := NewMIDIStream(m.soundFont, data, loop)
		if err != nil {
			return nil, err
		}
		src = s
		ch.stop = s.Stop
		if !loop {
			ch.duration = s.Length()
		}
	}
	player, err := m.ctx.NewPlayer(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player: %w", err)
	}
	ch.player = player
	m.applyVolume(ch)
	return ch, nil
}

// read は audio/<dir>/<name> を拡張子を補って読み込む
func (m *Manager) read(dir, name string) ([]byte, string, error) {
	if m.fs == nil {
		return nil, "", fmt.Errorf("%w: %s/%s", ErrAudioFileNotFound, dir, name)
	}
	base := path.Join("audio", dir, name)
	for _, ext := range extensions {
		data, err := m.fs.ReadFile(base + ext)
		if err == nil {
			return data, ext, nil
		}
	}
	return nil, "", fmt.Errorf("%w: %s", ErrAudioFileNotFound, base)
}
