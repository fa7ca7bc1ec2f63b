package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sinshu/go-meltysynth/meltysynth"
)

// ErrNoSoundFont は SoundFont なしで MIDI を再生しようとした場合のエラー
var ErrNoSoundFont = errors.New("SoundFont file is required for MIDI playback")

// MIDIStream はシーケンサーの出力を Ebitengine/audio 向けの
// 16bit ステレオ PCM として読み出す io.Reader
type MIDIStream struct {
	sequencer *meltysynth.MidiFileSequencer
	length    time.Duration
	stopped   bool
	mu        sync.Mutex
}

// NewMIDIStream は data の MIDI ファイルを sf で合成するストリームを作成する
// loop が true の場合は曲の終わりで先頭に戻る
func NewMIDIStream(sf *meltysynth.SoundFont, data []byte, loop bool) (*MIDIStream, error) {
	if sf == nil {
		return nil, ErrNoSoundFont
	}
	midi, err := meltysynth.NewMidiFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	synth, err := meltysynth.NewSynthesizer(sf, meltysynth.NewSynthesizerSettings(SampleRate))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}
	seq := meltysynth.NewMidiFileSequencer(synth)
	seq.Play(midi, loop)
	return &MIDIStream{sequencer: seq, length: midi.GetLength()}, nil
}

// Read はシーケンサーから合成したサンプルを書き込む
// 停止後は無音を返す
func (s *MIDIStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.sequencer == nil {
		clear(p)
		return len(p), nil
	}

	// 16bit ステレオ = 1サンプル4バイト
	samples := len(p) / 4
	if samples == 0 {
		return 0, nil
	}

	left := make([]float32, samples)
	right := make([]float32, samples)
	s.sequencer.Render(left, right)

	for i := range samples {
		l := int16(clamp(left[i], -1, 1) * 32767)
		r := int16(clamp(right[i], -1, 1) * 32767)
		binary.LittleEndian.PutUint16(p[i*4:], uint16(l))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(r))
	}
	return samples * 4, nil
}

// Stop はストリームを止める。以降の Read は無音を返す
func (s *MIDIStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Length は曲の長さを返す
func (s *MIDIStream) Length() time.Duration { return s.length }

// clamp は v を [lo, hi] に収める
func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
