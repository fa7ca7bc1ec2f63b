package game

import (
	"maps"
	"slices"

	"github.com/zurustar/evrun/pkg/opcode"
)

// tween moves a value toward a target over a number of frames.
type tween struct {
	current  [4]float64
	target   [4]float64
	duration int
}

func (t *tween) start(target [4]int, duration int) {
	for i := range target {
		t.target[i] = float64(target[i])
	}
	t.duration = duration
	if duration <= 0 {
		t.current = t.target
	}
}

func (t *tween) update() {
	if t.duration <= 0 {
		return
	}
	d := float64(t.duration)
	for i := range t.current {
		t.current[i] = (t.current[i]*(d-1) + t.target[i]) / d
	}
	t.duration--
}

func (t *tween) value() [4]int {
	var out [4]int
	for i, v := range t.current {
		out[i] = int(v)
	}
	return out
}

// PictureState is a shown picture.
type PictureState struct {
	Picture
	Angle    int
	Rotation int
	tone     tween
	move     struct {
		target   Picture
		duration int
	}
}

// Tone returns the picture's current tone.
func (p *PictureState) Tone() [4]int { return p.tone.value() }

func (p *PictureState) update() {
	p.Angle += p.Rotation
	p.tone.update()
	if d := p.move.duration; d > 0 {
		t := p.move.target
		p.X = (p.X*(d-1) + t.X) / d
		p.Y = (p.Y*(d-1) + t.Y) / d
		p.ScaleX = (p.ScaleX*(d-1) + t.ScaleX) / d
		p.ScaleY = (p.ScaleY*(d-1) + t.ScaleY) / d
		p.Opacity = (p.Opacity*(d-1) + t.Opacity) / d
		p.move.duration--
	}
}

// ScreenState is the in-memory Screen.
type ScreenState struct {
	brightness   int
	fadeOutRest  int
	fadeInRest   int
	tone         tween
	flash        tween
	flashRest    int
	shakePower   int
	shakeSpeed   int
	shakeRest    int
	weatherType  int
	weatherPower int
	pictures     map[int]*PictureState
}

func newScreenState() *ScreenState {
	return &ScreenState{brightness: 255, pictures: make(map[int]*PictureState)}
}

func (s *ScreenState) StartFadeOut(duration int) {
	s.fadeOutRest = duration
	s.fadeInRest = 0
	if duration <= 0 {
		s.brightness = 0
	}
}

func (s *ScreenState) StartFadeIn(duration int) {
	s.fadeInRest = duration
	s.fadeOutRest = 0
	if duration <= 0 {
		s.brightness = 255
	}
}

func (s *ScreenState) StartTint(tone [4]int, duration int) { s.tone.start(tone, duration) }

func (s *ScreenState) StartFlash(color [4]int, duration int) {
	s.flash.current = [4]float64{float64(color[0]), float64(color[1]), float64(color[2]), float64(color[3])}
	s.flash.start([4]int{color[0], color[1], color[2], 0}, duration)
	s.flashRest = duration
}

func (s *ScreenState) StartShake(power, speed, duration int) {
	s.shakePower, s.shakeSpeed, s.shakeRest = power, speed, duration
}

func (s *ScreenState) ShowPicture(id int, p Picture) {
	s.pictures[id] = &PictureState{Picture: p}
}

func (s *ScreenState) MovePicture(id int, p Picture, duration int) {
	pic := s.pictures[id]
	if pic == nil {
		return
	}
	p.Name = pic.Name
	if duration <= 0 {
		pic.Picture = p
		return
	}
	pic.move.target = p
	pic.move.duration = duration
}

func (s *ScreenState) RotatePicture(id, speed int) {
	if pic := s.pictures[id]; pic != nil {
		pic.Rotation = speed
	}
}

func (s *ScreenState) TintPicture(id int, tone [4]int, duration int) {
	if pic := s.pictures[id]; pic != nil {
		pic.tone.start(tone, duration)
	}
}

func (s *ScreenState) ErasePicture(id int) { delete(s.pictures, id) }

func (s *ScreenState) ChangeWeather(weatherType, power, _ int) {
	s.weatherType, s.weatherPower = weatherType, power
}

// Brightness returns 0 (black) to 255 (fully visible).
func (s *ScreenState) Brightness() int { return s.brightness }

// Tone returns the current screen tone.
func (s *ScreenState) Tone() [4]int { return s.tone.value() }

// Flash returns the current flash color; alpha 0 means no flash.
func (s *ScreenState) Flash() [4]int { return s.flash.value() }

// IsShaking reports whether a shake is running.
func (s *ScreenState) IsShaking() bool { return s.shakeRest > 0 }

// Weather returns the weather type and power.
func (s *ScreenState) Weather() (int, int) { return s.weatherType, s.weatherPower }

// Picture returns the picture with id, or nil.
func (s *ScreenState) Picture(id int) *PictureState { return s.pictures[id] }

// PictureIDs returns the ids of the shown pictures in ascending order.
func (s *ScreenState) PictureIDs() []int { return slices.Sorted(maps.Keys(s.pictures)) }

func (s *ScreenState) update() {
	if s.fadeOutRest > 0 {
		s.brightness = s.brightness * (s.fadeOutRest - 1) / s.fadeOutRest
		s.fadeOutRest--
	}
	if s.fadeInRest > 0 {
		s.brightness = (s.brightness*(s.fadeInRest-1) + 255) / s.fadeInRest
		s.fadeInRest--
	}
	s.tone.update()
	if s.flashRest > 0 {
		s.flash.update()
		s.flashRest--
	}
	if s.shakeRest > 0 {
		s.shakeRest--
	}
	for _, p := range s.pictures {
		p.update()
	}
}

// AudioLog is a headless Audio that only tracks what would be playing.
type AudioLog struct {
	bgm    opcode.AudioFile
	bgs    opcode.AudioFile
	Played []opcode.AudioFile
}

func (a *AudioLog) PlayBGM(bgm opcode.AudioFile) {
	a.bgm = bgm
	a.Played = append(a.Played, bgm)
}

func (a *AudioLog) FadeOutBGM(int) { a.bgm = opcode.AudioFile{} }

func (a *AudioLog) PlayBGS(bgs opcode.AudioFile) {
	a.bgs = bgs
	a.Played = append(a.Played, bgs)
}

func (a *AudioLog) FadeOutBGS(int)                 { a.bgs = opcode.AudioFile{} }
func (a *AudioLog) PlayME(me opcode.AudioFile)     { a.Played = append(a.Played, me) }
func (a *AudioLog) PlaySE(se opcode.AudioFile)     { a.Played = append(a.Played, se) }
func (a *AudioLog) StopSE()                        {}
func (a *AudioLog) CurrentBGM() opcode.AudioFile   { return a.bgm }
func (a *AudioLog) ReplayBGM(bgm opcode.AudioFile) { a.bgm = bgm }

// SystemState is the in-memory System.
type SystemState struct {
	audio    Audio
	frames   Frames
	savedBGM opcode.AudioFile

	BattleBGM  opcode.AudioFile
	VictoryME  opcode.AudioFile
	DefeatME   opcode.AudioFile
	WindowTone [4]int

	SaveEnabled      bool
	MenuEnabled      bool
	EncounterEnabled bool
	FormationEnabled bool

	saveCount   int
	battleCount int
	winCount    int
	escapeCount int
}

func newSystemState(audio Audio, frames Frames) *SystemState {
	return &SystemState{
		audio:            audio,
		frames:           frames,
		SaveEnabled:      true,
		MenuEnabled:      true,
		EncounterEnabled: true,
		FormationEnabled: true,
	}
}

func (s *SystemState) SetBattleBGM(bgm opcode.AudioFile) { s.BattleBGM = bgm }
func (s *SystemState) SetVictoryME(me opcode.AudioFile)  { s.VictoryME = me }
func (s *SystemState) SetDefeatME(me opcode.AudioFile)   { s.DefeatME = me }
func (s *SystemState) SetSaveEnabled(enabled bool)       { s.SaveEnabled = enabled }
func (s *SystemState) SetMenuEnabled(enabled bool)       { s.MenuEnabled = enabled }
func (s *SystemState) SetEncounterEnabled(enabled bool)  { s.EncounterEnabled = enabled }
func (s *SystemState) SetFormationEnabled(enabled bool)  { s.FormationEnabled = enabled }
func (s *SystemState) SetWindowTone(tone [4]int)         { s.WindowTone = tone }
func (s *SystemState) SaveBGM()                          { s.savedBGM = s.audio.CurrentBGM() }
func (s *SystemState) ReplayBGM()                        { s.audio.ReplayBGM(s.savedBGM) }
func (s *SystemState) PlaytimeSeconds() int              { return s.frames.FrameCount() / 60 }
func (s *SystemState) SaveCount() int                    { return s.saveCount }
func (s *SystemState) BattleCount() int                  { return s.battleCount }
func (s *SystemState) WinCount() int                     { return s.winCount }
func (s *SystemState) EscapeCount() int                  { return s.escapeCount }
