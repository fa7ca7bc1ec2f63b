package window

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/colorm"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/zurustar/evrun/pkg/engine"
	"github.com/zurustar/evrun/pkg/game"
	"github.com/zurustar/evrun/pkg/logger"
)

const (
	// ScreenWidth は論理画面の幅
	ScreenWidth = 816
	// ScreenHeight は論理画面の高さ
	ScreenHeight = 624

	lineHeight   = 18
	messageLines = 4
	messagePad   = 12
)

var (
	// 背景色 #0087C8
	backgroundColor = color.RGBA{0x00, 0x87, 0xC8, 0xFF}
	// メッセージウィンドウの背景色
	windowColor = color.RGBA{0x00, 0x00, 0x30, 0xC0}
	// テキスト色（白）
	textColor = color.White
	// 選択中のテキスト色（黄色）
	selectedTextColor = color.RGBA{0xFF, 0xFF, 0x00, 0xFF}
	// デフォルトフォント
	defaultFace = text.NewGoXFace(basicfont.Face7x13)
)

// Buttons は1フレーム分のボタンの状態
type Buttons struct {
	Up     bool
	Down   bool
	Left   bool
	Right  bool
	OK     bool
	Cancel bool
}

// Keys はホストが読み取った入力
// Held は押され続けているボタン、Pressed はこのフレームで押されたボタン
type Keys struct {
	Held    Buttons
	Pressed Buttons
	Quit    bool
}

// Updater はフレームごとに更新される付随システム（オーディオなど）
type Updater interface {
	Update()
}

// Option は Game の設定
type Option func(*Game)

// WithLogger はロガーを設定する
func WithLogger(log *slog.Logger) Option {
	return func(g *Game) { g.log = log }
}

// WithUpdater はエンジンの後に毎フレーム更新するシステムを追加する
func WithUpdater(u Updater) Option {
	return func(g *Game) { g.updaters = append(g.updaters, u) }
}

// WithFrameLimit は n フレームでゲームループを終える（0は無制限）
func WithFrameLimit(n int) Option {
	return func(g *Game) { g.frameLimit = n }
}

// Game はEbitengineのゲームインターフェースを実装する
// 1フレームにつき1回エンジンを進め、メッセージと選択肢をキーボードで操作する
type Game struct {
	engine     *engine.Engine
	log        *slog.Logger
	updaters   []Updater
	frameLimit int

	cursor int           // 選択肢のカーソル位置
	canvas *ebiten.Image // 色調変更前の描画先
}

// NewGame は e を駆動する Game を作成する
func NewGame(e *engine.Engine, opts ...Option) *Game {
	g := &Game{engine: e, log: logger.GetLogger()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Update ゲームロジックの更新（Ebitengineが毎フレーム呼び出す）
func (g *Game) Update() error {
	return g.step(readKeys())
}

// step は入力 k を反映してから1フレーム進める
func (g *Game) step(k Keys) error {
	if k.Quit {
		g.engine.Terminate()
		return ebiten.Termination
	}

	g.handleKeys(k)

	if err := g.engine.Update(); err != nil {
		if errors.Is(err, engine.ErrTerminated) {
			g.log.Info("session ended", "frames", g.engine.Frames())
			return ebiten.Termination
		}
		return err
	}

	for _, u := range g.updaters {
		u.Update()
	}

	if g.frameLimit > 0 && g.engine.Frames() >= g.frameLimit {
		g.log.Info("frame limit reached", "frames", g.frameLimit)
		return ebiten.Termination
	}
	return nil
}

// readKeys はEbitengineからキーボードの状態を読み取る
func readKeys() Keys {
	held := func(keys ...ebiten.Key) bool {
		for _, key := range keys {
			if ebiten.IsKeyPressed(key) {
				return true
			}
		}
		return false
	}
	pressed := func(keys ...ebiten.Key) bool {
		for _, key := range keys {
			if inpututil.IsKeyJustPressed(key) {
				return true
			}
		}
		return false
	}

	return Keys{
		Held: Buttons{
			Up:     held(ebiten.KeyUp),
			Down:   held(ebiten.KeyDown),
			Left:   held(ebiten.KeyLeft),
			Right:  held(ebiten.KeyRight),
			OK:     held(ebiten.KeyEnter, ebiten.KeySpace, ebiten.KeyZ),
			Cancel: held(ebiten.KeyX, ebiten.KeyBackspace),
		},
		Pressed: Buttons{
			Up:     pressed(ebiten.KeyUp),
			Down:   pressed(ebiten.KeyDown),
			Left:   pressed(ebiten.KeyLeft),
			Right:  pressed(ebiten.KeyRight),
			OK:     pressed(ebiten.KeyEnter, ebiten.KeySpace, ebiten.KeyZ),
			Cancel: pressed(ebiten.KeyX, ebiten.KeyBackspace),
		},
		Quit: pressed(ebiten.KeyEscape),
	}
}

// handleKeys は入力をワールドに反映する
// 選択肢、メッセージ送り、マップ上の移動と決定の順に優先する
func (g *Game) handleKeys(k Keys) {
	w := g.engine.World()

	// 条件分岐のボタン判定用
	w.Input.Set("up", k.Held.Up)
	w.Input.Set("down", k.Held.Down)
	w.Input.Set("left", k.Held.Left)
	w.Input.Set("right", k.Held.Right)
	w.Input.Set("ok", k.Held.OK)
	w.Input.Set("cancel", k.Held.Cancel)

	msg := w.Message
	switch {
	case msg.IsChoice():
		g.handleChoice(msg, k.Pressed)
	case msg.IsBusy():
		if k.Pressed.OK || k.Pressed.Cancel {
			msg.Advance()
		}
	case w.Scene.Current() == game.SceneMap:
		g.handleMap(w, k.Pressed)
	}
}

// handleChoice は選択肢のカーソル移動と決定・キャンセルを処理する
func (g *Game) handleChoice(msg *game.MessageBox, b Buttons) {
	n := len(msg.Choices())
	switch {
	case b.Up:
		g.cursor = (g.cursor + n - 1) % n
	case b.Down:
		g.cursor = (g.cursor + 1) % n
	case b.OK:
		choice := min(g.cursor, n-1)
		g.cursor = 0
		msg.Choose(choice)
	case b.Cancel:
		_, cancelType := msg.ChoiceTypes()
		if cancelType == -1 {
			return
		}
		g.cursor = 0
		msg.Choose(cancelType)
	}
}

// handleMap はプレイヤーの移動と決定ボタンによるイベント起動を処理する
// マップインタプリタの実行中は操作できない
func (g *Game) handleMap(w *game.World, b Buttons) {
	if g.engine.MapInterpreter().IsRunning() || w.Player.IsTransferring() {
		return
	}

	p := w.Player
	switch {
	case b.Up:
		g.move(p, game.DirUp)
	case b.Down:
		g.move(p, game.DirDown)
	case b.Left:
		g.move(p, game.DirLeft)
	case b.Right:
		g.move(p, game.DirRight)
	case b.OK:
		// 足元のイベント、次に正面のイベント
		x, y := p.X(), p.Y()
		if id := w.Map.EventIDXY(x, y); id > 0 && g.engine.StartEvent(id) {
			return
		}
		dx, dy := offset(p.Direction())
		if id := w.Map.EventIDXY(x+dx, y+dy); id > 0 && g.engine.StartEvent(id) {
			g.log.Debug("event started by action button", "event", id)
		}
	}
}

// move はプレイヤーの向きを変えて1マス進める
func (g *Game) move(p *game.PlayerState, d int) {
	p.SetDirection(d)
	dx, dy := offset(d)
	p.Locate(p.X()+dx, p.Y()+dy)
}

// offset は向き d の1マス先への差分を返す
func offset(d int) (int, int) {
	switch d {
	case game.DirDown:
		return 0, 1
	case game.DirLeft:
		return -1, 0
	case game.DirRight:
		return 1, 0
	case game.DirUp:
		return 0, -1
	}
	return 0, 0
}

// Draw 画面描画（Ebitengineが毎フレーム呼び出す）
func (g *Game) Draw(screen *ebiten.Image) {
	if g.canvas == nil {
		g.canvas = ebiten.NewImage(ScreenWidth, ScreenHeight)
	}
	w := g.engine.World()

	g.canvas.Fill(backgroundColor)
	g.drawStatus(g.canvas, w)
	g.drawPictures(g.canvas, w)

	// 色調と明るさはマップとピクチャにだけ掛かる
	colorm.DrawImage(screen, g.canvas, toneMatrix(w.Screen.Tone(), w.Screen.Brightness()), nil)

	if f := w.Screen.Flash(); f[3] > 0 {
		vector.DrawFilledRect(screen, 0, 0, ScreenWidth, ScreenHeight, color.NRGBA{
			R: clampByte(f[0]),
			G: clampByte(f[1]),
			B: clampByte(f[2]),
			A: clampByte(f[3]),
		}, false)
	}

	g.drawMessage(screen, w.Message)
}

// toneMatrix は画面の色調 [R, G, B, Gray] と明るさ(0-255)を色行列にする
func toneMatrix(tone [4]int, brightness int) colorm.ColorM {
	var cm colorm.ColorM
	if tone[3] > 0 {
		cm.ChangeHSV(0, 1-float64(tone[3])/255, 1)
	}
	cm.Translate(float64(tone[0])/255, float64(tone[1])/255, float64(tone[2])/255, 0)
	b := float64(brightness) / 255
	cm.Scale(b, b, b, 1)
	return cm
}

// drawStatus はマップとプレイヤーの状態を表示する
func (g *Game) drawStatus(dst *ebiten.Image, w *game.World) {
	status := fmt.Sprintf("map %d  player (%d,%d)  scene %s  frame %d",
		w.Map.MapID(), w.Player.X(), w.Player.Y(), w.Scene.Current(), g.engine.Frames())
	drawText(dst, status, 8, 8, textColor)

	if w.Timer.IsWorking() {
		sec := w.Timer.Seconds()
		drawText(dst, fmt.Sprintf("%02d:%02d", sec/60, sec%60), ScreenWidth-60, 8, textColor)
	}

	y := 40.0
	for _, ev := range w.Map.Events() {
		drawText(dst, fmt.Sprintf("#%d %s (%d,%d)", ev.ID(), ev.Data().Name, ev.X(), ev.Y()), 8, y, textColor)
		y += lineHeight
		if y > ScreenHeight/2 {
			break
		}
	}
}

// drawPictures は表示中のピクチャの名前を位置に描く
func (g *Game) drawPictures(dst *ebiten.Image, w *game.World) {
	for _, id := range w.Screen.PictureIDs() {
		p := w.Screen.Picture(id)
		if p.Opacity == 0 {
			continue
		}
		drawText(dst, p.Name, float64(p.X), float64(p.Y), color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: clampByte(p.Opacity)})
	}
}

// drawMessage はメッセージウィンドウと選択肢を描く
func (g *Game) drawMessage(dst *ebiten.Image, msg *game.MessageBox) {
	if !msg.IsBusy() {
		return
	}
	lines := msg.Lines()
	choices := msg.Choices()

	h := float32(messagePad*2 + lineHeight*messageLines)
	top := float32(ScreenHeight) - h
	vector.DrawFilledRect(dst, 0, top, ScreenWidth, h, windowColor, false)

	if name := msg.SpeakerName(); name != "" {
		nh := float32(messagePad*2 + lineHeight)
		vector.DrawFilledRect(dst, 0, top-nh, 240, nh, windowColor, false)
		drawText(dst, name, messagePad, float64(top-nh)+messagePad, selectedTextColor)
	}

	y := float64(top) + messagePad
	for _, line := range lines {
		drawText(dst, line, messagePad, y, textColor)
		y += lineHeight
	}

	if len(choices) == 0 {
		return
	}
	ch := float32(messagePad*2 + lineHeight*len(choices))
	cy := top - ch
	vector.DrawFilledRect(dst, ScreenWidth-240, cy, 240, ch, windowColor, false)
	for i, c := range choices {
		prefix, clr := "  ", textColor
		if i == g.cursor {
			prefix, clr = "> ", selectedTextColor
		}
		drawText(dst, prefix+c, ScreenWidth-240+messagePad, float64(cy)+messagePad+float64(i*lineHeight), clr)
	}
}

// drawText は (x, y) に文字列を描く
func drawText(dst *ebiten.Image, s string, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, defaultFace, op)
}

func clampByte(v int) uint8 {
	return uint8(max(0, min(255, v)))
}

// Layout 画面サイズを返す
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// Run はウィンドウを開いてゲームループを実行する
// ウィンドウが閉じられるかセッションが終わるまで戻らない
func Run(g *Game, title string) error {
	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("failed to run game: %w", err)
	}
	return nil
}
