package game

import "strings"

// Page is one closed message window as it was shown.
type Page struct {
	Face    string
	Speaker string
	Lines   []string
	Choices []string
	Chosen  int // -1 when no choice was made
}

// Text returns the page lines joined by newlines.
func (p Page) Text() string { return strings.Join(p.Lines, "\n") }

// ChoicePolicy picks a choice index for an unattended message box.
// cancelType is -1 when cancel is disabled and -2 for a cancel branch.
type ChoicePolicy func(choices []string, defaultType, cancelType int) int

// DefaultChoice picks the default choice, or the first one.
func DefaultChoice(choices []string, defaultType, _ int) int {
	if defaultType >= 0 && defaultType < len(choices) {
		return defaultType
	}
	return 0
}

// MessageBox is the in-memory Message. With AutoAdvance it closes itself
// after AdvanceFrames and answers choices with Policy; otherwise the host
// closes it through Advance and Choose.
type MessageBox struct {
	AutoAdvance   bool
	AdvanceFrames int
	Policy        ChoicePolicy

	vars Variables

	faceName     string
	faceIndex    int
	speakerName  string
	background   int
	positionType int
	lines        []string

	choices        []string
	choiceDefault  int
	choiceCancel   int
	choiceCallback func(n int)

	numInputVar    int
	numInputDigits int
	itemChoiceVar  int
	scrollMode     bool

	shownFrames int
	transcript  []Page
}

// NewMessageBox creates a message box writing number and item input into vars.
func NewMessageBox(vars Variables) *MessageBox {
	return &MessageBox{vars: vars, Policy: DefaultChoice, AdvanceFrames: 1}
}

func (m *MessageBox) IsBusy() bool {
	return len(m.lines) > 0 || m.IsChoice() || m.numInputVar > 0 || m.itemChoiceVar > 0
}

// IsChoice reports whether choices are pending.
func (m *MessageBox) IsChoice() bool { return len(m.choices) > 0 }

func (m *MessageBox) Add(text string) { m.lines = append(m.lines, text) }

func (m *MessageBox) SetFaceImage(name string, index int) { m.faceName, m.faceIndex = name, index }
func (m *MessageBox) SetSpeakerName(name string)          { m.speakerName = name }
func (m *MessageBox) SetBackground(background int)        { m.background = background }
func (m *MessageBox) SetPositionType(positionType int)    { m.positionType = positionType }
func (m *MessageBox) SetChoiceBackground(int)             {}
func (m *MessageBox) SetChoicePositionType(int)           {}
func (m *MessageBox) SetChoiceCallback(cb func(n int))    { m.choiceCallback = cb }

func (m *MessageBox) SetChoices(choices []string, defaultType, cancelType int) {
	m.choices = append([]string(nil), choices...)
	m.choiceDefault = defaultType
	m.choiceCancel = cancelType
}

func (m *MessageBox) SetNumberInput(variableID, maxDigits int) {
	m.numInputVar = variableID
	m.numInputDigits = maxDigits
}

func (m *MessageBox) SetItemChoice(variableID, _ int) { m.itemChoiceVar = variableID }

func (m *MessageBox) SetScroll(int, bool) { m.scrollMode = true }

// SpeakerName returns the name shown above the current page.
func (m *MessageBox) SpeakerName() string { return m.speakerName }

// Lines returns the text currently shown.
func (m *MessageBox) Lines() []string { return m.lines }

// Choices returns the pending choices.
func (m *MessageBox) Choices() []string { return m.choices }

// ChoiceTypes returns the default and cancel types of the pending choice.
func (m *MessageBox) ChoiceTypes() (defaultType, cancelType int) {
	return m.choiceDefault, m.choiceCancel
}

// Transcript returns every closed page in order.
func (m *MessageBox) Transcript() []Page { return m.transcript }

// Texts returns the transcript as one string per page.
func (m *MessageBox) Texts() []string {
	out := make([]string, len(m.transcript))
	for i, p := range m.transcript {
		out[i] = p.Text()
	}
	return out
}

// Advance closes a text-only page. It is ignored while a choice is pending.
func (m *MessageBox) Advance() {
	if !m.IsBusy() || m.IsChoice() {
		return
	}
	if m.numInputVar > 0 && m.vars != nil {
		m.vars.SetValue(m.numInputVar, 0)
	}
	if m.itemChoiceVar > 0 && m.vars != nil {
		m.vars.SetValue(m.itemChoiceVar, 0)
	}
	m.close(-1)
}

// Choose answers the pending choice with n (or the cancel value) and closes the page.
func (m *MessageBox) Choose(n int) {
	if !m.IsChoice() {
		return
	}
	cb := m.choiceCallback
	m.close(n)
	if cb != nil {
		cb(n)
	}
}

func (m *MessageBox) close(chosen int) {
	if len(m.lines) > 0 || len(m.choices) > 0 {
		m.transcript = append(m.transcript, Page{
			Face:    m.faceName,
			Speaker: m.speakerName,
			Lines:   m.lines,
			Choices: m.choices,
			Chosen:  chosen,
		})
	}
	m.lines = nil
	m.choices = nil
	m.choiceCallback = nil
	m.numInputVar = 0
	m.itemChoiceVar = 0
	m.scrollMode = false
	m.faceName = ""
	m.faceIndex = 0
	m.speakerName = ""
	m.shownFrames = 0
}

func (m *MessageBox) update() {
	if !m.IsBusy() || !m.AutoAdvance {
		return
	}
	m.shownFrames++
	if m.shownFrames < m.AdvanceFrames {
		return
	}
	if m.IsChoice() {
		m.Choose(m.Policy(m.choices, m.choiceDefault, m.choiceCancel))
		return
	}
	m.Advance()
}
