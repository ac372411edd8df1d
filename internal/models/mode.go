package models

// ModeName is one of the four operating modes of the controller.
type ModeName string

const (
	ModeManual   ModeName = "manual"
	ModeAuto     ModeName = "auto"
	ModeSemiAuto ModeName = "semi_auto"
	ModePause    ModeName = "pause"
)

// ValidModes lists every accepted mode in display order.
var ValidModes = []ModeName{ModeManual, ModeAuto, ModeSemiAuto, ModePause}

// Valid reports whether m is one of ValidModes.
func (m ModeName) Valid() bool {
	switch m {
	case ModeManual, ModeAuto, ModeSemiAuto, ModePause:
		return true
	default:
		return false
	}
}

// Automatic reports whether the sequence engine and schedule may act in m.
func (m ModeName) Automatic() bool {
	return m == ModeAuto || m == ModeSemiAuto
}

// PauseRecord remembers what to restore when a pause ends.
type PauseRecord struct {
	Previous ModeName
	PausedAt int64 // unix seconds
}

// Mode is the controller mode. Pause is non-nil only for a pause started
// through the pause controller; a plain switch to ModePause carries none.
type Mode struct {
	Current ModeName
	Pause   *PauseRecord
}

// NewMode returns a plain mode without pause metadata.
func NewMode(name ModeName) Mode {
	return Mode{Current: name}
}

// Paused returns a pause mode that restores previous on resume.
func Paused(previous ModeName, pausedAt int64) Mode {
	return Mode{
		Current: ModePause,
		Pause:   &PauseRecord{Previous: previous, PausedAt: pausedAt},
	}
}

// ModeDocument is the persisted shape of the "mode" key.
type ModeDocument struct {
	Current      string `json:"current"`
	PreviousMode string `json:"previous_mode,omitempty"`
	PausedAt     *int64 `json:"paused_at,omitempty"`
}

// Document flattens m into its persisted shape.
func (m Mode) Document() ModeDocument {
	doc := ModeDocument{Current: string(m.Current)}
	if m.Pause != nil {
		at := m.Pause.PausedAt
		doc.PreviousMode = string(m.Pause.Previous)
		doc.PausedAt = &at
	}
	return doc
}

// Mode rebuilds the variant from the document. ok is false when current is
// not a valid mode. Pause metadata is kept only when both fields are present,
// current is pause and the previous mode is itself valid.
func (d ModeDocument) Mode() (m Mode, ok bool) {
	current := ModeName(d.Current)
	if !current.Valid() {
		return Mode{}, false
	}
	m = NewMode(current)
	previous := ModeName(d.PreviousMode)
	if current == ModePause && d.PausedAt != nil && previous.Valid() {
		m = Paused(previous, *d.PausedAt)
	}
	return m, true
}

// Equal compares two modes including pause metadata.
func (m Mode) Equal(o Mode) bool {
	if m.Current != o.Current {
		return false
	}
	if m.Pause == nil || o.Pause == nil {
		return m.Pause == nil && o.Pause == nil
	}
	return *m.Pause == *o.Pause
}
