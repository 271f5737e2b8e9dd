package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/logminer/internal/client/stream"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const timestampLayout = "2006-01-02 15:04:05"

// State lines shown above the record list.
const (
	WaitingText   = "Waiting for server to start..."
	ConnectedText = "Connected"
)

type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

type Renderer struct {
	w     io.Writer
	color bool

	errorStyle lipgloss.Style
	warnStyle  lipgloss.Style
	okStyle    lipgloss.Style
	stateStyle lipgloss.Style
}

// New returns a renderer for w, coloured when w is a terminal.
func New(w io.Writer) *Renderer {
	return NewWithColor(w, IsTerminal(w))
}

func NewWithColor(w io.Writer, color bool) *Renderer {
	lr := lipgloss.NewRenderer(w)
	if color {
		lr.SetColorProfile(termenv.ANSI)
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		w:          w,
		color:      color,
		errorStyle: lr.NewStyle().Foreground(lipgloss.Color("1")),
		warnStyle:  lr.NewStyle().Foreground(lipgloss.Color("3")),
		okStyle:    lr.NewStyle().Foreground(lipgloss.Color("2")),
		stateStyle: lr.NewStyle().Bold(true),
	}
}

// FormatRecord renders rec as "timestamp [LEVEL] source: message".
func (r *Renderer) FormatRecord(rec stream.Record) string {
	var b strings.Builder
	if rec.Timestamp.IsZero() {
		b.WriteString("-")
	} else {
		b.WriteString(rec.Timestamp.Format(timestampLayout))
	}
	b.WriteString(" [")
	b.WriteString(levelLabel(rec))
	b.WriteString("] ")
	if rec.Source != "" {
		b.WriteString(rec.Source)
		b.WriteString(": ")
	}
	b.WriteString(rec.Message)

	return r.levelStyle(rec.Level).Render(b.String())
}

func levelLabel(rec stream.Record) string {
	if rec.Level == stream.LevelUnknown && rec.RawLevel != "" {
		return strings.ToUpper(rec.RawLevel)
	}
	return rec.Level.String()
}

func (r *Renderer) levelStyle(l stream.Level) lipgloss.Style {
	switch l {
	case stream.LevelError:
		return r.errorStyle
	case stream.LevelWarn:
		return r.warnStyle
	default:
		return r.okStyle
	}
}

// FormatState renders the connection state line.
func (r *Renderer) FormatState(st stream.State) string {
	var text string
	switch st.Phase {
	case stream.PhaseIdle:
		text = WaitingText
	case stream.PhaseConnecting:
		text = fmt.Sprintf("Connecting (attempt %d)...", st.Attempt)
	case stream.PhaseConnected:
		text = ConnectedText
	case stream.PhaseFailed:
		reason := "unknown error"
		if st.Err != nil {
			reason = st.Err.Error()
		}
		text = "Disconnected: " + reason
		return r.errorStyle.Bold(true).Render(text)
	default:
		text = st.Phase.String()
	}
	return r.stateStyle.Render(text)
}

func (r *Renderer) Record(rec stream.Record) error {
	_, err := fmt.Fprintln(r.w, r.FormatRecord(rec))
	return err
}

func (r *Renderer) State(st stream.State) error {
	_, err := fmt.Fprintln(r.w, r.FormatState(st))
	return err
}

// Records writes recs in order, stopping at the first write error.
func (r *Renderer) Records(recs []stream.Record) error {
	for _, rec := range recs {
		if err := r.Record(rec); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) Colored() bool {
	return r.color
}
