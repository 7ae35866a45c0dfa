package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for console output.
type Theme struct {
	Primary lipgloss.Color // engineer responses
	Accent  lipgloss.Color // driver queries
	Warn    lipgloss.Color // degraded/notice lines
	Dim     lipgloss.Color // timestamps and metadata
}

// DefaultTheme is the default pit-wall green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Accent:  lipgloss.Color("#58a6ff"),
	Warn:    lipgloss.Color("#d29922"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Engineer lipgloss.Style
	Driver   lipgloss.Style
	Notice   lipgloss.Style
	Meta     lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Engineer: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Driver:   lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Notice:   lipgloss.NewStyle().Foreground(t.Warn),
		Meta:     lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Console renders the radio transcript: driver queries, engineer responses,
// and pipeline notices. Safe for concurrent use.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	styles Styles
	clock  func() time.Time
}

// NewConsole creates a Console writing styled lines to w.
func NewConsole(w io.Writer, theme Theme) *Console {
	return &Console{
		w:      w,
		styles: NewStyles(theme),
		clock:  time.Now,
	}
}

func (c *Console) line(prefix lipgloss.Style, tag, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.styles.Meta.Render(c.clock().Format("15:04:05"))
	_, err := fmt.Fprintf(c.w, "%s %s %s\n", ts, prefix.Render(tag), text)
	return err
}

// Driver prints a transcribed driver query.
func (c *Console) Driver(text string) error {
	return c.line(c.styles.Driver, "driver ≫", text)
}

// Engineer prints an engineer response.
func (c *Console) Engineer(text string) error {
	return c.line(c.styles.Engineer, "engineer ≫", text)
}

// Notice prints a pipeline notice, like entering degraded telemetry mode.
func (c *Console) Notice(text string) error {
	return c.line(c.styles.Notice, "·", text)
}

// EmitText prints an engineer response for the given session. It makes the
// Console usable directly as the response text sink.
func (c *Console) EmitText(_, text string) error {
	return c.Engineer(text)
}
