package display

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rickgao/upbit-ticker/internal/model"
)

// Board keeps the rolling window of one connection and repaints the table
// to its writer after every record. It satisfies router.Sink.
type Board struct {
	out      io.Writer
	window   *Window[model.TickerRecord]
	loc      *time.Location
	clear    bool
	renderer *lipgloss.Renderer
	header   string
	logger   *slog.Logger

	renders int
}

// BoardOption configures a Board.
type BoardOption func(*Board)

// WithLocation sets the timezone used for the timestamp column.
func WithLocation(loc *time.Location) BoardOption {
	return func(b *Board) {
		if loc != nil {
			b.loc = loc
		}
	}
}

// WithClearScreen toggles the ANSI clear before each repaint.
func WithClearScreen(enabled bool) BoardOption {
	return func(b *Board) {
		b.clear = enabled
	}
}

// WithRenderer sets the lipgloss renderer used to style the header.
func WithRenderer(r *lipgloss.Renderer) BoardOption {
	return func(b *Board) {
		if r != nil {
			b.renderer = r
		}
	}
}

// WithBoardLogger sets the logger.
func WithBoardLogger(logger *slog.Logger) BoardOption {
	return func(b *Board) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBoard creates a board of the given row capacity writing to out.
// Column titles are styled for out's color profile, so a plain writer gets
// the header byte for byte.
func NewBoard(out io.Writer, rows int, opts ...BoardOption) *Board {
	if rows < 1 {
		rows = DefaultRows
	}

	b := &Board{
		out:      out,
		window:   NewWindow[model.TickerRecord](rows),
		loc:      time.Local,
		clear:    true,
		renderer: lipgloss.NewRenderer(out),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.header = styleHeader(b.renderer.NewStyle().Bold(true))
	return b
}

// Push adds rec to the window, evicting the oldest record when full, and repaints.
func (b *Board) Push(rec model.TickerRecord) {
	b.window.Push(rec)
	if err := b.Render(); err != nil {
		b.logger.Warn("failed to render table", "error", err)
	}
}

// Render repaints the table in a single write.
func (b *Board) Render() error {
	var sb strings.Builder
	if b.clear {
		sb.WriteString(ClearScreen)
	}
	renderTable(&sb, b.header, b.window, b.loc)

	b.renders++
	_, err := io.WriteString(b.out, sb.String())
	return err
}

// Records returns the window contents, oldest first.
func (b *Board) Records() []model.TickerRecord {
	return b.window.Items()
}

// Len returns the number of records held.
func (b *Board) Len() int {
	return b.window.Len()
}

// Renders returns how many times the table has been painted.
func (b *Board) Renders() int {
	return b.renders
}
