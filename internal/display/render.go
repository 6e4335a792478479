package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rickgao/upbit-ticker/internal/model"
)

// Table layout.
const (
	ClearScreen = "\x1b[2J\x1b[1;1H"
	Header      = "|  Code      | Trade Price   | Trade Volume | Change | Change Rate | Local Timestamp       |"
	Separator   = "|------------|---------------|--------------|--------|-------------|-----------------------|"

	rowFormat       = "| %-10s | %-13.2f | %-12.4f | %-6s | %-11.4f | %-21s |"
	timestampLayout = "2006-01-02 15:04:05"
)

// FormatRow renders one record as a table row with its timestamp in loc.
func FormatRow(rec model.TickerRecord, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return fmt.Sprintf(rowFormat,
		rec.Code,
		rec.TradePrice,
		rec.TradeVolume,
		rec.Change,
		rec.ChangeRate,
		rec.Time().In(loc).Format(timestampLayout),
	)
}

// styleHeader applies style to each column title of Header, leaving the
// borders and padding untouched so the visible text stays aligned.
func styleHeader(style lipgloss.Style) string {
	cells := strings.Split(Header, "|")
	for i, cell := range cells {
		title := strings.TrimSpace(cell)
		if title == "" {
			continue
		}
		at := strings.Index(cell, title)
		cells[i] = cell[:at] + style.Render(title) + cell[at+len(title):]
	}
	return strings.Join(cells, "|")
}

// renderTable writes the full table, oldest record first.
func renderTable(sb *strings.Builder, header string, window *Window[model.TickerRecord], loc *time.Location) {
	sb.WriteString(header)
	sb.WriteByte('\n')
	sb.WriteString(Separator)
	sb.WriteByte('\n')
	for i := 0; i < window.Len(); i++ {
		sb.WriteString(FormatRow(window.At(i), loc))
		sb.WriteByte('\n')
	}
}
