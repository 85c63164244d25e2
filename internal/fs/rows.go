package fs

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"
)

const (
	FolderGlyph = "📁"
	FileGlyph   = "📄"

	// DirMarker replaces the size column for folders.
	DirMarker = "<DIR>"

	// DefaultNameWidth is the display width of the name column.
	DefaultNameWidth = 38

	rowTimeLayout    = "01/02 15:04"
	detailTimeLayout = "2006-01-02 15:04:05"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// DisplayRow is the fixed-width projection of an Entry. Row i of Rows
// always describes entry i of the slice it was built from.
type DisplayRow struct {
	Glyph    string
	Name     string
	Size     string // "<DIR>" for folders
	Modified string // empty for folders
	Text     string
}

// FormatSize renders a byte count with binary prefixes and one decimal:
// 0 -> "0.0B", 1536 -> "1.5KB".
func FormatSize(size uint64) string {
	value := float64(size)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f%s", value, sizeUnits[unit])
}

// FormatRowTime renders a timestamp as MM/DD HH:MM.
func FormatRowTime(t time.Time) string {
	return t.Format(rowTimeLayout)
}

// FormatDetailTime renders a timestamp as YYYY-MM-DD HH:MM:SS.
func FormatDetailTime(t time.Time) string {
	return t.Format(detailTimeLayout)
}

// Row formats a single entry. nameWidth <= 0 uses DefaultNameWidth.
func Row(e Entry, nameWidth int) DisplayRow {
	if nameWidth <= 0 {
		nameWidth = DefaultNameWidth
	}
	name := padName(e.Name, nameWidth)

	if e.IsDir {
		return DisplayRow{
			Glyph: FolderGlyph,
			Name:  e.Name,
			Size:  DirMarker,
			Text:  fmt.Sprintf("%s %s %s", FolderGlyph, name, DirMarker),
		}
	}

	size := FormatSize(e.Size)
	modified := FormatRowTime(e.ModTime)
	return DisplayRow{
		Glyph:    FileGlyph,
		Name:     e.Name,
		Size:     size,
		Modified: modified,
		Text:     fmt.Sprintf("%s %s %8s %s", FileGlyph, name, size, modified),
	}
}

// Rows formats entries in order.
func Rows(entries []Entry, nameWidth int) []DisplayRow {
	rows := make([]DisplayRow, len(entries))
	for i, e := range entries {
		rows[i] = Row(e, nameWidth)
	}
	return rows
}

// Header is the one-line caption shown above a listing.
func Header(dir string, count int) string {
	return fmt.Sprintf("Current Directory: %s (%d items)", dir, count)
}

// padName truncates to width display cells and pads with spaces, so wide
// runes (CJK, emoji) keep the columns aligned.
func padName(name string, width int) string {
	if runewidth.StringWidth(name) > width {
		name = runewidth.Truncate(name, width, "…")
	}
	return runewidth.FillRight(name, width)
}
