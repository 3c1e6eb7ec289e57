package languageservice

import (
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Document is an immutable snapshot of an editor document
type Document struct {
	URI        string
	LanguageID string
	Version    int32
	Text       string

	lines []int // Byte offset of each line start
}

// NewDocument snapshots text
func NewDocument(uri, languageID string, version int32, text string) *Document {
	lines := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &Document{
		URI:        uri,
		LanguageID: languageID,
		Version:    version,
		Text:       text,
		lines:      lines,
	}
}

// OffsetAt converts an LSP position (0-based line, UTF-16 character) to a
// byte offset. Positions past the end of a line clamp to the line end;
// lines past the end of the text clamp to the text end.
func (d *Document) OffsetAt(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(d.lines) {
		return len(d.Text)
	}

	start := d.lines[line]
	end := d.lineEnd(line)

	units := 0
	offset := start
	for offset < end {
		r, size := utf8.DecodeRuneInString(d.Text[offset:end])
		width := 1
		if r > 0xFFFF {
			width = 2 // Surrogate pair
		}
		if units+width > int(pos.Character) {
			break
		}
		units += width
		offset += size
	}
	return offset
}

// PositionAt converts a byte offset to an LSP position
func (d *Document) PositionAt(offset int) protocol.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.Text) {
		offset = len(d.Text)
	}

	lo, hi := 0, len(d.lines)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if d.lines[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	units := 0
	for _, r := range d.Text[d.lines[lo]:offset] {
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return protocol.Position{Line: protocol.UInteger(lo), Character: protocol.UInteger(units)}
}

// RangeOf converts a byte span to an LSP range
func (d *Document) RangeOf(start, end int) protocol.Range {
	return protocol.Range{Start: d.PositionAt(start), End: d.PositionAt(end)}
}

// lineEnd is the offset of the line's newline, excluding a trailing \r
func (d *Document) lineEnd(line int) int {
	end := len(d.Text)
	if line+1 < len(d.lines) {
		end = d.lines[line+1] - 1
	}
	if end > d.lines[line] && d.Text[end-1] == '\r' {
		end--
	}
	return end
}

func rangesOverlap(a, b protocol.Range) bool {
	return !positionBefore(a.End, b.Start) && !positionBefore(b.End, a.Start)
}

func positionBefore(a, b protocol.Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Character < b.Character)
}
