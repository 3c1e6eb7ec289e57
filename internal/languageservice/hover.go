package languageservice

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DoHover shows the CSS of the class under pos
func (s *State) DoHover(doc *Document, pos protocol.Position) *protocol.Hover {
	if !s.Enabled {
		return nil
	}

	offset := doc.OffsetAt(pos)
	list, ok := s.matcher.At(doc.Text, offset)
	if !ok {
		return nil
	}
	class, ok := classAt(list, offset)
	if !ok {
		return nil
	}

	roots := s.DesignSystem.Compile([]string{class.Name})
	if len(roots) != 1 || len(roots[0].Nodes) == 0 {
		return nil
	}

	css := s.withPixelEquivalents(s.DesignSystem.ToCSS(roots[0]))
	rng := doc.RangeOf(class.Offset, class.Offset+len(class.Name))
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: markdownCSS(css),
		},
		Range: &rng,
	}
}
