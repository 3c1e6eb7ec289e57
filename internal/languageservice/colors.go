package languageservice

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// GetDocumentColors returns a color for every class that sets one. It
// returns nil when color decorators are turned off.
func (s *State) GetDocumentColors(doc *Document) []protocol.ColorInformation {
	if !s.Enabled || !s.Settings.ColorDecorators {
		return nil
	}

	colors := []protocol.ColorInformation{}
	for _, list := range s.matcher.FindAll(doc.Text) {
		if !list.Terminated {
			continue
		}
		for _, class := range list.Classes() {
			c, alpha := s.classColor(class.Name)
			if c == nil {
				continue
			}
			colors = append(colors, protocol.ColorInformation{
				Range: doc.RangeOf(class.Offset, class.Offset+len(class.Name)),
				Color: protocol.Color{
					Red:   protocol.Decimal(c.R),
					Green: protocol.Decimal(c.G),
					Blue:  protocol.Decimal(c.B),
					Alpha: protocol.Decimal(alpha),
				},
			})
		}
	}
	return colors
}
