package languageservice

import (
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/yacobolo/twbridge/internal/scanner"
)

var triggerSuggest = &protocol.Command{Title: "", Command: "editor.action.triggerSuggest"}

// DoComplete returns completions for the class token before pos, or nil when
// pos is outside every class list.
func (s *State) DoComplete(doc *Document, pos protocol.Position) *protocol.CompletionList {
	if !s.Enabled {
		return nil
	}

	offset := doc.OffsetAt(pos)
	list, ok := s.matcher.At(doc.Text, offset)
	if !ok {
		return nil
	}

	start := tokenStart(doc.Text, list, offset)
	token := doc.Text[start:offset]
	editRange := doc.RangeOf(start, offset)

	variants, partial := "", token
	if parts := splitVariants(token); len(parts) > 1 {
		partial = parts[len(parts)-1]
		variants = token[:len(token)-len(partial)]
	}

	prefix := s.DesignSystem.Prefix()
	if prefix != "" && !strings.HasPrefix(variants, prefix+":") {
		// Every class of a prefixed design system starts with the prefix
		item := s.variantItem(prefix, variants, 0, editRange)
		return &protocol.CompletionList{Items: []protocol.CompletionItem{item}}
	}

	important := ""
	if strings.HasPrefix(partial, "!") {
		important = "!"
		partial = partial[1:]
	}

	items := []protocol.CompletionItem{}
	if important == "" && !strings.ContainsAny(partial, "[/") {
		items = append(items, s.variantItems(variants, partial, editRange)...)
	}
	items = append(items, s.classItems(variants+important, partial, editRange)...)

	return &protocol.CompletionList{Items: items}
}

func (s *State) variantItems(variants, partial string, editRange protocol.Range) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	prefix := s.DesignSystem.Prefix()

	for _, v := range s.Variants {
		if v.IsArbitrary || (prefix != "" && v.Name == prefix) {
			continue
		}

		names := []string{v.Name}
		if v.HasDash {
			names = names[:0]
			for _, value := range v.Values {
				names = append(names, v.Name+"-"+value)
			}
		}

		for _, name := range names {
			if strings.HasPrefix(name, partial) {
				items = append(items, s.variantItem(name, variants, len(items), editRange))
			}
		}
	}
	return items
}

func (s *State) variantItem(name, variants string, i int, editRange protocol.Range) protocol.CompletionItem {
	kind := protocol.CompletionItemKindModule
	text := variants + name + ":"
	return protocol.CompletionItem{
		Label:      name + ":",
		Kind:       &kind,
		SortText:   ptr(fmt.Sprintf("0%05d", i)),
		FilterText: &text,
		TextEdit:   protocol.TextEdit{Range: editRange, NewText: text},
		Command:    triggerSuggest,
	}
}

func (s *State) classItems(variants, partial string, editRange protocol.Range) []protocol.CompletionItem {
	var items []protocol.CompletionItem

	// bg-red-500/5 completes modifiers of a known class
	if name, modifier, ok := strings.Cut(partial, "/"); ok {
		info, exists := s.ClassList[name]
		if !exists {
			return nil
		}
		for _, m := range info.Modifiers {
			if strings.HasPrefix(m, modifier) {
				items = append(items, s.classItem(info, name+"/"+m, variants, len(items), editRange))
			}
		}
		return items
	}

	for _, name := range s.classNames {
		if strings.HasPrefix(name, partial) {
			items = append(items, s.classItem(s.ClassList[name], name, variants, len(items), editRange))
		}
	}
	return items
}

func (s *State) classItem(info *ClassInfo, label, variants string, i int, editRange protocol.Range) protocol.CompletionItem {
	kind := protocol.CompletionItemKindConstant
	if info.Color != nil {
		kind = protocol.CompletionItemKindColor
	}
	text := variants + label
	return protocol.CompletionItem{
		Label:      label,
		Kind:       &kind,
		SortText:   ptr(fmt.Sprintf("1%05d", i)),
		FilterText: &text,
		TextEdit:   protocol.TextEdit{Range: editRange, NewText: text},
		Data:       map[string]any{"candidate": text},
	}
}

// ResolveCompletionItem fills in the detail and documentation of an item
// returned by DoComplete. Items that already carry documentation are
// returned unchanged.
func (s *State) ResolveCompletionItem(item protocol.CompletionItem) protocol.CompletionItem {
	if item.Documentation != nil || !s.Enabled {
		return item
	}

	candidate := dataString(item.Data, "candidate")
	if candidate == "" {
		return item
	}

	roots := s.DesignSystem.Compile([]string{candidate})
	if len(roots) != 1 || len(roots[0].Nodes) == 0 {
		return item
	}

	detail := declarationSummary(roots[0])
	item.Detail = &detail

	if c, alpha := s.colorOf(roots[0]); c != nil && item.Kind != nil && *item.Kind == protocol.CompletionItemKindColor {
		item.Documentation = colorDocumentation(c.Clamped().Hex(), alpha)
		return item
	}

	item.Documentation = protocol.MarkupContent{
		Kind:  protocol.MarkupKindMarkdown,
		Value: markdownCSS(s.withPixelEquivalents(s.DesignSystem.ToCSS(roots[0]))),
	}
	return item
}

// colorDocumentation is what editors render as a swatch
func colorDocumentation(hex string, alpha float64) string {
	if alpha >= 1 {
		return hex
	}
	return fmt.Sprintf("%s%02x", hex, int(alpha*255+0.5))
}

func dataString(data any, key string) string {
	switch d := data.(type) {
	case map[string]any:
		s, _ := d[key].(string)
		return s
	case map[string]string:
		return d[key]
	}
	return ""
}

// tokenStart walks back from offset to the start of the class token
func tokenStart(text string, list scanner.ClassList, offset int) int {
	start := offset
	for start > list.Offset && !isSpace(text[start-1]) {
		start--
	}
	return start
}

// classAt returns the class token spanning offset, end inclusive
func classAt(list scanner.ClassList, offset int) (scanner.Class, bool) {
	for _, c := range list.Classes() {
		if offset >= c.Offset && offset <= c.Offset+len(c.Name) {
			return c, true
		}
	}
	return scanner.Class{}, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// splitVariants splits a class on the ':' separators outside brackets
func splitVariants(class string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(class); i++ {
		switch class[i] {
		case '[', '(':
			depth++
		case ']', ')':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				parts = append(parts, class[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, class[start:])
}

func ptr[T any](v T) *T {
	return &v
}
