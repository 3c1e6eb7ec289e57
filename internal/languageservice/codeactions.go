package languageservice

import (
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DoCodeActions returns quick fixes for the diagnostics in rng. When the
// context carries no diagnostics, the range is validated again.
func (s *State) DoCodeActions(doc *Document, rng protocol.Range, ctx protocol.CodeActionContext) []protocol.CodeAction {
	actions := []protocol.CodeAction{}
	if !s.Enabled || !wantsKind(ctx.Only, protocol.CodeActionKindQuickFix) {
		return actions
	}

	diagnostics := ctx.Diagnostics
	if len(diagnostics) == 0 {
		diagnostics = s.validateRange(doc, rng)
	}

	for _, d := range diagnostics {
		data, ok := diagnosticData(d.Data)
		if !ok {
			continue
		}

		switch data.Rule {
		case RuleCSSConflict:
			for _, other := range data.Conflicts {
				actions = append(actions, quickFix(doc, d,
					fmt.Sprintf("Delete '%s'", other.ClassName),
					deleteClass(doc, other.Range)))
			}
		case RuleRecommendedVariantOrder:
			for _, suggestion := range data.Suggestions {
				actions = append(actions, quickFix(doc, d,
					fmt.Sprintf("Replace with '%s'", suggestion),
					protocol.TextEdit{Range: d.Range, NewText: suggestion}))
			}
		}
	}
	return actions
}

func wantsKind(only []protocol.CodeActionKind, kind protocol.CodeActionKind) bool {
	if len(only) == 0 {
		return true
	}
	for _, k := range only {
		if k == kind || k == "" {
			return true
		}
	}
	return false
}

func quickFix(doc *Document, d protocol.Diagnostic, title string, edit protocol.TextEdit) protocol.CodeAction {
	kind := protocol.CodeActionKindQuickFix
	return protocol.CodeAction{
		Title:       title,
		Kind:        &kind,
		Diagnostics: []protocol.Diagnostic{d},
		Edit: &protocol.WorkspaceEdit{
			Changes: map[protocol.DocumentUri][]protocol.TextEdit{
				protocol.DocumentUri(doc.URI): {edit},
			},
		},
	}
}

// deleteClass removes the class at rng together with the whitespace after
// it, or before it when it ends the list.
func deleteClass(doc *Document, rng protocol.Range) protocol.TextEdit {
	start, end := doc.OffsetAt(rng.Start), doc.OffsetAt(rng.End)

	trailing := end
	for trailing < len(doc.Text) && (doc.Text[trailing] == ' ' || doc.Text[trailing] == '\t') {
		trailing++
	}
	if trailing > end && trailing < len(doc.Text) && !isQuote(doc.Text[trailing]) {
		end = trailing
	} else {
		for start > 0 && (doc.Text[start-1] == ' ' || doc.Text[start-1] == '\t') {
			start--
		}
	}
	return protocol.TextEdit{Range: doc.RangeOf(start, end), NewText: ""}
}

func isQuote(c byte) bool {
	return c == '"' || c == '\'' || c == '`'
}
