package languageservice

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func lineRange(start, end protocol.UInteger) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: 0, Character: start},
		End:   protocol.Position{Line: 0, Character: end},
	}
}

func titles(actions []protocol.CodeAction) []string {
	var out []string
	for _, a := range actions {
		out = append(out, a.Title)
	}
	return out
}

func onlyEdit(t *testing.T, a protocol.CodeAction) protocol.TextEdit {
	t.Helper()
	require.NotNil(t, a.Edit)
	edits := a.Edit.Changes["file:///a.html"]
	require.Len(t, edits, 1)
	return edits[0]
}

func TestDoCodeActions(t *testing.T) {
	s := newTestState(t, `@import "tailwindcss";`)
	doc := NewDocument("file:///a.html", "html", 1, lintDoc)

	actions := s.DoCodeActions(doc, lineRange(0, 60), protocol.CodeActionContext{})
	require.Equal(t, []string{"Delete 'mt-4'", "Delete 'mt-2'", "Replace with 'md:hover:flex'"}, titles(actions))

	assert.Equal(t, protocol.TextEdit{Range: lineRange(17, 22)}, onlyEdit(t, actions[0]))
	assert.Equal(t, protocol.TextEdit{Range: lineRange(12, 17)}, onlyEdit(t, actions[1]))
	assert.Equal(t, protocol.TextEdit{Range: lineRange(27, 40), NewText: "md:hover:flex"}, onlyEdit(t, actions[2]))

	for _, a := range actions {
		assert.Equal(t, protocol.CodeActionKindQuickFix, *a.Kind)
		assert.Len(t, a.Diagnostics, 1)
	}
}

func TestDoCodeActionsRange(t *testing.T) {
	s := newTestState(t, `@import "tailwindcss";`)
	doc := NewDocument("file:///a.html", "html", 1, lintDoc)

	actions := s.DoCodeActions(doc, lineRange(12, 16), protocol.CodeActionContext{})
	assert.Equal(t, []string{"Delete 'mt-4'"}, titles(actions))
}

func TestDoCodeActionsOnly(t *testing.T) {
	s := newTestState(t, `@import "tailwindcss";`)
	doc := NewDocument("file:///a.html", "html", 1, lintDoc)

	actions := s.DoCodeActions(doc, lineRange(0, 60), protocol.CodeActionContext{
		Only: []protocol.CodeActionKind{protocol.CodeActionKindRefactor},
	})
	assert.NotNil(t, actions)
	assert.Empty(t, actions)
}

func TestDoCodeActionsFromClientDiagnostics(t *testing.T) {
	s := newTestState(t, `@import "tailwindcss";`)
	doc := NewDocument("file:///a.html", "html", 1, lintDoc)

	raw, err := json.Marshal(s.DoValidate(doc))
	require.NoError(t, err)
	var diags []protocol.Diagnostic
	require.NoError(t, json.Unmarshal(raw, &diags))

	actions := s.DoCodeActions(doc, lineRange(0, 60), protocol.CodeActionContext{Diagnostics: diags[2:]})
	assert.Equal(t, []string{"Replace with 'md:hover:flex'"}, titles(actions))
}

func TestDeleteClassLastInList(t *testing.T) {
	doc := NewDocument("file:///a.html", "html", 1, `<p class="p-2 p-4">`)

	edit := deleteClass(doc, lineRange(14, 17))
	assert.Equal(t, lineRange(13, 17), edit.Range)
}
