package languageservice

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/yacobolo/twbridge/internal/cssast"
	"github.com/yacobolo/twbridge/internal/scanner"
)

// Lint rules
const (
	RuleCSSConflict             = "cssConflict"
	RuleRecommendedVariantOrder = "recommendedVariantOrder"
)

const diagnosticSource = "twbridge"

// ConflictingClass is a class another class conflicts with
type ConflictingClass struct {
	ClassName string         `json:"className"`
	Range     protocol.Range `json:"range"`
}

// DiagnosticData is attached to every diagnostic so code actions can fix it
// without validating again.
type DiagnosticData struct {
	Rule        string             `json:"rule"`
	ClassName   string             `json:"className"`
	Conflicts   []ConflictingClass `json:"conflicts,omitempty"`
	Suggestions []string           `json:"suggestions,omitempty"`
}

// DoValidate runs the enabled lint rules. The result is never nil.
func (s *State) DoValidate(doc *Document) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	if !s.Enabled {
		return diagnostics
	}

	for _, list := range s.matcher.FindAll(doc.Text) {
		if !list.Terminated {
			continue
		}
		classes := list.Classes()
		if sev, ok := severityOf(s.Settings.Lint.CSSConflict); ok {
			diagnostics = append(diagnostics, s.cssConflicts(doc, classes, sev)...)
		}
		if sev, ok := severityOf(s.Settings.Lint.RecommendedVariantOrder); ok {
			diagnostics = append(diagnostics, s.variantOrder(doc, classes, sev)...)
		}
	}
	return diagnostics
}

// validateRange returns the diagnostics overlapping rng
func (s *State) validateRange(doc *Document, rng protocol.Range) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	for _, d := range s.DoValidate(doc) {
		if rangesOverlap(d.Range, rng) {
			out = append(out, d)
		}
	}
	return out
}

// severityOf maps a setting to an LSP severity; false disables the rule
func severityOf(sev Severity) (protocol.DiagnosticSeverity, bool) {
	switch sev {
	case SeverityError:
		return protocol.DiagnosticSeverityError, true
	case SeverityWarning:
		return protocol.DiagnosticSeverityWarning, true
	case SeverityInfo:
		return protocol.DiagnosticSeverityInformation, true
	case SeverityHint:
		return protocol.DiagnosticSeverityHint, true
	}
	return 0, false
}

type classProperties struct {
	class      scanner.Class
	key        string
	properties string
}

// cssConflicts flags classes of one list that set the same properties under
// the same variants.
func (s *State) cssConflicts(doc *Document, classes []scanner.Class, sev protocol.DiagnosticSeverity) []protocol.Diagnostic {
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Name
	}
	roots := s.DesignSystem.Compile(names)

	var props []classProperties
	groups := make(map[string][]int)
	for i, c := range classes {
		if i >= len(roots) {
			break
		}
		properties := propertySet(roots[i])
		if properties == "" {
			continue
		}
		key := variantKey(c.Name) + "|" + properties
		groups[key] = append(groups[key], len(props))
		props = append(props, classProperties{class: c, key: key, properties: properties})
	}

	var out []protocol.Diagnostic
	for _, p := range props {
		group := groups[p.key]
		if len(group) < 2 {
			continue
		}

		data := DiagnosticData{Rule: RuleCSSConflict, ClassName: p.class.Name}
		var quoted []string
		var related []protocol.DiagnosticRelatedInformation
		for _, j := range group {
			other := props[j].class
			if other.Offset == p.class.Offset {
				continue
			}
			rng := doc.RangeOf(other.Offset, other.Offset+len(other.Name))
			data.Conflicts = append(data.Conflicts, ConflictingClass{ClassName: other.Name, Range: rng})
			quoted = append(quoted, "'"+other.Name+"'")
			related = append(related, protocol.DiagnosticRelatedInformation{
				Location: protocol.Location{URI: protocol.DocumentUri(doc.URI), Range: rng},
				Message:  other.Name,
			})
		}

		noun := "properties"
		if !strings.Contains(p.properties, ",") {
			noun = "property"
		}
		d := s.diagnostic(doc, p.class, sev, data,
			fmt.Sprintf("'%s' applies the same CSS %s as %s.", p.class.Name, noun, joinWithAnd(quoted)))
		if s.Capabilities.DiagnosticRelatedInformation {
			d.RelatedInformation = related
		}
		out = append(out, d)
	}
	return out
}

// variantOrder flags classes whose variants are not in the recommended
// order: outermost variant first, i.e. later-registered variants to the left.
func (s *State) variantOrder(doc *Document, classes []scanner.Class, sev protocol.DiagnosticSeverity) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	for _, c := range classes {
		order, ok := s.DesignSystem.CandidateVariantOrder(c.Name)
		if !ok || len(order) < 2 {
			continue
		}

		parts := splitVariants(c.Name)
		lead := 0
		if s.DesignSystem.Prefix() != "" {
			lead = 1
		}
		variants := parts[lead : len(parts)-1]
		if len(variants) != len(order) {
			continue
		}

		sorted := true
		for i := 1; i < len(order); i++ {
			if order[i] > order[i-1] {
				sorted = false
				break
			}
		}
		if sorted {
			continue
		}

		idx := make([]int, len(variants))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return order[idx[a]] > order[idx[b]]
		})
		reordered := append([]string(nil), parts[:lead]...)
		for _, i := range idx {
			reordered = append(reordered, variants[i])
		}
		suggestion := strings.Join(append(reordered, parts[len(parts)-1]), ":")

		data := DiagnosticData{
			Rule:        RuleRecommendedVariantOrder,
			ClassName:   c.Name,
			Suggestions: []string{suggestion},
		}
		out = append(out, s.diagnostic(doc, c, sev, data,
			"Variants are not in the recommended order, which may cause unexpected CSS output."))
	}
	return out
}

func (s *State) diagnostic(doc *Document, c scanner.Class, sev protocol.DiagnosticSeverity, data DiagnosticData, message string) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range:    doc.RangeOf(c.Offset, c.Offset+len(c.Name)),
		Severity: &sev,
		Code:     &protocol.IntegerOrString{Value: data.Rule},
		Source:   ptr(diagnosticSource),
		Message:  message,
		Data:     data,
	}
}

// propertySet returns the sorted property names a class sets
func propertySet(root *cssast.Root) string {
	if root == nil {
		return ""
	}
	seen := make(map[string]bool)
	var props []string
	for _, d := range cssast.Declarations(root.Nodes) {
		if !seen[d.Property] {
			seen[d.Property] = true
			props = append(props, d.Property)
		}
	}
	sort.Strings(props)
	return strings.Join(props, ",")
}

// variantKey identifies the variants and importance of a class
func variantKey(class string) string {
	parts := splitVariants(class)
	base := parts[len(parts)-1]
	important := strings.HasPrefix(base, "!") || strings.HasSuffix(base, "!")
	return fmt.Sprintf("%s!%t", strings.Join(parts[:len(parts)-1], ":"), important)
}

func joinWithAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

// diagnosticData recovers DiagnosticData from a diagnostic that may have
// travelled through JSON.
func diagnosticData(v any) (DiagnosticData, bool) {
	switch d := v.(type) {
	case DiagnosticData:
		return d, true
	case *DiagnosticData:
		if d == nil {
			return DiagnosticData{}, false
		}
		return *d, true
	case nil:
		return DiagnosticData{}, false
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return DiagnosticData{}, false
	}
	var data DiagnosticData
	if err := json.Unmarshal(raw, &data); err != nil || data.Rule == "" {
		return DiagnosticData{}, false
	}
	return data, true
}
