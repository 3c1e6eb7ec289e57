package cssast

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ErrUnbalanced is returned when braces do not match
var ErrUnbalanced = errors.New("unbalanced braces")

// parserState maintains context while building the tree
type parserState struct {
	lexer *css.Lexer
	depth int // open blocks
}

// Parse parses CSS source into a Root. Nested rules are supported.
func Parse(content string) (*Root, error) {
	state := &parserState{
		lexer: css.NewLexer(parse.NewInputString(content)),
	}

	nodes, err := state.parseBlock()
	if err != nil {
		return nil, err
	}
	return &Root{Nodes: nodes}, nil
}

// parseBlock reads nodes until the closing brace of the current block, or
// EOF at the top level.
func (s *parserState) parseBlock() ([]Node, error) {
	var nodes []Node
	var prelude strings.Builder
	parens := 0 // () and [] nesting inside a prelude

	flushStatement := func() {
		text := collapseSpace(prelude.String())
		prelude.Reset()
		if text == "" {
			return
		}
		nodes = append(nodes, statementNode(text))
	}

	for {
		tt, text := s.lexer.Next()

		switch tt {
		case css.ErrorToken:
			if err := s.lexer.Err(); err != nil && err != io.EOF {
				return nil, fmt.Errorf("css lexer: %w", err)
			}
			if s.depth > 0 {
				return nil, fmt.Errorf("%w: unexpected end of input", ErrUnbalanced)
			}
			flushStatement()
			return nodes, nil

		case css.CommentToken:
			if strings.TrimSpace(prelude.String()) == "" {
				body := strings.TrimSuffix(strings.TrimPrefix(string(text), "/*"), "*/")
				nodes = append(nodes, &Comment{Text: body})
			}

		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			parens++
			prelude.Write(text)

		case css.RightParenthesisToken, css.RightBracketToken:
			if parens > 0 {
				parens--
			}
			prelude.Write(text)

		case css.SemicolonToken:
			if parens > 0 {
				prelude.Write(text)
				continue
			}
			flushStatement()

		case css.LeftBraceToken:
			if parens > 0 {
				prelude.Write(text)
				continue
			}
			header := collapseSpace(prelude.String())
			prelude.Reset()

			s.depth++
			children, err := s.parseBlock()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, blockNode(header, children))

		case css.RightBraceToken:
			if parens > 0 {
				prelude.Write(text)
				continue
			}
			if s.depth == 0 {
				return nil, fmt.Errorf("%w: unexpected '}'", ErrUnbalanced)
			}
			s.depth--
			flushStatement()
			return nodes, nil

		default:
			prelude.Write(text)
		}
	}
}

// statementNode turns "prop: value" or "@name params" into a node
func statementNode(text string) Node {
	if strings.HasPrefix(text, "@") {
		name, params := splitAtRule(text)
		return &AtRule{Name: name, Params: params}
	}

	prop, value, found := strings.Cut(text, ":")
	if !found {
		// Not a declaration; keep the text so nothing is silently dropped.
		return &Declaration{Property: strings.TrimSpace(text)}
	}

	decl := &Declaration{
		Property: strings.TrimSpace(prop),
		Value:    strings.TrimSpace(value),
	}
	if idx := strings.LastIndex(decl.Value, "!"); idx != -1 &&
		strings.EqualFold(strings.TrimSpace(decl.Value[idx+1:]), "important") {
		decl.Important = true
		decl.Value = strings.TrimSpace(decl.Value[:idx])
	}
	return decl
}

// blockNode builds a rule or block at-rule from its header
func blockNode(header string, children []Node) Node {
	if strings.HasPrefix(header, "@") {
		name, params := splitAtRule(header)
		return &AtRule{Name: name, Params: params, Block: true, Nodes: children}
	}
	return &Rule{Selector: header, Nodes: children}
}

func splitAtRule(text string) (string, string) {
	text = strings.TrimPrefix(text, "@")
	idx := strings.IndexAny(text, " \t\n(\"'")
	if idx == -1 {
		return text, ""
	}
	return text[:idx], strings.TrimSpace(text[idx:])
}

// collapseSpace trims and folds whitespace runs into single spaces, leaving
// quoted strings untouched.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var quote rune
	pendingSpace := false
	for _, r := range s {
		if quote != 0 {
			b.WriteRune(r)
			if r == quote {
				quote = 0
			}
			continue
		}
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			pendingSpace = b.Len() > 0
			continue
		case '"', '\'':
			quote = r
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
