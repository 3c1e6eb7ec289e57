// Package cssast provides a small CSS syntax tree used for stylesheets and
// for the fragments generated per utility class.
package cssast

// Node is any element of a stylesheet: rule, at-rule, declaration or comment.
type Node interface {
	node()
}

// Root is a parsed stylesheet or fragment
type Root struct {
	Nodes []Node
}

// Rule is a qualified rule: selector { nodes }
type Rule struct {
	Selector string
	Nodes    []Node
}

// AtRule is an at-rule. Name excludes the leading '@'.
// Statement at-rules (@import "x";) have Block == false.
type AtRule struct {
	Name   string
	Params string
	Block  bool
	Nodes  []Node
}

// Declaration is a property: value pair
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Comment holds the text between /* and */
type Comment struct {
	Text string
}

func (*Rule) node()        {}
func (*AtRule) node()      {}
func (*Declaration) node() {}
func (*Comment) node()     {}

// Decl builds a declaration
func Decl(property, value string) *Declaration {
	return &Declaration{Property: property, Value: value}
}

// NewRule builds a rule with the given children
func NewRule(selector string, nodes ...Node) *Rule {
	return &Rule{Selector: selector, Nodes: nodes}
}

// NewAtRule builds a block at-rule with the given children
func NewAtRule(name, params string, nodes ...Node) *AtRule {
	return &AtRule{Name: name, Params: params, Block: true, Nodes: nodes}
}

// Declarations returns every declaration below nodes, depth first.
func Declarations(nodes []Node) []*Declaration {
	var decls []*Declaration
	Walk(nodes, func(n Node) bool {
		if d, ok := n.(*Declaration); ok {
			decls = append(decls, d)
		}
		return true
	})
	return decls
}

// Walk visits nodes depth first. Returning false from fn skips the children
// of the visited node.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		switch v := n.(type) {
		case *Rule:
			Walk(v.Nodes, fn)
		case *AtRule:
			Walk(v.Nodes, fn)
		}
	}
}
