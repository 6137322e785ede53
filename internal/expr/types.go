package expr

import (
	"strconv"
	"strings"
)

// Node is a node in a parsed expression tree.
//
// This is a sealed interface - only types in this package implement it.
//
// Node types:
//   - Predicate: key or key = "value"
//   - Not: negation of a single node
//   - All: conjunction (true when empty)
//   - Any: disjunction (false when empty)
type Node interface {
	node()
	String() string
}

// Predicate is a leaf test against a host attribute.
// HasValue is false for bare identifiers such as `unix`.
type Predicate struct {
	Key      string
	Value    string
	HasValue bool
}

// Not negates its operand.
type Not struct {
	Operand Node
}

// All is true when every operand is true.
type All struct {
	Operands []Node
}

// Any is true when at least one operand is true.
type Any struct {
	Operands []Node
}

func (Predicate) node() {}
func (Not) node()       {}
func (All) node()       {}
func (Any) node()       {}

func (p Predicate) String() string {
	if !p.HasValue {
		return p.Key
	}
	return p.Key + " = " + strconv.Quote(p.Value)
}

func (n Not) String() string {
	return "not(" + n.Operand.String() + ")"
}

func (a All) String() string {
	return "all(" + joinNodes(a.Operands) + ")"
}

func (a Any) String() string {
	return "any(" + joinNodes(a.Operands) + ")"
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}

// Expression is a parsed filter expression.
type Expression struct {
	source string
	root   Node
}

// Source returns the text the expression was parsed from.
func (e *Expression) Source() string {
	return e.source
}

// Root returns the root node of the parsed tree.
func (e *Expression) Root() Node {
	return e.root
}

// String returns the canonical form of the expression.
func (e *Expression) String() string {
	return e.root.String()
}
