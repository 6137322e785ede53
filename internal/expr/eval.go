package expr

// Lookup resolves a predicate against some attribute source.
// known is false when the predicate's key is not recognized.
type Lookup func(p Predicate) (matched bool, known bool)

// Eval interprets the expression using lookup.
//
// Every predicate in the tree is resolved, even when the result is already
// decided, so an unknown predicate is always reported.
func (e *Expression) Eval(lookup Lookup) (bool, error) {
	var unknown *Predicate
	result := eval(e.root, func(p Predicate) bool {
		matched, known := lookup(p)
		if !known && unknown == nil {
			unknown = &p
		}
		return matched
	})
	if unknown != nil {
		return false, &UnknownPredicateError{Source: e.source, Predicate: *unknown}
	}
	return result, nil
}

func eval(n Node, resolve func(Predicate) bool) bool {
	switch n := n.(type) {
	case Predicate:
		return resolve(n)
	case Not:
		return !eval(n.Operand, resolve)
	case All:
		result := true
		for _, op := range n.Operands {
			if !eval(op, resolve) {
				result = false
			}
		}
		return result
	case Any:
		result := false
		for _, op := range n.Operands {
			if eval(op, resolve) {
				result = true
			}
		}
		return result
	default:
		panic("expr: unexpected node type")
	}
}
