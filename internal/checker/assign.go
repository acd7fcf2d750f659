package checker

// Assignable reports whether a value of type src can be used where dst
// is expected.
//
// The relation is deliberately asymmetric: the signed integer type
// widens to the float type (never the reverse), a mutable reference
// widens to a shared reference with the same referent (never the
// reverse), and Null is accepted by any Option. Nominal types are
// compatible only when their names agree. Unknown is compatible in both
// directions so error recovery does not cascade. The relation is not
// transitively closed; callers needing transitivity must chain explicit
// checks.
func Assignable(src, dst *Type) bool {
	return AssignableWith(src, dst, nil)
}

// Widener reports whether a concrete node category widens into a sum
// category slot. The checker supplies one backed by the pattern tables.
type Widener func(member, sum string) bool

// AssignableWith is Assignable extended with node-category widening: a
// concrete node flows into a sum category slot when the widener
// witnesses its membership. The widener threads through container
// elements.
func AssignableWith(src, dst *Type, widens Widener) bool {
	if src == nil || dst == nil {
		return false
	}

	// Unknown absorbs in both directions.
	if src.Kind == KindUnknown || dst.Kind == KindUnknown {
		return true
	}

	// Never is assignable to everything (a diverging expression fits
	// any slot); nothing is assignable to Never.
	if src.Kind == KindNever {
		return true
	}

	// Null fits any Option.
	if src.Kind == KindNull && dst.Kind == KindOption {
		return true
	}

	// One-way numeric widening.
	if src.Kind == KindInt && dst.Kind == KindFloat {
		return true
	}

	// Read-widening: &mut T usable as &T, same referent.
	if src.Kind == KindRef && dst.Kind == KindRef {
		if src.Mutable == dst.Mutable || (src.Mutable && !dst.Mutable) {
			return assignableRefInner(src.Inner(), dst.Inner())
		}
		return false
	}

	if src.Kind != dst.Kind {
		return false
	}

	switch src.Kind {
	case KindNode:
		if src.Name == dst.Name {
			return true
		}
		return widens != nil && widens(src.Name, dst.Name)
	case KindStruct, KindEnum, KindModule:
		// Nominal: identity is the name, never the shape.
		return src.Name == dst.Name
	case KindList, KindOption, KindResult, KindMap, KindSet, KindTuple:
		if len(src.Args) != len(dst.Args) {
			return false
		}
		for i := range src.Args {
			if !AssignableWith(src.Args[i], dst.Args[i], widens) {
				return false
			}
		}
		return true
	case KindFunc:
		if len(src.Args) != len(dst.Args) {
			return false
		}
		// Parameters invariant, return assignable.
		for i := range src.Args {
			if !src.Args[i].Equal(dst.Args[i]) {
				return false
			}
		}
		if src.Ret == nil || dst.Ret == nil {
			return src.Ret == dst.Ret
		}
		return AssignableWith(src.Ret, dst.Ret, widens)
	default:
		// Scalars: same kind is enough.
		return true
	}
}

// assignableRefInner handles the referent of a reference conversion:
// identical referents are required, but Unknown still absorbs.
func assignableRefInner(src, dst *Type) bool {
	if src.IsUnknown() || dst.IsUnknown() {
		return true
	}
	return src.Equal(dst)
}
