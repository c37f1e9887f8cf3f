package asr

// StructuralEqual reports whether two subtrees are isomorphic: same
// variants, same fields in order, same symbol-table structure, ignoring
// arena identity. It is the equivalence induced by pickle equality,
// since the pickle assigns canonical table ordinals on first encounter.
func StructuralEqual(a, b Node) bool {
	return Pickle(a) == Pickle(b)
}

// Digestible returns the canonical byte form equality and digests are
// computed over.
func Digestible(n Node) []byte {
	return []byte(Pickle(n))
}
