package asr

// Arena owns every node of one translation unit. Nodes are allocated
// through it, referenced by stable Go pointers, and released together
// with the unit; there is no individual deallocation. Cycles between
// symbols and types are expected and safe because references never own
// their targets.
//
// The arena also hands out symbol-table identities. The pickle, and so
// structural equality, ignores them and prints canonical first-encounter
// ordinals instead.
type Arena struct {
	nextTableID uint64
	nodeCount   int
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// NewUnit creates a translation unit with a fresh global scope owned by
// this arena.
func NewUnit(a *Arena) *TranslationUnit {
	return &TranslationUnit{
		Global: a.NewSymbolTable(nil),
		arena:  a,
	}
}

// NewSymbolTable allocates a scope with the given parent. The parent of
// a procedure-local table is rewired at insertion time; passing the
// intended parent here keeps lookups working during build-up.
func (a *Arena) NewSymbolTable(parent *SymbolTable) *SymbolTable {
	a.nextTableID++
	return &SymbolTable{
		id:     a.nextTableID,
		parent: parent,
		table:  make(map[string]Symbol),
	}
}

// register accounts for a node allocation. The count is diagnostic; the
// nodes themselves are reachable through the unit.
func (a *Arena) register(n Node) {
	a.nodeCount++
	_ = n
}

// NodeCount returns how many nodes were allocated through the arena.
func (a *Arena) NodeCount() int { return a.nodeCount }
