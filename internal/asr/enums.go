package asr

// Leaf enums of the node algebra. Each enum is total within a schema
// version; adding a value is a schema change and bumps serde.SchemaVersion.

// ABI declares where a symbol's implementation lives and under what
// linkage convention.
type ABI uint8

const (
	ABISource ABI = iota
	ABILFortranModule
	ABIGFortranModule
	ABIBindC
	ABIInteractive
	ABIIntrinsic
)

var abiNames = [...]string{
	ABISource:         "Source",
	ABILFortranModule: "LFortranModule",
	ABIGFortranModule: "GFortranModule",
	ABIBindC:          "BindC",
	ABIInteractive:    "Interactive",
	ABIIntrinsic:      "Intrinsic",
}

func (a ABI) String() string { return abiNames[a] }

// Access is symbol visibility.
type Access uint8

const (
	AccessPublic Access = iota
	AccessPrivate
)

var accessNames = [...]string{
	AccessPublic:  "Public",
	AccessPrivate: "Private",
}

func (a Access) String() string { return accessNames[a] }

// Intent is the dataflow direction of a variable.
type Intent uint8

const (
	IntentLocal Intent = iota
	IntentIn
	IntentOut
	IntentInOut
	IntentReturnVar
	IntentUnspecified
)

var intentNames = [...]string{
	IntentLocal:       "Local",
	IntentIn:          "In",
	IntentOut:         "Out",
	IntentInOut:       "InOut",
	IntentReturnVar:   "ReturnVar",
	IntentUnspecified: "Unspecified",
}

func (i Intent) String() string { return intentNames[i] }

// StorageType is the storage class of a variable.
type StorageType uint8

const (
	StorageDefault StorageType = iota
	StorageSave
	StorageParameter
	StorageAllocatable
)

var storageNames = [...]string{
	StorageDefault:     "Default",
	StorageSave:        "Save",
	StorageParameter:   "Parameter",
	StorageAllocatable: "Allocatable",
}

func (s StorageType) String() string { return storageNames[s] }

// Presence distinguishes required from optional arguments.
type Presence uint8

const (
	PresenceRequired Presence = iota
	PresenceOptional
)

var presenceNames = [...]string{
	PresenceRequired: "Required",
	PresenceOptional: "Optional",
}

func (p Presence) String() string { return presenceNames[p] }

// DefType distinguishes full implementations from interface-only
// declarations.
type DefType uint8

const (
	DefImplementation DefType = iota
	DefInterface
)

var defTypeNames = [...]string{
	DefImplementation: "Implementation",
	DefInterface:      "Interface",
}

func (d DefType) String() string { return defTypeNames[d] }

// BoolOpKind is a logical connective.
type BoolOpKind uint8

const (
	BoolAnd BoolOpKind = iota
	BoolOr
	BoolXor
	BoolNEqv
	BoolEqv
)

var boolOpNames = [...]string{
	BoolAnd:  "And",
	BoolOr:   "Or",
	BoolXor:  "Xor",
	BoolNEqv: "NEqv",
	BoolEqv:  "Eqv",
}

func (op BoolOpKind) String() string { return boolOpNames[op] }

// BinOpKind is an arithmetic operator.
type BinOpKind uint8

const (
	BinAdd BinOpKind = iota
	BinSub
	BinMul
	BinDiv
	BinPow
)

var binOpNames = [...]string{
	BinAdd: "Add",
	BinSub: "Sub",
	BinMul: "Mul",
	BinDiv: "Div",
	BinPow: "Pow",
}

func (op BinOpKind) String() string { return binOpNames[op] }

// UnaryOpKind is a unary operator.
type UnaryOpKind uint8

const (
	UnaryNot UnaryOpKind = iota
	UnaryUSub
	UnaryUAdd
	UnaryInvert
)

var unaryOpNames = [...]string{
	UnaryNot:    "Not",
	UnaryUSub:   "USub",
	UnaryUAdd:   "UAdd",
	UnaryInvert: "Invert",
}

func (op UnaryOpKind) String() string { return unaryOpNames[op] }

// StrOpKind is a string operator.
type StrOpKind uint8

const (
	StrConcat StrOpKind = iota
	StrRepeat
)

var strOpNames = [...]string{
	StrConcat: "Concat",
	StrRepeat: "Repeat",
}

func (op StrOpKind) String() string { return strOpNames[op] }

// CmpOpKind is a comparison operator.
type CmpOpKind uint8

const (
	CmpEq CmpOpKind = iota
	CmpNotEq
	CmpLt
	CmpLtE
	CmpGt
	CmpGtE
)

var cmpOpNames = [...]string{
	CmpEq:    "Eq",
	CmpNotEq: "NotEq",
	CmpLt:    "Lt",
	CmpLtE:   "LtE",
	CmpGt:    "Gt",
	CmpGtE:   "GtE",
}

func (op CmpOpKind) String() string { return cmpOpNames[op] }

// CastKind identifies the conversion a Cast performs.
type CastKind uint8

const (
	CastRealToInteger CastKind = iota
	CastIntegerToReal
	CastLogicalToReal
	CastRealToReal
	CastIntegerToInteger
	CastRealToComplex
	CastIntegerToComplex
	CastIntegerToLogical
	CastComplexToComplex
	CastComplexToReal
)

var castKindNames = [...]string{
	CastRealToInteger:    "RealToInteger",
	CastIntegerToReal:    "IntegerToReal",
	CastLogicalToReal:    "LogicalToReal",
	CastRealToReal:       "RealToReal",
	CastIntegerToInteger: "IntegerToInteger",
	CastRealToComplex:    "RealToComplex",
	CastIntegerToComplex: "IntegerToComplex",
	CastIntegerToLogical: "IntegerToLogical",
	CastComplexToComplex: "ComplexToComplex",
	CastComplexToReal:    "ComplexToReal",
}

func (k CastKind) String() string { return castKindNames[k] }

// Boz is the radix of a BOZ literal.
type Boz uint8

const (
	BozBinary Boz = iota
	BozHex
	BozOctal
)

var bozNames = [...]string{
	BozBinary: "Binary",
	BozHex:    "Hex",
	BozOctal:  "Octal",
}

func (b Boz) String() string { return bozNames[b] }
