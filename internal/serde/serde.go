// Package serde implements the versioned binary encoding of ASR used
// for persisted module interfaces.
//
// The stream is framed by a 4-byte magic and a 2-byte schema version,
// followed by one encoded translation unit. Variant tags are single
// bytes, fields follow in declared order, optionals carry a one-byte
// presence flag, sequences are length-prefixed runs, strings are
// length-prefixed UTF-8, and all fixed-width integers and floats are
// little-endian.
//
// Symbols are assigned an in-stream ordinal on first encounter in
// deterministic pre-order; later references emit the ordinal, so cyclic
// symbol graphs linearize without loops. Encoding is canonical: a
// decoded unit re-encodes to the same bytes.
package serde

import (
	"github.com/lcompilers/lasr/internal/errors"
)

// Magic identifies an ASR byte stream.
var Magic = [4]byte{'L', 'A', 'S', 'R'}

// SchemaVersion is the current schema. The node algebra is closed;
// adding a variant bumps this and readers refuse anything else. There
// is no partial upgrade.
const SchemaVersion uint16 = 1

// Variant tags. Values are part of the wire format and never reused.
const (
	tagUnit uint8 = 0x01

	// Symbols
	tagProgram          uint8 = 0x10
	tagModule           uint8 = 0x11
	tagSubroutine       uint8 = 0x12
	tagFunction         uint8 = 0x13
	tagGenericProcedure uint8 = 0x14
	tagCustomOperator   uint8 = 0x15
	tagExternalSymbol   uint8 = 0x16
	tagDerivedType      uint8 = 0x17
	tagClassType        uint8 = 0x18
	tagClassProcedure   uint8 = 0x19
	tagVariable         uint8 = 0x1A

	// Types
	tagInteger   uint8 = 0x30
	tagReal      uint8 = 0x31
	tagComplex   uint8 = 0x32
	tagCharacter uint8 = 0x33
	tagLogical   uint8 = 0x34
	tagList      uint8 = 0x35
	tagSet       uint8 = 0x36
	tagTuple     uint8 = 0x37
	tagDict      uint8 = 0x38
	tagDerived   uint8 = 0x39
	tagClass     uint8 = 0x3A
	tagPointer   uint8 = 0x3B

	// Expressions
	tagBoolOp          uint8 = 0x50
	tagBinOp           uint8 = 0x51
	tagUnaryOp         uint8 = 0x52
	tagStrOp           uint8 = 0x53
	tagCompare         uint8 = 0x54
	tagFunctionCall    uint8 = 0x55
	tagVar             uint8 = 0x56
	tagConstantInteger uint8 = 0x57
	tagConstantReal    uint8 = 0x58
	tagConstantComplex uint8 = 0x59
	tagConstantLogical uint8 = 0x5A
	tagConstantString  uint8 = 0x5B
	tagIntegerBOZ      uint8 = 0x5C
	tagListConstant    uint8 = 0x5D
	tagSetConstant     uint8 = 0x5E
	tagTupleConstant   uint8 = 0x5F
	tagDictConstant    uint8 = 0x60
	tagArrayRef        uint8 = 0x61
	tagDerivedRef      uint8 = 0x62
	tagCast            uint8 = 0x63

	// Statements
	tagAssignment         uint8 = 0x80
	tagSubroutineCall     uint8 = 0x81
	tagGoTo               uint8 = 0x82
	tagGoToTarget         uint8 = 0x83
	tagReturn             uint8 = 0x84
	tagIf                 uint8 = 0x85
	tagWhileLoop          uint8 = 0x86
	tagDoLoop             uint8 = 0x87
	tagExitLoop           uint8 = 0x88
	tagCycleLoop          uint8 = 0x89
	tagSelect             uint8 = 0x8A
	tagPrint              uint8 = 0x8B
	tagOpen               uint8 = 0x8C
	tagClose              uint8 = 0x8D
	tagRead               uint8 = 0x8E
	tagWrite              uint8 = 0x8F
	tagInquire            uint8 = 0x90
	tagRewind             uint8 = 0x91
	tagFlush              uint8 = 0x92
	tagAllocate           uint8 = 0x93
	tagExplicitDealloc    uint8 = 0x94
	tagImplicitDealloc    uint8 = 0x95
	tagNullify            uint8 = 0x96
	tagAssert             uint8 = 0x97
	tagStop               uint8 = 0x98
	tagErrorStop          uint8 = 0x99
)

// Symbol reference markers.
const (
	refNil    uint8 = 0
	refBack   uint8 = 1
	refInline uint8 = 2
)

func malformed(format string, args ...any) error {
	return errors.New(errors.SER002, format, args...)
}

func schemaMismatch(got uint16) error {
	return errors.New(errors.SER001, "unsupported schema version %d, reader implements %d", got, SchemaVersion)
}
