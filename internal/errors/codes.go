// Package errors provides centralized error code definitions for the ASR core.
// All error codes follow a consistent taxonomy for structured error reporting.
package errors

// Error code constants organized by component.
// Each constant represents a specific error condition with structured reporting.
const (
	// ============================================================================
	// Symbol Table Errors (SYM###)
	// ============================================================================

	// SYM001 indicates an insertion collided with an existing name in a scope
	SYM001 = "SYM001"

	// SYM002 indicates a lookup from a site produced no symbol
	SYM002 = "SYM002"

	// SYM003 indicates an external symbol path did not locate a target
	SYM003 = "SYM003"

	// ============================================================================
	// Builder Typing Errors (TYP###)
	// ============================================================================

	// TYP001 indicates a constructor was given inconsistent types
	TYP001 = "TYP001"

	// TYP002 indicates a folded value is not a constant node
	TYP002 = "TYP002"

	// TYP003 indicates a folded value's type differs from the outer type
	TYP003 = "TYP003"

	// TYP004 indicates dimensions attached where none are permitted
	TYP004 = "TYP004"

	// ============================================================================
	// Validation Errors (VAL###)
	// ============================================================================

	// VAL001 indicates an unmatched goto/target pair in a procedure
	VAL001 = "VAL001"

	// VAL002 indicates a function without exactly one return variable
	VAL002 = "VAL002"

	// VAL003 indicates an ABI/definition-type/body combination that is not allowed
	VAL003 = "VAL003"

	// VAL004 indicates a folded value violating the constant-value contract
	VAL004 = "VAL004"

	// VAL005 indicates an expression whose type is inconsistent with its kind
	VAL005 = "VAL005"

	// VAL006 indicates a derived type whose parent is not a derived type
	VAL006 = "VAL006"

	// VAL007 indicates a scope that is its own ancestor
	VAL007 = "VAL007"

	// VAL008 indicates an external symbol whose declared path is unresolvable
	VAL008 = "VAL008"

	// ============================================================================
	// Serialization Errors (SER###)
	// ============================================================================

	// SER001 indicates a stream with an unsupported schema version
	SER001 = "SER001"

	// SER002 indicates an impossible tag, length, or premature end of stream
	SER002 = "SER002"

	// ============================================================================
	// Module File Errors (MOD###)
	// ============================================================================

	// MOD001 indicates a module file with a bad magic number
	MOD001 = "MOD001"

	// MOD002 indicates trailing bytes after the encoded unit
	MOD002 = "MOD002"

	// MOD003 indicates a module file whose unit is not a single module
	MOD003 = "MOD003"

	// MOD004 indicates a cache index entry pointing at a missing file
	MOD004 = "MOD004"

	// ============================================================================
	// Foreign Loader Errors (FGN###)
	// ============================================================================

	// FGN001 indicates a malformed foreign declaration manifest
	FGN001 = "FGN001"

	// FGN002 indicates a manifest type that has no ASR rendering
	FGN002 = "FGN002"
)
