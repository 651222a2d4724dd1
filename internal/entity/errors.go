package entity

import "errors"

// Domain errors
var (
	// Oracle errors, recovered inside the conversation core
	ErrOracleUnavailable = errors.New("text oracle unavailable")
	ErrOracleMalformed   = errors.New("malformed oracle output")

	// Schema errors
	ErrUnknownSchema      = errors.New("no schema for platform and challenge type")
	ErrInvalidEnumeration = errors.New("invalid enumeration value")
	ErrInvalidSchema      = errors.New("invalid schema definition")

	// Broken phase invariant, the only class that leaves the core
	ErrStateInconsistency = errors.New("conversation state inconsistency")

	// Conversation errors
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNoResult             = errors.New("final specification not available")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
