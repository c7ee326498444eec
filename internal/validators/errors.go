package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidKind      = errors.New("invalid write kind")
	ErrInvalidMethod    = errors.New("invalid write method")
	ErrInvalidPath      = errors.New("invalid write path")
	ErrEmptyPayload     = errors.New("payload is required")
	ErrMalformedPayload = errors.New("payload must be a JSON object")
	ErrInvalidRule      = errors.New("invalid validation rule")
	ErrRuleRejected     = errors.New("payload rejected by validation rule")
)
