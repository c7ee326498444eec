package validators

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/MKhiriev/go-pos-offline/models"
)

// Field name constants restrict validation to a subset of checks.
const (
	FieldKind    = "kind"
	FieldMethod  = "method"
	FieldPath    = "path"
	FieldPayload = "payload"
	FieldRule    = "rule"
)

var defaultWriteFields = []string{FieldKind, FieldMethod, FieldPath, FieldPayload, FieldRule}

// WriteValidator implements [Validator] for [models.QueuedWrite].
//
// The rule, when set, is an expr expression that must evaluate to a boolean.
// It sees the variables kind, method, path and payload (the decoded JSON
// object), e.g.
//
//	kind != "transaction" || (payload.total_amount > 0 && len(payload.items) > 0)
type WriteValidator struct {
	program *vm.Program
	rule    string
}

// NewWriteValidator compiles rule. An empty rule disables the rule check.
func NewWriteValidator(rule string) (*WriteValidator, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return &WriteValidator{}, nil
	}

	program, err := expr.Compile(rule,
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}

	return &WriteValidator{program: program, rule: rule}, nil
}

// Validate implements [Validator].
func (v *WriteValidator) Validate(ctx context.Context, data any, fields ...string) error {
	switch value := data.(type) {
	case models.QueuedWrite:
		return v.validateWrite(ctx, value, fields...)
	case *models.QueuedWrite:
		if value == nil {
			return ErrUnsupportedType
		}
		return v.validateWrite(ctx, *value, fields...)
	default:
		return ErrUnsupportedType
	}
}

func (v *WriteValidator) validateWrite(_ context.Context, write models.QueuedWrite, fields ...string) error {
	if len(fields) == 0 {
		fields = defaultWriteFields
	}

	var payload map[string]any
	decode := func() error {
		if payload != nil {
			return nil
		}
		return decodePayload(write.Payload, &payload)
	}

	for _, f := range fields {
		switch f {
		case FieldKind:
			if !write.Kind.Valid() {
				return ErrInvalidKind
			}
		case FieldMethod:
			switch strings.ToUpper(write.Method) {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				return ErrInvalidMethod
			}
		case FieldPath:
			if !strings.HasPrefix(write.Path, "/") {
				return ErrInvalidPath
			}
		case FieldPayload:
			if err := decode(); err != nil {
				return err
			}
		case FieldRule:
			if v.program == nil {
				continue
			}
			if err := decode(); err != nil {
				return err
			}
			if err := v.evaluate(write, payload); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *WriteValidator) evaluate(write models.QueuedWrite, payload map[string]any) error {
	env := map[string]any{
		"kind":    string(write.Kind),
		"method":  strings.ToUpper(write.Method),
		"path":    write.Path,
		"payload": payload,
	}

	result, err := expr.Run(v.program, env)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrRuleRejected, v.rule, err)
	}
	if ok, _ := result.(bool); !ok {
		return fmt.Errorf("%w: %q", ErrRuleRejected, v.rule)
	}

	return nil
}

func decodePayload(raw []byte, out *map[string]any) error {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return ErrEmptyPayload
	}
	if err := json.Unmarshal(raw, out); err != nil || *out == nil {
		return ErrMalformedPayload
	}
	return nil
}
