package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"sigs.k8s.io/yaml"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/app"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var errUnknownOutput = errors.New("unknown output format")

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
	dimColor  = color.New(color.Faint)
)

// printStructured writes v as JSON or YAML. It reports false for text
// output, leaving rendering to the caller.
func printStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case outputText, "":
		return false, nil
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return true, err
		}
		_, err = w.Write(data)
		return true, err
	default:
		return true, fmt.Errorf("%w: %q", errUnknownOutput, format)
	}
}

// explain turns control client errors into operator wording.
func explain(op string, err error) error {
	if errors.Is(err, adapter.ErrNetworkUnavailable) {
		return fmt.Errorf("%s: %s: %w", op, app.MsgGatewayUnreachable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func valueOrNA(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "N/A"
	}
	return v
}
