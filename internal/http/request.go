package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"cashflow/internal/core"
)

const maxBodyBytes = 64 << 10

// decodeJSON reads a single JSON object into dst, rejecting unknown fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: body larger than %d bytes", errBadRequest, maxErr.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: empty body", errBadRequest)
		default:
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON object", errBadRequest)
	}
	return nil
}

// sanitizeInput trims whitespace and strips control characters except tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// parseDateField parses a required YYYY-MM-DD value.
func parseDateField(name, value string) (core.Date, error) {
	if strings.TrimSpace(value) == "" {
		return core.Date{}, fmt.Errorf("%w: %s is required", errBadRequest, name)
	}
	d, err := core.ParseDate(value)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", errBadRequest, name)
	}
	return d, nil
}

// parseOptionalDate is parseDateField where an empty value yields the zero date.
func parseOptionalDate(name, value string) (core.Date, error) {
	if strings.TrimSpace(value) == "" {
		return core.Date{}, nil
	}
	return parseDateField(name, value)
}

// parseAmount reads a positive decimal amount, given as a JSON number or numeric string, into cents.
func parseAmount(n json.Number) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(n.String())
	if err != nil {
		return core.Money{}, fmt.Errorf("amount %q: %w", n.String(), err)
	}
	return core.Money{Cents: cents}, nil
}

func parseKind(s string) (core.Kind, error) {
	k := core.Kind(strings.ToLower(strings.TrimSpace(s)))
	if err := k.Validate(); err != nil {
		return "", fmt.Errorf("kind %q: %w", s, err)
	}
	return k, nil
}

// parsePattern is strict, unlike core.ParsePattern: an unknown pattern is rejected.
func parsePattern(s string) (core.Pattern, error) {
	p := core.Pattern(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case core.Weekly, core.Monthly, core.Yearly:
		return p, nil
	default:
		return "", fmt.Errorf("pattern %q: %w", s, core.ErrInvalidPattern)
	}
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return n, nil
}
