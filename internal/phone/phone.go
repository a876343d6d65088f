// Package phone normalizes heterogeneous phone number text into E.164 form.
// Normalization is a pure function and the canonical form is the identity
// key for every registration lookup, so two renderings of the same number
// must always collapse to the same string.
package phone

import (
	"strings"

	"hampuff/pkg/domainerrors"
)

const (
	minDigits = 7
	maxDigits = 15
)

// Normalize converts raw phone text into canonical +<country><national>
// form. Bare 10-digit numbers are treated as North American (+1), as is the
// 11-digit 1-prefixed variant. Already-canonical input passes through
// unchanged.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", domainerrors.New(domainerrors.CodeInvalidPhoneNumber, "phone number is empty")
	}

	hasPlus := strings.HasPrefix(trimmed, "+")
	if hasPlus {
		trimmed = trimmed[1:]
	}

	var digits strings.Builder
	for _, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// separator noise
		default:
			return "", domainerrors.New(domainerrors.CodeInvalidPhoneNumber,
				"phone number contains invalid characters")
		}
	}

	n := digits.String()
	if len(n) < minDigits || len(n) > maxDigits {
		return "", domainerrors.New(domainerrors.CodeInvalidPhoneNumber,
			"phone number must contain 7 to 15 digits")
	}

	if hasPlus {
		if n[0] == '0' {
			return "", domainerrors.New(domainerrors.CodeInvalidPhoneNumber,
				"country code cannot start with 0")
		}
		return "+" + n, nil
	}

	// No country code supplied: only North American shapes are unambiguous.
	switch {
	case len(n) == 10:
		return "+1" + n, nil
	case len(n) == 11 && n[0] == '1':
		return "+" + n, nil
	}
	return "", domainerrors.New(domainerrors.CodeInvalidPhoneNumber,
		"cannot infer country code; use international format")
}
