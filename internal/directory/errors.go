package directory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMunicipality is matched by both UnknownMunicipalityError and
// AmbiguousMunicipalityError.
var ErrUnknownMunicipality = errors.New("unknown municipality")

// UnknownMunicipalityError is returned when no entry matches the name.
type UnknownMunicipalityError struct {
	// Name is the name the caller asked for.
	Name string

	// Suggestions are the closest display names, best first.
	Suggestions []string
}

func (e *UnknownMunicipalityError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "unknown municipality %q", e.Name)
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&sb, "; did you mean %s?", quoteJoin(e.Suggestions, " or "))
	}
	sb.WriteString(" (use --list to see all municipalities)")
	return sb.String()
}

func (e *UnknownMunicipalityError) Unwrap() error {
	return ErrUnknownMunicipality
}

// AmbiguousMunicipalityError is returned when a partial name matches more
// than one entry.
type AmbiguousMunicipalityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousMunicipalityError) Error() string {
	return fmt.Sprintf("ambiguous municipality %q matches %s; use the full name",
		e.Name, quoteJoin(e.Candidates, ", "))
}

func (e *AmbiguousMunicipalityError) Unwrap() error {
	return ErrUnknownMunicipality
}

func quoteJoin(names []string, sep string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, sep)
}
