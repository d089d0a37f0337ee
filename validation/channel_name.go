// Package validation holds the channel name rules shared by the client directory and the server.
package validation

import (
	"chat-sync/errors"
	stderrors "errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MinNameLength = 3
	MaxNameLength = 20
)

var validate = validator.New()

// channelName bounds are counted in runes on the trimmed candidate.
type channelName struct {
	Name string `validate:"required,min=3,max=20"`
}

// NameSet answers whether a name is already in use, case-insensitively.
type NameSet interface {
	Contains(name string) bool
}

// Names is a NameSet backed by a plain slice.
type Names []string

func (n Names) Contains(name string) bool {
	key := NameKey(name)
	for _, existing := range n {
		if NameKey(existing) == key {
			return true
		}
	}
	return false
}

// ValidateChannelName checks candidate against the naming rules and the names already in use.
// Emptiness is checked before the length bounds. It returns the candidate unchanged on success.
// When validating a rename, existing must not contain the channel's own current name.
func ValidateChannelName(candidate string, existing NameSet) (string, error) {
	if err := validate.Struct(channelName{Name: strings.TrimSpace(candidate)}); err != nil {
		return "", toValidationError(err, candidate)
	}
	if existing != nil && existing.Contains(candidate) {
		return "", errors.NewValidationError("name", errors.ReasonDuplicateName, candidate)
	}
	return candidate, nil
}

// NameKey is the comparison key for case-insensitive uniqueness.
func NameKey(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

// Without returns names minus the first exact occurrence of own.
func Without(names []string, own string) Names {
	out := make(Names, 0, len(names))
	skipped := false
	for _, name := range names {
		if !skipped && name == own {
			skipped = true
			continue
		}
		out = append(out, name)
	}
	return out
}

func toValidationError(err error, candidate string) error {
	var fieldErrors validator.ValidationErrors
	if !stderrors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err
	}
	switch fieldErrors[0].Tag() {
	case "required":
		return errors.NewValidationError("name", errors.ReasonEmpty, candidate)
	case "min":
		return errors.NewValidationError("name", errors.ReasonTooShort, candidate)
	default:
		return errors.NewValidationError("name", errors.ReasonTooLong, candidate)
	}
}
