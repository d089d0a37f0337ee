package validation

import (
	"chat-sync/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateChannelName(t *testing.T) {
	existing := Names{"general", "Random"}

	tests := []struct {
		name      string
		candidate string
		existing  Names
		reason    errors.Reason
	}{
		{name: "empty", candidate: "", reason: errors.ReasonEmpty},
		{name: "whitespace only", candidate: "   \t", reason: errors.ReasonEmpty},
		{name: "one char", candidate: "a", reason: errors.ReasonTooShort},
		{name: "two chars after trim", candidate: "  ab  ", reason: errors.ReasonTooShort},
		{name: "twenty one chars", candidate: strings.Repeat("x", 21), reason: errors.ReasonTooLong},
		{name: "duplicate exact", candidate: "general", existing: existing, reason: errors.ReasonDuplicateName},
		{name: "duplicate other case", candidate: "GENERAL", existing: existing, reason: errors.ReasonDuplicateName},
		{name: "duplicate of mixed case name", candidate: "random", existing: existing, reason: errors.ReasonDuplicateName},
		{name: "duplicate cyrillic case", candidate: "Новости", existing: Names{"новости"}, reason: errors.ReasonDuplicateName},
		{name: "three chars", candidate: "abc", existing: existing},
		{name: "twenty chars", candidate: strings.Repeat("x", 20), existing: existing},
		{name: "twenty cyrillic runes", candidate: strings.Repeat("ж", 20), existing: existing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			got, err := ValidateChannelName(tt.candidate, tt.existing)
			if tt.reason == "" {
				req.NoError(err)
				req.Equal(tt.candidate, got)
				return
			}
			req.ErrorIs(err, errors.ErrValidation)
			reason, ok := errors.ReasonOf(err)
			req.True(ok)
			req.Equal(tt.reason, reason)
			req.Empty(got)
		})
	}
}

func TestValidateChannelName_IsPure(t *testing.T) {
	req := require.New(t)
	existing := Names{"general", "random"}
	candidates := []string{"", "ab", "General", "news", strings.Repeat("y", 30)}

	for _, c := range candidates {
		got1, err1 := ValidateChannelName(c, existing)
		got2, err2 := ValidateChannelName(c, existing)
		req.Equal(got1, got2)
		req.Equal(err1, err2)
	}
	req.Equal(Names{"general", "random"}, existing)
}

func TestValidateChannelName_LengthBounds(t *testing.T) {
	req := require.New(t)
	for n := 1; n <= 2; n++ {
		_, err := ValidateChannelName(strings.Repeat("a", n), nil)
		req.ErrorIs(err, errors.ErrTooShort, "length=%d", n)
	}
	for n := 21; n <= 40; n++ {
		_, err := ValidateChannelName(strings.Repeat("a", n), nil)
		req.ErrorIs(err, errors.ErrTooLong, "length=%d", n)
	}
	for n := 3; n <= 20; n++ {
		_, err := ValidateChannelName(strings.Repeat("a", n), nil)
		req.NoError(err, "length=%d", n)
	}
}

func TestValidateChannelName_RenameToOwnName(t *testing.T) {
	req := require.New(t)
	names := []string{"general", "random"}

	// Given the own name is still in the set, the rename is refused
	_, err := ValidateChannelName("general", Names(names))
	req.ErrorIs(err, errors.ErrDuplicateName)

	// When the own name is excluded, it is accepted
	got, err := ValidateChannelName("general", Without(names, "general"))
	req.NoError(err)
	req.Equal("general", got)

	// And a different case of the own name is accepted too
	_, err = ValidateChannelName("General", Without(names, "general"))
	req.NoError(err)
}

func TestWithout(t *testing.T) {
	req := require.New(t)
	req.Equal(Names{"b", "a"}, Without([]string{"a", "b", "a"}, "a"))
	req.Equal(Names{"a"}, Without([]string{"a"}, "z"))
	req.Empty(Without(nil, "z"))
}

func TestNames_Contains(t *testing.T) {
	req := require.New(t)
	names := Names{"General", " news "}
	req.True(names.Contains("general"))
	req.True(names.Contains("NEWS"))
	req.False(names.Contains("random"))
	req.False(Names(nil).Contains("general"))
}
