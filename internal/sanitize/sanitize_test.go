package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codekg/internal/model"
)

func TestSanitizeRejectsReservedKeywords(t *testing.T) {
	for _, in := range []string{
		`x OR 1=1`,
		`1; DROP TABLE chunks`,
		`a and b`,
		`SELECT * FROM t UNION SELECT 1`,
	} {
		_, err := Sanitize(in)
		require.Error(t, err, "expected rejection for %q", in)
		var injErr *model.FilterInjection
		assert.ErrorAs(t, err, &injErr)
	}
}

func TestSanitizeAllowsOrdinaryText(t *testing.T) {
	out, err := Sanitize(`normal_symbol_name`)
	require.NoError(t, err)
	assert.Equal(t, `normal_symbol_name`, out)
}

func TestSanitizeDoublesQuotes(t *testing.T) {
	out, err := Sanitize(`say "hi"`)
	require.NoError(t, err)
	assert.Equal(t, `say ""hi""`, out)
}

func TestSanitizeDoesNotRejectSubstringMatches(t *testing.T) {
	// "ORDER" contains "OR" but not as a whole word, and "FOREIGN" isn't
	// a reserved word at all — the boundary must be on whole words only.
	out, err := Sanitize(`ORDER_STATUS`)
	require.NoError(t, err)
	assert.Equal(t, `ORDER_STATUS`, out)
}

func TestSanitizeLikeEscapesWildcards(t *testing.T) {
	out, err := SanitizeLike(`100%_done`)
	require.NoError(t, err)
	assert.Equal(t, `100\%\_done`, out)
}

func TestSanitizeLikeEscapesBackslashBeforeWildcards(t *testing.T) {
	out, err := SanitizeLike(`a\b%c`)
	require.NoError(t, err)
	assert.Equal(t, `a\\b\%c`, out)
}
