package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	tm, err := ParseTemplate("AC{A}g{{x}}{B}")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, tm.Placeholders())

	out, err := tm.Format(map[string]string{"A": "111", "B": "222", "C": "unused"})
	require.NoError(t, err)
	assert.Equal(t, "AC111g{x}222", out)
}

func TestParseTemplate_Malformed(t *testing.T) {
	for _, raw := range []string{"AC{A", "AC}", "{}", "{a{b}"} {
		_, err := ParseTemplate(raw)
		assert.True(t, IsTemplateError(err), "expected template error for %q, got %v", raw, err)
	}
}

func TestTemplate_FormatReportsFirstMissing(t *testing.T) {
	tm, err := ParseTemplate("{A}{B}{C}")
	require.NoError(t, err)
	_, err = tm.Format(map[string]string{"A": "x"})
	var te *TemplateFormatError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "B", te.Placeholder)
	assert.Contains(t, te.Error(), "{B}")
}
