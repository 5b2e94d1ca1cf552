package lexicon_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0Calories/kotoba-plus/internal/domain/lexicon"
)

func TestBuildQuery_BindsTrimmedWord(t *testing.T) {
	for _, word := range []string{"了解", "  了解", "了解\n", "\t食べる ", "a"} {
		q, err := lexicon.BuildQuery(word)
		require.NoError(t, err)
		assert.Equal(t, lexicon.TemplateID, q.TemplateID)
		assert.Equal(t, lexicon.TemplateVersion, q.TemplateVersion)
		assert.Equal(t, strings.TrimSpace(word), q.Word)
	}
}

func TestBuildQuery_TemplateIsStable(t *testing.T) {
	a, err := lexicon.BuildQuery("猫")
	require.NoError(t, err)
	b, err := lexicon.BuildQuery("犬")
	require.NoError(t, err)

	assert.Equal(t, a.TemplateID, b.TemplateID)
	assert.Equal(t, a.TemplateVersion, b.TemplateVersion)
}

func TestBuildQuery_RejectsBlank(t *testing.T) {
	for _, word := range []string{"", " ", "\t\n", "　"} {
		_, err := lexicon.BuildQuery(word)
		assert.ErrorIs(t, err, lexicon.ErrValidation, "word %q", word)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, lexicon.KindNone, lexicon.KindOf(nil))
	assert.Equal(t, lexicon.KindValidation, lexicon.KindOf(lexicon.ErrValidation))
	assert.Equal(t, lexicon.KindService, lexicon.KindOf(&lexicon.ServiceError{Status: 429, Code: "rate_limit_exceeded"}))
	assert.Equal(t, lexicon.KindSchemaViolation, lexicon.KindOf(&lexicon.SchemaError{Field: "definitions"}))
	assert.Equal(t, lexicon.KindEmptyResponse, lexicon.KindOf(lexicon.ErrEmptyResponse))
	assert.Equal(t, lexicon.KindMalformedPayload, lexicon.KindOf(lexicon.ErrMalformedPayload))
	assert.Equal(t, lexicon.KindTransport, lexicon.KindOf(lexicon.ErrTransport))
	assert.Equal(t, lexicon.KindUnknown, lexicon.KindOf(assert.AnError))
}
