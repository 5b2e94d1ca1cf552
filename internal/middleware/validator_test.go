package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wordBody struct {
	Word string `json:"word" validate:"required,notblank"`
}

func TestDecodeJSON(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		wantWord  string
		wantBody  bool
		wantField string
	}{
		{name: "ok", body: `{"word":"了解"}`, wantWord: "了解"},
		{name: "unknown fields ignored", body: `{"word":"猫","lang":"ja"}`, wantWord: "猫"},
		{name: "broken json", body: `{"word":`, wantBody: true},
		{name: "wrong type", body: `{"word":5}`, wantBody: true},
		{name: "empty body", body: ``, wantBody: true},
		{name: "trailing data", body: `{"word":"a"}{"word":"b"}`, wantBody: true},
		{name: "missing word", body: `{}`, wantField: "word"},
		{name: "blank word", body: `{"word":"   "}`, wantField: "word"},
		{name: "null body", body: `null`, wantField: "word"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/analyze", strings.NewReader(tc.body))
			got, err := DecodeJSON[wordBody](r)

			switch {
			case tc.wantBody:
				assert.ErrorIs(t, err, ErrInvalidBody)
			case tc.wantField != "":
				var fe *FieldError
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, tc.wantField, fe.Field)
				assert.Contains(t, fe.Message, "word")
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.wantWord, got.Word)
			}
		})
	}
}

func TestDecodeJSON_BlankMessage(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"word":" "}`))
	_, err := DecodeJSON[wordBody](r)
	assert.EqualError(t, err, "word must not be blank")
}

func TestValidateLimitAndPage(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 100, ValidateLimit(1000))
	assert.Equal(t, 5, ValidateLimit(5))
	assert.Equal(t, 1, ValidatePage(-3))
	assert.Equal(t, 4, ValidatePage(4))
}

func TestDecodeJSON_KeepsTypeErrorField(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"word":5}`))
	_, err := DecodeJSON[wordBody](r)

	require.ErrorIs(t, err, ErrInvalidBody)
	var te *json.UnmarshalTypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "word", te.Field)
}
