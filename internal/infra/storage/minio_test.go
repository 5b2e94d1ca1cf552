package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/0Calories/kotoba-plus/internal/domain/lexicon"
)

func TestObjectName(t *testing.T) {
	cases := []struct {
		name        string
		key         string
		payload     lexicon.RawPayload
		wantName    string
		wantContent string
	}{
		{"json object", "kotoba/2/abc", `{"term":"x"}`, "kotoba/2/abc.json", "application/json"},
		{"padded json", "/kotoba/2/abc/", " \n{\"term\":1}\n", "kotoba/2/abc.json", "application/json"},
		{"prose", "kotoba/2/abc", "Sorry, I cannot help.", "kotoba/2/abc.txt", "text/plain; charset=utf-8"},
		{"fenced json", "kotoba/2/abc", "```json\n{}\n```", "kotoba/2/abc.txt", "text/plain; charset=utf-8"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			name, ct := objectName(tc.key, tc.payload)
			assert.Equal(t, tc.wantName, name)
			assert.Equal(t, tc.wantContent, ct)
		})
	}
}
