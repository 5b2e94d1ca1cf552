package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringOrDash(t *testing.T) {
	assert.Equal(t, "-", stringOrDash(""))
	assert.Equal(t, "-", stringOrDash("  "))
	assert.Equal(t, "gpt-4o", stringOrDash("gpt-4o"))
}

func TestJSONOrEmpty(t *testing.T) {
	assert.Equal(t, "{}", jsonOrEmpty(""))
	assert.Equal(t, `{"a":1}`, jsonOrEmpty(`{"a":1}`))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	assert.NoError(t, err)
	assert.NotEmpty(t, entries)
}
