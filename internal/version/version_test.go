package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString_LinkerOverride(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "v9.9.9"
	assert.Equal(t, "v9.9.9", String())
}

func TestString_Default(t *testing.T) {
	assert.NotEmpty(t, String())
}
