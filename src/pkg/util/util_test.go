package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(-4, 1, 50))
	assert.Equal(t, 50, Clamp(900, 1, 50))
	assert.Equal(t, 7, Clamp(7, 1, 50))
	assert.Equal(t, 0.5, Clamp(0.5, 0.0, 1.0))
	assert.Equal(t, "m", Clamp("z", "a", "m"))
}

func TestMissingFlags(t *testing.T) {
	t.Cleanup(func() {
		RequiredFlags = map[*string]string{}
	})

	sender, recipient, pdf := "shop@example.com", "  ", ""
	RequiredFlag(&sender, "sender")
	RequiredFlag(&recipient, "-recipient")
	RequiredFlag(&pdf, "--pdf")

	assert.Equal(t, []string{"--pdf", "--recipient"}, MissingFlags())
}
