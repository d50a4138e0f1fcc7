package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashString(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashString(""))
}

func TestContactHash_IgnoresFormatting(t *testing.T) {
	want := ContactHash("3055550100")
	assert.Equal(t, want, ContactHash("(305) 555-0100"))
	assert.Equal(t, want, ContactHash("+1 305 555 0100"))
	assert.NotEqual(t, want, ContactHash("3055550101"))
}

func TestShortHash(t *testing.T) {
	assert.Len(t, ShortHash("Ana@Example.com"), 12)
	assert.Equal(t, ShortHash("ana@example.com"), ShortHash(" Ana@Example.com "))
}
