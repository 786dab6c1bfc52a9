package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(SetLanguage("en-US"))
	assert.Equal("bad opcode 0x00ff", From("bad opcode 0x%04x", 0xff))
	assert.Equal("stack empty", From("stack empty"))
}

func TestSetLanguage_Invalid(t *testing.T) {
	assert := assert.New(t)

	assert.Error(SetLanguage("not a language!"))
	assert.Equal("ok", From("ok"))
}
