package io

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Keypad errors
	ErrKeyInvalid = errors.New(f("key invalid"))

	// Rom errors
	ErrRomEmpty = errors.New(f("rom empty"))
	ErrRomSize  = errors.New(f("rom too large"))
)
