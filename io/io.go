// Package io provides the devices attached to the CHIP-8 interpreter.
// It includes the monochrome Screen, the hex Keypad and its host KeyMap,
// speakers that follow the sound timer (Tone, WavTone), and ROM loading.
package io

import (
	"fmt"
	"iter"
	"maps"
)

var _io_defines = map[string]string{
	"SCREEN_WIDTH":  fmt.Sprintf("%v", SCREEN_WIDTH),
	"SCREEN_HEIGHT": fmt.Sprintf("%v", SCREEN_HEIGHT),
}

// Defines returns an iter of defines for the devices.
func Defines() iter.Seq2[string, string] {
	return maps.All(_io_defines)
}

// Speaker plays the tone while the sound timer runs.
type Speaker interface {
	SetTone(on bool)
}
