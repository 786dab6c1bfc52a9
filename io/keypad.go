package io

import (
	"github.com/ezrec/chip8/cpu"
)

// Keypad is the held state of the sixteen hex keys.
type Keypad struct {
	held [cpu.KEY_COUNT]bool
}

var _ cpu.Keyboard = (*Keypad)(nil)

// Press marks a key as held.
func (kp *Keypad) Press(key uint8) (err error) {
	if key >= cpu.KEY_COUNT {
		err = ErrKeyInvalid
		return
	}

	kp.held[key] = true
	return
}

// Release marks a key as not held.
func (kp *Keypad) Release(key uint8) (err error) {
	if key >= cpu.KEY_COUNT {
		err = ErrKeyInvalid
		return
	}

	kp.held[key] = false
	return
}

// Pressed reports if a key is held. Out of range keys are never held.
func (kp *Keypad) Pressed(key uint8) bool {
	return key < cpu.KEY_COUNT && kp.held[key]
}

// Reset releases all keys.
func (kp *Keypad) Reset() {
	kp.held = [cpu.KEY_COUNT]bool{}
}
