package io

import (
	"unicode"
)

// KeyMap maps host keys to hex keypad keys.
type KeyMap map[rune]uint8

// DefaultKeyMap lays the hex keypad over the left of a QWERTY keyboard.
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
var DefaultKeyMap = KeyMap{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// KeyOf returns the keypad key of a host key. Letters match either case.
func (km KeyMap) KeyOf(r rune) (key uint8, ok bool) {
	key, ok = km[r]
	if !ok {
		key, ok = km[unicode.ToLower(r)]
	}
	return
}
