package io

// Tone follows the speaker state without making any sound.
type Tone struct {
	On      bool // Current speaker state.
	Changes int  // Number of on/off transitions.
	Ticks   int  // Number of SetTone calls.
	OnTicks int  // Number of SetTone calls with the tone on.
}

var _ Speaker = (*Tone)(nil)

func (tn *Tone) SetTone(on bool) {
	if on != tn.On {
		tn.Changes++
	}
	tn.On = on
	tn.Ticks++
	if on {
		tn.OnTicks++
	}
}
