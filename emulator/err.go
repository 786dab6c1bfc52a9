package emulator

import (
	"github.com/ezrec/chip8/translate"
)

var f = translate.From

// ErrConfig names an invalid configuration field.
type ErrConfig string

func (err ErrConfig) Error() string {
	return f("config %v invalid", string(err))
}

func (err ErrConfig) Is(target error) (ok bool) {
	_, ok = target.(ErrConfig)
	return
}

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc     uint16
	LineNo int // Source line, if the program was assembled.
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo > 0 {
		return f("line %d pc %03X %v", err.LineNo, err.Pc, err.Err)
	}
	return f("pc %03X %v", err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
