// Package sdlplay is a frontend using SDL for the window, keyboard and
// sound.
package sdlplay

import (
	"log"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/frontend"
	chipio "github.com/ezrec/chip8/io"
)

const (
	DEFAULT_SCALE     = 10 // Window pixels per CHIP-8 pixel.
	AUDIO_SAMPLE_RATE = 44100
	AUDIO_TONE_HZ     = 440
	audioBufferLength = 512
)

const windowTitle = "chip8"

// SDL must be serviced from the main thread.
func init() {
	runtime.LockOSThread()
}

// SdlPlay is the SDL frontend.
type SdlPlay struct {
	Verbose bool
	KeyMap  chipio.KeyMap // Host key layout.

	window   *sdl.Window
	renderer *sdl.Renderer
	scale    int32

	audio   sdl.AudioDeviceID
	silence uint8
	wave    []uint8 // One buffer of square wave.
	tone    bool
}

var _ frontend.Frontend = (*SdlPlay)(nil)

// NewSdlPlay opens a window scale times the size of the screen, and the
// default audio device.
func NewSdlPlay(scale int) (scr *SdlPlay, err error) {
	if scale <= 0 {
		scale = DEFAULT_SCALE
	}

	err = sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO)
	if err != nil {
		return
	}

	play := &SdlPlay{
		KeyMap: chipio.DefaultKeyMap,
		scale:  int32(scale),
	}
	defer func() {
		if err != nil {
			play.Close()
		}
	}()

	play.window, err = sdl.CreateWindow(windowTitle,
		int32(sdl.WINDOWPOS_UNDEFINED), int32(sdl.WINDOWPOS_UNDEFINED),
		chipio.SCREEN_WIDTH*play.scale, chipio.SCREEN_HEIGHT*play.scale,
		uint32(sdl.WINDOW_SHOWN))
	if err != nil {
		return
	}

	play.renderer, err = sdl.CreateRenderer(play.window, -1, uint32(sdl.RENDERER_ACCELERATED))
	if err != nil {
		return
	}

	spec := &sdl.AudioSpec{
		Freq:     AUDIO_SAMPLE_RATE,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  audioBufferLength,
	}

	var actualSpec sdl.AudioSpec
	play.audio, err = sdl.OpenAudioDevice("", false, spec, &actualSpec, 0)
	if err != nil {
		return
	}

	play.silence = actualSpec.Silence
	play.wave = SquareWave(int(actualSpec.Freq), AUDIO_TONE_HZ, audioBufferLength, play.silence)
	sdl.PauseAudioDevice(play.audio, false)

	scr = play
	return
}

// SetTone keeps the audio queue filled while the tone is on, and drains
// it when the tone stops.
func (scr *SdlPlay) SetTone(on bool) {
	if scr.audio == 0 {
		return
	}

	if !on {
		if scr.tone {
			sdl.ClearQueuedAudio(scr.audio)
		}
		scr.tone = false
		return
	}

	scr.tone = true
	if sdl.GetQueuedAudioSize(scr.audio) < uint32(2*len(scr.wave)) {
		err := sdl.QueueAudio(scr.audio, scr.wave)
		if err != nil && scr.Verbose {
			log.Printf("sdl: %v", err)
		}
	}
}

// Frame services the SDL events, then presents the screen.
func (scr *SdlPlay) Frame(emu *emulator.Emulator) (quit bool, err error) {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		// close window
		case *sdl.QuitEvent:
			quit = true

		case *sdl.KeyboardEvent:
			if ev.Keysym.Sym == sdl.K_ESCAPE {
				quit = true
				continue
			}
			if ev.Repeat != 0 {
				continue
			}
			key, ok := scr.KeyMap.KeyOf(rune(ev.Keysym.Sym))
			if !ok {
				continue
			}
			switch ev.Type {
			case sdl.KEYDOWN:
				err = emu.KeyDown(key)
			case sdl.KEYUP:
				err = emu.KeyUp(key)
			}
			if err != nil {
				return
			}
		}
	}

	err = scr.present(emu.Screen.Front())
	return
}

func (scr *SdlPlay) present(frame chipio.Frame) (err error) {
	err = scr.renderer.SetDrawColor(0, 0, 0, 255)
	if err != nil {
		return
	}
	err = scr.renderer.Clear()
	if err != nil {
		return
	}

	rects := PixelRects(&frame, scr.scale)
	if len(rects) > 0 {
		err = scr.renderer.SetDrawColor(0xe0, 0xe0, 0xe0, 255)
		if err != nil {
			return
		}
		err = scr.renderer.FillRects(rects)
		if err != nil {
			return
		}
	}

	scr.renderer.Present()
	return
}

// Close releases the SDL resources.
func (scr *SdlPlay) Close() (err error) {
	if scr.audio != 0 {
		sdl.CloseAudioDevice(scr.audio)
		scr.audio = 0
	}
	if scr.renderer != nil {
		err = scr.renderer.Destroy()
		scr.renderer = nil
	}
	if scr.window != nil {
		werr := scr.window.Destroy()
		if err == nil {
			err = werr
		}
		scr.window = nil
	}
	sdl.Quit()

	return
}

// SquareWave returns unsigned 8-bit samples of a square wave, at least
// length long. The buffer holds a whole number of periods, so it can be
// queued back to back without a break in the wave.
func SquareWave(rate int, hz int, length int, silence uint8) (wave []uint8) {
	period := max(rate/max(hz, 1), 2)
	periods := max((length+period-1)/period, 1)
	wave = make([]uint8, periods*period)
	for n := range wave {
		if n%period < period/2 {
			wave[n] = silence + 0x20
		} else {
			wave[n] = silence - 0x20
		}
	}
	return
}

// PixelRects returns a rectangle for each lit pixel of the frame.
func PixelRects(frame *chipio.Frame, scale int32) (rects []sdl.Rect) {
	for y, row := range frame {
		for x, lit := range row {
			if lit {
				rects = append(rects, sdl.Rect{
					X: int32(x) * scale,
					Y: int32(y) * scale,
					W: scale,
					H: scale,
				})
			}
		}
	}
	return
}
