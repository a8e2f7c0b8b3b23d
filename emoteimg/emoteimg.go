// Package emoteimg decodes emote image files into raw RGBA frame
// sequences. It performs no GPU work; callers hand the pixel buffers to
// whatever owns the graphics device.
package emoteimg

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/png"

	"golang.org/x/image/webp"
)

// Frame is one decoded animation frame: tightly packed RGBA pixels
// (stride is exactly 4x width) and a display duration in milliseconds.
type Frame struct {
	Pix   []byte
	Delay float64
}

// Decoded is a decoded emote image. Static images hold a single frame
// with zero delay; all frames share the declared width and height.
type Decoded struct {
	Frames []Frame
	Width  int
	Height int
}

// Animated reports whether the image has more than one frame.
func (d *Decoded) Animated() bool {
	return len(d.Frames) > 1
}

var ErrUnknownFormat = errors.New("unknown image format")

var (
	gifMagic  = []byte("GIF8")
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	riffMagic = []byte("RIFF")
)

// Decode sniffs the container format and decodes the whole image. GIF
// yields the full frame sequence; PNG and WEBP yield one static frame.
func Decode(data []byte) (*Decoded, error) {
	switch {
	case bytes.HasPrefix(data, gifMagic):
		return decodeGIF(data)
	case bytes.HasPrefix(data, pngMagic):
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("png: %w", err)
		}
		return staticFrame(img), nil
	case bytes.HasPrefix(data, riffMagic):
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("webp: %w", err)
		}
		return staticFrame(img), nil
	}
	return nil, ErrUnknownFormat
}

func staticFrame(img image.Image) *Decoded {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &Decoded{
		Frames: []Frame{{Pix: rgba.Pix}},
		Width:  b.Dx(),
		Height: b.Dy(),
	}
}

// gifDelayScale converts the GIF delay unit (1/100 s) to milliseconds.
// The source stores delay 3 for a 30 ms frame; keep the x10 exact.
const gifDelayScale = 10.0

// decodeGIF coalesces each GIF frame onto a persistent canvas so every
// output frame is a full image, honoring per-frame disposal.
func decodeGIF(data []byte) (*Decoded, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, errors.New("gif: no frames")
	}
	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		b := g.Image[0].Bounds()
		w, h = b.Max.X, b.Max.Y
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	frames := make([]Frame, 0, len(g.Image))
	for i, src := range g.Image {
		var prev *image.RGBA
		if i < len(g.Disposal) && g.Disposal[i] == gif.DisposalPrevious {
			prev = image.NewRGBA(canvas.Rect)
			copy(prev.Pix, canvas.Pix)
		}

		draw.Draw(canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)

		out := make([]byte, len(canvas.Pix))
		copy(out, canvas.Pix)
		delay := 0.0
		if i < len(g.Delay) {
			delay = gifDelayScale * float64(g.Delay[i])
		}
		frames = append(frames, Frame{Pix: out, Delay: delay})

		if i < len(g.Disposal) {
			switch g.Disposal[i] {
			case gif.DisposalBackground:
				draw.Draw(canvas, src.Bounds(), image.Transparent, image.Point{}, draw.Src)
			case gif.DisposalPrevious:
				if prev != nil {
					copy(canvas.Pix, prev.Pix)
				}
			}
		}
	}
	return &Decoded{Frames: frames, Width: w, Height: h}, nil
}
