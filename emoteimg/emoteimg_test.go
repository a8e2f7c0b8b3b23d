package emoteimg

import (
	"bytes"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"testing"
)

func encodeTestGIF(t *testing.T, delays []int) []byte {
	t.Helper()
	g := &gif.GIF{Config: image.Config{Width: 4, Height: 4}}
	for i, d := range delays {
		fr := image.NewPaletted(image.Rect(0, 0, 4, 4), palette.Plan9)
		fr.SetColorIndex(i%4, 0, uint8(i+1))
		g.Image = append(g.Image, fr)
		g.Delay = append(g.Delay, d)
		g.Disposal = append(g.Disposal, gif.DisposalNone)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeGIFDelayScale(t *testing.T) {
	dec, err := Decode(encodeTestGIF(t, []int{3, 7}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(dec.Frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(dec.Frames))
	}
	// source delay units are 1/100 s; the model stores 10x that in ms
	if dec.Frames[0].Delay != 30 || dec.Frames[1].Delay != 70 {
		t.Fatalf("delays = %v %v, want 30 70", dec.Frames[0].Delay, dec.Frames[1].Delay)
	}
	if !dec.Animated() {
		t.Fatal("two-frame gif not reported animated")
	}
}

func TestDecodeGIFGeometryAndStride(t *testing.T) {
	dec, err := Decode(encodeTestGIF(t, []int{1}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.Width != 4 || dec.Height != 4 {
		t.Fatalf("size = %dx%d", dec.Width, dec.Height)
	}
	for i, fr := range dec.Frames {
		if len(fr.Pix) != dec.Width*dec.Height*4 {
			t.Fatalf("frame %d not tightly packed: %d bytes", i, len(fr.Pix))
		}
	}
}

func TestDecodePNGStatic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 5))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	dec, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.Animated() {
		t.Fatal("png reported animated")
	}
	if dec.Width != 3 || dec.Height != 5 {
		t.Fatalf("size = %dx%d", dec.Width, dec.Height)
	}
	if dec.Frames[0].Delay != 0 {
		t.Fatalf("static delay = %v", dec.Frames[0].Delay)
	}
	// red pixel survives the RGBA conversion
	off := (1*3 + 1) * 4
	if dec.Frames[0].Pix[off] != 255 || dec.Frames[0].Pix[off+3] != 255 {
		t.Fatalf("pixel = %v", dec.Frames[0].Pix[off:off+4])
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	if _, err := Decode([]byte("definitely not an image")); err == nil {
		t.Fatal("junk bytes decoded without error")
	}
}
