package main

import (
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"emotechat/emoteimg"
)

// texFrame is one uploaded animation frame: the GPU-side image plus how
// long it stays on screen, in milliseconds.
type texFrame struct {
	img   *ebiten.Image
	delay float64
}

// textureEntry tracks one emote identifier through the pending -> ready
// transition. Entries never go back to pending; an upload failure leaves
// the entry pending forever and the sprite simply never draws.
type textureEntry struct {
	ready  bool
	frames []texFrame
	w, h   int
}

type pendingUpload struct {
	id  string
	dec *emoteimg.Decoded
}

// textureCache owns every decoded emote texture. The worker writes decode
// results into the upload queue; only the render thread turns them into
// ebiten images, because only the render thread may touch the device.
type textureCache struct {
	mu      sync.Mutex
	entries map[string]*textureEntry

	upMu    sync.Mutex
	uploads []pendingUpload
}

func newTextureCache() *textureCache {
	return &textureCache{entries: make(map[string]*textureEntry)}
}

// get returns the entry for id when it is ready to draw.
func (tc *textureCache) get(id string) (*textureEntry, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	e, ok := tc.entries[id]
	if !ok || !e.ready {
		return nil, false
	}
	return e, true
}

// known reports whether a load for id was already triggered.
func (tc *textureCache) known(id string) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	_, ok := tc.entries[id]
	return ok
}

func (tc *textureCache) markPending(id string) {
	tc.mu.Lock()
	if _, ok := tc.entries[id]; !ok {
		tc.entries[id] = &textureEntry{}
	}
	tc.mu.Unlock()
}

// queueDecoded hands a decode result to the render thread. Worker side
// only ever appends; the render thread drains the whole queue per frame.
func (tc *textureCache) queueDecoded(id string, dec *emoteimg.Decoded) {
	tc.upMu.Lock()
	tc.uploads = append(tc.uploads, pendingUpload{id: id, dec: dec})
	tc.upMu.Unlock()
}

// requestLoad triggers a one-shot fetch+decode for id on the worker. A
// late result for an emote nobody references anymore is still cached and
// simply unused; there is no cancellation.
func (tc *textureCache) requestLoad(id, fileURL string, w *worker) {
	tc.mu.Lock()
	if _, ok := tc.entries[id]; ok {
		tc.mu.Unlock()
		return
	}
	tc.entries[id] = &textureEntry{}
	tc.mu.Unlock()

	w.spawn(func() {
		data, err := fetchBytes(fileURL)
		if err != nil {
			logError("failed to fetch emote %v: %v", id, err)
			return
		}
		dec, err := emoteimg.Decode(data)
		if err != nil {
			logError("failed to decode emote %v: %v", id, err)
			return
		}
		tc.queueDecoded(id, dec)
	})
}

// processUploads runs on the render thread once per frame: drain every
// queued decode result and upload it. A failed item is logged and skipped
// without blocking the rest of the queue.
func (tc *textureCache) processUploads() {
	tc.upMu.Lock()
	batch := tc.uploads
	tc.uploads = nil
	tc.upMu.Unlock()

	for _, up := range batch {
		frames, ok := uploadFrames(up.id, up.dec)
		if !ok {
			continue
		}
		tc.mu.Lock()
		e, exists := tc.entries[up.id]
		if !exists {
			e = &textureEntry{}
			tc.entries[up.id] = e
		}
		if !e.ready {
			e.frames = frames
			e.w = up.dec.Width
			e.h = up.dec.Height
			e.ready = true
		}
		tc.mu.Unlock()
	}
}

// uploadFrames creates one GPU texture per frame from tightly packed
// RGBA bytes (stride = 4 x width).
func uploadFrames(id string, dec *emoteimg.Decoded) ([]texFrame, bool) {
	if dec.Width <= 0 || dec.Height <= 0 || len(dec.Frames) == 0 {
		logError("emote %v: bad decoded geometry %dx%d", id, dec.Width, dec.Height)
		return nil, false
	}
	want := dec.Width * dec.Height * 4
	frames := make([]texFrame, 0, len(dec.Frames))
	for i, fr := range dec.Frames {
		if len(fr.Pix) != want {
			logError("emote %v: frame %d has %d bytes, want %d", id, i, len(fr.Pix), want)
			return nil, false
		}
		img := ebiten.NewImage(dec.Width, dec.Height)
		img.WritePixels(fr.Pix)
		frames = append(frames, texFrame{img: img, delay: fr.Delay})
	}
	return frames, true
}

func (tc *textureCache) clear() {
	tc.mu.Lock()
	tc.entries = make(map[string]*textureEntry)
	tc.mu.Unlock()
	tc.upMu.Lock()
	tc.uploads = nil
	tc.upMu.Unlock()
}

// gifState is a per-sprite animation cursor over a ready texture entry.
// Rebuilding the state restarts the animation at frame zero.
type gifState struct {
	frames   []texFrame
	w, h     int
	current  int
	switched time.Time
}

func newGifState(e *textureEntry) *gifState {
	return &gifState{frames: e.frames, w: e.w, h: e.h}
}

// advance moves to the next frame once the current frame's delay has
// elapsed, wrapping past the last frame, and returns the frame to draw.
func (g *gifState) advance(now time.Time) *ebiten.Image {
	if g.switched.IsZero() {
		g.switched = now
	} else if len(g.frames) > 1 {
		elapsed := float64(now.Sub(g.switched)) / float64(time.Millisecond)
		if elapsed > g.frames[g.current].delay {
			g.current = (g.current + 1) % len(g.frames)
			g.switched = now
		}
	}
	return g.frames[g.current].img
}
