package main

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	// emoteBaseSpeed is the upward drift in pixels per millisecond; the
	// sine term wobbles it per instance.
	emoteBaseSpeed = 0.5
	emoteSpeedAmp  = 0.1
	// emotePadding reserves a margin on each side of the surface when
	// picking a spawn column, and half of it scales the sideways sway.
	emotePadding = 0.10
)

// emoteLayer is one drawable layer of a floating emote: the texture
// identifier plus this layer's own animation cursor once the texture is
// ready.
type emoteLayer struct {
	id  string
	gif *gifState
}

// activeEmote is one floating sprite working its way up the screen,
// optionally carrying a zero-width overlay layer drawn on top of it.
// Position and start time stay unset until the layer textures are ready,
// because the spawn column depends on the sprite width.
type activeEmote struct {
	base       emoteLayer
	overlay    *emoteLayer
	pos        [2]float64
	positioned bool
	start      time.Time
	phase      float64
}

// simulate moves the sprite up by the phase-modulated speed. Vertical
// motion is monotonic toward the top edge; the sway is applied at draw
// time only and never feeds the removal test.
func (a *activeEmote) simulate(now time.Time, elapsedMS float64) {
	if !a.positioned {
		return
	}
	t := a.phase + now.Sub(a.start).Seconds()
	speed := (emoteBaseSpeed + math.Sin(t)*emoteSpeedAmp) * gs.OverlaySpeed
	a.pos[1] -= speed * elapsedMS
}

// drawPosition returns the on-screen position with the sideways sway
// mixed into x.
func (a *activeEmote) drawPosition(now time.Time, swayWidth float64) (float64, float64) {
	t := a.phase + now.Sub(a.start).Seconds()
	return a.pos[0] + math.Sin(t)*swayWidth, a.pos[1]
}

// offscreen reports whether the sprite's bottom edge has crossed the top
// boundary, which is the exact removal condition.
func (a *activeEmote) offscreen(height float64) bool {
	return a.positioned && a.pos[1]+height < 0
}

// overlayEngine consumes chat events, matches tokens against the emote
// catalog and runs the floating-sprite simulation each frame.
type overlayEngine struct {
	mu     sync.Mutex
	active []*activeEmote

	catalog *emoteCatalog
	tex     *textureCache
	work    *worker

	lastTick time.Time

	// randFloat is swappable in tests; it only desynchronizes bobbing.
	randFloat func() float64
}

func newOverlayEngine(catalog *emoteCatalog, tex *textureCache, work *worker) *overlayEngine {
	return &overlayEngine{
		catalog:   catalog,
		tex:       tex,
		work:      work,
		randFloat: rand.Float64,
	}
}

func emoteIdentifier(name string) string {
	return "EMOTE_" + name
}

// onMessage tokenizes the event text on whitespace and scans the catalog
// in order for each token. A zero-width match attaches onto the most
// recently created instance of this message instead of spawning its own
// sprite, replacing any overlay already there; with no prior instance it
// spawns as a normal base. Duplicate matcher tokens across catalog
// entries each match independently.
func (o *overlayEngine) onMessage(ev chatEvent) {
	if ev.Kind == channelError || ev.Text == "" {
		return
	}
	sets := o.catalog.snapshot()

	var lastCreated *activeEmote
	for _, word := range strings.Fields(ev.Text) {
		for si := range sets {
			for ei := range sets[si].Emotes {
				em := &sets[si].Emotes[ei]
				if em.Name != word {
					continue
				}
				logDebug("matched emote %v in %v chat", word, ev.Kind)
				id := emoteIdentifier(word)
				if em.zeroWidth() && lastCreated != nil {
					o.mu.Lock()
					lastCreated.overlay = &emoteLayer{id: id}
					o.mu.Unlock()
				} else {
					inst := &activeEmote{
						base:  emoteLayer{id: id},
						phase: o.randFloat(),
					}
					o.mu.Lock()
					o.active = append(o.active, inst)
					o.mu.Unlock()
					lastCreated = inst
				}
				o.triggerLoad(id, em)
			}
		}
	}
}

// triggerLoad schedules a fetch+decode for the emote's preferred file the
// first time its identifier shows up. Failures inside the job only log;
// the cache entry stays pending and the sprite never draws.
func (o *overlayEngine) triggerLoad(id string, em *emote) {
	if o.tex.known(id) {
		return
	}
	file := preferredFile(em.Data.Host.Files)
	if file == nil {
		logError("emote %v: no usable image file", em.Name)
		return
	}
	u, err := fileURL(&em.Data.Host, file)
	if err != nil {
		logError("emote %v: %v", em.Name, err)
		return
	}
	o.tex.requestLoad(id, u, o.work)
}

// resolve attaches animation state to any layer whose texture became
// ready since the last tick. It returns true once every layer of the
// instance can be drawn.
func (o *overlayEngine) resolve(a *activeEmote) bool {
	if a.base.gif == nil {
		e, ok := o.tex.get(a.base.id)
		if !ok {
			return false
		}
		a.base.gif = newGifState(e)
	}
	if a.overlay != nil && a.overlay.gif == nil {
		e, ok := o.tex.get(a.overlay.id)
		if !ok {
			return false
		}
		a.overlay.gif = newGifState(e)
	}
	return true
}

// place picks the spawn position once the sprite geometry is known:
// a uniformly random column inside the padded surface width, centered on
// the sprite, starting at the bottom edge.
func (o *overlayEngine) place(a *activeEmote, now time.Time, sw, sh float64) {
	usable := sw - float64(a.base.gif.w)/2
	left := usable * emotePadding
	right := usable * (1 - emotePadding)
	a.pos = [2]float64{left + o.randFloat()*(right-left), sh}
	a.positioned = true
	a.start = now
}

// tick runs one frame of the overlay: drain pending texture uploads,
// advance every active instance and draw it, and swap-remove the ones
// that floated off the top.
func (o *overlayEngine) tick(screen *ebiten.Image, now time.Time) {
	o.tex.processUploads()

	elapsed := 0.0
	if !o.lastTick.IsZero() {
		elapsed = float64(now.Sub(o.lastTick)) / float64(time.Millisecond)
	}
	o.lastTick = now

	sw := float64(screen.Bounds().Dx())
	sh := float64(screen.Bounds().Dy())
	sway := sw * emotePadding / 2

	o.mu.Lock()
	defer o.mu.Unlock()

	var remove []int
	for i, a := range o.active {
		if !o.resolve(a) {
			continue
		}
		if !a.positioned {
			o.place(a, now, sw, sh)
		}
		a.simulate(now, elapsed)
		if a.offscreen(float64(a.base.gif.h)) {
			remove = append(remove, i)
			continue
		}
		x, y := a.drawPosition(now, sway)
		drawLayer(screen, &a.base, x, y, now)
		if a.overlay != nil {
			ox := x + float64(a.base.gif.w-a.overlay.gif.w)/2
			oy := y + float64(a.base.gif.h-a.overlay.gif.h)/2
			drawLayer(screen, a.overlay, ox, oy, now)
		}
	}

	for j := len(remove) - 1; j >= 0; j-- {
		i := remove[j]
		logDebug("removing emote %v", o.active[i].base.id)
		last := len(o.active) - 1
		o.active[i] = o.active[last]
		o.active = o.active[:last]
	}
}

func drawLayer(screen *ebiten.Image, l *emoteLayer, x, y float64, now time.Time) {
	frame := l.gif.advance(now)
	if frame == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleAlpha(float32(gs.OverlayOpacity))
	screen.DrawImage(frame, op)
}

// activeCount is a small observability hook for the debug log and tests.
func (o *overlayEngine) activeCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.active)
}

func (o *overlayEngine) clear() {
	o.mu.Lock()
	o.active = nil
	o.mu.Unlock()
}
