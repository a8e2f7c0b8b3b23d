package main

import (
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

func testEmote(name string, zero bool) emote {
	var flags uint32
	if zero {
		flags = emoteFlagZeroWidth
	}
	return emote{ID: "em-" + name, Name: name, Flags: flags,
		Data: emoteData{Name: name, Animated: true}}
}

func testEngine(sets ...emoteSet) *overlayEngine {
	c := &emoteCatalog{}
	c.replace(sets)
	o := newOverlayEngine(c, newTextureCache(), nil)
	o.randFloat = func() float64 { return 0.5 }
	return o
}

func mapEvent(text string) chatEvent {
	return chatEvent{Kind: channelMap, Text: text, Time: time.Now()}
}

func TestOnMessageCreatesInstance(t *testing.T) {
	o := testEngine(emoteSet{ID: "s", Emotes: []emote{testEmote("PogChamp", false)}})
	o.onMessage(mapEvent("gg PogChamp"))
	if len(o.active) != 1 {
		t.Fatalf("active = %d, want 1", len(o.active))
	}
	if o.active[0].base.id != "EMOTE_PogChamp" {
		t.Fatalf("base id = %q", o.active[0].base.id)
	}
	if o.active[0].positioned || !o.active[0].start.IsZero() {
		t.Fatal("position/start set before texture is known")
	}
}

func TestOnMessageZeroWidthAttaches(t *testing.T) {
	o := testEngine(emoteSet{ID: "s", Emotes: []emote{
		testEmote("PogChamp", false),
		testEmote(":tf:", true),
	}})
	o.onMessage(mapEvent("PogChamp :tf:"))
	if len(o.active) != 1 {
		t.Fatalf("active = %d, want 1 (zero-width must not spawn)", len(o.active))
	}
	ov := o.active[0].overlay
	if ov == nil || ov.id != "EMOTE_:tf:" {
		t.Fatalf("overlay = %+v", ov)
	}
}

func TestOnMessageZeroWidthSkipsUnmatchedTokens(t *testing.T) {
	o := testEngine(emoteSet{ID: "s", Emotes: []emote{
		testEmote("PogChamp", false),
		testEmote(":tf:", true),
	}})
	o.onMessage(mapEvent("PogChamp nomatch :tf:"))
	if len(o.active) != 1 {
		t.Fatalf("active = %d, want 1", len(o.active))
	}
	if o.active[0].overlay == nil {
		t.Fatal("zero-width did not attach to most recently created instance")
	}
}

func TestOnMessageZeroWidthReplacesOverlay(t *testing.T) {
	o := testEngine(emoteSet{ID: "s", Emotes: []emote{
		testEmote("PogChamp", false),
		testEmote(":tf:", true),
		testEmote(":sf:", true),
	}})
	o.onMessage(mapEvent("PogChamp :tf: :sf:"))
	if len(o.active) != 1 {
		t.Fatalf("active = %d, want 1", len(o.active))
	}
	if ov := o.active[0].overlay; ov == nil || ov.id != "EMOTE_:sf:" {
		t.Fatalf("overlay = %+v, want :sf: replacement", ov)
	}
}

func TestOnMessageZeroWidthFirstSpawnsBase(t *testing.T) {
	o := testEngine(emoteSet{ID: "s", Emotes: []emote{testEmote(":tf:", true)}})
	o.onMessage(mapEvent(":tf: hello"))
	if len(o.active) != 1 || o.active[0].base.id != "EMOTE_:tf:" {
		t.Fatalf("active = %+v", o.active)
	}
}

func TestOnMessageDuplicateMatchersMatchIndependently(t *testing.T) {
	o := testEngine(
		emoteSet{ID: "a", Emotes: []emote{testEmote("PogChamp", false)}},
		emoteSet{ID: "b", Emotes: []emote{testEmote("PogChamp", false)}},
	)
	o.onMessage(mapEvent("PogChamp"))
	if len(o.active) != 2 {
		t.Fatalf("active = %d, want one per catalog entry", len(o.active))
	}
}

func TestSimulateMovesUp(t *testing.T) {
	now := time.Now()
	a := &activeEmote{positioned: true, pos: [2]float64{100, 400}, start: now}
	a.simulate(now, 16)
	if a.pos[1] >= 400 {
		t.Fatalf("y = %v, expected upward motion", a.pos[1])
	}
	if a.pos[0] != 100 {
		t.Fatalf("x drifted in simulate: %v", a.pos[0])
	}
}

func TestSimulateSpeedSetting(t *testing.T) {
	old := gs.OverlaySpeed
	defer func() { gs.OverlaySpeed = old }()
	now := time.Now()

	gs.OverlaySpeed = 1.0
	a := &activeEmote{positioned: true, pos: [2]float64{0, 400}, start: now}
	a.simulate(now, 16)
	normal := 400 - a.pos[1]

	gs.OverlaySpeed = 2.0
	b := &activeEmote{positioned: true, pos: [2]float64{0, 400}, start: now}
	b.simulate(now, 16)
	doubled := 400 - b.pos[1]

	if doubled != normal*2 {
		t.Fatalf("speed 2.0 moved %v, want twice %v", doubled, normal)
	}
}

func TestOffscreenExactBoundary(t *testing.T) {
	a := &activeEmote{positioned: true, pos: [2]float64{0, -32}}
	if a.offscreen(32) {
		t.Fatal("removed while bottom edge still touches the top boundary")
	}
	a.pos[1] = -32.01
	if !a.offscreen(32) {
		t.Fatal("not removed after bottom edge crossed the top boundary")
	}
}

func readyEntry(w, h int) *textureEntry {
	return &textureEntry{ready: true, frames: []texFrame{{}}, w: w, h: h}
}

func TestTickPlacesWithinPaddedWidth(t *testing.T) {
	o := testEngine(emoteSet{ID: "s", Emotes: []emote{testEmote("PogChamp", false)}})
	o.tex.entries["EMOTE_PogChamp"] = readyEntry(32, 32)
	o.randFloat = func() float64 { return 0 }
	o.onMessage(mapEvent("PogChamp"))

	screen := ebiten.NewImage(200, 100)
	o.tick(screen, time.Now())

	a := o.active[0]
	if !a.positioned {
		t.Fatal("instance not positioned with a ready texture")
	}
	usable := 200.0 - 32.0/2
	if a.pos[0] != usable*emotePadding {
		t.Fatalf("x = %v, want left bound %v", a.pos[0], usable*emotePadding)
	}
	if a.pos[1] > 100 {
		t.Fatalf("y = %v, want at or above bottom edge", a.pos[1])
	}
}

func TestTickRemovesExactlyWhenOffscreen(t *testing.T) {
	o := testEngine(emoteSet{ID: "s", Emotes: []emote{testEmote("PogChamp", false)}})
	o.tex.entries["EMOTE_PogChamp"] = readyEntry(32, 32)
	o.onMessage(mapEvent("PogChamp"))

	screen := ebiten.NewImage(200, 100)
	now := time.Now()
	o.tick(screen, now)

	// Still well inside the surface: must survive a tick.
	a := o.active[0]
	a.pos[1] = -22 // bottom edge 10 px below the top
	now = now.Add(2 * time.Millisecond)
	o.tick(screen, now)
	if o.activeCount() != 1 {
		t.Fatal("instance removed before its bottom edge crossed the top")
	}

	// One more small step cannot move it 10 px; push it to the boundary.
	a.pos[1] = -31.5
	now = now.Add(2 * time.Millisecond)
	o.tick(screen, now)
	if o.activeCount() != 0 {
		t.Fatalf("instance not removed after crossing, y = %v", a.pos[1])
	}
}

func TestTickSwapRemove(t *testing.T) {
	o := testEngine(emoteSet{ID: "s", Emotes: []emote{testEmote("PogChamp", false)}})
	o.tex.entries["EMOTE_PogChamp"] = readyEntry(32, 32)
	o.onMessage(mapEvent("PogChamp PogChamp PogChamp"))

	screen := ebiten.NewImage(200, 100)
	now := time.Now()
	o.tick(screen, now)
	if len(o.active) != 3 {
		t.Fatalf("active = %d", len(o.active))
	}
	o.active[0].pos[1] = -100
	now = now.Add(2 * time.Millisecond)
	o.tick(screen, now)
	if o.activeCount() != 2 {
		t.Fatalf("active = %d after removal, want 2", o.activeCount())
	}
}
