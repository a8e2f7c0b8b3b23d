package main

import (
	"flag"
	"os"
	"runtime/debug"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

var baseDir string

// handleChatEvent is what the host's event bus calls with a pointer to an
// extended-ABI message. A failed decode is logged and that one event is
// dropped; nothing persists across events.
func handleChatEvent(raw *rawChatEvent, deliver func(chatEvent)) {
	ev, err := decodeChatEvent(raw)
	if err != nil {
		logError("dropping chat event: %v", err)
		return
	}
	deliver(ev)
}

// handleMessageInfo is the compact-ABI twin of handleChatEvent.
func handleMessageInfo(raw *rawMessageInfo, deliver func(chatEvent)) {
	ev, err := decodeMessageInfo(raw)
	if err != nil {
		logError("dropping chat message: %v", err)
		return
	}
	deliver(ev)
}

func main() {
	demo := flag.Bool("demo", false, "feed synthetic chat messages through the pipeline")
	debugLog := flag.Bool("debug", false, "verbose/debug logging")
	sets := flag.String("sets", "", "comma separated emote set ids to add to settings")
	flag.Parse()

	baseDir = os.Getenv("PWD")
	if baseDir == "" {
		var err error
		if baseDir, err = os.Getwd(); err != nil {
			baseDir = "."
		}
	}

	setupLogging(*debugLog)
	loadSettings()
	if *sets != "" {
		for _, id := range strings.Split(*sets, ",") {
			if id = strings.TrimSpace(id); id != "" {
				gs.EmoteSetIDs = append(gs.EmoteSetIDs, id)
			}
		}
		saveSettings()
	}

	defer func() {
		if r := recover(); r != nil {
			logError("panic: %v\n%s", r, debug.Stack())
		}
	}()

	work := newWorker()
	catalog := &emoteCatalog{}
	tex := newTextureCache()
	overlay := newOverlayEngine(catalog, tex, work)

	ids := append([]string(nil), gs.EmoteSetIDs...)
	useGlobal := gs.UseGlobal
	work.spawn(func() { refreshCatalog(catalog, ids, useGlobal) })

	deliver := func(ev chatEvent) {
		pushChatMessage(ev)
		overlay.onMessage(ev)
	}

	stop := make(chan struct{})
	if *demo {
		go runDemoFeed(stop, deliver)
	}

	ebiten.SetWindowSize(initialWindowW, initialWindowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("Emote Chat")
	if err := ebiten.RunGame(&Game{overlay: overlay, tex: tex}); err != nil {
		logError("game loop: %v", err)
	}

	// Teardown order matters: stop producing jobs, drain the worker, then
	// clear shared state so a reload starts clean.
	close(stop)
	work.close()
	overlay.clear()
	catalog.clear()
	tex.clear()
	clearChatMessages()
	saveSettings()
}
