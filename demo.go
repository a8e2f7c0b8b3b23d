package main

import (
	"time"
)

// The demo feed synthesizes raw-ABI chat structs on a timer and pushes
// them through the real decoders, exercising the whole pipeline without a
// host game. Alternates between the two foreign sources.

var demoLines = []struct {
	speaker string
	text    string
}{
	{"Rosie", "PogChamp"},
	{"Marcus", "gg wp"},
	{"Rosie", "catJAM :tf:"},
	{"Tenzin", "did you see that Clap"},
	{"Marcus", "PogChamp PogChamp PogChamp"},
	{"Tenzin", "monkaS"},
}

func runDemoFeed(stop <-chan struct{}, deliver func(chatEvent)) {
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()
	i := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		line := demoLines[i%len(demoLines)]
		if i%2 == 0 {
			raw := &rawMessageInfo{
				Content:   cstr(line.text),
				Timestamp: toFileTime(time.Now()),
				Type:      infoTypeMap,
				Source:    rawPlayer{Character: cstr(line.speaker), Account: cstr(line.speaker + ".1234")},
			}
			handleMessageInfo(raw, deliver)
		} else {
			raw := &rawChatEvent{
				DateTime: toFileTime(time.Now()),
				Type:     extTypeSquad,
			}
			src := raw.Payload.generic()
			src.CharacterName = cstr(line.speaker)
			src.AccountName = cstr(line.speaker + ".1234")
			src.Content = cstr(line.text)
			handleChatEvent(raw, deliver)
		}
		i++
	}
}
