package main

import "sync"

const maxChatMessages = 200

// chatLine is one rendered console line. Tokens are kept split so the
// console can swap matched emote tokens for inline glyphs.
type chatLine struct {
	kind    channelKind
	speaker string
	tokens  []string
}

var (
	chatMsgMu sync.Mutex
	chatMsgs  []chatLine
)

func speakerName(p player) string {
	switch {
	case p.HasCharacter && p.Character != "":
		return p.Character
	case p.HasAccount && p.Account != "":
		return p.Account
	}
	return "???"
}

func pushChatMessage(ev chatEvent) {
	if ev.Kind == channelError {
		return
	}
	line := chatLine{kind: ev.Kind, speaker: speakerName(ev.Speaker)}
	if ev.Kind == channelEmote {
		line.tokens = []string{ev.EmoteAction}
	} else {
		line.tokens = splitTokens(ev.Text)
	}
	if len(line.tokens) == 0 {
		return
	}

	chatMsgMu.Lock()
	chatMsgs = append(chatMsgs, line)
	if len(chatMsgs) > maxChatMessages {
		chatMsgs = chatMsgs[len(chatMsgs)-maxChatMessages:]
	}
	chatMsgMu.Unlock()
}

func recentChatMessages(n int) []chatLine {
	chatMsgMu.Lock()
	defer chatMsgMu.Unlock()
	if n > len(chatMsgs) {
		n = len(chatMsgs)
	}
	out := make([]chatLine, n)
	copy(out, chatMsgs[len(chatMsgs)-n:])
	return out
}

func clearChatMessages() {
	chatMsgMu.Lock()
	chatMsgs = nil
	chatMsgMu.Unlock()
}
