package main

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Compact chat ABI: a small GUI-chat struct whose source union always
// leads with a character/account pointer pair, followed by a short
// variant-specific tail.

const (
	infoTypeError   uint8 = 0
	infoTypeMap     uint8 = 1
	infoTypeParty   uint8 = 2
	infoTypeSquad   uint8 = 3
	infoTypeTeam    uint8 = 4
	infoTypeGuild   uint8 = 5
	infoTypeWhisper uint8 = 6
	infoTypeLocal   uint8 = 7
)

const (
	squadFlagBroadcast  uint8 = 1 << 0
	squadFlagCommander  uint8 = 1 << 1
	squadFlagLieutenant uint8 = 1 << 2

	guildFlagActive uint8 = 1 << 0

	whisperFlagInterlocutor uint8 = 1 << 0
)

type rawPlayer struct {
	Character *byte
	Account   *byte
}

// rawSourceTail carries the bytes after the player pair. Which of them
// mean anything depends on the discriminant: guild index+flags, whisper
// flags, squad flags, or a little-endian map id for team chat.
type rawSourceTail [8]byte

type rawMessageInfo struct {
	Content   *byte
	Timestamp fileTime
	Type      uint8
	_         [7]byte
	Source    rawPlayer
	Tail      rawSourceTail
}

func (t rawSourceTail) mapID() uint32 {
	return binary.LittleEndian.Uint32(t[:4])
}

func decodePlayer(raw rawPlayer) (player, error) {
	var p player
	var err error
	p.Character, p.HasCharacter, err = goString(raw.Character)
	if err != nil {
		return p, fmt.Errorf("character name: %w", err)
	}
	p.Account, p.HasAccount, err = goString(raw.Account)
	if err != nil {
		return p, fmt.Errorf("account name: %w", err)
	}
	return p, nil
}

// decodeMessageInfo converts a compact-ABI chat struct into a chatEvent.
// Unknown discriminants become channelError; bad UTF-8 fails the decode.
func decodeMessageInfo(raw *rawMessageInfo) (chatEvent, error) {
	var ev chatEvent

	text, _, err := goString(raw.Content)
	if err != nil {
		return ev, fmt.Errorf("content: %w", err)
	}
	ev.Text = text

	ev.Time, err = raw.Timestamp.toTime()
	if err != nil {
		logError("chat timestamp conversion failed: %v", err)
		ev.Time = time.Now().UTC()
	}

	if raw.Type != infoTypeError {
		ev.Speaker, err = decodePlayer(raw.Source)
		if err != nil {
			return ev, err
		}
	}

	switch raw.Type {
	case infoTypeMap:
		ev.Kind = channelMap
	case infoTypeParty:
		ev.Kind = channelParty
	case infoTypeSquad:
		ev.Kind = channelSquad
		flags := raw.Tail[0]
		ev.Broadcast = flags&squadFlagBroadcast != 0
		ev.Commander = flags&squadFlagCommander != 0
		ev.Lieutenant = flags&squadFlagLieutenant != 0
	case infoTypeTeam:
		ev.Kind = channelTeam
		ev.MapID = raw.Tail.mapID()
	case infoTypeGuild:
		ev.Kind = channelGuild
		ev.GuildIndex = uint32(raw.Tail[0])
		ev.GuildActive = raw.Tail[1]&guildFlagActive != 0
	case infoTypeWhisper:
		ev.Kind = channelWhisper
		ev.FromInterlocutor = raw.Tail[0]&whisperFlagInterlocutor != 0
	case infoTypeLocal:
		ev.Kind = channelLocal
	default:
		logError("unknown compact chat type: %d", raw.Type)
		ev.Kind = channelError
	}
	return ev, nil
}
