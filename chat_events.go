package main

import (
	"fmt"
	"time"
	"unsafe"
)

// Extended chat ABI: a larger tagged union. Most payload shapes share a
// common prefix (account GUID, character name, account name, content)
// plus a variant tail; the emote shapes do not and get their own decode
// path below.

const (
	extTypeError          uint8 = 0
	extTypeGuild          uint8 = 1
	extTypeGuildMotD      uint8 = 2
	extTypeLocal          uint8 = 3
	extTypeMap            uint8 = 4
	extTypeParty          uint8 = 5
	extTypeSquad          uint8 = 6
	extTypeSquadMessage   uint8 = 7
	extTypeSquadBroadcast uint8 = 8
	extTypeTeamPvP        uint8 = 9
	extTypeTeamWvW        uint8 = 10
	extTypeWhisper        uint8 = 11
	extTypeEmote          uint8 = 12
	extTypeEmoteCustom    uint8 = 13
)

type accountGUID [16]byte

// rawEventPayload is the raw union blob. It is only ever reinterpreted
// through the typed views below, never exposed to callers.
type rawEventPayload [48]byte

type rawChatEvent struct {
	DateTime fileTime
	Type     uint8
	_        [7]byte
	Payload  rawEventPayload
}

// rawGenericSource is the shared prefix of every non-emote payload.
type rawGenericSource struct {
	Account       accountGUID
	CharacterName *byte
	AccountName   *byte
	Content       *byte
}

type rawGuildSource struct {
	rawGenericSource
	GuildIndex uint32
}

type rawTeamWvWSource struct {
	rawGenericSource
	MapID uint32
}

type rawMotDSource struct {
	Content    *byte
	GuildIndex uint32
}

type rawSquadBroadcastSource struct {
	Content *byte
}

// The two emote payloads are not prefix compatible with the rest.
type rawEmoteSource struct {
	CharacterName *byte
	ActionTaken   uint32
}

type rawEmoteCustomSource struct {
	CharacterName *byte
	ActionTaken   *byte
}

func (p *rawEventPayload) generic() *rawGenericSource {
	return (*rawGenericSource)(unsafe.Pointer(p))
}
func (p *rawEventPayload) guild() *rawGuildSource {
	return (*rawGuildSource)(unsafe.Pointer(p))
}
func (p *rawEventPayload) teamWvW() *rawTeamWvWSource {
	return (*rawTeamWvWSource)(unsafe.Pointer(p))
}
func (p *rawEventPayload) motd() *rawMotDSource {
	return (*rawMotDSource)(unsafe.Pointer(p))
}
func (p *rawEventPayload) squadBroadcast() *rawSquadBroadcastSource {
	return (*rawSquadBroadcastSource)(unsafe.Pointer(p))
}
func (p *rawEventPayload) emote() *rawEmoteSource {
	return (*rawEmoteSource)(unsafe.Pointer(p))
}
func (p *rawEventPayload) emoteCustom() *rawEmoteCustomSource {
	return (*rawEmoteCustomSource)(unsafe.Pointer(p))
}

var gameEmoteNames = map[uint32]string{
	0: "bless",
	1: "beckon",
	2: "dance",
	3: "sit",
	4: "yes",
	5: "no",
	6: "cower",
	7: "laugh",
}

func gameEmoteName(action uint32) string {
	if name, ok := gameEmoteNames[action]; ok {
		return name
	}
	return fmt.Sprintf("emote-%d", action)
}

// decodeGeneric extracts the common prefix fields. Absent content or
// character name decode to empty strings; an absent account name stays
// absent on the speaker.
func decodeGeneric(src *rawGenericSource) (speaker player, text string, err error) {
	ch, hasCh, err := goString(src.CharacterName)
	if err != nil {
		return speaker, "", fmt.Errorf("character name: %w", err)
	}
	ac, hasAc, err := goString(src.AccountName)
	if err != nil {
		return speaker, "", fmt.Errorf("account name: %w", err)
	}
	text, _, err = goString(src.Content)
	if err != nil {
		return speaker, "", fmt.Errorf("content: %w", err)
	}
	speaker = player{Character: ch, HasCharacter: hasCh, Account: ac, HasAccount: hasAc}
	return speaker, text, nil
}

// decodeChatEvent converts an extended-ABI chat struct into a chatEvent.
// Unknown discriminants become channelError and are logged; invalid UTF-8
// in any string field fails the whole decode.
func decodeChatEvent(raw *rawChatEvent) (chatEvent, error) {
	var ev chatEvent
	var err error

	ev.Time, err = raw.DateTime.toTime()
	if err != nil {
		logError("chat timestamp conversion failed: %v", err)
		ev.Time = time.Now().UTC()
		err = nil
	}

	p := &raw.Payload
	switch raw.Type {
	case extTypeGuild:
		ev.Kind = channelGuild
		if ev.Speaker, ev.Text, err = decodeGeneric(p.generic()); err != nil {
			return ev, err
		}
		ev.GuildIndex = p.guild().GuildIndex
	case extTypeGuildMotD:
		ev.Kind = channelGuildMotD
		motd := p.motd()
		if ev.Text, _, err = goString(motd.Content); err != nil {
			return ev, fmt.Errorf("motd content: %w", err)
		}
		ev.GuildIndex = motd.GuildIndex
	case extTypeLocal:
		ev.Kind = channelLocal
		ev.Speaker, ev.Text, err = decodeGeneric(p.generic())
	case extTypeMap:
		ev.Kind = channelMap
		ev.Speaker, ev.Text, err = decodeGeneric(p.generic())
	case extTypeParty:
		ev.Kind = channelParty
		ev.Speaker, ev.Text, err = decodeGeneric(p.generic())
	case extTypeSquad:
		ev.Kind = channelSquad
		ev.Speaker, ev.Text, err = decodeGeneric(p.generic())
	case extTypeSquadMessage, extTypeSquadBroadcast:
		ev.Kind = channelSquadBroadcast
		ev.Broadcast = true
		ev.Text, _, err = goString(p.squadBroadcast().Content)
	case extTypeTeamPvP:
		ev.Kind = channelTeam
		ev.Speaker, ev.Text, err = decodeGeneric(p.generic())
	case extTypeTeamWvW:
		ev.Kind = channelTeam
		if ev.Speaker, ev.Text, err = decodeGeneric(p.generic()); err != nil {
			return ev, err
		}
		ev.MapID = p.teamWvW().MapID
	case extTypeWhisper:
		ev.Kind = channelWhisper
		ev.Speaker, ev.Text, err = decodeGeneric(p.generic())
	case extTypeEmote:
		ev.Kind = channelEmote
		em := p.emote()
		ev.Speaker.Character, ev.Speaker.HasCharacter, err = goString(em.CharacterName)
		if err != nil {
			return ev, fmt.Errorf("emote character: %w", err)
		}
		ev.EmoteAction = gameEmoteName(em.ActionTaken)
	case extTypeEmoteCustom:
		ev.Kind = channelEmote
		em := p.emoteCustom()
		ev.Speaker.Character, ev.Speaker.HasCharacter, err = goString(em.CharacterName)
		if err != nil {
			return ev, fmt.Errorf("emote character: %w", err)
		}
		if ev.EmoteAction, _, err = goString(em.ActionTaken); err != nil {
			return ev, fmt.Errorf("emote action: %w", err)
		}
	default:
		if raw.Type != extTypeError {
			logError("unknown extended chat type: %d", raw.Type)
		}
		ev.Kind = channelError
	}
	if err != nil {
		return ev, err
	}
	return ev, nil
}
