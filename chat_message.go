package main

import "time"

// channelKind is the closed set of chat contexts a message can arrive in.
type channelKind uint8

const (
	channelError channelKind = iota
	channelMap
	channelParty
	channelSquad
	channelTeam
	channelGuild
	channelWhisper
	channelLocal
	channelGuildMotD
	channelSquadBroadcast
	channelEmote
)

func (k channelKind) String() string {
	switch k {
	case channelMap:
		return "map"
	case channelParty:
		return "party"
	case channelSquad:
		return "squad"
	case channelTeam:
		return "team"
	case channelGuild:
		return "guild"
	case channelWhisper:
		return "whisper"
	case channelLocal:
		return "local"
	case channelGuildMotD:
		return "guild-motd"
	case channelSquadBroadcast:
		return "squad-broadcast"
	case channelEmote:
		return "emote"
	}
	return "error"
}

// player identifies a message sender. Both names are optional because the
// foreign sources may hand us null pointers; an absent name is not the
// same thing as an empty one.
type player struct {
	Character    string
	HasCharacter bool
	Account      string
	HasAccount   bool
}

func presentPlayer(character, account string) player {
	return player{Character: character, HasCharacter: true, Account: account, HasAccount: true}
}

// chatEvent is the one safe shape both foreign chat ABIs decode into.
type chatEvent struct {
	Time    time.Time
	Kind    channelKind
	Text    string
	Speaker player

	// channel specific metadata
	GuildIndex  uint32
	MapID       uint32
	Broadcast   bool
	Commander   bool
	Lieutenant  bool
	GuildActive bool
	// FromInterlocutor marks a whisper whose speaker is the other party
	// of the conversation rather than the local player.
	FromInterlocutor bool
	// EmoteAction names the acted emote for channelEmote events.
	EmoteAction string
}
