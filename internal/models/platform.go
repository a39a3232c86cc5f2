package models

import (
	"sort"
	"strings"
)

// Platform describes a supported console: the display name shown to users
// and the identifier the market source uses in its game URLs.
type Platform struct {
	Name     string `json:"name"`
	MarketID string `json:"market_id"`
}

// Platforms is the fixed catalog of supported consoles, keyed by the short
// internal platform key used in API requests and scan results.
var Platforms = map[string]Platform{
	"nes":       {Name: "NES", MarketID: "nes"},
	"snes":      {Name: "SNES", MarketID: "super-nintendo"},
	"n64":       {Name: "N64", MarketID: "nintendo-64"},
	"gameboy":   {Name: "Game Boy", MarketID: "gameboy"},
	"gbc":       {Name: "Game Boy Color", MarketID: "gameboy-color"},
	"gba":       {Name: "GBA", MarketID: "gameboy-advance"},
	"gamecube":  {Name: "GameCube", MarketID: "gamecube"},
	"wii":       {Name: "Wii", MarketID: "wii"},
	"nds":       {Name: "Nintendo DS", MarketID: "nintendo-ds"},
	"3ds":       {Name: "3DS", MarketID: "nintendo-3ds"},
	"switch":    {Name: "Switch", MarketID: "nintendo-switch"},
	"genesis":   {Name: "Sega Genesis", MarketID: "sega-genesis"},
	"dreamcast": {Name: "Dreamcast", MarketID: "sega-dreamcast"},
	"saturn":    {Name: "Sega Saturn", MarketID: "sega-saturn"},
	"gamegear":  {Name: "Game Gear", MarketID: "sega-game-gear"},
	"ps1":       {Name: "PS1", MarketID: "playstation"},
	"ps2":       {Name: "PS2", MarketID: "playstation-2"},
	"ps3":       {Name: "PS3", MarketID: "playstation-3"},
	"psp":       {Name: "PSP", MarketID: "psp"},
	"xbox":      {Name: "Xbox", MarketID: "xbox"},
	"xbox360":   {Name: "Xbox 360", MarketID: "xbox-360"},
	"atari2600": {Name: "Atari 2600", MarketID: "atari-2600"},
}

// PlatformName returns the display name for a platform key, or "" if the key
// is unknown.
func PlatformName(key string) string {
	return Platforms[key].Name
}

// MarketSourceID maps a platform key to the market source's own identifier,
// or "" if the key is unknown.
func MarketSourceID(key string) string {
	return Platforms[key].MarketID
}

// PlatformKeys returns all platform keys in sorted order. Used for building
// the scan prompt and the /api/platforms listing.
func PlatformKeys() []string {
	keys := make([]string, 0, len(Platforms))
	for k := range Platforms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HumanizeSlug turns a market-source slug like "zelda-ocarina-of-time" into
// "Zelda Ocarina Of Time". Used as the title of last resort when a page
// yields no heading.
func HumanizeSlug(slug string) string {
	words := strings.Split(strings.ReplaceAll(slug, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
