package main

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type Settings struct {
	EmoteSetIDs    []string `json:"emoteSetIds"`
	UseGlobal      bool     `json:"useGlobal"`
	OverlaySpeed   float64  `json:"overlaySpeed"`
	OverlayOpacity float64  `json:"overlayOpacity"`
	ShowChat       bool     `json:"showChat"`
	ChatLines      int      `json:"chatLines"`
}

func defaultSettings() Settings {
	return Settings{
		UseGlobal:      true,
		OverlaySpeed:   1.0,
		OverlayOpacity: 1.0,
		ShowChat:       true,
		ChatLines:      8,
	}
}

var gs = defaultSettings()

func settingsPath() string {
	return filepath.Join(baseDir, "settings.json")
}

func loadSettings() bool {
	data, err := os.ReadFile(settingsPath())
	if err != nil {
		return false
	}
	s := defaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		logError("load settings: %v", err)
		return false
	}
	if s.OverlaySpeed <= 0 || s.OverlaySpeed > 10 {
		s.OverlaySpeed = 1.0
	}
	if s.OverlayOpacity <= 0 || s.OverlayOpacity > 1 {
		s.OverlayOpacity = 1.0
	}
	if s.ChatLines <= 0 {
		s.ChatLines = 8
	}
	gs = s
	return true
}

func saveSettings() {
	data, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		logError("save settings: %v", err)
		return
	}
	if err := os.WriteFile(settingsPath(), data, 0644); err != nil {
		logError("save settings: %v", err)
	}
}
