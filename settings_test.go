package main

import (
	"testing"
)

func TestSettingsRoundTrip(t *testing.T) {
	oldBase, oldGS := baseDir, gs
	defer func() { baseDir, gs = oldBase, oldGS }()
	baseDir = t.TempDir()

	gs = defaultSettings()
	gs.EmoteSetIDs = []string{"abc", "def"}
	gs.UseGlobal = false
	gs.OverlayOpacity = 0.7
	saveSettings()

	gs = defaultSettings()
	if !loadSettings() {
		t.Fatal("loadSettings failed")
	}
	if len(gs.EmoteSetIDs) != 2 || gs.EmoteSetIDs[0] != "abc" {
		t.Fatalf("ids = %v", gs.EmoteSetIDs)
	}
	if gs.UseGlobal || gs.OverlayOpacity != 0.7 {
		t.Fatalf("settings = %+v", gs)
	}
}

func TestSettingsMissingFile(t *testing.T) {
	oldBase := baseDir
	defer func() { baseDir = oldBase }()
	baseDir = t.TempDir()
	if loadSettings() {
		t.Fatal("loadSettings reported success with no file")
	}
}

func TestSettingsClampsBadValues(t *testing.T) {
	oldBase, oldGS := baseDir, gs
	defer func() { baseDir, gs = oldBase, oldGS }()
	baseDir = t.TempDir()

	gs = defaultSettings()
	gs.OverlaySpeed = -0.5
	gs.OverlayOpacity = 5
	gs.ChatLines = -1
	saveSettings()
	loadSettings()
	if gs.OverlaySpeed != 1.0 || gs.OverlayOpacity != 1.0 || gs.ChatLines != 8 {
		t.Fatalf("settings not clamped: %+v", gs)
	}
}
