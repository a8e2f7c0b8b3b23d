package main

import (
	"image/color"
	"time"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

const (
	initialWindowW, initialWindowH = 960, 720
	chatLineHeight                 = 16
	chatGlyphAdvance               = 7
	chatMargin                     = 8
)

// chatFace is fixed-advance on purpose: inline emote glyph positions fall
// out of a simple rune count instead of a text shaping pass.
var chatFace = text.NewGoXFace(basicfont.Face7x13)

type Game struct {
	overlay *overlayEngine
	tex     *textureCache
}

func (g *Game) Update() error {
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	now := time.Now()
	g.overlay.tick(screen, now)
	if gs.ShowChat {
		g.drawChatConsole(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func drawChatText(screen *ebiten.Image, s string, x, y float64, col color.Color) float64 {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	text.Draw(screen, s, chatFace, op)
	return x + float64(utf8.RuneCountInString(s)*chatGlyphAdvance)
}

// drawChatConsole renders the newest chat lines bottom-left. A token that
// matched an emote with a ready texture is drawn as an inline glyph
// scaled to the line height; anything else is plain text.
func (g *Game) drawChatConsole(screen *ebiten.Image) {
	lines := recentChatMessages(gs.ChatLines)
	sh := screen.Bounds().Dy()
	y := float64(sh - chatMargin - len(lines)*chatLineHeight)

	dim := color.NRGBA{0xaa, 0xaa, 0xaa, 0xff}
	for _, line := range lines {
		x := float64(chatMargin)
		x = drawChatText(screen, "["+line.kind.String()+"] ", x, y, dim)
		x = drawChatText(screen, line.speaker+": ", x, y, dim)
		for i, tok := range line.tokens {
			if i > 0 {
				x += chatGlyphAdvance
			}
			if e, ok := g.tex.get(emoteIdentifier(tok)); ok && len(e.frames) > 0 && e.h > 0 {
				scale := float64(chatLineHeight-2) / float64(e.h)
				op := &ebiten.DrawImageOptions{}
				op.GeoM.Scale(scale, scale)
				op.GeoM.Translate(x, y)
				screen.DrawImage(e.frames[0].img, op)
				x += float64(e.w) * scale
				continue
			}
			x = drawChatText(screen, tok, x, y, color.White)
		}
		y += chatLineHeight
	}
}
