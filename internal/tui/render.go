// Package tui is a terminal front end for a game controller.
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/robalobadob/matchup/internal/game"
)

const cellWidth = 14

var (
	stBase    = tcell.StyleDefault
	stHUD     = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorDarkCyan)
	stCover   = tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorDarkSlateGray)
	stCloud   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorLightSlateGray)
	stItem    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	stGap     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	stDone    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	stCurrent = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	stTray    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSandyBrown)
	stReel    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	stFlash   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorMaroon).Bold(true)
)

// Render draws v onto s. flash is a transient banner, empty for none.
func Render(s tcell.Screen, v game.View, flash string) {
	s.Clear()
	w, h := s.Size()

	hud := fmt.Sprintf(" %s  level %d (%s)  picks %d  mistakes %d ",
		v.State, v.Level.Level, v.Level.SuperMode, v.Picks, v.Mistakes)
	if v.Locked {
		hud += " [locked]"
	}
	fill(s, 0, 0, w, stHUD)
	drawText(s, 0, 0, hud, stHUD)

	if v.State == game.StateMenu {
		drawCentered(s, w/2, h/2-1, "MATCHUP", stCurrent)
		drawCentered(s, w/2, h/2+1, "s: start   q: quit", stItem)
		if v.LastError != "" {
			drawCentered(s, w/2, h/2+3, v.LastError, stFlash)
		}
		s.Show()
		return
	}

	y := 2
	for i, r := range v.Rows {
		marker := "  "
		if i == v.Current {
			marker = "> "
		}
		drawText(s, 0, y, marker, stCurrent)
		drawRow(s, 2, y, r)
		y += 2
	}

	y++
	if v.TrayOpen && len(v.Tray) > 0 {
		x := 2
		for i, c := range v.Tray {
			label := fmt.Sprintf(" %d %s ", i+1, c.Item)
			drawText(s, x, y, label, stTray)
			x += len([]rune(label)) + 2
		}
	} else {
		drawText(s, 2, y, strings.Repeat("░", game.TraySize*cellWidth), stCover)
	}
	y += 2

	if v.ReelShown {
		drawReel(s, 2, y, w-4, v)
		y += 2
	}
	if flash != "" {
		drawCentered(s, w/2, y+1, " "+flash+" ", stFlash)
	}
	drawText(s, 0, h-1, help(v.State), stBase)
	s.Show()
}

func drawRow(s tcell.Screen, x, y int, r game.RowView) {
	drawText(s, x, y, pad(r.Theme, 12), stItem)
	x += 12
	for col := 0; col < game.GridWidth; col++ {
		cx := x + col*cellWidth
		inRow := col >= r.StartOffset && col < r.StartOffset+r.SlotCount
		switch {
		case !inRow:
			continue
		case r.Covered || r.State == game.RowHidden:
			drawText(s, cx, y, pad("▒▒▒▒▒▒▒▒", cellWidth-1), stCover)
		case r.State == game.RowObscured:
			drawText(s, cx, y, pad("☁ ☁ ☁", cellWidth-1), stCloud)
		default:
			item, ok := r.Visible[col]
			switch {
			case ok && r.Completed && r.MissingSlot != nil && *r.MissingSlot == col:
				drawText(s, cx, y, pad(item, cellWidth-1), stDone)
			case ok:
				drawText(s, cx, y, pad(item, cellWidth-1), stItem)
			default:
				drawText(s, cx, y, pad("[ ? ]", cellWidth-1), stGap)
			}
		}
	}
}

func drawReel(s tcell.Screen, x, y, width int, v game.View) {
	fill(s, x, y, width, stReel)
	if len(v.Reel) == 0 {
		drawText(s, x, y, " reel empty ", stReel)
		return
	}
	cur := v.Reel[v.ReelCursor]
	line := fmt.Sprintf(" ◀ %d/%d  %s: %s ▶ ", v.ReelCursor+1, len(v.Reel), cur.Theme, cur.Item)
	drawText(s, x, y, line, stReel)
}

func help(st game.State) string {
	switch st {
	case game.StatePlaying:
		return "1-4 pick   p peek   q menu"
	case game.StateShowImg:
		return "←/→ browse   enter continue   esc menu"
	case game.StateShowReel:
		return "←/→ browse   enter replay   esc menu"
	default:
		return "q menu"
	}
}

func fill(s tcell.Screen, x, y, n int, st tcell.Style) {
	for i := 0; i < n; i++ {
		s.SetContent(x+i, y, ' ', nil, st)
	}
}

func drawText(s tcell.Screen, x, y int, text string, st tcell.Style) {
	for i, ch := range []rune(text) {
		s.SetContent(x+i, y, ch, nil, st)
	}
}

func drawCentered(s tcell.Screen, cx, cy int, text string, st tcell.Style) {
	drawText(s, cx-len([]rune(text))/2, cy, text, st)
}

func pad(s string, n int) string {
	r := []rune(s)
	if len(r) >= n {
		return string(r[:n])
	}
	return s + strings.Repeat(" ", n-len(r))
}
