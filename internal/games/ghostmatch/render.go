package ghostmatch

import (
	"fmt"
	"unicode/utf8"

	"github.com/vovakirdan/ghost-match/internal/core"
	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"
)

const (
	cellWidth  = 5 // Width of each cell (including borders)
	cellHeight = 2 // Height of each cell (including borders)
	hudHeight  = 3
	footHeight = 2 // message and controls
)

// tileStyle is how one symbol is drawn.
type tileStyle struct {
	glyph rune
	color core.Color
}

var tileStyles = [engine.MaxSymbols + 1]tileStyle{
	engine.Empty:     {'·', core.ColorGray},
	engine.Happy:     {'●', core.ColorBrightRed},
	engine.Scary:     {'▲', core.ColorBrightGreen},
	engine.Cool:      {'◆', core.ColorBrightBlue},
	engine.Angry:     {'■', core.ColorBrightYellow},
	engine.Surprised: {'★', core.ColorBrightMagenta},
	engine.Wink:      {'♥', core.ColorBrightCyan},
	engine.Sleepy:    {'♣', core.ColorOrange},
	engine.Dizzy:     {'♠', core.ColorPurple},
	engine.Sneaky:    {'✚', core.ColorPink},
}

// styleFor returns the glyph and color of a symbol.
func styleFor(s engine.Symbol) tileStyle {
	if int(s) < len(tileStyles) {
		return tileStyles[s]
	}
	return tileStyle{'?', core.ColorWhite}
}

// layoutSize returns the screen size needed for an n×n board.
func layoutSize(n int) (w, h int) {
	return n*cellWidth + 1, hudHeight + 1 + n*cellHeight + 1 + footHeight
}

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	n := len(g.display)
	boardW, boardH := n*cellWidth+1, n*cellHeight+1
	boardX := (g.screenW - boardW) / 2
	boardY := hudHeight + 1
	st := g.session.Status()

	g.renderHUD(dst, st, boardX, boardW)
	g.renderGrid(dst, n, boardX, boardY)

	if st.State == engine.StatePaused {
		g.drawOverlay(dst, boardX+boardW/2, boardY+boardH/2, "PAUSED", "Press P to resume")
		g.renderFooter(dst, boardY+boardH)
		return
	}

	g.renderTiles(dst, boardX, boardY)
	g.renderFooter(dst, boardY+boardH)

	if g.State().GameOver {
		g.renderGameOver(dst, st, boardX+boardW/2, boardY+boardH/2)
	}
}

// renderTooSmall shows a "window too small" message.
func (g *Game) renderTooSmall(dst *core.Screen) {
	w, h := layoutSize(len(g.display))
	y := g.screenH / 2
	dst.DrawTextCentered(y, "Window too small", core.ColorRed)
	dst.DrawTextCentered(y+1, fmt.Sprintf("Need %dx%d", w, h), core.ColorGray)
}

// renderHUD draws score, moves, rank and the next milestone.
func (g *Game) renderHUD(dst *core.Screen, st engine.Status, boardX, boardW int) {
	dst.DrawTextCentered(0, g.Title(), core.ColorBrightCyan)

	dst.DrawText(boardX, 1, fmt.Sprintf("Score: %s", engine.FormatScore(st.Score)))
	drawRight(dst, boardX+boardW, 1, fmt.Sprintf("Best: %s", engine.FormatScore(st.HighScore)), core.ColorDefault)

	chain := fmt.Sprintf("Moves: %d  Chain: x%d", st.Moves, st.LongestChain)
	dst.DrawColoredText(boardX, 2, chain, core.ColorGray)

	drawRight(dst, boardX+boardW, 2, "Rank "+engine.RankFor(st.Score).Grade, core.ColorGray)
}

// renderGrid draws the cell borders.
func (g *Game) renderGrid(dst *core.Screen, n, boardX, boardY int) {
	for y := range n + 1 {
		for x := range n + 1 {
			px := boardX + x*cellWidth
			py := boardY + y*cellHeight

			var corner rune
			switch {
			case y == 0 && x == 0:
				corner = '┌'
			case y == 0 && x == n:
				corner = '┐'
			case y == n && x == 0:
				corner = '└'
			case y == n && x == n:
				corner = '┘'
			case y == 0:
				corner = '┬'
			case y == n:
				corner = '┴'
			case x == 0:
				corner = '├'
			case x == n:
				corner = '┤'
			default:
				corner = '┼'
			}
			dst.SetColored(px, py, corner, core.ColorGray)

			if x < n {
				for i := 1; i < cellWidth; i++ {
					dst.SetColored(px+i, py, '─', core.ColorGray)
				}
			}
			if y < n {
				for i := 1; i < cellHeight; i++ {
					dst.SetColored(px, py+i, '│', core.ColorGray)
				}
			}
		}
	}
}

// renderTiles draws the symbols plus cursor, selection, hint and replay marks.
func (g *Game) renderTiles(dst *core.Screen, boardX, boardY int) {
	board := g.display
	var fr *frame
	if g.replay != nil && !g.replay.done() {
		f := g.replay.current()
		fr = &f
		board = f.board
	}
	flashOn := (g.tick/3)%2 == 0

	for r, row := range board {
		for c, sym := range row {
			p := engine.Pos(r, c)
			style := styleFor(sym)
			var attr core.Attr

			switch {
			case fr != nil && fr.highlight[p]:
				switch fr.kind {
				case frameFlash:
					if flashOn {
						attr |= core.AttrReverse
					}
				default:
					attr |= core.AttrBold
				}
			case fr == nil && g.hasSelect && g.selected == p:
				attr |= core.AttrReverse | core.AttrBold
			case fr == nil && g.showHint && (g.hintA == p || g.hintB == p):
				attr |= core.AttrBlink
			}
			if sym.IsEmpty() {
				attr |= core.AttrDim
			}

			cellX := boardX + c*cellWidth + 1
			cellY := boardY + r*cellHeight + 1
			dst.SetCell(cellX+1, cellY, core.Cell{Rune: style.glyph, Color: style.color, Attr: attr})

			if fr == nil && g.cursor == p {
				dst.SetColored(cellX, cellY, '[', core.ColorBrightWhite)
				dst.SetColored(cellX+2, cellY, ']', core.ColorBrightWhite)
			}
		}
	}
}

// renderFooter draws the turn message, or the next milestone when there is
// none, and the control hints.
func (g *Game) renderFooter(dst *core.Screen, y int) {
	switch {
	case g.messageLeft > 0 && g.message != "":
		dst.DrawTextCentered(y, g.message, g.messageColor)
	default:
		score := g.session.Status().Score
		if target, remaining, ok := engine.NextMilestone(score); ok {
			dst.DrawTextCentered(y, fmt.Sprintf("Next milestone %s, %d to go", engine.FormatScore(target), remaining), core.ColorGray)
		}
	}
	dst.DrawTextCentered(y+1, g.Controls(), core.ColorGray)
}

// renderGameOver draws the final score panel.
func (g *Game) renderGameOver(dst *core.Screen, st engine.Status, centerX, centerY int) {
	reason := "No moves left"
	if st.EndReason == engine.EndQuit {
		reason = "Game ended"
	}
	lines := []string{
		"GAME OVER",
		reason,
		fmt.Sprintf("Score: %d  Rank %s", st.Score, engine.RankFor(st.Score).Grade),
		fmt.Sprintf("Moves: %d  Longest chain: %d", st.Moves, st.LongestChain),
	}
	if st.Score > 0 && st.Score >= st.HighScore {
		lines = append(lines, "New best!")
	}
	lines = append(lines, "Press R to play again")
	g.drawOverlay(dst, centerX, centerY, lines...)
}

// drawOverlay draws a centered text overlay.
func (g *Game) drawOverlay(dst *core.Screen, centerX, centerY int, lines ...string) {
	maxLen := 0
	for _, line := range lines {
		maxLen = max(maxLen, utf8.RuneCountInString(line))
	}

	box := core.NewRect(centerX-(maxLen+4)/2, centerY-(len(lines)+2)/2, maxLen+4, len(lines)+2)
	dst.FillRect(box, core.Cell{Rune: ' '})
	dst.DrawBox(box, core.ColorBrightWhite)

	for i, line := range lines {
		x := centerX - utf8.RuneCountInString(line)/2
		color := core.ColorDefault
		if i == 0 {
			color = core.ColorBrightYellow
		}
		dst.DrawStyledText(x, box.Y+1+i, line, color, 0)
	}
}

// drawRight draws text ending just before column right.
func drawRight(dst *core.Screen, right, y int, text string, c core.Color) {
	dst.DrawColoredText(right-utf8.RuneCountInString(text), y, text, c)
}

// Controls returns the control hints for the game.
func (g *Game) Controls() string {
	return "Arrows: Move | Space: Select | H: Hint | P: Pause | R: Restart | Q: Quit"
}
