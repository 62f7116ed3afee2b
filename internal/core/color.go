package core

// Color is a foreground color for a screen cell.
// The platform maps each value to an ANSI 256-color code.
type Color uint8

// Palette. Tiles use the bright range, chrome uses the rest.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
	ColorPurple
	ColorPink
)

// Attr is a set of text attributes applied on top of a color.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrReverse
	AttrDim
	AttrBlink
)

// Has reports whether all bits of other are set.
func (a Attr) Has(other Attr) bool {
	return a&other == other
}

// Cell is a single styled character on a Screen.
type Cell struct {
	Rune  rune
	Color Color
	Attr  Attr
}

// blank is the cleared cell.
var blank = Cell{Rune: ' '}
