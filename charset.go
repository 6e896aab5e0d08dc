package mt

// Charset selects the translation applied to printable characters.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetLineDrawing
)

// vt100Graphics maps 0x41-0x7E to the DEC special graphics set.
// The table is proudly stolen from rxvt, by way of st.
var vt100Graphics = [62]rune{
	'↑', '↓', '→', '←', '█', '▚', '☃', /* A - G */
	0, 0, 0, 0, 0, 0, 0, 0, /* H - O */
	0, 0, 0, 0, 0, 0, 0, 0, /* P - W */
	0, 0, 0, 0, 0, 0, 0, ' ', /* X - _ */
	'◆', '▒', '␉', '␌', '␍', '␊', '°', '±', /* ` - g */
	'␤', '␋', '┘', '┐', '┌', '└', '┼', '⎺', /* h - o */
	'⎻', '─', '⎼', '⎽', '├', '┤', '┴', '┬', /* p - w */
	'│', '≤', '≥', 'π', '≠', '£', '·', /* x - ~ */
}

// translateCharset applies cs to u. Only the line drawing set translates
// anything, and only within 0x41-0x7E.
func translateCharset(cs Charset, u rune) rune {
	if cs == CharsetLineDrawing && u >= 0x41 && u <= 0x7e {
		if g := vt100Graphics[u-0x41]; g != 0 {
			return g
		}
	}
	return u
}
