package mt

import "github.com/unilibs/uniwidth"

// runeWidth returns the display width of r: 2 for wide characters (CJK,
// emoji), 1 for normal ones, 0 for zero-width input (combining marks,
// control characters).
func runeWidth(r rune) int {
	return uniwidth.RuneWidth(r)
}

// StringWidth returns the total display width of s.
func StringWidth(s string) int {
	return uniwidth.StringWidth(s)
}
