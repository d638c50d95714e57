package clean

import (
	"strings"
	"unicode"
)

// emoji covers pictographs, emoticons, dingbats, flags and the joiners and
// selectors used to build emoji sequences.
var emoji = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200d, Hi: 0x200d, Stride: 1}, // zero width joiner
		{Lo: 0x20e3, Hi: 0x20e3, Stride: 1}, // keycap
		{Lo: 0x231a, Hi: 0x231b, Stride: 1},
		{Lo: 0x23e9, Hi: 0x23f3, Stride: 1},
		{Lo: 0x23f8, Hi: 0x23fa, Stride: 1},
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1}, // misc symbols, dingbats
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2b05, Hi: 0x2b07, Stride: 1},
		{Lo: 0x2b1b, Hi: 0x2b1c, Stride: 1},
		{Lo: 0x2b50, Hi: 0x2b50, Stride: 1},
		{Lo: 0x2b55, Hi: 0x2b55, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303d, Hi: 0x303d, Stride: 1},
		{Lo: 0x3297, Hi: 0x3297, Stride: 1},
		{Lo: 0x3299, Hi: 0x3299, Stride: 1},
		{Lo: 0xfe0e, Hi: 0xfe0f, Stride: 1}, // variation selectors
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1faff, Stride: 1}, // pictographs, emoticons, flags
		{Lo: 0xe0020, Hi: 0xe007f, Stride: 1}, // tag sequences
	},
}

// IsEmoji reports whether r falls in a recognized emoji range.
func IsEmoji(r rune) bool {
	return unicode.Is(emoji, r)
}

// removeEmoji replaces every run of emoji code points with one space, so
// removal never joins the surrounding words.
func removeEmoji(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inEmoji := false
	for _, r := range s {
		if IsEmoji(r) {
			if !inEmoji {
				b.WriteByte(' ')
				inEmoji = true
			}
			continue
		}
		inEmoji = false
		b.WriteRune(r)
	}
	return b.String()
}
