// Package naturalness estimates how human (non-spammy) a generated post reads.
package naturalness

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	baseScore      = 85
	shortLength    = 20
	shortPenalty   = 15
	longLength     = 200
	longPenalty    = 10
	emojiAllowance = 5
	emojiPenalty   = 2
	exclaimPenalty = 10
	repeatRun      = 4
	repeatPenalty  = 10
	minScore       = 0
	maxScore       = 100
)

// pictographs approximates Extended_Pictographic plus regional indicators.
var pictographs = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x203c, Hi: 0x203c, Stride: 1},
		{Lo: 0x2049, Hi: 0x2049, Stride: 1},
		{Lo: 0x2122, Hi: 0x2122, Stride: 1},
		{Lo: 0x2139, Hi: 0x2139, Stride: 1},
		{Lo: 0x2194, Hi: 0x21aa, Stride: 1},
		{Lo: 0x231a, Hi: 0x23ff, Stride: 1},
		{Lo: 0x24c2, Hi: 0x24c2, Stride: 1},
		{Lo: 0x25aa, Hi: 0x25fe, Stride: 1},
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1},
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2b05, Hi: 0x2b55, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303d, Hi: 0x303d, Stride: 1},
		{Lo: 0x3297, Hi: 0x3299, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1f0ff, Stride: 1},
		{Lo: 0x1f10d, Hi: 0x1f1ff, Stride: 1},
		{Lo: 0x1f200, Hi: 0x1f2ff, Stride: 1},
		{Lo: 0x1f300, Hi: 0x1f5ff, Stride: 1},
		{Lo: 0x1f600, Hi: 0x1f64f, Stride: 1},
		{Lo: 0x1f680, Hi: 0x1f6ff, Stride: 1},
		{Lo: 0x1f700, Hi: 0x1faff, Stride: 1},
		{Lo: 0x1fc00, Hi: 0x1fffd, Stride: 1},
	},
}

// Score returns a 0-100 heuristic; higher reads more natural. Length is
// measured in runes, not UTF-16 units, so an emoji counts once.
func Score(text string) int {
	score := baseScore

	n := utf8.RuneCountInString(text)
	if n < shortLength {
		score -= shortPenalty
	}
	if n > longLength {
		score -= longPenalty
	}

	if emojis := CountEmoji(text); emojis > emojiAllowance {
		score -= emojiPenalty * (emojis - emojiAllowance)
	}

	if strings.Contains(text, "!!!") {
		score -= exclaimPenalty
	}

	if hasRepeatedRun(text, repeatRun) {
		score -= repeatPenalty
	}

	return clamp(score)
}

// CountEmoji counts pictographic runes. Modifiers and joiners are not counted
// on their own.
func CountEmoji(text string) int {
	count := 0
	for _, r := range text {
		if unicode.Is(pictographs, r) {
			count++
		}
	}
	return count
}

func hasRepeatedRun(text string, run int) bool {
	var prev rune
	length := 0
	for i, r := range text {
		if i > 0 && r == prev {
			length++
		} else {
			length = 1
		}
		if length >= run {
			return true
		}
		prev = r
	}
	return false
}

func clamp(score int) int {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
