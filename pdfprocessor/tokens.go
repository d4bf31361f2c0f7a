// tokens.go assembles the per-character text elements reported by the PDF
// text layer into words and lines with stable reading order. Both
// detection passes operate on the line/token view built here.
package pdfprocessor

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Grouping tolerances, in PDF points.
const (
	// defaultLineTolerance buckets characters into the same text line.
	defaultLineTolerance = 2.0

	// defaultTokenGap is the minimum horizontal gap that splits two
	// characters into separate tokens.
	defaultTokenGap = 2.5
)

// token is one word-like run of characters on a line.
type token struct {
	x0, x1 float64 // horizontal span
	y      float64 // baseline
	text   string
}

// textLine is one visual line of tokens, ordered left to right.
type textLine struct {
	y      float64
	tokens []token
}

// mid returns the horizontal midpoint of the token.
func (t token) mid() float64 {
	return (t.x0 + t.x1) / 2
}

// assembleLines groups positioned characters into lines and tokens.
// Lines are returned top of page first (PDF Y origin is bottom-left, so
// larger Y comes first); tokens within a line are ordered left to right.
func assembleLines(texts []pdf.Text, lineTolerance float64) []textLine {
	if len(texts) == 0 {
		return nil
	}
	if lineTolerance <= 0 {
		lineTolerance = defaultLineTolerance
	}

	// Bucket characters by quantized baseline.
	buckets := make(map[int][]pdf.Text)
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		key := int(t.Y/lineTolerance + 0.5)
		buckets[key] = append(buckets[key], t)
	}

	keys := make([]int, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	lines := make([]textLine, 0, len(keys))
	for _, key := range keys {
		chars := buckets[key]
		sort.Slice(chars, func(i, j int) bool { return chars[i].X < chars[j].X })

		line := textLine{y: chars[0].Y}
		var current *token
		var lastEnd float64

		for _, ch := range chars {
			gap := maxFloat(defaultTokenGap, ch.FontSize*0.3)
			if current == nil || ch.X-lastEnd > gap {
				line.tokens = append(line.tokens, token{x0: ch.X, x1: ch.X + ch.W, y: ch.Y, text: ch.S})
				current = &line.tokens[len(line.tokens)-1]
			} else {
				current.text += ch.S
				if ch.X+ch.W > current.x1 {
					current.x1 = ch.X + ch.W
				}
			}
			lastEnd = ch.X + ch.W
		}

		for i := range line.tokens {
			line.tokens[i].text = strings.TrimSpace(line.tokens[i].text)
		}
		lines = append(lines, line)
	}
	return lines
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
