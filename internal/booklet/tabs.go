package booklet

import "strings"

// ExpandTabs replaces every tab with the spaces needed to reach the next tab
// stop, counting columns in runes from the start of each line. "\r\n" line
// endings become "\n" and one trailing newline is dropped.
func ExpandTabs(s string, width int) string {
	if width <= 0 {
		width = DefaultTabWidth
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")

	var b strings.Builder
	b.Grow(len(s))
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := width - col%width
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

// wrapLines hard-wraps lines longer than limit runes.
func wrapLines(lines []string, limit int) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		runes := []rune(line)
		for len(runes) > limit {
			out = append(out, string(runes[:limit]))
			runes = runes[limit:]
		}
		out = append(out, string(runes))
	}
	return out
}

// wrapWords greedily fills lines of at most limit runes, breaking at spaces
// and splitting words that are longer than a line.
func wrapWords(s string, limit int) []string {
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(s) {
		w := []rune(word)
		if len(cur) > 0 && len(cur)+1+len(w) <= limit {
			cur = append(cur, ' ')
			cur = append(cur, w...)
			continue
		}
		if len(cur) > 0 {
			lines = append(lines, string(cur))
			cur = nil
		}
		for len(w) > limit {
			lines = append(lines, string(w[:limit]))
			w = w[limit:]
		}
		cur = w
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
