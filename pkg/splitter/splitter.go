// Package splitter turns uploaded corpus text into the sentence units the
// index stores. Corpora arrive in two shapes: one sentence per line (verse
// style) and flowing prose; Auto picks between them.
package splitter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeLine     Mode = "line"
	ModeSentence Mode = "sentence"
)

const minSentenceLen = 3

// Split breaks text into sentences according to mode. Results are trimmed
// and blank entries are dropped.
func Split(text string, mode Mode) []string {
	switch mode {
	case ModeLine:
		return splitLines(text)
	case ModeSentence:
		return splitSentences(text)
	default:
		if looksLineDelimited(text) {
			return splitLines(text)
		}
		return splitSentences(text)
	}
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) >= minSentenceLen {
			out = append(out, line)
		}
	}
	return out
}

// splitSentences cuts on terminal punctuation followed by whitespace. Runs
// of terminators ("?!", "...") stay attached to the sentence they end.
func splitSentences(text string) []string {
	var out []string
	var sb strings.Builder
	runes := []rune(strings.ReplaceAll(text, "\n", " "))

	flush := func() {
		s := strings.TrimSpace(sb.String())
		sb.Reset()
		if len(s) >= minSentenceLen {
			out = append(out, s)
		}
	}

	for i := 0; i < len(runes); i++ {
		sb.WriteRune(runes[i])
		if !isTerminator(runes[i]) {
			continue
		}
		// swallow the rest of a terminator run
		for i+1 < len(runes) && isTerminator(runes[i+1]) {
			i++
			sb.WriteRune(runes[i])
		}
		if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}
	flush()
	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// looksLineDelimited reports whether most non-blank lines are short,
// self-contained units, the shape of a verse-per-line corpus.
func looksLineDelimited(text string) bool {
	lines := strings.Split(text, "\n")
	nonBlank := 0
	terminated := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		nonBlank++
		last, _ := utf8.DecodeLastRuneInString(line)
		if isTerminator(last) || last == ';' || last == ':' {
			terminated++
		}
	}
	if nonBlank < 5 {
		return false
	}
	return float64(terminated)/float64(nonBlank) >= 0.6
}
