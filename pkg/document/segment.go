package document

import (
	"unicode"
	"unicode/utf8"
)

// span is a half-open character range over the document text.
type span struct {
	begin, end int
}

// splitSentences segments text into sentence spans. A sentence ends at a run
// of terminal punctuation (., !, ?) or at a newline. Offsets index into the
// original (already normalized) text.
func splitSentences(text string) []span {
	var spans []span
	start := -1
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case start == -1:
			if !unicode.IsSpace(r) {
				start = i
			}
			i += size
		case r == '.' || r == '!' || r == '?':
			j := i + size
			for j < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[j:])
				if r2 != '.' && r2 != '!' && r2 != '?' {
					break
				}
				j += s2
			}
			spans = append(spans, span{start, j})
			start = -1
			i = j
		case r == '\n':
			spans = append(spans, span{start, trimTrailingSpace(text, start, i)})
			start = -1
			i += size
		default:
			i += size
		}
	}
	if start != -1 {
		spans = append(spans, span{start, trimTrailingSpace(text, start, len(text))})
	}
	return spans
}

func trimTrailingSpace(text string, start, end int) int {
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return end
}
