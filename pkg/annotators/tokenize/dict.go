package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Dict is a multi-word token dictionary. Entries are phrases whose words,
// when seen adjacently in the token stream, are merged into a single token
// by greedy longest match.
type Dict struct {
	phrases map[string]struct{}
	maxLen  int
}

// NewDict creates a dictionary from phrases. Matching is case-insensitive;
// single-word entries are ignored since they never merge anything.
func NewDict(phrases []string) *Dict {
	d := &Dict{phrases: make(map[string]struct{}, len(phrases)), maxLen: 1}
	for _, p := range phrases {
		words := strings.Fields(strings.ToLower(p))
		if len(words) < 2 {
			continue
		}
		d.phrases[strings.Join(words, " ")] = struct{}{}
		if len(words) > d.maxLen {
			d.maxLen = len(words)
		}
	}
	return d
}

// Len returns the number of multi-word entries.
func (d *Dict) Len() int {
	return len(d.phrases)
}

// merge applies greedy longest match over adjacent tokens. A merged token
// spans from the first to the last matched token.
func (d *Dict) merge(toks []token) []token {
	if len(d.phrases) == 0 {
		return toks
	}

	var result []token
	i := 0
	for i < len(toks) {
		max := d.maxLen
		if remaining := len(toks) - i; max > remaining {
			max = remaining
		}

		matched := 0
		for n := max; n >= 2; n-- {
			if _, ok := d.phrases[joinSurfs(toks[i:i+n])]; ok {
				matched = n
				break
			}
		}

		if matched > 0 {
			result = append(result, token{
				surf:  joinOriginal(toks[i : i+matched]),
				begin: toks[i].begin,
				end:   toks[i+matched-1].end,
			})
			i += matched
		} else {
			result = append(result, toks[i])
			i++
		}
	}
	return result
}

func joinSurfs(toks []token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = strings.ToLower(t.surf)
	}
	return strings.Join(parts, " ")
}

func joinOriginal(toks []token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.surf
	}
	return strings.Join(parts, " ")
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\''
}

func runeLen(r rune) int {
	return utf8.RuneLen(r)
}
