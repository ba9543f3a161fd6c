package catalog

import "strings"

// QueryVariants holds the spellings of one search query tried against the
// local store. Katakana and hiragana spellings of the same title are common
// in this domain, so folding widens recall considerably.
type QueryVariants struct {
	Raw      string
	Lower    string
	Hiragana string
}

// Normalize canonicalizes a free-text query. Pure and deterministic.
func Normalize(query string) QueryVariants {
	return QueryVariants{
		Raw:      query,
		Lower:    strings.ToLower(query),
		Hiragana: foldKatakana(query),
	}
}

// List returns the distinct, non-empty variants in priority order.
func (v QueryVariants) List() []string {
	out := make([]string, 0, 3)
	seen := make(map[string]struct{}, 3)
	for _, s := range []string{v.Raw, v.Lower, v.Hiragana} {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// foldKatakana maps each rune in the full-width katakana block
// (U+30A1..U+30F6) to its hiragana counterpart, a fixed -0x60 offset.
func foldKatakana(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x30A1 && r <= 0x30F6 {
			r -= 0x60
		}
		b.WriteRune(r)
	}
	return b.String()
}
