package proptest

import "strings"

const (
	identStart = "abcdefghijklmnopqrstuvwxyz_"
	identBody  = identStart + "0123456789"
)

// Identifier returns a lowercase attribute name of length [1, maxLen].
func (g *Generator) Identifier(maxLen int) string {
	if maxLen <= 0 {
		maxLen = 1
	}
	b := make([]byte, g.IntRange(1, maxLen))
	b[0] = identStart[g.Intn(len(identStart))]
	for i := 1; i < len(b); i++ {
		b[i] = identBody[g.Intn(len(identBody))]
	}
	return string(b)
}

// UniqueIdentifiers returns n distinct identifiers.
func (g *Generator) UniqueIdentifiers(n, maxLen int) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		s := g.Identifier(maxLen)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Direction returns "asc" or "desc" in random letter case, or an empty
// string.
func (g *Generator) Direction() string {
	dir := Pick(g, []string{"asc", "desc", ""})
	var b strings.Builder
	for _, r := range dir {
		if g.Bool() {
			b.WriteString(strings.ToUpper(string(r)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// OptionName returns one of the searchd OPTION names.
func (g *Generator) OptionName() string {
	return Pick(g, []string{
		"ranker", "max_matches", "cutoff", "max_query_time", "field_weights",
		"index_weights", "retry_count", "retry_delay", "reverse_scan", "comment",
	})
}

// Scalar returns a random int, string or bool value.
func (g *Generator) Scalar() any {
	switch g.Intn(3) {
	case 0:
		return g.IntRange(-1000, 1000)
	case 1:
		return g.Identifier(12)
	}
	return g.Bool()
}
