package slash

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Filter narrows cmds to those matching query. Implementations must be pure
// and must not reorder or modify cmds.
type Filter func(query string, cmds []*Command) []*Command

// Matches reports whether query is a case-insensitive substring of the
// command label or any of its keywords. An empty query matches everything.
func Matches(cmd *Command, query string) bool {
	q := strings.ToLower(query)
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(cmd.Label), q) {
		return true
	}
	for _, kw := range cmd.Keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			return true
		}
	}
	return false
}

// SubstringFilter keeps commands that Match query, in registry order.
func SubstringFilter(query string, cmds []*Command) []*Command {
	out := make([]*Command, 0, len(cmds))
	for _, c := range cmds {
		if Matches(c, query) {
			out = append(out, c)
		}
	}
	return out
}

// FuzzyFilter ranks commands by the best fuzzy score of their label and
// keywords. Equal scores keep registry order.
func FuzzyFilter(query string, cmds []*Command) []*Command {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]*Command(nil), cmds...)
	}

	var (
		candidates []string
		owners     []int
	)
	for i, c := range cmds {
		candidates = append(candidates, strings.ToLower(c.Label))
		owners = append(owners, i)
		for _, kw := range c.Keywords {
			candidates = append(candidates, strings.ToLower(kw))
			owners = append(owners, i)
		}
	}

	best := make(map[int]int)
	for _, m := range fuzzy.Find(q, candidates) {
		owner := owners[m.Index]
		if score, ok := best[owner]; !ok || m.Score > score {
			best[owner] = m.Score
		}
	}

	idx := make([]int, 0, len(best))
	for i := range best {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool {
		if best[idx[a]] != best[idx[b]] {
			return best[idx[a]] > best[idx[b]]
		}
		return idx[a] < idx[b]
	})

	out := make([]*Command, 0, len(idx))
	for _, i := range idx {
		out = append(out, cmds[i])
	}
	return out
}
