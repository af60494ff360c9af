package sim

import "strings"

// SelectFunc picks one component out of a set of simultaneously imminent
// children of the same coupled model. imminent is never empty and is listed
// in declaration order. The result must be a member of imminent; anything
// else aborts the run with a ConfigurationError.
type SelectFunc func(imminent []Component) Component

// Priority returns a SelectFunc preferring children by name, first listed
// first. If none of the named children is imminent it returns nil, which
// the simulator reports as a ConfigurationError.
func Priority(names ...string) SelectFunc {
	rank := make(map[string]int, len(names))
	for i, n := range names {
		if _, seen := rank[n]; !seen {
			rank[n] = i
		}
	}
	return func(imminent []Component) Component {
		var best Component
		bestRank := len(names)
		for _, c := range imminent {
			if r, ok := rank[c.Name()]; ok && r < bestRank {
				best, bestRank = c, r
			}
		}
		return best
	}
}

// DeclarationOrder returns a SelectFunc that always picks the imminent
// child declared first.
func DeclarationOrder() SelectFunc {
	return func(imminent []Component) Component {
		return imminent[0]
	}
}

// orderImminent flattens the imminent leaves below c into firing order by
// repeatedly applying c's select policy to its imminent children and
// recursing into the chosen one. marked holds every imminent leaf and all
// of its ancestors.
func orderImminent(c *Coupled, marked map[Component]bool, t Time, out []Atomic) ([]Atomic, error) {
	var cands []Component
	for _, child := range c.children {
		if marked[child] {
			cands = append(cands, child)
		}
	}
	for len(cands) > 0 {
		idx := 0
		if len(cands) > 1 {
			if c.selectFn == nil {
				return nil, configErrorf(Path(c), "%d children imminent at t=%v (%s) and no select policy", len(cands), t, names(cands))
			}
			pick := c.selectFn(append([]Component(nil), cands...))
			if idx = indexOf(cands, pick); idx < 0 {
				picked := "nil"
				if pick != nil {
					picked = pick.Name()
				}
				return nil, configErrorf(Path(c), "select returned %s, not a member of imminent set (%s) at t=%v", picked, names(cands), t)
			}
		}
		switch m := cands[idx].(type) {
		case *Coupled:
			var err error
			if out, err = orderImminent(m, marked, t, out); err != nil {
				return nil, err
			}
		case Atomic:
			out = append(out, m)
		}
		cands = append(cands[:idx], cands[idx+1:]...)
	}
	return out, nil
}

func indexOf(cs []Component, c Component) int {
	if c == nil {
		return -1
	}
	for i, x := range cs {
		if x == c {
			return i
		}
	}
	return -1
}

func names(cs []Component) string {
	ns := make([]string, len(cs))
	for i, c := range cs {
		ns[i] = c.Name()
	}
	return strings.Join(ns, ", ")
}
