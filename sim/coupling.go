package sim

// Coupling is a static edge from a source port to a destination port.
type Coupling struct {
	From *Port
	To   *Port
}

// routeTable resolves any output (or boundary) port to the leaf input ports
// and root output ports its messages finally land on. It is built once per
// simulator from every coupling in the hierarchy.
type routeTable struct {
	root     *Coupled
	fanout   map[*Port][]*Port // direct couplings, declaration order
	resolved map[*Port][]*Port // memoized final destinations
}

func newRouteTable(root *Coupled) *routeTable {
	rt := &routeTable{
		root:     root,
		fanout:   make(map[*Port][]*Port),
		resolved: make(map[*Port][]*Port),
	}
	rt.collect(root)
	return rt
}

func (rt *routeTable) collect(c *Coupled) {
	for _, cp := range c.couplings {
		rt.fanout[cp.From] = append(rt.fanout[cp.From], cp.To)
	}
	for _, child := range c.children {
		if cc, ok := child.(*Coupled); ok {
			rt.collect(cc)
		}
	}
}

// destinations returns the final destinations of a message put on p.
// Multicast is preserved; a destination reachable along two coupling paths
// appears twice.
func (rt *routeTable) destinations(p *Port) ([]*Port, error) {
	if dests, ok := rt.resolved[p]; ok {
		return dests, nil
	}
	dests, err := rt.resolve(p, make(map[*Port]bool))
	if err != nil {
		return nil, err
	}
	rt.resolved[p] = dests
	return dests, nil
}

func (rt *routeTable) resolve(p *Port, visiting map[*Port]bool) ([]*Port, error) {
	if visiting[p] {
		return nil, configErrorf(Path(p.host), "coupling cycle through boundary port %s", p)
	}
	visiting[p] = true
	defer delete(visiting, p)

	var dests []*Port
	for _, next := range rt.fanout[p] {
		switch {
		case isLeafInput(next):
			dests = append(dests, next)
		case next.host == Component(rt.root) && next.dir == Out:
			// Leaves the hierarchy: emitted to the environment.
			dests = append(dests, next)
		default:
			// Boundary port of a nested coupled model: keep following.
			more, err := rt.resolve(next, visiting)
			if err != nil {
				return nil, err
			}
			dests = append(dests, more...)
		}
	}
	return dests, nil
}

// check resolves every coupled port up front so broken graphs fail at
// construction rather than mid-run.
func (rt *routeTable) check() error {
	ports := make([]*Port, 0, len(rt.fanout))
	var walk func(c *Coupled)
	walk = func(c *Coupled) {
		for _, cp := range c.couplings {
			ports = append(ports, cp.From)
		}
		for _, child := range c.children {
			if cc, ok := child.(*Coupled); ok {
				walk(cc)
			}
		}
	}
	walk(rt.root)
	for _, p := range ports {
		if _, err := rt.destinations(p); err != nil {
			return err
		}
	}
	return nil
}

func isLeafInput(p *Port) bool {
	_, atomic := p.host.(Atomic)
	return atomic && p.dir == In
}
