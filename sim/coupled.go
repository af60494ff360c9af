package sim

// Coupled composes child components through port couplings. It is built
// once, before the simulator is created, and is immutable afterwards.
type Coupled struct {
	ComponentBase
	children  []Component
	byName    map[string]Component
	couplings []Coupling
	selectFn  SelectFunc
}

// NewCoupled returns an empty coupled model called name.
func NewCoupled(name string) *Coupled {
	c := &Coupled{
		ComponentBase: ComponentBase{name: name},
		byName:        make(map[string]Component),
	}
	c.bind(c)
	return c
}

// AddChild adds components in declaration order. Declaration order is the
// order in which imminent children are offered to the select policy.
func (c *Coupled) AddChild(children ...Component) error {
	for _, child := range children {
		if child == nil {
			return configErrorf(Path(c), "nil child")
		}
		b := child.base()
		if b.parent != nil {
			return configErrorf(Path(c), "child %q already belongs to %s", child.Name(), Path(b.parent))
		}
		if cc, ok := child.(*Coupled); ok && cc == c {
			return configErrorf(Path(c), "coupled model cannot contain itself")
		}
		if child.Name() == "" {
			return configErrorf(Path(c), "child has an empty name")
		}
		if _, dup := c.byName[child.Name()]; dup {
			return configErrorf(Path(c), "duplicate child name %q", child.Name())
		}
		if name := b.duplicatePort(); name != "" {
			return configErrorf(Path(c), "child %q declares port %q twice", child.Name(), name)
		}
		switch child.(type) {
		case *Coupled, Atomic:
		default:
			return configErrorf(Path(c), "child %q is neither atomic nor coupled (%T)", child.Name(), child)
		}
		b.bind(child)
		b.parent = c
		c.children = append(c.children, child)
		c.byName[child.Name()] = child
	}
	return nil
}

// Children returns the children in declaration order.
func (c *Coupled) Children() []Component { return c.children }

// Child looks a direct child up by name.
func (c *Coupled) Child(name string) Component { return c.byName[name] }

// Couplings returns the couplings in declaration order.
func (c *Coupled) Couplings() []Coupling { return c.couplings }

// SetSelect installs the tie-break policy used when several children are
// imminent at the same instant. Without one, such a tie is a
// ConfigurationError.
func (c *Coupled) SetSelect(fn SelectFunc) {
	c.selectFn = fn
}

// Connect couples from to to. Valid pairs are child out -> child in,
// own in -> child in, child out -> own out and own in -> own out.
func (c *Coupled) Connect(from, to *Port) error {
	if from == nil || to == nil {
		return configErrorf(Path(c), "coupling references a nil port")
	}
	if !c.owns(from) {
		return configErrorf(Path(c), "coupling source %s is not a port of %s or one of its children", from, Path(c))
	}
	if !c.owns(to) {
		return configErrorf(Path(c), "coupling destination %s is not a port of %s or one of its children", to, Path(c))
	}
	fromSelf := from.host == Component(c)
	toSelf := to.host == Component(c)
	switch {
	case fromSelf && from.dir != In:
		return configErrorf(Path(c), "coupling source %s must be an input port of %s", from, Path(c))
	case !fromSelf && from.dir != Out:
		return configErrorf(Path(c), "coupling source %s must be an output port of a child", from)
	case toSelf && to.dir != Out:
		return configErrorf(Path(c), "coupling destination %s must be an output port of %s", to, Path(c))
	case !toSelf && to.dir != In:
		return configErrorf(Path(c), "coupling destination %s must be an input port of a child", to)
	case !fromSelf && !toSelf && from.host == to.host:
		return configErrorf(Path(c), "direct feedback from %s to %s on the same component", from, to)
	}
	for _, cp := range c.couplings {
		if cp.From == from && cp.To == to {
			return configErrorf(Path(c), "duplicate coupling %s -> %s", from, to)
		}
	}
	c.couplings = append(c.couplings, Coupling{From: from, To: to})
	return nil
}

// ConnectByName is Connect with ports addressed as (component, port) names;
// an empty component name means c itself.
func (c *Coupled) ConnectByName(fromComp, fromPort, toComp, toPort string) error {
	from, err := c.lookupPort(fromComp, fromPort)
	if err != nil {
		return err
	}
	to, err := c.lookupPort(toComp, toPort)
	if err != nil {
		return err
	}
	return c.Connect(from, to)
}

func (c *Coupled) lookupPort(comp, port string) (*Port, error) {
	var host Component = c
	if comp != "" {
		host = c.byName[comp]
		if host == nil {
			return nil, configErrorf(Path(c), "unknown child %q", comp)
		}
	}
	p := host.base().port(port)
	if p == nil {
		return nil, configErrorf(Path(c), "component %s has no port %q", Path(host), port)
	}
	return p, nil
}

// owns reports whether p belongs to c or to a direct child of c.
func (c *Coupled) owns(p *Port) bool {
	if p.host == nil {
		return false
	}
	if p.host == Component(c) {
		return true
	}
	child, ok := c.byName[p.host.Name()]
	return ok && child == p.host
}

// checkPortNames reports the first component in c's hierarchy, c included,
// that declares a port name twice. Ports can be added after AddChild, so
// this runs again when a simulator is built.
func checkPortNames(c *Coupled) error {
	if name := c.duplicatePort(); name != "" {
		return configErrorf(Path(c), "port %q is declared twice", name)
	}
	for _, child := range c.children {
		if cc, ok := child.(*Coupled); ok {
			if err := checkPortNames(cc); err != nil {
				return err
			}
			continue
		}
		if name := child.base().duplicatePort(); name != "" {
			return configErrorf(Path(child), "port %q is declared twice", name)
		}
	}
	return nil
}
