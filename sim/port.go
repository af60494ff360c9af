package sim

// Direction tells whether a port receives or produces messages.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == In {
		return "in"
	}
	return "out"
}

// Port is a named message slot on a component. It never stores a value:
// messages on a port exist only while the simulator routes one step.
type Port struct {
	name string
	dir  Direction
	host Component // bound when the port's component is added to a parent (or is a root)
}

// Name returns the port name, unique within its host.
func (p *Port) Name() string { return p.name }

// Direction returns In or Out.
func (p *Port) Direction() Direction { return p.dir }

// Host returns the component that owns the port, or nil while unbound.
func (p *Port) Host() Component { return p.host }

// String returns the full dotted path of the port, e.g. "GBP.BP.BUF.BUF_inport".
func (p *Port) String() string {
	if p.host == nil {
		return "?." + p.name
	}
	return Path(p.host) + "." + p.name
}

// Message is the value carried on a port for the duration of one step.
type Message = any

// Output is a single message produced on an output port.
type Output struct {
	Port  *Port
	Value Message
}

// Outputs is the ordered result of an output function. A slice rather than
// a map keeps routing order deterministic when a model writes several ports.
type Outputs []Output

// Bag holds the messages a model received during one step, keyed by input
// port. Ports that received nothing are absent. Messages arriving on the
// same port keep their routing order.
type Bag map[*Port][]Message

// Get returns every message received on p, in routing order.
func (b Bag) Get(p *Port) []Message { return b[p] }

// Has reports whether p received at least one message.
func (b Bag) Has(p *Port) bool { return len(b[p]) > 0 }

// Len returns the total number of messages in the bag.
func (b Bag) Len() int {
	n := 0
	for _, msgs := range b {
		n += len(msgs)
	}
	return n
}
