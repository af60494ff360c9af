package models

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/devsim/sim"
)

// Component kinds accepted in a network spec.
const (
	KindCoupled   = "coupled"
	KindGenerator = "generator"
	KindBuffer    = "buffer"
	KindProcessor = "processor"
)

// selfRef addresses the enclosing coupled model's own ports in a coupling.
const selfRef = "self"

var validKinds = map[string]bool{
	KindCoupled: true, KindGenerator: true, KindBuffer: true, KindProcessor: true,
}

// NetworkSpec is a model hierarchy described in YAML.
// Loaded from YAML via LoadNetworkSpec(path).
type NetworkSpec struct {
	Version string        `yaml:"version,omitempty"`
	Horizon *float64      `yaml:"horizon,omitempty"` // nil = run to exhaustion
	Root    ComponentSpec `yaml:"root"`
}

// ComponentSpec describes one node of the hierarchy. Which fields apply
// depends on Kind.
type ComponentSpec struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`

	// generator
	Interval float64 `yaml:"interval,omitempty"`
	// buffer; 0 = unbounded
	Capacity int `yaml:"capacity,omitempty"`
	// processor
	ServiceTime float64 `yaml:"service_time,omitempty"`

	// coupled
	InPorts   []string        `yaml:"in_ports,omitempty"`
	OutPorts  []string        `yaml:"out_ports,omitempty"`
	Children  []ComponentSpec `yaml:"children,omitempty"`
	Couplings []CouplingSpec  `yaml:"couplings,omitempty"`
	Select    []string        `yaml:"select,omitempty"` // priority order for simultaneous children
}

// CouplingSpec connects two ports written as "child.port", or
// "self.port" for a port of the enclosing coupled model.
type CouplingSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LoadNetworkSpec reads and parses a YAML network specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadNetworkSpec(path string) (*NetworkSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading network spec: %w", err)
	}
	var spec NetworkSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing network spec: %w", err)
	}
	return &spec, nil
}

// Validate checks that all fields in the spec are valid. Port and coupling
// shape errors are left to Build, which reports them as configuration errors.
func (s *NetworkSpec) Validate() error {
	if s.Horizon != nil {
		if math.IsNaN(*s.Horizon) || *s.Horizon < 0 {
			return fmt.Errorf("horizon must be a nonnegative number, got %f", *s.Horizon)
		}
	}
	if s.Root.Kind != KindCoupled {
		return fmt.Errorf("root: kind must be %q, got %q", KindCoupled, s.Root.Kind)
	}
	return validateComponent(&s.Root, "root")
}

func validateComponent(c *ComponentSpec, prefix string) error {
	if c.Name == "" {
		return fmt.Errorf("%s: name is required", prefix)
	}
	if strings.Contains(c.Name, ".") || c.Name == selfRef {
		return fmt.Errorf("%s: name %q must not contain '.' or be %q", prefix, c.Name, selfRef)
	}
	if !validKinds[c.Kind] {
		return fmt.Errorf("%s: unknown kind %q; valid: coupled, generator, buffer, processor", prefix, c.Kind)
	}
	if c.Kind != KindCoupled {
		if len(c.Children) > 0 || len(c.Couplings) > 0 || len(c.Select) > 0 || len(c.InPorts) > 0 || len(c.OutPorts) > 0 {
			return fmt.Errorf("%s: only coupled components take ports, children, couplings or select", prefix)
		}
	}
	switch c.Kind {
	case KindGenerator:
		if err := validateFinitePositive(prefix+".interval", c.Interval); err != nil {
			return err
		}
	case KindBuffer:
		if c.Capacity < 0 {
			return fmt.Errorf("%s.capacity must be non-negative, got %d", prefix, c.Capacity)
		}
	case KindProcessor:
		if math.IsNaN(c.ServiceTime) || math.IsInf(c.ServiceTime, 0) || c.ServiceTime < 0 {
			return fmt.Errorf("%s.service_time must be a finite non-negative number, got %f", prefix, c.ServiceTime)
		}
	case KindCoupled:
		ports := make(map[string]bool, len(c.InPorts)+len(c.OutPorts))
		for _, name := range append(slices.Clone(c.InPorts), c.OutPorts...) {
			if ports[name] {
				return fmt.Errorf("%s: duplicate port name %q", prefix, name)
			}
			ports[name] = true
		}
		seen := make(map[string]bool, len(c.Children))
		for i := range c.Children {
			child := &c.Children[i]
			if err := validateComponent(child, fmt.Sprintf("%s.children[%d]", prefix, i)); err != nil {
				return err
			}
			if seen[child.Name] {
				return fmt.Errorf("%s: duplicate child name %q", prefix, child.Name)
			}
			seen[child.Name] = true
		}
		for _, name := range c.Select {
			if !seen[name] {
				return fmt.Errorf("%s.select: %q is not a child", prefix, name)
			}
		}
		for i, cp := range c.Couplings {
			for _, ref := range []string{cp.From, cp.To} {
				if _, _, err := splitPortRef(ref); err != nil {
					return fmt.Errorf("%s.couplings[%d]: %w", prefix, i, err)
				}
			}
		}
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}

func splitPortRef(ref string) (comp, port string, err error) {
	comp, port, ok := strings.Cut(ref, ".")
	if !ok || comp == "" || port == "" {
		return "", "", fmt.Errorf("port reference %q must look like child.port or self.port", ref)
	}
	return comp, port, nil
}

// HorizonOr returns the spec's horizon, or def when none is set.
func (s *NetworkSpec) HorizonOr(def sim.Time) sim.Time {
	if s.Horizon == nil {
		return def
	}
	return sim.Time(*s.Horizon)
}

// Build validates the spec and assembles the model hierarchy it describes.
func (s *NetworkSpec) Build() (*sim.Coupled, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	root, err := buildComponent(&s.Root)
	if err != nil {
		return nil, err
	}
	return root.(*sim.Coupled), nil
}

func buildComponent(c *ComponentSpec) (sim.Component, error) {
	switch c.Kind {
	case KindGenerator:
		return NewGenerator(c.Name, sim.Time(c.Interval)), nil
	case KindBuffer:
		return NewBuffer(c.Name, c.Capacity), nil
	case KindProcessor:
		return NewProcessor(c.Name, sim.Time(c.ServiceTime)), nil
	}

	m := sim.NewCoupled(c.Name)
	for _, p := range c.InPorts {
		m.AddInPort(p)
	}
	for _, p := range c.OutPorts {
		m.AddOutPort(p)
	}
	for i := range c.Children {
		child, err := buildComponent(&c.Children[i])
		if err != nil {
			return nil, err
		}
		if err := m.AddChild(child); err != nil {
			return nil, err
		}
	}
	for _, cp := range c.Couplings {
		fromComp, fromPort, _ := splitPortRef(cp.From)
		toComp, toPort, _ := splitPortRef(cp.To)
		if err := m.ConnectByName(selfOrChild(fromComp), fromPort, selfOrChild(toComp), toPort); err != nil {
			return nil, err
		}
	}
	if len(c.Select) > 0 {
		m.SetSelect(sim.Priority(c.Select...))
	}
	return m, nil
}

func selfOrChild(comp string) string {
	if comp == selfRef {
		return ""
	}
	return comp
}

// GBPSpec returns the network spec equivalent of NewGBP(name, cfg).
func GBPSpec(name string, cfg GBPConfig) *NetworkSpec {
	return &NetworkSpec{
		Version: "1",
		Root: ComponentSpec{
			Name: name,
			Kind: KindCoupled,
			Children: []ComponentSpec{
				{Name: "GEN", Kind: KindGenerator, Interval: float64(cfg.Interval)},
				{
					Name:     "BP",
					Kind:     KindCoupled,
					InPorts:  []string{"BP_inport"},
					OutPorts: []string{"BP_ouport"},
					Children: []ComponentSpec{
						{Name: "BUF", Kind: KindBuffer, Capacity: cfg.Capacity},
						{Name: "PROC", Kind: KindProcessor, ServiceTime: float64(cfg.ServiceTime)},
					},
					Couplings: []CouplingSpec{
						{From: "self.BP_inport", To: "BUF.BUF_inport"},
						{From: "BUF.BUF_outport", To: "PROC.PROC_inport"},
						{From: "PROC.PRCO_outport", To: "self.BP_ouport"},
						{From: "PROC.PRCO_outport", To: "BUF.BUF_response_inport"},
					},
					Select: []string{"PROC", "BUF"},
				},
			},
			Couplings: []CouplingSpec{
				{From: "GEN.GEN_outport", To: "BP.BP_inport"},
			},
			Select: []string{"BP", "GEN"},
		},
	}
}
