package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoupled_AddChild_BindsPortsAndParent(t *testing.T) {
	// GIVEN an atomic model whose ports were declared before it had a home
	m := newTestModel("A")
	root := NewCoupled("root")

	// WHEN it is added to a coupled model
	require.NoError(t, root.AddChild(m))

	// THEN its ports and parent link point into the hierarchy
	assert.Same(t, root, m.Parent())
	assert.Equal(t, Component(m), m.In.Host())
	assert.Equal(t, "root.A.in", m.In.String())
	assert.Equal(t, "root.A", Path(m))
	assert.Equal(t, Component(m), root.Child("A"))
}

func TestCoupled_AddChild_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func() error
	}{
		{"duplicate name", func() error {
			return NewCoupled("root").AddChild(newTestModel("A"), newTestModel("A"))
		}},
		{"already parented", func() error {
			m := newTestModel("A")
			mustAdd(NewCoupled("other"), m)
			return NewCoupled("root").AddChild(m)
		}},
		{"self containment", func() error {
			c := NewCoupled("root")
			return c.AddChild(c)
		}},
		{"empty name", func() error {
			return NewCoupled("root").AddChild(newTestModel(""))
		}},
		{"nil child", func() error {
			return NewCoupled("root").AddChild(nil)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.setup()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration), "want ErrConfiguration, got %v", err)
		})
	}
}

func TestCoupled_Connect_ValidPairs(t *testing.T) {
	// GIVEN a coupled model with two children and boundary ports
	root := NewCoupled("root")
	in := root.AddInPort("in")
	out := root.AddOutPort("out")
	a, b := newTestModel("A"), newTestModel("B")
	mustAdd(root, a, b)

	// WHEN each legal coupling shape is added
	// THEN none of them is rejected
	assert.NoError(t, root.Connect(a.Out, b.In)) // child -> child
	assert.NoError(t, root.Connect(in, a.In))    // boundary in -> child
	assert.NoError(t, root.Connect(b.Out, out))  // child -> boundary out
	assert.NoError(t, root.Connect(in, out))     // pass-through
	assert.NoError(t, root.Connect(a.Out, out))  // multicast from A.out
	assert.Len(t, root.Couplings(), 5)
}

func TestCoupled_Connect_Rejections(t *testing.T) {
	root := NewCoupled("root")
	in := root.AddInPort("in")
	out := root.AddOutPort("out")
	a, b := newTestModel("A"), newTestModel("B")
	mustAdd(root, a, b)
	stranger := newTestModel("X")
	mustAdd(NewCoupled("elsewhere"), stranger)
	mustConnect(root, a.Out, b.In)

	tests := []struct {
		name     string
		from, to *Port
	}{
		{"nil port", nil, b.In},
		{"foreign source", stranger.Out, b.In},
		{"foreign destination", a.Out, stranger.In},
		{"source is child input", a.In, b.In},
		{"source is own output", out, b.In},
		{"destination is child output", a.Out, b.Out},
		{"destination is own input", a.Out, in},
		{"direct self feedback", a.Out, a.In},
		{"duplicate coupling", a.Out, b.In},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := root.Connect(tc.from, tc.to)
			require.Error(t, err)
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, "root", cfgErr.Model)
		})
	}
}

func TestCoupled_ConnectByName(t *testing.T) {
	root := NewCoupled("root")
	root.AddInPort("in")
	a, b := newTestModel("A"), newTestModel("B")
	mustAdd(root, a, b)

	require.NoError(t, root.ConnectByName("A", "out", "B", "in"))
	require.NoError(t, root.ConnectByName("", "in", "A", "in"))

	err := root.ConnectByName("A", "out", "C", "in")
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), `unknown child "C"`)

	err = root.ConnectByName("A", "nope", "B", "in")
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), `no port "nope"`)
}

func TestCoupled_DuplicatePortNames_Rejected(t *testing.T) {
	t.Run("child declares a port twice", func(t *testing.T) {
		// GIVEN a child with two ports called "in"
		m := newTestModel("A")
		m.AddInPort("in")

		// WHEN it is added to a coupled model
		err := NewCoupled("root").AddChild(m)

		// THEN the second port could never be coupled by name, so it is refused
		require.ErrorIs(t, err, ErrConfiguration)
		assert.Contains(t, err.Error(), `declares port "in" twice`)
	})

	t.Run("root declares a port twice", func(t *testing.T) {
		root := mustAdd(NewCoupled("root"), newSink("S"))
		root.AddInPort("x")
		root.AddOutPort("x")

		_, err := NewSimulator(root, DefaultSimConfig())
		require.ErrorIs(t, err, ErrConfiguration)
		assert.Contains(t, err.Error(), `port "x" is declared twice`)
	})

	t.Run("port added after AddChild", func(t *testing.T) {
		a := newTestModel("A")
		root := mustAdd(NewCoupled("root"), a)
		a.AddOutPort("out")

		_, err := NewSimulator(root, DefaultSimConfig())
		require.ErrorIs(t, err, ErrConfiguration)
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "root.A", cfgErr.Model)
	})
}
