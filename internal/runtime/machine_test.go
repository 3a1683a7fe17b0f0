package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/shift/internal/logging"
	"github.com/aretw0/shift/pkg/domain"
)

type recordedChange struct {
	index  int
	source domain.TriggerSource
}

func newTestMachine(cfg *domain.TriggerConfig) (*Machine, *[]recordedChange) {
	changes := &[]recordedChange{}
	m := NewMachine(cfg, logging.NewNop(), func(index int, source domain.TriggerSource) {
		*changes = append(*changes, recordedChange{index: index, source: source})
	})
	return m, changes
}

func machineConfig(adv domain.Advancement, initial string, states ...string) *domain.TriggerConfig {
	cfg := &domain.TriggerConfig{
		States:       states,
		Advancement:  adv,
		InitialState: initial,
	}
	cfg.InitialIndex = cfg.StateIndex(initial)
	return cfg
}

func stateSequence(m *Machine, cfg *domain.TriggerConfig, firings int) []string {
	seq := make([]string, 0, firings)
	for i := 0; i < firings; i++ {
		m.Fire(domain.SourceManual)
		_, state := m.Current()
		seq = append(seq, state)
	}
	return seq
}

func TestMachineAdvanceCycles(t *testing.T) {
	cfg := machineConfig(domain.AdvancementAdvance, "a", "a", "b", "c")
	m, changes := newTestMachine(cfg)

	seq := stateSequence(m, cfg, 7)
	assert.Equal(t, []string{"b", "c", "a", "b", "c", "a", "b"}, seq)
	assert.Len(t, *changes, 7)
	assert.Equal(t, domain.SourceManual, (*changes)[0].source)
}

func TestMachineAdvanceFromLaterInitial(t *testing.T) {
	cfg := machineConfig(domain.AdvancementAdvance, "b", "a", "b", "c")
	m, _ := newTestMachine(cfg)

	assert.Equal(t, []string{"c", "a", "b"}, stateSequence(m, cfg, 3))
}

func TestMachineToggleInitial(t *testing.T) {
	cfg := machineConfig(domain.AdvancementToggleInitial, "a", "a", "b", "c", "d")
	m, _ := newTestMachine(cfg)

	// Oscillates between the initial state and its successor only.
	assert.Equal(t, []string{"b", "a", "b", "a"}, stateSequence(m, cfg, 4))
}

func TestMachineToggleInitialAtEndOfList(t *testing.T) {
	cfg := machineConfig(domain.AdvancementToggleInitial, "c", "a", "b", "c")
	m, _ := newTestMachine(cfg)

	// Successor wraps around the list end.
	assert.Equal(t, []string{"a", "c", "a"}, stateSequence(m, cfg, 3))
}

func TestMachineAdvanceReset(t *testing.T) {
	cfg := machineConfig(domain.AdvancementAdvanceReset, "s1", "s1", "s2", "s3", "s4")
	m, _ := newTestMachine(cfg)

	// Alternates step and reset, walking the non-initial states in order.
	want := []string{"s2", "s1", "s3", "s1", "s4", "s1", "s2", "s1"}
	assert.Equal(t, want, stateSequence(m, cfg, 8))
}

func TestMachineAdvanceResetSingleState(t *testing.T) {
	cfg := machineConfig(domain.AdvancementAdvanceReset, "only", "only")
	m, changes := newTestMachine(cfg)

	m.Fire(domain.SourceManual)
	m.Fire(domain.SourceManual)
	_, state := m.Current()
	assert.Equal(t, "only", state)
	assert.Empty(t, *changes)
}

func TestMachineAlignedIgnoresDiscreteFirings(t *testing.T) {
	cfg := machineConfig(domain.AdvancementAligned, "a", "a", "b", "c")
	m, changes := newTestMachine(cfg)

	m.Fire(domain.SourceClick)
	idx, state := m.Current()
	assert.Equal(t, 0, idx)
	assert.Equal(t, "a", state)
	assert.Empty(t, *changes)
}

func TestMachineNoneNeverAdvances(t *testing.T) {
	cfg := machineConfig(domain.AdvancementNone, "a", "a", "b")
	m, changes := newTestMachine(cfg)

	m.Fire(domain.SourceManual)
	assert.Empty(t, *changes)
}

func TestMachineEvaluateRangeAligned(t *testing.T) {
	cfg := machineConfig(domain.AdvancementAligned, "a", "a", "b", "c")
	m, changes := newTestMachine(cfg)

	m.EvaluateRange(1)
	_, state := m.Current()
	assert.Equal(t, "b", state)
	assert.Equal(t, 1, m.LastRange())

	// Before any range clamps to the first state.
	m.EvaluateRange(-1)
	_, state = m.Current()
	assert.Equal(t, "a", state)

	// More ranges than states clamps to the last state.
	m.EvaluateRange(7)
	_, state = m.Current()
	assert.Equal(t, "c", state)
	assert.Equal(t, 7, m.LastRange())

	// Aligned notifies on every evaluation, changed or not.
	m.EvaluateRange(7)
	require.Len(t, *changes, 4)
	assert.Equal(t, domain.SourceScroll, (*changes)[0].source)
}

func TestMachineEvaluateRangeDiscrete(t *testing.T) {
	cfg := machineConfig(domain.AdvancementAdvance, "a", "a", "b", "c")
	m, changes := newTestMachine(cfg)

	// First observation: entering range 0 from the -1 sentinel is a change.
	m.EvaluateRange(0)
	require.Len(t, *changes, 1)
	assert.Equal(t, domain.SourceScroll, (*changes)[0].source)

	// Same range again is not a firing.
	m.EvaluateRange(0)
	assert.Len(t, *changes, 1)

	m.EvaluateRange(1)
	assert.Len(t, *changes, 2)
	_, state := m.Current()
	assert.Equal(t, "c", state)
}
