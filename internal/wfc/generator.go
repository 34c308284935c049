package wfc

import (
	"errors"
	"fmt"
)

// Event describes one node being resolved during generation.
type Event struct {
	Step       int        `json:"step"`
	Coordinate Coordinate `json:"coordinate"`
	Tile       string     `json:"tile"`
	Rotation   int        `json:"rotation"`
	Forced     bool       `json:"forced"`
	Remaining  int        `json:"remaining"`
}

// Observer is notified after every node is resolved.
type Observer interface {
	NodeResolved(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// NodeResolved calls f.
func (f ObserverFunc) NodeResolved(e Event) { f(e) }

// Option configures a Generator.
type Option func(*Generator)

// WithObserver registers o to receive resolution events.
func WithObserver(o Observer) Option {
	return func(g *Generator) {
		if o != nil {
			g.observers = append(g.observers, o)
		}
	}
}

// Generator runs wave function collapse over a map.
type Generator struct {
	rng       Source
	observers []Observer
	step      int
}

// NewGenerator creates a generator drawing every random choice from rng.
func NewGenerator(rng Source, opts ...Option) *Generator {
	g := &Generator{rng: rng}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds m's graph, applies its presets, then collapses the lowest
// entropy node until none remain. The first failure aborts the run; the map is
// left in its partial state for inspection.
func (g *Generator) Generate(m *Map) error {
	g.step = 0

	if err := m.CreateNodes(); err != nil {
		return fmt.Errorf("failed to create nodes: %w", err)
	}

	if err := g.assignPresets(m); err != nil {
		return err
	}

	for next := m.NextNodeToCollapse(); next != nil; next = m.NextNodeToCollapse() {
		if err := next.Collapse(g.rng); err != nil {
			return err
		}
		m.stats.Steps++
		g.notify(m, next, false)
	}

	return nil
}

// assignPresets force-sets every preset whose coordinate exists on the map.
// When several presets share a coordinate the first one wins.
func (g *Generator) assignPresets(m *Map) error {
	for _, preset := range m.presets {
		if preset == nil {
			continue
		}
		node, ok := m.NodeAt(preset.Coordinate())
		if !ok {
			continue
		}
		if err := node.ForceSet(preset); err != nil {
			if errors.Is(err, ErrAlreadyCollapsed) {
				continue
			}
			return fmt.Errorf("failed to place preset %q at %s: %w", preset.Name(), preset.Coordinate(), err)
		}
		m.stats.Forced++
		g.notify(m, node, true)
	}
	return nil
}

func (g *Generator) notify(m *Map, n *Node, forced bool) {
	g.step++
	if len(g.observers) == 0 {
		return
	}

	e := Event{
		Step:       g.step,
		Coordinate: n.Coordinate(),
		Forced:     forced,
		Remaining:  m.Remaining(),
	}
	if t := n.Tile(); t != nil {
		e.Tile = t.Name()
		e.Rotation = t.Rotation()
	}
	for _, o := range g.observers {
		o.NodeResolved(e)
	}
}
