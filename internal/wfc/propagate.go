package wfc

import "github.com/zyedidia/generic/mapset"

// wave is one propagation cascade. Nodes are processed first-in first-out and
// a node is never queued twice at the same time; it can be queued again once
// it has been processed.
type wave struct {
	owner   *Map
	queue   []*Node
	head    int
	pending mapset.Set[*Node]
}

func newWave(owner *Map) *wave {
	return &wave{
		owner:   owner,
		queue:   make([]*Node, 0, 16),
		pending: mapset.New[*Node](),
	}
}

func (w *wave) push(nodes ...*Node) {
	for _, n := range nodes {
		if n == nil || n.collapsed || w.pending.Has(n) {
			continue
		}
		w.pending.Put(n)
		w.queue = append(w.queue, n)
	}
}

// run drains the queue until the graph is stable or a node contradicts.
func (w *wave) run() error {
	for w.head < len(w.queue) {
		n := w.queue[w.head]
		w.head++
		w.pending.Remove(n)

		if w.owner != nil {
			w.owner.stats.Propagations++
		}

		changed, err := n.propagate()
		if err != nil {
			return err
		}
		w.push(changed...)
	}
	return nil
}
