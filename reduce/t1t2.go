// ABOUTME: Hecht-Ullman T1/T2 reducer: fixpoint loop, reversible log, weight accumulation
// ABOUTME: Log entries capture enough pre-mutation state to unwind every step in LIFO order

package reduce

import (
	"github.com/pkg/errors"

	"github.com/prateek/cfgreduce/cfgerr"
	"github.com/prateek/cfgreduce/graph"
)

// LogKind distinguishes the two reduction moves.
type LogKind int

const (
	// KindT1 removes a self-loop.
	KindT1 LogKind = iota
	// KindT2 folds a node with a single non-self predecessor into that
	// predecessor.
	KindT2
)

func (k LogKind) String() string {
	if k == KindT1 {
		return "T1"
	}
	return "T2"
}

// LogEntry is one reversible reduction step:
// (kind, subject, parent-succs-before, parent-preds-before,
// subject-succs-before, subject-preds-before, subject-weight). For T1 there
// is no distinct parent, so the parent-* fields are nil.
type LogEntry struct {
	Kind               LogKind
	Subject            graph.NodeID
	ParentSuccsBefore  []graph.NodeID
	ParentPredsBefore  []graph.NodeID
	SubjectSuccsBefore []graph.NodeID
	SubjectPredsBefore []graph.NodeID
	SubjectWeight      int64
}

// State is the mutable reducer state: the current CFG and its
// predecessor mirror, the weight map, the entry node, and an append-only log
// of operations. preds is always the exact inverse of succ.
//
// order keeps every node the state was born with, in input order; an
// absorbed node is marked absent in present rather than spliced out, so a
// full Recover restores the input's node order exactly.
type State struct {
	order   []graph.NodeID
	succ    map[graph.NodeID][]graph.NodeID
	preds   map[graph.NodeID][]graph.NodeID
	weight  map[graph.NodeID]int64
	entry   graph.NodeID
	present map[graph.NodeID]bool
	Log     []LogEntry
}

// Order returns the reducer's current node order (entry first).
func (s *State) Order() []graph.NodeID {
	out := make([]graph.NodeID, 0, len(s.order))
	for _, n := range s.order {
		if s.present[n] {
			out = append(out, n)
		}
	}
	return out
}

// Succ returns a defensive copy of the current successor list of n.
func (s *State) Succ(n graph.NodeID) []graph.NodeID {
	return append([]graph.NodeID(nil), s.succ[n]...)
}

// Preds returns a defensive copy of the current predecessor list of n.
func (s *State) Preds(n graph.NodeID) []graph.NodeID {
	return append([]graph.NodeID(nil), s.preds[n]...)
}

// Weight returns the current weight of n.
func (s *State) Weight(n graph.NodeID) int64 { return s.weight[n] }

// Entry returns the entry node, which is never removed or absorbed.
func (s *State) Entry() graph.NodeID { return s.entry }

// NumNodes returns the number of nodes remaining in the reducer state.
func (s *State) NumNodes() int {
	count := 0
	for _, n := range s.order {
		if s.present[n] {
			count++
		}
	}
	return count
}

// CFG snapshots the current reducer state as a graph.CFG.
func (s *State) CFG() graph.CFG {
	order := s.Order()
	succ := make(map[graph.NodeID][]graph.NodeID, len(order))
	for _, n := range order {
		succ[n] = append([]graph.NodeID(nil), s.succ[n]...)
	}
	return graph.CFG{Order: order, Succ: succ}
}

// WeightedCFG snapshots the current reducer state as a graph.WeightedCFG.
func (s *State) WeightedCFG() graph.WeightedCFG {
	cfg := s.CFG()
	w := make(map[graph.NodeID]int64, len(cfg.Order))
	for _, n := range cfg.Order {
		w[n] = s.weight[n]
	}
	return graph.WeightedCFG{CFG: cfg, Weight: w}
}

// NewState builds a fresh reducer state from g and weights. If weights is
// nil, every node gets weight 1.
func NewState(g graph.CFG, weights graph.WeightedCFG) (*State, error) {
	if err := graph.Validate(g); err != nil {
		return nil, err
	}
	w := weights.Weight
	if w == nil {
		w = make(map[graph.NodeID]int64, len(g.Order))
		for _, n := range g.Order {
			w[n] = 1
		}
	}

	s := &State{
		entry:   g.Entry(),
		order:   append([]graph.NodeID(nil), g.Order...),
		succ:    make(map[graph.NodeID][]graph.NodeID, len(g.Order)),
		weight:  make(map[graph.NodeID]int64, len(g.Order)),
		present: make(map[graph.NodeID]bool, len(g.Order)),
	}
	for _, n := range g.Order {
		s.succ[n] = append([]graph.NodeID(nil), g.Succ[n]...)
		s.weight[n] = w[n]
		s.present[n] = true
	}
	s.preds = literalPredecessors(g)
	return s, nil
}

// literalPredecessors is the true inverse of g's successor map, with no
// special-casing of the entry node: the reducer keeps preds as the exact
// inverse of succs at all times, including back edges into the entry.
// graph.Predecessors, by contrast, intentionally drops such edges for
// dominance computations.
func literalPredecessors(g graph.CFG) map[graph.NodeID][]graph.NodeID {
	preds := make(map[graph.NodeID][]graph.NodeID, len(g.Order))
	for _, n := range g.Order {
		preds[n] = nil
	}
	for _, n := range g.Order {
		for _, s := range g.Succ[n] {
			preds[s] = append(preds[s], n)
		}
	}
	return preds
}

func removeOne(list []graph.NodeID, n graph.NodeID) []graph.NodeID {
	for i, x := range list {
		if x == n {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func containsNode(list []graph.NodeID, n graph.NodeID) bool {
	for _, x := range list {
		if x == n {
			return true
		}
	}
	return false
}

func appendUnique(list []graph.NodeID, n graph.NodeID) []graph.NodeID {
	if containsNode(list, n) {
		return list
	}
	return append(list, n)
}

// checkInvariant verifies preds is the exact inverse of succ. Called after
// every T1/T2 pass of the fixpoint loop and once at the end of Recover; a
// mismatch means a bug in this package, not a user error, hence
// ErrInvariantBroken.
func (s *State) checkInvariant() error {
	for _, n := range s.order {
		if !s.present[n] {
			continue
		}
		for _, c := range s.succ[n] {
			if !containsNode(s.preds[c], n) {
				return errors.WithStack(&cfgerr.OpError{Op: "reduce.State", Err: cfgerr.ErrInvariantBroken})
			}
		}
		for _, p := range s.preds[n] {
			if !s.present[p] || !containsNode(s.succ[p], n) {
				return errors.WithStack(&cfgerr.OpError{Op: "reduce.State", Err: cfgerr.ErrInvariantBroken})
			}
		}
	}
	return nil
}

// Reduce runs the T1/T2 fixpoint loop over s until a full pass logs
// nothing. T1 removes self-loops; T2 absorbs a node whose only predecessor
// is some other node u into u. The loop alternates a T1 sweep and a T2
// sweep.
func Reduce(g graph.CFG, weights graph.WeightedCFG) (*State, error) {
	s, err := NewState(g, weights)
	if err != nil {
		return nil, err
	}
	if err := reduceInPlace(s); err != nil {
		return nil, err
	}
	return s, nil
}

func reduceInPlace(s *State) error {
	for {
		progressed := false
		if s.t1Sweep() {
			progressed = true
		}
		if s.t2Sweep() {
			progressed = true
		}
		if err := s.checkInvariant(); err != nil {
			return err
		}
		if !progressed {
			return nil
		}
	}
}

// t1Sweep removes every self-loop present right now. Returns whether
// anything changed.
func (s *State) t1Sweep() bool {
	changed := false
	for _, n := range append([]graph.NodeID(nil), s.order...) {
		if !s.present[n] {
			continue
		}
		if !containsNode(s.succ[n], n) {
			continue
		}
		s.Log = append(s.Log, LogEntry{
			Kind:               KindT1,
			Subject:            n,
			SubjectSuccsBefore: append([]graph.NodeID(nil), s.succ[n]...),
			SubjectPredsBefore: append([]graph.NodeID(nil), s.preds[n]...),
			SubjectWeight:      s.weight[n],
		})
		s.succ[n] = removeOne(s.succ[n], n)
		s.preds[n] = removeOne(s.preds[n], n)
		changed = true
	}
	return changed
}

// t2Sweep absorbs every node, as of the snapshot taken at sweep start, whose
// predecessor list is exactly one non-self element.
func (s *State) t2Sweep() bool {
	changed := false
	for _, n := range append([]graph.NodeID(nil), s.order...) {
		if !s.present[n] || n == s.entry {
			continue
		}
		preds := s.preds[n]
		if len(preds) != 1 || preds[0] == n {
			continue
		}
		u := preds[0]
		s.foldT2(n, u)
		changed = true
	}
	return changed
}

func (s *State) foldT2(n, u graph.NodeID) {
	s.Log = append(s.Log, LogEntry{
		Kind:               KindT2,
		Subject:            n,
		ParentSuccsBefore:  append([]graph.NodeID(nil), s.succ[u]...),
		ParentPredsBefore:  append([]graph.NodeID(nil), s.preds[u]...),
		SubjectSuccsBefore: append([]graph.NodeID(nil), s.succ[n]...),
		SubjectPredsBefore: append([]graph.NodeID(nil), s.preds[n]...),
		SubjectWeight:      s.weight[n],
	})

	// (i) remove n from u's successors.
	s.succ[u] = removeOne(s.succ[u], n)
	// (ii) append n's successors to u's, without duplicates.
	for _, c := range s.succ[n] {
		s.succ[u] = appendUnique(s.succ[u], c)
	}
	// (iii) re-thread predecessors of n's children.
	for _, c := range s.succ[n] {
		s.preds[c] = appendUnique(s.preds[c], u)
		s.preds[c] = removeOne(s.preds[c], n)
	}
	// (v) absorb weight, then (iv) delete n from graph, preds, weights.
	s.weight[u] += s.weight[n]
	delete(s.succ, n)
	delete(s.preds, n)
	delete(s.weight, n)
	s.present[n] = false
}

// Recover replays s's log in LIFO order, restoring the input graph and
// weights exactly and leaving an empty log. The reducer state s is consumed:
// after Recover returns, s reflects the original, pre-reduction graph.
func Recover(s *State) (graph.CFG, graph.WeightedCFG, error) {
	for len(s.Log) > 0 {
		entry := s.Log[len(s.Log)-1]
		s.Log = s.Log[:len(s.Log)-1]
		switch entry.Kind {
		case KindT1:
			s.undoT1(entry)
		case KindT2:
			s.undoT2(entry)
		default:
			return graph.CFG{}, graph.WeightedCFG{}, cfgerr.Wrap("reduce.Recover", cfgerr.ErrInvariantBroken, "unknown log kind")
		}
	}
	if err := s.checkInvariant(); err != nil {
		return graph.CFG{}, graph.WeightedCFG{}, err
	}
	return s.CFG(), s.WeightedCFG(), nil
}

func (s *State) undoT1(e LogEntry) {
	s.succ[e.Subject] = append([]graph.NodeID(nil), e.SubjectSuccsBefore...)
	s.preds[e.Subject] = append([]graph.NodeID(nil), e.SubjectPredsBefore...)
	s.weight[e.Subject] = e.SubjectWeight
}

func (s *State) undoT2(e LogEntry) {
	n := e.Subject
	// Recover u from the predecessor list captured before the fold.
	u := e.SubjectPredsBefore[0]

	s.weight[u] -= e.SubjectWeight
	s.weight[n] = e.SubjectWeight

	s.present[n] = true
	s.succ[n] = append([]graph.NodeID(nil), e.SubjectSuccsBefore...)
	s.preds[n] = append([]graph.NodeID(nil), e.SubjectPredsBefore...)

	s.succ[u] = append([]graph.NodeID(nil), e.ParentSuccsBefore...)
	s.preds[u] = append([]graph.NodeID(nil), e.ParentPredsBefore...)

	// Re-thread predecessors of every node either n or u points to, so
	// the inverse invariant holds again: n belongs to preds[c] iff c was one of n's
	// captured successors; u belongs to preds[c] iff c was one of u's.
	for _, c := range e.SubjectSuccsBefore {
		s.preds[c] = appendUnique(s.preds[c], n)
		if !containsNode(e.ParentSuccsBefore, c) {
			s.preds[c] = removeOne(s.preds[c], u)
		}
	}
	for _, c := range e.ParentSuccsBefore {
		s.preds[c] = appendUnique(s.preds[c], u)
	}
}
