package viewer

import "github.com/starford/metaviz/internal/models"

// DefaultLimit is the default number of attribute rows shown without a
// filter term.
const DefaultLimit = 50

// NodeState is the node view model: selected snapshot and node type,
// category filters, free-text filter and display limit.
type NodeState struct {
	sess *Session

	Snapshot string
	Entity   string
	Filter   NodeFilter
	Query    string
	Limit    int
	Visible  []string
}

// NewNodeState returns a node view on the latest snapshot with no filters.
func (s *Session) NewNodeState() *NodeState {
	st := &NodeState{sess: s, Limit: s.DefaultLimit}
	if latest, ok := s.Stats.Latest(); ok {
		st.Snapshot = latest.Date
	}
	st.derive()
	return st
}

// SetSnapshot switches the snapshot, re-derives the visible list and keeps
// the selection when it is still visible. Unknown dates are ignored.
func (st *NodeState) SetSnapshot(date string) {
	if _, ok := st.sess.Stats.Find(date); !ok {
		return
	}
	st.Snapshot = date
	st.derive()
}

// SetFilter replaces the category filters and re-derives the visible list.
func (st *NodeState) SetFilter(f NodeFilter) {
	st.Filter = f
	st.derive()
}

// SetEntity selects a node type. Only visible types can be selected.
func (st *NodeState) SetEntity(name string) bool {
	if !contains(st.Visible, name) {
		return false
	}
	st.Entity = name
	return true
}

// SnapshotDoc returns the selected snapshot.
func (st *NodeState) SnapshotDoc() models.Snapshot {
	snap, _ := st.sess.Stats.Find(st.Snapshot)
	return snap
}

func (st *NodeState) derive() {
	st.Visible = VisibleNodeTypes(st.SnapshotDoc(), st.sess.Nodes, st.sess.CuratedNodes, st.Filter)
	st.Entity = keepOrFirst(st.Visible, st.Entity)
}

// RelationState is the relation view model.
type RelationState struct {
	sess *Session

	Snapshot string
	Relation string
	Filter   RelationFilter
	Visible  []string
}

// NewRelationState returns a relation view on the latest snapshot.
func (s *Session) NewRelationState() *RelationState {
	st := &RelationState{sess: s}
	if latest, ok := s.Stats.Latest(); ok {
		st.Snapshot = latest.Date
	}
	st.derive()
	return st
}

// SetSnapshot switches the snapshot with the same selection rule as the
// node view.
func (st *RelationState) SetSnapshot(date string) {
	if _, ok := st.sess.Stats.Find(date); !ok {
		return
	}
	st.Snapshot = date
	st.derive()
}

// SetFilter replaces the category filters and re-derives the visible list.
func (st *RelationState) SetFilter(f RelationFilter) {
	st.Filter = f
	st.derive()
}

// SetRelation selects a relation. Only visible relations can be selected.
func (st *RelationState) SetRelation(name string) bool {
	if !contains(st.Visible, name) {
		return false
	}
	st.Relation = name
	return true
}

// SnapshotDoc returns the selected snapshot.
func (st *RelationState) SnapshotDoc() models.Snapshot {
	snap, _ := st.sess.Stats.Find(st.Snapshot)
	return snap
}

func (st *RelationState) derive() {
	st.Visible = VisibleRelations(st.SnapshotDoc(), st.sess.Relations, st.sess.CuratedRelations, st.Filter)
	st.Relation = keepOrFirst(st.Visible, st.Relation)
}

// keepOrFirst keeps current when it is in list, else picks the first entry
// or none.
func keepOrFirst(list []string, current string) string {
	if current != "" && contains(list, current) {
		return current
	}
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
