package viewer

// NodeQuery is a node view request: the previous state as carried by the
// page's form.
type NodeQuery struct {
	Snapshot string
	Entity   string
	Filter   NodeFilter
	Query    string
	Limit    int
}

// ResolveNodes rebuilds the node view for a request. The requested entity
// plays the role of the previous selection: it is kept when visible in the
// requested snapshot, otherwise the first visible type is selected.
func (s *Session) ResolveNodes(q NodeQuery) *NodeState {
	st := s.NewNodeState()
	st.Query = q.Query
	if q.Limit > 0 {
		st.Limit = q.Limit
	}
	st.SetFilter(q.Filter)
	st.SetSnapshot(q.Snapshot)
	if !st.SetEntity(q.Entity) {
		st.Entity = keepOrFirst(st.Visible, "")
	}
	return st
}

// RelationQuery is a relation view request.
type RelationQuery struct {
	Snapshot string
	Relation string
	Filter   RelationFilter
}

// ResolveRelations rebuilds the relation view for a request.
func (s *Session) ResolveRelations(q RelationQuery) *RelationState {
	st := s.NewRelationState()
	st.SetFilter(q.Filter)
	st.SetSnapshot(q.Snapshot)
	if !st.SetRelation(q.Relation) {
		st.Relation = keepOrFirst(st.Visible, "")
	}
	return st
}
