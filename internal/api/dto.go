package api

// SnapshotItem summarizes one snapshot.
type SnapshotItem struct {
	Date      string `json:"date"`
	NodeTypes int    `json:"node_types"`
	Relations int    `json:"relations"`
}

// SnapshotListResponse lists the snapshots, oldest first.
type SnapshotListResponse struct {
	Snapshots  []SnapshotItem `json:"snapshots"`
	Latest     string         `json:"latest,omitempty"`
	Generation string         `json:"generation"`
}

// EntityItem is a node type or relation in a visible list.
type EntityItem struct {
	TechnicalName string `json:"technicalName"`
	Name          string `json:"name,omitempty"`
}

// VisibleListResponse is the resolved view state of a node or relation
// request.
type VisibleListResponse struct {
	Snapshot           string       `json:"snapshot"`
	Selected           string       `json:"selected"`
	CategoriesDisabled bool         `json:"categories_disabled"`
	Visible            []EntityItem `json:"visible"`
}
