package models

// StatsIndex is data/stats/index.json.
type StatsIndex struct {
	Snapshots []Snapshot `json:"snapshots"`
}

// Snapshot is one dated capture of the registry.
type Snapshot struct {
	Date      string   `json:"date"`
	NodeTypes []string `json:"node_types"`
	Relations []string `json:"relations"`
}

// Find returns the snapshot with the given date.
func (x *StatsIndex) Find(date string) (Snapshot, bool) {
	for _, s := range x.Snapshots {
		if s.Date == date {
			return s, true
		}
	}
	return Snapshot{}, false
}

// Latest returns the last snapshot of the index, which is the most recent
// one since the index is written in date order.
func (x *StatsIndex) Latest() (Snapshot, bool) {
	if len(x.Snapshots) == 0 {
		return Snapshot{}, false
	}
	return x.Snapshots[len(x.Snapshots)-1], true
}

// Dates lists snapshot dates in index order.
func (x *StatsIndex) Dates() []string {
	out := make([]string, len(x.Snapshots))
	for i, s := range x.Snapshots {
		out[i] = s.Date
	}
	return out
}
