package relstats

import "sort"

// unionFind is a disjoint-set forest with path halving and union by size.
type unionFind struct {
	parent map[string]string
	size   map[string]int
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string), size: make(map[string]int)}
}

func (u *unionFind) add(x string) {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
		u.size[x] = 1
	}
}

func (u *unionFind) find(x string) string {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
}

// islands finds the connected components of the bipartite graph and returns,
// per side, the number of that side's nodes in each component, largest
// first. Components without nodes on a side are not counted for it.
func islands(pairs map[edge]int) (src, tgt []int) {
	uf := newUnionFind()
	for e := range pairs {
		s, t := "s:"+e.src, "t:"+e.tgt
		uf.add(s)
		uf.add(t)
		uf.union(s, t)
	}

	srcCount := make(map[string]int)
	tgtCount := make(map[string]int)
	for node := range uf.parent {
		root := uf.find(node)
		if node[0] == 's' {
			srcCount[root]++
		} else {
			tgtCount[root]++
		}
	}
	return sortedSizes(srcCount), sortedSizes(tgtCount)
}

func sortedSizes(counts map[string]int) []int {
	out := make([]int, 0, len(counts))
	for _, c := range counts {
		out = append(out, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
