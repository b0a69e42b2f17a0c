package sam

import "fmt"

// Retrieval is a recalled message: Symbols[i] sits in cluster Clusters[i].
type Retrieval struct {
	Symbols  []int
	Clusters []int
}

// Align returns the retrieved symbols in the order of the given clusters.
// Clusters that were not retrieved yield Unknown. A retrieval whose size
// differs from len(clusters) aligns to all Unknown.
func (r Retrieval) Align(clusters []int) []int {
	out := make([]int, len(clusters))
	for i := range out {
		out[i] = Unknown
	}
	if len(r.Symbols) != len(clusters) || len(r.Clusters) != len(r.Symbols) {
		return out
	}
	for i, c := range clusters {
		for j, rc := range r.Clusters {
			if rc == c {
				out[i] = r.Symbols[j]
				break
			}
		}
	}
	return out
}

// decoder is the activity state of one recall.
type decoder struct {
	n      *Network
	scores [][]int
	active [][]int
	lag    []int
}

func (n *Network) newDecoder(symbols, clusters []int) (*decoder, error) {
	if len(symbols) != len(clusters) {
		return nil, fmt.Errorf("sam: %d symbols for %d clusters", len(symbols), len(clusters))
	}
	d := &decoder{
		n:      n,
		scores: make([][]int, n.clusters),
		active: make([][]int, n.clusters),
		lag:    append([]int(nil), clusters...),
	}
	for c := range d.scores {
		d.scores[c] = make([]int, n.fanals)
	}
	for i, c := range clusters {
		s := symbols[i]
		if c < 0 || c >= n.clusters {
			return nil, fmt.Errorf("sam: cluster %d out of range [0,%d)", c, n.clusters)
		}
		if s < 0 || s >= n.fanals {
			return nil, fmt.Errorf("sam: symbol %d out of range [0,%d)", s, n.fanals)
		}
		d.active[c] = append(d.active[c], s)
		d.scores[c][s] = 1
	}
	return d, nil
}

// score adds to every fanal of cluster c one unit per active cluster that
// reaches it, no matter how many active fanals that cluster has.
func (d *decoder) score(c int) {
	row := d.scores[c]
	for f := range row {
		for _, a := range d.lag {
			for _, g := range d.active[a] {
				if d.n.connected(c, a, f, g) {
					row[f]++
					break
				}
			}
		}
	}
}

// winners returns the clusters whose best score equals the global best, and
// that score.
func winners(clusterMax []int) ([]int, int) {
	best := 0
	for _, v := range clusterMax {
		best = max(best, v)
	}
	var out []int
	for c, v := range clusterMax {
		if v == best {
			out = append(out, c)
		}
	}
	return out, best
}

func maxOf(s []int) int {
	m := 0
	for _, v := range s {
		m = max(m, v)
	}
	return m
}

// collect reads back the single active fanal of each cluster.
func (d *decoder) collect(clusters []int) (Retrieval, error) {
	r := Retrieval{
		Symbols:  make([]int, len(clusters)),
		Clusters: append([]int(nil), clusters...),
	}
	for i, c := range clusters {
		r.Symbols[i] = Unknown
		hits := 0
		for f, v := range d.scores[c] {
			if v == 1 {
				r.Symbols[i] = f
				hits++
			}
		}
		if hits > 1 {
			return Retrieval{}, ErrAmbiguous
		}
	}
	return r, nil
}

// RecallBlind restores a message from some of its sub-messages without
// knowing which clusters the rest of it occupies. A single scoring pass runs
// over the whole network, followed by a global winner-take-all.
func (n *Network) RecallBlind(symbols, clusters []int) (Retrieval, error) {
	d, err := n.newDecoder(symbols, clusters)
	if err != nil {
		return Retrieval{}, err
	}
	for c := 0; c < n.clusters; c++ {
		d.score(c)
	}

	clusterMax := make([]int, n.clusters)
	for c := range clusterMax {
		clusterMax[c] = maxOf(d.scores[c])
	}
	win, best := winners(clusterMax)
	isWinner := make([]bool, n.clusters)
	for _, c := range win {
		isWinner[c] = true
	}
	for c := range d.scores {
		for f, v := range d.scores[c] {
			if isWinner[c] && v == best {
				d.scores[c][f] = 1
			} else {
				d.scores[c][f] = 0
			}
		}
	}
	return d.collect(win)
}

// RecallGuided restores a message whose full set of clusters is known.
// Scoring is restricted to candidates and repeated for the given number of
// iterations; scores carry over between iterations.
func (n *Network) RecallGuided(symbols, clusters, candidates []int, iterations int) (Retrieval, error) {
	d, err := n.newDecoder(symbols, clusters)
	if err != nil {
		return Retrieval{}, err
	}
	for _, c := range candidates {
		if c < 0 || c >= n.clusters {
			return Retrieval{}, fmt.Errorf("sam: candidate cluster %d out of range [0,%d)", c, n.clusters)
		}
	}

	for it := 0; it < iterations; it++ {
		for _, c := range candidates {
			d.score(c)
		}

		clusterMax := make([]int, n.clusters)
		for _, c := range candidates {
			clusterMax[c] = maxOf(d.scores[c])
		}
		win, best := winners(clusterMax)

		d.lag = win
		for c := range d.active {
			d.active[c] = d.active[c][:0]
		}
		if best == 0 {
			continue
		}
		for _, c := range candidates {
			if len(d.active[c]) > 0 {
				continue
			}
			for f, v := range d.scores[c] {
				if v == best {
					d.scores[c][f] = 1
					d.active[c] = append(d.active[c], f)
				} else {
					d.scores[c][f] = 0
				}
			}
		}
	}
	return d.collect(candidates)
}
