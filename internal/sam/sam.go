// Package sam implements a sparse associative memory built from neural
// cliques. The network is split into clusters of fanals; a message of order c
// occupies c distinct clusters, one fanal per cluster, and learning it
// connects those fanals pairwise. Recall restores erased sub-messages from the
// known ones by scoring and winner-take-all.
package sam

import (
	"errors"
	"fmt"
	"math/bits"
	"math/rand/v2"
)

// Unknown marks a symbol that could not be retrieved.
const Unknown = -1

// ErrAmbiguous is returned by the recall methods when a winning cluster keeps
// more than one active fanal.
var ErrAmbiguous = errors.New("sam: ambiguous retrieval")

// Network holds the binary connections of a clique network.
type Network struct {
	clusters int
	fanals   int
	weights  []uint64
}

// New returns an empty network with the given number of clusters and fanals
// per cluster.
func New(clusters, fanals int) (*Network, error) {
	if clusters < 2 || fanals < 1 {
		return nil, fmt.Errorf("sam: invalid size %d clusters x %d fanals", clusters, fanals)
	}
	n := clusters * clusters * fanals * fanals
	return &Network{
		clusters: clusters,
		fanals:   fanals,
		weights:  make([]uint64, (n+63)/64),
	}, nil
}

func (n *Network) Clusters() int { return n.clusters }
func (n *Network) Fanals() int   { return n.fanals }

// Reset erases every learned message.
func (n *Network) Reset() {
	clear(n.weights)
}

// Connections returns the number of set connections. Each learned pair is
// counted in both directions.
func (n *Network) Connections() int {
	total := 0
	for _, w := range n.weights {
		total += bits.OnesCount64(w)
	}
	return total
}

func (n *Network) bit(c1, c2, f1, f2 int) int {
	return ((c1*n.clusters+c2)*n.fanals+f1)*n.fanals + f2
}

func (n *Network) connected(c1, c2, f1, f2 int) bool {
	i := n.bit(c1, c2, f1, f2)
	return n.weights[i/64]&(1<<(i%64)) != 0
}

func (n *Network) connect(c1, c2, f1, f2 int) {
	i := n.bit(c1, c2, f1, f2)
	n.weights[i/64] |= 1 << (i % 64)
}

// Learn stores the messages. Each message is placed on as many distinct,
// uniformly chosen clusters as it has symbols. The chosen clusters are
// returned in message order.
func (n *Network) Learn(messages [][]int, rng *rand.Rand) ([][]int, error) {
	placed := make([][]int, len(messages))
	for i, msg := range messages {
		if len(msg) > n.clusters {
			return nil, fmt.Errorf("sam: message %d has order %d, network has %d clusters", i, len(msg), n.clusters)
		}
		for _, s := range msg {
			if s < 0 || s >= n.fanals {
				return nil, fmt.Errorf("sam: message %d: symbol %d out of range [0,%d)", i, s, n.fanals)
			}
		}
		placed[i] = pickClusters(rng, n.clusters, len(msg))
	}

	for i, msg := range messages {
		n.store(placed[i], msg)
	}
	return placed, nil
}

// store connects every ordered pair of sub-messages of one clique.
func (n *Network) store(clusters, symbols []int) {
	for a := range symbols {
		for b := range symbols {
			if a != b {
				n.connect(clusters[a], clusters[b], symbols[a], symbols[b])
			}
		}
	}
}

// pickClusters draws k distinct values from [0,n) in random order.
func pickClusters(rng *rand.Rand, n, k int) []int {
	out := make([]int, 0, k)
	for len(out) < k {
		c := rng.IntN(n)
		if !contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
