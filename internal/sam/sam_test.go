package sam

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNetwork(t *testing.T, clusters, fanals int) *Network {
	t.Helper()
	n, err := New(clusters, fanals)
	require.NoError(t, err)
	return n
}

func TestNewRejectsBadSizes(t *testing.T) {
	for _, tc := range []struct{ clusters, fanals int }{{0, 4}, {1, 4}, {4, 0}} {
		_, err := New(tc.clusters, tc.fanals)
		assert.Error(t, err, "clusters=%d fanals=%d", tc.clusters, tc.fanals)
	}
}

func TestLearnPlacesMessagesOnDistinctClusters(t *testing.T) {
	n := newTestNetwork(t, 10, 8)
	rng := rand.New(rand.NewPCG(1, 2))

	msg := []int{0, 3, 7, 5}
	placed, err := n.Learn([][]int{msg}, rng)
	require.NoError(t, err)
	require.Len(t, placed, 1)
	require.Len(t, placed[0], len(msg))

	seen := map[int]bool{}
	for _, c := range placed[0] {
		assert.False(t, seen[c], "cluster %d used twice", c)
		assert.True(t, c >= 0 && c < 10)
		seen[c] = true
	}
	assert.Equal(t, len(msg)*(len(msg)-1), n.Connections())
}

func TestLearnRejectsInvalidMessages(t *testing.T) {
	n := newTestNetwork(t, 4, 8)
	rng := rand.New(rand.NewPCG(1, 2))

	_, err := n.Learn([][]int{{0, 8}}, rng)
	assert.Error(t, err)

	_, err = n.Learn([][]int{{0, 1, 2, 3, 4}}, rng)
	assert.Error(t, err)
	assert.Zero(t, n.Connections())
}

func TestReset(t *testing.T) {
	n := newTestNetwork(t, 6, 4)
	_, err := n.Learn([][]int{{1, 2, 3}}, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	require.NotZero(t, n.Connections())

	n.Reset()
	assert.Zero(t, n.Connections())
}

func TestRecallSingleMessage(t *testing.T) {
	n := newTestNetwork(t, 8, 16)
	clusters := []int{1, 4, 6, 7}
	symbols := []int{3, 9, 0, 15}
	n.store(clusters, symbols)

	knownClusters := []int{4, 1, 7}
	knownSymbols := []int{9, 3, 15}

	t.Run("guided", func(t *testing.T) {
		r, err := n.RecallGuided(knownSymbols, knownClusters, clusters, 4)
		require.NoError(t, err)
		assert.Equal(t, symbols, r.Align(clusters))
		assert.Equal(t, clusters, r.Clusters)
	})

	t.Run("blind", func(t *testing.T) {
		r, err := n.RecallBlind(knownSymbols, knownClusters)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 4, 6, 7}, r.Clusters)
		assert.Equal(t, symbols, r.Align(clusters))
	})
}

func TestRecallAfterRandomLearning(t *testing.T) {
	n := newTestNetwork(t, 20, 32)
	rng := rand.New(rand.NewPCG(7, 7))

	msgs := [][]int{{1, 2, 3, 4, 5}, {6, 7, 8, 9, 10}, {11, 12, 13, 14, 15}}
	placed, err := n.Learn(msgs, rng)
	require.NoError(t, err)

	for i, msg := range msgs {
		r, err := n.RecallGuided(msg[:3], placed[i][:3], placed[i], 4)
		require.NoError(t, err)
		assert.Equal(t, msg, r.Align(placed[i]), "message %d", i)
	}
}

func TestRecallGuidedAmbiguous(t *testing.T) {
	n := newTestNetwork(t, 3, 8)
	n.store([]int{0, 1, 2}, []int{1, 2, 3})
	n.store([]int{0, 1, 2}, []int{1, 2, 4})

	_, err := n.RecallGuided([]int{1, 2}, []int{0, 1}, []int{0, 1, 2}, 1)
	assert.ErrorIs(t, err, ErrAmbiguous)

	_, err = n.RecallBlind([]int{1, 2}, []int{0, 1})
	assert.ErrorIs(t, err, ErrAmbiguous)
}

func TestRecallRejectsBadInput(t *testing.T) {
	n := newTestNetwork(t, 4, 4)

	_, err := n.RecallBlind([]int{1}, []int{0, 1})
	assert.Error(t, err)

	_, err = n.RecallBlind([]int{4}, []int{0})
	assert.Error(t, err)

	_, err = n.RecallGuided([]int{1}, []int{0}, []int{0, 9}, 1)
	assert.Error(t, err)
}

func TestAlign(t *testing.T) {
	tests := []struct {
		name     string
		r        Retrieval
		clusters []int
		want     []int
	}{
		{
			name:     "reorders",
			r:        Retrieval{Symbols: []int{5, 6, 7}, Clusters: []int{0, 2, 9}},
			clusters: []int{9, 0, 2},
			want:     []int{7, 5, 6},
		},
		{
			name:     "missing cluster",
			r:        Retrieval{Symbols: []int{5, 6}, Clusters: []int{0, 3}},
			clusters: []int{0, 2},
			want:     []int{5, Unknown},
		},
		{
			name:     "size mismatch",
			r:        Retrieval{Symbols: []int{5}, Clusters: []int{0}},
			clusters: []int{0, 2},
			want:     []int{Unknown, Unknown},
		},
		{
			name:     "empty",
			r:        Retrieval{},
			clusters: []int{1},
			want:     []int{Unknown},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Align(tt.clusters))
		})
	}
}
