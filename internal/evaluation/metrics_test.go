package evaluation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var relevant = map[string]bool{"a": true, "b": true, "c": true}

func TestPrecisionAtK(t *testing.T) {
	retrieved := []string{"a", "x", "b", "y"}

	assert.InDelta(t, 0.5, PrecisionAtK(retrieved, relevant, 4), 1e-9)
	assert.InDelta(t, 0.5, PrecisionAtK(retrieved, relevant, 2), 1e-9)
	assert.InDelta(t, 1.0, PrecisionAtK(retrieved, relevant, 1), 1e-9)
	assert.Zero(t, PrecisionAtK(nil, relevant, 5))
	assert.Zero(t, PrecisionAtK(retrieved, relevant, 0))
}

func TestPrecisionAtK_ShortResultListPenalized(t *testing.T) {
	// One relevant hit out of k=5, even though only one result came back.
	assert.InDelta(t, 0.2, PrecisionAtK([]string{"a"}, relevant, 5), 1e-9)
}

func TestRecallAtK(t *testing.T) {
	retrieved := []string{"a", "x", "b", "y"}

	assert.InDelta(t, 2.0/3.0, RecallAtK(retrieved, relevant, 4), 1e-9)
	assert.InDelta(t, 1.0/3.0, RecallAtK(retrieved, relevant, 1), 1e-9)
	assert.Zero(t, RecallAtK(retrieved, map[string]bool{}, 4))
}

func TestMRR(t *testing.T) {
	assert.InDelta(t, 1.0, MRR([]string{"a", "x"}, relevant), 1e-9)
	assert.InDelta(t, 0.5, MRR([]string{"x", "b"}, relevant), 1e-9)
	assert.InDelta(t, 1.0/3.0, MRR([]string{"x", "y", "c"}, relevant), 1e-9)
	assert.Zero(t, MRR([]string{"x", "y"}, relevant))
	assert.Zero(t, MRR(nil, relevant))
}

func TestNDCGAtK_PerfectRanking(t *testing.T) {
	assert.InDelta(t, 1.0, NDCGAtK([]string{"a", "b", "c"}, relevant, 3), 1e-9)
}

func TestNDCGAtK_WorseRankingScoresLower(t *testing.T) {
	perfect := NDCGAtK([]string{"a", "b", "x"}, relevant, 3)
	worse := NDCGAtK([]string{"x", "a", "b"}, relevant, 3)
	assert.Greater(t, perfect, worse)
	assert.Greater(t, worse, 0.0)
}

func TestNDCGAtK_KnownValue(t *testing.T) {
	// Single relevant doc at rank 2 with k=2: dcg = 1/log2(3), idcg = 1.
	got := NDCGAtK([]string{"x", "a"}, map[string]bool{"a": true}, 2)
	assert.InDelta(t, 1/math.Log2(3), got, 1e-9)
}

func TestEvaluate(t *testing.T) {
	results := []QueryResult{
		{Query: "q1", Retrieved: []string{"a", "b"}, Relevant: map[string]bool{"a": true, "b": true}},
		{Query: "q2", Retrieved: []string{"x", "y"}, Relevant: map[string]bool{"a": true}},
	}

	rep := Evaluate(results, 2)
	assert.Equal(t, 2, rep.Queries)
	assert.Equal(t, 2, rep.K)
	assert.InDelta(t, 0.5, rep.Precision, 1e-9) // (1.0 + 0.0) / 2
	assert.InDelta(t, 0.5, rep.Recall, 1e-9)
	assert.InDelta(t, 0.5, rep.MRR, 1e-9)
	assert.InDelta(t, 0.5, rep.NDCG, 1e-9)
}

func TestEvaluate_Empty(t *testing.T) {
	rep := Evaluate(nil, 5)
	assert.Zero(t, rep.Queries)
	assert.Zero(t, rep.Precision)
}
