// Package evaluation implements standard offline retrieval quality metrics.
// Retrieved IDs are judged against a relevance set per query; rankings are
// best-first.
package evaluation

import "math"

// PrecisionAtK is the fraction of the top k retrieved IDs that are relevant.
func PrecisionAtK(retrieved []string, relevant map[string]bool, k int) float64 {
	if k <= 0 {
		return 0
	}
	if len(retrieved) > k {
		retrieved = retrieved[:k]
	}
	if len(retrieved) == 0 {
		return 0
	}

	hits := 0
	for _, id := range retrieved {
		if relevant[id] {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// RecallAtK is the fraction of relevant IDs found in the top k results.
func RecallAtK(retrieved []string, relevant map[string]bool, k int) float64 {
	if len(relevant) == 0 || k <= 0 {
		return 0
	}
	if len(retrieved) > k {
		retrieved = retrieved[:k]
	}

	hits := 0
	for _, id := range retrieved {
		if relevant[id] {
			hits++
		}
	}
	return float64(hits) / float64(len(relevant))
}

// MRR is the reciprocal rank of the first relevant result, or 0 when none
// appears.
func MRR(retrieved []string, relevant map[string]bool) float64 {
	for i, id := range retrieved {
		if relevant[id] {
			return 1 / float64(i+1)
		}
	}
	return 0
}

// NDCGAtK computes normalized discounted cumulative gain with binary
// relevance. The ideal ranking places every relevant ID first.
func NDCGAtK(retrieved []string, relevant map[string]bool, k int) float64 {
	if len(relevant) == 0 || k <= 0 {
		return 0
	}
	if len(retrieved) > k {
		retrieved = retrieved[:k]
	}

	var dcg float64
	for i, id := range retrieved {
		if relevant[id] {
			dcg += 1 / math.Log2(float64(i)+2)
		}
	}

	ideal := len(relevant)
	if ideal > k {
		ideal = k
	}
	var idcg float64
	for i := 0; i < ideal; i++ {
		idcg += 1 / math.Log2(float64(i)+2)
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// QueryResult is one judged query in an evaluation run.
type QueryResult struct {
	Query     string
	Retrieved []string
	Relevant  map[string]bool
}

// Report aggregates metrics over a set of judged queries.
type Report struct {
	Queries   int     `json:"queries"`
	Precision float64 `json:"precision_at_k"`
	Recall    float64 `json:"recall_at_k"`
	MRR       float64 `json:"mrr"`
	NDCG      float64 `json:"ndcg_at_k"`
	K         int     `json:"k"`
}

// Evaluate averages the four metrics at k across all queries.
func Evaluate(results []QueryResult, k int) Report {
	rep := Report{Queries: len(results), K: k}
	if len(results) == 0 {
		return rep
	}

	for _, r := range results {
		rep.Precision += PrecisionAtK(r.Retrieved, r.Relevant, k)
		rep.Recall += RecallAtK(r.Retrieved, r.Relevant, k)
		rep.MRR += MRR(r.Retrieved, r.Relevant)
		rep.NDCG += NDCGAtK(r.Retrieved, r.Relevant, k)
	}

	n := float64(len(results))
	rep.Precision /= n
	rep.Recall /= n
	rep.MRR /= n
	rep.NDCG /= n
	return rep
}
