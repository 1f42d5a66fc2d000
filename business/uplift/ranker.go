package uplift

import (
	"math"
	"sort"

	"causalUplift/domain"
)

// Rank orders records by descending score and assigns each a decile.
// The sort is stable, so equal scores keep their post-split order. NaN scores
// rank last. Fewer than ten records cannot form ten buckets and are rejected.
func Rank(scored []domain.ScoredRecord) ([]domain.RankedRecord, error) {
	n := len(scored)
	if n < domain.NumDeciles {
		return nil, &domain.InsufficientDataError{Have: n, Need: domain.NumDeciles}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scoreAbove(scored[order[i]].UpliftScore, scored[order[j]].UpliftScore)
	})

	out := make([]domain.RankedRecord, n)
	for pos, idx := range order {
		out[pos] = domain.RankedRecord{
			ScoredRecord: scored[idx],
			Decile:       DecileOf(pos, n),
		}
	}
	return out, nil
}

func scoreAbove(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}

// DecileOf maps a 0-based rank position to its bucket among n ranked
// records using quantile binning with linearly interpolated edges
// e_k = k(n-1)/10, right-closed bins and the first bin closed on the left.
// Position 0 is bucket 0; otherwise the bucket is ceil(10*pos/(n-1)) - 1.
//
// Bucket sizes differ by at most one. Bucket 0 always holds
// floor((n-1)/10)+1 records, so when (n-1) is a multiple of ten it is the
// bucket that carries the extra row; otherwise the remainder rows are spread
// across the buckets whose interval spans an extra integer position.
func DecileOf(pos, n int) int {
	if pos <= 0 || n <= 1 {
		return 0
	}
	span := n - 1
	d := (domain.NumDeciles*pos+span-1)/span - 1
	if d < 0 {
		return 0
	}
	if d >= domain.NumDeciles {
		return domain.NumDeciles - 1
	}
	return d
}

// DecileSizes returns the bucket sizes DecileOf produces for n records.
func DecileSizes(n int) [domain.NumDeciles]int {
	var sizes [domain.NumDeciles]int
	for pos := 0; pos < n; pos++ {
		sizes[DecileOf(pos, n)]++
	}
	return sizes
}
