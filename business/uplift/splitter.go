package uplift

import (
	"fmt"
	"math"
	"math/rand"

	"causalUplift/domain"
)

// Split reconstructs the evaluation partition. The permutation comes from
// math/rand's seeded source, whose sequence is fixed across Go releases, so
// identical (dataset, ratio, seed) always yields the identical test set in
// the identical order.
func Split(ds domain.Dataset, testRatio float64, seed int64) (train, test domain.Dataset, err error) {
	if !(testRatio > 0 && testRatio < 1) {
		return domain.Dataset{}, domain.Dataset{}, &domain.ConfigurationError{
			Field:  "TestRatio",
			Reason: fmt.Sprintf("must be in (0,1), got %v", testRatio),
		}
	}
	if seed < 0 {
		return domain.Dataset{}, domain.Dataset{}, &domain.ConfigurationError{
			Field:  "Seed",
			Reason: fmt.Sprintf("must be non-negative, got %d", seed),
		}
	}

	n := ds.Len()
	nTest := TestSize(n, testRatio)
	perm := rand.New(rand.NewSource(seed)).Perm(n)

	test = subset(ds, perm[:nTest])
	train = subset(ds, perm[nTest:])
	return train, test, nil
}

// TestSize is ceil(n * ratio), clamped to [0, n]. The epsilon keeps exact
// products such as 50*0.2 from rounding up through float noise.
func TestSize(n int, ratio float64) int {
	if n <= 0 {
		return 0
	}
	size := int(math.Ceil(float64(n)*ratio - 1e-9))
	if size < 0 {
		return 0
	}
	if size > n {
		return n
	}
	return size
}

func subset(ds domain.Dataset, idx []int) domain.Dataset {
	records := make([]domain.Record, len(idx))
	for i, j := range idx {
		records[i] = ds.Records[j]
	}
	return domain.Dataset{
		Columns: ds.Columns,
		Records: records,
	}
}
