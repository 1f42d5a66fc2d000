package uplift

import (
	"fmt"
	"math"

	"causalUplift/domain"
)

type bucketCounts struct {
	size        int
	treated     int
	control     int
	treatedConv int
	controlConv int
}

// Aggregate computes per-decile conversion lift. The result always has ten
// rows ordered decile 1 (highest scores) to decile 10. A bucket with no
// treated or no control record gets a NaN rate for that arm and therefore a
// NaN lift; it is never reported as zero.
func Aggregate(ranked []domain.RankedRecord) ([]domain.DecileMetric, error) {
	var buckets [domain.NumDeciles]bucketCounts

	for i, r := range ranked {
		if r.Decile < 0 || r.Decile >= domain.NumDeciles {
			return nil, fmt.Errorf("record %d ranked into decile %d, want [0,%d]", i, r.Decile, domain.NumDeciles-1)
		}
		b := &buckets[r.Decile]
		b.size++
		switch r.Treatment {
		case 1:
			b.treated++
			b.treatedConv += r.Conversion
		case 0:
			b.control++
			b.controlConv += r.Conversion
		default:
			return nil, fmt.Errorf("record %d has treatment %d, want 0 or 1", i, r.Treatment)
		}
	}

	metrics := make([]domain.DecileMetric, domain.NumDeciles)
	for d := range domain.NumDeciles {
		b := buckets[d]
		treatedRate := conversionRate(b.treatedConv, b.treated)
		controlRate := conversionRate(b.controlConv, b.control)

		metrics[d] = domain.DecileMetric{
			Decile:       d + 1,
			LiftPercent:  (treatedRate - controlRate) * 100,
			Size:         b.size,
			TreatedCount: b.treated,
			ControlCount: b.control,
			TreatedRate:  treatedRate,
			ControlRate:  controlRate,
		}
	}

	return metrics, nil
}

func conversionRate(conversions, count int) float64 {
	if count == 0 {
		return math.NaN()
	}
	return float64(conversions) / float64(count)
}

// CheckTable verifies the shape every consumer of a metric table relies on.
func CheckTable(metrics []domain.DecileMetric) error {
	if len(metrics) != domain.NumDeciles {
		return fmt.Errorf("metric table has %d rows, want %d", len(metrics), domain.NumDeciles)
	}
	for i, m := range metrics {
		if m.Decile != i+1 {
			return fmt.Errorf("metric row %d labelled decile %d, want %d", i, m.Decile, i+1)
		}
	}
	return nil
}
