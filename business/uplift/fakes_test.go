package uplift

import (
	"context"
	"sync"

	"causalUplift/domain"
)

type fakeDatasetRepo struct {
	ds    domain.Dataset
	err   error
	loads int
}

func (r *fakeDatasetRepo) Load(ctx context.Context, path string) (domain.Dataset, error) {
	r.loads++
	if r.err != nil {
		return domain.Dataset{}, r.err
	}
	return r.ds, nil
}

type fakeReportRepo struct {
	mu      sync.Mutex
	reports map[string]domain.UpliftReport
	order   []string
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[string]domain.UpliftReport{}}
}

func (r *fakeReportRepo) Save(ctx context.Context, report *domain.UpliftReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[report.ID] = *report
	r.order = append(r.order, report.ID)
	return nil
}

func (r *fakeReportRepo) FindByID(ctx context.Context, id string) (domain.UpliftReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reports[id]
	if !ok {
		return domain.UpliftReport{}, domain.ErrReportNotFound
	}
	return rep, nil
}

func (r *fakeReportRepo) FindAll(ctx context.Context, limit int) ([]domain.UpliftReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.UpliftReport
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.reports[r.order[i]])
	}
	return out, nil
}
