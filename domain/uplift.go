package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	ColumnTreatment  = "treatment"
	ColumnConversion = "conversion"
	ColumnSpend      = "spend"
	ColumnVisit      = "visit"

	NumDeciles = 10
)

// Record is one subject row. Values are aligned with Dataset.Columns.
type Record struct {
	Values     []string
	Treatment  int // 1 = treated, 0 = control
	Conversion int // 1 = converted, 0 = not
}

type Dataset struct {
	Columns []string
	Records []Record
}

func (d Dataset) Len() int {
	return len(d.Records)
}

// ColumnIndex returns -1 when the column is absent.
func (d Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (d Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// Frame builds the view handed to scoring collaborators, leaving out the
// named columns. Rows keep dataset order.
func (d Dataset) Frame(drop ...string) FeatureFrame {
	skip := make(map[string]struct{}, len(drop))
	for _, c := range drop {
		skip[c] = struct{}{}
	}

	keep := make([]int, 0, len(d.Columns))
	cols := make([]string, 0, len(d.Columns))
	for i, c := range d.Columns {
		if _, ok := skip[c]; ok {
			continue
		}
		keep = append(keep, i)
		cols = append(cols, c)
	}

	rows := make([][]string, len(d.Records))
	for r, rec := range d.Records {
		row := make([]string, len(keep))
		for j, idx := range keep {
			row[j] = rec.Values[idx]
		}
		rows[r] = row
	}

	return FeatureFrame{Columns: cols, Rows: rows}
}

// FeatureFrame is the row-oriented table a Predictor receives.
type FeatureFrame struct {
	Columns []string
	Rows    [][]string
}

func (f FeatureFrame) Len() int {
	return len(f.Rows)
}

func (f FeatureFrame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Float parses the cell at (row, col). Booleans map to 1/0.
func (f FeatureFrame) Float(row, col int) (float64, error) {
	raw := strings.TrimSpace(f.Rows[row][col])
	switch strings.ToLower(raw) {
	case "true":
		return 1, nil
	case "false":
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// Map returns the row as column -> value, numeric cells decoded as float64.
func (f FeatureFrame) Map(row int) map[string]any {
	out := make(map[string]any, len(f.Columns))
	for i, c := range f.Columns {
		if v, err := f.Float(row, i); err == nil {
			out[c] = v
			continue
		}
		out[c] = f.Rows[row][i]
	}
	return out
}

type ScoredRecord struct {
	Record
	UpliftScore float64
}

type RankedRecord struct {
	ScoredRecord
	Decile int // 0 = highest scoring 10%
}

// DecileMetric is one row of the report table. Rates and lift are NaN when
// the bucket has no record in the corresponding arm.
type DecileMetric struct {
	ID           uint    `gorm:"primaryKey" json:"-"`
	RunID        string  `gorm:"column:run_id;type:uuid;index;not null" json:"-"`
	Decile       int     `gorm:"column:decile;not null" json:"decile"`
	LiftPercent  float64 `gorm:"column:lift_percent" json:"lift_percent"`
	Size         int     `gorm:"column:size;not null" json:"size"`
	TreatedCount int     `gorm:"column:treated_count" json:"treated_count"`
	ControlCount int     `gorm:"column:control_count" json:"control_count"`
	TreatedRate  float64 `gorm:"column:treated_rate" json:"treated_rate"`
	ControlRate  float64 `gorm:"column:control_rate" json:"control_rate"`
}

func (DecileMetric) TableName() string {
	return "uplift_decile_metrics"
}

// LiftDefined reports whether both arms were present in the bucket.
func (m DecileMetric) LiftDefined() bool {
	return !math.IsNaN(m.LiftPercent)
}

func (m DecileMetric) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Decile       int      `json:"decile"`
		LiftPercent  *float64 `json:"lift_percent"`
		Size         int      `json:"size"`
		TreatedCount int      `json:"treated_count"`
		ControlCount int      `json:"control_count"`
		TreatedRate  *float64 `json:"treated_rate"`
		ControlRate  *float64 `json:"control_rate"`
	}{
		Decile:       m.Decile,
		LiftPercent:  finiteOrNil(m.LiftPercent),
		Size:         m.Size,
		TreatedCount: m.TreatedCount,
		ControlCount: m.ControlCount,
		TreatedRate:  finiteOrNil(m.TreatedRate),
		ControlRate:  finiteOrNil(m.ControlRate),
	})
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type ScoringMode string

const (
	ScoringModeFull     ScoringMode = "full"
	ScoringModeStripped ScoringMode = "stripped"
	ScoringModeDeclared ScoringMode = "declared"
)

type Artifact struct {
	Key         string    `json:"key"`
	Location    string    `json:"location"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size_bytes"`
	WrittenAt   time.Time `json:"written_at"`
}

// UpliftReport is the outcome of one evaluation run.
type UpliftReport struct {
	ID             string                      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	InputPath      string                      `gorm:"column:input_path" json:"input_path"`
	DatasetSize    int                         `gorm:"column:dataset_size" json:"dataset_size"`
	TestSize       int                         `gorm:"column:test_size" json:"test_size"`
	TestRatio      float64                     `gorm:"column:test_ratio" json:"test_ratio"`
	Seed           int64                       `gorm:"column:seed" json:"seed"`
	ScoringMode    ScoringMode                 `gorm:"column:scoring_mode" json:"scoring_mode"`
	DroppedColumns datatypes.JSONSlice[string] `gorm:"column:dropped_columns;type:jsonb" json:"dropped_columns,omitempty"`
	ChartLocation  string                      `gorm:"column:chart_location" json:"chart_location"`
	CreatedAt      time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Deciles  []DecileMetric `gorm:"foreignKey:RunID;references:ID" json:"deciles"`
	Artifact *Artifact      `gorm:"-" json:"artifact,omitempty"`
}

func (UpliftReport) TableName() string {
	return "uplift_runs"
}
