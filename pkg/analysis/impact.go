package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kraitsura/segment_viewer/pkg/model"
	"github.com/kraitsura/segment_viewer/pkg/segment"
)

// DriverImpact is one top driver with its share of the total absolute impact.
type DriverImpact struct {
	Key    string  `json:"key"`
	Impact float64 `json:"impact"`
	Share  float64 `json:"share"` // |impact| / sum(|impact|), 0..1
}

// DimensionImpact aggregates impact of simple segments over one dimension.
type DimensionImpact struct {
	Dimension     string  `json:"dimension"`
	Segments      int     `json:"segments"`
	TotalImpact   float64 `json:"total_impact"`
	AbsoluteTotal float64 `json:"absolute_total"`
}

// ImpactSummary describes the distribution of driver impacts in a result.
type ImpactSummary struct {
	Metric        string            `json:"metric"`
	DriverCount   int               `json:"driver_count"`
	MissingStats  int               `json:"missing_stats"` // drivers with no slice info
	TotalImpact   float64           `json:"total_impact"`
	AbsoluteTotal float64           `json:"absolute_total"`
	MeanImpact    float64           `json:"mean_impact"`
	StdDevImpact  float64           `json:"stddev_impact"`
	PositiveCount int               `json:"positive_count"`
	NegativeCount int               `json:"negative_count"`
	Drivers       []DriverImpact    `json:"drivers"`
	Dimensions    []DimensionImpact `json:"dimensions"`
}

// TopDimension returns the dimension with the largest absolute impact.
func (s ImpactSummary) TopDimension() (DimensionImpact, bool) {
	if len(s.Dimensions) == 0 {
		return DimensionImpact{}, false
	}
	return s.Dimensions[0], true
}

// Summarize computes an ImpactSummary over the result's top drivers in
// driver order. Drivers with malformed keys are ignored.
func Summarize(r *model.MetricResult) ImpactSummary {
	summary := ImpactSummary{Metric: r.Metric}
	keys, _ := r.DriverKeys()

	var impacts []float64
	dims := make(map[string]*DimensionImpact)
	for _, k := range keys {
		info, ok := r.SliceInfo(k)
		if !ok {
			summary.MissingStats++
			continue
		}
		impacts = append(impacts, info.Impact)
		summary.Drivers = append(summary.Drivers, DriverImpact{Key: k.Serialize(), Impact: info.Impact})
		switch {
		case info.Impact > 0:
			summary.PositiveCount++
		case info.Impact < 0:
			summary.NegativeCount++
		}
		if k.IsSimple() {
			addDimension(dims, k, info.Impact)
		}
	}
	summary.DriverCount = len(keys)

	if len(impacts) == 0 {
		return summary
	}

	abs := make([]float64, len(impacts))
	for i, v := range impacts {
		abs[i] = math.Abs(v)
	}
	summary.TotalImpact = floats.Sum(impacts)
	summary.AbsoluteTotal = floats.Sum(abs)
	summary.MeanImpact = stat.Mean(impacts, nil)
	if len(impacts) > 1 {
		summary.StdDevImpact = stat.StdDev(impacts, nil)
	}
	if summary.AbsoluteTotal > 0 {
		for i := range summary.Drivers {
			summary.Drivers[i].Share = math.Abs(summary.Drivers[i].Impact) / summary.AbsoluteTotal
		}
	}

	for _, d := range dims {
		summary.Dimensions = append(summary.Dimensions, *d)
	}
	sort.Slice(summary.Dimensions, func(i, j int) bool {
		a, b := summary.Dimensions[i], summary.Dimensions[j]
		if a.AbsoluteTotal != b.AbsoluteTotal {
			return a.AbsoluteTotal > b.AbsoluteTotal
		}
		return a.Dimension < b.Dimension
	})
	return summary
}

func addDimension(dims map[string]*DimensionImpact, k segment.Key, impact float64) {
	dim := k[0].Dimension
	d, ok := dims[dim]
	if !ok {
		d = &DimensionImpact{Dimension: dim}
		dims[dim] = d
	}
	d.Segments++
	d.TotalImpact += impact
	d.AbsoluteTotal += math.Abs(impact)
}
