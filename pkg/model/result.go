package model

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kraitsura/segment_viewer/pkg/segment"
)

// SliceStats holds the measured value of a segment in one period.
type SliceStats struct {
	SliceValue float64 `json:"slice_value" yaml:"slice_value"`
	SliceSize  float64 `json:"slice_size" yaml:"slice_size"`
	SliceCount int     `json:"slice_count" yaml:"slice_count"`
}

// DimensionSliceInfo is the statistical payload attached to a segment key.
// It is produced by the analysis backend and never modified here.
type DimensionSliceInfo struct {
	Key        string     `json:"key" yaml:"key"`
	Baseline   SliceStats `json:"baseline" yaml:"baseline"`
	Comparison SliceStats `json:"comparison" yaml:"comparison"`
	Impact     float64    `json:"impact" yaml:"impact"`
	Confidence *float64   `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	ChangeDev  *float64   `json:"change_dev,omitempty" yaml:"change_dev,omitempty"`
}

// Change returns comparison minus baseline value.
func (d DimensionSliceInfo) Change() float64 {
	return d.Comparison.SliceValue - d.Baseline.SliceValue
}

// ChangePercent returns the relative change, or NaN when the baseline is zero.
func (d DimensionSliceInfo) ChangePercent() float64 {
	if d.Baseline.SliceValue == 0 {
		return math.NaN()
	}
	return d.Change() / d.Baseline.SliceValue * 100
}

// IsSignificant returns true if confidence is known and at least threshold.
func (d DimensionSliceInfo) IsSignificant(threshold float64) bool {
	return d.Confidence != nil && *d.Confidence >= threshold
}

// DateRange is a closed period of the analysis.
type DateRange struct {
	From time.Time `json:"from" yaml:"from"`
	To   time.Time `json:"to" yaml:"to"`
}

// String renders the range as "2006-01-02..2006-01-02", or "?" when unset.
func (d DateRange) String() string {
	if d.From.IsZero() && d.To.IsZero() {
		return "?"
	}
	return d.From.Format("2006-01-02") + ".." + d.To.Format("2006-01-02")
}

// MetricResult is the finished output of one analysis run.
type MetricResult struct {
	Metric     string    `json:"metric" yaml:"metric"`
	Baseline   DateRange `json:"baseline_period" yaml:"baseline_period"`
	Comparison DateRange `json:"comparison_period" yaml:"comparison_period"`

	// TopDrivers lists serialized keys ranked by impact, largest magnitude first.
	TopDrivers []string                      `json:"top_drivers" yaml:"top_drivers"`
	Slices     map[string]DimensionSliceInfo `json:"slices" yaml:"slices"`
	// HasMore marks keys whose subtree the backend has not fully computed.
	HasMore map[string]bool `json:"has_more,omitempty" yaml:"has_more,omitempty"`
}

// Validate checks that the result is usable.
func (r *MetricResult) Validate() error {
	if r.Metric == "" {
		return fmt.Errorf("metric name cannot be empty")
	}
	if !r.Baseline.To.IsZero() && !r.Comparison.From.IsZero() && r.Comparison.From.Before(r.Baseline.From) {
		return fmt.Errorf("comparison period (%v) starts before baseline period (%v)", r.Comparison.From, r.Baseline.From)
	}
	return nil
}

// DriverKeys parses TopDrivers in order. Malformed entries are skipped and
// returned as errors so a single bad row never blocks the rest.
func (r *MetricResult) DriverKeys() ([]segment.Key, []error) {
	keys := make([]segment.Key, 0, len(r.TopDrivers))
	var errs []error
	for _, s := range r.TopDrivers {
		k, err := segment.Deserialize(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		keys = append(keys, k)
	}
	return keys, errs
}

// SliceInfo looks up statistics by any serialization of the key.
func (r *MetricResult) SliceInfo(key segment.Key) (DimensionSliceInfo, bool) {
	info, ok := r.Slices[key.Serialize()]
	return info, ok
}

// HasMoreChildren reports the backend "not fully computed" flag for a key.
func (r *MetricResult) HasMoreChildren(serialized string) bool {
	return r.HasMore[serialized]
}

// Related returns every slice whose key contains key's components, except
// key itself, ordered by absolute impact descending then key.
func (r *MetricResult) Related(key segment.Key) []DimensionSliceInfo {
	pattern := segment.MatchPattern(key)
	self := key.Serialize()

	var related []DimensionSliceInfo
	for serialized, info := range r.Slices {
		if serialized == self || !pattern.MatchString(serialized) {
			continue
		}
		if info.Key == "" {
			info.Key = serialized
		}
		related = append(related, info)
	}
	SortByImpact(related)
	return related
}

// SortByImpact orders slices by absolute impact descending, then by key for
// stable ordering.
func SortByImpact(slices []DimensionSliceInfo) {
	sort.Slice(slices, func(i, j int) bool {
		ai, aj := math.Abs(slices[i].Impact), math.Abs(slices[j].Impact)
		if ai != aj {
			return ai > aj
		}
		return slices[i].Key < slices[j].Key
	})
}

// Normalize rewrites Slices so that every entry is keyed by its canonical
// serialization and carries its own Key. Entries with malformed keys are
// dropped and reported.
func (r *MetricResult) Normalize() []error {
	if len(r.Slices) == 0 {
		return nil
	}
	var errs []error
	normalized := make(map[string]DimensionSliceInfo, len(r.Slices))
	for raw, info := range r.Slices {
		k, err := segment.Deserialize(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		canon := k.Serialize()
		info.Key = canon
		normalized[canon] = info
	}
	r.Slices = normalized

	for i, raw := range r.TopDrivers {
		if k, err := segment.Deserialize(raw); err == nil {
			r.TopDrivers[i] = k.Serialize()
		}
	}
	if len(r.HasMore) > 0 {
		hasMore := make(map[string]bool, len(r.HasMore))
		for raw, v := range r.HasMore {
			if k, err := segment.Deserialize(raw); err == nil {
				hasMore[k.Serialize()] = v
			}
		}
		r.HasMore = hasMore
	}
	return errs
}
