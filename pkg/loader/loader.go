package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/kraitsura/segment_viewer/pkg/model"
)

// DefaultResultFile is the result file looked up when none is given.
const DefaultResultFile = "result.json"

// maxConcurrentLoads bounds parallel file reads in LoadResults.
const maxConcurrentLoads = 4

// LoadResult reads a metric result from the .sv directory of the given
// directory, or the working directory when dir is empty.
func LoadResult(dir string) (*model.MetricResult, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
	}
	return LoadResultFromFile(filepath.Join(dir, ".sv", DefaultResultFile))
}

// LoadResultFromFile reads a metric result from a JSON or YAML file and
// normalizes its keys. Slices with malformed keys are dropped with a warning
// rather than failing the whole load.
func LoadResultFromFile(path string) (*model.MetricResult, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no metric result found at %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}

	result, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return result, nil
}

// Decode parses result bytes. ext selects the format: ".yaml"/".yml" for
// YAML, anything else for JSON.
func Decode(data []byte, ext string) (*model.MetricResult, error) {
	var result model.MetricResult
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &result); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, err
		}
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}
	for _, err := range result.Normalize() {
		log.Printf("Warning: dropping slice: %v", err)
	}
	return &result, nil
}

// LoadResults loads several result files concurrently, preserving order.
// The first error cancels the remaining loads.
func LoadResults(ctx context.Context, paths []string) ([]*model.MetricResult, error) {
	results := make([]*model.MetricResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := LoadResultFromFile(path)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
