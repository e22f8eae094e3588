// Package perarm segments genomic measurements independently on each
// chromosome arm.
package perarm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/chrissnell/pcfseg/internal/genome"
	"github.com/chrissnell/pcfseg/internal/log"
	"github.com/chrissnell/pcfseg/internal/segment"
	"github.com/chrissnell/pcfseg/internal/smoothing"
)

// Config holds the per-arm segmentation parameters.
type Config struct {
	Gamma           float64
	Normalise       bool
	MinArmPoints    int // arms with fewer points form a single segment
	SmoothingWindow int
	MeanDigits      int
}

// DefaultConfig returns gamma 100 with normalisation, a 5-point smoothing
// window and means rounded to 3 decimals.
func DefaultConfig() Config {
	return Config{
		Gamma:           100,
		Normalise:       true,
		MinArmPoints:    1,
		SmoothingWindow: 5,
		MeanDigits:      segment.DefaultMeanDigits,
	}
}

// ChromosomeArmSegments is the segmentation of the items of one arm.
type ChromosomeArmSegments[T any] struct {
	Arm      genome.ChrArm
	Items    []T
	Segments [][]T
	Fit      segment.PiecewiseConstantFit
	Penalty  float64
}

type armItems[T any] struct {
	arm   genome.ChrArm
	items []T
}

// Segmenter splits items of type T by chromosome arm and segments each arm.
type Segmenter[T any] struct {
	items    map[string][]T
	locator  genome.ChrArmLocator
	strategy Strategy[T]
	cfg      Config
	logger   *zap.SugaredLogger
}

// NewSegmenter creates a per-arm segmenter over items keyed by chromosome.
func NewSegmenter[T any](items map[string][]T, locator genome.ChrArmLocator, strategy Strategy[T], cfg Config, logger *zap.SugaredLogger) (*Segmenter[T], error) {
	if locator == nil {
		return nil, errors.New("perarm: locator is required")
	}
	if strategy == nil {
		return nil, errors.New("perarm: strategy is required")
	}
	if cfg.Gamma < 0 {
		return nil, fmt.Errorf("%w: negative gamma %v", segment.ErrInvalidArgument, cfg.Gamma)
	}
	if strategy.IsWindowed() && (cfg.SmoothingWindow < 1 || cfg.SmoothingWindow%2 == 0) {
		return nil, fmt.Errorf("%w: smoothing window %d", smoothing.ErrInvalidWindow, cfg.SmoothingWindow)
	}

	return &Segmenter[T]{
		items:    items,
		locator:  locator,
		strategy: strategy,
		cfg:      cfg,
		logger:   log.OrNop(logger),
	}, nil
}

// GetSegmentation segments every arm as a separate task on exec, or inline
// when exec is nil, and waits for all of them. Arms that fail are left out
// of the result and their errors are combined in the returned error. Once
// ctx is cancelled no further arms are started.
func (s *Segmenter[T]) GetSegmentation(ctx context.Context, exec Executor) (map[genome.ChrArm]ChromosomeArmSegments[T], error) {
	if exec == nil {
		exec = InlineExecutor{}
	}

	arms := s.groupByArm()
	results := make(map[genome.ChrArm]ChromosomeArmSegments[T], len(arms))

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs error
	)

	for _, group := range arms {
		group := group
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		err := exec.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}

			result, err := s.segmentArm(group)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Errorf("segmentation of arm %s failed: %v", group.arm, err)
				errs = multierr.Append(errs, fmt.Errorf("arm %s: %w", group.arm, err))
				return
			}
			results[group.arm] = result
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			errs = multierr.Append(errs, fmt.Errorf("submitting arm %s: %w", group.arm, err))
			mu.Unlock()
		}
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return results, errs
}

// groupByArm buckets items by arm in a stable karyotypic order. Items keep
// their input order within an arm. Items the locator cannot place are
// dropped.
func (s *Segmenter[T]) groupByArm() []armItems[T] {
	chromosomes := make([]string, 0, len(s.items))
	for chrom := range s.items {
		chromosomes = append(chromosomes, chrom)
	}
	sort.Strings(chromosomes)

	byArm := make(map[genome.ChrArm][]T)
	for _, chrom := range chromosomes {
		dropped := 0
		for _, item := range s.items[chrom] {
			arm, err := s.locator.Map(chrom, s.strategy.Position(item))
			if err != nil {
				dropped++
				continue
			}
			byArm[arm] = append(byArm[arm], item)
		}
		if dropped > 0 {
			s.logger.Warnf("dropped %d items on chromosome %s: no arm mapping", dropped, chrom)
		}
	}

	keys := make([]genome.ChrArm, 0, len(byArm))
	for arm := range byArm {
		keys = append(keys, arm)
	}
	genome.SortArms(keys)

	groups := make([]armItems[T], len(keys))
	for i, arm := range keys {
		groups[i] = armItems[T]{arm: arm, items: byArm[arm]}
	}
	return groups
}

func (s *Segmenter[T]) segmentArm(group armItems[T]) (result ChromosomeArmSegments[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during segmentation: %v", r)
		}
	}()

	data := s.strategy.BuildSegmentationData(group.items)
	if data.Count() != len(group.items) || len(data.SegmentationValues) != len(data.RawValues) {
		return result, fmt.Errorf("%w: %d items but %d segmentation and %d raw values", segment.ErrInvalidArgument,
			len(group.items), len(data.SegmentationValues), len(data.RawValues))
	}

	result = ChromosomeArmSegments[T]{
		Arm:   group.arm,
		Items: group.items,
	}

	if len(group.items) < s.cfg.MinArmPoints {
		result.Segments = [][]T{group.items}
		result.Fit = segment.SingleSegmentFit(data.RawValues, s.cfg.MeanDigits)
		s.logger.Debugf("arm %s has %d points, below minimum of %d: single segment",
			group.arm, len(group.items), s.cfg.MinArmPoints)
		return result, nil
	}

	if s.strategy.IsWindowed() {
		smoothed, err := smoothing.WindowedMedian(data.SegmentationValues, s.cfg.SmoothingWindow)
		if err != nil {
			return result, fmt.Errorf("smoothing: %w", err)
		}
		data = segment.DataForSegmentation{SegmentationValues: smoothed, RawValues: data.RawValues}
	}

	segmenter, err := segment.NewSegmenter(data, segment.GammaPenaltyCalculator{
		Gamma:     s.cfg.Gamma,
		Normalise: s.cfg.Normalise,
	})
	if err != nil {
		return result, err
	}

	result.Fit = segmenter.PCFWithDigits(s.cfg.MeanDigits)
	result.Penalty = segmenter.Penalty()
	result.Segments = make([][]T, result.Fit.Len())
	for i := range result.Segments {
		result.Segments[i] = group.items[result.Fit.Starts[i]:result.Fit.End(i)]
	}

	s.logger.Debugw("segmented arm",
		"arm", group.arm.String(),
		"points", len(group.items),
		"penalty", result.Penalty,
		"segments", result.Fit.Len())

	return result, nil
}
