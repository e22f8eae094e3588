package perarm

import "github.com/chrissnell/pcfseg/internal/segment"

// Strategy supplies the domain knowledge the per-arm segmenter needs about
// items of type T.
type Strategy[T any] interface {
	// Value is the measurement carried by item.
	Value(item T) float64
	// Position is the coordinate of item on its chromosome.
	Position(item T) int
	// BuildSegmentationData turns the items of one arm into the series that
	// is segmented and the series whose means are reported.
	BuildSegmentationData(items []T) segment.DataForSegmentation
	// IsWindowed enables windowed-median smoothing of the segmented series.
	IsWindowed() bool
}

// FuncStrategy is a Strategy assembled from plain functions. BuildFunc is
// optional; without it both series are the item values.
type FuncStrategy[T any] struct {
	ValueFunc    func(T) float64
	PositionFunc func(T) int
	BuildFunc    func([]T) segment.DataForSegmentation
	Windowed     bool
}

func (f FuncStrategy[T]) Value(item T) float64 {
	return f.ValueFunc(item)
}

func (f FuncStrategy[T]) Position(item T) int {
	return f.PositionFunc(item)
}

func (f FuncStrategy[T]) BuildSegmentationData(items []T) segment.DataForSegmentation {
	if f.BuildFunc != nil {
		return f.BuildFunc(items)
	}
	values := make([]float64, len(items))
	for i, item := range items {
		values[i] = f.ValueFunc(item)
	}
	return segment.NewRawData(values)
}

func (f FuncStrategy[T]) IsWindowed() bool {
	return f.Windowed
}
