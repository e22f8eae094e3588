// Package ratiofile reads depth-ratio tables and writes per-arm segment
// tables, both tab-separated.
package ratiofile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/chrissnell/pcfseg/internal/genome"
	"github.com/chrissnell/pcfseg/internal/perarm"
	"github.com/chrissnell/pcfseg/internal/types"
)

// ErrMalformed is returned for a record that cannot be parsed.
var ErrMalformed = errors.New("ratiofile: malformed record")

var segmentHeader = []string{"chromosome", "arm", "start", "end", "points", "mean"}

// Read parses "chromosome position ratio" records, grouped by chromosome in
// file order. A header line and lines starting with '#' are skipped.
func Read(r io.Reader) (map[string][]types.DepthRatio, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.Comment = '#'
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	out := make(map[string][]types.DepthRatio)
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		line, _ := reader.FieldPos(0)

		position, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			if first {
				first = false
				continue
			}
			return nil, fmt.Errorf("%w: line %d: bad position %q", ErrMalformed, line, record[1])
		}
		first = false

		ratio, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad ratio %q", ErrMalformed, line, record[2])
		}
		if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
			return nil, fmt.Errorf("%w: line %d: non-finite ratio %q", ErrMalformed, line, record[2])
		}

		chrom := strings.TrimSpace(record[0])
		out[chrom] = append(out[chrom], types.DepthRatio{
			Chromosome: chrom,
			Position:   position,
			Ratio:      ratio,
		})
	}
	return out, nil
}

// ReadFile reads the ratio table at path.
func ReadFile(path string) (map[string][]types.DepthRatio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ratio file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Write emits segments with a header line.
func Write(w io.Writer, segments []types.ArmSegment) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'

	if err := writer.Write(segmentHeader); err != nil {
		return err
	}
	for _, s := range segments {
		err := writer.Write([]string{
			s.Chromosome,
			s.Arm,
			strconv.Itoa(s.Start),
			strconv.Itoa(s.End),
			strconv.Itoa(s.Points),
			strconv.FormatFloat(s.Mean, 'f', -1, 64),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes segments to path, replacing any existing file.
func WriteFile(path string, segments []types.ArmSegment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating segment file: %w", err)
	}
	if err := Write(f, segments); err != nil {
		f.Close()
		return fmt.Errorf("writing segment file: %w", err)
	}
	return f.Close()
}

// Strategy segments depth ratios by their ratio value.
func Strategy(windowed bool) perarm.FuncStrategy[types.DepthRatio] {
	return perarm.FuncStrategy[types.DepthRatio]{
		ValueFunc:    func(d types.DepthRatio) float64 { return d.Ratio },
		PositionFunc: func(d types.DepthRatio) int { return d.Position },
		Windowed:     windowed,
	}
}

// Summarise flattens per-arm results into segments in karyotypic order.
func Summarise(results map[genome.ChrArm]perarm.ChromosomeArmSegments[types.DepthRatio]) []types.ArmSegment {
	arms := make([]genome.ChrArm, 0, len(results))
	for arm := range results {
		arms = append(arms, arm)
	}
	genome.SortArms(arms)

	var out []types.ArmSegment
	for _, arm := range arms {
		result := results[arm]
		for i, items := range result.Segments {
			if len(items) == 0 {
				continue
			}
			out = append(out, types.ArmSegment{
				Chromosome: arm.Chromosome,
				Arm:        arm.Arm.String(),
				Start:      items[0].Position,
				End:        items[len(items)-1].Position,
				Points:     len(items),
				Mean:       result.Fit.Means[i],
			})
		}
	}
	return out
}
