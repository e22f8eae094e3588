package genome

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownBuild is returned for a genome build without a centromere table.
	ErrUnknownBuild = errors.New("genome: unknown build")

	// ErrUnknownChromosome is returned for a chromosome absent from the table.
	ErrUnknownChromosome = errors.New("genome: unknown chromosome")
)

// Build identifies a reference genome assembly.
type Build string

const (
	GRCh37 Build = "GRCh37"
	GRCh38 Build = "GRCh38"
)

// ParseBuild accepts the usual aliases of the supported builds.
func ParseBuild(name string) (Build, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "grch37", "hg19", "37", "v37":
		return GRCh37, nil
	case "grch38", "hg38", "38", "v38":
		return GRCh38, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBuild, name)
	}
}

// Centromere boundaries: positions up to and including the boundary are on
// the P arm.
var (
	centromeres37 = map[string]int{
		"1": 121535434, "2": 92326171, "3": 90504854, "4": 49660117,
		"5": 46405641, "6": 58830166, "7": 58054331, "8": 43838887,
		"9": 47367679, "10": 39254935, "11": 51644205, "12": 34856694,
		"13": 16000000, "14": 16000000, "15": 17000000, "16": 35335801,
		"17": 22263006, "18": 15460898, "19": 24681782, "20": 26369569,
		"21": 11288129, "22": 13000000, "X": 58632012, "Y": 10104553,
	}

	centromeres38 = map[string]int{
		"1": 123400000, "2": 93900000, "3": 90900000, "4": 50000000,
		"5": 48800000, "6": 59800000, "7": 60100000, "8": 45200000,
		"9": 43000000, "10": 39800000, "11": 53400000, "12": 35500000,
		"13": 17700000, "14": 17200000, "15": 19000000, "16": 36800000,
		"17": 25100000, "18": 18500000, "19": 26200000, "20": 28100000,
		"21": 12000000, "22": 15000000, "X": 60600000, "Y": 10400000,
	}
)

// CentromereTable maps chromosomes to their centromere boundary. It is not
// modified after construction and is safe for concurrent use.
type CentromereTable struct {
	boundaries map[string]int
}

// NewCentromereTable builds a table from chromosome -> boundary position.
// Chromosome names are normalised, so "chr1" and "1" are the same key.
func NewCentromereTable(boundaries map[string]int) (*CentromereTable, error) {
	table := &CentromereTable{boundaries: make(map[string]int, len(boundaries))}
	for chrom, pos := range boundaries {
		if pos <= 0 {
			return nil, fmt.Errorf("genome: centromere of %s must be positive, got %d", chrom, pos)
		}
		key := NormaliseChromosome(chrom)
		if key == "" {
			return nil, fmt.Errorf("genome: empty chromosome name")
		}
		table.boundaries[key] = pos
	}
	return table, nil
}

// CentromereTableFor returns the built-in table of build.
func CentromereTableFor(build Build) (*CentromereTable, error) {
	switch build {
	case GRCh37:
		return NewCentromereTable(centromeres37)
	case GRCh38:
		return NewCentromereTable(centromeres38)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBuild, build)
	}
}

// WithOverrides returns a copy of t with the given boundaries replaced or
// added. Override names are normalised like table names, so "chr1" replaces
// "1".
func (t *CentromereTable) WithOverrides(overrides map[string]int) (*CentromereTable, error) {
	merged := make(map[string]int, len(t.boundaries)+len(overrides))
	for k, v := range t.boundaries {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[NormaliseChromosome(k)] = v
	}
	return NewCentromereTable(merged)
}

// Boundary returns the centromere boundary of chromosome.
func (t *CentromereTable) Boundary(chromosome string) (int, bool) {
	pos, ok := t.boundaries[NormaliseChromosome(chromosome)]
	return pos, ok
}

// Len returns the number of chromosomes in the table.
func (t *CentromereTable) Len() int {
	return len(t.boundaries)
}

// NormaliseChromosome strips a leading "chr" and upper-cases sex and
// mitochondrial chromosome names.
func NormaliseChromosome(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > 3 && strings.EqualFold(name[:3], "chr") {
		name = name[3:]
	}
	return strings.ToUpper(name)
}
