// Package genome maps genomic positions to chromosome arms using per-build
// centromere boundaries.
package genome

import (
	"fmt"
	"sort"
	"strconv"
)

// Arm is one of the two chromosome arms separated by the centromere.
type Arm int

const (
	P Arm = iota
	Q
)

func (a Arm) String() string {
	switch a {
	case P:
		return "P"
	case Q:
		return "Q"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the arm as "P" or "Q".
func (a Arm) MarshalText() ([]byte, error) {
	if a != P && a != Q {
		return nil, fmt.Errorf("genome: invalid arm %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText decodes "P" or "Q", case-insensitively.
func (a *Arm) UnmarshalText(text []byte) error {
	switch string(text) {
	case "P", "p":
		*a = P
	case "Q", "q":
		*a = Q
	default:
		return fmt.Errorf("genome: invalid arm %q", text)
	}
	return nil
}

// ChrArm identifies one arm of one chromosome.
type ChrArm struct {
	Chromosome string `json:"chromosome"`
	Arm        Arm    `json:"arm"`
}

func (c ChrArm) String() string {
	return c.Chromosome + c.Arm.String()
}

// ChrArmLocator maps a position to its chromosome arm.
type ChrArmLocator interface {
	Map(chromosome string, position int) (ChrArm, error)
}

// Locator is a ChrArmLocator backed by a CentromereTable.
type Locator struct {
	table *CentromereTable
}

// NewLocator creates a locator over table.
func NewLocator(table *CentromereTable) *Locator {
	return &Locator{table: table}
}

// NewLocatorForBuild creates a locator over the built-in table of build.
func NewLocatorForBuild(build Build) (*Locator, error) {
	table, err := CentromereTableFor(build)
	if err != nil {
		return nil, err
	}
	return NewLocator(table), nil
}

// Map returns the arm holding position. The chromosome name is kept as given.
func (l *Locator) Map(chromosome string, position int) (ChrArm, error) {
	boundary, ok := l.table.Boundary(chromosome)
	if !ok {
		return ChrArm{}, fmt.Errorf("%w: %s", ErrUnknownChromosome, chromosome)
	}

	arm := Q
	if position <= boundary {
		arm = P
	}
	return ChrArm{Chromosome: chromosome, Arm: arm}, nil
}

// chromosomeRank orders autosomes numerically, then X, Y, MT and anything
// else by name.
func chromosomeRank(name string) int {
	key := NormaliseChromosome(name)
	if n, err := strconv.Atoi(key); err == nil && n > 0 {
		return n
	}
	switch key {
	case "X":
		return 1000
	case "Y":
		return 1001
	case "M", "MT":
		return 1002
	default:
		return 2000
	}
}

// SortArms orders arms karyotypically, P before Q.
func SortArms(arms []ChrArm) {
	sort.Slice(arms, func(i, j int) bool {
		ri, rj := chromosomeRank(arms[i].Chromosome), chromosomeRank(arms[j].Chromosome)
		if ri != rj {
			return ri < rj
		}
		if arms[i].Chromosome != arms[j].Chromosome {
			return arms[i].Chromosome < arms[j].Chromosome
		}
		return arms[i].Arm < arms[j].Arm
	})
}
