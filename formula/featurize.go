package formula

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/citrinelab/citrine/core/parallel"
	"github.com/citrinelab/citrine/pkg/errors"
)

// featurizeParallelThreshold is the pool size below which featurization
// runs sequentially.
const featurizeParallelThreshold = 256

// Basis returns the sorted union of elements across compositions, the
// usual feature basis for a candidate pool.
func Basis(comps []*Composition) []string {
	seen := make(map[string]bool)
	for _, c := range comps {
		for _, sym := range c.order {
			seen[sym] = true
		}
	}
	basis := make([]string, 0, len(seen))
	for sym := range seen {
		basis = append(basis, sym)
	}
	sort.Strings(basis)
	return basis
}

// Featurize maps compositions onto a fixed element basis, producing a
// matrix of atomic fractions (rows follow comps, columns follow basis).
// A composition containing an element outside the basis is an error: the
// model those features feed would silently ignore part of the material.
func Featurize(comps []*Composition, basis []string) (*mat.Dense, error) {
	if len(comps) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Featurize")
	}
	if len(basis) == 0 {
		return nil, errors.NewValidationError("basis", "element basis must not be empty", basis)
	}

	index := make(map[string]int, len(basis))
	for j, sym := range basis {
		if !IsElement(sym) {
			return nil, errors.NewValidationError("basis", "unknown element symbol", sym)
		}
		index[sym] = j
	}

	out := mat.NewDense(len(comps), len(basis), nil)
	errs := make([]error, len(comps))

	parallel.ParallelizeWithThreshold(len(comps), featurizeParallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			fractions := comps[i].AtomicFractions()
			for sym, frac := range fractions {
				j, ok := index[sym]
				if !ok {
					errs[i] = errors.NewValidationError("comps",
						"element "+sym+" outside feature basis", comps[i].Formula())
					break
				}
				out.Set(i, j, frac)
			}
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
