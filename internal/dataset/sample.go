package dataset

import (
	"math/rand/v2"
	"slices"

	"github.com/verustcode/docsynth/pkg/errors"
)

// SampleTypes picks k distinct document types without replacement, in draw order
func SampleTypes(rng *rand.Rand, pool []string, k int) ([]string, error) {
	if k < 0 || k > len(pool) {
		return nil, errors.Newf(errors.ErrCodePlanning, "cannot sample %d document types from a pool of %d", k, len(pool))
	}
	types := slices.Clone(pool)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(types)-i)
		types[i], types[j] = types[j], types[i]
	}
	return types[:k], nil
}
