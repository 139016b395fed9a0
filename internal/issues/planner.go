package issues

import (
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"

	"github.com/verustcode/docsynth/pkg/errors"
	"github.com/verustcode/docsynth/pkg/logger"
)

// Plan is the set of section ids chosen to carry an issue
type Plan map[string]struct{}

// Has reports whether id is planned
func (p Plan) Has(id string) bool {
	_, ok := p[id]
	return ok
}

// Len returns the number of planned sections
func (p Plan) Len() int {
	return len(p)
}

// IDs returns the planned ids sorted
func (p Plan) IDs() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Planner picks tainted sections from a seeded random stream.
// It is not safe for concurrent use; the stream is shared with the caller.
type Planner struct {
	rng *rand.Rand
}

// NewPlanner creates a planner drawing from rng
func NewPlanner(rng *rand.Rand) *Planner {
	return &Planner{rng: rng}
}

// NewSeededPlanner creates a planner with its own PCG stream
func NewSeededPlanner(seed uint64) *Planner {
	return NewPlanner(NewRand(seed))
}

// NewRand returns the PCG stream used across a run for the given seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Plan draws a count uniformly from [min, max] and returns that many distinct
// ids sampled without replacement. The id set is sorted and de-duplicated first,
// so the same seed and set give the same plan whatever the input order.
func (p *Planner) Plan(sectionIDs []string, min, max int) (Plan, error) {
	if min < 0 {
		return nil, errors.Newf(errors.ErrCodePlanning, "min issues per document must be >= 0, got %d", min)
	}
	if max < min {
		return nil, errors.Newf(errors.ErrCodePlanning, "max issues per document (%d) is below min (%d)", max, min)
	}

	ids := slices.Clone(sectionIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	count := min + p.rng.IntN(max-min+1)
	if count > len(ids) {
		return nil, errors.Newf(errors.ErrCodePlanning,
			"insufficient sections: cannot plan %d issues across %d sections", count, len(ids)).
			WithDetails(map[string]int{"requested": count, "available": len(ids)})
	}

	// partial Fisher-Yates: the first count slots are the sample
	for i := 0; i < count; i++ {
		j := i + p.rng.IntN(len(ids)-i)
		ids[i], ids[j] = ids[j], ids[i]
	}

	plan := make(Plan, count)
	for _, id := range ids[:count] {
		plan[id] = struct{}{}
	}

	logger.Debug("Issue plan drawn",
		zap.Int("sections", len(ids)),
		zap.Int("planned", count),
		zap.Strings("section_ids", plan.IDs()),
	)
	return plan, nil
}
