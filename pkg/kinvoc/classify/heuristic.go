package classify

import (
	"fmt"

	"github.com/lexfield/kinvoc/pkg/kinvoc/internalerr"
)

// Heuristic selects how aggressively the vocative test fires. The
// sensitivity analysis reruns the corpus under all three to bound how
// much the headline rates depend on this choice.
type Heuristic int

const (
	// HeuristicDefault treats comma-offset and standalone utterances
	// as vocative. This is the variant headline results use.
	HeuristicDefault Heuristic = iota

	// HeuristicStrict requires comma adjacency; a bare "Mommy!"
	// utterance no longer qualifies.
	HeuristicStrict

	// HeuristicLoose additionally accepts utterance-initial terms
	// ("Mommy come here").
	HeuristicLoose
)

// Heuristics lists the variants in sensitivity-report order.
var Heuristics = []Heuristic{HeuristicDefault, HeuristicStrict, HeuristicLoose}

func (h Heuristic) String() string {
	switch h {
	case HeuristicStrict:
		return "strict"
	case HeuristicLoose:
		return "loose"
	default:
		return "default"
	}
}

// ParseHeuristic maps a configuration name to its Heuristic.
func ParseHeuristic(name string) (Heuristic, error) {
	switch name {
	case "default", "":
		return HeuristicDefault, nil
	case "strict":
		return HeuristicStrict, nil
	case "loose":
		return HeuristicLoose, nil
	}
	return HeuristicDefault, fmt.Errorf("unknown heuristic %q: %w", name, internalerr.ErrInvalidConfig)
}
