package ilqr

// Reason records why the solve terminated.
type Reason int

const (
	ReasonMaxIterations Reason = iota
	ReasonCostTolerance
	ReasonGradientTolerance
	ReasonStalled
	ReasonCostBlowup
	ReasonCostIncreased
)

func (r Reason) String() string {
	switch r {
	case ReasonCostTolerance:
		return "cost_tolerance"
	case ReasonGradientTolerance:
		return "gradient_tolerance"
	case ReasonStalled:
		return "stalled"
	case ReasonCostBlowup:
		return "cost_blowup"
	case ReasonCostIncreased:
		return "cost_increased"
	default:
		return "max_iterations"
	}
}

// IterStat is the record of one outer iteration.
type IterStat struct {
	Iter     int
	Cost     float64
	DJ       float64
	Gradient float64
	Alpha    float64
	Rho      float64
}

// Stats accumulates per-iteration records over one solve.
type Stats struct {
	Cost     []float64
	DJ       []float64
	Gradient []float64

	Iterations    int
	FailedForward int
	// RegIncreases counts damping increase events over the whole solve;
	// FinalRho is the damping left at termination.
	RegIncreases int
	FinalRho     float64
	Converged    bool
	Reason       Reason
}

func (s *Stats) reset() {
	s.Cost = s.Cost[:0]
	s.DJ = s.DJ[:0]
	s.Gradient = s.Gradient[:0]
	s.Iterations = 0
	s.FailedForward = 0
	s.RegIncreases = 0
	s.FinalRho = 0
	s.Converged = false
	s.Reason = ReasonMaxIterations
}

func (s *Stats) record(cost, dJ, gradient float64) {
	s.Cost = append(s.Cost, cost)
	s.DJ = append(s.DJ, dJ)
	s.Gradient = append(s.Gradient, gradient)
	s.Iterations = len(s.Cost)
}

// FinalCost returns the cost of the last recorded iteration.
func (s *Stats) FinalCost() float64 {
	if len(s.Cost) == 0 {
		return 0
	}
	return s.Cost[len(s.Cost)-1]
}
