package photon

// Kind is the closed vocabulary of integrators spec.md §4.3 names, all
// sharing the same public contract.
type Kind uint8

const (
	// Legacy delegates to the metric's own fixed-step RK4, driven through
	// github.com/ChristopherRabotin/ode exactly as the teacher's mission.go
	// drives its own orbital propagation.
	Legacy Kind = iota + 1
	// RKF78 is the Runge-Kutta-Fehlberg 7(8) embedded pair.
	RKF78
	// CashKarp54 is the Cash-Karp 5(4) embedded pair.
	CashKarp54
	// DOPRI5 is the Dormand-Prince 5(4) embedded pair.
	DOPRI5
	// CashKarp54Classic uses Fehlberg's original (1969) embedded RK4(5)
	// coefficient set, distinct from the Cash-Karp CashKarp54 above.
	CashKarp54Classic
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Legacy:
		return "Legacy"
	case RKF78:
		return "runge_kutta_fehlberg78"
	case CashKarp54:
		return "runge_kutta_cash_karp54"
	case DOPRI5:
		return "runge_kutta_dopri5"
	case CashKarp54Classic:
		return "runge_kutta_cash_karp54_classic"
	default:
		return "UnknownIntegrator"
	}
}

// Adaptive reports whether this Kind performs adaptive step-size control.
func (k Kind) Adaptive() bool { return k != Legacy }

// ParseKind resolves the scenery/config `Integrator <name>` directive
// (spec.md §6) to a Kind, matching String's names exactly.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "Legacy", "legacy":
		return Legacy, true
	case "runge_kutta_fehlberg78":
		return RKF78, true
	case "runge_kutta_cash_karp54":
		return CashKarp54, true
	case "runge_kutta_dopri5":
		return DOPRI5, true
	case "runge_kutta_cash_karp54_classic":
		return CashKarp54Classic, true
	default:
		return 0, false
	}
}

// Tuning carries the integrator tuning parameters of spec.md §4.3/§6, all
// language-neutral.
type Tuning struct {
	Kind          Kind
	Delta         float64 // initial step
	Adaptive      bool
	AbsTol        float64
	RelTol        float64
	DeltaMax      float64
	DeltaMaxOverR float64 // step capped by fraction of current radial coordinate
	DeltaMin      float64
	Maxiter       int
	MinimumTime   float64 // |t - t_now| <= MinimumTime bound
	PrimaryOnly   bool    // stop after first impact
}

// DefaultTuning returns sane defaults, overridable by config/scenery input.
func DefaultTuning() Tuning {
	return Tuning{
		Kind:        Legacy,
		Delta:       0.01,
		Adaptive:    false,
		AbsTol:      1e-6,
		RelTol:      1e-6,
		DeltaMax:    1.0,
		DeltaMin:    1e-6,
		Maxiter:     100000,
		MinimumTime: 1e6,
	}
}
