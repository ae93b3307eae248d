package domain

// Signal es la clasificación discreta de una observación frente a los
// umbrales configurados. No lleva estado: es el Ledger quien decide si la
// señal es accionable dada la posición actual.
type Signal int

const (
	NoEntry Signal = iota
	StrongEntry
	AcceptableEntry
	PartialExit
	FullExit
	StopLoss
)

// String devuelve el nombre estable de la señal (se persiste y se loggea).
func (s Signal) String() string {
	switch s {
	case StrongEntry:
		return "strong_entry"
	case AcceptableEntry:
		return "acceptable_entry"
	case PartialExit:
		return "partial_exit"
	case FullExit:
		return "full_exit"
	case StopLoss:
		return "stop_loss"
	default:
		return "no_entry"
	}
}

// IsEntry indica si la señal abre posición estando FLAT.
func (s Signal) IsEntry() bool {
	return s == StrongEntry || s == AcceptableEntry
}

// IsExit indica si la señal cierra la posición abierta.
func (s Signal) IsExit() bool {
	return s == StopLoss || s == FullExit || s == PartialExit
}

// Thresholds son los umbrales de la estrategia sobre la base mensualizada.
// PartialExit no es configurable: es el punto medio entre entrada y salida.
type Thresholds struct {
	Entry    float64 // default 0.5%
	StopLoss float64 // default 0.2%
	Exit     float64 // default 3.5%
}

// PartialExit devuelve el umbral de salida parcial (punto medio).
func (t Thresholds) PartialExit() float64 {
	return (t.Entry + t.Exit) / 2
}

// Classify mapea una observación a una señal. Función pura: mismos inputs,
// misma señal, sin dependencia del histórico.
//
// El orden de evaluación es fijo y significativo — las condiciones de salida
// se evalúan ANTES que las de entrada, de modo que si ambas dispararan el
// mismo día la posición se cierra, nunca se reabre.
func Classify(o BasisObservation, t Thresholds) Signal {
	basisPct := o.BasisPct()
	monthly := o.MonthlyBasis()

	if basisPct < 0 || monthly < t.StopLoss {
		return StopLoss
	}
	if monthly > t.Exit {
		return FullExit
	}
	if monthly > t.PartialExit() {
		return PartialExit
	}
	if monthly > t.Entry {
		return StrongEntry
	}
	return NoEntry
}
