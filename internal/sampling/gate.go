package sampling

import (
	"errors"
	"math"
	"time"
)

// Reason explains why the gate approved a transmission.
type Reason string

const (
	ReasonTempChange     Reason = "TEMP_CHANGE"
	ReasonHumidityChange Reason = "HUMIDITY_CHANGE"
	ReasonForceInterval  Reason = "FORCE_INTERVAL"
)

// State tracks the last transmitted averages and the time of the last
// transmit attempt. It is advanced after every attempt, whether or not
// the transport reported success, so a failed send still resets the
// force-interval clock.
type State struct {
	LastTemperature float64
	LastHumidity    float64
	LastSendAt      time.Time
}

// Advance records a transmit attempt.
func (s *State) Advance(avgTemp, avgHum float64, now time.Time) {
	s.LastTemperature = avgTemp
	s.LastHumidity = avgHum
	s.LastSendAt = now
}

// Decision is the outcome of a gate evaluation.
type Decision struct {
	Send    bool
	Reasons []Reason
}

// Gate decides whether a pair of rolling averages warrants a
// transmission. It holds no mutable state; Evaluate is a pure function
// over its inputs.
type Gate struct {
	tempThreshold float64
	humThreshold  float64
	forceInterval time.Duration
}

// NewGate constructs a gate. Thresholds must be positive and the force
// interval must be non-zero so a silent sensor still reports.
func NewGate(tempThreshold, humThreshold float64, forceInterval time.Duration) (*Gate, error) {
	if tempThreshold <= 0 || humThreshold <= 0 {
		return nil, errors.New("sampling: gate thresholds must be positive")
	}
	if forceInterval <= 0 {
		return nil, errors.New("sampling: force interval must be positive")
	}
	return &Gate{
		tempThreshold: tempThreshold,
		humThreshold:  humThreshold,
		forceInterval: forceInterval,
	}, nil
}

// Evaluate reports whether the averages should be sent now. The
// decision is the OR of three independent conditions; each satisfied
// condition is also reported as a reason for diagnostics.
func (g *Gate) Evaluate(avgTemp, avgHum float64, now time.Time, state State) Decision {
	var decision Decision
	if math.Abs(avgTemp-state.LastTemperature) >= g.tempThreshold {
		decision.Reasons = append(decision.Reasons, ReasonTempChange)
	}
	if math.Abs(avgHum-state.LastHumidity) >= g.humThreshold {
		decision.Reasons = append(decision.Reasons, ReasonHumidityChange)
	}
	if now.Sub(state.LastSendAt) >= g.forceInterval {
		decision.Reasons = append(decision.Reasons, ReasonForceInterval)
	}
	decision.Send = len(decision.Reasons) > 0
	return decision
}
