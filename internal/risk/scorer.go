// Package risk computes the session risk score embedded into issued tokens.
//
// Scoring happens once, at issuance time. The score is carried inside the
// token as a fact about the session and is never re-derived from stored
// baselines on later requests.
package risk

import (
	"math"

	"trustgate.org/internal/directory"
)

// Config holds the per-domain scoring parameters. Distinct trust domains run
// with different after-hours penalties and business windows.
type Config struct {
	// BusinessStart and BusinessEnd bound the inclusive business-hours
	// window (0-23, UTC). An hour outside the window adds AfterHoursPenalty.
	BusinessStart int
	BusinessEnd   int

	AfterHoursPenalty float64

	// UnknownDevicePenalty applies when a device id was supplied but the
	// directory has no record of it. Distinct from "no device supplied"
	// (no penalty) and from a known device (1 - trust level).
	UnknownDevicePenalty float64
}

// PrimaryConfig returns the scoring parameters of the primary identity domain.
func PrimaryConfig() Config {
	return Config{
		BusinessStart:        7,
		BusinessEnd:          19,
		AfterHoursPenalty:    0.3,
		UnknownDevicePenalty: 0.5,
	}
}

// LocalConfig returns the scoring parameters of the local service domain.
func LocalConfig() Config {
	return Config{
		BusinessStart:        8,
		BusinessEnd:          18,
		AfterHoursPenalty:    0.2,
		UnknownDevicePenalty: 0.5,
	}
}

// Scorer combines baseline user risk, device trust and time of day into a
// bounded score. Stateless and safe for concurrent use.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score returns the session risk in [0.0, 1.0].
//
// device carries the directory lookup result: nil with deviceSupplied=false
// means no device was presented, nil with deviceSupplied=true means the
// presented id is unknown to the directory. The caller supplies the current
// hour (UTC) so the function stays pure.
func (s *Scorer) Score(baselineRisk float64, device *directory.Device, deviceSupplied bool, currentHour int) float64 {
	deviceRisk := 0.0
	switch {
	case device != nil:
		deviceRisk = 1.0 - device.TrustLevel
	case deviceSupplied:
		deviceRisk = s.cfg.UnknownDevicePenalty
	}

	timeRisk := 0.0
	if !s.InBusinessHours(currentHour) {
		timeRisk = s.cfg.AfterHoursPenalty
	}

	return math.Min(1.0, baselineRisk+deviceRisk+timeRisk)
}

// InBusinessHours reports whether the hour falls inside the inclusive window.
func (s *Scorer) InBusinessHours(hour int) bool {
	return hour >= s.cfg.BusinessStart && hour <= s.cfg.BusinessEnd
}

// Round2 rounds a score to two decimals for presentation and storage.
// Clamping always happens on the unrounded value.
func Round2(score float64) float64 {
	return math.Round(score*100) / 100
}
