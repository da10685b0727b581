package risk

import (
	"math"
	"testing"

	"trustgate.org/internal/directory"
)

func TestScoreDeviceCases(t *testing.T) {
	s := NewScorer(PrimaryConfig())
	hour := 12 // business hours

	noDevice := s.Score(0.2, nil, false, hour)
	if noDevice != 0.2 {
		t.Fatalf("no device: expected 0.2, got %v", noDevice)
	}

	known := s.Score(0.2, &directory.Device{ID: "mac-001", TrustLevel: 0.9}, true, hour)
	if math.Abs(known-0.3) > 1e-9 {
		t.Fatalf("known device: expected 0.3, got %v", known)
	}

	unknown := s.Score(0.2, nil, true, hour)
	if math.Abs(unknown-0.7) > 1e-9 {
		t.Fatalf("unknown device: expected 0.7, got %v", unknown)
	}

	if !(noDevice < unknown) {
		t.Fatalf("no device must score lower than unrecognized device")
	}
}

func TestScoreAfterHours(t *testing.T) {
	primary := NewScorer(PrimaryConfig())
	local := NewScorer(LocalConfig())

	if got := primary.Score(0.1, nil, false, 22); math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("primary after hours: expected 0.4, got %v", got)
	}
	if got := primary.Score(0.1, nil, false, 7); got != 0.1 {
		t.Fatalf("window start is inclusive: got %v", got)
	}
	if got := primary.Score(0.1, nil, false, 19); got != 0.1 {
		t.Fatalf("window end is inclusive: got %v", got)
	}
	if got := local.Score(0.1, nil, false, 7); math.Abs(got-0.3) > 1e-9 {
		t.Fatalf("local domain window starts at 8: got %v", got)
	}
	if got := local.Score(0.1, nil, false, 22); math.Abs(got-0.3) > 1e-9 {
		t.Fatalf("local after-hours penalty is 0.2: got %v", got)
	}
}

func TestScoreClamped(t *testing.T) {
	s := NewScorer(PrimaryConfig())
	baselines := []float64{0.0, 0.2, 0.5, 0.8, 1.0}
	devices := []*directory.Device{
		nil,
		{ID: "d", TrustLevel: 0.0},
		{ID: "d", TrustLevel: 0.5},
		{ID: "d", TrustLevel: 1.0},
	}
	for _, baseline := range baselines {
		for _, dev := range devices {
			for _, supplied := range []bool{true, false} {
				if dev != nil && !supplied {
					continue
				}
				for hour := 0; hour < 24; hour++ {
					got := s.Score(baseline, dev, supplied, hour)
					if got < 0.0 || got > 1.0 {
						t.Fatalf("score %v outside [0,1] (baseline=%v dev=%v supplied=%v hour=%d)",
							got, baseline, dev, supplied, hour)
					}
				}
			}
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := NewScorer(PrimaryConfig())
	dev := &directory.Device{ID: "mobile-002", TrustLevel: 0.7}
	a := s.Score(0.3, dev, true, 23)
	b := s.Score(0.3, dev, true, 23)
	if a != b {
		t.Fatalf("score is not deterministic: %v vs %v", a, b)
	}
}

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		0.0:                0.0,
		0.456:              0.46,
		0.3000000000000001: 0.3,
		1.0:                1.0,
	}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Fatalf("Round2(%v)=%v, want %v", in, got, want)
		}
	}
}
