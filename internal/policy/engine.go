package policy

import (
	"strings"
	"time"

	"trustgate.org/internal/token"
)

// Input is the normalized view of a request the rules evaluate. The risk
// score is clamped on read; tokens reach the engine already verified, so a
// malformed score is bounded rather than rejected.
type Input struct {
	Subject          string
	Role             string
	Department       string
	RiskScore        float64
	DevicePresented  bool
	DeviceTrustLevel float64

	Path   string
	Method string
	Hour   int
}

// Rule is a pure predicate over an Input. Eval reports the verdict and
// whether the rule fired; a rule that does not fire defers to the next one.
type Rule struct {
	Name string
	Eval func(in Input) (Decision, bool)
}

// Engine evaluates the ordered rule cascade. Stateless and safe for
// concurrent use.
type Engine struct {
	cfg   Config
	rules []Rule
}

// NewEngine builds the canonical cascade for the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, rules: cascade(cfg)}
}

// Rules exposes the rule names in evaluation order.
func (e *Engine) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// Evaluate returns exactly one decision for every (claims, path, method)
// triple, plus the name of the rule that produced it. The fold halts on the
// first rule that fires; the default is allow.
func (e *Engine) Evaluate(claims *token.Claims, path, method string, now time.Time) (Decision, string) {
	in := Input{
		Subject:          claims.Subject,
		Role:             claims.Role,
		Department:       claims.Department,
		RiskScore:        claims.BoundedRiskScore(),
		DevicePresented:  claims.DevicePresented(),
		DeviceTrustLevel: claims.DeviceTrustLevel,
		Path:             path,
		Method:           method,
		Hour:             now.UTC().Hour(),
	}
	return e.EvaluateInput(in)
}

// EvaluateInput runs the cascade over an already-normalized input.
func (e *Engine) EvaluateInput(in Input) (Decision, string) {
	for _, rule := range e.rules {
		if verdict, fired := rule.Eval(in); fired {
			return verdict, rule.Name
		}
	}
	return Allow, "default"
}

// cascade assembles the rules in canonical precedence order. Later rules
// must never override an earlier verdict, which the first-match fold
// guarantees by construction.
func cascade(cfg Config) []Rule {
	return []Rule{
		{
			Name: "risk-ceiling",
			Eval: func(in Input) (Decision, bool) {
				if in.RiskScore > cfg.HighRiskThreshold {
					return Challenge, true
				}
				return Allow, false
			},
		},
		{
			Name: "sensitive-resource",
			Eval: func(in Input) (Decision, bool) {
				if !cfg.sensitive(in.Path) {
					return Allow, false
				}
				if !cfg.adminRole(in.Role) {
					return Deny, true
				}
				if cfg.ExportPath != "" && in.Path == cfg.ExportPath && in.RiskScore > cfg.ExportRiskThreshold {
					return Challenge, true
				}
				return Allow, false
			},
		},
		{
			Name: "after-hours",
			Eval: func(in Input) (Decision, bool) {
				if cfg.inBusinessHours(in.Hour) {
					return Allow, false
				}
				if in.Role == cfg.ContractorRole {
					return Deny, true
				}
				if in.RiskScore > cfg.AfterHoursRiskThreshold {
					return Challenge, true
				}
				return Allow, false
			},
		},
		{
			Name: "untrusted-device",
			Eval: func(in Input) (Decision, bool) {
				if !in.DevicePresented || in.DeviceTrustLevel >= cfg.DeviceTrustThreshold {
					return Allow, false
				}
				if cfg.sensitive(in.Path) || in.RiskScore > cfg.UntrustedRiskThreshold {
					return Challenge, true
				}
				return Allow, false
			},
		},
		{
			Name: "department",
			Eval: func(in Input) (Decision, bool) {
				if strings.HasPrefix(in.Path, cfg.AdminPathPrefix) && !cfg.adminDepartment(in.Department) {
					return Deny, true
				}
				return Allow, false
			},
		},
		{
			Name: "contractor-ceiling",
			Eval: func(in Input) (Decision, bool) {
				if in.Role != cfg.ContractorRole {
					return Allow, false
				}
				if strings.HasPrefix(in.Path, cfg.AdminPathPrefix) {
					return Deny, true
				}
				if in.RiskScore > cfg.ContractorRiskThreshold {
					return Challenge, true
				}
				return Allow, false
			},
		},
		{
			Name: "first-contact",
			Eval: func(in Input) (Decision, bool) {
				// Trust level zero means trust was never established,
				// which is distinct from a known low-trust device.
				if in.DeviceTrustLevel == 0.0 && in.RiskScore > cfg.FirstContactRiskThreshold {
					return Challenge, true
				}
				return Allow, false
			},
		},
	}
}
