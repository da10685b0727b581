// Package policy evaluates verified claims against a requested resource and
// produces an access decision. The rule cascade is ordered: the first rule
// that fires wins, and reordering rules is a policy change, not a refactor.
package policy

// Decision is the three-valued outcome of policy evaluation.
type Decision int

const (
	// Allow grants access to the resource.
	Allow Decision = iota
	// Challenge requires step-up verification before access is granted.
	Challenge
	// Deny refuses access.
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Challenge:
		return "challenge"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}
