package policy

// Config carries every threshold and set the rule cascade consults. All of
// them are deployment configuration; none are hardcoded in the rules.
type Config struct {
	// HighRiskThreshold triggers an unconditional challenge when exceeded.
	HighRiskThreshold float64

	// SensitivePaths are gated to admin-capable roles.
	SensitivePaths map[string]struct{}

	// ExportPath is the most sensitive class inside SensitivePaths; even
	// admin-capable roles are challenged above ExportRiskThreshold.
	ExportPath          string
	ExportRiskThreshold float64

	// AdminRoles may reach sensitive paths.
	AdminRoles map[string]struct{}

	// BusinessStart/BusinessEnd bound the inclusive business-hours window
	// (UTC). AfterHoursRiskThreshold challenges risky sessions outside it.
	BusinessStart           int
	BusinessEnd             int
	AfterHoursRiskThreshold float64

	// DeviceTrustThreshold marks a presented device as untrusted.
	DeviceTrustThreshold   float64
	UntrustedRiskThreshold float64

	// AdminPathPrefix namespaces administrative resources; only
	// AdminDepartments may enter it.
	AdminPathPrefix  string
	AdminDepartments map[string]struct{}

	// ContractorRole and its risk ceiling.
	ContractorRole          string
	ContractorRiskThreshold float64

	// FirstContactRiskThreshold challenges sessions that never established
	// device trust.
	FirstContactRiskThreshold float64
}

// DefaultConfig returns the canonical policy constants.
func DefaultConfig() Config {
	return Config{
		HighRiskThreshold: 0.7,
		SensitivePaths: map[string]struct{}{
			"/export":    {},
			"/admin":     {},
			"/sensitive": {},
		},
		ExportPath:          "/export",
		ExportRiskThreshold: 0.4,

		AdminRoles: map[string]struct{}{
			"admin":   {},
			"manager": {},
		},

		BusinessStart:           7,
		BusinessEnd:             19,
		AfterHoursRiskThreshold: 0.3,

		DeviceTrustThreshold:   0.5,
		UntrustedRiskThreshold: 0.4,

		AdminPathPrefix: "/admin",
		AdminDepartments: map[string]struct{}{
			"it":         {},
			"management": {},
		},

		ContractorRole:          "contractor",
		ContractorRiskThreshold: 0.5,

		FirstContactRiskThreshold: 0.2,
	}
}

// LocalConfig returns the policy constants of the local service domain.
func LocalConfig() Config {
	cfg := DefaultConfig()
	cfg.SensitivePaths = map[string]struct{}{
		"/local-admin": {},
	}
	cfg.ExportPath = ""
	cfg.AdminRoles = map[string]struct{}{
		"local_admin": {},
	}
	cfg.AdminPathPrefix = "/local-admin"
	cfg.AdminDepartments = map[string]struct{}{
		"local_dept": {},
	}
	cfg.BusinessStart = 8
	cfg.BusinessEnd = 18
	return cfg
}

func (c Config) sensitive(path string) bool {
	_, ok := c.SensitivePaths[path]
	return ok
}

func (c Config) adminRole(role string) bool {
	_, ok := c.AdminRoles[role]
	return ok
}

func (c Config) adminDepartment(department string) bool {
	_, ok := c.AdminDepartments[department]
	return ok
}

func (c Config) inBusinessHours(hour int) bool {
	return hour >= c.BusinessStart && hour <= c.BusinessEnd
}
