package directory

// Development fixtures mirroring the pilot deployment. Production backends
// replace these with real directory data; the binaries only fall back to the
// seeded MemoryDirectory when no DSN is configured.

type identitySeed struct {
	username     string
	secret       string
	role         string
	department   string
	baselineRisk float64
}

type deviceSeed struct {
	id         string
	deviceType string
	trustLevel float64
}

// SeedPrimary loads the primary identity-provider fixture set.
func SeedPrimary(d *MemoryDirectory) error {
	identities := []identitySeed{
		{"analyst", "analyst", "analyst", "analytics", 0.2},
		{"contractor", "contractor", "contractor", "external", 0.6},
		{"admin", "admin", "admin", "it", 0.1},
		{"manager", "manager", "manager", "management", 0.3},
	}
	devices := []deviceSeed{
		{"mac-001", "laptop", 0.9},
		{"mobile-002", "mobile", 0.7},
		{"desktop-003", "desktop", 0.8},
	}
	return seed(d, identities, devices)
}

// SeedLocal loads the local-service fixture set.
func SeedLocal(d *MemoryDirectory) error {
	identities := []identitySeed{
		{"local", "local", "local_user", "local_dept", 0.1},
		{"admin", "admin", "local_admin", "local_dept", 0.0},
		{"guest", "guest", "guest", "external", 0.8},
	}
	devices := []deviceSeed{
		{"local-laptop", "laptop", 0.9},
		{"local-mobile", "mobile", 0.7},
	}
	return seed(d, identities, devices)
}

func seed(d *MemoryDirectory, identities []identitySeed, devices []deviceSeed) error {
	for _, i := range identities {
		if err := d.SeedIdentity(i.username, i.secret, i.role, i.department, i.baselineRisk); err != nil {
			return err
		}
	}
	for _, dev := range devices {
		if err := d.SeedDevice(dev.id, dev.deviceType, dev.trustLevel); err != nil {
			return err
		}
	}
	return nil
}
