package physics

// Physical constants in SI units.
const (
	// SpeedOfLight in m/s.
	SpeedOfLight = 299792458.0

	// Coulomb is k = 1/(4πε₀) in N·m²/C².
	Coulomb = 8.9875517923e9

	// Epsilon0 is the vacuum permittivity in C²/(N·m²).
	Epsilon0 = 8.8541878128e-12

	// ElementaryCharge in C.
	ElementaryCharge = 1.602176634e-19

	ElectronMass = 9.1093837015e-31
	ProtonMass   = 1.67262192369e-27
)

// Numerical guards.
const (
	// MinSafeDistance is the distance below which a charge contributes no field.
	MinSafeDistance = 1e-15

	// MinFieldForDirection is the magnitude below which the field has no direction.
	MinFieldForDirection = 1e-20

	// MaxVelocity caps particle speed at 10% of c.
	MaxVelocity = 0.1 * SpeedOfLight

	// MaxReleaseSpeed is the default cap on drag release velocity in m/s.
	MaxReleaseSpeed = 1e6

	// NeutralTolerance is the charge magnitude treated as neutral.
	NeutralTolerance = 1e-20

	// exactTimeMatch is the timestamp tolerance for history lookups.
	exactTimeMatch = 1e-9
)

// DefaultVisualRadius is the on-screen radius of factory-made particles.
const DefaultVisualRadius = 1e-10

// HistoryCapacity bounds each particle's state history.
const HistoryCapacity = 10000
