package simulation

import "fmt"

// Severity selects which bed class of a province's resource pool an
// admission needs.
type Severity int

const (
	WardBed Severity = iota
	ICUBed
)

func (s Severity) String() string {
	if s == ICUBed {
		return "icu"
	}
	return "hospital"
}

// ResourcePool tracks one province's finite hospital and ICU capacity.
// Occupancy never exceeds capacity and never goes negative; under the
// degrade overflow policy patients admitted beyond capacity are counted as
// unbedded so that later discharges release only beds that were actually
// held.
type ResourcePool struct {
	capacity [2]int
	occupied [2]int
	unbedded [2]int

	// ExcessDemand accumulates admissions that could not be given a bed,
	// regardless of overflow policy. Part of the run diagnostics.
	ExcessDemand [2]int
}

// NewResourcePool creates a pool with the given hospital and ICU capacity.
func NewResourcePool(hospitalBeds, icuBeds int) *ResourcePool {
	pool := &ResourcePool{}
	pool.capacity[WardBed] = hospitalBeds
	pool.capacity[ICUBed] = icuBeds
	return pool
}

// Admit reserves one bed of the requested class. It reports false when the
// pool is full; the caller applies the configured overflow policy.
func (p *ResourcePool) Admit(severity Severity) bool {
	if p.occupied[severity] >= p.capacity[severity] {
		return false
	}
	p.occupied[severity]++
	return true
}

// AdmitUpTo reserves beds for up to n patients at once and returns how many
// were actually admitted. Aggregated rule draws use this instead of n
// individual Admit calls.
func (p *ResourcePool) AdmitUpTo(severity Severity, n int) int {
	free := p.capacity[severity] - p.occupied[severity]
	if free < 0 {
		free = 0
	}
	admitted := n
	if admitted > free {
		admitted = free
	}
	p.occupied[severity] += admitted
	p.ExcessDemand[severity] += n - admitted
	return admitted
}

// AdmitUnbedded records n patients that entered the compartment without a
// bed under the degrade policy.
func (p *ResourcePool) AdmitUnbedded(severity Severity, n int) {
	p.unbedded[severity] += n
}

// Release frees one bed. Occupancy must be positive.
func (p *ResourcePool) Release(severity Severity) error {
	if p.occupied[severity] <= 0 {
		return fmt.Errorf("release of %s bed with zero occupancy", severity)
	}
	p.occupied[severity]--
	return nil
}

// Discharge removes n patients from the compartment's bookkeeping. Unbedded
// patients leave first, the rest release their beds.
func (p *ResourcePool) Discharge(severity Severity, n int) error {
	fromUnbedded := n
	if fromUnbedded > p.unbedded[severity] {
		fromUnbedded = p.unbedded[severity]
	}
	p.unbedded[severity] -= fromUnbedded

	bedded := n - fromUnbedded
	if bedded > p.occupied[severity] {
		return fmt.Errorf("discharge of %d bedded patients with %d %s beds occupied", bedded, p.occupied[severity], severity)
	}
	p.occupied[severity] -= bedded
	return nil
}

// Occupied returns the current occupancy of one bed class.
func (p *ResourcePool) Occupied(severity Severity) int {
	return p.occupied[severity]
}

// Capacity returns the configured capacity of one bed class.
func (p *ResourcePool) Capacity(severity Severity) int {
	return p.capacity[severity]
}

// Unbedded returns the count of patients admitted without a bed.
func (p *ResourcePool) Unbedded(severity Severity) int {
	return p.unbedded[severity]
}

// withinBounds reports whether occupancy invariants hold.
func (p *ResourcePool) withinBounds() bool {
	for _, s := range []Severity{WardBed, ICUBed} {
		if p.occupied[s] < 0 || p.occupied[s] > p.capacity[s] || p.unbedded[s] < 0 {
			return false
		}
	}
	return true
}
