package simulation

import (
	"sort"

	"github.com/sherine-k/epidemics/pkg/config"
)

// provinceState holds one province's aggregated cohort counts. Each
// (compartment, class) cell is a vector over days-in-compartment, with the
// last bucket saturating at the compartment's tracking horizon. S, I and R
// have no dwell-dependent transitions, so their vectors collapse to a single
// bucket.
type provinceState struct {
	cfg     config.Province
	cells   [numCompartments][][]int
	deaths  int // cumulative
	pool    *ResourcePool
	horizon [numCompartments]int
}

func newProvinceState(cfg config.Province, disease *config.Disease, classes []BehaviorClass) *provinceState {
	p := &provinceState{
		cfg:  cfg,
		pool: NewResourcePool(cfg.HospitalBeds, cfg.ICUBeds),
	}
	p.horizon[Exposed] = disease.IncubationMinDays
	p.horizon[Hospitalized] = disease.HospitalMinStayDays
	p.horizon[Critical] = disease.HospitalMinStayDays

	for c := Susceptible; c < numCompartments; c++ {
		p.cells[c] = make([][]int, len(classes))
		for class := range classes {
			p.cells[c][class] = make([]int, p.horizon[c]+1)
		}
	}
	return p
}

// seed distributes the province's population across behavior classes and
// plants the initial infectious cohort. Apportionment is arithmetic, not
// stochastic, so identical bundles always seed identical states.
func (p *provinceState) seed(classes []BehaviorClass, vaccinatedFraction float64) {
	weights := make([]float64, len(classes))
	for i, class := range classes {
		share := 1 - vaccinatedFraction
		if class.Vaccinated {
			share = vaccinatedFraction
		}
		weights[i] = class.Tier.Fraction * share
	}

	byClass := apportion(p.cfg.Population, weights)
	infected := apportionInts(p.cfg.InitialInfectious, byClass)
	for class := range classes {
		p.cells[Susceptible][class][0] = byClass[class] - infected[class]
		p.cells[Infectious][class][0] = infected[class]
	}
}

// count returns the cell total for one compartment and class.
func (p *provinceState) count(c Compartment, class int) int {
	total := 0
	for _, n := range p.cells[c][class] {
		total += n
	}
	return total
}

// compartmentTotal sums a compartment across all classes.
func (p *provinceState) compartmentTotal(c Compartment) int {
	total := 0
	for class := range p.cells[c] {
		total += p.count(c, class)
	}
	return total
}

// alive returns the province population excluding the deceased.
func (p *provinceState) alive() int {
	total := 0
	for c := Susceptible; c < numCompartments; c++ {
		total += p.compartmentTotal(c)
	}
	return total
}

// activeInfections counts E+I+J3+J4, the termination criterion.
func (p *provinceState) activeInfections() int {
	return p.compartmentTotal(Exposed) + p.compartmentTotal(Infectious) +
		p.compartmentTotal(Hospitalized) + p.compartmentTotal(Critical)
}

// enter adds n fresh entrants (zero days in compartment) to a cell.
func (p *provinceState) enter(c Compartment, class, n int) {
	p.cells[c][class][0] += n
}

// advanceAges shifts every dwell vector by one day. The saturating bucket
// absorbs cohorts that are past the tracking horizon.
func (p *provinceState) advanceAges() {
	for c := Susceptible; c < numCompartments; c++ {
		for class := range p.cells[c] {
			ages := p.cells[c][class]
			h := len(ages) - 1
			if h == 0 {
				continue
			}
			ages[h] += ages[h-1]
			for i := h - 1; i > 0; i-- {
				ages[i] = ages[i-1]
			}
			ages[0] = 0
		}
	}
}

// snapshot deep-copies the cohort counts. Rule evaluation reads the frozen
// copy so that no same-day transition feeds back into another draw.
func (p *provinceState) snapshot() [numCompartments][][]int {
	var frozen [numCompartments][][]int
	for c := Susceptible; c < numCompartments; c++ {
		frozen[c] = make([][]int, len(p.cells[c]))
		for class := range p.cells[c] {
			ages := make([]int, len(p.cells[c][class]))
			copy(ages, p.cells[c][class])
			frozen[c][class] = ages
		}
	}
	return frozen
}

// apportion splits total across weights with largest-remainder rounding so
// that the shares always sum to total exactly.
func apportion(total int, weights []float64) []int {
	shares := make([]int, len(weights))
	if total == 0 || len(weights) == 0 {
		return shares
	}

	weightSum := 0.0
	for _, w := range weights {
		weightSum += w
	}
	if weightSum == 0 {
		shares[0] = total
		return shares
	}

	type remainder struct {
		index int
		frac  float64
	}
	remainders := make([]remainder, len(weights))
	assigned := 0
	for i, w := range weights {
		exact := float64(total) * w / weightSum
		shares[i] = int(exact)
		assigned += shares[i]
		remainders[i] = remainder{index: i, frac: exact - float64(shares[i])}
	}

	sort.SliceStable(remainders, func(i, j int) bool {
		return remainders[i].frac > remainders[j].frac
	})
	for i := 0; i < total-assigned; i++ {
		shares[remainders[i%len(remainders)].index]++
	}
	return shares
}

// apportionInts splits total proportionally to integer weights.
func apportionInts(total int, weights []int) []int {
	asFloat := make([]float64, len(weights))
	for i, w := range weights {
		asFloat[i] = float64(w)
	}
	shares := apportion(total, asFloat)
	// Never assign more than the weight itself; shift any excess to the
	// next class that still has room.
	excess := 0
	for i := range shares {
		if shares[i] > weights[i] {
			excess += shares[i] - weights[i]
			shares[i] = weights[i]
		}
	}
	for i := range shares {
		if excess == 0 {
			break
		}
		room := weights[i] - shares[i]
		if room > 0 {
			take := room
			if take > excess {
				take = excess
			}
			shares[i] += take
			excess -= take
		}
	}
	return shares
}
