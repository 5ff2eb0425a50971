package simulation

import (
	"math"
	"math/rand"
	"sort"

	"github.com/sherine-k/epidemics/pkg/config"
)

// ruleSet applies the daily SEJIRS progression to one province. All draws
// read the frozen previous-day snapshot, so transitions computed for day N
// never feed back into other day-N draws.
type ruleSet struct {
	disease           *config.Disease
	behavior          *config.Behavior
	policy            config.OverflowPolicy
	untreatedFatality float64
	classes           []BehaviorClass
}

// dayOutcome summarizes one province's rule application for the event log.
type dayOutcome struct {
	newExposed   int
	blockedWard  int
	blockedICU   int
	degradedWard int
	degradedICU  int
	deaths       int
}

// draw is one candidate transition out of a compartment.
type draw struct {
	dest Compartment // deceased sentinel allowed
	p    float64
	n    int // realized count, filled by runDraws
}

// apply advances one province by one day of disease progression. Group
// order is fixed: exposure, incubation, infectious outcomes, ward outcomes,
// ICU outcomes, waning. Within a day the earlier severity admissions win
// scarce beds.
func (r *ruleSet) apply(rng *rand.Rand, p *provinceState) (dayOutcome, error) {
	frozen := p.snapshot()
	deathsAtStart := p.deaths
	outcome := dayOutcome{}

	frozenTotal := func(c Compartment) int {
		if c == deceased {
			return deathsAtStart
		}
		total := 0
		for class := range frozen[c] {
			for _, n := range frozen[c][class] {
				total += n
			}
		}
		return total
	}

	alive := 0
	for c := Susceptible; c < numCompartments; c++ {
		alive += frozenTotal(c)
	}
	infectious := frozenTotal(Infectious)
	visibleInfected := infectious + frozenTotal(Hospitalized) + frozenTotal(Critical)

	// S -> E. Exposure probability follows the standard contact form
	// 1-(1-beta/N)^I, discounted by prudence, vaccination and, when
	// enabled, the caution factor.
	if infectious > 0 && alive > 0 {
		base := 1 - math.Pow(1-clamp01(r.disease.ExposureRate/float64(alive)), float64(infectious))
		caution := 1.0
		if r.behavior.CautionEnabled {
			caution = cautionFactor(visibleInfected, alive, r.behavior.CautionFactor)
		}
		for class, bc := range r.classes {
			prob := base * bc.Tier.ExposureDiscount * caution
			if bc.Vaccinated {
				prob *= 1 - r.behavior.VaccineEffectiveness
			}
			exposed := binomial(rng, frozen[Susceptible][class][0], clamp01(prob))
			p.cells[Susceptible][class][0] -= exposed
			p.enter(Exposed, class, exposed)
			outcome.newExposed += exposed
		}
	}

	// E -> I, only once the minimum incubation dwell has passed.
	for class := range r.classes {
		eligibleBucket := len(frozen[Exposed][class]) - 1
		onset := binomial(rng, frozen[Exposed][class][eligibleBucket], r.disease.IncubationRate)
		p.cells[Exposed][class][eligibleBucket] -= onset
		p.enter(Infectious, class, onset)
	}

	// I -> {J3, J4, R}.
	for class, bc := range r.classes {
		severity := 1.0
		if bc.Vaccinated {
			severity = 1 - r.behavior.VaccineSeverityProtection
		}
		draws := []draw{
			{dest: Hospitalized, p: r.disease.HospitalizationRate * severity},
			{dest: Critical, p: r.disease.SevereRate * severity},
			{dest: Recovered, p: r.disease.RecoveryRate},
		}
		runDraws(rng, frozen[Infectious][class][0], draws, frozenTotal)

		for _, d := range draws {
			switch d.dest {
			case Recovered:
				p.cells[Infectious][class][0] -= d.n
				p.enter(Recovered, class, d.n)
			case Hospitalized:
				left := r.admit(rng, p, WardBed, Hospitalized, class, d.n, &outcome)
				p.cells[Infectious][class][0] -= left
			case Critical:
				left := r.admit(rng, p, ICUBed, Critical, class, d.n, &outcome)
				p.cells[Infectious][class][0] -= left
			}
		}
	}

	// J3 -> {J4, R, Deceased}. Discharge requires the minimum stay;
	// worsening and death can happen on any day.
	for class := range r.classes {
		lastBucket := len(frozen[Hospitalized][class]) - 1
		for age, count := range frozen[Hospitalized][class] {
			draws := []draw{
				{dest: Critical, p: r.disease.WorseningRate},
				{dest: deceased, p: r.disease.HospitalFatality},
			}
			if age == lastBucket {
				draws = append(draws, draw{dest: Recovered, p: r.disease.DischargeRate})
			}
			runDraws(rng, count, draws, frozenTotal)

			for _, d := range draws {
				if d.n == 0 {
					continue
				}
				switch d.dest {
				case Recovered:
					if err := p.pool.Discharge(WardBed, d.n); err != nil {
						return outcome, err
					}
					p.cells[Hospitalized][class][age] -= d.n
					p.enter(Recovered, class, d.n)
				case deceased:
					if err := p.pool.Discharge(WardBed, d.n); err != nil {
						return outcome, err
					}
					p.cells[Hospitalized][class][age] -= d.n
					p.deaths += d.n
				case Critical:
					moved, err := r.worsen(rng, p, class, age, d.n, &outcome)
					if err != nil {
						return outcome, err
					}
					p.cells[Hospitalized][class][age] -= moved
				}
			}
		}
	}

	// J4 -> {R, Deceased}.
	for class := range r.classes {
		lastBucket := len(frozen[Critical][class]) - 1
		for age, count := range frozen[Critical][class] {
			draws := []draw{
				{dest: deceased, p: r.disease.ICUFatality},
			}
			if age == lastBucket {
				draws = append(draws, draw{dest: Recovered, p: r.disease.ICUDischargeRate})
			}
			runDraws(rng, count, draws, frozenTotal)

			for _, d := range draws {
				if d.n == 0 {
					continue
				}
				if err := p.pool.Discharge(ICUBed, d.n); err != nil {
					return outcome, err
				}
				p.cells[Critical][class][age] -= d.n
				if d.dest == Recovered {
					p.enter(Recovered, class, d.n)
				} else {
					p.deaths += d.n
				}
			}
		}
	}

	// R -> S when immunity wanes.
	if r.disease.WaningEnabled {
		for class := range r.classes {
			waned := binomial(rng, frozen[Recovered][class][0], r.disease.WaningRate)
			p.cells[Recovered][class][0] -= waned
			p.enter(Susceptible, class, waned)
		}
	}

	outcome.deaths = p.deaths - deathsAtStart
	return outcome, nil
}

// admit moves n patients from I into a bedded compartment, resolving
// overflow per the configured policy. It returns how many actually left I
// (the blocked stay put under the block policy; the dead leave too).
func (r *ruleSet) admit(rng *rand.Rand, p *provinceState, severity Severity, dest Compartment, class, n int, outcome *dayOutcome) int {
	admitted := p.pool.AdmitUpTo(severity, n)
	p.enter(dest, class, admitted)
	blocked := n - admitted
	if blocked == 0 {
		return admitted
	}

	if r.policy == config.OverflowBlock {
		r.countBlocked(severity, blocked, outcome)
		return admitted
	}

	// Degrade: the clinical transition happens anyway, without a bed and
	// with an immediate untreated-fatality draw.
	dead := binomial(rng, blocked, r.untreatedFatality)
	p.deaths += dead
	p.pool.AdmitUnbedded(severity, blocked-dead)
	p.enter(dest, class, blocked-dead)
	r.countDegraded(severity, blocked, outcome)
	return n
}

// worsen moves ward patients to intensive care, competing for ICU beds with
// the day's direct admissions. Returns how many left J3.
func (r *ruleSet) worsen(rng *rand.Rand, p *provinceState, class, age, n int, outcome *dayOutcome) (int, error) {
	admitted := p.pool.AdmitUpTo(ICUBed, n)
	if admitted > 0 {
		if err := p.pool.Discharge(WardBed, admitted); err != nil {
			return 0, err
		}
		p.cells[Critical][class][0] += admitted
	}
	blocked := n - admitted
	if blocked == 0 {
		return admitted, nil
	}

	if r.policy == config.OverflowBlock {
		r.countBlocked(ICUBed, blocked, outcome)
		return admitted, nil
	}

	if err := p.pool.Discharge(WardBed, blocked); err != nil {
		return 0, err
	}
	dead := binomial(rng, blocked, r.untreatedFatality)
	p.deaths += dead
	p.pool.AdmitUnbedded(ICUBed, blocked-dead)
	p.cells[Critical][class][0] += blocked - dead
	r.countDegraded(ICUBed, blocked, outcome)
	return n, nil
}

func (r *ruleSet) countBlocked(severity Severity, n int, outcome *dayOutcome) {
	if severity == WardBed {
		outcome.blockedWard += n
	} else {
		outcome.blockedICU += n
	}
}

func (r *ruleSet) countDegraded(severity Severity, n int, outcome *dayOutcome) {
	if severity == WardBed {
		outcome.degradedWard += n
	} else {
		outcome.degradedICU += n
	}
}

// runDraws realizes a set of mutually exclusive transitions out of count
// individuals. Destinations are evaluated lowest-populated first (enum
// order breaks ties) and each later draw is conditioned on the earlier ones
// missing, so the marginal probabilities are preserved and the order is
// deterministic for a fixed seed.
func runDraws(rng *rand.Rand, count int, draws []draw, frozenTotal func(Compartment) int) {
	sort.SliceStable(draws, func(i, j int) bool {
		ti, tj := frozenTotal(draws[i].dest), frozenTotal(draws[j].dest)
		if ti != tj {
			return ti < tj
		}
		return draws[i].dest < draws[j].dest
	})

	remaining := count
	consumed := 0.0
	for i := range draws {
		prob := clamp01(draws[i].p)
		conditional := 1.0
		if 1-consumed > 1e-12 {
			conditional = clamp01(prob / (1 - consumed))
		}
		draws[i].n = binomial(rng, remaining, conditional)
		remaining -= draws[i].n
		consumed += prob
	}
}
