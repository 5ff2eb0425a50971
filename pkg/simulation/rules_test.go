package simulation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/sherine-k/epidemics/pkg/config"
)

func testDisease() config.Disease {
	return config.Disease{
		ExposureRate:        0.9,
		IncubationMinDays:   2,
		IncubationRate:      0.5,
		HospitalizationRate: 0.05,
		SevereRate:          0.01,
		RecoveryRate:        0.3,
		HospitalMinStayDays: 3,
		DischargeRate:       0.3,
		WorseningRate:       0.02,
		HospitalFatality:    0.01,
		ICUDischargeRate:    0.25,
		ICUFatality:         0.05,
	}
}

func newTestRules(disease config.Disease, behavior config.Behavior, policy config.OverflowPolicy) (*ruleSet, []BehaviorClass) {
	if len(behavior.PrudenceTiers) == 0 {
		behavior.PrudenceTiers = []config.PrudenceTier{{Name: "baseline", Fraction: 1, ExposureDiscount: 1}}
	}
	classes := buildClasses(behavior.PrudenceTiers)
	d := disease
	b := behavior
	return &ruleSet{
		disease:           &d,
		behavior:          &b,
		policy:            policy,
		untreatedFatality: 0.5,
		classes:           classes,
	}, classes
}

func TestBinomialBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := binomial(rng, 100, 0); got != 0 {
		t.Fatalf("binomial(n, 0) = %d, want 0", got)
	}
	if got := binomial(rng, 100, 1); got != 100 {
		t.Fatalf("binomial(n, 1) = %d, want 100", got)
	}
	if got := binomial(rng, 0, 0.5); got != 0 {
		t.Fatalf("binomial(0, p) = %d, want 0", got)
	}
	got := binomial(rng, 1000, 0.5)
	if got < 0 || got > 1000 {
		t.Fatalf("binomial out of range: %d", got)
	}
}

func TestCautionFactor(t *testing.T) {
	if got := cautionFactor(0, 1000, 10); got != 1 {
		t.Fatalf("caution with no infected = %g, want 1", got)
	}
	if got := cautionFactor(500, 1000, 10); got >= 1 {
		t.Fatalf("caution with infected present = %g, want < 1", got)
	}
	if got := cautionFactor(10, 0, 10); got != 0 {
		t.Fatalf("caution with empty province = %g, want 0", got)
	}
}

func TestVaccinationWillingnessRange(t *testing.T) {
	if got := vaccinationWillingness(0, 0.01); got != 1 {
		t.Fatalf("willingness at f=0 = %g, want 1", got)
	}
	got := vaccinationWillingness(0.5, 0.01)
	if got <= 1.9 || got >= 2 {
		t.Fatalf("willingness at high prevalence = %g, want close to 2", got)
	}
}

func TestRunDrawsExclusiveAndDeterministic(t *testing.T) {
	totals := func(c Compartment) int { return int(c) }

	run := func(seed int64) []draw {
		rng := rand.New(rand.NewSource(seed))
		draws := []draw{
			{dest: Hospitalized, p: 0.2},
			{dest: Critical, p: 0.1},
			{dest: Recovered, p: 0.4},
		}
		runDraws(rng, 10000, draws, totals)
		return draws
	}

	first := run(7)
	moved := 0
	for _, d := range first {
		if d.n < 0 {
			t.Fatalf("negative draw count: %+v", d)
		}
		moved += d.n
	}
	if moved > 10000 {
		t.Fatalf("draws moved %d out of 10000 individuals", moved)
	}

	second := run(7)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("draws differ across identical seeds: %+v vs %+v", first[i], second[i])
		}
	}

	// Marginals should stay near the configured probabilities even though
	// later draws are conditioned on earlier misses.
	for _, d := range first {
		var want float64
		switch d.dest {
		case Hospitalized:
			want = 0.2
		case Critical:
			want = 0.1
		case Recovered:
			want = 0.4
		}
		got := float64(d.n) / 10000
		if math.Abs(got-want) > 0.03 {
			t.Fatalf("marginal for %s = %g, want about %g", d.dest, got, want)
		}
	}
}

func TestApplyNoInfectiousMeansNoExposure(t *testing.T) {
	rules, classes := newTestRules(testDisease(), config.Behavior{}, config.OverflowBlock)
	p := newProvinceState(config.Province{ID: "PV_1", Population: 5000}, rules.disease, classes)
	p.seed(classes, 0)

	rng := rand.New(rand.NewSource(3))
	outcome, err := rules.apply(rng, p)
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if outcome.newExposed != 0 {
		t.Fatalf("exposures without infectious individuals: %d", outcome.newExposed)
	}
	if got := p.compartmentTotal(Susceptible); got != 5000 {
		t.Fatalf("susceptible = %d, want 5000", got)
	}
}

func TestApplyExposureRespondsToPrudence(t *testing.T) {
	behavior := config.Behavior{
		PrudenceTiers: []config.PrudenceTier{
			{Name: "relaxed", Fraction: 0.5, ExposureDiscount: 1},
			{Name: "cautious", Fraction: 0.5, ExposureDiscount: 0},
		},
	}
	rules, classes := newTestRules(testDisease(), behavior, config.OverflowBlock)
	p := newProvinceState(config.Province{ID: "PV_1", Population: 10000, InitialInfectious: 500}, rules.disease, classes)
	p.seed(classes, 0)

	rng := rand.New(rand.NewSource(11))
	if _, err := rules.apply(rng, p); err != nil {
		t.Fatalf("apply error: %v", err)
	}

	// Class indices: 0 relaxed/unvaccinated, 2 cautious/unvaccinated.
	if got := p.count(Exposed, 0); got == 0 {
		t.Fatalf("relaxed tier saw no exposures despite 500 infectious")
	}
	if got := p.count(Exposed, 2); got != 0 {
		t.Fatalf("fully prudent tier was exposed %d times, want 0", got)
	}
}

func TestApplyBlockPolicyKeepsPatientsInfectious(t *testing.T) {
	disease := testDisease()
	disease.HospitalizationRate = 1
	disease.SevereRate = 0
	disease.RecoveryRate = 0
	rules, classes := newTestRules(disease, config.Behavior{}, config.OverflowBlock)

	p := newProvinceState(config.Province{ID: "PV_1", Population: 100, InitialInfectious: 100}, rules.disease, classes)
	p.seed(classes, 0)

	rng := rand.New(rand.NewSource(5))
	outcome, err := rules.apply(rng, p)
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}

	if outcome.blockedWard != 100 {
		t.Fatalf("blocked ward admissions = %d, want 100", outcome.blockedWard)
	}
	if got := p.compartmentTotal(Infectious); got != 100 {
		t.Fatalf("infectious after blocked admissions = %d, want 100", got)
	}
	if got := p.compartmentTotal(Hospitalized); got != 0 {
		t.Fatalf("hospitalized without capacity = %d, want 0", got)
	}
}

func TestApplyDegradePolicyAdmitsWithoutBeds(t *testing.T) {
	disease := testDisease()
	disease.HospitalizationRate = 1
	disease.SevereRate = 0
	disease.RecoveryRate = 0
	rules, classes := newTestRules(disease, config.Behavior{}, config.OverflowDegrade)

	p := newProvinceState(config.Province{ID: "PV_1", Population: 200, InitialInfectious: 200}, rules.disease, classes)
	p.seed(classes, 0)

	rng := rand.New(rand.NewSource(5))
	outcome, err := rules.apply(rng, p)
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}

	if outcome.degradedWard != 200 {
		t.Fatalf("degraded ward admissions = %d, want 200", outcome.degradedWard)
	}
	if got := p.compartmentTotal(Infectious); got != 0 {
		t.Fatalf("infectious after degrade = %d, want 0", got)
	}
	if p.pool.Occupied(WardBed) != 0 {
		t.Fatalf("ward occupancy = %d, want 0", p.pool.Occupied(WardBed))
	}
	// Untreated fatality is 0.5, so the 200 split between J3 and deceased.
	if got := p.compartmentTotal(Hospitalized) + p.deaths; got != 200 {
		t.Fatalf("J3 + deaths = %d, want 200", got)
	}
	if p.deaths == 0 || p.compartmentTotal(Hospitalized) == 0 {
		t.Fatalf("expected both survivors and deaths, got J3=%d deaths=%d", p.compartmentTotal(Hospitalized), p.deaths)
	}
	if got := p.pool.Unbedded(WardBed); got != p.compartmentTotal(Hospitalized) {
		t.Fatalf("unbedded = %d, want %d", got, p.compartmentTotal(Hospitalized))
	}
}
