package simulation

import (
	"testing"

	"github.com/sherine-k/epidemics/pkg/config"
)

func testTiers() []config.PrudenceTier {
	return []config.PrudenceTier{
		{Name: "relaxed", Fraction: 0.6, ExposureDiscount: 1},
		{Name: "cautious", Fraction: 0.4, ExposureDiscount: 0.5},
	}
}

func TestApportionConservesTotal(t *testing.T) {
	cases := []struct {
		total   int
		weights []float64
	}{
		{total: 100, weights: []float64{0.5, 0.5}},
		{total: 101, weights: []float64{0.5, 0.5}},
		{total: 7, weights: []float64{0.33, 0.33, 0.34}},
		{total: 1, weights: []float64{0.1, 0.2, 0.7}},
		{total: 0, weights: []float64{1, 2}},
		{total: 10, weights: []float64{0, 0}},
	}

	for _, tc := range cases {
		shares := apportion(tc.total, tc.weights)
		sum := 0
		for _, s := range shares {
			sum += s
		}
		if sum != tc.total {
			t.Fatalf("apportion(%d, %v) = %v, sums to %d", tc.total, tc.weights, shares, sum)
		}
	}
}

func TestApportionIntsRespectsCaps(t *testing.T) {
	shares := apportionInts(10, []int{2, 100})
	if shares[0] > 2 {
		t.Fatalf("share %d exceeds its weight cap 2", shares[0])
	}
	if shares[0]+shares[1] != 10 {
		t.Fatalf("shares %v do not sum to 10", shares)
	}
}

func TestSeedSplitsPopulation(t *testing.T) {
	classes := buildClasses(testTiers())
	disease := &config.Disease{IncubationMinDays: 3, HospitalMinStayDays: 5}
	p := newProvinceState(config.Province{ID: "PV_1", Population: 1000, InitialInfectious: 10}, disease, classes)
	p.seed(classes, 0.25)

	if got := p.alive(); got != 1000 {
		t.Fatalf("alive = %d, want 1000", got)
	}
	if got := p.compartmentTotal(Infectious); got != 10 {
		t.Fatalf("infectious = %d, want 10", got)
	}

	vaccinated := 0
	for class, bc := range classes {
		if bc.Vaccinated {
			vaccinated += p.count(Susceptible, class) + p.count(Infectious, class)
		}
	}
	if vaccinated != 250 {
		t.Fatalf("vaccinated = %d, want 250", vaccinated)
	}
}

func TestAdvanceAgesShiftsDwellVectors(t *testing.T) {
	classes := buildClasses(testTiers()[:1])
	disease := &config.Disease{IncubationMinDays: 2, HospitalMinStayDays: 1}
	p := newProvinceState(config.Province{ID: "PV_1", Population: 0}, disease, classes)

	p.enter(Exposed, 0, 5)
	p.advanceAges()
	if got := p.cells[Exposed][0][1]; got != 5 {
		t.Fatalf("cohort not shifted to age 1: %v", p.cells[Exposed][0])
	}

	p.enter(Exposed, 0, 3)
	p.advanceAges()
	p.advanceAges()
	// Both cohorts are now past the horizon and pile up in the last bucket.
	if got := p.cells[Exposed][0][2]; got != 8 {
		t.Fatalf("saturating bucket = %d, want 8 (%v)", got, p.cells[Exposed][0])
	}
	if got := p.count(Exposed, 0); got != 8 {
		t.Fatalf("compartment count = %d, want 8", got)
	}
}

func TestSnapshotIsFrozen(t *testing.T) {
	classes := buildClasses(testTiers()[:1])
	disease := &config.Disease{}
	p := newProvinceState(config.Province{ID: "PV_1", Population: 0}, disease, classes)
	p.enter(Susceptible, 0, 42)

	frozen := p.snapshot()
	p.cells[Susceptible][0][0] = 0
	if frozen[Susceptible][0][0] != 42 {
		t.Fatalf("snapshot shares memory with live state")
	}
}

func TestParseCompartment(t *testing.T) {
	for c := Susceptible; c < numCompartments; c++ {
		parsed, err := parseCompartment(c.String())
		if err != nil {
			t.Fatalf("parseCompartment(%s) error: %v", c, err)
		}
		if parsed != c {
			t.Fatalf("parseCompartment(%s) = %v", c, parsed)
		}
	}
	if _, err := parseCompartment("Z"); err == nil {
		t.Fatalf("expected error for unknown compartment")
	}
}
