package simulation

import (
	"fmt"

	"github.com/sherine-k/epidemics/pkg/config"
)

// Compartment is one SEJIRS disease state. The deceased outcome is tracked
// as a cumulative counter per province, not as a compartment.
type Compartment int

const (
	Susceptible Compartment = iota
	Exposed
	Infectious
	Hospitalized // J3, moderately symptomatic, isolated in a ward
	Critical     // J4, severely symptomatic, ICU
	Recovered

	numCompartments
)

// deceased is a pseudo-destination used only for ordering transition draws.
const deceased = numCompartments

func (c Compartment) String() string {
	switch c {
	case Susceptible:
		return "S"
	case Exposed:
		return "E"
	case Infectious:
		return "I"
	case Hospitalized:
		return "J3"
	case Critical:
		return "J4"
	case Recovered:
		return "R"
	}
	return fmt.Sprintf("Compartment(%d)", int(c))
}

// parseCompartment maps the names accepted in the parameter bundle.
func parseCompartment(name string) (Compartment, error) {
	for c := Susceptible; c < numCompartments; c++ {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown compartment %q", name)
}

// BehaviorClass is one behavioral slice of a province's population: a
// prudence tier crossed with vaccination status. Classes are fixed at
// initialization; only vaccination campaigns move individuals between the
// unvaccinated and vaccinated halves of a tier.
type BehaviorClass struct {
	Tier       config.PrudenceTier
	Vaccinated bool
}

func (b BehaviorClass) String() string {
	if b.Vaccinated {
		return b.Tier.Name + "/vaccinated"
	}
	return b.Tier.Name + "/unvaccinated"
}

// buildClasses expands the configured prudence tiers into the full class
// list. For every tier the unvaccinated class precedes the vaccinated one,
// so vaccinatedIndex(i) = i+1 for even i.
func buildClasses(tiers []config.PrudenceTier) []BehaviorClass {
	classes := make([]BehaviorClass, 0, len(tiers)*2)
	for _, tier := range tiers {
		classes = append(classes,
			BehaviorClass{Tier: tier, Vaccinated: false},
			BehaviorClass{Tier: tier, Vaccinated: true},
		)
	}
	return classes
}
