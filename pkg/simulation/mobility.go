package simulation

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/sherine-k/epidemics/pkg/config"
)

// mobilityNetwork is the directed weighted graph that redistributes mobile
// compartments between provinces once per day, after disease transitions.
type mobilityNetwork struct {
	movable []Compartment
	out     [][]mobilityEdge // indexed by origin province
}

type mobilityEdge struct {
	to   int
	rate float64
}

// transfer is one computed relocation, applied only after every departure
// has been drawn from the pre-mobility state.
type transfer struct {
	from, to int
	comp     Compartment
	class    int
	age      int
	count    int
}

func newMobilityNetwork(cfg *config.Mobility, provinceIndex map[string]int) (*mobilityNetwork, error) {
	network := &mobilityNetwork{
		out: make([][]mobilityEdge, len(provinceIndex)),
	}
	for _, name := range cfg.MovableCompartments {
		comp, err := parseCompartment(name)
		if err != nil {
			return nil, fmt.Errorf("mobility: %w", err)
		}
		network.movable = append(network.movable, comp)
	}
	sort.Slice(network.movable, func(i, j int) bool { return network.movable[i] < network.movable[j] })

	for _, e := range cfg.Edges {
		from := provinceIndex[e.From]
		network.out[from] = append(network.out[from], mobilityEdge{to: provinceIndex[e.To], rate: e.Rate})
	}
	return network, nil
}

// apply moves a stochastic share of every mobile cohort along the outgoing
// edges. Departures are drawn per (class, dwell) cell and split across
// destinations by edge weight with largest-remainder rounding, so the total
// population is conserved exactly.
func (m *mobilityNetwork) apply(rng *rand.Rand, provinces []*provinceState) {
	var transfers []transfer

	for from, p := range provinces {
		edges := m.out[from]
		if len(edges) == 0 {
			continue
		}
		totalRate := 0.0
		weights := make([]float64, len(edges))
		for i, e := range edges {
			totalRate += e.rate
			weights[i] = e.rate
		}

		for _, comp := range m.movable {
			for class := range p.cells[comp] {
				for age, count := range p.cells[comp][class] {
					departing := binomial(rng, count, clamp01(totalRate))
					if departing == 0 {
						continue
					}
					shares := apportion(departing, weights)
					for i, share := range shares {
						if share == 0 {
							continue
						}
						transfers = append(transfers, transfer{
							from:  from,
							to:    edges[i].to,
							comp:  comp,
							class: class,
							age:   age,
							count: share,
						})
					}
				}
			}
		}
	}

	for _, t := range transfers {
		provinces[t.from].cells[t.comp][t.class][t.age] -= t.count
		provinces[t.to].cells[t.comp][t.class][t.age] += t.count
	}
}
