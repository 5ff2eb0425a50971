package simulation

import "math/rand"

// cautionFactor models population-level behavioral adaptation: exposure
// shrinks as the visible infected share of a province grows. M is the
// number of currently infected individuals, N the province population and a
// the configured sensitivity.
func cautionFactor(m, n int, a float64) float64 {
	if n == 0 {
		return 0
	}
	return 1 / (1 + a*float64(m)/float64(n))
}

// vaccinationWillingness scales a campaign's target coverage by how alarmed
// the population is. The response is sigmoid in the infected fraction f
// relative to the reference fraction fStar and ranges from 1 to 2.
func vaccinationWillingness(f, fStar float64) float64 {
	x := f / fStar
	return 1 + (x*x)/(1+x*x)
}

// binomial draws the number of successes among n independent trials with
// probability p. Draw order is fixed by the caller, so a fixed seed yields a
// fixed trajectory.
func binomial(rng *rand.Rand, n int, p float64) int {
	if n <= 0 || p <= 0 {
		return 0
	}
	if p >= 1 {
		return n
	}
	successes := 0
	for i := 0; i < n; i++ {
		if rng.Float64() < p {
			successes++
		}
	}
	return successes
}

// clamp01 keeps a probability within [0,1].
func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
