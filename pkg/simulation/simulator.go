package simulation

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sherine-k/epidemics/pkg/config"
)

// runState is the driver's lifecycle phase.
type runState int

const (
	stateInitializing runState = iota
	stateRunning
	stateTerminated
)

// Simulator owns the day-by-day loop: it applies the transition rules to
// every province, runs due vaccination campaigns, redistributes mobile
// compartments, records a snapshot and checks termination. All mutable run
// state, including the RNG, lives on this object; one Simulator is one run.
type Simulator struct {
	config  *config.Config
	classes []BehaviorClass

	provinces []*provinceState
	network   *mobilityNetwork
	rules     *ruleSet
	recorder  *Recorder
	events    []Event
	rng       *rand.Rand

	state             runState
	startDate         time.Time
	campaignDays      map[int][]int
	initialPopulation int
	day               int
}

// NewSimulator builds the full run state from a validated parameter bundle.
func NewSimulator(cfg *config.Config) (*Simulator, error) {
	startDate, err := time.Parse(config.DateLayout, cfg.StartDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start date: %w", err)
	}

	s := &Simulator{
		config:    cfg,
		classes:   buildClasses(cfg.Behavior.PrudenceTiers),
		recorder:  NewRecorder(),
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		startDate: startDate,
	}

	provinceIndex := make(map[string]int, len(cfg.Provinces))
	for i, prov := range cfg.Provinces {
		provinceIndex[prov.ID] = i
		state := newProvinceState(prov, &cfg.Disease, s.classes)
		state.seed(s.classes, cfg.Behavior.InitialVaccinatedFraction)
		s.provinces = append(s.provinces, state)
		s.initialPopulation += prov.Population
	}

	s.network, err = newMobilityNetwork(&cfg.Mobility, provinceIndex)
	if err != nil {
		return nil, err
	}

	s.rules = &ruleSet{
		disease:           &cfg.Disease,
		behavior:          &cfg.Behavior,
		policy:            cfg.OverflowPolicy,
		untreatedFatality: cfg.UntreatedFatality,
		classes:           s.classes,
	}

	if err := s.expandCampaigns(); err != nil {
		return nil, err
	}

	return s, nil
}

// expandCampaigns maps every campaign cron schedule onto simulation days by
// walking Next() across the simulated window and converting each firing into
// a day index. Multiple firings on the same day collapse into one.
func (s *Simulator) expandCampaigns() error {
	s.campaignDays = map[int][]int{}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	end := s.startDate.AddDate(0, 0, s.config.MaxDays)
	for i, campaign := range s.config.Campaigns {
		schedule, err := parser.Parse(campaign.Schedule)
		if err != nil {
			return fmt.Errorf("campaign %s: invalid cronSchedule: %w", campaign.Name, err)
		}

		lastDay := 0
		current := s.startDate
		for {
			next := schedule.Next(current)
			if !next.Before(end) {
				break
			}
			day := int(next.Sub(s.startDate).Hours()/24) + 1
			if day != lastDay {
				s.campaignDays[day] = append(s.campaignDays[day], i)
				lastDay = day
			}
			current = next.Add(time.Minute)
		}
	}
	return nil
}

// Run executes the simulation until max days are reached or the epidemic
// burns out. It can be called once per Simulator.
func (s *Simulator) Run() error {
	if s.state != stateInitializing {
		return fmt.Errorf("simulation has already run")
	}
	s.state = stateRunning

	for s.day = 1; s.day <= s.config.MaxDays; s.day++ {
		// Disease progression, province by province. Provinces do not
		// interact until the mobility phase, so bundle order is fixed
		// purely for reproducibility.
		for _, p := range s.provinces {
			outcome, err := s.rules.apply(s.rng, p)
			if err != nil {
				s.state = stateTerminated
				return &InvariantError{Day: s.day, Province: p.cfg.ID, Invariant: err.Error()}
			}
			s.recordOutcome(p, outcome)
		}

		s.runCampaigns(s.day)

		s.network.apply(s.rng, s.provinces)

		for _, p := range s.provinces {
			p.advanceAges()
		}

		if err := s.checkInvariants(s.day); err != nil {
			s.state = stateTerminated
			return err
		}

		for _, p := range s.provinces {
			s.recorder.Record(s.day, p)
		}

		if s.totalActiveInfections() == 0 {
			s.events = append(s.events, Event{
				Day:     s.day,
				Type:    EventTypeEpidemicExtinct,
				Message: fmt.Sprintf("No active infections remain after day %d", s.day),
			})
			break
		}
	}

	s.state = stateTerminated
	return nil
}

// recordOutcome turns one province's rule application into events.
func (s *Simulator) recordOutcome(p *provinceState, outcome dayOutcome) {
	blocked := []struct {
		severity Severity
		count    int
	}{
		{WardBed, outcome.blockedWard},
		{ICUBed, outcome.blockedICU},
	}
	for _, b := range blocked {
		if b.count == 0 {
			continue
		}
		s.events = append(s.events, Event{
			Day:       s.day,
			Type:      EventTypeAdmissionBlocked,
			Province:  p.cfg.ID,
			Count:     b.count,
			Message:   fmt.Sprintf("%d %s admissions blocked in %s", b.count, b.severity, p.cfg.ID),
			IsWarning: true,
		})
	}

	degraded := []struct {
		severity Severity
		count    int
	}{
		{WardBed, outcome.degradedWard},
		{ICUBed, outcome.degradedICU},
	}
	for _, d := range degraded {
		if d.count == 0 {
			continue
		}
		s.events = append(s.events, Event{
			Day:       s.day,
			Type:      EventTypeDegradedAdmission,
			Province:  p.cfg.ID,
			Count:     d.count,
			Message:   fmt.Sprintf("%d %s admissions in %s proceeded without a bed", d.count, d.severity, p.cfg.ID),
			IsWarning: true,
		})
	}
}

// runCampaigns executes the vaccination campaigns scheduled for this day.
// Realized uptake is the configured coverage scaled by the population's
// willingness, which grows with the visible infected fraction.
func (s *Simulator) runCampaigns(day int) {
	for _, idx := range s.campaignDays[day] {
		campaign := s.config.Campaigns[idx]
		total := 0
		for _, p := range s.provinces {
			alive := p.alive()
			if alive == 0 {
				continue
			}
			infected := p.compartmentTotal(Infectious) + p.compartmentTotal(Hospitalized) + p.compartmentTotal(Critical)
			willingness := vaccinationWillingness(float64(infected)/float64(alive), s.config.Behavior.FStar)
			share := clamp01(campaign.Coverage * willingness)

			// Only susceptibles take the vaccine; each prudence
			// tier's unvaccinated class feeds its vaccinated twin.
			for class := 0; class < len(s.classes); class += 2 {
				moved := binomial(s.rng, p.cells[Susceptible][class][0], share)
				p.cells[Susceptible][class][0] -= moved
				p.cells[Susceptible][class+1][0] += moved
				total += moved
			}
		}
		s.events = append(s.events, Event{
			Day:     day,
			Type:    EventTypeCampaignExecuted,
			Count:   total,
			Message: fmt.Sprintf("Campaign %q vaccinated %d susceptible individuals", campaign.Name, total),
		})
	}
}

// checkInvariants verifies the consistency rules that make the output
// trustworthy: non-negative counts, occupancy within capacity, bed
// bookkeeping matching compartment totals and global population
// conservation.
func (s *Simulator) checkInvariants(day int) error {
	aliveTotal := 0
	deathsTotal := 0
	for _, p := range s.provinces {
		for c := Susceptible; c < numCompartments; c++ {
			for class := range p.cells[c] {
				for _, n := range p.cells[c][class] {
					if n < 0 {
						return &InvariantError{
							Day:       day,
							Province:  p.cfg.ID,
							Invariant: fmt.Sprintf("negative count in compartment %s", c),
						}
					}
				}
			}
		}

		if !p.pool.withinBounds() {
			return &InvariantError{Day: day, Province: p.cfg.ID, Invariant: "resource occupancy out of bounds"}
		}
		if p.compartmentTotal(Hospitalized) != p.pool.Occupied(WardBed)+p.pool.Unbedded(WardBed) {
			return &InvariantError{Day: day, Province: p.cfg.ID, Invariant: "hospital bed bookkeeping does not match J3"}
		}
		if p.compartmentTotal(Critical) != p.pool.Occupied(ICUBed)+p.pool.Unbedded(ICUBed) {
			return &InvariantError{Day: day, Province: p.cfg.ID, Invariant: "ICU bed bookkeeping does not match J4"}
		}

		aliveTotal += p.alive()
		deathsTotal += p.deaths
	}

	if aliveTotal+deathsTotal != s.initialPopulation {
		return &InvariantError{
			Day:       day,
			Invariant: fmt.Sprintf("population not conserved: %d alive + %d deceased != %d initial", aliveTotal, deathsTotal, s.initialPopulation),
		}
	}
	return nil
}

func (s *Simulator) totalActiveInfections() int {
	total := 0
	for _, p := range s.provinces {
		total += p.activeInfections()
	}
	return total
}

// Rows returns the output table recorded so far. After Run has returned the
// table is complete and ordered by day, then by bundle province order.
func (s *Simulator) Rows() []Row {
	return s.recorder.Rows()
}

// Events returns all events
func (s *Simulator) Events() []Event {
	return s.events
}

// Warnings returns all warning events
func (s *Simulator) Warnings() []Event {
	warnings := []Event{}
	for _, event := range s.events {
		if event.IsWarning {
			warnings = append(warnings, event)
		}
	}
	return warnings
}

// Days returns how many days the run simulated.
func (s *Simulator) Days() int {
	rows := s.recorder.Rows()
	if len(rows) == 0 {
		return 0
	}
	return rows[len(rows)-1].Day
}
