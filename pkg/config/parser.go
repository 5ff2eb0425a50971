package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DateLayout is the calendar format used for StartDate.
const DateLayout = "2006-01-02"

// defaultStartDate keeps runs reproducible when no anchor date is given.
const defaultStartDate = "2020-01-06"

// movableAllowed lists compartments that may ever be configured as mobile.
// Hospitalized (J3) and ICU (J4) patients never travel.
var movableAllowed = map[string]bool{"S": true, "E": true, "I": true, "R": true}

// LoadConfig loads and parses the parameter bundle file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyDefaults fills the optional fields a minimal bundle may omit
func applyDefaults(config *Config) {
	if config.StartDate == "" {
		config.StartDate = defaultStartDate
	}
	if config.OverflowPolicy == "" {
		config.OverflowPolicy = OverflowBlock
	}
	if len(config.Behavior.PrudenceTiers) == 0 {
		config.Behavior.PrudenceTiers = []PrudenceTier{
			{Name: "baseline", Fraction: 1, ExposureDiscount: 1},
		}
	}
	if config.Behavior.FStar == 0 {
		config.Behavior.FStar = 0.01
	}
	if len(config.Mobility.MovableCompartments) == 0 {
		config.Mobility.MovableCompartments = []string{"S", "I"}
	}
}

// validateConfig validates the parameter bundle before any simulation day
// runs. A bundle that fails here never reaches the engine.
func validateConfig(config *Config) error {
	if config.MaxDays <= 0 {
		return fmt.Errorf("maxDays must be greater than 0")
	}

	if _, err := time.Parse(DateLayout, config.StartDate); err != nil {
		return fmt.Errorf("startDate %q is not a valid %s date: %w", config.StartDate, DateLayout, err)
	}

	if config.OverflowPolicy != OverflowBlock && config.OverflowPolicy != OverflowDegrade {
		return fmt.Errorf("overflowPolicy must be either %q or %q", OverflowBlock, OverflowDegrade)
	}

	if err := validateProbability("untreatedFatality", config.UntreatedFatality); err != nil {
		return err
	}

	if err := validateDisease(&config.Disease); err != nil {
		return err
	}

	if err := validateBehavior(&config.Behavior); err != nil {
		return err
	}

	if len(config.Provinces) == 0 {
		return fmt.Errorf("at least one province must be defined")
	}

	known := map[string]bool{}
	for i, prov := range config.Provinces {
		if prov.ID == "" {
			return fmt.Errorf("province %d: id is required", i)
		}
		if known[prov.ID] {
			return fmt.Errorf("province %s: duplicate id", prov.ID)
		}
		known[prov.ID] = true

		if prov.Population < 0 {
			return fmt.Errorf("province %s: population must not be negative", prov.ID)
		}
		if prov.HospitalBeds < 0 || prov.ICUBeds < 0 {
			return fmt.Errorf("province %s: capacities must not be negative", prov.ID)
		}
		if prov.InitialInfectious < 0 || prov.InitialInfectious > prov.Population {
			return fmt.Errorf("province %s: initialInfectious must be between 0 and the population", prov.ID)
		}
	}

	if err := validateMobility(&config.Mobility, known); err != nil {
		return err
	}

	cronParser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	for _, campaign := range config.Campaigns {
		if campaign.Name == "" {
			return fmt.Errorf("campaign: name is required")
		}
		if _, err := cronParser.Parse(campaign.Schedule); err != nil {
			return fmt.Errorf("campaign %s: invalid cronSchedule: %w", campaign.Name, err)
		}
		if err := validateProbability(fmt.Sprintf("campaign %s: coverage", campaign.Name), campaign.Coverage); err != nil {
			return err
		}
	}

	return nil
}

func validateDisease(d *Disease) error {
	probs := map[string]float64{
		"disease.exposureRate":        d.ExposureRate,
		"disease.incubationRate":      d.IncubationRate,
		"disease.hospitalizationRate": d.HospitalizationRate,
		"disease.severeRate":          d.SevereRate,
		"disease.recoveryRate":        d.RecoveryRate,
		"disease.dischargeRate":       d.DischargeRate,
		"disease.worseningRate":       d.WorseningRate,
		"disease.hospitalFatality":    d.HospitalFatality,
		"disease.icuDischargeRate":    d.ICUDischargeRate,
		"disease.icuFatality":         d.ICUFatality,
		"disease.waningRate":          d.WaningRate,
	}
	for name, p := range probs {
		// ExposureRate is a contact rate, not a probability, but still
		// must be non-negative.
		if name == "disease.exposureRate" {
			if p < 0 {
				return fmt.Errorf("%s must not be negative", name)
			}
			continue
		}
		if err := validateProbability(name, p); err != nil {
			return err
		}
	}

	if d.IncubationMinDays < 0 {
		return fmt.Errorf("disease.incubationMinDays must not be negative")
	}
	if d.HospitalMinStayDays < 0 {
		return fmt.Errorf("disease.hospitalMinStayDays must not be negative")
	}
	if d.WaningEnabled && d.WaningRate <= 0 {
		return fmt.Errorf("disease.waningRate must be greater than 0 when waning is enabled")
	}
	return nil
}

func validateBehavior(b *Behavior) error {
	if b.CautionEnabled && b.CautionFactor <= 0 {
		return fmt.Errorf("behavior.cautionFactor must be greater than 0 when caution is enabled")
	}
	if b.FStar <= 0 {
		return fmt.Errorf("behavior.fStar must be greater than 0")
	}

	total := 0.0
	for i, tier := range b.PrudenceTiers {
		if tier.Name == "" {
			return fmt.Errorf("behavior.prudenceTiers[%d]: name is required", i)
		}
		if err := validateProbability(fmt.Sprintf("tier %s: fraction", tier.Name), tier.Fraction); err != nil {
			return err
		}
		if err := validateProbability(fmt.Sprintf("tier %s: exposureDiscount", tier.Name), tier.ExposureDiscount); err != nil {
			return err
		}
		total += tier.Fraction
	}
	if math.Abs(total-1) > 1e-9 {
		return fmt.Errorf("behavior.prudenceTiers fractions must sum to 1, got %g", total)
	}

	for name, p := range map[string]float64{
		"behavior.initialVaccinatedFraction": b.InitialVaccinatedFraction,
		"behavior.vaccineEffectiveness":      b.VaccineEffectiveness,
		"behavior.vaccineSeverityProtection": b.VaccineSeverityProtection,
	} {
		if err := validateProbability(name, p); err != nil {
			return err
		}
	}
	return nil
}

func validateMobility(m *Mobility, known map[string]bool) error {
	for _, comp := range m.MovableCompartments {
		if !movableAllowed[comp] {
			return fmt.Errorf("mobility.movableCompartments: %q is not a movable compartment", comp)
		}
	}

	outgoing := map[string]float64{}
	for i, edge := range m.Edges {
		if !known[edge.From] {
			return fmt.Errorf("mobility edge %d: unknown province %q", i, edge.From)
		}
		if !known[edge.To] {
			return fmt.Errorf("mobility edge %d: unknown province %q", i, edge.To)
		}
		if edge.From == edge.To {
			return fmt.Errorf("mobility edge %d: from and to must differ", i)
		}
		if err := validateProbability(fmt.Sprintf("mobility edge %s->%s: rate", edge.From, edge.To), edge.Rate); err != nil {
			return err
		}
		outgoing[edge.From] += edge.Rate
	}
	for id, total := range outgoing {
		if total > 1 {
			return fmt.Errorf("province %s: outgoing mobility rates sum to %g, must not exceed 1", id, total)
		}
	}
	return nil
}

func validateProbability(name string, p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %g", name, p)
	}
	return nil
}
