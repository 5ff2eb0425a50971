package config

// Config represents the entire parameter bundle for one simulation run
type Config struct {
	Name string `yaml:"name"`

	// StartDate anchors simulation day 1 to a calendar date so that
	// campaign cron schedules can be expanded in simulated time.
	StartDate string `yaml:"startDate"`

	MaxDays int   `yaml:"maxDays"`
	Seed    int64 `yaml:"seed"`

	// OverflowPolicy decides what happens to hospital/ICU admissions that
	// exceed capacity: "block" keeps patients in their prior compartment,
	// "degrade" admits them without a bed at an extra fatality risk.
	OverflowPolicy    OverflowPolicy `yaml:"overflowPolicy"`
	UntreatedFatality float64        `yaml:"untreatedFatality,omitempty"`

	Disease   Disease    `yaml:"disease"`
	Behavior  Behavior   `yaml:"behavior"`
	Provinces []Province `yaml:"provinces"`
	Mobility  Mobility   `yaml:"mobility"`
	Campaigns []Campaign `yaml:"campaigns,omitempty"`
}

// OverflowPolicy defines how admissions beyond capacity are resolved
type OverflowPolicy string

const (
	OverflowBlock   OverflowPolicy = "block"
	OverflowDegrade OverflowPolicy = "degrade"
)

// Disease holds the daily transition probabilities of the SEJIRS progression
type Disease struct {
	// ExposureRate is the effective daily contact rate used by the
	// exposure probability 1-(1-beta/N)^I.
	ExposureRate float64 `yaml:"exposureRate"`

	// Exposed individuals become infectious no earlier than
	// IncubationMinDays, then with IncubationRate per day.
	IncubationMinDays int     `yaml:"incubationMinDays"`
	IncubationRate    float64 `yaml:"incubationRate"`

	// Daily probabilities for infectious individuals to develop moderate
	// symptoms (hospital ward), severe symptoms (ICU), or recover.
	HospitalizationRate float64 `yaml:"hospitalizationRate"`
	SevereRate          float64 `yaml:"severeRate"`
	RecoveryRate        float64 `yaml:"recoveryRate"`

	// Hospitalized patients are not discharged before HospitalMinStayDays.
	HospitalMinStayDays int     `yaml:"hospitalMinStayDays"`
	DischargeRate       float64 `yaml:"dischargeRate"`
	WorseningRate       float64 `yaml:"worseningRate"`
	HospitalFatality    float64 `yaml:"hospitalFatality"`
	ICUDischargeRate    float64 `yaml:"icuDischargeRate"`
	ICUFatality         float64 `yaml:"icuFatality"`

	// Waning immunity: recovered individuals return to susceptible with
	// WaningRate per day when enabled, otherwise R is terminal.
	WaningEnabled bool    `yaml:"waningEnabled"`
	WaningRate    float64 `yaml:"waningRate,omitempty"`
}

// Behavior holds the behavioral coefficients applied on top of the
// biological rates
type Behavior struct {
	// CautionEnabled scales exposure by 1/(1+a*M/N) where M is the number
	// of currently infected individuals in the province.
	CautionEnabled bool    `yaml:"cautionEnabled"`
	CautionFactor  float64 `yaml:"cautionFactor,omitempty"`

	// PrudenceTiers partition the population by how much individual
	// caution discounts exposure. Fractions must sum to 1.
	PrudenceTiers []PrudenceTier `yaml:"prudenceTiers"`

	// Vaccination protection: exposure is scaled by 1-effectiveness,
	// symptom severity by 1-severityProtection.
	InitialVaccinatedFraction float64 `yaml:"initialVaccinatedFraction"`
	VaccineEffectiveness      float64 `yaml:"vaccineEffectiveness"`
	VaccineSeverityProtection float64 `yaml:"vaccineSeverityProtection"`

	// FStar is the reference infected fraction used by campaign
	// willingness. Defaults to 0.01.
	FStar float64 `yaml:"fStar,omitempty"`
}

// PrudenceTier describes one behavioral slice of the population
type PrudenceTier struct {
	Name             string  `yaml:"name"`
	Fraction         float64 `yaml:"fraction"`
	ExposureDiscount float64 `yaml:"exposureDiscount"`
}

// Province describes one geographic population unit
type Province struct {
	ID                string `yaml:"id"`
	Population        int    `yaml:"population"`
	HospitalBeds      int    `yaml:"hospitalBeds"`
	ICUBeds           int    `yaml:"icuBeds"`
	InitialInfectious int    `yaml:"initialInfectious"`
}

// Mobility describes the inter-province movement graph
type Mobility struct {
	// MovableCompartments lists compartments allowed to travel.
	// Defaults to S and I when empty.
	MovableCompartments []string `yaml:"movableCompartments,omitempty"`

	Edges []Edge `yaml:"edges,omitempty"`
}

// Edge is a directed mobility link with a daily movement rate
type Edge struct {
	From string  `yaml:"from"`
	To   string  `yaml:"to"`
	Rate float64 `yaml:"rate"`
}

// Campaign schedules vaccination uptake during the run. The cron schedule
// is evaluated against simulated dates derived from StartDate.
type Campaign struct {
	Name     string  `yaml:"name"`
	Schedule string  `yaml:"cronSchedule"`
	Coverage float64 `yaml:"coverage"`
}
