package simulation

// EventType defines the type of event in the simulation
type EventType string

const (
	EventTypeAdmissionBlocked  EventType = "admission-blocked"
	EventTypeDegradedAdmission EventType = "degraded-admission"
	EventTypeCampaignExecuted  EventType = "campaign-executed"
	EventTypeEpidemicExtinct   EventType = "epidemic-extinct"
)

// Event represents a notable occurrence on one simulation day
type Event struct {
	Day      int
	Type     EventType
	Province string
	Count    int
	Message  string

	IsWarning bool
}

// Row is one line of the output table: the counts of one province on one
// day. Field order is the contract the external CSV and plotting
// collaborators depend on.
type Row struct {
	Day              int
	ProvinceID       string
	S                int
	E                int
	I                int
	J3               int
	J4               int
	R                int
	CumulativeDeaths int
	HospitalOccupied int
	ICUOccupied      int
}

// Recorder accumulates one row per (day, province), ordered by day and then
// by bundle province order. It buffers in memory only; writing files is the
// caller's business.
type Recorder struct {
	rows []Row
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one province snapshot.
func (r *Recorder) Record(day int, p *provinceState) {
	r.rows = append(r.rows, Row{
		Day:              day,
		ProvinceID:       p.cfg.ID,
		S:                p.compartmentTotal(Susceptible),
		E:                p.compartmentTotal(Exposed),
		I:                p.compartmentTotal(Infectious),
		J3:               p.compartmentTotal(Hospitalized),
		J4:               p.compartmentTotal(Critical),
		R:                p.compartmentTotal(Recovered),
		CumulativeDeaths: p.deaths,
		HospitalOccupied: p.pool.Occupied(WardBed),
		ICUOccupied:      p.pool.Occupied(ICUBed),
	})
}

// Rows returns the recorded table so far. After the run has terminated this
// is the complete, ordered output table.
func (r *Recorder) Rows() []Row {
	return r.rows
}
