package chart

import (
	"fmt"
	"strings"

	"github.com/sherine-k/epidemics/pkg/simulation"
)

const (
	chartWidth  = 80
	chartHeight = 20
)

// Generator renders the finished output table and event log as ASCII for
// the terminal. File CSV export and graphical plots are handled by external
// tooling fed from the same rows.
type Generator struct {
	width  int
	height int
}

// NewGenerator creates a new chart generator
func NewGenerator() *Generator {
	return &Generator{
		width:  chartWidth,
		height: chartHeight,
	}
}

// dayTotals is one day of the table aggregated across provinces.
type dayTotals struct {
	active       int // E+I+J3+J4
	hospitalized int // J3+J4
	deaths       int
}

func aggregateByDay(rows []simulation.Row) []dayTotals {
	if len(rows) == 0 {
		return nil
	}
	lastDay := rows[len(rows)-1].Day
	totals := make([]dayTotals, lastDay)
	for _, row := range rows {
		t := &totals[row.Day-1]
		t.active += row.E + row.I + row.J3 + row.J4
		t.hospitalized += row.J3 + row.J4
		t.deaths += row.CumulativeDeaths
	}
	return totals
}

// GenerateEpidemicChart renders active infections over the run, with the
// hospitalized share drawn inside the epidemic curve.
func (g *Generator) GenerateEpidemicChart(rows []simulation.Row) string {
	totals := aggregateByDay(rows)
	if len(totals) == 0 {
		return "No data to display"
	}

	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Active Infections Over Time\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	peak := 0
	for _, t := range totals {
		if t.active > peak {
			peak = t.active
		}
	}
	if peak == 0 {
		sb.WriteString("No active infections recorded.\n")
		return sb.String()
	}

	plotWidth := g.width - 8
	if plotWidth > len(totals) {
		plotWidth = len(totals)
	}

	// Scale counts onto chart rows, top to bottom.
	for row := g.height; row >= 1; row-- {
		threshold := float64(row) / float64(g.height) * float64(peak)
		sb.WriteString(fmt.Sprintf("%6.0f |", threshold))

		for x := 0; x < plotWidth; x++ {
			dayIndex := int(float64(x) / float64(plotWidth) * float64(len(totals)-1))
			if dayIndex >= len(totals) {
				dayIndex = len(totals) - 1
			}
			t := totals[dayIndex]

			switch {
			case float64(t.hospitalized) >= threshold:
				sb.WriteString("▓")
			case float64(t.active) >= threshold:
				sb.WriteString("█")
			default:
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}

	// X-axis
	sb.WriteString("       +")
	sb.WriteString(strings.Repeat("-", plotWidth))
	sb.WriteString("\n")

	// Day markers along the axis
	labelLine := make([]rune, plotWidth)
	for i := range labelLine {
		labelLine[i] = ' '
	}
	step := len(totals) / 8
	if step == 0 {
		step = 1
	}
	for day := 1; day <= len(totals); day += step {
		position := int(float64(day-1) / float64(len(totals)) * float64(plotWidth))
		marker := fmt.Sprintf("d%d", day)
		if position+len(marker) <= plotWidth {
			for i, ch := range marker {
				labelLine[position+i] = ch
			}
		}
	}
	sb.WriteString("        ")
	sb.WriteString(string(labelLine))
	sb.WriteString("\n")

	sb.WriteString("\n")
	sb.WriteString("Legend:\n")
	sb.WriteString("    █ - Active infections (E+I+J3+J4)\n")
	sb.WriteString("    ▓ - Hospitalized share (J3+J4)\n")
	sb.WriteString(fmt.Sprintf("Peak active infections: %d\n", peak))
	sb.WriteString("\n")

	return sb.String()
}

// GenerateFinalTable renders the last recorded day of every province.
func (g *Generator) GenerateFinalTable(rows []simulation.Row) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Final Day Per Province\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	if len(rows) == 0 {
		sb.WriteString("No data to display\n")
		return sb.String()
	}

	lastDay := rows[len(rows)-1].Day
	sb.WriteString(fmt.Sprintf("%-12s %8s %8s %8s %6s %6s %8s %7s %6s %5s\n",
		"Province", "S", "E", "I", "J3", "J4", "R", "Deaths", "Hosp", "ICU"))
	for _, row := range rows {
		if row.Day != lastDay {
			continue
		}
		sb.WriteString(fmt.Sprintf("%-12s %8d %8d %8d %6d %6d %8d %7d %6d %5d\n",
			row.ProvinceID, row.S, row.E, row.I, row.J3, row.J4, row.R,
			row.CumulativeDeaths, row.HospitalOccupied, row.ICUOccupied))
	}
	sb.WriteString("\n")

	return sb.String()
}

// GenerateEventSummary generates a summary of events
func (g *Generator) GenerateEventSummary(events []simulation.Event) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Event Summary\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	// Group events by type
	eventsByType := make(map[simulation.EventType]int)
	for _, event := range events {
		eventsByType[event.Type]++
	}

	sb.WriteString(fmt.Sprintf("Total Events: %d\n", len(events)))
	sb.WriteString(fmt.Sprintf("  - Admissions Blocked: %d\n", eventsByType[simulation.EventTypeAdmissionBlocked]))
	sb.WriteString(fmt.Sprintf("  - Degraded Admissions: %d\n", eventsByType[simulation.EventTypeDegradedAdmission]))
	sb.WriteString(fmt.Sprintf("  - Campaigns Executed: %d\n", eventsByType[simulation.EventTypeCampaignExecuted]))
	sb.WriteString(fmt.Sprintf("  - Epidemic Extinct: %d\n", eventsByType[simulation.EventTypeEpidemicExtinct]))
	sb.WriteString("\n")

	return sb.String()
}

// GenerateWarnings generates a list of warnings
func (g *Generator) GenerateWarnings(warnings []simulation.Event) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Warnings\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	if len(warnings) == 0 {
		sb.WriteString("No warnings!\n")
		return sb.String()
	}

	for _, warning := range warnings {
		sb.WriteString(fmt.Sprintf("[day %3d] %s\n", warning.Day, warning.Message))
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total Warnings: %d\n", len(warnings)))
	sb.WriteString("\n")

	return sb.String()
}

// GenerateDetailedTimeline lists events in order, up to limit entries.
func (g *Generator) GenerateDetailedTimeline(events []simulation.Event, limit int) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Event Timeline\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	if len(events) == 0 {
		sb.WriteString("No events recorded\n")
		return sb.String()
	}

	shown := 0
	for _, event := range events {
		if limit > 0 && shown >= limit {
			sb.WriteString(fmt.Sprintf("... and %d more events\n", len(events)-shown))
			break
		}
		sb.WriteString(fmt.Sprintf("[day %3d] %-20s %s\n", event.Day, event.Type, event.Message))
		shown++
	}
	sb.WriteString("\n")

	return sb.String()
}
