package cmd

import (
	"fmt"

	"github.com/sherine-k/epidemics/pkg/chart"
	"github.com/sherine-k/epidemics/pkg/config"
	"github.com/sherine-k/epidemics/pkg/simulation"
	"github.com/spf13/cobra"
)

var (
	configFile       string
	showTimeline     bool
	timelineLimit    int
	showEventSummary bool
)

var rootCmd = &cobra.Command{
	Use:   "epidemics",
	Short: "Province Epidemic Simulator",
	Long: `A CLI tool that simulates the spread of an infectious disease across
a population partitioned into provinces.

This tool reads a parameter bundle describing provinces, hospital and ICU
capacities, disease progression rates, behavioral coefficients and a mobility
graph, runs the day-by-day simulation, and renders the epidemic curve along
with warnings about overwhelmed healthcare capacity.`,
	RunE: runSimulation,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "config.yaml", "Path to the parameter bundle file")
	rootCmd.Flags().BoolVarP(&showTimeline, "timeline", "t", false, "Show detailed timeline of events")
	rootCmd.Flags().IntVarP(&timelineLimit, "timeline-limit", "l", 50, "Limit number of timeline events to display")
	rootCmd.Flags().BoolVarP(&showEventSummary, "summary", "s", true, "Show event summary")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	totalPopulation := 0
	for _, prov := range cfg.Provinces {
		totalPopulation += prov.Population
	}

	fmt.Printf("Loaded parameter bundle from %s\n", configFile)
	fmt.Printf("  - Provinces: %d\n", len(cfg.Provinces))
	fmt.Printf("  - Total Population: %d\n", totalPopulation)
	fmt.Printf("  - Max Days: %d\n", cfg.MaxDays)
	fmt.Printf("  - Seed: %d\n", cfg.Seed)
	fmt.Printf("  - Overflow Policy: %s\n\n", cfg.OverflowPolicy)

	// Create and run simulator
	sim, err := simulation.NewSimulator(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize simulation: %w", err)
	}
	if err := sim.Run(); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	fmt.Printf("Simulated %d days\n", sim.Days())

	// Generate and display charts
	chartGen := chart.NewGenerator()

	rows := sim.Rows()
	events := sim.Events()
	warnings := sim.Warnings()

	// Display epidemic curve and the final per-province counts
	fmt.Println(chartGen.GenerateEpidemicChart(rows))
	fmt.Println(chartGen.GenerateFinalTable(rows))

	// Display event summary
	if showEventSummary {
		fmt.Println(chartGen.GenerateEventSummary(events))
	}

	// Display warnings
	fmt.Println(chartGen.GenerateWarnings(warnings))

	// Display detailed timeline if requested
	if showTimeline {
		fmt.Println(chartGen.GenerateDetailedTimeline(events, timelineLimit))
	}

	return nil
}
