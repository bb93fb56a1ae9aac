package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/parklot/parklot-sim/sim"
	"github.com/parklot/parklot-sim/sim/paired"
	"github.com/parklot/parklot-sim/sim/workload"
)

var (
	configPath  string  // YAML run config (engine + schedule)
	seed        int64   // Seed for schedule generation
	horizon     float64 // Simulation window in seconds
	tick        float64 // Clock step between advances, seconds
	logLevel    string  // Log verbosity level
	resultsPath string  // JSON results output

	// Facility and motion
	numSpaces          int     // Spaces in the row
	walkSpeed          float64 // Baseline walking speed
	accessibleSlowdown float64 // Accessible visitors walk this many times slower
	lotSpeed           float64 // Vehicle speed in the lot
	fullLotDelay       float64 // Seconds a turned-away vehicle circles before retrying
	policyName         string  // Space assignment policy
	traceLevel         string  // Decision trace level

	// Schedule generation
	numVehicles    int     // Number of vehicles (0 = fill the horizon)
	rate           float64 // Vehicles per hour
	arrivalProcess string  // Inter-arrival process
	arrivalCV      float64 // Coefficient of variation for gamma/weibull
	accessibleProb float64 // Probability a visitor is accessible
	shopMin        float64 // Minimum shop duration, seconds
	shopMax        float64 // Maximum shop duration, seconds
	scheduleFile   string  // CSV schedule to replay

	// schedule command outputs
	scheduleOut       string
	scheduleHeaderOut string
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "parklot-sim",
	Short: "Agent-based simulation of parking-lot walking and driving costs",
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// resolveRunConfig loads --config (if any) over the defaults, then applies
// every flag the user set explicitly.
func resolveRunConfig(cmd *cobra.Command) RunConfig {
	rc := DefaultRunConfig()
	if configPath != "" {
		loaded, err := LoadRunConfig(configPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		rc = loaded
	}
	applyFlagOverrides(cmd, &rc)
	if err := rc.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	if cmd.Flags().Lookup("tick") != nil {
		if err := validateTick(tick); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
	}
	return rc
}

// validateTick rejects clock steps the run loops cannot advance with.
func validateTick(tick float64) error {
	if math.IsNaN(tick) || math.IsInf(tick, 0) || tick <= 0 {
		return fmt.Errorf("--tick must be a finite positive number of seconds, got %v", tick)
	}
	return nil
}

// applyFlagOverrides copies flag values into rc only for flags set on the
// command line, so file values survive unset flags.
func applyFlagOverrides(cmd *cobra.Command, rc *RunConfig) {
	changed := cmd.Flags().Changed
	if changed("seed") {
		rc.Schedule.Seed = seed
	}
	if changed("horizon") {
		rc.Engine.TotalSimulationTime = horizon
		rc.Schedule.Horizon = horizon
	}
	if changed("num-spaces") {
		rc.Engine.Layout.NumSpaces = numSpaces
	}
	if changed("walk-speed") {
		rc.Engine.Motion.WalkSpeed = walkSpeed
	}
	if changed("accessible-slowdown") {
		rc.Engine.Motion.AccessibleSlowdown = accessibleSlowdown
	}
	if changed("lot-speed") {
		rc.Engine.Motion.LotSpeed = lotSpeed
	}
	if changed("full-lot-delay") {
		rc.Engine.Retry.FullLotDelay = fullLotDelay
	}
	if changed("policy") {
		rc.Engine.AssignmentPolicy = policyName
	}
	if changed("trace-level") {
		rc.Engine.TraceLevel = traceLevel
	}
	if changed("num-vehicles") {
		rc.Schedule.NumVehicles = numVehicles
	}
	if changed("rate") {
		rc.Schedule.Rate = rate
	}
	if changed("arrival-process") {
		rc.Schedule.Arrival.Process = arrivalProcess
	}
	if changed("arrival-cv") {
		cv := arrivalCV
		rc.Schedule.Arrival.CV = &cv
	}
	if changed("accessible-prob") {
		p := accessibleProb
		rc.Schedule.AccessibleProbability = &p
	}
	if changed("shop-min") || changed("shop-max") {
		params := map[string]float64{"min": workload.DefaultShopMin, "max": workload.DefaultShopMax}
		if rc.Schedule.ShopDuration.Type == "uniform" {
			for k, v := range rc.Schedule.ShopDuration.Params {
				params[k] = v
			}
		}
		if changed("shop-min") {
			params["min"] = shopMin
		}
		if changed("shop-max") {
			params["max"] = shopMax
		}
		rc.Schedule.ShopDuration = workload.DistSpec{Type: "uniform", Params: params}
	}
	if changed("schedule-file") {
		rc.ScheduleFile = scheduleFile
	}
}

func writeJSON(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logrus.Fatalf("marshaling results: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		logrus.Fatalf("writing results to %s: %v", path, err)
	}
	logrus.Infof("results written to %s", path)
}

// runCmd simulates one facility with the accessible space
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the parking-lot simulation for one facility",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		rc := resolveRunConfig(cmd)
		source, err := rc.ScheduleSource()
		if err != nil {
			logrus.Fatalf("Unable to build schedule: %v", err)
		}
		facility, err := sim.NewFacility(rc.Engine.Layout)
		if err != nil {
			logrus.Fatalf("Invalid facility: %v", err)
		}
		s, err := sim.NewSimulator(rc.Engine, facility, source)
		if err != nil {
			logrus.Fatalf("Unable to create simulator: %v", err)
		}
		s.SetCosmeticSeed(rc.Schedule.Seed)
		logrus.Infof("Starting simulation: %d spaces, window=%.0fs, tick=%.2fs, policy=%q",
			len(facility.Spaces), rc.Engine.TotalSimulationTime, tick, rc.Engine.AssignmentPolicy)

		snap := s.Run(rc.Engine.TotalSimulationTime, tick)
		snap.Summary.Print()

		if resultsPath != "" {
			if err := s.SaveResults(resultsPath); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
		logrus.Info("Simulation complete.")
	},
}

// compareCmd runs the paired with/without accessible-space comparison
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a facility with and without the accessible space over one schedule",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		rc := resolveRunConfig(cmd)
		source, err := rc.ScheduleSource()
		if err != nil {
			logrus.Fatalf("Unable to build schedule: %v", err)
		}
		run, err := paired.NewPairedRun(rc.Engine, source)
		if err != nil {
			logrus.Fatalf("Unable to create paired run: %v", err)
		}
		run.SetCosmeticSeed(rc.Schedule.Seed)
		logrus.Infof("Starting paired comparison: %d arrivals, window=%.0fs", len(run.Schedule()), rc.Engine.TotalSimulationTime)

		cmp := run.Run(rc.Engine.TotalSimulationTime, tick)
		cmp.Print()

		if resultsPath != "" {
			writeJSON(resultsPath, cmp)
		}
		logrus.Info("Comparison complete.")
	},
}

// scheduleCmd generates a schedule and exports it for replay
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate an arrival schedule and export it as CSV",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		rc := resolveRunConfig(cmd)
		arrivals, err := workload.GenerateSchedule(&rc.Schedule)
		if err != nil {
			logrus.Fatalf("Unable to generate schedule: %v", err)
		}
		header := workload.HeaderFor(&rc.Schedule, arrivals)
		if scheduleOut == "" {
			if err := workload.WriteScheduleCSV(os.Stdout, arrivals); err != nil {
				logrus.Fatalf("%v", err)
			}
			return
		}
		if err := workload.ExportSchedule(&header, arrivals, scheduleHeaderOut, scheduleOut); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("wrote %d arrivals to %s", len(arrivals), scheduleOut)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func registerScheduleFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configPath, "config", "", "YAML run config (engine and schedule sections)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for schedule generation")
	cmd.Flags().Float64Var(&horizon, "horizon", 3600, "Simulation window and arrival horizon (seconds)")
	cmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	cmd.Flags().IntVar(&numVehicles, "num-vehicles", 0, "Number of vehicles (0 = fill the horizon)")
	cmd.Flags().Float64Var(&rate, "rate", 120, "Mean arrivals per hour")
	cmd.Flags().StringVar(&arrivalProcess, "arrival-process", "poisson", "Inter-arrival process (poisson, gamma, weibull, constant, uniform)")
	cmd.Flags().Float64Var(&arrivalCV, "arrival-cv", 1.0, "Coefficient of variation for gamma/weibull arrivals")
	cmd.Flags().Float64Var(&accessibleProb, "accessible-prob", workload.DefaultAccessibleProbability, "Probability a visitor is accessible")
	cmd.Flags().Float64Var(&shopMin, "shop-min", workload.DefaultShopMin, "Minimum shop duration (seconds)")
	cmd.Flags().Float64Var(&shopMax, "shop-max", workload.DefaultShopMax, "Maximum shop duration (seconds)")
}

func registerEngineFlags(cmd *cobra.Command) {
	defaults := sim.DefaultConfig()
	cmd.Flags().Float64Var(&tick, "tick", 1.0, "Clock step between advances (seconds)")
	cmd.Flags().StringVar(&resultsPath, "results-path", "", "Write results as JSON to this path")
	cmd.Flags().StringVar(&scheduleFile, "schedule-file", "", "Replay a CSV schedule instead of generating one")
	cmd.Flags().IntVar(&numSpaces, "num-spaces", defaults.Layout.NumSpaces, "Parking spaces in the row")
	cmd.Flags().Float64Var(&walkSpeed, "walk-speed", defaults.Motion.WalkSpeed, "Baseline walking speed (units/s)")
	cmd.Flags().Float64Var(&accessibleSlowdown, "accessible-slowdown", defaults.Motion.AccessibleSlowdown, "Accessible visitors walk this many times slower")
	cmd.Flags().Float64Var(&lotSpeed, "lot-speed", defaults.Motion.LotSpeed, "Vehicle speed inside the lot (units/s)")
	cmd.Flags().Float64Var(&fullLotDelay, "full-lot-delay", defaults.Retry.FullLotDelay, "Seconds a turned-away vehicle circles before retrying")
	cmd.Flags().StringVar(&policyName, "policy", "nearest", "Space assignment policy (nearest, first-available)")
	cmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Decision trace level (none, decisions)")
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, compareCmd} {
		registerScheduleFlags(c)
		registerEngineFlags(c)
	}
	registerScheduleFlags(scheduleCmd)
	scheduleCmd.Flags().StringVar(&scheduleOut, "out", "", "CSV output path (default stdout)")
	scheduleCmd.Flags().StringVar(&scheduleHeaderOut, "header-out", "", "YAML header output path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(scheduleCmd)
}
