package main

import (
	"os"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-bool/boolkit/parsers"
	"github.com/go-bool/boolkit/sat"
)

type config struct {
	gzipped      bool
	maxConflicts int64
	timeout      time.Duration
	phaseSaving  bool
	randomPhase  bool
	randomSeed   int64
	verbose      bool
	cpuProfile   string
	memProfile   string
}

func main() {
	cfg := &config{}

	cmd := &cobra.Command{
		Use:   "boolkit <instance.cnf>",
		Short: "Solve a DIMACS CNF instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cfg, args[0])
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&cfg.gzipped, "gzip", false, "treat the instance file as gzipped")
	flags.Int64Var(&cfg.maxConflicts, "max-conflicts", 0, "stop after this many conflicts (0 = no limit)")
	flags.DurationVar(&cfg.timeout, "timeout", 0, "stop after this much time (0 = no limit)")
	flags.BoolVar(&cfg.phaseSaving, "phase-saving", true, "enable phase saving")
	flags.BoolVar(&cfg.randomPhase, "random-phase", false, "randomize initial phases")
	flags.Int64Var(&cfg.randomSeed, "seed", 0, "seed for --random-phase")
	flags.BoolVar(&cfg.verbose, "verbose", false, "log search statistics")
	flags.StringVar(&cfg.cpuProfile, "cpuprof", "", "save a pprof CPU profile to this file")
	flags.StringVar(&cfg.memProfile, "memprof", "", "save a pprof memory profile to this file")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config, instanceFile string) error {
	log := logrus.New()
	if !cfg.verbose {
		log.SetLevel(logrus.WarnLevel)
	}

	if cfg.cpuProfile != "" {
		f, err := os.Create(cfg.cpuProfile)
		if err != nil {
			return err
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	opts := sat.DefaultOptions
	opts.PhaseSaving = cfg.phaseSaving
	opts.Logger = log
	solver := sat.NewSolver(opts)
	if cfg.randomPhase {
		solver.SetRandomPhase(cfg.randomSeed)
	}

	if err := parsers.LoadDIMACS(instanceFile, cfg.gzipped, solver); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"variables": solver.NumVariables(),
		"clauses":   solver.NumClauses(),
	}).Info("instance loaded")

	budget := sat.Budget{MaxConflicts: cfg.maxConflicts}
	if cfg.timeout > 0 {
		budget.Deadline = time.Now().Add(cfg.timeout)
	}

	start := time.Now()
	status := solver.Solve(nil, budget)
	elapsed := time.Since(start)

	log.WithFields(logrus.Fields{
		"time":      elapsed.Seconds(),
		"conflicts": solver.Stats.Conflicts,
		"restarts":  solver.Stats.Restarts,
	}).Info("search finished")

	// The s-line is the only output contract of the CLI.
	switch status {
	case sat.Sat:
		os.Stdout.WriteString("s SATISFIABLE\n")
	case sat.Unsat:
		os.Stdout.WriteString("s UNSATISFIABLE\n")
	default:
		os.Stdout.WriteString("s UNKNOWN\n")
	}

	if cfg.memProfile != "" {
		f, err := os.Create(cfg.memProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return err
		}
	}
	return nil
}
