package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/trajopt/internal/config"
	"github.com/san-kum/trajopt/internal/ilqr"
	"github.com/san-kum/trajopt/internal/integrators"
	"github.com/san-kum/trajopt/internal/metrics"
	"github.com/san-kum/trajopt/internal/problem"
	"github.com/san-kum/trajopt/internal/storage"
	"github.com/san-kum/trajopt/internal/traj"
	"github.com/san-kum/trajopt/internal/tune"
	"github.com/san-kum/trajopt/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	knots      int
	dt         float64
	iterations int
	regType    string
	costTol    float64
	gradTol    float64
	noSave     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trajopt",
		Short: "iLQR trajectory optimization lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".trajopt", "data directory")

	solveCmd := &cobra.Command{
		Use:   "solve [model]",
		Short: "solve a trajectory optimization problem",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	addProblemFlags(solveCmd)
	solveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot convergence and trajectory of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run with trajectory to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range names {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "solve with a live convergence view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addProblemFlags(liveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [model]",
		Short: "compare state vs control regularization on the same problem",
		Args:  cobra.ExactArgs(1),
		RunE:  compareReg,
	}
	addProblemFlags(compareCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "grid-search solver hyper-parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneSolver,
	}
	addProblemFlags(tuneCmd)

	rootCmd.AddCommand(solveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd, liveCmd, compareCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&knots, "knots", 0, "number of knot points")
	cmd.Flags().Float64Var(&dt, "dt", 0, "knot spacing")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "max outer iterations")
	cmd.Flags().StringVar(&regType, "reg", "", "regularization type (state|control)")
	cmd.Flags().Float64Var(&costTol, "cost-tol", 0, "cost decrease tolerance")
	cmd.Flags().Float64Var(&gradTol, "grad-tol", 0, "gradient tolerance")
}

// buildConfig resolves preset, config file, and flag overrides in that
// order, mirroring flag precedence over files.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.GetPreset(model, "swingup")
	if cfg == nil {
		if names := config.ListPresets(model); len(names) > 0 {
			cfg = config.GetPreset(model, names[0])
		}
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
		cfg.Model = model
	}

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("knots") {
		cfg.Knots = knots
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("iterations") {
		cfg.Solver.Iterations = iterations
	}
	if cmd.Flags().Changed("reg") {
		cfg.Solver.RegType = regType
	}
	if cmd.Flags().Changed("cost-tol") {
		cfg.Solver.CostTolerance = costTol
	}
	if cmd.Flags().Changed("grad-tol") {
		cfg.Solver.GradientTolerance = gradTol
	}

	return cfg, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	p, err := problem.FromConfig(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("solving %s (%d knots, dt=%.4f)...\n", p.Name, p.Knots, p.Dt)
	start := time.Now()

	z, stats, solveErr := p.Solve()
	elapsed := time.Since(start)

	if z == nil {
		return solveErr
	}

	collect := []metrics.Metric{
		metrics.NewControlEffort(),
		metrics.NewTerminalError(traj.State(cfg.GoalState)),
	}
	if d, ok := p.Dyn.(*integrators.Discretizer); ok {
		if h, ok := d.System().(traj.Hamiltonian); ok {
			collect = append(collect, metrics.NewEnergy(h))
		}
	}
	ms := metrics.Evaluate(z, collect...)
	ms["final_cost"] = stats.FinalCost()

	printSummary(stats, elapsed, solveErr)
	fmt.Println("\nmetrics:")
	for name, val := range ms {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(p.Name, p.Opts.RegType.String(), z, stats, ms)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}

	return nil
}

func printSummary(stats *ilqr.Stats, elapsed time.Duration, solveErr error) {
	fmt.Printf("completed in %v\n", elapsed)
	switch {
	case solveErr != nil:
		fmt.Println(viz.BadStyle.Render(fmt.Sprintf("terminated: %s (%v)", stats.Reason, solveErr)))
	case stats.Converged:
		fmt.Println(viz.GoodStyle.Render(fmt.Sprintf("converged: %s in %d iterations", stats.Reason, stats.Iterations)))
	default:
		fmt.Println(viz.BadStyle.Render(fmt.Sprintf("not converged: %s after %d iterations", stats.Reason, stats.Iterations)))
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tKNOTS\tITERS\tREASON\tCOST")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%.4f\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Knots,
			run.Iters,
			run.Reason,
			run.FinalCost,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	z, _, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("termination: %s after %d iterations\n\n", meta.Reason, meta.Iters)

	if g := viz.CostCurve(meta.Cost, 80, 10); g != "" {
		fmt.Println(g)
		fmt.Println()
	}

	numVars := z.StateDim()
	if numVars > 6 {
		numVars = 6
	}
	for varIdx := 0; varIdx < numVars; varIdx++ {
		data := make([]float64, z.NumKnots())
		for k := range data {
			data[k] = z[k].X[varIdx]
		}
		fmt.Println(viz.Series(data, fmt.Sprintf("x%d vs time", varIdx), 80, 10))
		fmt.Println()
	}

	for varIdx := 0; varIdx < z.ControlDim(); varIdx++ {
		data := make([]float64, z.NumKnots()-1)
		for k := range data {
			data[k] = z[k].U[varIdx]
		}
		fmt.Println(viz.Series(data, fmt.Sprintf("u%d vs time", varIdx), 80, 10))
		fmt.Println()
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	z, times, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, z, times)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	z, times, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, z, times)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	p, err := problem.FromConfig(cfg)
	if err != nil {
		return err
	}

	iters := make(chan ilqr.IterStat, 64)
	done := make(chan viz.DoneMsg, 1)
	p.Opts.OnIteration = func(it ilqr.IterStat) {
		iters <- it
	}

	go func() {
		_, stats, solveErr := p.Solve()
		close(iters)
		msg := viz.DoneMsg{Err: solveErr}
		if stats != nil {
			msg.Reason = stats.Reason.String()
			msg.Converged = stats.Converged
		}
		done <- msg
	}()

	m := viz.NewSolveModel(p.Name, iters, done)
	prog := tea.NewProgram(m)
	if _, err := prog.Run(); err != nil {
		return err
	}
	return nil
}

func compareReg(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("comparing regularization types for %s\n\n", args[0])
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REG\tITERS\tREASON\tFINAL COST\tTIME")

	for _, reg := range []string{"control", "state"} {
		cfg.Solver.RegType = reg
		p, err := problem.FromConfig(cfg)
		if err != nil {
			return err
		}

		start := time.Now()
		_, stats, solveErr := p.Solve()
		elapsed := time.Since(start)

		if stats == nil {
			fmt.Fprintf(w, "%s\terror: %v\n", reg, solveErr)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%.6f\t%v\n", reg, stats.Iterations, stats.Reason, stats.FinalCost(), elapsed)
	}

	return w.Flush()
}

func tuneSolver(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	gs := tune.NewGridSearch(
		[]string{"reg_increase_factor", "linesearch_upper_bound"},
		[][]float64{
			{1.4, 1.6, 2.0, 4.0},
			{2, 10, 50},
		},
	)

	best, score := gs.Search(func(params map[string]float64) (float64, error) {
		trial := *cfg
		trial.Solver.RegIncreaseFactor = params["reg_increase_factor"]
		trial.Solver.LinesearchUpperBound = params["linesearch_upper_bound"]

		p, err := problem.FromConfig(&trial)
		if err != nil {
			return 0, err
		}
		_, stats, solveErr := p.Solve()
		if stats == nil {
			return 0, solveErr
		}
		score := float64(stats.Iterations)
		if !stats.Converged {
			score += 1e6
		}
		return score, nil
	})

	if best == nil {
		fmt.Println("no grid point succeeded")
		return nil
	}
	fmt.Printf("best parameters (score %.0f):\n", score)
	for k, v := range best {
		fmt.Printf("  %s: %g\n", k, v)
	}
	return nil
}
