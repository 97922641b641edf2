package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/galpop/internal/config"
	"github.com/san-kum/galpop/internal/obs"
	"github.com/san-kum/galpop/internal/pop"
	"github.com/san-kum/galpop/internal/sample"
	"github.com/san-kum/galpop/internal/storage"
	"github.com/san-kum/galpop/internal/viz"
)

var (
	dataDir string

	n          int
	seed       int64
	horizon    float64
	lookback   float64
	workers    int
	m1Cutoff   float64
	vDisp      float64
	integrator string
	cadence    float64
	tolerance  float64
	stepper    string
	kickSigma  float64
	tablePath  string
	potName    string
	magLimit   float64

	configFile   string
	preset       string
	showProgress bool

	systemID   int
	plotWidth  int
	plotHeight int
	bins       int
	outPath    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "galpop",
		Short: "binary population synthesis in a galactic potential",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".galpop", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "sample a population and evolve it to the horizon",
		RunE:  runPopulation,
	}
	runCmd.Flags().IntVar(&n, "n", config.DefaultN, "systems to sample")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().Float64Var(&horizon, "horizon", config.DefaultHorizon, "evolution horizon (Myr)")
	runCmd.Flags().Float64Var(&lookback, "lookback", 0, "star formation window (Myr, default horizon)")
	runCmd.Flags().IntVar(&workers, "workers", 0, "worker count (0 = NumCPU)")
	runCmd.Flags().Float64Var(&m1Cutoff, "m1-cutoff", config.DefaultM1Cutoff, "primary mass cutoff (Msun)")
	runCmd.Flags().Float64Var(&vDisp, "v-dispersion", config.DefaultVDispersion, "birth velocity dispersion (km/s)")
	runCmd.Flags().StringVar(&integrator, "integrator", "dopri45", "integration method")
	runCmd.Flags().Float64Var(&cadence, "cadence", config.DefaultCadence, "trajectory sample cadence (Myr)")
	runCmd.Flags().Float64Var(&tolerance, "tolerance", 1e-8, "adaptive step tolerance")
	runCmd.Flags().StringVar(&stepper, "stepper", "heuristic", "evolution stepper (heuristic, table)")
	runCmd.Flags().Float64Var(&kickSigma, "kick-sigma", config.DefaultKickSigma, "natal kick dispersion (km/s)")
	runCmd.Flags().StringVar(&tablePath, "table", "", "event table JSON (table stepper)")
	runCmd.Flags().StringVar(&potName, "potential", "milky-way", "gravitational potential")
	runCmd.Flags().Float64Var(&magLimit, "mag-limit", config.DefaultMagLimit, "detection magnitude limit")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&showProgress, "progress", false, "live progress view")

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "draw initial conditions without evolving them",
		RunE:  samplePopulation,
	}
	sampleCmd.Flags().IntVar(&n, "n", config.DefaultN, "systems to sample")
	sampleCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	sampleCmd.Flags().Float64Var(&lookback, "lookback", config.DefaultHorizon, "star formation window (Myr)")
	sampleCmd.Flags().Float64Var(&m1Cutoff, "m1-cutoff", config.DefaultM1Cutoff, "primary mass cutoff (Msun)")
	sampleCmd.Flags().Float64Var(&vDisp, "v-dispersion", config.DefaultVDispersion, "birth velocity dispersion (km/s)")
	sampleCmd.Flags().StringVar(&potName, "potential", "milky-way", "gravitational potential")
	sampleCmd.Flags().StringVar(&outPath, "out", "", "write sampled systems to a JSON file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one system's trajectories",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&systemID, "system", 0, "system id to plot")
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 20, "plot height")

	histCmd := &cobra.Command{
		Use:   "hist [run_id]",
		Short: "apparent magnitude histogram of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  histRun,
	}
	histCmd.Flags().IntVar(&bins, "bins", 24, "histogram bins")
	histCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	histCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")
	histCmd.Flags().Float64Var(&magLimit, "mag-limit", config.DefaultMagLimit, "detection magnitude limit")

	observeCmd := &cobra.Command{
		Use:   "observe [run_id]",
		Short: "replay the observational transform over a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  observeRun,
	}
	observeCmd.Flags().Float64Var(&magLimit, "mag-limit", config.DefaultMagLimit, "detection magnitude limit")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export final body coordinates as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export the full history log as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, sampleCmd, listCmd, plotCmd, histCmd, observeCmd,
		exportCmd, exportCSVCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig resolves preset, config file and flags, in rising precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") || (preset == "" && configFile == "") {
		cfg.Seed = seed
	}
	if flags.Changed("n") {
		cfg.Population.N = n
	}
	if flags.Changed("horizon") {
		cfg.Population.Horizon = horizon
	}
	if flags.Changed("lookback") {
		cfg.Population.Lookback = lookback
	} else if flags.Changed("horizon") {
		cfg.Population.Lookback = horizon
	}
	if flags.Changed("m1-cutoff") {
		cfg.Population.M1Cutoff = m1Cutoff
	}
	if flags.Changed("v-dispersion") {
		cfg.Population.VDispersion = vDisp
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("integrator") {
		cfg.Integrator.Method = integrator
	}
	if flags.Changed("cadence") {
		cfg.Integrator.Cadence = cadence
	}
	if flags.Changed("tolerance") {
		cfg.Integrator.Tolerance = tolerance
	}
	if flags.Changed("stepper") {
		cfg.Stepper.Kind = stepper
	}
	if flags.Changed("kick-sigma") {
		cfg.Stepper.KickSigma = kickSigma
	}
	if flags.Changed("table") {
		cfg.Stepper.TablePath = tablePath
		cfg.Stepper.Kind = "table"
	}
	if flags.Changed("potential") {
		cfg.Potential.Model = potName
	}
	if flags.Changed("mag-limit") {
		cfg.Observe.MagLimit = magLimit
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runPopulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	field, err := cfg.Field()
	if err != nil {
		return err
	}
	step, err := cfg.BuildStepper()
	if err != nil {
		return err
	}
	integ, err := cfg.BuildIntegrator()
	if err != nil {
		return err
	}

	sampler := sample.NewSampler(sample.MilkyWayDisk(cfg.Population.Lookback), field)
	systems, stats, err := sampler.Sample(cfg.SamplerConfig())
	if err != nil {
		return err
	}
	fmt.Printf("sampled %d systems (%d above %.1f Msun, %.3e Msun total)\n",
		stats.NSampled, stats.NMatched, cfg.Population.M1Cutoff, stats.TotalMass)

	coupler := &pop.Coupler{Field: field, Stepper: step, Orbit: integ}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	var res *pop.RunResult
	if showProgress {
		res, err = runWithProgressView(ctx, coupler, systems, cfg)
		if err != nil {
			return err
		}
	} else {
		res = coupler.Run(ctx, systems, cfg.Population.Horizon, cfg.Workers)
	}
	elapsed := time.Since(start)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Seed:       cfg.Seed,
		Horizon:    cfg.Population.Horizon,
		Cadence:    cfg.Integrator.Cadence,
		Potential:  cfg.Potential.Model,
		Stepper:    cfg.Stepper.Kind,
		Integrator: cfg.Integrator.Method,
		Workers:    cfg.Workers,
	}, res)
	if err != nil {
		return err
	}

	tr := obs.Default()
	tr.MagLimit = cfg.Observe.MagLimit
	records := tr.ObserveAll(res)

	summary := viz.Summarize(res, records)
	summary.RunID = runID
	summary.Seed = cfg.Seed
	summary.Horizon = cfg.Population.Horizon
	summary.Elapsed = elapsed
	fmt.Print(summary.Render())

	if cancelled := res.Cancelled(); len(cancelled) > 0 {
		fmt.Printf("interrupted: %d systems not completed\n", len(cancelled))
	}
	return nil
}

// runWithProgressView drives the run under a Bubble Tea progress screen. The
// run itself executes on a separate goroutine and feeds completion counts to
// the view.
func runWithProgressView(ctx context.Context, coupler *pop.Coupler, systems []pop.System, cfg *config.Config) (*pop.RunResult, error) {
	p := tea.NewProgram(viz.NewProgress(len(systems)))

	resCh := make(chan *pop.RunResult, 1)
	go func() {
		res := coupler.RunWithProgress(ctx, systems, cfg.Population.Horizon, cfg.Workers, func(done int) {
			p.Send(viz.ProgressMsg(done))
		})
		resCh <- res
		p.Send(viz.DoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return nil, err
	}
	return <-resCh, nil
}

func samplePopulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	field, err := cfg.Field()
	if err != nil {
		return err
	}

	sampler := sample.NewSampler(sample.MilkyWayDisk(cfg.Population.Lookback), field)
	systems, stats, err := sampler.Sample(cfg.SamplerConfig())
	if err != nil {
		return err
	}

	fmt.Printf("sampled: %d\n", stats.NSampled)
	fmt.Printf("matched: %d (m1 >= %.1f Msun)\n", stats.NMatched, cfg.Population.M1Cutoff)
	fmt.Printf("total mass: %.4e Msun\n", stats.TotalMass)

	if outPath != "" {
		file, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer file.Close()
		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		if err := enc.Encode(systems); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
	}
	return nil
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
	fmt.Fprintln(w, "ID\tTIME\tSEED\tHORIZON\tPOTENTIAL\tSTEPPER\tSYSTEMS\tFAILED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.0f Myr\t%s\t%s\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.Horizon,
			run.Potential,
			run.Stepper,
			run.Systems,
			run.Failed,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	histories, err := st.LoadHistories(args[0])
	if err != nil {
		return err
	}

	var h *pop.History
	for _, cand := range histories {
		if cand.System.ID == systemID {
			h = cand
			break
		}
	}
	if h == nil {
		return fmt.Errorf("system %d not in run %s", systemID, args[0])
	}

	fmt.Print(viz.TrajectoryXY(h, plotWidth, plotHeight))
	fmt.Println()
	fmt.Print(viz.RadiusPlot(h, plotWidth, plotHeight/2))
	return nil
}

func histRun(cmd *cobra.Command, args []string) error {
	records, err := observeStored(args[0])
	if err != nil {
		return err
	}
	fmt.Print(viz.MagnitudeHistogram(records, bins, plotWidth, plotHeight))
	return nil
}

func observeRun(cmd *cobra.Command, args []string) error {
	records, err := observeStored(args[0])
	if err != nil {
		return err
	}
	return storage.ExportObservationsCSV(os.Stdout, records)
}

// observeStored reloads a run and replays the observational transform; the
// persisted history log carries everything the transform needs.
func observeStored(runID string) ([]obs.Record, error) {
	st := storage.New(dataDir)
	histories, err := st.LoadHistories(runID)
	if err != nil {
		return nil, err
	}

	tr := obs.Default()
	tr.MagLimit = magLimit
	records := tr.ObserveAll(&pop.RunResult{Histories: histories})
	if len(records) == 0 {
		return nil, fmt.Errorf("run %s produced no observable bodies", runID)
	}
	return records, nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.LoadMetadata(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	histories, err := st.LoadHistories(args[0])
	if err != nil {
		return err
	}
	return storage.ExportFinalCSV(os.Stdout, histories)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	histories, err := st.LoadHistories(args[0])
	if err != nil {
		return err
	}
	return storage.ExportHistoriesJSON(os.Stdout, histories)
}
