package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/abe-mart/tclab-sim/internal/config"
	"github.com/abe-mart/tclab-sim/internal/history"
	"github.com/abe-mart/tclab-sim/internal/lab"
	"github.com/abe-mart/tclab-sim/internal/metrics"
	"github.com/abe-mart/tclab-sim/internal/storage"
	"github.com/abe-mart/tclab-sim/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	initTemp   float64
	window     float64
	mode       string
	kp         float64
	ki         float64
	kd         float64
	sp1        float64
	sp2        float64
	q1         float64
	q2         float64
	tickMillis int
	outFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tclab",
		Short: "two-heater thermal lab digital twin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".tclab", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation headless and save the result",
		RunE:  runHeadless,
	}
	addSimFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live terminal view",
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&tickMillis, "tick", config.DefaultTickMillis, "tick cadence, milliseconds")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print a saved run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outFile, "out", "", "write to file instead of stdout")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "physics step, seconds")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration, simulated seconds")
	cmd.Flags().Float64Var(&initTemp, "init-temp", config.DefaultInitialTemp, "initial temperature, celsius")
	cmd.Flags().Float64Var(&window, "window", config.DefaultWindow, "display window, seconds (0 = all)")
	cmd.Flags().StringVar(&mode, "mode", "", "control mode: manual or auto")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp (both channels)")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki (both channels)")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd (both channels)")
	cmd.Flags().Float64Var(&sp1, "sp1", config.DefaultSetpoint1, "channel 1 setpoint, celsius")
	cmd.Flags().Float64Var(&sp2, "sp2", config.DefaultSetpoint2, "channel 2 setpoint, celsius")
	cmd.Flags().Float64Var(&q1, "q1", 0, "channel 1 manual duty, percent")
	cmd.Flags().Float64Var(&q2, "q2", 0, "channel 2 manual duty, percent")
}

// buildConfig resolves config file, preset and flags, in that order of
// increasing precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", preset)
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	set := cmd.Flags().Changed
	if set("dt") {
		cfg.Dt = dt
	}
	if set("time") {
		cfg.Duration = duration
	}
	if set("init-temp") {
		cfg.InitialTemp = initTemp
		cfg.Plant.Ambient = initTemp
	}
	if set("window") {
		cfg.Window = window
	}
	if set("mode") {
		cfg.Mode = mode
	}
	if set("kp") {
		cfg.Heater1.Kp, cfg.Heater2.Kp = kp, kp
	}
	if set("ki") {
		cfg.Heater1.Ki, cfg.Heater2.Ki = ki, ki
	}
	if set("kd") {
		cfg.Heater1.Kd, cfg.Heater2.Kd = kd, kd
	}
	if set("sp1") {
		cfg.Heater1.Setpoint = sp1
	}
	if set("sp2") {
		cfg.Heater2.Setpoint = sp2
	}
	if set("q1") {
		cfg.Heater1.Duty = q1
	}
	if set("q2") {
		cfg.Heater2.Duty = q2
	}
	return cfg, nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	sched := lab.New(cfg)
	sched.AddMetric(metrics.NewControlEffort())
	sched.AddMetric(metrics.NewTrackingError(cfg.Heater1.Setpoint, cfg.Heater2.Setpoint))
	sched.AddMetric(metrics.NewPeakTemp())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runErr := sched.Run(ctx, cfg.Duration)
	if runErr != nil && sched.History().Len() == 0 {
		return runErr
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(cfg, sched.History(), sched.MetricValues())
	if err != nil {
		return err
	}

	fmt.Printf("saved run: %s (%d samples, %.0fs simulated)\n",
		runID, sched.History().Len(), sched.Elapsed())

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for name, value := range sched.MetricValues() {
		fmt.Fprintf(w, "%s\t%.2f\n", name, value)
	}
	w.Flush()

	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ms := cfg.TickMillis
	if cmd.Flags().Changed("tick") {
		ms = tickMillis
	}
	return tui.Run(lab.New(cfg), ms)
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tMODE\tDT\tDURATION\tSP1\tSP2")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3g\t%.0f\t%.1f\t%.1f\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Mode,
			r.Dt, r.Duration, r.Setpoint1, r.Setpoint2)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	samples, err := store.LoadHistory(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("run %s has too few samples to plot", args[0])
	}

	t1 := make([]float64, len(samples))
	t2 := make([]float64, len(samples))
	for i, s := range samples {
		t1[i] = s.T1
		t2[i] = s.T2
	}

	chart := asciigraph.PlotMany([][]float64{t1, t2},
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s: T1/T2 (degC)", args[0])),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
	)
	fmt.Println(chart)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	samples, err := store.LoadHistory(args[0])
	if err != nil {
		return err
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	h := history.New()
	for _, s := range samples {
		h.Append(s)
	}
	return h.WriteCSV(out)
}
