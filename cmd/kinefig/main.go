package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/kinefig/internal/config"
	"github.com/san-kum/kinefig/internal/experiment"
	"github.com/san-kum/kinefig/internal/viz"
)

var (
	dataDir  string
	logLevel string

	out        string
	outDir     string
	configFile string
	preset     string
	integrator string
	dt         float64
	duration   float64
	fps        float64
	dpi        int
	tolerance  float64
	maxStep    float64
	saveRun    bool
	showProg   bool
	stream     bool
	frame      int
	cols       int

	// physical parameters
	mass        float64
	stiffness   float64
	damping     float64
	gravity     float64
	length      float64
	restitution float64
	vx          float64

	// initial state
	pos   float64
	vel   float64
	theta float64
	omega float64
	y0    float64
	vy    float64

	// phase plot axes
	xAxis int
	yAxis int

	sweepParams []string
	sweepMetric string

	log = logrus.New()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "kinefig",
		Short:         "animated figures of classical mechanical systems",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			log.SetOutput(os.Stderr)
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".kinefig", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	renderCmd := &cobra.Command{
		Use:   "render [system]",
		Short: "render an animated gif of a system",
		Args:  cobra.ExactArgs(1),
		RunE:  renderFigure,
	}
	addRunFlags(renderCmd)
	renderCmd.Flags().StringVar(&out, "out", "", "output gif (default <system>.gif)")
	renderCmd.Flags().Float64Var(&fps, "fps", config.DefaultFPS, "frames per second")
	renderCmd.Flags().IntVar(&dpi, "dpi", config.DefaultDPI, "raster resolution")
	renderCmd.Flags().BoolVar(&saveRun, "save", false, "store the run in the data directory")
	renderCmd.Flags().BoolVar(&showProg, "progress", false, "show a progress view while encoding")
	renderCmd.Flags().BoolVar(&stream, "stream", false, "map and encode states as they are accepted")

	renderAllCmd := &cobra.Command{
		Use:   "render-all",
		Short: "render the default figure of every system concurrently",
		Args:  cobra.NoArgs,
		RunE:  renderAll,
	}
	renderAllCmd.Flags().StringVar(&outDir, "dir", ".", "output directory")
	renderAllCmd.Flags().IntVar(&dpi, "dpi", config.DefaultDPI, "raster resolution")

	stillCmd := &cobra.Command{
		Use:   "still [system]",
		Short: "write one frame as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  renderStill,
	}
	addRunFlags(stillCmd)
	stillCmd.Flags().StringVar(&out, "out", "", "output svg (default <system>.svg)")
	stillCmd.Flags().IntVar(&frame, "frame", 0, "frame index")

	previewCmd := &cobra.Command{
		Use:   "preview [system]",
		Short: "draw one frame in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  previewFrame,
	}
	addRunFlags(previewCmd)
	previewCmd.Flags().IntVar(&frame, "frame", 0, "frame index")
	previewCmd.Flags().IntVar(&cols, "cols", 72, "width in characters")

	compareCmd := &cobra.Command{
		Use:   "compare [system] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same system",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [system]",
		Short: "grid search over settings for the lowest metric",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepSettings,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "setting=v1,v2,... (repeatable, e.g. pendulum.damping=0,0.5,1)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "energy_drift", "metric to minimize")

	benchCmd := &cobra.Command{
		Use:   "bench [system]",
		Short: "time the solver and mapper of a system",
		Args:  cobra.ExactArgs(1),
		RunE:  benchSystem,
	}

	systemsCmd := &cobra.Command{
		Use:   "systems",
		Short: "list systems and integrators",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			reg := experiment.NewRegistry()
			fmt.Println(viz.Title.Render("systems"))
			for _, s := range reg.ListSystems() {
				fmt.Printf("  %s\n", s)
			}
			fmt.Println(viz.Title.Render("integrators"))
			for _, s := range reg.ListIntegrators() {
				fmt.Printf("  %s\n", s)
			}
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [system]",
		Short: "list available presets for a system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for system: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and decay analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(renderCmd, renderAllCmd, stillCmd, previewCmd, compareCmd, sweepCmd, benchCmd,
		systemsCmd, presetsCmd, runsCmd, plotCmd, phaseCmd, analyzeCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, viz.Failure.Render("error:"), err)
		os.Exit(1)
	}
}

// addRunFlags registers the flags that shape a single run. They only
// override the preset or config file when given explicitly.
func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	f.Float64Var(&dt, "dt", 0, "sampling step (default per system)")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration")
	f.Float64Var(&tolerance, "tolerance", config.DefaultTolerance, "adaptive integrator tolerance")
	f.Float64Var(&maxStep, "max-step", config.DefaultMaxStep, "largest fixed integrator sub-step")

	f.Float64Var(&mass, "mass", 0, "mass (spring_mass, pendulum)")
	f.Float64Var(&stiffness, "stiffness", 0, "spring stiffness")
	f.Float64Var(&damping, "damping", 0, "damping (spring_mass, pendulum)")
	f.Float64Var(&gravity, "gravity", 0, "gravity (pendulum, bouncing_ball)")
	f.Float64Var(&length, "length", 0, "pendulum length")
	f.Float64Var(&restitution, "restitution", 0, "coefficient of restitution")
	f.Float64Var(&vx, "vx", 0, "horizontal velocity (bouncing_ball)")

	f.Float64Var(&pos, "pos", 0, "initial position (spring_mass)")
	f.Float64Var(&vel, "vel", 0, "initial velocity (spring_mass)")
	f.Float64Var(&theta, "theta", 0, "initial angle (pendulum)")
	f.Float64Var(&omega, "omega", 0, "initial angular velocity (pendulum)")
	f.Float64Var(&y0, "y", 0, "initial height (bouncing_ball)")
	f.Float64Var(&vy, "vy", 0, "initial vertical velocity (bouncing_ball)")
}

// loadConfig resolves the configuration of one run: figure defaults, then
// preset, then config file, then explicit flags.
func loadConfig(cmd *cobra.Command, system string) (*config.Config, error) {
	cfg, err := config.ForSystem(system)
	if err != nil {
		return nil, err
	}

	if preset != "" {
		cfg = config.GetPreset(system, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(system))
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if loaded.System != system {
			log.WithField("config", loaded.System).Warnf("config file is for another system, using %s", system)
			loaded.System = system
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	set := func(name string, dst *float64, v float64) {
		if flags.Changed(name) {
			*dst = v
		}
	}

	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	set("dt", &cfg.Dt, dt)
	set("time", &cfg.Duration, duration)
	set("tolerance", &cfg.Tolerance, tolerance)
	set("max-step", &cfg.MaxStep, maxStep)
	if f := flags.Lookup("fps"); f != nil && f.Changed {
		cfg.FPS = fps
	}
	if f := flags.Lookup("dpi"); f != nil && f.Changed {
		cfg.DPI = dpi
	}
	if f := flags.Lookup("out"); f != nil && f.Changed {
		cfg.Output = out
	}

	set("mass", &cfg.SpringMass.Mass, mass)
	set("mass", &cfg.Pendulum.Mass, mass)
	set("stiffness", &cfg.SpringMass.Stiffness, stiffness)
	set("damping", &cfg.SpringMass.Damping, damping)
	set("damping", &cfg.Pendulum.Damping, damping)
	set("gravity", &cfg.Pendulum.Gravity, gravity)
	set("gravity", &cfg.BouncingBall.Gravity, gravity)
	set("length", &cfg.Pendulum.Length, length)
	set("restitution", &cfg.BouncingBall.Restitution, restitution)
	set("vx", &cfg.BouncingBall.HorizontalVelocity, vx)

	set("pos", &cfg.InitState.Pos, pos)
	set("vel", &cfg.InitState.Vel, vel)
	set("theta", &cfg.InitState.Theta, theta)
	set("omega", &cfg.InitState.Omega, omega)
	set("y", &cfg.InitState.Y, y0)
	set("vy", &cfg.InitState.VY, vy)

	return cfg, nil
}
