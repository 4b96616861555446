package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/kinefig/internal/analysis"
	"github.com/san-kum/kinefig/internal/physics"
	"github.com/san-kum/kinefig/internal/storage"
	"github.com/san-kum/kinefig/internal/viz"
)

var captions = map[string][]string{
	physics.SpringMassName:   {"position", "velocity"},
	physics.PendulumName:     {"theta (angle)", "omega (angular velocity)"},
	physics.BouncingBallName: {"height", "vertical velocity"},
}

func caption(system string, idx int) string {
	if c, ok := captions[system]; ok && idx < len(c) {
		return c[idx]
	}
	return fmt.Sprintf("x%d vs time", idx)
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
	fmt.Fprintln(w, "ID\tSYSTEM\tTIME\tDURATION\tDT\tINTEG\tSAMPLES\tBOUNCES\tOUTPUT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\t%d\t%s\n",
			run.ID,
			run.System,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Samples,
			run.Bounces,
			run.Output,
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

	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if traj.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("system: %s\n", meta.System)
	fmt.Printf("samples: %d\n\n", traj.Len())

	for idx := range traj.States[0] {
		graph := asciigraph.Plot(traj.Column(idx),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption(meta.System, idx)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if traj.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}
	if len(traj.States[0]) <= xAxis || len(traj.States[0]) <= yAxis {
		return fmt.Errorf("state dimension too small for selected axes")
	}

	xs, ys := traj.Column(xAxis), traj.Column(yAxis)
	xMin, xMax := bounds(xs)
	yMin, yMax := bounds(ys)

	const width, height = 70, 20
	canvas := viz.NewCanvas(width, height)
	dotsX, dotsY := float64(2*width-1), float64(4*height-1)
	px := func(i int) (int, int) {
		x := (xs[i] - xMin) / (xMax - xMin) * dotsX
		y := (yMax - ys[i]) / (yMax - yMin) * dotsY
		return int(math.Round(x)), int(math.Round(y))
	}
	x0, y0 := px(0)
	for i := 1; i < len(xs); i++ {
		x1, y1 := px(i)
		canvas.DrawLine(x0, y0, x1, y1)
		x0, y0 = x1, y1
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("%s vs %s\n\n", caption(meta.System, yAxis), caption(meta.System, xAxis))
	fmt.Printf("  y: [%.3f, %.3f]  x: [%.3f, %.3f]\n", yMin, yMax, xMin, xMax)
	fmt.Print(viz.Panel.Render(canvas.String()))
	fmt.Println()
	return nil
}

// bounds returns the range of v, widened when v is constant.
func bounds(v []float64) (float64, float64) {
	lo, hi := v[0], v[0]
	for _, x := range v {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if hi == lo {
		lo, hi = lo-0.5, hi+0.5
	}
	return lo, hi
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if traj.Len() < 4 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("system: %s\n\n", meta.System)

	spec, err := analysis.PowerSpectrum(traj.Column(0), traj.Times[1]-traj.Times[0])
	if err != nil {
		return err
	}

	// low quarter of the band, where these systems live
	plotData := spec.Power[:max(len(spec.Power)/4, 2)]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s), 0 to %.2f hz", caption(meta.System, 0), spec.Freqs[len(plotData)-1])),
	)
	fmt.Println(graph)
	fmt.Println(viz.Separator(80))

	freq, err := analysis.DominantFrequency(traj, 0)
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: %.4f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.4f s\n", 1.0/freq)
	}
	if f0, ok := naturalFrequency(meta.System, meta.Params); ok {
		fmt.Printf("natural frequency: %.4f hz (undamped, small amplitude)\n", f0)
	}

	if meta.System == physics.BouncingBallName {
		fmt.Printf("bounces: %d\n", meta.Bounces)
		return nil
	}
	delta, err := analysis.LogDecrement(traj, 0)
	if err != nil {
		log.WithError(err).Debug("no decay estimate")
		return nil
	}
	fmt.Printf("log decrement: %.4f\n", delta)
	fmt.Printf("damping ratio: %.4f\n", analysis.DampingRatio(delta))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportJSON(os.Stdout, args[0])
}

// naturalFrequency rebuilds an oscillator from stored parameters and
// returns its undamped frequency in hz.
func naturalFrequency(system string, params map[string]float64) (float64, bool) {
	var omega float64
	switch system {
	case physics.SpringMassName:
		s, err := physics.NewSpringMass(physics.SpringMassParams{
			Mass:      params["mass"],
			Stiffness: params["stiffness"],
			Damping:   params["damping"],
		})
		if err != nil {
			return 0, false
		}
		omega = s.NaturalFrequency()
	case physics.PendulumName:
		p, err := physics.NewPendulum(physics.PendulumParams{
			Gravity: params["gravity"],
			Length:  params["length"],
			Mass:    params["mass"],
			Damping: params["damping"],
		})
		if err != nil {
			return 0, false
		}
		omega = p.NaturalFrequency()
	default:
		return 0, false
	}
	return omega / (2 * math.Pi), true
}
