package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/kinefig/internal/config"
	"github.com/san-kum/kinefig/internal/experiment"
	"github.com/san-kum/kinefig/internal/pipeline"
	"github.com/san-kum/kinefig/internal/storage"
	"github.com/san-kum/kinefig/internal/viz"
)

func renderFigure(cmd *cobra.Command, args []string) error {
	system := args[0]
	cfg, err := loadConfig(cmd, system)
	if err != nil {
		return err
	}
	if cfg.Output == "" {
		cfg.Output = system + ".gif"
	}
	if stream && saveRun {
		log.Warn("--save needs the full trajectory, ignoring --stream")
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var res *pipeline.Result
	work := func(report func(done, total int)) error {
		if stream && !saveRun {
			return exp.RenderStream(ctx, cfg.Output, report)
		}
		var err error
		res, err = exp.Render(ctx, cfg.Output, report)
		return err
	}

	start := time.Now()
	if showProg {
		err = viz.RunWithProgress(system, exp.Grid().Len(), work)
	} else {
		err = work(nil)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("%s %s\n", viz.Success.Render("wrote"), cfg.Output)
	fmt.Printf("frames: %d at %g fps (%.2fs)\n", exp.Grid().Len(), cfg.FPS, float64(exp.Grid().Len())/cfg.FPS)
	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))

	if res == nil {
		return nil
	}
	fmt.Println()
	fmt.Println(viz.Panel.Render(viz.Metrics(res.Metrics)))

	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, res)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func renderAll(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	cfgs, err := experiment.DefaultFigures(reg)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("dpi") {
		for _, cfg := range cfgs {
			cfg.DPI = dpi
		}
	}

	start := time.Now()
	outcomes, err := experiment.RunAll(cmd.Context(), reg, cfgs, outDir, log)
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		fmt.Printf("%s %-14s %s\n", viz.Success.Render("wrote"), o.System, o.Output)
	}
	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func renderStill(cmd *cobra.Command, args []string) error {
	system := args[0]
	cfg, err := loadConfig(cmd, system)
	if err != nil {
		return err
	}
	path := out
	if path == "" {
		path = system + ".svg"
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}
	if err := exp.Still(cmd.Context(), path, frame); err != nil {
		return err
	}

	fmt.Printf("%s %s (frame %d, t=%.3fs)\n", viz.Success.Render("wrote"), path, frame, exp.Grid().Times[frame])
	return nil
}

func previewFrame(cmd *cobra.Command, args []string) error {
	system := args[0]
	cfg, err := loadConfig(cmd, system)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}
	f, err := exp.Frame(cmd.Context(), frame)
	if err != nil {
		return err
	}

	canvas := viz.Preview(exp.Pipeline().Mapper.Layout(), f, cols)
	fmt.Println(viz.Title.Render(fmt.Sprintf("%s  frame %d  t=%.3fs", system, f.Index, f.Time)))
	fmt.Print(canvas.String())
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	system := args[0]
	names := args[1:]
	reg := experiment.NewRegistry()

	base, err := loadConfig(cmd, system)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators for %s (dt=%.4f, duration=%.1fs)\n\n", system, base.Dt, base.Duration)
	fmt.Printf("%-12s  %-12s  %-12s  %-12s\n", "integrator", "final_x0", "energy_drift", "time_ms")
	fmt.Println(strings.Repeat("-", 54))

	for _, name := range names {
		cfg := *base
		cfg.Integrator = name

		exp, err := experiment.New(&cfg, reg, log)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		res, err := exp.Run(cmd.Context())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		last := res.Trajectory.States[res.Trajectory.Len()-1]
		fmt.Printf("%-12s  %12.6f  %12.2e  %12.2f\n", name, last[0], res.Metrics["energy_drift"], float64(elapsed.Microseconds())/1000)
	}
	return nil
}

func benchSystem(cmd *cobra.Command, args []string) error {
	system := args[0]
	reg := experiment.NewRegistry()

	durations := []float64{5, 20}
	dts := []float64{0.01, 0.05, 0.1}

	fmt.Printf("benchmarking %s\n\n", system)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tFRAMES\tTIME\tFRAMES/SEC")

	for _, dur := range durations {
		for _, step := range dts {
			cfg, err := config.ForSystem(system)
			if err != nil {
				return err
			}
			cfg.Duration = dur
			cfg.Dt = step

			exp, err := experiment.New(cfg, reg, log)
			if err != nil {
				return err
			}

			start := time.Now()
			res, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			frames := len(res.Frames)
			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
				dur, step, frames, elapsed.Round(time.Microsecond), float64(frames)/elapsed.Seconds())
		}
	}
	return w.Flush()
}
