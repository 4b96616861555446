package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/kinefig/internal/experiment"
	"github.com/san-kum/kinefig/internal/optim"
	"github.com/san-kum/kinefig/internal/viz"
)

// parseSweep turns "key=v1,v2" flags into names and value lists.
func parseSweep(specs []string) ([]string, [][]float64, error) {
	if len(specs) == 0 {
		return nil, nil, fmt.Errorf("at least one --param is required")
	}

	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		key, list, ok := strings.Cut(spec, "=")
		if !ok || key == "" {
			return nil, nil, fmt.Errorf("bad --param %q, want key=v1,v2", spec)
		}
		var vals []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad value in --param %q: %w", spec, err)
			}
			vals = append(vals, v)
		}
		names = append(names, key)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func sweepSettings(cmd *cobra.Command, args []string) error {
	system := args[0]
	base, err := loadConfig(cmd, system)
	if err != nil {
		return err
	}

	names, ranges, err := parseSweep(sweepParams)
	if err != nil {
		return err
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		for k, v := range params {
			if err := cfg.Set(k, v); err != nil {
				return nil, err
			}
		}
		return experiment.New(&cfg, reg, log)
	}

	best, trials, err := g.Search(cmd.Context(), build, sweepMetric)
	if err != nil {
		return err
	}

	keys := g.Names()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(keys, "\t")), strings.ToUpper(sweepMetric))
	sort.SliceStable(trials, func(i, j int) bool { return trials[i].Value < trials[j].Value })
	for _, tr := range trials {
		for _, k := range keys {
			fmt.Fprintf(w, "%g\t", tr.Params[k])
		}
		if tr.Err != nil {
			fmt.Fprintf(w, "error: %v\n", tr.Err)
			continue
		}
		fmt.Fprintf(w, "%.6g\n", tr.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(viz.Title.Render("best"))
	fmt.Println(viz.Metrics(best.Params))
	return nil
}
