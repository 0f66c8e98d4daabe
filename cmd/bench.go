package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/sdcio/parsort/pkg/array"
	"github.com/sdcio/parsort/pkg/sorting"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var benchAlgorithms []string
var benchRounds int

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "run several algorithms over the same input and compare timings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if benchRounds < 1 {
			return fmt.Errorf("--rounds must be at least 1, got %d", benchRounds)
		}
		names := benchAlgorithms
		if len(names) == 0 {
			names = sorting.Algorithms()
		}
		r, err := newRunner(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := r.close(os.Stderr); cerr != nil {
				log.Errorf("failed to write metrics: %v", cerr)
			}
		}()

		seed := r.seed()
		input := array.Generate(cfg.Sort.Items, seed)
		work := make([]int, len(input))

		tableData := make([][]string, 0, len(names))
		for _, name := range names {
			var best, total time.Duration
			for i := 0; i < benchRounds; i++ {
				copy(work, input)
				took, err := r.run(cmd.Context(), name, work)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				total += took
				if i == 0 || took < best {
					best = took
				}
			}
			tableData = append(tableData, []string{
				name,
				strconv.Itoa(concurrency(name)),
				best.String(),
				(total / time.Duration(benchRounds)).String(),
			})
		}
		printBenchTable(cmd, seed, tableData)
		return nil
	},
}

func init() {
	benchCmd.Flags().StringSliceVar(&benchAlgorithms, "algorithms", nil, "algorithms to compare (default: all)")
	benchCmd.Flags().IntVar(&benchRounds, "rounds", 3, "runs per algorithm")
	rootCmd.AddCommand(benchCmd)
}

func printBenchTable(cmd *cobra.Command, seed uint32, tableData [][]string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%d items, seed %d, %d rounds\n", cfg.Sort.Items, seed, benchRounds)
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Algorithm", "Concurrency", "Best", "Mean"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(tableData)
	table.Render()
}

// concurrency is the most merges name can have in flight at once.
func concurrency(name string) int {
	switch name {
	case sorting.AlgLevel, sorting.AlgPartition:
		return cfg.Pool.Workers
	case sorting.AlgBounded:
		return cfg.Sort.MaxGoroutines
	case sorting.AlgFork:
		return 1 << cfg.Sort.ForkDepth
	}
	return 1
}
