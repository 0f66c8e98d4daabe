package cmd

import (
	"fmt"
	"os"

	"github.com/sdcio/parsort/pkg/array"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "sort a generated array and check it is ascending",
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := newRunner(cfg)
		if err != nil {
			return err
		}
		seed := r.seed()
		a := array.Generate(cfg.Sort.Items, seed)
		log.Debugf("generated %d items with seed %d", len(a), seed)

		took, err := r.run(cmd.Context(), cfg.Sort.Algorithm, a)
		if cerr := r.close(os.Stderr); cerr != nil {
			log.Errorf("failed to write metrics: %v", cerr)
		}
		if err != nil {
			return err
		}
		log.Infof("%s sorted %d items in %s", cfg.Sort.Algorithm, len(a), took)
		fmt.Fprintln(cmd.OutOrStdout(), "OK!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sortCmd)
}
