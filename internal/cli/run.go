package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rlorigro/GetBlunted/pkg/bluntify"
	"github.com/rlorigro/GetBlunted/pkg/config"
	"github.com/rlorigro/GetBlunted/pkg/gfa"
)

var runFlags struct {
	configPath string
	output     string
	provenance string
	threads    int
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&runFlags.configPath, "config", "c", "", "TOML config file")
	cmd.Flags().StringVarP(&runFlags.output, "output", "o", "", "blunted GFA output path")
	cmd.Flags().StringVarP(&runFlags.provenance, "provenance", "p", "", "provenance report path")
	cmd.Flags().IntVarP(&runFlags.threads, "threads", "t", 0, "biclique cover workers (default: one per CPU)")
}

func runBluntify(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())
	runID := uuid.NewString()[:8]
	logger = logger.With("run", runID)

	cfg, err := config.Load(runFlags.configPath)
	if err != nil {
		return err
	}
	if runFlags.output != "" {
		cfg.Output = runFlags.output
	}
	if runFlags.provenance != "" {
		cfg.Provenance = runFlags.provenance
	}
	if runFlags.threads > 0 {
		cfg.Threads = runFlags.threads
	}

	input := args[0]
	track := newProgress(logger)
	res, err := gfa.ReadFile(input)
	if err != nil {
		return err
	}
	track.done("loaded " + input)

	b := bluntify.New(res, bluntify.Options{
		Workers:   cfg.Threads,
		WorkLimit: cfg.ExactCoverLimit,
		Logger:    logger,
	})

	track = newProgress(logger)
	if err := b.Bluntify(); err != nil {
		return err
	}
	track.done("blunted graph")

	if err := gfa.WriteFile(b.Graph(), cfg.Output); err != nil {
		return err
	}
	logger.Info("wrote blunted GFA", "path", cfg.Output)

	if err := b.WriteProvenance(cfg.Provenance); err != nil {
		return err
	}
	logger.Info("wrote provenance", "path", cfg.Provenance)
	return nil
}
