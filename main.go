package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"aetherlens/adapters/file"
	"aetherlens/app"
	"aetherlens/internal"
	"aetherlens/internal/config"
	"aetherlens/internal/errors"
	"aetherlens/internal/testkit"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	rootCmd := &cobra.Command{
		Use:   "aetherlens",
		Short: "Normalize Aether insight evidence into render-ready sections",
	}

	rootCmd.AddCommand(
		newNormalizeCmd(),
		newSynthCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newNormalizeCmd() *cobra.Command {
	var dataPath string
	var concurrency int
	var pretty bool
	var report bool

	cmd := &cobra.Command{
		Use:   "normalize [path]",
		Short: "Normalize captured evidence payloads from a file or directory",
		Long: `Normalize captured insight evidence (JSON, JSON array, or NDJSON)
into typed sections, one JSON document per insight on stdout.

Example: aetherlens normalize captures/ --concurrency 8 --report`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load()
			if err != nil {
				return err
			}
			if dataPath == "" {
				dataPath = appConfig.Source.DataPath
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = appConfig.Batch.Concurrency
			}

			logger := internal.NewDefaultLogger()
			source := file.NewSource(args[0], dataPath, appConfig.Source.InsightIDPath)
			batch := app.NewBatchNormalizer(source, logger, concurrency, pretty || appConfig.Batch.Pretty)

			runReport, err := batch.Run(cmd.Context(), os.Stdout)
			if err != nil {
				return err
			}
			if report {
				encoder := json.NewEncoder(os.Stderr)
				encoder.SetIndent("", "  ")
				return encoder.Encode(runReport)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data-path", "", "gjson path to the evidence object inside each document")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent normalization workers")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent emitted JSON")
	cmd.Flags().BoolVar(&report, "report", false, "print a run report to stderr")
	return cmd
}

func newSynthCmd() *cobra.Command {
	var seed int64
	var malformedRate float64

	cmd := &cobra.Command{
		Use:   "synth [count]",
		Short: "Emit synthetic evidence payloads for pipeline testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var count int
			if _, err := fmt.Sscanf(args[0], "%d", &count); err != nil || count < 1 {
				return errors.InvalidInput(fmt.Sprintf("count must be a positive integer, got %q", args[0]))
			}

			genConfig := testkit.DefaultEvidenceConfig()
			genConfig.Seed = seed
			genConfig.MalformedRate = malformedRate

			encoder := json.NewEncoder(os.Stdout)
			for _, payload := range testkit.NewEvidenceGenerator(genConfig).Generate(count) {
				if err := encoder.Encode(payload); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "deterministic generator seed")
	cmd.Flags().Float64Var(&malformedRate, "malformed-rate", 0.15, "probability of deliberately broken elements")
	return cmd
}
