package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gorevolve"
)

const (
	maxBatchJobs  = 1000
	maxBatchBytes = 1 << 20
)

// batchFile is the YAML layout read by the batch command:
//
//	jobs:
//	  - function: x^2
//	    lower: 0
//	    upper: 2
type batchFile struct {
	Jobs []batchJob `yaml:"jobs"`
}

type batchJob struct {
	Function string  `yaml:"function"`
	Lower    float64 `yaml:"lower"`
	Upper    float64 `yaml:"upper"`
}

type batchResult struct {
	Job    batchJob          `json:"job"`
	Result *gorevolve.Result `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func readBatch(path string) (batchFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return batchFile{}, fmt.Errorf("batch: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxBatchBytes+1))
	if err != nil {
		return batchFile{}, fmt.Errorf("batch: read %s: %w", path, err)
	}
	if len(data) > maxBatchBytes {
		return batchFile{}, fmt.Errorf("batch: %s exceeds %d bytes", path, maxBatchBytes)
	}
	var b batchFile
	if err := yaml.Unmarshal(data, &b); err != nil {
		return batchFile{}, fmt.Errorf("batch: parse %s: %w", path, err)
	}
	if len(b.Jobs) > maxBatchJobs {
		return batchFile{}, fmt.Errorf("batch: %d jobs exceeds the limit of %d", len(b.Jobs), maxBatchJobs)
	}
	return b, nil
}

func batchCmd(a *app) *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Run every job of a YAML file concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if concurrency < 1 {
				return fmt.Errorf("--concurrency must be positive, got %d", concurrency)
			}
			b, err := readBatch(args[0])
			if err != nil {
				return err
			}
			results := make([]batchResult, len(b.Jobs))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(concurrency)
			for i, job := range b.Jobs {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					results[i].Job = job
					res, err := a.engine.ComputeAllContext(ctx, job.Function, job.Lower, job.Upper)
					if err != nil {
						// invalid jobs are reported, not fatal
						results[i].Error = a.userErr(err).Error()
						return nil
					}
					results[i].Result = &res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			a.logger.Info("batch finished", "file", args[0], "jobs", len(b.Jobs), "concurrency", concurrency)

			parts := make([]string, len(results))
			for i, r := range results {
				if r.Result == nil {
					parts[i] = styles.Error.Render(fmt.Sprintf("%s on [%g, %g]: %s", r.Job.Function, r.Job.Lower, r.Job.Upper, r.Error))
					continue
				}
				parts[i] = renderResult(*r.Result)
			}
			return a.print(cmd.OutOrStdout(), results, strings.Join(parts, "\n"))
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum concurrent jobs")
	return cmd
}
