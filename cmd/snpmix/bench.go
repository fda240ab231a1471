package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/carbocation/snpmix/logger"
	"github.com/carbocation/snpmix/neighborgraph"
	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var benchCutoff int

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Time the vertex betweenness computation for every sample",
	Long: `For every sample known to catwalk, fetches its neighbours and their pairwise
distances at --cutoff, builds the neighbour graph and times the centrality
computation. Prints CSV: sample_name,neighbours_count,vertex_betweenness,time_s.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client := newCatwalkClient()

		names, err := client.ListSamples(ctx)
		if err != nil {
			return err
		}

		w := gocsv.DefaultCSVWriter(cmd.OutOrStdout())
		if err := w.Write([]string{"sample_name", "neighbours_count", "vertex_betweenness", "time_s"}); err != nil {
			return err
		}

		for _, name := range names {
			neighbours, err := client.Neighbours(ctx, name, benchCutoff)
			if err != nil {
				return fmt.Errorf("neighbours of %s: %w", name, err)
			}

			members := make([]string, 0, len(neighbours)+1)
			for _, n := range neighbours {
				members = append(members, n.Name)
			}
			pairwise, err := client.PairwiseDistances(ctx, append(members, name))
			if err != nil {
				return fmt.Errorf("pairwise distances for %s: %w", name, err)
			}

			start := time.Now()
			c := neighborgraph.BuildGraph(name, members, pairwise).Centrality()
			elapsed := time.Since(start)

			logger.Log.Debug("timed centrality",
				zap.String("sample", name),
				zap.Int("vertices", c.Vertices),
				zap.Int("edges", c.Edges),
				zap.Duration("elapsed", elapsed),
			)

			if err := w.Write([]string{
				name,
				strconv.Itoa(len(neighbours)),
				strconv.FormatFloat(c.Vertex, 'g', -1, 64),
				strconv.FormatFloat(elapsed.Seconds(), 'f', 6, 64),
			}); err != nil {
				return err
			}
		}

		w.Flush()
		return w.Error()
	},
}

func init() {
	benchCmd.Flags().IntVar(&benchCutoff, "cutoff", 3, "SNP cutoff for the neighbour queries")
	rootCmd.AddCommand(benchCmd)
}
