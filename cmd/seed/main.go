package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/mock-booking-api/internal/repository"
	"github.com/iliyamo/mock-booking-api/internal/seed"
)

func main() {
	var (
		out      string
		users    int
		bookings int
		seedVal  int64
		force    bool
	)

	rootCmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate the users and bookings data file for the mock booking API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if users < 0 || bookings < 0 {
				return fmt.Errorf("--users and --bookings must not be negative")
			}
			if _, err := os.Stat(out); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", out)
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
			if seedVal == 0 {
				seedVal = time.Now().UnixNano()
			}
			ds := seed.Generate(seed.Options{Users: users, Bookings: bookings, Seed: seedVal})
			if err := repository.NewStore(out).ReplaceAll(ds.Users, ds.Bookings); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Printf("Data generation complete: %d users and %d bookings written to %s\n", users, bookings, out)
			return nil
		},
	}
	rootCmd.Flags().StringVarP(&out, "out", "o", "data.json", "path of the data file to write")
	rootCmd.Flags().IntVar(&users, "users", 200, "number of users to generate")
	rootCmd.Flags().IntVar(&bookings, "bookings", 200, "number of bookings to generate")
	rootCmd.Flags().Int64Var(&seedVal, "seed", 0, "random seed (0 picks one from the clock)")
	rootCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing data file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
