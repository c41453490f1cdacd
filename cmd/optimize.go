package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/meshachvetz/classalloc/internal/initializer"
	"github.com/meshachvetz/classalloc/internal/portfolio"
)

var (
	optAlgorithm     string
	optMaxIterations int
	optInitStrategy  string
	optAutoInit      bool
	optTargetClasses int
	optSeed          int64
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run a metaheuristic optimizer against a roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q", logLevel)
		}
		logrus.SetLevel(level)

		school, err := loadRoster(rosterPath)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"algorithm":      optAlgorithm,
			"max_iterations": optMaxIterations,
			"seed":           optSeed,
		}).Info("starting optimization run")

		res, err := portfolio.Optimize(portfolio.Request{
			School:                 school,
			Algorithm:              optAlgorithm,
			MaxIterations:          optMaxIterations,
			Config:                 cfg,
			InitializationStrategy: optInitStrategy,
			AutoInitialize:         optAutoInit,
			TargetClasses:          optTargetClasses,
			Seed:                   optSeed,
		})
		if err != nil {
			return err
		}

		logrus.Info("optimization complete")
		fmt.Printf("algorithm:        %s\n", res.AlgorithmName)
		fmt.Printf("initial score:    %.4f\n", res.InitialScore)
		fmt.Printf("final score:      %.4f\n", res.FinalScore)
		fmt.Printf("improvement:      %.4f (%.2f%%)\n", res.Improvement, res.ImprovementPercentage())
		fmt.Printf("iterations:       %d/%d (%.1f%% success)\n", res.IterationsCompleted, res.IterationsRequested, res.SuccessRate())
		fmt.Printf("elapsed:          %s\n", res.ElapsedTime)
		fmt.Printf("constraints met:  %v\n", res.ConstraintsSatisfied)
		if !res.ConstraintsSatisfied {
			for _, v := range res.Violations {
				fmt.Printf("  - %s\n", v.String())
			}
		}
		return nil
	},
}

func init() {
	optimizeCmd.Flags().StringVar(&optAlgorithm, "algorithm", portfolio.AlgorithmRandomSwap, "algorithm to run (random_swap, local_search, simulated_annealing, genetic)")
	optimizeCmd.Flags().IntVar(&optMaxIterations, "max-iterations", 1000, "maximum iterations to run")
	optimizeCmd.Flags().StringVar(&optInitStrategy, "init-strategy", initializer.Balanced, "initialization strategy used when auto-init is set")
	optimizeCmd.Flags().BoolVar(&optAutoInit, "auto-init", false, "initialize unassigned students before optimizing")
	optimizeCmd.Flags().IntVar(&optTargetClasses, "target-classes", 0, "target class count for auto-init (0 = count of non-empty classes, else derive from student count)")
	optimizeCmd.Flags().Int64Var(&optSeed, "seed", 42, "RNG seed for the run")
}
