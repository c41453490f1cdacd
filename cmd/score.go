package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/meshachvetz/classalloc/internal/scorer"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a roster's current class assignment",
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

		result := scorer.Score(school, cfg)
		fmt.Printf("final score: %.2f\n", result.FinalScore)
		fmt.Printf("  student layer: %.2f\n", result.StudentLayerScore)
		fmt.Printf("  class layer:   %.2f\n", result.ClassLayerScore)
		fmt.Printf("  school layer:  %.2f\n", result.SchoolLayerScore)
		return nil
	},
}
