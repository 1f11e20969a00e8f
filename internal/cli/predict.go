package cli

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/revisio/revisio/internal/readiness"
	"github.com/spf13/cobra"
)

var predictTrials int

var predictCmd = &cobra.Command{
	Use:   "predict [subject]",
	Short: "Predict exam readiness for a subject",
	Args:  cobra.ExactArgs(1),
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().IntVar(&predictTrials, "trials", 1000, "Simulation trial count")
}

func runPredict(cmd *cobra.Command, args []string) error {
	if predictTrials < 1 || predictTrials > 100000 {
		return fmt.Errorf("--trials must be 1-100000")
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	sub, err := findSubject(db, args[0])
	if err != nil {
		return err
	}

	report := readiness.Evaluate(sub, time.Now())

	fmt.Printf("%s: %.0f%% ready (%s)\n", report.SubjectName, report.Readiness, report.Status)
	fmt.Printf("  coverage  %.0f%%\n", report.Coverage*100)
	fmt.Printf("  retention %.0f%%\n", report.Retention*100)
	if report.DaysUntilExam >= 0 {
		fmt.Printf("  exam in   %d day(s)\n", report.DaysUntilExam)
	}
	fmt.Printf("  predicted grade %.1f\n", report.PredictedGrade)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	band := readiness.Simulate(sub, predictTrials, rng)
	if band.Trials > 0 {
		fmt.Printf("  grade band %.1f - %.1f (%d trials)\n", band.WorstCase, band.BestCase, band.Trials)
	}
	return nil
}
