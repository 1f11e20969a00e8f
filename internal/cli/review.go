package cli

import (
	"fmt"
	"time"

	"github.com/revisio/revisio/internal/memory"
	"github.com/revisio/revisio/internal/scheduler"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review [subject] [topic] [grade]",
	Short: "Grade a review of a topic",
	Long:  "Records a review with one of the grades again, hard, good, or easy, and prints the next review date.",
	Args:  cobra.ExactArgs(3),
	RunE:  runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	grade, err := memory.ParseGrade(args[2])
	if err != nil {
		return err
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
	topic, err := findTopic(sub, args[1])
	if err != nil {
		return err
	}

	res, err := scheduler.GradeTopic(*topic, grade, time.Now())
	if err != nil {
		return fmt.Errorf("grade topic: %w", err)
	}
	if err := db.SaveReview(&res.Topic, &res.Event); err != nil {
		return fmt.Errorf("save review: %w", err)
	}

	due, err := memory.DueDate(res.Topic.Memory)
	if err != nil {
		return fmt.Errorf("due date: %w", err)
	}
	fmt.Printf("%s: next review in %d day(s), on %s\n",
		res.Topic.Name, res.Event.NewInterval, due.Format("2006-01-02"))
	return nil
}
