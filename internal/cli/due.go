package cli

import (
	"fmt"
	"time"

	"github.com/revisio/revisio/internal/scheduler"
	"github.com/spf13/cobra"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "Show the review queue",
	RunE:  runDue,
}

func runDue(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	subjects, err := db.ListSubjects(false)
	if err != nil {
		return fmt.Errorf("list subjects: %w", err)
	}

	queue := scheduler.Classify(subjects, time.Now())
	if queue.Total() == 0 {
		fmt.Println("No topics yet. Add some with 'revisio add topic'.")
		return nil
	}

	printBucket("Never reviewed", queue.NeverReviewed)
	printBucket("Overdue", queue.Overdue)
	printBucket("Due", queue.Due)
	printBucket("Upcoming", queue.Upcoming)

	if len(queue.Fresh) > 0 {
		fmt.Printf("%d topic(s) fresh, nothing to do there.\n", len(queue.Fresh))
	}
	return nil
}

func printBucket(label string, entries []scheduler.Entry) {
	if len(entries) == 0 {
		return
	}
	fmt.Printf("%s (%d):\n", label, len(entries))
	for _, e := range entries {
		if e.Topic.Memory == nil {
			fmt.Printf("  %s / %s\n", e.SubjectName, e.Topic.Name)
			continue
		}
		fmt.Printf("  %s / %s  recall %.0f%%, due %s\n",
			e.SubjectName, e.Topic.Name, e.Retrievability*100, e.DueDate.Format("2006-01-02"))
	}
	fmt.Println()
}
