package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a subject or topic",
}

var addSubjectExam string

var addSubjectCmd = &cobra.Command{
	Use:   "subject [name]",
	Short: "Add a subject, optionally with an exam date",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddSubject,
}

var addTopicMaterial string

var addTopicCmd = &cobra.Command{
	Use:   "topic [subject] [name]",
	Short: "Add a topic to a subject",
	Args:  cobra.ExactArgs(2),
	RunE:  runAddTopic,
}

func init() {
	addSubjectCmd.Flags().StringVar(&addSubjectExam, "exam", "", "Exam date (YYYY-MM-DD)")
	addTopicCmd.Flags().StringVar(&addTopicMaterial, "material", "", "File with source material for quiz generation")

	addCmd.AddCommand(addSubjectCmd)
	addCmd.AddCommand(addTopicCmd)
}

func runAddSubject(cmd *cobra.Command, args []string) error {
	var exam *time.Time
	if addSubjectExam != "" {
		t, err := time.ParseInLocation("2006-01-02", addSubjectExam, time.Local)
		if err != nil {
			return fmt.Errorf("--exam must be YYYY-MM-DD: %w", err)
		}
		exam = &t
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	sub, err := db.CreateSubject(args[0], exam)
	if err != nil {
		return fmt.Errorf("create subject: %w", err)
	}

	if sub.ExamDate != nil {
		fmt.Printf("Added subject %s (exam %s)\n", sub.Name, sub.ExamDate.Format("2006-01-02"))
	} else {
		fmt.Printf("Added subject %s\n", sub.Name)
	}
	return nil
}

func runAddTopic(cmd *cobra.Command, args []string) error {
	material := ""
	if addTopicMaterial != "" {
		data, err := os.ReadFile(addTopicMaterial)
		if err != nil {
			return fmt.Errorf("read material: %w", err)
		}
		material = string(data)
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

	topic, err := db.CreateTopic(sub.ID, args[1], material)
	if err != nil {
		return fmt.Errorf("create topic: %w", err)
	}

	fmt.Printf("Added topic %s to %s\n", topic.Name, sub.Name)
	return nil
}
