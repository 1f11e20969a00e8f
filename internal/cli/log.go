package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/revisio/revisio/internal/model"
	"github.com/spf13/cobra"
)

var logTopic string

var logCmd = &cobra.Command{
	Use:   "log [subject] [minutes]",
	Short: "Record a study session against the running server",
	Args:  cobra.ExactArgs(2),
	RunE:  runLog,
}

func init() {
	logCmd.Flags().StringVar(&logTopic, "topic", "", "Topic the session was spent on")
}

func runLog(cmd *cobra.Command, args []string) error {
	minutes, err := strconv.Atoi(args[1])
	if err != nil || minutes < 1 {
		return fmt.Errorf("minutes must be a positive number")
	}

	c := newAPIClient()
	if !c.healthy() {
		return fmt.Errorf("no server at %s; start one with 'revisio serve'", c.serverURL)
	}

	data, err := c.get("/api/subjects?archived=true")
	if err != nil {
		return err
	}
	var listing struct {
		Subjects []model.Subject `json:"subjects"`
	}
	if err := json.Unmarshal(data, &listing); err != nil {
		return fmt.Errorf("decode subjects: %w", err)
	}

	needle := strings.ToLower(args[0])
	var subjectID, topicID string
	for _, s := range listing.Subjects {
		if strings.ToLower(s.Name) != needle {
			continue
		}
		subjectID = s.ID
		if logTopic != "" {
			full, err := c.get("/api/subjects/" + s.ID)
			if err != nil {
				return err
			}
			var sub model.Subject
			if err := json.Unmarshal(full, &sub); err != nil {
				return fmt.Errorf("decode subject: %w", err)
			}
			for _, t := range sub.Topics {
				if strings.EqualFold(t.Name, logTopic) {
					topicID = t.ID
					break
				}
			}
			if topicID == "" {
				return fmt.Errorf("no topic %q in %s", logTopic, s.Name)
			}
		}
		break
	}
	if subjectID == "" {
		return fmt.Errorf("no subject named %q", args[0])
	}

	body, _ := json.Marshal(map[string]any{
		"subject_id": subjectID,
		"topic_id":   topicID,
		"duration":   minutes,
	})
	if _, err := c.post("/api/sessions", body); err != nil {
		return err
	}

	fmt.Printf("Logged %dm on %s\n", minutes, args[0])
	return nil
}
