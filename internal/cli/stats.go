package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/revisio/revisio/internal/stats"
	"github.com/spf13/cobra"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show study-time statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 7, "Number of days to show")
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsDays < 1 || statsDays > 365 {
		return fmt.Errorf("--days must be 1-365")
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	data, err := db.LoadAll()
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}

	now := time.Now()
	days := stats.MinutesByDay(data.Sessions, statsDays, now)

	fmt.Printf("Last %d day(s):\n", statsDays)
	for _, d := range days {
		bar := strings.Repeat("#", d.Minutes/10)
		fmt.Printf("  %s %4dm %s\n", d.Date.Format("Mon 02.01"), d.Minutes, bar)
	}

	fmt.Printf("\nStreak: %d day(s) (longest %d)\n",
		stats.CurrentStreak(data.Sessions, now), stats.LongestStreak(data.Sessions))
	fmt.Printf("Total:  %dm\n", stats.TotalMinutes(data.Sessions))

	breakdown := stats.MinutesBySubject(data.Sessions, data.ActiveSubjects())
	if len(breakdown) > 0 {
		fmt.Println("\nBy subject:")
		for _, s := range breakdown {
			fmt.Printf("  %-20s %4dm  %5.1f%%\n", s.SubjectName, s.Minutes, s.Percentage)
		}
	}
	return nil
}
