package commands

import (
	"log/slog"
	"strings"
	"thuassist-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(semestersCmd)

	coursesSemester = coursesCmd.Flags().String("semester", "", "The semester id to list courses for.")
	coursesCmd.MarkFlagRequired("semester")
	rootCmd.AddCommand(coursesCmd)
}

var semestersCmd = &cobra.Command{
	Use:   "semesters",
	Short: "List the semester ids known to the portal.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		ids, err := client.SemesterIdList(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to fetch semester ids", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"semester id"})
		for _, id := range ids {
			t.AppendRow(table.Row{id})
		}
		t.Render()
	},
}

var coursesSemester *string

var coursesCmd = &cobra.Command{
	Use:   "courses --semester <semester-id>",
	Short: "List the courses of a semester.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		courses, err := client.CourseList(cmd.Context(), *coursesSemester)
		if err != nil {
			if len(courses) == 0 {
				serviceutil.Fatal("failed to fetch course list", err)
			}
			slog.Warn("some course records were dropped", "error", err.Error())
		}

		t := newTable()
		t.AppendHeader(table.Row{"id", "name", "english name", "teacher", "time/location"})
		for _, c := range courses {
			t.AppendRow(table.Row{
				c.Id, c.Name, c.EnglishName, c.TeacherName,
				strings.Join(c.TimeLocation, "\n"),
			})
		}
		t.Render()
	},
}
