package commands

import (
	"fmt"
	"log/slog"
	"thuassist-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	notificationsCourse = notificationsCmd.Flags().String("course", "", "The course id to list notifications for.")
	notificationsCmd.MarkFlagRequired("course")
	rootCmd.AddCommand(notificationsCmd)

	filesCourse = filesCmd.Flags().String("course", "", "The course id to list files for.")
	filesCmd.MarkFlagRequired("course")
	rootCmd.AddCommand(filesCmd)

	homeworkCourse = homeworkCmd.Flags().String("course", "", "The course id to list homework for.")
	homeworkCmd.MarkFlagRequired("course")
	rootCmd.AddCommand(homeworkCmd)
}

var notificationsCourse *string

var notificationsCmd = &cobra.Command{
	Use:   "notifications --course <course-id>",
	Short: "List the notifications of a course.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		notifications, err := client.NotificationList(cmd.Context(), *notificationsCourse)
		if err != nil {
			if len(notifications) == 0 {
				serviceutil.Fatal("failed to fetch notifications", err)
			}
			slog.Warn("some notification records were dropped", "error", err.Error())
		}

		t := newTable()
		t.AppendHeader(table.Row{"id", "title", "publisher", "published", "read", "attachment"})
		for _, n := range notifications {
			t.AppendRow(table.Row{
				n.Id, n.Title, n.Publisher,
				formatTime(n.PublishTime), n.Read, n.AttachmentName,
			})
		}
		t.Render()
	},
}

var filesCourse *string

var filesCmd = &cobra.Command{
	Use:   "files --course <course-id>",
	Short: "List the files of a course.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		files, err := client.FileList(cmd.Context(), *filesCourse)
		if err != nil {
			if len(files) == 0 {
				serviceutil.Fatal("failed to fetch files", err)
			}
			slog.Warn("some file records were dropped", "error", err.Error())
		}

		t := newTable()
		t.AppendHeader(table.Row{"id", "title", "size", "uploaded", "type", "download url"})
		for _, f := range files {
			t.AppendRow(table.Row{
				f.Id, f.Title, f.Size, formatTime(f.UploadTime),
				f.FileType, client.FileDownloadUrl(f),
			})
		}
		t.Render()
	},
}

var homeworkCourse *string

var homeworkCmd = &cobra.Command{
	Use:   "homework --course <course-id>",
	Short: "List the homework of a course, unsubmitted first, graded last.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		homework, err := client.HomeworkList(cmd.Context(), *homeworkCourse)
		if err != nil {
			if len(homework) == 0 {
				serviceutil.Fatal("failed to fetch homework", err)
			}
			slog.Warn("some homework records were dropped", "error", err.Error())
		}

		t := newTable()
		t.AppendHeader(table.Row{"id", "title", "deadline", "submitted", "grade"})
		for _, hw := range homework {
			grade := ""
			if hw.Grade != nil {
				grade = fmt.Sprintf("%g", *hw.Grade)
			}
			t.AppendRow(table.Row{
				hw.Id, hw.Title, formatTime(hw.Deadline),
				formatOptionalTime(hw.SubmitTime), grade,
			})
		}
		t.Render()
	},
}
