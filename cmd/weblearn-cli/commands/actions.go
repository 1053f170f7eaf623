package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"thuassist-backend/lib/scrapers/weblearn"
	"thuassist-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	submitContent = submitCmd.Flags().String("content", "", "The text content of the submission.")
	submitFile = submitCmd.Flags().String("file", "", "Path of a file to attach to the submission.")
	rootCmd.AddCommand(submitCmd)

	replyCourse = replyCmd.Flags().String("course", "", "The course id the discussion belongs to.")
	replyContent = replyCmd.Flags().String("content", "", "The text content of the reply.")
	replyTo = replyCmd.Flags().String("to", "", "Id of the reply to respond to instead of the discussion itself.")
	replyFile = replyCmd.Flags().String("file", "", "Path of a file to attach to the reply.")
	replyCmd.MarkFlagRequired("course")
	replyCmd.MarkFlagRequired("content")
	rootCmd.AddCommand(replyCmd)

	deleteReplyCourse = deleteReplyCmd.Flags().String("course", "", "The course id the reply belongs to.")
	deleteReplyCmd.MarkFlagRequired("course")
	rootCmd.AddCommand(deleteReplyCmd)
}

func readUpload(path string) *weblearn.UploadFile {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		serviceutil.Fatal("failed to read attachment", err)
	}
	return &weblearn.UploadFile{
		Name: filepath.Base(path),
		Data: data,
	}
}

var submitContent *string
var submitFile *string

var submitCmd = &cobra.Command{
	Use:   "submit <student-homework-id> [--content <text>] [--file <path>]",
	Short: "Submit a homework.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		err := client.SubmitHomework(cmd.Context(), weblearn.SubmitHomeworkRequest{
			StudentHomeworkId: args[0],
			Content:           *submitContent,
			Attachment:        readUpload(*submitFile),
		})
		if err != nil {
			serviceutil.Fatal("failed to submit homework", err)
		}
		slog.Info("submitted", "studentHomeworkId", args[0])
	},
}

var replyCourse *string
var replyContent *string
var replyTo *string
var replyFile *string

var replyCmd = &cobra.Command{
	Use:   "reply <discussion-id> --course <course-id> --content <text> [--to <reply-id>] [--file <path>]",
	Short: "Reply to a discussion, or to a reply within it.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		err := client.ReplyDiscussion(cmd.Context(), weblearn.ReplyDiscussionRequest{
			CourseId:          *replyCourse,
			DiscussionId:      args[0],
			Content:           *replyContent,
			RespondentReplyId: *replyTo,
			Attachment:        readUpload(*replyFile),
		})
		if err != nil {
			serviceutil.Fatal("failed to reply", err)
		}
		slog.Info("replied", "discussionId", args[0])
	},
}

var deleteReplyCourse *string

var deleteReplyCmd = &cobra.Command{
	Use:   "delete-reply <reply-id> --course <course-id>",
	Short: "Delete one of your own discussion replies.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		err := client.DeleteDiscussionReply(cmd.Context(), *deleteReplyCourse, args[0])
		if err != nil {
			serviceutil.Fatal("failed to delete reply", err)
		}
		slog.Info("deleted", "replyId", args[0])
	},
}
