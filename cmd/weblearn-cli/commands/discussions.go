package commands

import (
	"log/slog"
	"strings"
	"thuassist-backend/lib/scrapers/weblearn"
	"thuassist-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	discussionsCourse = discussionsCmd.Flags().String("course", "", "The course id to list discussions for.")
	discussionsCmd.MarkFlagRequired("course")
	rootCmd.AddCommand(discussionsCmd)

	questionsCourse = questionsCmd.Flags().String("course", "", "The course id to list questions for.")
	questionsCmd.MarkFlagRequired("course")
	rootCmd.AddCommand(questionsCmd)

	repliesCourse = repliesCmd.Flags().String("course", "", "The course id the discussion belongs to.")
	repliesBoard = repliesCmd.Flags().String("board", "", "The board id the discussion belongs to.")
	repliesCmd.MarkFlagRequired("course")
	repliesCmd.MarkFlagRequired("board")
	rootCmd.AddCommand(repliesCmd)
}

var discussionsCourse *string

var discussionsCmd = &cobra.Command{
	Use:   "discussions --course <course-id>",
	Short: "List the discussions of a course.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		discussions, err := client.DiscussionList(cmd.Context(), *discussionsCourse)
		if err != nil {
			if len(discussions) == 0 {
				serviceutil.Fatal("failed to fetch discussions", err)
			}
			slog.Warn("some discussion records were dropped", "error", err.Error())
		}

		t := newTable()
		t.AppendHeader(table.Row{"id", "board", "title", "publisher", "published", "replies"})
		for _, d := range discussions {
			t.AppendRow(table.Row{
				d.Id, d.BoardId, d.Title, d.PublisherName,
				formatTime(d.PublishTime), d.ReplyCount,
			})
		}
		t.Render()
	},
}

var questionsCourse *string

var questionsCmd = &cobra.Command{
	Use:   "questions --course <course-id>",
	Short: "List the course questions of a course.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		questions, err := client.QuestionList(cmd.Context(), *questionsCourse)
		if err != nil {
			if len(questions) == 0 {
				serviceutil.Fatal("failed to fetch questions", err)
			}
			slog.Warn("some question records were dropped", "error", err.Error())
		}

		t := newTable()
		t.AppendHeader(table.Row{"id", "title", "question", "publisher", "published"})
		for _, q := range questions {
			t.AppendRow(table.Row{
				q.Id, q.Title, q.Content, q.PublisherName, formatTime(q.PublishTime),
			})
		}
		t.Render()
	},
}

var repliesCourse *string
var repliesBoard *string

var repliesCmd = &cobra.Command{
	Use:   "replies <discussion-id> --course <course-id> --board <board-id>",
	Short: "Show the reply tree of a discussion.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		replies, err := client.DiscussionReplies(
			cmd.Context(), *repliesCourse, args[0], *repliesBoard,
		)
		if err != nil {
			serviceutil.Fatal("failed to fetch replies", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"id", "author", "published", "content"})
		appendReplies(t, replies, "")
		t.Render()
	},
}

func appendReplies(t table.Writer, replies []weblearn.DiscussionReply, indent string) {
	for _, r := range replies {
		t.AppendRow(table.Row{
			r.Id, indent + r.Author, formatTime(r.PublishTime),
			indent + strings.TrimSpace(r.Content),
		})
		appendReplies(t, r.Replies, indent+"  ")
	}
}
