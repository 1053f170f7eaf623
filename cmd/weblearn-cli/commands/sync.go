package commands

import (
	"database/sql"
	"log/slog"
	"strings"
	"thuassist-backend/lib/serviceutil"
	"thuassist-backend/lib/sqliteutil"
	"thuassist-backend/services/learnsync"
	"thuassist-backend/services/learnsync/db"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// openMirror prefers the mirror database declared in the config, which
// may point at a remote libsql instance; the flag path is the local
// fallback.
func openMirror(flagPath string) *sql.DB {
	cfg := loadConfig()
	if cfg.Mirror.File == "" && cfg.Mirror.Url == "" {
		database, err := sqliteutil.OpenDB(db.Schema, flagPath)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		return database
	}

	database, err := cfg.Mirror.OpenDB()
	if err != nil {
		serviceutil.Fatal("failed to open configured mirror db", err)
	}
	_, err = database.Exec(db.Schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		serviceutil.Fatal("failed to apply schema", err)
	}
	return database
}

func init() {
	syncSemester = syncCmd.Flags().String("semester", "", "The semester id to sync.")
	syncDb = syncCmd.Flags().String("db", "learnsync.db", "The database to mirror course content into.")
	syncCourses = syncCmd.Flags().StringArray("course", nil, "Course name to sync, repeatable; defaults to every course.")
	syncCmd.MarkFlagRequired("semester")
	rootCmd.AddCommand(syncCmd)

	mirrorDb = mirrorCmd.Flags().String("db", "learnsync.db", "The database the mirror lives in.")
	rootCmd.AddCommand(mirrorCmd)
}

var syncSemester *string
var syncDb *string
var syncCourses *[]string

var syncCmd = &cobra.Command{
	Use:   "sync --semester <semester-id> [--db <path>] [--course <name>]...",
	Short: "Mirror course content into a local database.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		database := openMirror(*syncDb)
		defer database.Close()

		service := learnsync.NewService(database, client)

		t1 := time.Now()
		results, err := service.Sync(cmd.Context(), learnsync.SyncRequest{
			SemesterId: *syncSemester,
			Courses:    *syncCourses,
		})
		if err != nil {
			serviceutil.Fatal("failed to sync", err)
		}
		t2 := time.Now()

		t := newTable()
		t.AppendHeader(table.Row{"course", "notifications", "files", "homework", "discussions", "questions"})
		for _, r := range results {
			t.AppendRow(table.Row{
				r.CourseName, r.Notifications, r.Files, r.Homework,
				r.Discussions, r.Questions,
			})
		}
		t.Render()

		slog.Info("sync time", "seconds", t2.Sub(t1).Seconds())
	},
}

var mirrorDb *string

var mirrorCmd = &cobra.Command{
	Use:   "mirror [--db <path>]",
	Short: "List the locally mirrored courses.",
	Run: func(cmd *cobra.Command, args []string) {
		database := openMirror(*mirrorDb)
		defer database.Close()

		service := learnsync.NewService(database, nil)
		courses, err := service.Courses(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list mirrored courses", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"id", "name", "semester", "synced at"})
		for _, c := range courses {
			t.AppendRow(table.Row{
				c.ID, c.Name, c.SemesterID,
				time.Unix(c.SyncedAt, 0).Format("2006-01-02 15:04"),
			})
		}
		t.Render()
	},
}
