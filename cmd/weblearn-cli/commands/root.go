package commands

import (
	"context"
	"fmt"
	"os"
	"thuassist-backend/lib/configutil"
	configsqlite "thuassist-backend/lib/configutil/sqlite"
	"thuassist-backend/lib/restyutil"
	"thuassist-backend/lib/scrapers/weblearn"
	"thuassist-backend/lib/serviceutil"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "weblearn-cli",
	Short: "weblearn-cli browses and mirrors the web-learning portal from the terminal.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// base url overrides, mostly useful against a staging portal
	LearnUrl string `json:"learnUrl"`
	AuthUrl  string `json:"authUrl"`
	// optional mirror database; when unset the --db flag decides
	Mirror configsqlite.Struct `json:"mirror"`
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func createClient(ctx context.Context) *weblearn.Client {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	// the output must be registered before the client is built, the
	// instrumentation hooks are attached at construction time
	weblearn.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/weblearn"))
	client, err := weblearn.NewClient(ctx, weblearn.ClientOptions{
		LearnUrl: cfg.LearnUrl,
		AuthUrl:  cfg.AuthUrl,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize client", err)
	}

	err = client.Login(ctx, cfg.Username, cfg.Password)
	if err != nil {
		serviceutil.Fatal("failed to login", err)
	}
	return client
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
