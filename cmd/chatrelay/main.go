// Command chatrelay is the chatbot orchestration gateway's entrypoint: it
// resolves configuration from flags/environment (internal/profile),
// opens the store and shared-store connections, wires every §4 component
// together, and serves the HTTP boundary (server package) until a
// termination signal arrives.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/chatrelay/aiclient"
	"github.com/hrygo/chatrelay/configstore"
	"github.com/hrygo/chatrelay/dispatch"
	"github.com/hrygo/chatrelay/historycache"
	"github.com/hrygo/chatrelay/internal/profile"
	"github.com/hrygo/chatrelay/internal/version"
	"github.com/hrygo/chatrelay/jobs"
	"github.com/hrygo/chatrelay/lock"
	"github.com/hrygo/chatrelay/metrics"
	"github.com/hrygo/chatrelay/orchestrator"
	"github.com/hrygo/chatrelay/plugin/telegram"
	"github.com/hrygo/chatrelay/server"
	"github.com/hrygo/chatrelay/sharedstore"
	"github.com/hrygo/chatrelay/store"
	"github.com/hrygo/chatrelay/store/db"
	"github.com/hrygo/chatrelay/worker"
)

var rootCmd = &cobra.Command{
	Use:   "chatrelay",
	Short: `A chatbot orchestration gateway. Coalesces concurrent conversation updates, invokes a configurable AI endpoint, and dispatches its decision to the originating platform.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if !isRunningAsSystemdService() {
			_ = godotenv.Load()
		}
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:     viper.GetString("mode"),
			Addr:     viper.GetString("addr"),
			Port:     viper.GetInt("port"),
			UNIXSock: viper.GetString("unix-sock"),
			Driver:   viper.GetString("driver"),
			DSN:      viper.GetString("dsn"),
			Version:  version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			panic(err)
		}

		ctx, cancel := context.WithCancel(context.Background())

		app, err := buildApp(ctx, instanceProfile)
		if err != nil {
			cancel()
			slog.Error("failed to build application", "error", err)
			return
		}

		c := make(chan os.Signal, 1)
		signal.Notify(c, terminationSignals...)

		go func() {
			if err := app.server.Start(ctx); err != nil {
				if !errors.Is(err, http.ErrServerClosed) {
					slog.Error("failed to start server", "error", err)
					cancel()
				}
			}
		}()

		printGreetings(instanceProfile)

		go func() {
			<-c
			app.server.Shutdown(ctx)
			if err := app.db.Close(); err != nil {
				slog.Error("failed to close store", "error", err)
			}
			cancel()
		}()

		<-ctx.Done()
	},
}

// app bundles every constructed dependency for lifecycle management.
type app struct {
	db     *store.Store
	server *server.Server
}

// buildApp wires the §4 components together exactly as orchestrator.Handler
// expects them (spec §9: explicit construction, no global singletons).
func buildApp(ctx context.Context, p *profile.Profile) (*app, error) {
	driver, err := db.NewDriver(ctx, p)
	if err != nil {
		return nil, err
	}
	dataStore := store.New(driver)

	shared, err := sharedstore.NewRedisStore(p.RedisURL)
	if err != nil {
		return nil, err
	}

	metricsExporter := metrics.NewPrometheusExporter(metrics.DefaultConfig())

	config := configstore.New(dataStore)
	locks := lock.NewManager(lock.NewRedisBackend(shared), lock.NewMemoryBackend(), metricsExporter)
	registry := jobs.NewRegistry(shared)
	hc := historycache.New(shared)
	aiCli := aiclient.NewClient()
	dispatcher := dispatch.New(worker.NewDispatchLockChecker(locks)).WithMetrics(metricsExporter)

	w := worker.New(registry, locks, aiCli, dispatcher, hc, p.DBPoolSize*8).WithMetrics(metricsExporter)

	handler := orchestrator.New(dataStore, config, locks, registry, hc, w)

	srv := server.New(p, dataStore, handler, metricsExporter)

	if p.TelegramBotToken != "" {
		intake, err := telegram.New(telegram.Config{BotToken: p.TelegramBotToken}, dataStore, handler)
		if err != nil {
			slog.Warn("telegram intake channel disabled", "error", err)
		} else {
			srv = srv.WithTelegramIntake(intake)
		}
	}

	return &app{db: dataStore, server: srv}, nil
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("driver", "postgres")
	viper.SetDefault("port", 8090)

	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8090, "port of server")
	rootCmd.PersistentFlags().String("unix-sock", "", "path to the unix socket, overrides --addr and --port")
	rootCmd.PersistentFlags().String("driver", "postgres", "database driver (postgres, sqlite)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (DSN)")

	for _, f := range []string{"mode", "addr", "port", "unix-sock", "driver", "dsn"} {
		if err := viper.BindPFlag(f, rootCmd.PersistentFlags().Lookup(f)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("chatrelay")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(p *profile.Profile) {
	fmt.Printf("chatrelay %s started successfully!\n", p.Version)
	fmt.Printf("Mode: %s\n", p.Mode)
	fmt.Printf("Database driver: %s\n", p.Driver)
	if len(p.UNIXSock) == 0 {
		fmt.Printf("Server running on port %d\n", p.Port)
	} else {
		fmt.Printf("Server running on unix socket: %s\n", p.UNIXSock)
	}
}

func isRunningAsSystemdService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
