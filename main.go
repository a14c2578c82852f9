package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"devopsbot/internal/alerts"
	"devopsbot/internal/anomaly"
	"devopsbot/internal/metrics"
	"devopsbot/internal/telemetry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "devopsbot",
	Short: "Telegram bot for host health, alerts and container log tails",
	Long: `Run the Telegram bot. It answers health commands, pushes threshold
and anomaly alerts to the operator, and streams Docker container logs.

Several hosts can share one bot token: prefix a command with a host name
and only that host answers.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		return runBot(cmd.Context(), cfg)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print host health and active alerts to the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		setupLogger("", "error")
		return printStatus(cmd.Context(), cfg)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with the token redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg.Redacted())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: ./config.json when present)")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "fatal panic: %v\n%s", r, debug.Stack())
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func runBot(ctx context.Context, cfg *Config) error {
	setupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLogger()

	if err := cfg.validate(); err != nil {
		return err
	}
	if cfg.HostIP == "" {
		cfg.HostIP = detectHostIP(ctx)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("telegram login: %w", err)
	}
	slog.Info("Bot started", "user", bot.Self.UserName, "host", cfg.HostName, "ip", cfg.HostIP)

	tel := telemetry.New()
	app := InitApp(cfg, bot, tel)
	defer app.Close()

	reg := SetupCommandRegistry()
	registerBotCommands(bot, reg)

	go app.Scheduler.Run(ctx)

	if cfg.MetricsAddr != "" {
		srv := telemetry.NewServer(tel, cfg.HostName, moduleLogger("telemetry"))
		go func() {
			if err := srv.Run(ctx, cfg.MetricsAddr); err != nil {
				slog.Error("Telemetry server stopped", "err", err)
			}
		}()
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down")
			bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go handleUpdate(app, bot, reg, update)
		}
	}
}

// printStatus takes a single reading. The anomaly window starts empty, so
// only fixed thresholds can show up here.
func printStatus(ctx context.Context, cfg *Config) error {
	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if cfg.HostIP == "" {
		cfg.HostIP = detectHostIP(c)
	}
	source := metrics.NewHostSource(cfg.DiskPath, cfg.CPUSampleInterval())
	engine := alerts.NewEngine(source, anomaly.NewDetector(anomaly.Config{}), slog.Default(), nil)

	st, err := engine.EvaluateNow(c)
	if err != nil {
		return err
	}
	fmt.Print(renderTerminalStatus(alerts.Header{Host: cfg.HostName, IP: cfg.HostIP}, st))
	return nil
}
