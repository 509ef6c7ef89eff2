package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/termul/termul/internal/config"
	"github.com/termul/termul/internal/logger"
	"github.com/termul/termul/internal/orchestrator"
	"github.com/termul/termul/internal/report"
	"github.com/termul/termul/internal/telemetry"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "termul <target>",
	Short: "Black-box authorization and business-logic probe engine",
	Long: `Termul fires a fixed battery of concurrent HTTP checks against a target:
exposed admin routes, missing authentication, insecure direct object
references, privilege escalation, and workflow bypass.

Positive results are classified by risk, probing halts once enough critical
findings accumulate, requests are paced to stay under the radar of simple
rate-based defenses, and finding types are correlated with the business
impact they imply.

Examples:
  termul https://target.example --token $USER_JWT
  termul target.example --token $USER_JWT --json
  termul https://target.example --concurrency 5 --pacing-delay 3s`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScan,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .termul.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	rootCmd.Flags().String("token", "", "bearer token used by authenticated checks")
	rootCmd.Flags().Int("concurrency", 10, "max simultaneous in-flight requests")
	rootCmd.Flags().Duration("pacing-delay", config.Default().Scan.PacingDelay, "delay before each check task's first request")
	rootCmd.Flags().Duration("timeout", config.Default().HTTP.Timeout, "per-request timeout")
	rootCmd.Flags().Int("critical-stop-threshold", config.Default().Scan.CriticalStopThreshold, "critical finding count that halts the scan")
	rootCmd.Flags().Bool("json", false, "emit the scan result as JSON instead of the console report")

	viper.BindPFlag("logger.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logger.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("scan.max_concurrency", rootCmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("scan.pacing_delay", rootCmd.Flags().Lookup("pacing-delay"))
	viper.BindPFlag("scan.critical_stop_threshold", rootCmd.Flags().Lookup("critical-stop-threshold"))
	viper.BindPFlag("http.timeout", rootCmd.Flags().Lookup("timeout"))

	viper.BindEnv("logger.level", "TERMUL_LOG_LEVEL")
	viper.BindEnv("logger.format", "TERMUL_LOG_FORMAT")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".termul")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TERMUL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; defaults and flags cover everything.
	_ = viper.ReadInConfig()
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer tel.Close()

	baseURL := strings.TrimRight(args[0], "/")
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}
	token, _ := cmd.Flags().GetString("token")

	engine := orchestrator.NewEngine(cfg, log)
	result, runErr := engine.Run(ctx, orchestrator.Target{
		BaseURL: baseURL,
		Token:   token,
	})

	tel.RecordScan(result.CompletedAt.Sub(result.StartedAt).Seconds(), result.Summary.Total, result.Stopped)
	for _, f := range result.Findings {
		tel.RecordFinding(f.Risk)
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		if err := report.WriteJSON(os.Stdout, result); err != nil {
			return fmt.Errorf("failed to write JSON report: %w", err)
		}
	} else {
		report.Render(os.Stdout, result)
	}

	return runErr
}
