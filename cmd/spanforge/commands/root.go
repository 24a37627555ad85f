package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	spanconfig "github.com/assafkip/spanforge/pkg/config"
	"github.com/assafkip/spanforge/pkg/version"
)

var (
	cfgFile  string
	auditLog string
	outDir   string
	verbose  bool
	headless bool
)

var rootCmd = &cobra.Command{
	Use:   "spanforge",
	Short: "The Zero-Inference Rule Compiler",
	Long: `SpanForge - Evidence-Grounded Detection Rules

Extract. Compile. Certify.`,
	Version:       version.Current,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Run: nil (Forces help output).
	Run: nil,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent Flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.spanforge.yaml)")
	rootCmd.PersistentFlags().StringVar(&auditLog, "audit-log", spanconfig.DefaultAuditLog, "Path to the hash-chained audit log")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", spanconfig.DefaultOutDir, "Artifact output directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable per-gate and per-rule debug logging")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", false, "Plain output, no dashboard styling")

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderGlassHelp(cmd)
	})
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.SetConfigFile(filepath.Join(home, ".spanforge.yaml"))
			viper.SetConfigType("yaml")
		}
	}
	viper.SetEnvPrefix("spanforge")
	viper.AutomaticEnv()
	viper.ReadInConfig()

	// Flags win; the config file and SPANFORGE_* env fill in what was not set.
	if !rootCmd.PersistentFlags().Changed("audit-log") {
		if v := viper.GetString("audit_log"); v != "" {
			auditLog = v
		}
	}
	if !rootCmd.PersistentFlags().Changed("out") {
		if v := viper.GetString("out"); v != "" {
			outDir = v
		}
	}
}

// newLogger builds the logger commands hand to the engine and components.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func renderGlassHelp(cmd *cobra.Command) {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00FF99")).
		MarginBottom(1)

	flagStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA"))

	fmt.Println(titleStyle.Render(fmt.Sprintf("SPANFORGE %s", version.Current)))
	fmt.Println("Evidence-grounded detection rules with zero inference.")

	fmt.Println(titleStyle.Render("USAGE"))
	fmt.Printf("  %s\n\n", cmd.UseLine())

	fmt.Println(titleStyle.Render("COMMANDS"))
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() {
			fmt.Printf("  %-12s %s\n", c.Name(), c.Short)
		}
	}
	fmt.Println("")

	fmt.Println(titleStyle.Render("FLAGS"))
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		output := fmt.Sprintf("  --%-15s %s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
			output += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		fmt.Println(flagStyle.Render(output))
	})
	fmt.Println("")
}
