// -- cmd/run.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cbaxter13/webpilot/internal/flow"
	"github.com/cbaxter13/webpilot/internal/observability"
	"github.com/cbaxter13/webpilot/internal/webdriver"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <flow.yaml>",
		Short: "Executes a flow file inside a scoped browser session",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so command-line values override
			// the config file and environment with the right precedence.
			if err := viper.BindPFlag("wait.timeout", cmd.Flags().Lookup("timeout")); err != nil {
				return err
			}
			if err := viper.BindPFlag("driver.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			if err := viper.BindPFlag("driver.browser", cmd.Flags().Lookup("browser")); err != nil {
				return err
			}
			if err := viper.BindPFlag("driver.path", cmd.Flags().Lookup("driver-path")); err != nil {
				return err
			}
			return viper.BindPFlag("screenshot.error_dir", cmd.Flags().Lookup("screenshot-dir"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			// Re-unmarshal so the flag overrides bound in PreRunE land in cfg.
			if err := viper.Unmarshal(cfg); err != nil {
				return fmt.Errorf("failed to apply flag overrides: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			f, err := flow.Load(args[0])
			if err != nil {
				return err
			}
			logger.Info("Loaded flow file.", zap.String("path", args[0]), zap.Int("steps", len(f.Steps)))

			client := webdriver.New(cfg, logger)
			if err := client.SetErrorScreenshotDir(cfg.Screenshot.ErrorDir); err != nil {
				return err
			}

			return client.WithSession(f.URL, func(s *webdriver.Session) error {
				return f.Run(s, logger)
			})
		},
	}

	runCmd.Flags().Duration("timeout", 0, "per-element wait timeout (e.g. 15s)")
	runCmd.Flags().Bool("headless", true, "run the browser headless")
	runCmd.Flags().String("browser", "chrome", "browser to drive (chrome or firefox)")
	runCmd.Flags().String("driver-path", "", "path to the chromedriver/geckodriver binary")
	runCmd.Flags().String("screenshot-dir", "", "directory for failure screenshots")

	return runCmd
}
