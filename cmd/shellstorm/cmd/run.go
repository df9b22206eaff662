package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shellstorm/server/pkg/config"
	"github.com/shellstorm/server/pkg/logger"
	"github.com/shellstorm/server/pkg/reporting"
	"github.com/shellstorm/server/pkg/scenario"
	"github.com/shellstorm/server/pkg/utils"

	// Import scenarios to register them
	_ "github.com/shellstorm/server/cmd/ballistics"
	_ "github.com/shellstorm/server/cmd/helisoak"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario",
	Long:  `Run an offline scenario interactively or with specified parameters`,
	RunE:  runScenario,
}

func init() {
	runCmd.Flags().StringP("scenario", "s", "", "scenario name to run")
}

func runScenario(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfigOrDefault(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	name, err := selectScenario(cmd)
	if err != nil {
		return fmt.Errorf("failed to select scenario: %w", err)
	}

	sc, err := scenario.DefaultRegistry.Get(name)
	if err != nil {
		return fmt.Errorf("failed to get scenario: %w", err)
	}

	params, err := utils.PromptForParameters(sc.Parameters())
	if err != nil {
		return fmt.Errorf("failed to get parameters: %w", err)
	}

	if err := sc.Configure(params); err != nil {
		return fmt.Errorf("failed to configure scenario: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Warn("\nReceived interrupt signal, stopping scenario...")
		if err := sc.Stop(); err != nil {
			logger.Errorf("Failed to stop scenario: %v", err)
			return
		}
		cancel()
	}()

	reporter := reporting.NewScenarioLogger(uuid.NewString())
	env := &scenario.Environment{
		Config:   cfg,
		Reporter: reporter,
	}

	logger.LogSection(fmt.Sprintf("Starting %s", sc.Name()))
	if err := sc.Run(ctx, env); err != nil {
		return fmt.Errorf("scenario failed: %w", err)
	}

	reporter.PrintSummary()
	logger.Success("Scenario completed successfully")
	return nil
}

func selectScenario(cmd *cobra.Command) (string, error) {
	// Check if scenario is specified via flag
	name, _ := cmd.Flags().GetString("scenario")
	if name != "" {
		return name, nil
	}

	names := scenario.DefaultRegistry.List()
	if len(names) == 0 {
		return "", fmt.Errorf("no scenarios registered")
	}

	descriptions := make(map[string]string)
	for _, n := range names {
		if sc, err := scenario.DefaultRegistry.Get(n); err == nil {
			descriptions[n] = sc.Description()
		}
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select scenario:",
		Options: names,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	return selected, nil
}
