package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/posturasec/postura/internal/shared/constants"
)

const configFileName = ".postura.yaml"

// initConfig is the YAML document the wizard writes.
type initConfig struct {
	Defaults initDefaults `yaml:"defaults"`
	Profile  initProfile  `yaml:"profile,omitempty"`
}

type initDefaults struct {
	Project       string  `yaml:"project"`
	FailThreshold float64 `yaml:"fail_threshold"`
	FailOnCrit    bool    `yaml:"fail_on_critical"`
}

type initProfile struct {
	SafeMarker string `yaml:"safe_marker,omitempty"`
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .postura.yaml config interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(configFileName); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configFileName)
		}

		projectPrompt := promptui.Prompt{
			Label:   "Project root to audit",
			Default: ".",
		}
		project, err := projectPrompt.Run()
		if err != nil {
			return err
		}

		thresholdPrompt := promptui.Prompt{
			Label:   "Failure threshold (percent)",
			Default: "70",
			Validate: func(input string) error {
				v, err := strconv.ParseFloat(input, 64)
				if err != nil || v < 0 || v > 100 {
					return fmt.Errorf("must be a number between 0 and 100")
				}
				return nil
			},
		}
		thresholdStr, err := thresholdPrompt.Run()
		if err != nil {
			return err
		}
		threshold, _ := strconv.ParseFloat(thresholdStr, 64)

		criticalSelect := promptui.Select{
			Label: "Fail the audit when any critical issue is found",
			Items: []string{"no", "yes"},
		}
		_, criticalChoice, err := criticalSelect.Run()
		if err != nil {
			return err
		}

		markerPrompt := promptui.Prompt{
			Label:   "Safe marker (suppresses secret findings in files containing it)",
			Default: "process.env",
		}
		marker, err := markerPrompt.Run()
		if err != nil {
			return err
		}

		config := initConfig{
			Defaults: initDefaults{
				Project:       project,
				FailThreshold: threshold,
				FailOnCrit:    criticalChoice == "yes",
			},
			Profile: initProfile{SafeMarker: marker},
		}

		data, err := yaml.Marshal(&config)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		if err := os.WriteFile(configFileName, data, constants.DefaultFilePerm); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("%s Wrote %s\n", colorSuccess("✓"), configFileName)
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
}
