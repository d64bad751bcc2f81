package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/posturasec/postura/internal/audit"
	"github.com/posturasec/postura/internal/snapshot"
)

const (
	defaultFailThreshold  = 70.0
	defaultReadConcurrent = 8
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Defaults DefaultValues
	Audit    AuditRuntimeConfig
}

// DefaultValues represent project-level defaults, typically derived from the
// config file.
type DefaultValues struct {
	Project       string
	FailThreshold float64
	FailOnCrit    bool
}

// AuditRuntimeConfig consolidates flag-driven settings for the audit command.
type AuditRuntimeConfig struct {
	Project         string
	FailThreshold   float64
	FailOnCrit      bool
	Concurrency     int
	ReadRate        int
	ProgressEnabled bool
	HistoryEnabled  bool
}

type defaultOverrides struct {
	Project       string
	FailThreshold *float64
	FailOnCrit    *bool
	Concurrency   *int
	ReadRate      *int
	History       *bool
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Defaults: DefaultValues{
			Project:       ".",
			FailThreshold: defaultFailThreshold,
		},
		Audit: AuditRuntimeConfig{
			Project:        ".",
			FailThreshold:  defaultFailThreshold,
			Concurrency:    defaultReadConcurrent,
			HistoryEnabled: true,
		},
	}
}

func loadDefaultOverrides() defaultOverrides {
	overrides := defaultOverrides{}

	if viper.IsSet("defaults.project") {
		overrides.Project = viper.GetString("defaults.project")
	}

	if viper.IsSet("defaults.fail_threshold") {
		val := viper.GetFloat64("defaults.fail_threshold")
		overrides.FailThreshold = &val
	}

	if viper.IsSet("defaults.fail_on_critical") {
		val := viper.GetBool("defaults.fail_on_critical")
		overrides.FailOnCrit = &val
	}

	if viper.IsSet("defaults.concurrency") {
		val := viper.GetInt("defaults.concurrency")
		overrides.Concurrency = &val
	}

	if viper.IsSet("defaults.read_rate") {
		val := viper.GetInt("defaults.read_rate")
		overrides.ReadRate = &val
	}

	if viper.IsSet("defaults.history") {
		val := viper.GetBool("defaults.history")
		overrides.History = &val
	}

	return overrides
}

// applyConfigDefaults merges config file defaults into the runtime config
// when the user did not explicitly override the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	overrides := loadDefaultOverrides()

	if overrides.Project != "" {
		cliConfig.Defaults.Project = overrides.Project
		setStringFlagIfUnset(auditCmd.Flags(), "project", overrides.Project)
	}

	if overrides.FailThreshold != nil {
		applyFloatDefault(auditCmd.Flags(), "fail-threshold", *overrides.FailThreshold, func(v float64) {
			cliConfig.Defaults.FailThreshold = v
			cliConfig.Audit.FailThreshold = v
		})
	}

	if overrides.FailOnCrit != nil {
		applyBoolDefault(auditCmd.Flags(), "fail-on-critical", *overrides.FailOnCrit, func(v bool) {
			cliConfig.Defaults.FailOnCrit = v
			cliConfig.Audit.FailOnCrit = v
		})
	}

	if overrides.Concurrency != nil {
		applyIntDefault(auditCmd.Flags(), "concurrency", *overrides.Concurrency, func(v int) {
			cliConfig.Audit.Concurrency = v
		})
	}

	if overrides.ReadRate != nil {
		applyIntDefault(auditCmd.Flags(), "read-rate", *overrides.ReadRate, func(v int) {
			cliConfig.Audit.ReadRate = v
		})
	}

	if overrides.History != nil {
		cliConfig.Audit.HistoryEnabled = *overrides.History
	}
}

// loadProfile builds the check profile: built-in defaults overlaid with any
// profile.* settings from the config file.
func loadProfile() (*audit.Profile, error) {
	profile := audit.DefaultProfile()

	if viper.IsSet("profile.safe_marker") {
		profile.SafeMarker = viper.GetString("profile.safe_marker")
	}
	if viper.IsSet("profile.sensitive_files") {
		profile.SensitiveFiles = viper.GetStringSlice("profile.sensitive_files")
	}
	if viper.IsSet("profile.security_critical") {
		profile.SecurityCritical = viper.GetStringSlice("profile.security_critical")
	}
	if viper.IsSet("profile.security_workflows") {
		profile.SecurityWorkflows = viper.GetStringSlice("profile.security_workflows")
	}
	if viper.IsSet("profile.workflows_dir") {
		profile.WorkflowsDir = viper.GetString("profile.workflows_dir")
	}
	if viper.IsSet("profile.components") {
		var components []snapshot.Component
		if err := viper.UnmarshalKey("profile.components", &components); err != nil {
			return nil, &ProfileError{Err: err}
		}
		if len(components) > 0 {
			profile.Components = components
		}
	}

	return profile, nil
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyFloatDefault(flags *pflag.FlagSet, name string, value float64, setter func(float64)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func setStringFlagIfUnset(flags *pflag.FlagSet, name, value string) {
	if flags == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag == nil || flag.Changed {
		return
	}
	_ = flag.Value.Set(value)
}
