package audit

// BuildChecks instantiates the check catalog from a profile. Registration
// order is fixed and determines result ordering everywhere downstream.
func BuildChecks(p *Profile) []Check {
	return []Check{
		&FilePermissionsCheck{Sensitive: p.SensitiveFiles},
		&SecretsCheck{
			Components:  p.Components,
			Matcher:     NewMatcher(p.SecretRules, p.SafeMarker),
			EnvExamples: p.EnvExamples,
		},
		&PresenceCheck{CheckName: "authentication", Conditions: p.Authentication, Profile: p},
		&PresenceCheck{CheckName: "rate_limiting", Conditions: p.RateLimiting, Profile: p},
		&PresenceCheck{CheckName: "input_validation", Conditions: p.InputValidation, Profile: p},
		&LoggingCheck{Components: p.Components, Rules: p.LogRules},
		&DependencyCheck{
			Lockfiles:         p.Lockfiles,
			ManifestPath:      p.ManifestPath,
			ManifestComponent: p.ManifestComponent,
			AuditScriptWeight: p.AuditScriptWeight,
			SecurityDeps:      p.SecurityDeps,
			SecurityDepWeight: p.SecurityDepWeight,
		},
		&CICheck{
			WorkflowsDir:      p.WorkflowsDir,
			SecurityWorkflows: p.SecurityWorkflows,
			WorkflowWeight:    p.WorkflowWeight,
			PermissionsWeight: p.PermissionsWeight,
		},
	}
}
