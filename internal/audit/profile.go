package audit

import (
	"github.com/posturasec/postura/internal/snapshot"
)

// MarkerProbe is one verifiable sub-condition of a presence check: a set of
// candidate files tested for marker substrings. An empty Files list means the
// component's source files are scanned instead. Markers is an OR of AND
// groups: the probe succeeds when any group has all of its substrings present
// in a single file. Fold selects case-insensitive comparison.
type MarkerProbe struct {
	Files   []string   `yaml:"files"`
	Markers [][]string `yaml:"markers"`
	Fold    bool       `yaml:"fold"`
}

// PresenceCondition awards Weight points when any of its probes succeeds for
// the named component; otherwise it emits the configured issue.
// IssueComponent is the label findings are filed under (e.g. "BridgeAuth");
// it defaults to Component when empty.
type PresenceCondition struct {
	Component      string        `yaml:"component"`
	IssueComponent string        `yaml:"issue_component"`
	Probes         []MarkerProbe `yaml:"probes"`
	Weight         int           `yaml:"weight"`
	IssueSeverity  Severity      `yaml:"severity"`
	IssueMessage   string        `yaml:"message"`
	Recommendation string        `yaml:"recommendation"`
}

// EnvExample is an example-configuration file whose absence costs one point
// and yields a recommendation.
type EnvExample struct {
	Path      string `yaml:"path"`
	Component string `yaml:"component"`
}

// LockfileRule scores dependency pinning: presence of the lockfile earns
// Weight points, absence emits a medium issue.
type LockfileRule struct {
	Path           string `yaml:"path"`
	Component      string `yaml:"component"`
	Weight         int    `yaml:"weight"`
	IssueMessage   string `yaml:"message"`
	Recommendation string `yaml:"recommendation"`
}

// Profile is the declarative rule table driving every check: candidate file
// lists, marker substrings, and deduction rules. Checks hold no inline
// literals, so they are unit-testable against a fake snapshot with a custom
// profile. DefaultProfile returns the built-in table.
type Profile struct {
	Components []snapshot.Component

	// file_permissions
	SensitiveFiles []string

	// environment_variables
	SecretRules []Rule
	SafeMarker  string
	EnvExamples []EnvExample

	// presence checks
	Authentication  []PresenceCondition
	RateLimiting    []PresenceCondition
	InputValidation []PresenceCondition

	// logging_security
	LogRules []Rule

	// dependency_security
	Lockfiles         []LockfileRule
	ManifestPath      string
	ManifestComponent string
	AuditScriptWeight int
	SecurityDeps      []string
	SecurityDepWeight int

	// ci_security
	WorkflowsDir      string
	SecurityWorkflows []string
	WorkflowWeight    int
	PermissionsWeight int

	// Checks in this subset are treated as security-critical by the priority
	// ranker.
	SecurityCritical []string
}

// DefaultProfile returns the built-in rule table: a two-component layout with
// a native "bridge" component at the project root and a Node "server"
// component under mcp-server/.
func DefaultProfile() *Profile {
	bridge := snapshot.Component{Name: "bridge", Dir: ".", SourceExts: []string{".rs"}}
	server := snapshot.Component{Name: "mcp-server", Dir: "mcp-server", SourceExts: []string{".ts"}}

	return &Profile{
		Components: []snapshot.Component{bridge, server},

		SensitiveFiles: []string{
			".env",
			"config.toml",
			"mcp-server/.env",
			"mcp-server/config.json",
		},

		SecretRules: []Rule{
			MustRule(`token\s*=\s*["'][^"']{20,}["']`, "Hardcoded token", 3),
			MustRule(`key\s*=\s*["'][^"']{16,}["']`, "Hardcoded key", 3),
			MustRule(`password\s*=\s*["'][^"']{8,}["']`, "Hardcoded password", 3),
			MustRule(`secret\s*=\s*["'][^"']{12,}["']`, "Hardcoded secret", 3),
		},
		SafeMarker: "process.env",
		EnvExamples: []EnvExample{
			{Path: "config.example.toml", Component: "Bridge"},
			{Path: "mcp-server/.env.example", Component: "MCP Server"},
		},

		Authentication: []PresenceCondition{
			{
				Component:      "bridge",
				IssueComponent: "BridgeAuth",
				Probes: []MarkerProbe{{
					Files:   []string{"src/telegram/handlers.rs", "src/utils/security.rs"},
					Markers: [][]string{{"TELEGRAM_ALLOWED_USERS"}, {"user_id"}},
				}},
				Weight:         5,
				IssueSeverity:  SeverityWarning,
				IssueMessage:   "Bridge authentication may not be properly configured",
				Recommendation: "Ensure TELEGRAM_ALLOWED_USERS is set",
			},
			{
				Component:      "mcp-server",
				IssueComponent: "MCPAuth",
				Probes: []MarkerProbe{{
					Files:   []string{"mcp-server/src/security.ts", "mcp-server/src/index.ts"},
					Markers: [][]string{{"MCP_API_KEYS"}, {"authenticate"}},
				}},
				Weight:         5,
				IssueSeverity:  SeverityWarning,
				IssueMessage:   "MCP Server authentication may not be properly configured",
				Recommendation: "Ensure MCP_API_KEYS is configured",
			},
		},

		RateLimiting: []PresenceCondition{
			{
				Component:      "bridge",
				IssueComponent: "BridgeRateLimit",
				Probes: []MarkerProbe{{
					Files:   []string{"src/utils/security.rs", "src/telegram/handlers.rs"},
					Markers: [][]string{{"rate_limit"}, {"throttle"}},
					Fold:    true,
				}},
				Weight:         5,
				IssueSeverity:  SeverityMedium,
				IssueMessage:   "Bridge rate limiting not found",
				Recommendation: "Implement rate limiting for user requests",
			},
			{
				Component:      "mcp-server",
				IssueComponent: "MCPRateLimit",
				Probes: []MarkerProbe{{
					Files:   []string{"mcp-server/src/security.ts", "mcp-server/package.json"},
					Markers: [][]string{{"rate", "limit"}},
					Fold:    true,
				}},
				Weight:         5,
				IssueSeverity:  SeverityMedium,
				IssueMessage:   "MCP Server rate limiting not found",
				Recommendation: "Implement rate limiting for API requests",
			},
		},

		InputValidation: []PresenceCondition{
			{
				Component:      "bridge",
				IssueComponent: "BridgeValidation",
				Probes: []MarkerProbe{{
					Markers: [][]string{{"sanitize"}, {"validate"}, {"SecurityManager"}},
				}},
				Weight:         5,
				IssueSeverity:  SeverityHigh,
				IssueMessage:   "Bridge input validation not comprehensive",
				Recommendation: "Implement comprehensive input sanitization",
			},
			{
				Component:      "mcp-server",
				IssueComponent: "MCPValidation",
				Probes: []MarkerProbe{
					{
						Files:   []string{"mcp-server/package.json"},
						Markers: [][]string{{"joi"}, {"validator"}},
						Fold:    true,
					},
					{
						Markers: [][]string{{"validate"}, {"sanitize"}},
						Fold:    true,
					},
				},
				Weight:         5,
				IssueSeverity:  SeverityHigh,
				IssueMessage:   "MCP Server input validation not found",
				Recommendation: "Implement input validation with Joi or similar",
			},
		},

		LogRules: []Rule{
			MustRule(`log.*password`, "Password in logs", 2),
			MustRule(`log.*token`, "Token in logs", 2),
			MustRule(`log.*key`, "Key in logs", 2),
			MustRule(`println!.*password`, "Password in Rust logs", 2),
			MustRule(`console\.log.*password`, "Password in JS logs", 2),
		},

		Lockfiles: []LockfileRule{
			{
				Path:           "Cargo.lock",
				Component:      "BridgeDeps",
				Weight:         2,
				IssueMessage:   "Cargo.lock not found",
				Recommendation: "Run cargo build to generate Cargo.lock",
			},
			{
				Path:           "mcp-server/package-lock.json",
				Component:      "MCPDeps",
				Weight:         2,
				IssueMessage:   "package-lock.json not found",
				Recommendation: "Run npm install to generate package-lock.json",
			},
		},
		ManifestPath:      "mcp-server/package.json",
		ManifestComponent: "MCPDeps",
		AuditScriptWeight: 3,
		SecurityDeps:      []string{"helmet", "express-rate-limit"},
		SecurityDepWeight: 3,

		WorkflowsDir: ".github/workflows",
		SecurityWorkflows: []string{
			"security-enhanced.yml",
			"scorecard.yml",
			"slsa-provenance.yml",
		},
		WorkflowWeight:    3,
		PermissionsWeight: 1,

		SecurityCritical: []string{
			"Vulnerabilities",
			"Code-Review",
			"Branch-Protection",
			"Token-Permissions",
			"Dangerous-Workflow",
			"Security-Policy",
		},
	}
}

// component returns the profile component with the given name.
func (p *Profile) component(name string) (snapshot.Component, bool) {
	for _, c := range p.Components {
		if c.Name == name {
			return c, true
		}
	}
	return snapshot.Component{}, false
}
