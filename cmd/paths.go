package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/posturasec/postura/internal/audit"
	"github.com/posturasec/postura/internal/scorecard"
	"github.com/posturasec/postura/internal/shared/constants"
)

// getDataDir returns the appropriate data directory for the current OS
// following XDG Base Directory specification on Linux/Unix
func getDataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %LOCALAPPDATA%\postura
		baseDir = os.Getenv("LOCALAPPDATA")
		if baseDir == "" {
			baseDir = os.Getenv("APPDATA")
		}
		if baseDir == "" {
			return "", fmt.Errorf("could not determine Windows data directory")
		}
		baseDir = filepath.Join(baseDir, "postura")

	case "darwin":
		// macOS: ~/Library/Application Support/postura
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support", "postura")

	default:
		// Linux/Unix: $XDG_DATA_HOME/postura > ~/.local/share/postura
		xdgDataHome := os.Getenv("XDG_DATA_HOME")
		if xdgDataHome != "" {
			baseDir = filepath.Join(xdgDataHome, "postura")
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("could not determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".local", "share", "postura")
		}
	}

	if err := os.MkdirAll(baseDir, constants.DefaultDirPerm); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return baseDir, nil
}

// historyEntry is one audit run recorded for trend reporting.
type historyEntry struct {
	Timestamp  time.Time  `json:"timestamp"`
	Project    string     `json:"project"`
	Percentage float64    `json:"percentage"`
	Status     audit.Band `json:"status"`
	Criticals  int        `json:"criticals"`
}

// getHistoryFilePath returns the path to the audit history file.
func getHistoryFilePath() (string, error) {
	dataDir, err := getDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "history.json"), nil
}

const historyLimit = 50

// appendHistory records one run, keeping the most recent entries only.
func appendHistory(entry historyEntry) error {
	path, err := getHistoryFilePath()
	if err != nil {
		return err
	}

	var entries []historyEntry
	if data, err := os.ReadFile(path); err == nil {
		// A corrupt history file starts over rather than blocking the run.
		_ = json.Unmarshal(data, &entries)
	}

	entries = append(entries, entry)
	if len(entries) > historyLimit {
		entries = entries[len(entries)-historyLimit:]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, constants.DefaultFilePerm)
}

const lastScorecardFile = "last-scorecard.json"

// getLastScorecardPath returns where the most recent audit run's scorecard
// snapshot is stored.
func getLastScorecardPath() (string, error) {
	dataDir, err := getDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, lastScorecardFile), nil
}

// saveLastScorecard writes the run as a scorecard document so later runs and
// the compare command can reference it via the "last" shorthand.
func saveLastScorecard(report *audit.AggregateReport) error {
	path, err := getLastScorecardPath()
	if err != nil {
		return err
	}
	sc := scorecard.Scorecard{Score: report.Percentage / 10}
	for _, res := range report.Results {
		sc.Checks = append(sc.Checks, scorecard.Check{Name: res.Name, Score: float64(res.Score)})
	}
	data, err := json.MarshalIndent(&sc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, constants.DefaultFilePerm)
}

// resolveBaselinePath maps the "last" shorthand to the saved scorecard path;
// any other value passes through unchanged.
func resolveBaselinePath(arg string) (string, error) {
	if arg != "last" {
		return arg, nil
	}
	return getLastScorecardPath()
}

// loadHistory reads up to limit most recent entries for the given project.
func loadHistory(project string, limit int) ([]historyEntry, error) {
	path, err := getHistoryFilePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []historyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	var filtered []historyEntry
	for _, e := range entries {
		if project == "" || e.Project == project {
			filtered = append(filtered, e)
		}
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	return filtered, nil
}
