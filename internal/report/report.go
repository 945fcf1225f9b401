// Package report writes JSON session reports for install and uninstall runs.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Elmeric/fotocop/internal/setup"
)

// Session is the JSON report of one fotocop-setup run.
type Session struct {
	RunID     string             `json:"run_id"`
	Command   string             `json:"command"`
	Version   string             `json:"version"`
	Hostname  string             `json:"hostname"`
	Timestamp time.Time          `json:"timestamp"`
	DryRun    bool               `json:"dry_run"`
	Target    string             `json:"target,omitempty"`
	Steps     []setup.StepResult `json:"steps"`
	Summary   Summary            `json:"summary"`
	ExitCode  int                `json:"exit_code"`
	Duration  string             `json:"duration"`
}

// Summary counts the step outcomes of a session.
type Summary struct {
	Total   int `json:"total"`
	OK      int `json:"ok"`
	Skipped int `json:"skipped"`
	Warning int `json:"warning"`
	Failed  int `json:"failed"`
}

// NewSession starts a report for the named command.
func NewSession(command, version string) *Session {
	hostname, _ := os.Hostname()
	return &Session{
		RunID:     uuid.NewString(),
		Command:   command,
		Version:   version,
		Hostname:  hostname,
		Timestamp: time.Now(),
	}
}

// Finish folds a setup result and the final exit code into the session.
func (s *Session) Finish(result *setup.Result, exitCode int) {
	if result != nil {
		s.Steps = result.Steps
	}
	s.ExitCode = exitCode
	s.Duration = time.Since(s.Timestamp).String()

	s.Summary = Summary{Total: len(s.Steps)}
	for _, step := range s.Steps {
		switch step.Status {
		case setup.StatusOK:
			s.Summary.OK++
		case setup.StatusSkipped:
			s.Summary.Skipped++
		case setup.StatusWarning:
			s.Summary.Warning++
		case setup.StatusFailed:
			s.Summary.Failed++
		}
	}
}

// Save writes the session into dir with a timestamped file name and returns
// the path.
func (s *Session) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	filename := fmt.Sprintf("fotocop_setup_%s_%s.json", s.Command, s.Timestamp.Format("20060102_150405"))
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

// Load reads a saved session back.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}

	return &session, nil
}

// List returns the saved report paths in dir, newest first. A missing
// directory is an empty list, not an error.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read report directory %s: %w", dir, err)
	}

	type item struct {
		path string
		mod  time.Time
	}
	var items []item
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, item{path: filepath.Join(dir, entry.Name()), mod: info.ModTime()})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].mod.After(items[j].mod)
	})

	paths := make([]string, len(items))
	for i, it := range items {
		paths[i] = it.path
	}
	return paths, nil
}
