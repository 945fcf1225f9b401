// Package setup implements the install and uninstall engine: the install
// manifest, the transactional payload copy, and the reverse-order removal
// driven by the manifest.
package setup

import (
	"errors"
	"time"
)

var (
	// ErrRecordMissing signals that the install manifest could not be found.
	// Uninstall aborts without touching the installation in that case.
	ErrRecordMissing = errors.New("install record missing")

	// ErrIncomplete signals that an operation finished but some steps failed.
	ErrIncomplete = errors.New("completed with warnings")
)

// InstallInfo describes an installation for the metadata store.
type InstallInfo struct {
	DisplayName     string `json:"display_name"`
	Version         string `json:"version"`
	Publisher       string `json:"publisher"`
	InstallLocation string `json:"install_location"`
	UninstallString string `json:"uninstall_string"`
	DisplayIcon     string `json:"display_icon,omitempty"`
	EstimatedKB     uint32 `json:"estimated_kb"`
}

// MetadataStore records an installation with the host system so it can be
// listed and removed later. On Windows this is the registry uninstall key,
// elsewhere a JSON file under the user config directory.
type MetadataStore interface {
	Write(info InstallInfo) error
	Remove() error
	Probe() (InstallInfo, error)
}

// ShortcutManager creates and removes application launchers.
type ShortcutManager interface {
	Create(installRoot string) error
	Remove() error
}

// StepStatus classifies the outcome of a single install or uninstall step.
type StepStatus string

const (
	StatusOK      StepStatus = "ok"
	StatusSkipped StepStatus = "skipped"
	StatusWarning StepStatus = "warning"
	StatusFailed  StepStatus = "failed"
)

// StepResult is one step of an install or uninstall run.
type StepResult struct {
	Name   string     `json:"name"`
	Target string     `json:"target,omitempty"`
	Status StepStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// Result collects the steps of a run in execution order.
type Result struct {
	Steps   []StepResult  `json:"steps"`
	Started time.Time     `json:"started"`
	Elapsed time.Duration `json:"elapsed"`
}

func newResult() *Result {
	return &Result{Started: time.Now()}
}

func (r *Result) add(name, target string, status StepStatus, detail string) {
	r.Steps = append(r.Steps, StepResult{Name: name, Target: target, Status: status, Detail: detail})
}

func (r *Result) finish() {
	r.Elapsed = time.Since(r.Started)
}

// Failed returns the steps that did not complete.
func (r *Result) Failed() []StepResult {
	var failed []StepResult
	for _, step := range r.Steps {
		if step.Status == StatusFailed {
			failed = append(failed, step)
		}
	}
	return failed
}
