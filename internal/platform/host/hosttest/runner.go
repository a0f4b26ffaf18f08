// Package hosttest provides a scripted host.Runner for tests.
package hosttest

import (
	"context"
	"strings"
	"sync"
)

// Upload records a single Upload call.
type Upload struct {
	Path    string
	Mode    string
	Content []byte
}

type rule struct {
	substr string
	output string
	err    error
}

// Runner implements host.Runner with scripted responses. Commands
// without a matching rule succeed with empty output, so tests only
// script the probes they care about.
type Runner struct {
	mu       sync.Mutex
	rules    []rule
	Commands []string
	Uploads  []Upload
}

// NewRunner creates an empty scripted runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Respond registers a response for any command containing substr.
// Earlier registrations win.
func (r *Runner) Respond(substr, output string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{substr: substr, output: output, err: err})
}

// Run implements host.Runner.
func (r *Runner) Run(_ context.Context, command string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Commands = append(r.Commands, command)
	for _, rule := range r.rules {
		if strings.Contains(command, rule.substr) {
			return rule.output, rule.err
		}
	}
	return "", nil
}

// Upload implements host.Runner.
func (r *Runner) Upload(_ context.Context, content []byte, path string, mode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Uploads = append(r.Uploads, Upload{Path: path, Mode: mode, Content: append([]byte(nil), content...)})
	return nil
}

// Ran reports whether any executed command contains substr.
func (r *Runner) Ran(substr string) bool {
	return r.CountRuns(substr) > 0
}

// CountRuns returns how many executed commands contain substr.
func (r *Runner) CountRuns(substr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, c := range r.Commands {
		if strings.Contains(c, substr) {
			n++
		}
	}
	return n
}

// UploadedTo returns the last upload targeting path, or nil.
func (r *Runner) UploadedTo(path string) *Upload {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.Uploads) - 1; i >= 0; i-- {
		if r.Uploads[i].Path == path {
			u := r.Uploads[i]
			return &u
		}
	}
	return nil
}

// Reset clears recorded commands and uploads but keeps the rules.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Commands = nil
	r.Uploads = nil
}
