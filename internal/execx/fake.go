package execx

import (
	"fmt"
	"strings"
	"sync"
)

// Call records one Run invocation made against a Fake.
type Call struct {
	Name string
	Args []string
}

// String renders the call the way it would appear on a shell command line.
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Fake is a Runner for tests. It records every invocation and answers from a
// table of canned results keyed by the rendered command line; unmatched
// commands succeed with empty output so tests only script what they assert.
type Fake struct {
	mu      sync.Mutex
	calls   []Call
	results map[string]fakeResult
	// Missing lists binary names LookPath should report as absent.
	Missing []string
}

type fakeResult struct {
	output []byte
	err    error
}

// Stub arranges for the given command line (e.g. "brew update") to return
// output and err.
func (f *Fake) Stub(cmdline string, output []byte, err error) {
	if f.results == nil {
		f.results = make(map[string]fakeResult)
	}
	f.results[cmdline] = fakeResult{output: output, err: err}
}

// Run records the call and answers from the stub table.
func (f *Fake) Run(name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := Call{Name: name, Args: args}
	f.calls = append(f.calls, call)
	if r, ok := f.results[call.String()]; ok {
		return r.output, r.err
	}
	return nil, nil
}

// LookPath resolves to a fixed fake path unless the name is listed as missing.
func (f *Fake) LookPath(name string) (string, error) {
	for _, m := range f.Missing {
		if m == name {
			return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
		}
	}
	return "/usr/bin/" + name, nil
}

// Calls returns a copy of the recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CommandLines returns the recorded invocations rendered as command lines.
func (f *Fake) CommandLines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}
