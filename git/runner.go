package git

import (
	"bytes"
	"os/exec"
	"slices"
	"strings"
	"sync"
)

// CommandRunner executes external commands. Context routes every git
// invocation through it so tests can substitute a mock.
type CommandRunner interface {
	Run(workDir, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner returns a runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes name with args in workDir and returns trimmed stdout.
// On failure the returned error is a *CommandError carrying stderr.
func (r *ExecRunner) Run(workDir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		output := strings.TrimSpace(stderr.String())
		if output == "" {
			output = strings.TrimSpace(stdout.String())
		}
		return strings.TrimSpace(stdout.String()), &CommandError{
			Command: name,
			Args:    args,
			Output:  output,
			Err:     err,
		}
	}

	return strings.TrimSpace(stdout.String()), nil
}

// CommandError describes a failed command.
type CommandError struct {
	Command string
	Args    []string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return e.Output
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "command failed"
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// MockResponse is a canned result for MockRunner.
type MockResponse struct {
	Stdout string
	Err    error
}

// MockCall records one invocation of a mock runner.
type MockCall struct {
	WorkDir string
	Command string
	Args    []string
}

// MockRunner answers commands from a response table.
// The exact command line is tried first, then the command name alone.
// Unmatched commands succeed with empty output.
type MockRunner struct {
	Responses map[string]MockResponse
	Calls     []MockCall

	mu sync.Mutex
}

// NewMockRunner creates an empty MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		Responses: make(map[string]MockResponse),
	}
}

// MockExpectation registers a response for a command key.
type MockExpectation struct {
	runner *MockRunner
	key    string
}

// OnCommand starts registering a response for the exact command line.
func (m *MockRunner) OnCommand(name string, args ...string) *MockExpectation {
	return &MockExpectation{runner: m, key: commandKey(name, args)}
}

// Return sets the response for the expectation.
func (e *MockExpectation) Return(stdout string, err error) *MockRunner {
	e.runner.mu.Lock()
	defer e.runner.mu.Unlock()
	e.runner.Responses[e.key] = MockResponse{Stdout: stdout, Err: err}
	return e.runner
}

// Run records the call and returns the matching response.
func (m *MockRunner) Run(workDir, name string, args ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{WorkDir: workDir, Command: name, Args: args})

	resp, ok := m.Responses[commandKey(name, args)]
	if !ok {
		resp = m.Responses[name]
	}
	return resp.Stdout, resp.Err
}

// WasCalled reports whether the command ran. With args, the argument list
// must match exactly.
func (m *MockRunner) WasCalled(name string, args ...string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.ContainsFunc(m.Calls, func(c MockCall) bool {
		return c.Command == name && (len(args) == 0 || slices.Equal(c.Args, args))
	})
}

// SequentialMockRunner returns queued responses in call order, regardless
// of the command.
type SequentialMockRunner struct {
	Calls []MockCall

	mu        sync.Mutex
	responses []MockResponse
}

// NewSequentialMockRunner creates an empty SequentialMockRunner.
func NewSequentialMockRunner() *SequentialMockRunner {
	return &SequentialMockRunner{}
}

// AddOutput queues a response.
func (s *SequentialMockRunner) AddOutput(stdout string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, MockResponse{Stdout: stdout, Err: err})
}

// Run pops the next queued response.
func (s *SequentialMockRunner) Run(workDir, name string, args ...string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls = append(s.Calls, MockCall{WorkDir: workDir, Command: name, Args: args})
	if len(s.responses) == 0 {
		return "", &CommandError{Command: name, Args: args, Output: "unexpected command: " + commandKey(name, args)}
	}

	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp.Stdout, resp.Err
}

func commandKey(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
