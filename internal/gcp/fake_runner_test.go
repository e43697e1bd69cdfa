package gcp

import (
	"context"
	"strings"
)

// fakeRunner scripts gcloud invocations by prefix match on the joined
// argument string.
type fakeRunner struct {
	Calls            []string
	InteractiveCalls []string

	// Responses maps an argument prefix to its scripted result. The
	// longest matching prefix wins; unmatched calls succeed with empty
	// output.
	Responses map[string]fakeResponse
}

type fakeResponse struct {
	Output string
	Err    error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{Responses: make(map[string]fakeResponse)}
}

func (f *fakeRunner) Run(_ context.Context, args ...string) (string, error) {
	joined := strings.Join(args, " ")
	f.Calls = append(f.Calls, joined)

	var best string
	for prefix := range f.Responses {
		if strings.HasPrefix(joined, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return "", nil
	}
	resp := f.Responses[best]
	return resp.Output, resp.Err
}

func (f *fakeRunner) Interactive(_ context.Context, args ...string) error {
	f.InteractiveCalls = append(f.InteractiveCalls, strings.Join(args, " "))
	return nil
}

func (f *fakeRunner) calls() string {
	return strings.Join(f.Calls, "\n")
}
