package genai

import "context"

// FakeGenerator is a test double implementing Generator.
// Exported so other packages' tests can inject it into the resolver.
type FakeGenerator struct {
	Text     string
	Err      error
	Enabled  bool
	Name     Provider
	Calls    int
	LastSent string
}

// Generate records the call and returns the configured result.
func (f *FakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.Calls++
	f.LastSent = prompt
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

// IsEnabled returns the configured enabled flag.
func (f *FakeGenerator) IsEnabled() bool {
	return f.Enabled
}

// Provider returns the configured provider name.
func (f *FakeGenerator) Provider() Provider {
	if f.Name == "" {
		return ProviderNone
	}
	return f.Name
}

// Close is a no-op.
func (f *FakeGenerator) Close() error {
	return nil
}
