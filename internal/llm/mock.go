package llm

import "context"

// MockClient permite tests sin llamar a un proveedor real.
type MockClient struct {
	Response string
	Err      error

	LastSystem      string
	LastHistory     []ChatMessage
	LastUserMessage string
}

func (m *MockClient) GenerateReply(_ context.Context, system string, history []ChatMessage, userMessage string) (string, error) {
	m.LastSystem = system
	m.LastHistory = history
	m.LastUserMessage = userMessage
	return m.Response, m.Err
}
