package gmail

import (
	"context"

	"github.com/gtl92/gmail-svelkit/internal/model"
	"github.com/gtl92/gmail-svelkit/internal/service"
)

// MockMailSource is a mock implementation of service.MailSource for testing
type MockMailSource struct {
	ListMessagesFunc  func(ctx context.Context, query string, maxResults int64) ([]string, error)
	GetMessageFunc    func(ctx context.Context, id string) (*model.MessageSummary, error)
	EstimateCountFunc func(ctx context.Context, query string) (int64, error)
	SendMessageFunc   func(ctx context.Context, raw []byte) error
	ProfileFunc       func(ctx context.Context) (string, error)

	// Sent collects every raw message passed to SendMessage.
	Sent [][]byte
}

func NewMockMailSource() *MockMailSource {
	return &MockMailSource{}
}

func (m *MockMailSource) ListMessages(ctx context.Context, query string, maxResults int64) ([]string, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, query, maxResults)
	}

	// Default mock behavior: empty inbox
	return nil, nil
}

func (m *MockMailSource) GetMessage(ctx context.Context, id string) (*model.MessageSummary, error) {
	if m.GetMessageFunc != nil {
		return m.GetMessageFunc(ctx, id)
	}

	return &model.MessageSummary{ID: id, Subject: "(No subject)"}, nil
}

func (m *MockMailSource) EstimateCount(ctx context.Context, query string) (int64, error) {
	if m.EstimateCountFunc != nil {
		return m.EstimateCountFunc(ctx, query)
	}
	return 0, nil
}

func (m *MockMailSource) SendMessage(ctx context.Context, raw []byte) error {
	m.Sent = append(m.Sent, raw)
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, raw)
	}
	return nil
}

func (m *MockMailSource) Profile(ctx context.Context) (string, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx)
	}
	return "mock@example.com", nil
}

// MockMailSourceFactory returns the same MailSource for every credential
// bundle, or an error when configured to.
type MockMailSourceFactory struct {
	Source service.MailSource
	Err    error
}

func (f *MockMailSourceFactory) ForCredentials(ctx context.Context, creds *model.CredentialBundle) (service.MailSource, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Source, nil
}
