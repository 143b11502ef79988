package usecase_test

import (
	"context"

	"github.com/m-mizutani/gollem"
	"github.com/inbox-lab/autoreply/pkg/domain/model"
)

// mailTransportMock is a function-field mock for the mail transport
type mailTransportMock struct {
	fetchUnreadFn func(ctx context.Context, max int) ([]*model.Email, error)
	markHandledFn func(ctx context.Context, emailID string) error
	sendReplyFn   func(ctx context.Context, req *model.ReplyRequest) (*model.SendResult, error)
}

func (m *mailTransportMock) FetchUnread(ctx context.Context, max int) ([]*model.Email, error) {
	if m.fetchUnreadFn != nil {
		return m.fetchUnreadFn(ctx, max)
	}
	return nil, nil
}

func (m *mailTransportMock) MarkHandled(ctx context.Context, emailID string) error {
	if m.markHandledFn != nil {
		return m.markHandledFn(ctx, emailID)
	}
	return nil
}

func (m *mailTransportMock) SendReply(ctx context.Context, req *model.ReplyRequest) (*model.SendResult, error) {
	if m.sendReplyFn != nil {
		return m.sendReplyFn(ctx, req)
	}
	return &model.SendResult{Success: true, MessageID: "sent-" + req.InReplyToID}, nil
}

// vectorIndexMock is a function-field mock for the vector index
type vectorIndexMock struct {
	similaritySearchFn func(ctx context.Context, query string, k int) ([]*model.Fragment, error)
	rebuildFn          func(ctx context.Context, fragments []*model.Fragment) error
	statsFn            func(ctx context.Context) (*model.IndexStats, error)
}

func (m *vectorIndexMock) SimilaritySearch(ctx context.Context, query string, k int) ([]*model.Fragment, error) {
	if m.similaritySearchFn != nil {
		return m.similaritySearchFn(ctx, query, k)
	}
	return nil, nil
}

func (m *vectorIndexMock) Rebuild(ctx context.Context, fragments []*model.Fragment) error {
	if m.rebuildFn != nil {
		return m.rebuildFn(ctx, fragments)
	}
	return nil
}

func (m *vectorIndexMock) Stats(ctx context.Context) (*model.IndexStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return &model.IndexStats{}, nil
}

// mockLLMSession is a mock gollem Session
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{"mock response"}}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient
type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

// textLLM returns a client whose every session answers with the given text
func textLLM(text string) *mockLLMClient {
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{text}}, nil
				},
			}, nil
		},
	}
}
