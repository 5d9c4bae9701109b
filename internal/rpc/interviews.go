package rpc

import (
	"context"

	"github.com/daniilsolovey/sitecontent/internal/content"
	"github.com/vmkteam/zenrpc/v2"
)

// InterviewService provides read-only RPC methods for interviews.
type InterviewService struct {
	zenrpc.Service
	manager *content.InterviewManager
}

func NewInterviewService(manager *content.InterviewManager) *InterviewService {
	return &InterviewService{manager: manager}
}

// List retrieves interviews newest first by createdAt.
//
//zenrpc:limit=0 maximum number of interviews, 0 for all
//zenrpc:label optional label filter
//zenrpc:return list of interviews
//zenrpc:500 internal server error
func (s *InterviewService) List(ctx context.Context, limit *int, label *string) (Interviews, error) {
	l := 0
	if limit != nil {
		l = *limit
	}

	interviews, err := s.manager.LatestInterviews(ctx, l, label)
	if err != nil {
		return nil, err
	}

	return NewInterviews(interviews), nil
}

// ByID retrieves a single interview.
//
//zenrpc:id interview id
//zenrpc:return interview
//zenrpc:400 id must be positive
//zenrpc:404 interview not found
//zenrpc:500 internal server error
func (s *InterviewService) ByID(ctx context.Context, id int) (*Interview, error) {
	if id <= 0 {
		return nil, zenrpc.NewStringError(400, "id must be positive")
	}

	iv, err := s.manager.InterviewByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if iv == nil {
		return nil, zenrpc.NewStringError(404, "interview not found")
	}

	interview := NewInterview(*iv)
	return &interview, nil
}
