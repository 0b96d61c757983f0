package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/Veraticus/recipebook/internal/common"
	"github.com/Veraticus/recipebook/internal/model"
)

// ErrOffline is the cause used by TransportFailure.
var ErrOffline = errors.New("dial tcp: connection refused")

// TransportFailure returns a fallback-eligible network error.
func TransportFailure(op string) error {
	return common.NewTransportError(op, ErrOffline)
}

// ServiceFailure returns a non-2xx service error.
func ServiceFailure(op string, status int) error {
	return common.NewServiceError(op, status, common.ErrUnexpectedStatus)
}

// Page builds a search response. next reports whether the service advertises another page.
func Page(recipes []model.Recipe, next bool) *model.SearchResponse {
	resp := &model.SearchResponse{Count: len(recipes), Results: recipes}
	if next {
		link := "https://food2fork.ca/api/recipe/search/?page=next"
		resp.Next = &link
	}
	return resp
}

// SearchCall records one FakeAPI.Search invocation.
type SearchCall struct {
	Query string
	Page  int
}

// FakeAPI is a scriptable service.RecipeAPI that records its calls.
type FakeAPI struct {
	SearchFunc  func(ctx context.Context, page int, query string) (*model.SearchResponse, error)
	GetFunc     func(ctx context.Context, id string) (*model.Recipe, error)
	searchCalls []SearchCall
	getCalls    []string
	mu          sync.Mutex
}

// Search records the call and delegates to SearchFunc, or returns an empty last page.
func (f *FakeAPI) Search(ctx context.Context, page int, query string) (*model.SearchResponse, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, SearchCall{Page: page, Query: query})
	fn := f.SearchFunc
	f.mu.Unlock()

	if fn == nil {
		return Page(nil, false), nil
	}
	return fn(ctx, page, query)
}

// Get records the call and delegates to GetFunc, or fails as offline.
func (f *FakeAPI) Get(ctx context.Context, id string) (*model.Recipe, error) {
	f.mu.Lock()
	f.getCalls = append(f.getCalls, id)
	fn := f.GetFunc
	f.mu.Unlock()

	if fn == nil {
		return nil, TransportFailure("get")
	}
	return fn(ctx, id)
}

// SearchCalls returns a copy of the recorded Search calls.
func (f *FakeAPI) SearchCalls() []SearchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SearchCall(nil), f.searchCalls...)
}

// GetCalls returns a copy of the recorded Get ids.
func (f *FakeAPI) GetCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.getCalls...)
}
