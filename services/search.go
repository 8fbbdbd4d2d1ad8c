package services

import (
	"context"

	"github.com/mindsettle/therapy-app/search"
	"github.com/mindsettle/therapy-app/utils"
)

// SearchPageSize caps typeahead responses.
const SearchPageSize = 10

// SearchQuerier is the read-only slice of the index backend.
type SearchQuerier interface {
	Query(ctx context.Context, prefix string, limit int) ([]search.Document, error)
}

type SearchService struct {
	index SearchQuerier
}

func NewSearchService(index SearchQuerier) *SearchService {
	return &SearchService{index: index}
}

// SearchTherapists serves name-prefix typeahead from the index. Short
// prefixes are rejected before the backend is touched; a backend
// failure is surfaced as unavailable, distinct from no matches.
func (s *SearchService) SearchTherapists(ctx context.Context, prefix string) ([]search.Document, error) {
	if len([]rune(prefix)) < search.MinFragment {
		return nil, utils.InvalidInput("search prefix must be at least 2 characters")
	}
	docs, err := s.index.Query(ctx, prefix, SearchPageSize)
	if err != nil {
		return nil, utils.Unavailable("therapist search is temporarily unavailable", err)
	}
	if docs == nil {
		docs = []search.Document{}
	}
	return docs, nil
}
