package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mindsettle/therapy-app/search"
	"github.com/mindsettle/therapy-app/utils"
)

type fakeQuerier struct {
	calls int
	docs  []search.Document
	err   error
}

func (f *fakeQuerier) Query(_ context.Context, prefix string, limit int) ([]search.Document, error) {
	f.calls++
	return f.docs, f.err
}

func TestSearchTherapistsRejectsShortPrefixBeforeBackend(t *testing.T) {
	q := &fakeQuerier{}
	svc := NewSearchService(q)

	for _, prefix := range []string{"", "d"} {
		_, err := svc.SearchTherapists(context.Background(), prefix)
		if utils.KindOf(err) != utils.KindInvalidInput {
			t.Errorf("prefix %q: error kind = %q, want invalid_input", prefix, utils.KindOf(err))
		}
	}
	if q.calls != 0 {
		t.Errorf("backend was queried %d times for short prefixes", q.calls)
	}
}

func TestSearchTherapistsBackendFailureIsUnavailable(t *testing.T) {
	q := &fakeQuerier{err: errors.Join(search.ErrUnavailable, errors.New("timeout"))}
	svc := NewSearchService(q)

	_, err := svc.SearchTherapists(context.Background(), "dr")
	if utils.KindOf(err) != utils.KindUnavailable {
		t.Errorf("error kind = %q, want unavailable", utils.KindOf(err))
	}
}

func TestSearchTherapistsEmptyResultIsNotAnError(t *testing.T) {
	q := &fakeQuerier{}
	svc := NewSearchService(q)

	docs, err := svc.SearchTherapists(context.Background(), "zz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", docs)
	}
	if q.calls != 1 {
		t.Errorf("backend called %d times, want 1", q.calls)
	}
}

func TestSearchTherapistsReturnsBackendDocs(t *testing.T) {
	q := &fakeQuerier{docs: []search.Document{{ID: 3, Name: "Dr. B"}}}
	svc := NewSearchService(q)

	docs, err := svc.SearchTherapists(context.Background(), "dr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != 3 || docs[0].Name != "Dr. B" {
		t.Errorf("docs = %#v", docs)
	}
}
