package search

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// The index stores one document per active therapist, keyed by the
// authoritative therapist id, plus edge-fragment sets for typeahead:
// every prefix of the lowercased name (and of each name token) between
// MinFragment and MaxFragment runes maps to the set of matching ids.
const (
	MinFragment = 2
	MaxFragment = 15

	docKeyPrefix  = "therapist:doc:"
	fragKeyPrefix = "therapist:frag:"

	opTimeout = 2 * time.Second
)

// ErrUnavailable means the index backend rejected the call (as opposed
// to returning no matches). Callers surface it as a retryable condition.
var ErrUnavailable = errors.New("search index unavailable")

// Document is the typeahead result shape: id resolves the full record
// from the authoritative store.
type Document struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Index struct {
	rdb *redis.Client
}

func NewIndex(rdb *redis.Client) *Index {
	return &Index{rdb: rdb}
}

func docKey(id uint) string {
	return docKeyPrefix + strconv.FormatUint(uint64(id), 10)
}

func fragKey(frag string) string {
	return fragKeyPrefix + frag
}

// Fragments derives the edge fragments for a display name. The full
// name and each whitespace-separated token contribute their prefixes of
// MinFragment..MaxFragment runes, deduplicated.
func Fragments(name string) []string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	terms := append([]string{lower}, strings.Fields(lower)...)
	for _, term := range terms {
		runes := []rune(term)
		max := len(runes)
		if max > MaxFragment {
			max = MaxFragment
		}
		for i := MinFragment; i <= max; i++ {
			frag := string(runes[:i])
			if _, ok := seen[frag]; ok {
				continue
			}
			seen[frag] = struct{}{}
			out = append(out, frag)
		}
	}
	return out
}

// Upsert writes or refreshes the document for an active therapist. A
// name change drops the stale fragments before the new ones are added,
// so the old name stops matching.
func (ix *Index) Upsert(ctx context.Context, id uint, name string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	oldName, err := ix.rdb.HGet(ctx, docKey(id), "name").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return errors.Join(ErrUnavailable, err)
	}

	member := strconv.FormatUint(uint64(id), 10)
	_, err = ix.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if oldName != "" && oldName != name {
			for _, frag := range Fragments(oldName) {
				pipe.ZRem(ctx, fragKey(frag), member)
			}
		}
		pipe.HSet(ctx, docKey(id), "name", name, "status", "active")
		for _, frag := range Fragments(name) {
			pipe.ZAdd(ctx, fragKey(frag), redis.Z{Score: 0, Member: member})
		}
		return nil
	})
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// Delete removes a therapist that left the active state. Absent
// documents are a no-op, so status events replay safely.
func (ix *Index) Delete(ctx context.Context, id uint) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	oldName, err := ix.rdb.HGet(ctx, docKey(id), "name").Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}

	member := strconv.FormatUint(uint64(id), 10)
	_, err = ix.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, frag := range Fragments(oldName) {
			pipe.ZRem(ctx, fragKey(frag), member)
		}
		pipe.Del(ctx, docKey(id))
		return nil
	})
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// Query returns up to limit documents whose indexed name matches the
// prefix, in the backend's member order. Backend failures come back as
// ErrUnavailable, distinct from an empty result.
func (ix *Index) Query(ctx context.Context, prefix string, limit int) ([]Document, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	frag := strings.ToLower(strings.TrimSpace(prefix))
	if len([]rune(frag)) > MaxFragment {
		frag = string([]rune(frag)[:MaxFragment])
	}

	members, err := ix.rdb.ZRange(ctx, fragKey(frag), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	docs := make([]Document, 0, len(members))
	for _, member := range members {
		id, convErr := strconv.ParseUint(member, 10, 64)
		if convErr != nil {
			continue
		}
		fields, getErr := ix.rdb.HGetAll(ctx, docKey(uint(id))).Result()
		if getErr != nil {
			return nil, errors.Join(ErrUnavailable, getErr)
		}
		if fields["status"] != "active" {
			continue
		}
		docs = append(docs, Document{ID: uint(id), Name: fields["name"]})
	}
	return docs, nil
}
