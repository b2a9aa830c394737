package pagination

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultPageSize applies when neither first nor last is supplied.
	DefaultPageSize = 10
	// MaxPageSize caps first/last. Exceeding it silently clamps.
	MaxPageSize = 100
)

// ErrInvalidPaginationArgs is returned for conflicting or out-of-range
// paging arguments (both directions supplied, negative count).
var ErrInvalidPaginationArgs = errors.New("invalid pagination arguments")

// Args carries relay-style paging arguments. Forward paging uses
// first/after, backward paging uses last/before; the two modes are
// mutually exclusive.
type Args struct {
	First  *int
	After  *string
	Last   *int
	Before *string
}

// Source abstracts the store query a paginator runs: one bounded
// ordered fetch and one independent count over the same filter.
type Source[T any] interface {
	// Fetch returns up to limit records matching the filter, with sort
	// keys strictly greater than after and strictly less than before,
	// ordered ascending by (created_at, uuid), or descending when desc.
	Fetch(ctx context.Context, after, before *SortKey, limit int, desc bool) ([]T, error)
	// Count returns the total matching population, independent of paging.
	Count(ctx context.Context) (int64, error)
}

type plan struct {
	limit    int
	backward bool
	after    *SortKey
	before   *SortKey
}

func resolve(args Args) (plan, error) {
	if args.First != nil && args.Last != nil {
		return plan{}, fmt.Errorf("%w: first and last are mutually exclusive", ErrInvalidPaginationArgs)
	}
	if args.After != nil && args.Before != nil {
		return plan{}, fmt.Errorf("%w: after and before are mutually exclusive", ErrInvalidPaginationArgs)
	}

	backward := args.Last != nil || args.Before != nil
	if backward && (args.First != nil || args.After != nil) {
		return plan{}, fmt.Errorf("%w: cannot mix forward and backward arguments", ErrInvalidPaginationArgs)
	}

	limit := DefaultPageSize
	if args.First != nil {
		limit = *args.First
	} else if args.Last != nil {
		limit = *args.Last
	}
	if limit < 0 {
		return plan{}, fmt.Errorf("%w: page size must not be negative", ErrInvalidPaginationArgs)
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	p := plan{limit: limit, backward: backward}
	if args.After != nil {
		key, err := DecodeCursor(*args.After)
		if err != nil {
			return plan{}, err
		}
		p.after = &key
	}
	if args.Before != nil {
		key, err := DecodeCursor(*args.Before)
		if err != nil {
			return plan{}, err
		}
		p.before = &key
	}
	return p, nil
}

// Paginate runs one page fetch (with an N+1 probe for the page flag)
// and the total count concurrently, then builds the connection. The
// two queries are independent; under concurrent writes they may see
// different snapshots, which is accepted.
func Paginate[T any](ctx context.Context, src Source[T], args Args, keyOf func(T) SortKey) (*Connection[T], error) {
	p, err := resolve(args)
	if err != nil {
		return nil, err
	}

	var (
		items []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = src.Fetch(gctx, p.after, p.before, p.limit+1, p.backward)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = src.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hasMore := len(items) > p.limit
	if hasMore {
		items = items[:p.limit]
	}

	var hasNext, hasPrev bool
	if p.backward {
		// Descending scan: the probe tells us whether older records
		// remain, i.e. a previous page exists. Restore ascending order.
		hasPrev = hasMore
		reverse(items)
	} else {
		hasNext = hasMore
	}

	return BuildConnection(items, hasNext, hasPrev, total, keyOf), nil
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
