package pagination

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

type memoryRecord struct {
	Name string
	Key  SortKey
}

// memorySource is an in-memory Source with the same bound semantics
// the real store implements.
type memorySource struct {
	records  []memoryRecord
	fetchErr error
	countErr error
}

func (m *memorySource) Fetch(_ context.Context, after, before *SortKey, limit int, desc bool) ([]memoryRecord, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}

	var matched []memoryRecord
	for _, r := range m.records {
		if after != nil && !after.Less(r.Key) {
			continue
		}
		if before != nil && !r.Key.Less(*before) {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool {
		if desc {
			return matched[j].Key.Less(matched[i].Key)
		}
		return matched[i].Key.Less(matched[j].Key)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *memorySource) Count(_ context.Context) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return int64(len(m.records)), nil
}

func recordKey(r memoryRecord) SortKey { return r.Key }

func seededSource(n int) *memorySource {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &memorySource{}
	for i := 0; i < n; i++ {
		src.records = append(src.records, memoryRecord{
			Name: fmt.Sprintf("U%d", i+1),
			Key:  SortKey{CreatedAt: base.Add(time.Duration(i) * time.Minute), UUID: uuid.New()},
		})
	}
	return src
}

func names(conn *Connection[memoryRecord]) []string {
	out := make([]string, 0, len(conn.Edges))
	for _, e := range conn.Edges {
		out = append(out, e.Node.Name)
	}
	return out
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestPaginateForwardScenario(t *testing.T) {
	src := seededSource(5)
	ctx := context.Background()

	first, err := Paginate(ctx, src, Args{First: intPtr(2)}, recordKey)
	if err != nil {
		t.Fatalf("first page failed: %v", err)
	}
	if got := names(first); len(got) != 2 || got[0] != "U1" || got[1] != "U2" {
		t.Fatalf("expected [U1 U2], got %v", got)
	}
	if !first.PageInfo.HasNextPage {
		t.Error("expected hasNextPage=true on first page")
	}
	if first.PageInfo.HasPreviousPage {
		t.Error("expected hasPreviousPage=false on first page")
	}
	if first.TotalCount != 5 {
		t.Errorf("expected totalCount=5, got %d", first.TotalCount)
	}

	second, err := Paginate(ctx, src, Args{First: intPtr(2), After: first.PageInfo.EndCursor}, recordKey)
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if got := names(second); len(got) != 2 || got[0] != "U3" || got[1] != "U4" {
		t.Fatalf("expected [U3 U4], got %v", got)
	}
	if !second.PageInfo.HasNextPage {
		t.Error("expected hasNextPage=true on second page")
	}

	third, err := Paginate(ctx, src, Args{First: intPtr(2), After: second.PageInfo.EndCursor}, recordKey)
	if err != nil {
		t.Fatalf("third page failed: %v", err)
	}
	if got := names(third); len(got) != 1 || got[0] != "U5" {
		t.Fatalf("expected [U5], got %v", got)
	}
	if third.PageInfo.HasNextPage {
		t.Error("expected hasNextPage=false on final page")
	}
}

func TestPaginateBackward(t *testing.T) {
	src := seededSource(5)
	ctx := context.Background()

	last := EncodeCursor(src.records[4].Key)
	conn, err := Paginate(ctx, src, Args{Last: intPtr(2), Before: &last}, recordKey)
	if err != nil {
		t.Fatalf("backward page failed: %v", err)
	}
	if got := names(conn); len(got) != 2 || got[0] != "U3" || got[1] != "U4" {
		t.Fatalf("expected ascending [U3 U4], got %v", got)
	}
	if !conn.PageInfo.HasPreviousPage {
		t.Error("expected hasPreviousPage=true with records remaining before the page")
	}
	if conn.PageInfo.HasNextPage {
		t.Error("backward paging must not report hasNextPage from the probe")
	}

	// Everything before U5 fits into one page: no previous page left.
	full, err := Paginate(ctx, src, Args{Last: intPtr(4), Before: &last}, recordKey)
	if err != nil {
		t.Fatalf("backward full page failed: %v", err)
	}
	if len(full.Edges) != 4 {
		t.Fatalf("expected 4 edges, got %d", len(full.Edges))
	}
	if full.PageInfo.HasPreviousPage {
		t.Error("expected hasPreviousPage=false when page absorbs all earlier records")
	}
}

func TestPaginateDefaultPageSize(t *testing.T) {
	src := seededSource(DefaultPageSize + 5)
	conn, err := Paginate(context.Background(), src, Args{}, recordKey)
	if err != nil {
		t.Fatalf("default paging failed: %v", err)
	}
	if len(conn.Edges) != DefaultPageSize {
		t.Fatalf("expected default page of %d edges, got %d", DefaultPageSize, len(conn.Edges))
	}
	if !conn.PageInfo.HasNextPage {
		t.Error("expected hasNextPage=true past the default page")
	}
}

func TestPaginateClampsOversizedRequests(t *testing.T) {
	src := seededSource(MaxPageSize + 20)
	conn, err := Paginate(context.Background(), src, Args{First: intPtr(MaxPageSize + 500)}, recordKey)
	if err != nil {
		t.Fatalf("clamped paging must not error: %v", err)
	}
	if len(conn.Edges) != MaxPageSize {
		t.Fatalf("expected clamp to %d edges, got %d", MaxPageSize, len(conn.Edges))
	}
	if !conn.PageInfo.HasNextPage {
		t.Error("expected hasNextPage=true beyond the clamped page")
	}
}

func TestPaginateRejectsConflictingArgs(t *testing.T) {
	src := seededSource(3)
	cursor := EncodeCursor(src.records[1].Key)

	cases := map[string]Args{
		"first and last":    {First: intPtr(5), Last: intPtr(5)},
		"after and before":  {After: &cursor, Before: &cursor},
		"last with after":   {Last: intPtr(2), After: &cursor},
		"first with before": {First: intPtr(2), Before: &cursor},
		"negative first":    {First: intPtr(-1)},
		"negative last":     {Last: intPtr(-3)},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Paginate(context.Background(), src, args, recordKey); !errors.Is(err, ErrInvalidPaginationArgs) {
				t.Errorf("expected ErrInvalidPaginationArgs, got %v", err)
			}
		})
	}
}

func TestPaginateRejectsInvalidCursor(t *testing.T) {
	src := seededSource(3)
	_, err := Paginate(context.Background(), src, Args{First: intPtr(2), After: strPtr("not-a-valid-cursor")}, recordKey)
	if !errors.Is(err, ErrInvalidCursor) {
		t.Errorf("expected ErrInvalidCursor, got %v", err)
	}
}

func TestPaginateEmptyResult(t *testing.T) {
	conn, err := Paginate(context.Background(), &memorySource{}, Args{First: intPtr(10)}, recordKey)
	if err != nil {
		t.Fatalf("empty result must not error: %v", err)
	}
	if len(conn.Edges) != 0 {
		t.Fatalf("expected zero edges, got %d", len(conn.Edges))
	}
	if conn.TotalCount != 0 {
		t.Errorf("expected totalCount=0, got %d", conn.TotalCount)
	}
	if conn.PageInfo.HasNextPage || conn.PageInfo.HasPreviousPage {
		t.Error("empty connection must have both page flags false")
	}
	if conn.PageInfo.StartCursor != nil || conn.PageInfo.EndCursor != nil {
		t.Error("empty connection must have absent start/end cursors")
	}
}

func TestPaginateOrderPreservation(t *testing.T) {
	// Two records share a timestamp; the uuid tiebreaker must keep a
	// strict total order and paging across the tie must not skip.
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	idA := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	idB := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	src := &memorySource{records: []memoryRecord{
		{Name: "tieB", Key: SortKey{CreatedAt: base, UUID: idB}},
		{Name: "tieA", Key: SortKey{CreatedAt: base, UUID: idA}},
		{Name: "later", Key: SortKey{CreatedAt: base.Add(time.Hour), UUID: uuid.New()}},
	}}

	first, err := Paginate(context.Background(), src, Args{First: intPtr(1)}, recordKey)
	if err != nil {
		t.Fatalf("paging failed: %v", err)
	}
	if got := names(first); got[0] != "tieA" {
		t.Fatalf("expected tieA first, got %v", got)
	}

	rest, err := Paginate(context.Background(), src, Args{First: intPtr(5), After: first.PageInfo.EndCursor}, recordKey)
	if err != nil {
		t.Fatalf("paging after tie failed: %v", err)
	}
	if got := names(rest); len(got) != 2 || got[0] != "tieB" || got[1] != "later" {
		t.Fatalf("expected [tieB later] after the tie, got %v", got)
	}

	boundary, err := DecodeCursor(*first.PageInfo.EndCursor)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	for _, e := range rest.Edges {
		if e.Node.Key.Less(boundary) {
			t.Errorf("record %s sorts before the paging bound", e.Node.Name)
		}
	}
}

func TestPaginatePropagatesBackendErrors(t *testing.T) {
	backendErr := errors.New("connection lost")

	if _, err := Paginate(context.Background(), &memorySource{fetchErr: backendErr}, Args{}, recordKey); !errors.Is(err, backendErr) {
		t.Errorf("fetch error not propagated, got %v", err)
	}
	if _, err := Paginate(context.Background(), &memorySource{countErr: backendErr}, Args{}, recordKey); !errors.Is(err, backendErr) {
		t.Errorf("count error not propagated, got %v", err)
	}
}
