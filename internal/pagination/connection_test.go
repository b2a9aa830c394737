package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBuildConnectionAttachesCursors(t *testing.T) {
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	items := []memoryRecord{
		{Name: "a", Key: SortKey{CreatedAt: base, UUID: uuid.New()}},
		{Name: "b", Key: SortKey{CreatedAt: base.Add(time.Minute), UUID: uuid.New()}},
		{Name: "c", Key: SortKey{CreatedAt: base.Add(2 * time.Minute), UUID: uuid.New()}},
	}

	conn := BuildConnection(items, true, false, 42, recordKey)

	if len(conn.Edges) != 3 {
		t.Fatalf("expected 3 edges, got %d", len(conn.Edges))
	}
	if conn.TotalCount != 42 {
		t.Errorf("expected totalCount=42, got %d", conn.TotalCount)
	}
	for i, edge := range conn.Edges {
		decoded, err := DecodeCursor(edge.Cursor)
		if err != nil {
			t.Fatalf("edge %d cursor does not decode: %v", i, err)
		}
		if !decoded.CreatedAt.Equal(items[i].Key.CreatedAt) || decoded.UUID != items[i].Key.UUID {
			t.Errorf("edge %d cursor does not match its node's sort key", i)
		}
	}
	if conn.PageInfo.StartCursor == nil || *conn.PageInfo.StartCursor != conn.Edges[0].Cursor {
		t.Error("startCursor must be the first edge's cursor")
	}
	if conn.PageInfo.EndCursor == nil || *conn.PageInfo.EndCursor != conn.Edges[2].Cursor {
		t.Error("endCursor must be the last edge's cursor")
	}
	if !conn.PageInfo.HasNextPage || conn.PageInfo.HasPreviousPage {
		t.Error("page flags must pass through unchanged")
	}
}

func TestBuildConnectionEmpty(t *testing.T) {
	conn := BuildConnection(nil, false, false, 0, recordKey)

	if conn.Edges == nil || len(conn.Edges) != 0 {
		t.Fatal("expected a non-nil empty edge slice")
	}
	if conn.PageInfo.StartCursor != nil || conn.PageInfo.EndCursor != nil {
		t.Error("empty connection must have absent cursors")
	}
}
