package pagination

// Edge pairs a node with the cursor marking its position.
type Edge[T any] struct {
	Node   T      `json:"node"`
	Cursor string `json:"cursor"`
}

type PageInfo struct {
	HasNextPage     bool    `json:"has_next_page"`
	HasPreviousPage bool    `json:"has_previous_page"`
	StartCursor     *string `json:"start_cursor"`
	EndCursor       *string `json:"end_cursor"`
}

// Connection is the paginated wrapper returned by every list field.
// An empty result is a valid connection with zero edges, not an error.
type Connection[T any] struct {
	Edges      []Edge[T] `json:"edges"`
	PageInfo   PageInfo  `json:"page_info"`
	TotalCount int64     `json:"total_count"`
}

// BuildConnection wraps one page of records into the connection shape.
// keyOf extracts the sort key used to derive each edge cursor.
func BuildConnection[T any](items []T, hasNext, hasPrev bool, total int64, keyOf func(T) SortKey) *Connection[T] {
	edges := make([]Edge[T], 0, len(items))
	for _, item := range items {
		edges = append(edges, Edge[T]{
			Node:   item,
			Cursor: EncodeCursor(keyOf(item)),
		})
	}

	info := PageInfo{
		HasNextPage:     hasNext,
		HasPreviousPage: hasPrev,
	}
	if len(edges) > 0 {
		info.StartCursor = &edges[0].Cursor
		info.EndCursor = &edges[len(edges)-1].Cursor
	}

	return &Connection[T]{
		Edges:      edges,
		PageInfo:   info,
		TotalCount: total,
	}
}
