package graphql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocron-dev/holocron/pkg/models"
)

type item struct{ n int }

func items(n int) []*item {
	out := make([]*item, n)
	for i := range out {
		out[i] = &item{n: i}
	}
	return out
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestPaginate_FirstAndAfter(t *testing.T) {
	all := items(5)

	page1, err := paginate(all, intPtr(2), nil, 100)
	require.NoError(t, err)
	require.Len(t, page1.nodes, 2)
	assert.Equal(t, 5, page1.total)
	assert.True(t, page1.info.HasNextPage)
	assert.False(t, page1.info.HasPreviousPage)
	require.NotNil(t, page1.info.EndCursor)

	page2, err := paginate(all, intPtr(2), page1.info.EndCursor, 100)
	require.NoError(t, err)
	require.Len(t, page2.nodes, 2)
	assert.Equal(t, 2, page2.nodes[0].n)
	assert.True(t, page2.info.HasPreviousPage)

	page3, err := paginate(all, intPtr(2), page2.info.EndCursor, 100)
	require.NoError(t, err)
	require.Len(t, page3.nodes, 1)
	assert.False(t, page3.info.HasNextPage)
}

func TestPaginate_Defaults(t *testing.T) {
	p, err := paginate(items(3), nil, nil, 2)
	require.NoError(t, err)
	assert.Len(t, p.nodes, 2)
	assert.True(t, p.info.HasNextPage)

	empty, err := paginate(items(0), nil, strPtr(""), 2)
	require.NoError(t, err)
	assert.Empty(t, empty.nodes)
	assert.Nil(t, empty.info.StartCursor)
	assert.Nil(t, empty.info.EndCursor)
}

func TestPaginate_AfterPastEnd(t *testing.T) {
	p, err := paginate(items(2), nil, strPtr(encodeCursor(7)), 10)
	require.NoError(t, err)
	assert.Empty(t, p.nodes)
	assert.Equal(t, 2, p.total)
}

func TestPaginate_InvalidArguments(t *testing.T) {
	tests := []struct {
		name  string
		first *int
		after *string
	}{
		{"negative first", intPtr(-1), nil},
		{"first over limit", intPtr(11), nil},
		{"garbage cursor", nil, strPtr("%%%")},
		{"foreign cursor", nil, strPtr(ToGlobalID(TypeFilm, [16]byte{}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := paginate(items(3), tt.first, tt.after, 10)
			assert.ErrorIs(t, err, ErrInvalidPage)
		})
	}
}

func TestPersonConnection_EdgesCarryCursors(t *testing.T) {
	people := []*models.Person{{Name: "Luke"}, {Name: "Leia"}, {Name: "Han"}}

	conn, err := personConnection(people, intPtr(2), strPtr(encodeCursor(0)), 10)
	require.NoError(t, err)
	require.Len(t, conn.Edges, 2)
	assert.Equal(t, 3, conn.TotalCount)
	assert.Equal(t, "Leia", conn.Edges[0].Node.Name)
	assert.Equal(t, encodeCursor(1), conn.Edges[0].Cursor)
	assert.Equal(t, conn.Edges[1].Cursor, *conn.PageInfo.EndCursor)
	assert.False(t, conn.PageInfo.HasNextPage)
}

func TestCursor_RoundTrip(t *testing.T) {
	offset, err := decodeCursor(encodeCursor(12))
	require.NoError(t, err)
	assert.Equal(t, 12, offset)
}
