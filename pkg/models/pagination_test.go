package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageRequest_Clamps(t *testing.T) {
	tests := []struct {
		name           string
		page, size     int
		wantPage, want int
	}{
		{"defaults", 0, 0, 1, 20},
		{"negative page", -3, 10, 1, 10},
		{"size above max", 2, 500, 2, 100},
		{"size at max", 1, 100, 1, 100},
		{"minimum size", 1, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewPageRequest(tt.page, tt.size, 20, 100)
			assert.Equal(t, tt.wantPage, r.Page)
			assert.Equal(t, tt.want, r.PageSize)
		})
	}
}

func TestResolve_TwentyFiveRecordsInPagesOfTen(t *testing.T) {
	expect := []struct {
		page        int
		offset      int
		hasNext     bool
		hasPrevious bool
	}{
		{1, 0, true, false},
		{2, 10, true, true},
		{3, 20, false, true},
	}

	for _, e := range expect {
		info, offset := PageRequest{Page: e.page, PageSize: 10}.Resolve(25)
		assert.Equal(t, 3, info.TotalPages)
		assert.Equal(t, 25, info.Count)
		assert.Equal(t, e.page, info.Page)
		assert.Equal(t, e.offset, offset)
		assert.Equal(t, e.hasNext, info.HasNext, "page %d has_next", e.page)
		assert.Equal(t, e.hasPrevious, info.HasPrevious, "page %d has_previous", e.page)
	}
}

func TestResolve_BeyondRangeReturnsLastPage(t *testing.T) {
	info, offset := PageRequest{Page: 99, PageSize: 10}.Resolve(25)
	assert.Equal(t, 3, info.Page)
	assert.Equal(t, 20, offset)
	assert.False(t, info.HasNext)
}

func TestResolve_EmptyResultHasOnePage(t *testing.T) {
	info, offset := PageRequest{Page: 4, PageSize: 20}.Resolve(0)
	assert.Equal(t, 1, info.Page)
	assert.Equal(t, 1, info.TotalPages)
	assert.Equal(t, 0, offset)
	assert.False(t, info.HasNext)
	assert.False(t, info.HasPrevious)
}

func TestGender_IsValid(t *testing.T) {
	assert.True(t, Gender("").IsValid())
	assert.True(t, GenderNA.IsValid())
	assert.True(t, Gender("hermaphrodite").IsValid())
	assert.False(t, Gender("droid").IsValid())
	assert.False(t, Gender("Male").IsValid())
}
