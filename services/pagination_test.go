package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/pulse/models"
)

func TestParsePage(t *testing.T) {
	cases := map[string]int{
		"":    1,
		"abc": 1,
		"0":   1,
		"-3":  1,
		"1":   1,
		"7":   7,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParsePage(raw), "raw=%q", raw)
	}
}

func TestPaginatePosts(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "writer")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		createPost(t, db, author.ID, fmt.Sprintf("post %d", i+1), nil, base.Add(time.Duration(i)*time.Minute))
	}

	q := func() *PostPage {
		page, err := PaginatePosts(db.Model(&models.Post{}), "")
		require.NoError(t, err)
		return page
	}

	first := q()
	assert.Equal(t, 1, first.Number)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, "post 25", first.Items[0].Text, "newest first")
	assert.Equal(t, "post 16", first.Items[9].Text)
	assert.Equal(t, int64(25), first.TotalItems)
	assert.Equal(t, 3, first.TotalPages)
	assert.False(t, first.HasPrev)
	assert.True(t, first.HasNext)

	last, err := PaginatePosts(db.Model(&models.Post{}), "3")
	require.NoError(t, err)
	assert.Equal(t, 3, last.Number)
	assert.Len(t, last.Items, 5)
	assert.Equal(t, "post 5", last.Items[0].Text)
	assert.True(t, last.HasPrev)
	assert.False(t, last.HasNext)
}

func TestPaginatePostsClampsBadInput(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "writer")
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		createPost(t, db, author.ID, fmt.Sprintf("post %d", i+1), nil, base.Add(time.Duration(i)*time.Minute))
	}

	for _, raw := range []string{"0", "-1", "garbage", ""} {
		page, err := PaginatePosts(db.Model(&models.Post{}), raw)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Number, "raw=%q", raw)
	}

	beyond, err := PaginatePosts(db.Model(&models.Post{}), "99")
	require.NoError(t, err)
	assert.Equal(t, 2, beyond.Number, "past-end clamps to the last page")
	assert.Len(t, beyond.Items, 2)
}

func TestPaginatePostsEmptySet(t *testing.T) {
	db := newTestDB(t)

	page, err := PaginatePosts(db.Model(&models.Post{}), "5")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.TotalItems)
	assert.Equal(t, 1, page.TotalPages)
	assert.False(t, page.HasPrev)
	assert.False(t, page.HasNext)
}

func TestHasNextMatchesTotals(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "writer")
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		createPost(t, db, author.ID, fmt.Sprintf("post %d", i+1), nil, base.Add(time.Duration(i)*time.Minute))
	}

	for p := 1; p <= 3; p++ {
		page, err := PaginatePosts(db.Model(&models.Post{}), fmt.Sprintf("%d", p))
		require.NoError(t, err)
		assert.Equal(t, int64(p)*PageSize < page.TotalItems, page.HasNext, "page=%d", p)
	}
}
