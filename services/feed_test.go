package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/pulse/models"
)

func TestGlobalFeedOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	createPost(t, db, alice.ID, "oldest", nil, base)
	createPost(t, db, bob.ID, "middle", nil, base.Add(time.Minute))
	createPost(t, db, alice.ID, "newest", nil, base.Add(2*time.Minute))

	page, err := svc.GlobalFeed("")
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "newest", page.Items[0].Text)
	assert.Equal(t, "middle", page.Items[1].Text)
	assert.Equal(t, "oldest", page.Items[2].Text)
	assert.Equal(t, "alice", page.Items[0].Author.Username, "author preloaded")
}

func TestGroupFeedFiltersByGroup(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedService(db)
	alice := createUser(t, db, "alice")

	group := models.Group{Title: "Travel", Slug: "travel", Description: "trips"}
	require.NoError(t, db.Create(&group).Error)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	createPost(t, db, alice.ID, "grouped", &group.ID, base)
	createPost(t, db, alice.ID, "ungrouped", nil, base.Add(time.Minute))

	page, err := svc.GroupFeed(group.ID, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "grouped", page.Items[0].Text)
	require.NotNil(t, page.Items[0].Group)
	assert.Equal(t, "travel", page.Items[0].Group.Slug)
}

func TestAuthorFeed(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	createPost(t, db, alice.ID, "from alice", nil, base)
	createPost(t, db, bob.ID, "from bob", nil, base.Add(time.Minute))

	page, err := svc.AuthorFeed(alice.ID, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "from alice", page.Items[0].Text)
}

func TestFeedForAuthors(t *testing.T) {
	db := newTestDB(t)
	feeds := NewFeedService(db)
	follows := NewFollowService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	createPost(t, db, alice.ID, "alice one", nil, base)
	createPost(t, db, alice.ID, "alice two", nil, base.Add(time.Minute))
	createPost(t, db, carol.ID, "carol post", nil, base.Add(2*time.Minute))

	_, err := follows.Follow(bob.ID, alice.ID)
	require.NoError(t, err)

	ids, err := follows.FollowedAuthorIDs(bob.ID)
	require.NoError(t, err)
	page, err := feeds.FeedForAuthors(ids, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "alice two", page.Items[0].Text)
	for _, item := range page.Items {
		assert.Equal(t, alice.ID, item.AuthorID, "only followed authors appear")
	}

	require.NoError(t, follows.Unfollow(bob.ID, alice.ID))
	ids, err = follows.FollowedAuthorIDs(bob.ID)
	require.NoError(t, err)
	page, err = feeds.FeedForAuthors(ids, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.TotalItems)
}

func TestFeedForAuthorsEmptySet(t *testing.T) {
	db := newTestDB(t)
	feeds := NewFeedService(db)

	page, err := feeds.FeedForAuthors(nil, "3")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.TotalPages)
}
