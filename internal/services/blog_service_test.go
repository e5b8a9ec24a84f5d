package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krupapatkar/appsolution-admin/internal/assets"
	"github.com/krupapatkar/appsolution-admin/internal/errs"
	"github.com/krupapatkar/appsolution-admin/internal/metrics"
	"github.com/krupapatkar/appsolution-admin/internal/models"
	"github.com/krupapatkar/appsolution-admin/internal/query"
	"github.com/krupapatkar/appsolution-admin/internal/tracing"
)

func newBlogService(store *fakeBlogStore, identity IdentityResolver) *BlogService {
	return NewBlogService(store, nil, nil, identity, metrics.NewMetrics(), tracing.Disabled())
}

func seedPost(t *testing.T, svc *BlogService, authorID uuid.UUID, title, status string) *models.BlogPost {
	t.Helper()
	post, err := svc.Create(context.Background(), authorID, CreateBlogPostInput{
		Title:    title,
		Excerpt:  "excerpt for " + title,
		Content:  "content",
		Category: "engineering",
		Status:   status,
	}, assets.BlogAssets{})
	require.NoError(t, err)
	return post
}

func TestBlogCreateDefaultsToDraft(t *testing.T) {
	svc := newBlogService(newFakeBlogStore(), nil)

	post := seedPost(t, svc, uuid.New(), "First Post", "")
	assert.Equal(t, models.BlogDraft, post.Status)
	assert.Equal(t, int64(0), post.Views)
}

func TestBlogCreateValidation(t *testing.T) {
	svc := newBlogService(newFakeBlogStore(), nil)

	_, err := svc.Create(context.Background(), uuid.New(), CreateBlogPostInput{
		Excerpt: "e", Content: "c", Category: "eng",
	}, assets.BlogAssets{})
	assert.True(t, errs.IsValidation(err))

	_, err = svc.Create(context.Background(), uuid.New(), CreateBlogPostInput{
		Title: "t", Excerpt: "e", Content: "c", Category: "eng", Status: "LIVE",
	}, assets.BlogAssets{})
	assert.True(t, errs.IsValidation(err))
}

func TestBlogDraftLifecycle(t *testing.T) {
	svc := newBlogService(newFakeBlogStore(), nil)
	post := seedPost(t, svc, uuid.New(), "Lifecycle", "")

	// Drafts are invisible to public readers.
	_, err := svc.GetPublic(context.Background(), post.ID)
	assert.True(t, errs.IsNotFound(err))

	published, err := svc.Transition(context.Background(), post.ID, string(models.BlogPublished))
	require.NoError(t, err)
	assert.Equal(t, models.BlogPublished, published.Status)

	// First public read counts exactly one view.
	view, err := svc.GetPublic(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.Views)

	view, err = svc.GetPublic(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.Views)

	// Retracting hides it again without resetting the counter.
	_, err = svc.Transition(context.Background(), post.ID, string(models.BlogDraft))
	require.NoError(t, err)

	_, err = svc.GetPublic(context.Background(), post.ID)
	assert.True(t, errs.IsNotFound(err))

	admin, err := svc.GetAdmin(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), admin.Views)
}

func TestBlogAdminReadDoesNotCountView(t *testing.T) {
	svc := newBlogService(newFakeBlogStore(), nil)
	post := seedPost(t, svc, uuid.New(), "Quiet", string(models.BlogPublished))

	_, err := svc.GetAdmin(context.Background(), post.ID)
	require.NoError(t, err)

	view, err := svc.GetPublic(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.Views)
}

func TestBlogAuthorResolution(t *testing.T) {
	authorID := uuid.New()
	identity := &fakeIdentity{names: map[uuid.UUID]string{authorID: "Dana Writer"}}
	svc := newBlogService(newFakeBlogStore(), identity)

	post := seedPost(t, svc, authorID, "Attributed", string(models.BlogPublished))
	orphan := seedPost(t, svc, uuid.New(), "Orphaned", string(models.BlogPublished))

	view, err := svc.GetPublic(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dana Writer", view.AuthorName)

	// Unresolvable authors fall back rather than fail the read.
	view, err = svc.GetPublic(context.Background(), orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, UnknownAuthor, view.AuthorName)
}

func TestBlogGetPublicReadThroughCache(t *testing.T) {
	store := newFakeBlogStore()
	cacheClient := newFakeCache()
	svc := NewBlogService(store, cacheClient, nil, nil, metrics.NewMetrics(), tracing.Disabled())
	post := seedPost(t, svc, uuid.New(), "Cached Piece", string(models.BlogPublished))

	// First read misses the cache and fills it.
	view, err := svc.GetPublic(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.Views)
	assert.Equal(t, 0, cacheClient.hits)

	// Second read is served from the cache but still counts the view
	// in the store.
	view, err = svc.GetPublic(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cached Piece", view.Title)
	assert.Equal(t, 1, cacheClient.hits)

	admin, err := svc.GetAdmin(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), admin.Views)
}

func TestBlogCacheInvalidatedOnWrite(t *testing.T) {
	store := newFakeBlogStore()
	cacheClient := newFakeCache()
	svc := NewBlogService(store, cacheClient, nil, nil, metrics.NewMetrics(), tracing.Disabled())
	post := seedPost(t, svc, uuid.New(), "Old Title", string(models.BlogPublished))

	_, err := svc.GetPublic(context.Background(), post.ID)
	require.NoError(t, err)

	newTitle := "New Title"
	_, err = svc.Update(context.Background(), post.ID, UpdateBlogPostInput{Title: &newTitle}, assets.BlogAssets{})
	require.NoError(t, err)

	view, err := svc.GetPublic(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", view.Title)

	// Retracting drops the cached copy, so the post disappears from
	// public reads immediately.
	_, err = svc.Transition(context.Background(), post.ID, string(models.BlogDraft))
	require.NoError(t, err)

	_, err = svc.GetPublic(context.Background(), post.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestBlogListPublicScope(t *testing.T) {
	svc := newBlogService(newFakeBlogStore(), nil)

	seedPost(t, svc, uuid.New(), "Published Piece", string(models.BlogPublished))
	seedPost(t, svc, uuid.New(), "Hidden Draft", "")

	page, err := svc.List(context.Background(), query.ListParams{
		Scope: query.ScopePublic,
		Page:  query.Page{Number: 1, Size: query.DefaultBlogPageSize},
	})
	require.NoError(t, err)

	require.Len(t, page.Posts, 1)
	assert.Equal(t, "Published Piece", page.Posts[0].Title)
	assert.Equal(t, int64(1), page.Total)
}

func TestBlogListSearchMatchesCategory(t *testing.T) {
	svc := newBlogService(newFakeBlogStore(), nil)

	seedPost(t, svc, uuid.New(), "Unrelated", string(models.BlogPublished))
	post, err := svc.Create(context.Background(), uuid.New(), CreateBlogPostInput{
		Title:    "Scaling Postgres",
		Excerpt:  "lessons",
		Content:  "c",
		Category: "databases",
		Status:   string(models.BlogPublished),
	}, assets.BlogAssets{})
	require.NoError(t, err)

	page, err := svc.List(context.Background(), query.ListParams{
		Scope:  query.ScopePublic,
		Search: "database",
		Page:   query.Page{Number: 1, Size: 6},
	})
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, post.ID, page.Posts[0].ID)
}

func TestBlogTransitionIdempotent(t *testing.T) {
	svc := newBlogService(newFakeBlogStore(), nil)
	post := seedPost(t, svc, uuid.New(), "Stable", string(models.BlogPublished))

	again, err := svc.Transition(context.Background(), post.ID, string(models.BlogPublished))
	require.NoError(t, err)
	assert.Equal(t, models.BlogPublished, again.Status)
}

func TestBlogDelete(t *testing.T) {
	svc := newBlogService(newFakeBlogStore(), nil)
	post := seedPost(t, svc, uuid.New(), "Ephemeral", "")

	require.NoError(t, svc.Delete(context.Background(), post.ID))

	_, err := svc.GetAdmin(context.Background(), post.ID)
	assert.True(t, errs.IsNotFound(err))
}
