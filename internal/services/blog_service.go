package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/krupapatkar/appsolution-admin/internal/assets"
	"github.com/krupapatkar/appsolution-admin/internal/cache"
	"github.com/krupapatkar/appsolution-admin/internal/errs"
	"github.com/krupapatkar/appsolution-admin/internal/metrics"
	"github.com/krupapatkar/appsolution-admin/internal/models"
	"github.com/krupapatkar/appsolution-admin/internal/query"
	"github.com/krupapatkar/appsolution-admin/internal/search"
	"github.com/krupapatkar/appsolution-admin/internal/tracing"
	"github.com/krupapatkar/appsolution-admin/internal/workflow"
)

const blogPostCacheTTL = 5 * time.Minute

// UnknownAuthor is the display name used when the identity
// collaborator cannot resolve an author id.
const UnknownAuthor = "Unknown author"

// BlogService handles blog content business logic
type BlogService struct {
	store    BlogStore
	cache    Cache
	search   *search.ElasticClient
	identity IdentityResolver
	metrics  *metrics.Metrics
	tracer   tracing.Tracer
}

// NewBlogService creates a new blog service
func NewBlogService(
	store BlogStore,
	cacheClient Cache,
	elasticClient *search.ElasticClient,
	identity IdentityResolver,
	metricsCollector *metrics.Metrics,
	tracer tracing.Tracer,
) *BlogService {
	return &BlogService{
		store:    store,
		cache:    cacheClient,
		search:   elasticClient,
		identity: identity,
		metrics:  metricsCollector,
		tracer:   tracer,
	}
}

// BlogPostView is a post with its author name resolved for display.
type BlogPostView struct {
	models.BlogPost
	AuthorName string `json:"authorName"`
}

// BlogPage is a page of posts with the pagination envelope.
type BlogPage struct {
	Posts       []BlogPostView `json:"posts"`
	Total       int64          `json:"total"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// List returns a filtered, searched page of posts. Public scope only
// sees PUBLISHED posts.
func (s *BlogService) List(ctx context.Context, params query.ListParams) (*BlogPage, error) {
	if params.Status != "" && !workflow.IsStatus(workflow.KindBlogPost, params.Status) {
		return nil, errs.Validation("status", "unknown status "+params.Status)
	}

	posts, total, err := s.store.List(ctx, params)
	if err != nil {
		return nil, err
	}

	views := make([]BlogPostView, len(posts))
	for i, post := range posts {
		views[i] = BlogPostView{BlogPost: post, AuthorName: s.authorName(ctx, post.AuthorID)}
	}

	return &BlogPage{
		Posts:       views,
		Total:       total,
		TotalPages:  query.TotalPages(total, params.Page.Size),
		CurrentPage: params.Page.Number,
	}, nil
}

// GetPublic returns a published post, read through the cache, and
// counts the view. Every public fetch increments the counter exactly
// once; the counter write always goes to the store, a cache hit only
// skips the body read, so the displayed count may lag on cached reads.
func (s *BlogService) GetPublic(ctx context.Context, id uuid.UUID) (*BlogPostView, error) {
	key := cache.BlogPostCacheKey(id)
	if s.cache != nil {
		var cached models.BlogPost
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.countView(ctx, &cached)
			return &BlogPostView{BlogPost: cached, AuthorName: s.authorName(ctx, cached.AuthorID)}, nil
		}
	}

	post, err := s.store.GetPublishedByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.countView(ctx, post)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, post, blogPostCacheTTL); err != nil {
			log.Warn().Err(err).Str("post_id", id.String()).Msg("Failed to cache blog post")
		}
	}

	return &BlogPostView{BlogPost: *post, AuthorName: s.authorName(ctx, post.AuthorID)}, nil
}

func (s *BlogService) countView(ctx context.Context, post *models.BlogPost) {
	if err := s.store.IncrementViews(ctx, post.ID); err != nil {
		log.Warn().Err(err).Str("post_id", post.ID.String()).Msg("Failed to count blog post view")
	} else {
		post.Views++
		s.metrics.IncrementCounter("blog_views")
	}
}

// GetAdmin returns a post regardless of status.
func (s *BlogService) GetAdmin(ctx context.Context, id uuid.UUID) (*BlogPostView, error) {
	post, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BlogPostView{BlogPost: *post, AuthorName: s.authorName(ctx, post.AuthorID)}, nil
}

// CreateBlogPostInput carries the validated fields for a new post.
type CreateBlogPostInput struct {
	Title    string
	Excerpt  string
	Content  string
	Category string
	Tags     models.StringList
	Status   string
}

// Create validates and inserts a new post authored by the given admin
// principal. Posts start as DRAFT unless PUBLISHED is supplied.
func (s *BlogService) Create(ctx context.Context, authorID uuid.UUID, in CreateBlogPostInput, files assets.BlogAssets) (*models.BlogPost, error) {
	txn := s.tracer.StartTransaction("create-blog-post")
	defer s.tracer.EndTransaction(txn)

	if in.Title == "" {
		return nil, errs.Validation("title", "is required")
	}
	if in.Excerpt == "" {
		return nil, errs.Validation("excerpt", "is required")
	}
	if in.Content == "" {
		return nil, errs.Validation("content", "is required")
	}
	if in.Category == "" {
		return nil, errs.Validation("category", "is required")
	}

	status := models.BlogDraft
	if in.Status != "" {
		if !workflow.IsStatus(workflow.KindBlogPost, in.Status) {
			return nil, errs.Validation("status", "unknown status "+in.Status)
		}
		status = models.BlogStatus(in.Status)
	}

	post := &models.BlogPost{
		ID:       uuid.New(),
		Title:    in.Title,
		Excerpt:  in.Excerpt,
		Content:  in.Content,
		Category: in.Category,
		Tags:     in.Tags,
		AuthorID: authorID,
		Status:   status,
	}
	files.ApplyToPost(post)

	if err := s.store.Create(ctx, post); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	s.metrics.IncrementCounter("blog_posts_created")
	s.indexPost(ctx, post)

	log.Info().Str("post_id", post.ID.String()).Str("title", post.Title).Msg("Blog post created")
	return post, nil
}

// UpdateBlogPostInput carries a partial patch; nil fields are left
// unchanged.
type UpdateBlogPostInput struct {
	Title    *string
	Excerpt  *string
	Content  *string
	Category *string
	Tags     *models.StringList
	Status   *string
}

// Update applies a partial patch plus any newly uploaded image.
func (s *BlogService) Update(ctx context.Context, id uuid.UUID, in UpdateBlogPostInput, files assets.BlogAssets) (*models.BlogPost, error) {
	fields := make(map[string]interface{})
	if in.Title != nil {
		if *in.Title == "" {
			return nil, errs.Validation("title", "must not be empty")
		}
		fields["title"] = *in.Title
	}
	if in.Excerpt != nil {
		fields["excerpt"] = *in.Excerpt
	}
	if in.Content != nil {
		fields["content"] = *in.Content
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.Tags != nil {
		fields["tags"] = *in.Tags
	}
	if in.Status != nil {
		if !workflow.IsStatus(workflow.KindBlogPost, *in.Status) {
			return nil, errs.Validation("status", "unknown status "+*in.Status)
		}
		log.Warn().Str("post_id", id.String()).Str("status", *in.Status).
			Msg("Blog post status overwritten through generic update")
		fields["status"] = *in.Status
	}
	files.ApplyToFields(fields)

	post, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.indexPost(ctx, post)
	return post, nil
}

// Transition publishes or retracts a post. Setting the current status
// again is an idempotent no-op.
func (s *BlogService) Transition(ctx context.Context, id uuid.UUID, newStatus string) (*models.BlogPost, error) {
	post, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if string(post.Status) == newStatus {
		return post, nil
	}
	if err := workflow.Validate(workflow.KindBlogPost, string(post.Status), newStatus); err != nil {
		return nil, err
	}

	if err := s.store.UpdateStatus(ctx, id, post.Status, models.BlogStatus(newStatus)); err != nil {
		return nil, err
	}
	post.Status = models.BlogStatus(newStatus)
	s.invalidate(ctx, id)
	s.indexPost(ctx, post)

	log.Info().Str("post_id", id.String()).Str("status", newStatus).Msg("Blog post status changed")
	return post, nil
}

// Delete removes the post.
func (s *BlogService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	log.Info().Str("post_id", id.String()).Msg("Blog post deleted")
	return nil
}

func (s *BlogService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.BlogPostCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("post_id", id.String()).Msg("Failed to invalidate blog post cache")
	}
}

func (s *BlogService) authorName(ctx context.Context, id uuid.UUID) string {
	if s.identity == nil {
		return UnknownAuthor
	}
	name, err := s.identity.ResolveName(ctx, id)
	if err != nil || name == "" {
		return UnknownAuthor
	}
	return name
}

func (s *BlogService) indexPost(ctx context.Context, post *models.BlogPost) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexBlogPost(ctx, post); err != nil {
		log.Warn().Err(err).Str("post_id", post.ID.String()).Msg("Failed to index blog post")
	}
}
