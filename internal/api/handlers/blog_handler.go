package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/krupapatkar/appsolution-admin/internal/api/middleware"
	"github.com/krupapatkar/appsolution-admin/internal/assets"
	"github.com/krupapatkar/appsolution-admin/internal/errs"
	"github.com/krupapatkar/appsolution-admin/internal/query"
	"github.com/krupapatkar/appsolution-admin/internal/services"
	"github.com/krupapatkar/appsolution-admin/internal/storage"
)

// BlogHandler handles blog content HTTP requests
type BlogHandler struct {
	blog  *services.BlogService
	blobs storage.BlobStore
}

// NewBlogHandler creates a new blog handler
func NewBlogHandler(blog *services.BlogService, blobs storage.BlobStore) *BlogHandler {
	return &BlogHandler{
		blog:  blog,
		blobs: blobs,
	}
}

// HandleListPublic returns the public blog page of published posts.
func (h *BlogHandler) HandleListPublic(c *gin.Context) {
	page, ok := parsePage(c, query.DefaultBlogPageSize)
	if !ok {
		return
	}

	result, err := h.blog.List(c.Request.Context(), query.ListParams{
		Scope:    query.ScopePublic,
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     page,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleGetPublic returns a published post and counts the view.
func (h *BlogHandler) HandleGetPublic(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	post, err := h.blog.GetPublic(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// HandleListAdmin returns the admin blog page across all statuses.
func (h *BlogHandler) HandleListAdmin(c *gin.Context) {
	page, ok := parsePage(c, query.DefaultAdminPageSize)
	if !ok {
		return
	}

	result, err := h.blog.List(c.Request.Context(), query.ListParams{
		Scope:    query.ScopeAdmin,
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Page:     page,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleGetAdmin returns a post regardless of status, without counting
// a view.
func (h *BlogHandler) HandleGetAdmin(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	post, err := h.blog.GetAdmin(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// HandleCreate creates a post from a multipart form, authored by the
// authenticated admin.
func (h *BlogHandler) HandleCreate(c *gin.Context) {
	in := services.CreateBlogPostInput{
		Title:    c.PostForm("title"),
		Excerpt:  c.PostForm("excerpt"),
		Content:  c.PostForm("content"),
		Category: c.PostForm("category"),
		Status:   c.PostForm("status"),
	}

	tags, err := assets.DecodeList("tags", c.PostForm("tags"))
	if err != nil {
		respondError(c, err)
		return
	}
	in.Tags = tags

	files, ok := h.collectAssets(c)
	if !ok {
		return
	}

	post, err := h.blog.Create(c.Request.Context(), middleware.AdminID(c), in, files)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// HandleUpdate patches a post; absent form fields stay unchanged.
func (h *BlogHandler) HandleUpdate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var in services.UpdateBlogPostInput
	if v, ok := c.GetPostForm("title"); ok {
		in.Title = &v
	}
	if v, ok := c.GetPostForm("excerpt"); ok {
		in.Excerpt = &v
	}
	if v, ok := c.GetPostForm("content"); ok {
		in.Content = &v
	}
	if v, ok := c.GetPostForm("category"); ok {
		in.Category = &v
	}
	if v, ok := c.GetPostForm("status"); ok {
		in.Status = &v
	}
	if raw, ok := c.GetPostForm("tags"); ok {
		tags, err := assets.DecodeList("tags", raw)
		if err != nil {
			respondError(c, err)
			return
		}
		in.Tags = &tags
	}

	files, ok := h.collectAssets(c)
	if !ok {
		return
	}

	post, err := h.blog.Update(c.Request.Context(), id, in, files)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// HandleTransition publishes or retracts a post.
func (h *BlogHandler) HandleTransition(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	status, ok := bindStatus(c)
	if !ok {
		return
	}

	post, err := h.blog.Transition(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// HandleDelete removes a post.
func (h *BlogHandler) HandleDelete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.blog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "blog post deleted"})
}

func (h *BlogHandler) collectAssets(c *gin.Context) (assets.BlogAssets, bool) {
	var files assets.BlogAssets

	header, err := c.FormFile("image")
	if err != nil {
		return files, true
	}

	f, err := header.Open()
	if err != nil {
		respondError(c, errs.Validation("image", "could not read upload"))
		return files, false
	}
	defer f.Close()

	ref, err := h.blobs.Save(c.Request.Context(), assets.FolderBlog, header.Filename, f)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to store upload")
		respondError(c, err)
		return files, false
	}

	files.AttachImage(ref)
	return files, true
}

// RegisterRoutes registers the handler's routes
func (h *BlogHandler) RegisterRoutes(router *gin.Engine) {
	public := router.Group("/api/blog")
	{
		public.GET("", h.HandleListPublic)
		public.GET("/:id", h.HandleGetPublic)
	}

	admin := router.Group("/api/blog", middleware.RequireAdmin())
	{
		admin.GET("/admin/all", h.HandleListAdmin)
		admin.GET("/admin/:id", h.HandleGetAdmin)
		admin.POST("", h.HandleCreate)
		admin.PUT("/:id", h.HandleUpdate)
		admin.PATCH("/:id/status", h.HandleTransition)
		admin.DELETE("/:id", h.HandleDelete)
	}
}
