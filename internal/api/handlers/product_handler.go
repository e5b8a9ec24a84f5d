package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/krupapatkar/appsolution-admin/internal/api/middleware"
	"github.com/krupapatkar/appsolution-admin/internal/assets"
	"github.com/krupapatkar/appsolution-admin/internal/errs"
	"github.com/krupapatkar/appsolution-admin/internal/models"
	"github.com/krupapatkar/appsolution-admin/internal/query"
	"github.com/krupapatkar/appsolution-admin/internal/services"
	"github.com/krupapatkar/appsolution-admin/internal/storage"
)

// ProductHandler handles catalog HTTP requests
type ProductHandler struct {
	products *services.ProductService
	blobs    storage.BlobStore
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *services.ProductService, blobs storage.BlobStore) *ProductHandler {
	return &ProductHandler{
		products: products,
		blobs:    blobs,
	}
}

// HandleListPublic returns the public storefront catalog page.
func (h *ProductHandler) HandleListPublic(c *gin.Context) {
	page, ok := parsePage(c, query.DefaultProductPageSize)
	if !ok {
		return
	}

	result, err := h.products.List(c.Request.Context(), query.ListParams{
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

// HandleGetPublic returns a single active product.
func (h *ProductHandler) HandleGetPublic(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.products.GetPublic(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// HandleListAdmin returns the admin catalog page across all statuses.
func (h *ProductHandler) HandleListAdmin(c *gin.Context) {
	page, ok := parsePage(c, query.DefaultAdminPageSize)
	if !ok {
		return
	}

	result, err := h.products.List(c.Request.Context(), query.ListParams{
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

// HandleGetAdmin returns a single product regardless of status.
func (h *ProductHandler) HandleGetAdmin(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.products.GetAdmin(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// HandleCreate creates a product from a multipart form carrying both
// the scalar fields and the uploaded assets.
func (h *ProductHandler) HandleCreate(c *gin.Context) {
	in := services.CreateProductInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
	}

	if v, ok := c.GetPostForm("fullDescription"); ok {
		in.FullDescription = &v
	}
	if v, ok := c.GetPostForm("videoUrl"); ok {
		in.VideoURL = &v
	}
	if v, ok := c.GetPostForm("downloadUrl"); ok {
		in.DownloadURL = &v
	}
	if raw := c.PostForm("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, errs.Validation("price", "must be a number"))
			return
		}
		in.Price = price
	}

	var err error
	if in.Technologies, err = assets.DecodeList("technologies", c.PostForm("technologies")); err != nil {
		respondError(c, err)
		return
	}
	if in.Features, err = assets.DecodeList("features", c.PostForm("features")); err != nil {
		respondError(c, err)
		return
	}
	if in.Requirements, err = assets.DecodeList("requirements", c.PostForm("requirements")); err != nil {
		respondError(c, err)
		return
	}
	if in.Support, err = assets.DecodeList("support", c.PostForm("support")); err != nil {
		respondError(c, err)
		return
	}

	files, ok := h.collectAssets(c)
	if !ok {
		return
	}

	product, err := h.products.Create(c.Request.Context(), in, files)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// HandleUpdate patches a product; absent form fields stay unchanged.
func (h *ProductHandler) HandleUpdate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var in services.UpdateProductInput
	if v, ok := c.GetPostForm("name"); ok {
		in.Name = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		in.Description = &v
	}
	if v, ok := c.GetPostForm("fullDescription"); ok {
		in.FullDescription = &v
	}
	if v, ok := c.GetPostForm("category"); ok {
		in.Category = &v
	}
	if v, ok := c.GetPostForm("videoUrl"); ok {
		in.VideoURL = &v
	}
	if v, ok := c.GetPostForm("downloadUrl"); ok {
		in.DownloadURL = &v
	}
	if v, ok := c.GetPostForm("status"); ok {
		in.Status = &v
	}
	if raw, ok := c.GetPostForm("price"); ok {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, errs.Validation("price", "must be a number"))
			return
		}
		in.Price = &price
	}

	for field, target := range map[string]**models.StringList{
		"technologies": &in.Technologies,
		"features":     &in.Features,
		"requirements": &in.Requirements,
		"support":      &in.Support,
	} {
		raw, ok := c.GetPostForm(field)
		if !ok {
			continue
		}
		list, err := assets.DecodeList(field, raw)
		if err != nil {
			respondError(c, err)
			return
		}
		*target = &list
	}

	files, ok := h.collectAssets(c)
	if !ok {
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, in, files)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// HandleTransition moves a product between ACTIVE and INACTIVE.
func (h *ProductHandler) HandleTransition(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	status, ok := bindStatus(c)
	if !ok {
		return
	}

	product, err := h.products.Transition(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// HandleDelete removes a product from the catalog.
func (h *ProductHandler) HandleDelete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// collectAssets saves the uploaded image, download file and screenshots
// and returns their references.
func (h *ProductHandler) collectAssets(c *gin.Context) (assets.ProductAssets, bool) {
	var files assets.ProductAssets

	if header, err := c.FormFile("image"); err == nil {
		ref, ok := h.saveUpload(c, assets.FolderProducts, header)
		if !ok {
			return files, false
		}
		files.AttachImage(ref)
	}

	if header, err := c.FormFile("download"); err == nil {
		ref, ok := h.saveUpload(c, assets.FolderDownloads, header)
		if !ok {
			return files, false
		}
		files.AttachDownload(ref)
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, header := range form.File["screenshots"] {
			ref, ok := h.saveUpload(c, assets.FolderProducts, header)
			if !ok {
				return files, false
			}
			if err := files.AttachScreenshot(ref); err != nil {
				respondError(c, err)
				return files, false
			}
		}
	}

	return files, true
}

func (h *ProductHandler) saveUpload(c *gin.Context, folder string, header *multipart.FileHeader) (string, bool) {
	f, err := header.Open()
	if err != nil {
		respondError(c, errs.Validation("file", "could not read upload"))
		return "", false
	}
	defer f.Close()

	ref, err := h.blobs.Save(c.Request.Context(), folder, header.Filename, f)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to store upload")
		respondError(c, err)
		return "", false
	}
	return ref, true
}

// RegisterRoutes registers the handler's routes
func (h *ProductHandler) RegisterRoutes(router *gin.Engine) {
	public := router.Group("/api/products")
	{
		public.GET("", h.HandleListPublic)
		public.GET("/:id", h.HandleGetPublic)
	}

	admin := router.Group("/api/products", middleware.RequireAdmin())
	{
		admin.GET("/admin/all", h.HandleListAdmin)
		admin.GET("/admin/:id", h.HandleGetAdmin)
		admin.POST("", h.HandleCreate)
		admin.PUT("/:id", h.HandleUpdate)
		admin.PATCH("/:id/status", h.HandleTransition)
		admin.DELETE("/:id", h.HandleDelete)
	}
}
