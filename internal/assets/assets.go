// Package assets binds uploaded file references to entity slots.
// Attachment is best-effort with respect to entity writes: an entity
// create stands even if a later asset step fails, and absent uploads
// leave existing references untouched.
package assets

import (
	"encoding/json"

	"github.com/krupapatkar/appsolution-admin/internal/errs"
	"github.com/krupapatkar/appsolution-admin/internal/models"
)

// MaxScreenshots caps the screenshots slot per product.
const MaxScreenshots = 5

// Upload folders per slot, appearing in the blob references.
const (
	FolderProducts  = "products"
	FolderDownloads = "downloads"
	FolderBlog      = "blog"
)

// ProductAssets carries the file references supplied with a product
// write. Nil single slots and an empty screenshot set mean "no change".
type ProductAssets struct {
	Image       *string
	Screenshots []string
	Download    *string
}

// AttachImage replaces the primary image reference.
func (a *ProductAssets) AttachImage(ref string) {
	a.Image = &ref
}

// AttachDownload replaces the downloadable-asset reference.
func (a *ProductAssets) AttachDownload(ref string) {
	a.Download = &ref
}

// AttachScreenshot appends a screenshot reference, enforcing the cap.
// The submitted set replaces the stored set on the next entity write.
func (a *ProductAssets) AttachScreenshot(ref string) error {
	if len(a.Screenshots) >= MaxScreenshots {
		return errs.Validation("screenshots", "at most 5 screenshots")
	}
	a.Screenshots = append(a.Screenshots, ref)
	return nil
}

// ApplyToProduct writes the supplied slots onto a new product.
func (a ProductAssets) ApplyToProduct(p *models.Product) {
	if a.Image != nil {
		p.Image = *a.Image
	}
	if len(a.Screenshots) > 0 {
		p.Screenshots = models.StringList(a.Screenshots)
	}
	if a.Download != nil {
		p.DownloadURL = a.Download
	}
}

// ApplyToFields merges the supplied slots into a partial-update map.
func (a ProductAssets) ApplyToFields(fields map[string]interface{}) {
	if a.Image != nil {
		fields["image"] = *a.Image
	}
	if len(a.Screenshots) > 0 {
		fields["screenshots"] = models.StringList(a.Screenshots)
	}
	if a.Download != nil {
		fields["download_url"] = *a.Download
	}
}

// BlogAssets carries the file reference supplied with a blog post write.
type BlogAssets struct {
	Image *string
}

// AttachImage replaces the post image reference.
func (a *BlogAssets) AttachImage(ref string) {
	a.Image = &ref
}

// ApplyToPost writes the supplied slot onto a new post.
func (a BlogAssets) ApplyToPost(p *models.BlogPost) {
	if a.Image != nil {
		p.Image = *a.Image
	}
}

// ApplyToFields merges the supplied slot into a partial-update map.
func (a BlogAssets) ApplyToFields(fields map[string]interface{}) {
	if a.Image != nil {
		fields["image"] = *a.Image
	}
}

// DecodeList decodes a structured list field that traveled as
// serialized JSON text. An empty input is a nil list. A malformed
// input is rejected with Validation rather than silently kept raw;
// this deliberately tightens the legacy keep-the-raw-text behavior.
func DecodeList(field, raw string) (models.StringList, error) {
	if raw == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, errs.Validation(field, "must be a JSON array of strings")
	}
	return models.StringList(list), nil
}
