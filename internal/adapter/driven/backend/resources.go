package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.ResourceAPI[model.Service]      = (*Resource[model.Service])(nil)
	_ driven.BlogAPI                         = (*Blogs)(nil)
	_ driven.TestimonialAPI                  = (*Testimonials)(nil)
	_ driven.ResourceAPI[model.GalleryImage] = (*Gallery)(nil)
)

// Resource implements the CRUD endpoints shared by every resource under path.
type Resource[T any] struct {
	session *Session
	path    string
}

// List fetches one page. page <= 0 omits pagination parameters entirely.
func (r *Resource[T]) List(ctx context.Context, page, limit int) (model.ListResult[T], error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	raw, err := r.session.do(ctx, request{method: http.MethodGet, endpoint: r.path, query: query})
	if err != nil {
		return model.ListResult[T]{}, err
	}
	return decodeList[T](r.path, raw)
}

// Get fetches one record by ID.
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	endpoint := r.path + "/" + url.PathEscape(id)
	raw, err := r.session.do(ctx, request{method: http.MethodGet, endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	return decodeItem[T](endpoint, raw)
}

// Create posts a new record. Drafts with files go as multipart, others as JSON.
func (r *Resource[T]) Create(ctx context.Context, draft model.Draft) (*T, error) {
	return r.write(ctx, http.MethodPost, r.path, draft)
}

// Update replaces the record with the given ID.
func (r *Resource[T]) Update(ctx context.Context, id string, draft model.Draft) (*T, error) {
	return r.write(ctx, http.MethodPut, r.path+"/"+url.PathEscape(id), draft)
}

// Delete removes the record with the given ID.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.session.do(ctx, request{method: http.MethodDelete, endpoint: r.path + "/" + url.PathEscape(id)})
	return err
}

func (r *Resource[T]) write(ctx context.Context, method, endpoint string, draft model.Draft) (*T, error) {
	req := request{method: method, endpoint: endpoint}
	if draft.HasFiles() {
		body, contentType, err := encodeMultipart(draft)
		if err != nil {
			return nil, err
		}
		req.body = body
		req.contentType = contentType
	} else {
		req.jsonBody = encodeJSON(draft)
	}

	raw, err := r.session.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return decodeItem[T](endpoint, raw)
}

// Blogs adds the slug and unpaginated reads to the blog resource.
type Blogs struct {
	Resource[model.Blog]
}

// BySlug fetches a published blog post by its URL slug.
func (b *Blogs) BySlug(ctx context.Context, slug string) (*model.Blog, error) {
	endpoint := b.path + "/slug/" + url.PathEscape(slug)
	raw, err := b.session.do(ctx, request{method: http.MethodGet, endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	return decodeItem[model.Blog](endpoint, raw)
}

// All fetches every blog post, published or not, without pagination.
func (b *Blogs) All(ctx context.Context) ([]model.Blog, error) {
	endpoint := b.path + "/all"
	raw, err := b.session.do(ctx, request{method: http.MethodGet, endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	result, err := decodeList[model.Blog](endpoint, raw)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Testimonials adds the active toggle to the testimonial resource.
type Testimonials struct {
	Resource[model.Testimonial]
}

// Toggle flips the testimonial's active flag.
func (t *Testimonials) Toggle(ctx context.Context, id string) error {
	endpoint := t.path + "/" + url.PathEscape(id) + "/toggle"
	_, err := t.session.do(ctx, request{method: http.MethodPatch, endpoint: endpoint})
	return err
}

// Gallery uploads images. Create accepts several files in one request and
// returns the first stored image.
type Gallery struct {
	Resource[model.GalleryImage]
}

// Create uploads every file in draft. The backend answers with the stored
// images; only the first is returned.
func (g *Gallery) Create(ctx context.Context, draft model.Draft) (*model.GalleryImage, error) {
	body, contentType, err := encodeMultipart(draft)
	if err != nil {
		return nil, err
	}

	raw, err := g.session.do(ctx, request{method: http.MethodPost, endpoint: g.path, body: body, contentType: contentType})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	if isArray(unwrapDataArray(raw)) {
		images, err := decodeRecords[model.GalleryImage](g.path, unwrapDataArray(raw))
		if err != nil {
			return nil, err
		}
		if len(images) == 0 {
			return nil, nil
		}
		return &images[0], nil
	}
	return decodeItem[model.GalleryImage](g.path, raw)
}
