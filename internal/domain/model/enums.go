package model

// ResourceKind identifies one of the backend resources managed from the admin panel.
type ResourceKind string

const (
	ResourceServices     ResourceKind = "services"
	ResourceBlogs        ResourceKind = "blogs"
	ResourceTestimonials ResourceKind = "testimonials"
	ResourceGallery      ResourceKind = "gallery"
)

// Label returns the singular human-readable name of the resource.
func (k ResourceKind) Label() string {
	switch k {
	case ResourceServices:
		return "service"
	case ResourceBlogs:
		return "blog post"
	case ResourceTestimonials:
		return "testimonial"
	case ResourceGallery:
		return "gallery image"
	default:
		return string(k)
	}
}

// ListShape records which response shape a list endpoint returned.
type ListShape string

const (
	ShapePaginated   ListShape = "paginated"   // {data, pagination} envelope.
	ShapeUnpaginated ListShape = "unpaginated" // Bare array or {data} with no pagination.
)

// GuardState is the state of the admin auth guard for one request.
type GuardState string

const (
	GuardUnverified      GuardState = "unverified"
	GuardAuthenticated   GuardState = "authenticated"
	GuardUnauthenticated GuardState = "unauthenticated"
)
