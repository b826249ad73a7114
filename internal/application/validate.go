package application

import (
	"strconv"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// Validator checks a draft before it is sent. creating is true for new records.
type Validator func(draft model.Draft, creating bool) error

// ValidatorFor returns the required-field validator for a resource kind.
func ValidatorFor(kind model.ResourceKind) Validator {
	switch kind {
	case model.ResourceServices:
		return requireFields(map[string]string{
			"title":       "Title is required",
			"description": "Description is required",
		})
	case model.ResourceBlogs:
		return requireFields(map[string]string{
			"title":   "Title is required",
			"content": "Content is required",
		})
	case model.ResourceTestimonials:
		return validateTestimonial
	case model.ResourceGallery:
		return validateGallery
	default:
		return func(model.Draft, bool) error { return nil }
	}
}

func requireFields(required map[string]string) Validator {
	return func(draft model.Draft, _ bool) error {
		fields := map[string]string{}
		for name, msg := range required {
			if draft.Get(name) == "" {
				fields[name] = msg
			}
		}
		if len(fields) > 0 {
			return driven.NewValidationError(fields)
		}
		return nil
	}
}

func validateTestimonial(draft model.Draft, _ bool) error {
	fields := map[string]string{}
	if draft.Get("name") == "" {
		fields["name"] = "Name is required"
	}
	if draft.Get("testimonial") == "" {
		fields["testimonial"] = "Testimonial text is required"
	}

	rating, ok := draft.Numbers["rating"]
	if !ok {
		if n, err := strconv.Atoi(draft.Get("rating")); err == nil {
			rating, ok = n, true
		}
	}
	if !ok || rating < 1 || rating > 5 {
		fields["rating"] = "Rating must be between 1 and 5"
	}

	if len(fields) > 0 {
		return driven.NewValidationError(fields)
	}
	return nil
}

func validateGallery(draft model.Draft, creating bool) error {
	if creating && !draft.HasFiles() {
		return driven.NewValidationError(map[string]string{"images": "Select at least one image to upload"})
	}
	return nil
}
