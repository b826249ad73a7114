package model

import "time"

// Service is a security service offered by the company.
type Service struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Features    []string  `json:"features"`
	Icon        string    `json:"icon"`
	Image       string    `json:"image"`
	IsActive    Flag      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Blog is a blog post. Content is markdown.
type Blog struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	Tags        []string  `json:"tags"`
	Image       string    `json:"image"`
	IsPublished Flag      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// Testimonial is a client quote shown on the home page.
type Testimonial struct {
	ID          ID        `json:"id"`
	Name        string    `json:"name"`
	Position    string    `json:"position"`
	Company     string    `json:"company"`
	Rating      int       `json:"rating"`
	Testimonial string    `json:"testimonial"`
	Image       string    `json:"image"`
	IsActive    Flag      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// GalleryImage is one picture in the public gallery.
type GalleryImage struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Identity returns the record ID. Used by generic list code.
func (s Service) Identity() string      { return string(s.ID) }
func (b Blog) Identity() string         { return string(b.ID) }
func (t Testimonial) Identity() string  { return string(t.ID) }
func (g GalleryImage) Identity() string { return string(g.ID) }

// Record is implemented by every resource type.
type Record interface {
	Service | Blog | Testimonial | GalleryImage
	Identity() string
}
