// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// Page holds the chrome shared by every page: title, navigation state,
// session-derived data and any inline message.
type Page struct {
	Title       string
	Description string
	ActiveNav   string
	CSRFToken   string

	// Admin pages render the admin navigation instead of the public one.
	Admin    bool
	Username string

	Flash string
	// Error is rendered inline above the content with a "Try again" link to RetryURL.
	Error    string
	RetryURL string

	Stats VisitorStats
}

// VisitorStats holds formatted visitor counters for the footer.
type VisitorStats struct {
	Total string
	Today string
	Known bool
}

// PageLink is one numbered link in a pager.
type PageLink struct {
	Number int
	URL    string
	Active bool
}

// Pager holds the numbered page window and prev/next links.
// PrevURL and NextURL are empty when there is no such page.
type Pager struct {
	Current    int
	Total      int
	TotalItems int
	Links      []PageLink
	PrevURL    string
	NextURL    string
}

// Show reports whether the pager has more than one page to navigate.
func (p Pager) Show() bool {
	return p.Total > 1
}

// ServiceCard holds presentation-ready data for a service tile.
type ServiceCard struct {
	ID        string
	Title     string
	Summary   string
	Icon      string
	Image     string
	Features  []string
	DetailURL string
}

// ServiceDetail is the full service page.
type ServiceDetail struct {
	ServiceCard
	Description string
}

// BlogCard holds presentation-ready data for a blog post teaser.
type BlogCard struct {
	Title   string
	Excerpt string
	Author  string
	Date    string
	Image   string
	Tags    []string
	URL     string
}

// BlogPost is a rendered blog post. ContentHTML is sanitized markup.
type BlogPost struct {
	BlogCard
	ContentHTML string
}

// BlogList is the public blog index for one page.
type BlogList struct {
	Posts []BlogCard
	Pager Pager
}

// TestimonialCard holds a client quote with a 1..5 star rating.
type TestimonialCard struct {
	Name     string
	Position string
	Company  string
	Quote    string
	Image    string
	Stars    int
}

// GalleryItem is one image in the public gallery.
type GalleryItem struct {
	Title       string
	Description string
	Category    string
	ImageURL    string
}

// Gallery is the public gallery with its category filter.
type Gallery struct {
	Items      []GalleryItem
	Categories []string
	Active     string
}

// Home is the landing page. A section that failed to load is empty.
type Home struct {
	Services     []ServiceCard
	Blogs        []BlogCard
	Testimonials []TestimonialCard
}

// ContactForm holds the contact form state across a failed submission.
type ContactForm struct {
	Values map[string]string
	Errors map[string]string
	Sent   bool
}

// LoginForm is the admin login page state.
type LoginForm struct {
	Username string
	Next     string
}

// DashboardCard summarises one resource on the admin dashboard.
type DashboardCard struct {
	Label string
	URL   string
	Count int
	Error string
}

// Dashboard is the admin landing page. RefreshURL is where the visitor
// stats refresh form posts.
type Dashboard struct {
	Cards      []DashboardCard
	Visitors   VisitorStats
	RefreshURL string
}

// AdminRow is one record in an admin table. ToggleURL is set for resources
// with an active flag that can be flipped in place.
type AdminRow struct {
	ID        string
	Cells     []string
	Thumbnail string
	EditURL   string
	DeleteURL string
	ToggleURL string
	Active    bool
}

// AdminTable is one page of an admin resource list.
type AdminTable struct {
	Label    string
	Plural   string
	BasePath string
	NewURL   string
	Columns  []string
	Rows     []AdminRow
	Query    string
	Pager    Pager
	// Filtered is true when Query narrowed the loaded page.
	Filtered bool
}

// Field types understood by the admin form renderer.
const (
	FieldText     = "text"
	FieldTextarea = "textarea"
	FieldNumber   = "number"
	FieldCheckbox = "checkbox"
	FieldFile     = "file"
	FieldURL      = "url"
)

// FormField describes one input on an admin form.
type FormField struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Help     string
	Error    string
	Checked  bool
	Required bool
	Multiple bool
	Min, Max string
}

// AdminForm is a create or edit form.
type AdminForm struct {
	Title     string
	Action    string
	CancelURL string
	Submit    string
	Fields    []FormField
	Multipart bool
	Preview   string
}

// ConfirmDelete is the delete confirmation page.
type ConfirmDelete struct {
	Label     string
	Name      string
	Action    string
	CancelURL string
}
