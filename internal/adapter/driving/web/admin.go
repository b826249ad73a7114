package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/sentrysite/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/sentrysite/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/sentrysite/internal/application"
	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

const (
	statsRefreshPath    = "/admin/stats/refresh"
	statsRefreshTimeout = 15 * time.Second
)

// Dashboard renders one count per resource. Counts load concurrently and a
// failing resource shows its error on its own card.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request, req *request) {
	ctx := r.Context()
	api := h.api(req)

	cards := []vm.DashboardCard{
		{Label: "Services", URL: "/admin/services"},
		{Label: "Blog posts", URL: "/admin/blogs"},
		{Label: "Testimonials", URL: "/admin/testimonials"},
		{Label: "Gallery images", URL: "/admin/gallery"},
	}
	counters := []func(context.Context) (int, error){
		func(ctx context.Context) (int, error) { return countOf[model.Service](api.Services().List(ctx, 1, 1)) },
		func(ctx context.Context) (int, error) {
			all, err := api.Blogs().All(ctx)
			return len(all), err
		},
		func(ctx context.Context) (int, error) { return countOf[model.Testimonial](api.Testimonials().List(ctx, 1, 1)) },
		func(ctx context.Context) (int, error) { return countOf[model.GalleryImage](api.Gallery().List(ctx, 1, 1)) },
	}

	errs := make([]error, len(cards))
	var g errgroup.Group
	for i, count := range counters {
		g.Go(func() error {
			n, err := count(ctx)
			cards[i].Count = n
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		if h.sessionExpired(w, r, req, err) {
			return
		}
		h.logger.Warn("dashboard count failed", "resource", cards[i].Label, "error", err)
		cards[i].Error = driven.MessageOf(err)
	}

	dash := vm.Dashboard{Cards: cards, RefreshURL: statsRefreshPath}
	if stats, err := h.visitors.Stats(ctx); err == nil {
		dash.Visitors = toVisitorStats(stats)
	}
	h.render(w, r, req, http.StatusOK, vm.Page{Title: "Dashboard", Admin: true, ActiveNav: "dashboard"},
		pages.Dashboard(dash, req.csrf))
}

// RefreshStats asks the visitor stats loop for an immediate fetch and returns
// to the dashboard.
func (h *Handler) RefreshStats(w http.ResponseWriter, r *http.Request, req *request) {
	ctx, cancel := context.WithTimeout(r.Context(), statsRefreshTimeout)
	defer cancel()

	if err := h.visitors.Refresh(ctx); err != nil {
		h.logger.Warn("visitor stats refresh failed", "error", err)
		req.session.addFlash("Could not refresh visitor stats: " + driven.MessageOf(err))
	} else {
		req.session.addFlash("Visitor stats refreshed.")
	}
	h.redirect(w, r, req, "/admin")
}

// countOf returns the total record count of a list response.
func countOf[T any](res model.ListResult[T], err error) (int, error) {
	if err != nil {
		return 0, err
	}
	if res.Shape == model.ShapePaginated {
		return res.Page.TotalItems, nil
	}
	return len(res.Items), nil
}

// adminResource describes how one resource is listed and edited.
type adminResource[T model.Record] struct {
	kind    model.ResourceKind
	plural  string
	columns []string
	api     func(driven.Backend) driven.ResourceAPI[T]
	row     func(T) vm.AdminRow
	search  func(T) []string
	values  func(T) map[string]string
	fields  func(creating bool) []vm.FormField
	name    func(T) string
	preview func(T) string
	// defaults prefills the create form.
	defaults map[string]string
	// toggle is set for resources whose active flag flips in place.
	toggle func(driven.Backend) func(context.Context, string) error
}

func (res adminResource[T]) basePath() string {
	return "/admin/" + string(res.kind)
}

// adminHandlers binds a resource to the web handler.
type adminHandlers[T model.Record] struct {
	h   *Handler
	res adminResource[T]
}

func (a adminHandlers[T]) controller(req *request) *application.Controller[T] {
	return application.NewController(a.res.kind, a.res.api(a.h.api(req)), a.h.opts.AdminPerPage, a.h.logger)
}

func (a adminHandlers[T]) page(title string) vm.Page {
	return vm.Page{Title: title, Admin: true, ActiveNav: string(a.res.kind)}
}

// view returns the session's list view of the resource, held until release.
func (a adminHandlers[T]) view(req *request) (*application.ListView[T], func()) {
	return viewFor(a.h.views, req.session.id(), a.res.kind, func() *application.Controller[T] {
		return a.controller(req)
	})
}

// list renders one page of records, narrowed by ?q= on the loaded page. A
// page past the end redirects to the last page; a failed load keeps showing
// the last page that loaded, under the error.
func (a adminHandlers[T]) list(w http.ResponseWriter, r *http.Request, req *request) {
	ctx := r.Context()
	query := r.URL.Query()
	page := a.page(capitalize(a.res.plural))

	view, release := a.view(req)
	defer release()
	ctrl := view.Controller()

	if dir := query.Get("dir"); dir != "" {
		a.step(w, r, req, view, dir)
		return
	}

	pageNum := pageParam(query)
	err := view.Open(ctx, pageNum)
	if err == nil && view.PastEnd(pageNum) {
		a.h.redirect(w, r, req, pageURL(a.res.basePath(), query, ctrl.Page().TotalPages))
		return
	}
	if err != nil {
		if a.h.sessionExpired(w, r, req, err) {
			return
		}
		page.Error = ctrl.ErrorMessage()
		if driven.IsRetryable(err) {
			page.RetryURL = r.URL.RequestURI()
		}
	}

	q := query.Get("q")
	table := vm.AdminTable{
		Label:    a.res.kind.Label(),
		Plural:   capitalize(a.res.plural),
		BasePath: a.res.basePath(),
		NewURL:   a.res.basePath() + "/new",
		Columns:  a.res.columns,
		Rows:     []vm.AdminRow{},
		Query:    q,
		Pager:    a.pager(query, view),
		Filtered: q != "",
	}
	current := strconv.Itoa(ctrl.Page().CurrentPage)
	for _, item := range view.Filter(q, a.res.search) {
		table.Rows = append(table.Rows, a.row(item, current))
	}

	a.h.render(w, r, req, http.StatusOK, page, pages.AdminTable(table, req.csrf))
}

// pager links page numbers directly; previous and next step from the page
// the session is on.
func (a adminHandlers[T]) pager(query url.Values, view *application.ListView[T]) vm.Pager {
	base := a.res.basePath()
	p := buildPager(base, query, view.Controller().Page(), view.Window())
	if p.PrevURL != "" {
		p.PrevURL = stepURL(base, query, "prev")
	}
	if p.NextURL != "" {
		p.NextURL = stepURL(base, query, "next")
	}
	return p
}

// step moves the session's list one page back or forward and redirects to
// the page it landed on.
func (a adminHandlers[T]) step(w http.ResponseWriter, r *http.Request, req *request, view *application.ListView[T], dir string) {
	ctx := r.Context()
	ctrl := view.Controller()

	var err error
	if !ctrl.Loaded() {
		err = view.Open(ctx, pageParam(r.URL.Query()))
	}
	if err == nil {
		switch dir {
		case "next":
			err = view.Next(ctx)
		case "prev":
			err = view.Prev(ctx)
		}
	}
	if err != nil {
		if a.h.sessionExpired(w, r, req, err) {
			return
		}
		req.session.addFlash("Could not load the page: " + driven.MessageOf(err))
	}

	query := r.URL.Query()
	query.Del("dir")
	a.h.redirect(w, r, req, pageURL(a.res.basePath(), query, ctrl.Page().CurrentPage))
}

func (a adminHandlers[T]) row(item T, page string) vm.AdminRow {
	row := a.res.row(item)
	id := url.PathEscape(item.Identity())
	row.ID = item.Identity()
	row.EditURL = a.res.basePath() + "/" + id + "/edit"
	row.DeleteURL = a.res.basePath() + "/" + id + "/delete?page=" + page
	if a.res.toggle != nil {
		row.ToggleURL = a.res.basePath() + "/" + id + "/toggle?page=" + page
	}
	return row
}

func (a adminHandlers[T]) newForm(w http.ResponseWriter, r *http.Request, req *request) {
	a.renderForm(w, r, req, http.StatusOK, "", a.res.defaults, nil, "", "")
}

func (a adminHandlers[T]) create(w http.ResponseWriter, r *http.Request, req *request) {
	draft, err := parseDraft(r, a.res.kind)
	if err != nil {
		a.h.logger.Warn("failed to read upload", "error", err)
		a.renderForm(w, r, req, http.StatusBadRequest, "", draftValues(a.res.kind, draft), nil, "", "Could not read the uploaded file")
		return
	}

	ctrl := a.controller(req)
	if _, err := ctrl.Create(r.Context(), draft); err != nil {
		a.writeFailed(w, r, req, "", draft, err)
		return
	}

	req.session.addFlash(capitalize(a.res.kind.Label()) + " created.")
	a.h.redirect(w, r, req, a.res.basePath())
}

func (a adminHandlers[T]) editForm(w http.ResponseWriter, r *http.Request, req *request) {
	id := r.PathValue("id")
	item, ok := a.load(w, r, req, id)
	if !ok {
		return
	}
	a.renderForm(w, r, req, http.StatusOK, id, a.res.values(*item), nil, a.preview(item), "")
}

func (a adminHandlers[T]) update(w http.ResponseWriter, r *http.Request, req *request) {
	id := r.PathValue("id")
	draft, err := parseDraft(r, a.res.kind)
	if err != nil {
		a.h.logger.Warn("failed to read upload", "error", err)
		a.renderForm(w, r, req, http.StatusBadRequest, id, draftValues(a.res.kind, draft), nil, "", "Could not read the uploaded file")
		return
	}

	ctrl := a.controller(req)
	if _, err := ctrl.Update(r.Context(), id, draft); err != nil {
		a.writeFailed(w, r, req, id, draft, err)
		return
	}

	req.session.addFlash(capitalize(a.res.kind.Label()) + " updated.")
	a.h.redirect(w, r, req, a.res.basePath())
}

// writeFailed shows the form again after a rejected create or update.
func (a adminHandlers[T]) writeFailed(w http.ResponseWriter, r *http.Request, req *request, id string, draft model.Draft, err error) {
	if a.h.sessionExpired(w, r, req, err) {
		return
	}

	status := http.StatusBadGateway
	var fieldErrs map[string]string
	var apiErr *driven.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case driven.KindValidation:
			status = http.StatusUnprocessableEntity
			fieldErrs = apiErr.Fields
		case driven.KindAPI:
			if apiErr.Status >= 400 && apiErr.Status < 500 {
				status = http.StatusUnprocessableEntity
			}
		}
	}
	a.h.logger.Info("admin write rejected", "resource", string(a.res.kind), "id", id, "error", err)
	a.renderForm(w, r, req, status, id, draftValues(a.res.kind, draft), fieldErrs, "", driven.MessageOf(err))
}

func (a adminHandlers[T]) renderForm(w http.ResponseWriter, r *http.Request, req *request, status int, id string, values, fieldErrs map[string]string, preview, message string) {
	creating := id == ""
	form := vm.AdminForm{
		CancelURL: a.res.basePath(),
		Preview:   preview,
	}
	if creating {
		form.Title = "New " + a.res.kind.Label()
		form.Action = a.res.basePath() + "/new"
		form.Submit = "Create"
	} else {
		form.Title = "Edit " + a.res.kind.Label()
		form.Action = a.res.basePath() + "/" + url.PathEscape(id) + "/edit"
		form.Submit = "Save changes"
	}

	for _, f := range a.res.fields(creating) {
		f.Value = values[f.Name]
		f.Checked = values[f.Name] == "true"
		f.Error = fieldErrs[f.Name]
		if f.Type == vm.FieldFile {
			form.Multipart = true
		}
		form.Fields = append(form.Fields, f)
	}

	page := a.page(form.Title)
	page.Error = message
	a.h.render(w, r, req, status, page, pages.AdminForm(form, req.csrf))
}

func (a adminHandlers[T]) confirmDelete(w http.ResponseWriter, r *http.Request, req *request) {
	id := r.PathValue("id")
	item, ok := a.load(w, r, req, id)
	if !ok {
		return
	}

	confirm := vm.ConfirmDelete{
		Label:     a.res.kind.Label(),
		Name:      a.res.name(*item),
		Action:    a.res.basePath() + "/" + url.PathEscape(id) + "/delete?page=" + strconv.Itoa(pageParam(r.URL.Query())),
		CancelURL: a.listURL(pageParam(r.URL.Query())),
	}
	a.h.render(w, r, req, http.StatusOK, a.page("Delete "+a.res.kind.Label()), pages.ConfirmDelete(confirm, req.csrf))
}

// remove deletes the record, re-fetches the page it was on and steps back one
// page when that page is now empty.
func (a adminHandlers[T]) remove(w http.ResponseWriter, r *http.Request, req *request) {
	ctx := r.Context()
	id := r.PathValue("id")
	pageNum := pageParam(r.URL.Query())

	view, release := a.view(req)
	defer release()
	ctrl := view.Controller()
	if err := ctrl.Remove(ctx, id); err != nil {
		if a.h.sessionExpired(w, r, req, err) {
			return
		}
		req.session.addFlash("Could not delete: " + ctrl.ErrorMessage())
		a.h.redirect(w, r, req, a.listURL(pageNum))
		return
	}
	req.session.addFlash(capitalize(a.res.kind.Label()) + " deleted.")

	target := pageNum
	if err := ctrl.List(ctx, pageNum); err == nil {
		if len(ctrl.Items()) == 0 {
			if err := view.Prev(ctx); err != nil {
				a.h.logger.Warn("failed to load previous page after delete", "resource", string(a.res.kind), "error", err)
			}
		}
		target = ctrl.Page().CurrentPage
	}
	a.h.redirect(w, r, req, a.listURL(target))
}

func (a adminHandlers[T]) toggleActive(w http.ResponseWriter, r *http.Request, req *request) {
	id := r.PathValue("id")
	pageNum := pageParam(r.URL.Query())

	if err := a.res.toggle(a.h.api(req))(r.Context(), id); err != nil {
		if a.h.sessionExpired(w, r, req, err) {
			return
		}
		a.h.logger.Warn("toggle failed", "resource", string(a.res.kind), "id", id, "error", err)
		req.session.addFlash("Could not update: " + driven.MessageOf(err))
	}
	a.h.redirect(w, r, req, a.listURL(pageNum))
}

// load fetches one record, rendering the failure when it cannot.
func (a adminHandlers[T]) load(w http.ResponseWriter, r *http.Request, req *request, id string) (*T, bool) {
	item, err := a.controller(req).Get(r.Context(), id)
	if err == nil && item != nil {
		return item, true
	}
	if err != nil && a.h.sessionExpired(w, r, req, err) {
		return nil, false
	}
	if err == nil || isNotFound(err) {
		a.h.render(w, r, req, http.StatusNotFound, a.page("Not found"), pages.NotFound(a.res.kind.Label()))
		return nil, false
	}
	page := a.page(capitalize(a.res.plural))
	a.h.loadFailed(w, r, req, page, err, pages.NotFound(a.res.kind.Label()))
	return nil, false
}

func (a adminHandlers[T]) preview(item *T) string {
	if a.res.preview == nil {
		return ""
	}
	return a.res.preview(*item)
}

func (a adminHandlers[T]) listURL(page int) string {
	if page <= 1 {
		return a.res.basePath()
	}
	return a.res.basePath() + "?page=" + strconv.Itoa(page)
}

// registerAdmin adds the list, create, edit and delete routes of res.
func registerAdmin[T model.Record](mux *http.ServeMux, h *Handler, res adminResource[T]) {
	a := adminHandlers[T]{h: h, res: res}
	base := res.basePath()

	mux.HandleFunc("GET "+base, h.requireAdmin(a.list))
	mux.HandleFunc("GET "+base+"/new", h.requireAdmin(a.newForm))
	mux.HandleFunc("POST "+base+"/new", protect(h.requireAdmin(a.create)))
	mux.HandleFunc("GET "+base+"/{id}/edit", h.requireAdmin(a.editForm))
	mux.HandleFunc("POST "+base+"/{id}/edit", protect(h.requireAdmin(a.update)))
	mux.HandleFunc("GET "+base+"/{id}/delete", h.requireAdmin(a.confirmDelete))
	mux.HandleFunc("POST "+base+"/{id}/delete", protect(h.requireAdmin(a.remove)))
	if res.toggle != nil {
		mux.HandleFunc("POST "+base+"/{id}/toggle", protect(h.requireAdmin(a.toggleActive)))
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
