package pages

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/sentrysite/internal/adapter/driving/web/templates"
	vm "github.com/ericfisherdev/sentrysite/internal/adapter/driving/web/viewmodel"
)

// Login renders the admin sign-in form.
func Login(form vm.LoginForm, csrfToken string) templ.Component {
	return templates.Component(func(_ context.Context, h *templates.Writer) {
		h.Raw(`<section class="login">`)
		h.Elem("h1", "", "Admin sign in")
		h.Raw(`<form method="post" action="/admin/login">`)
		templates.CSRFField(h, csrfToken)
		if form.Next != "" {
			h.Raw(`<input type="hidden" name="next"`)
			h.Attr("value", form.Next)
			h.Raw(">")
		}
		h.Raw(`<label for="username">Username</label><input id="username" name="username" type="text" autocomplete="username" required`)
		h.Attr("value", form.Username)
		h.Raw(">")
		h.Raw(`<label for="password">Password</label><input id="password" name="password" type="password" autocomplete="current-password" required>`)
		h.Raw(`<button type="submit">Sign in</button></form></section>`)
	})
}

// Dashboard renders one summary card per resource.
func Dashboard(d vm.Dashboard, csrfToken string) templ.Component {
	return templates.Component(func(_ context.Context, h *templates.Writer) {
		h.Elem("h1", "", "Dashboard")
		h.Open("div", "grid dashboard")
		for _, c := range d.Cards {
			h.Open("div", "card")
			h.Elem("h2", "", c.Label)
			if c.Error != "" {
				h.Elem("p", "field-error", c.Error)
			} else {
				h.Open("p", "count")
				h.Int(c.Count)
				h.Close("p")
			}
			h.Link(c.URL, "more", "Manage")
			h.Close("div")
		}

		h.Open("div", "card visitors")
		h.Elem("h2", "", "Visitors")
		if d.Visitors.Known {
			h.Elem("p", "count", d.Visitors.Total)
			h.Elem("p", "", d.Visitors.Today+" today")
		} else {
			h.Elem("p", "muted", "No visitor stats yet.")
		}
		h.Raw(`<form method="post" class="inline"`)
		h.URLAttr("action", d.RefreshURL)
		h.Raw(">")
		templates.CSRFField(h, csrfToken)
		h.Raw(`<button type="submit" class="link">Refresh stats</button></form>`)
		h.Close("div")
		h.Close("div")
	})
}

// AdminTable renders a resource list with search, row actions and pager.
func AdminTable(t vm.AdminTable, csrfToken string) templ.Component {
	return templates.Component(func(ctx context.Context, h *templates.Writer) {
		h.Open("div", "table-head")
		h.Elem("h1", "", t.Plural)
		h.Link(t.NewURL, "button", "New "+t.Label)
		h.Close("div")

		h.Raw(`<form method="get" class="search"`)
		h.URLAttr("action", t.BasePath)
		h.Raw(`><input type="search" name="q" placeholder="Search this page"`)
		h.Attr("value", t.Query)
		h.Raw(`><input type="hidden" name="page"`)
		h.Attr("value", itoa(t.Pager.Current))
		h.Raw(`><button type="submit">Search</button></form>`)

		if len(t.Rows) == 0 {
			msg := "Nothing here yet."
			if t.Filtered {
				msg = "No matches on this page."
			}
			h.Elem("p", "empty", msg)
			h.Render(ctx, templates.PagerNav(t.Pager))
			return
		}

		h.Raw(`<table class="admin-table"><thead><tr>`)
		for _, c := range t.Columns {
			h.Elem("th", "", c)
		}
		h.Raw(`<th class="actions">Actions</th></tr></thead><tbody>`)
		for _, row := range t.Rows {
			adminRow(h, row, csrfToken)
		}
		h.Raw("</tbody></table>")
		h.Render(ctx, templates.PagerNav(t.Pager))
	})
}

func adminRow(h *templates.Writer, row vm.AdminRow, csrfToken string) {
	h.Open("tr", "")
	for i, cell := range row.Cells {
		h.Open("td", "")
		if i == 0 && row.Thumbnail != "" {
			image(h, row.Thumbnail, cell, "thumb")
		}
		h.Text(cell)
		h.Close("td")
	}
	h.Open("td", "actions")
	if row.ToggleURL != "" {
		label := "Activate"
		if row.Active {
			label = "Deactivate"
		}
		h.Raw(`<form method="post" class="inline"`)
		h.URLAttr("action", row.ToggleURL)
		h.Raw(">")
		templates.CSRFField(h, csrfToken)
		h.Raw(`<button type="submit" class="link">`)
		h.Text(label)
		h.Raw("</button></form>")
	}
	if row.EditURL != "" {
		h.Link(row.EditURL, "", "Edit")
	}
	h.Link(row.DeleteURL, "danger", "Delete")
	h.Close("td")
	h.Close("tr")
}

// AdminForm renders a create or edit form from its field list.
func AdminForm(f vm.AdminForm, csrfToken string) templ.Component {
	return templates.Component(func(_ context.Context, h *templates.Writer) {
		h.Elem("h1", "", f.Title)
		h.Raw(`<form method="post" class="admin-form"`)
		h.URLAttr("action", f.Action)
		if f.Multipart {
			h.Attr("enctype", "multipart/form-data")
		}
		h.Raw(">")
		templates.CSRFField(h, csrfToken)
		if f.Preview != "" {
			image(h, f.Preview, "Current image", "preview")
		}
		for _, field := range f.Fields {
			formField(h, field)
		}
		h.Open("div", "form-actions")
		h.Raw(`<button type="submit">`)
		h.Text(f.Submit)
		h.Raw("</button>")
		h.Link(f.CancelURL, "cancel", "Cancel")
		h.Close("div")
		h.Raw("</form>")
	})
}

func formField(h *templates.Writer, f vm.FormField) {
	h.Open("div", "field "+f.Type)
	if f.Type == vm.FieldCheckbox {
		h.Raw("<label><input")
		h.Attr("type", "checkbox")
		h.Attr("name", f.Name)
		h.Attr("value", "true")
		h.BoolAttr("checked", f.Checked)
		h.Raw("> ")
		h.Text(f.Label)
		h.Raw("</label>")
	} else {
		h.Raw("<label")
		h.Attr("for", f.Name)
		h.Raw(">")
		h.Text(f.Label)
		if f.Required {
			h.Raw(` <span class="required">*</span>`)
		}
		h.Raw("</label>")

		switch f.Type {
		case vm.FieldTextarea:
			h.Raw("<textarea rows=\"8\"")
			h.Attr("id", f.Name)
			h.Attr("name", f.Name)
			h.BoolAttr("required", f.Required)
			h.Raw(">")
			h.Text(f.Value)
			h.Raw("</textarea>")
		case vm.FieldFile:
			h.Raw("<input")
			h.Attr("type", "file")
			h.Attr("id", f.Name)
			h.Attr("name", f.Name)
			h.Attr("accept", "image/*")
			h.BoolAttr("multiple", f.Multiple)
			h.BoolAttr("required", f.Required)
			h.Raw(">")
		default:
			h.Raw("<input")
			h.Attr("type", f.Type)
			h.Attr("id", f.Name)
			h.Attr("name", f.Name)
			h.Attr("value", f.Value)
			if f.Min != "" {
				h.Attr("min", f.Min)
			}
			if f.Max != "" {
				h.Attr("max", f.Max)
			}
			h.BoolAttr("required", f.Required)
			h.Raw(">")
		}
	}
	if f.Help != "" {
		h.Elem("small", "help", f.Help)
	}
	fieldError(h, f.Error)
	h.Close("div")
}

// ConfirmDelete asks before removing a record.
func ConfirmDelete(c vm.ConfirmDelete, csrfToken string) templ.Component {
	return templates.Component(func(_ context.Context, h *templates.Writer) {
		h.Elem("h1", "", "Delete "+c.Label)
		h.Elem("p", "", "Delete \""+c.Name+"\"? This cannot be undone.")
		h.Raw(`<form method="post"`)
		h.URLAttr("action", c.Action)
		h.Raw(">")
		templates.CSRFField(h, csrfToken)
		h.Raw(`<button type="submit" class="danger">Delete</button>`)
		h.Link(c.CancelURL, "cancel", "Cancel")
		h.Raw("</form>")
	})
}

func itoa(n int) string {
	if n < 1 {
		n = 1
	}
	return strconv.Itoa(n)
}
