package server

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"trade-dashboard/src/grid"
	"trade-dashboard/src/helpers"
	"trade-dashboard/src/inspector"
	"trade-dashboard/src/models"
	"trade-dashboard/src/screens"
	"trade-dashboard/src/session"

	"github.com/gin-gonic/gin"
)

var templateFuncs = template.FuncMap{
	"lower": strings.ToLower,
}

// -----------------------------------------------------------------------------
// View models
// -----------------------------------------------------------------------------

type navItem struct {
	Title  string
	Path   string
	Active bool
}

// layoutView is shared by every page.
type layoutView struct {
	Title      string
	Screen     string
	Path       string
	Nav        []navItem
	Notices    []models.MNotice
	History    []models.MHistoryEntry
	Generation uint64
	Loading    bool
	LoginURL   string
}

type actionLink struct {
	Label string
	Href  string
}

type rowView struct {
	Cells   []string
	Actions []actionLink
}

type pagerView struct {
	Page      int
	PageCount int
	Total     int
	Prev      string
	Next      string
	Sizes     []sizeLink
}

type sizeLink struct {
	Size    int
	Href    string
	Current bool
}

type gridView struct {
	Columns   []grid.Column
	HasAction bool
	Rows      []rowView
	Pager     pagerView
	Loading   bool
	Empty     bool
	EmptyText string
	Failed    bool
	Message   string
}

type inspectorView struct {
	Text   string
	Pretty bool
	Close  string
}

type inquiryView struct {
	layoutView
	Def        screens.Definition
	Action     string
	Refresh    string
	CanRefresh bool
	Form       screens.FormValues
	FormError  string
	Grid       gridView
	Inspector  *inspectorView
	AuthFailed bool
}

type fundInput struct {
	Name     string
	Label    string
	Kind     string
	Value    string
	ReadOnly bool
}

type fundFormView struct {
	Title  string
	Action string
	Inputs []fundInput
	Error  string
}

type fundsView struct {
	layoutView
	Grid       gridView
	Form       *fundFormView
	Inspector  *inspectorView
	AuthFailed bool
}

type confirmView struct {
	layoutView
	FundID   string
	FundName string
	Action   string
}

// -----------------------------------------------------------------------------

func screenPath(name string) string {
	if name == screens.Summary {
		return "/"
	}
	return "/" + name
}

func refreshPath(name string) string {
	return strings.TrimSuffix(screenPath(name), "/") + "/refresh"
}

func (s *DashboardServer) layout(ws *session.Workspace, scr screens.Screen) layoutView {
	def := scr.Definition()
	status, gen := scr.Status()

	nav := make([]navItem, 0, len(screens.Names()))
	for _, name := range screens.Names() {
		other, _ := ws.Screens.Screen(name)
		nav = append(nav, navItem{
			Title:  other.Definition().Title,
			Path:   screenPath(name),
			Active: name == def.Name,
		})
	}

	return layoutView{
		Title:      def.Title,
		Screen:     def.Name,
		Path:       screenPath(def.Name),
		Nav:        nav,
		Notices:    ws.Notices.Active(),
		History:    ws.History(5),
		Generation: gen,
		Loading:    status == models.StatusLoading,
		LoginURL:   s.Config.Backend.LoginURL,
	}
}

// -----------------------------------------------------------------------------

// gridPage turns a rendered page into links. rowActions builds the action
// links of one row key.
func gridPage(page grid.Page, u *url.URL, rowActions func(key string) []actionLink) gridView {
	gv := gridView{
		Columns:   page.Columns,
		HasAction: len(page.Actions) > 0,
		Loading:   page.Loading,
		Empty:     page.Empty,
		EmptyText: page.EmptyText,
		Failed:    page.Failed,
		Message:   page.Message,
		Pager: pagerView{
			Page:      page.Page,
			PageCount: page.PageCount,
			Total:     page.Total,
		},
	}

	for _, row := range page.Rows {
		rv := rowView{Cells: row.Cells}
		if gv.HasAction {
			rv.Actions = rowActions(row.Key)
		}
		gv.Rows = append(gv.Rows, rv)
	}

	if page.Page > 1 {
		gv.Pager.Prev = pageURL(u, map[string]string{"page": strconv.Itoa(page.Page - 1), "inspect": ""})
	}
	if page.Page < page.PageCount {
		gv.Pager.Next = pageURL(u, map[string]string{"page": strconv.Itoa(page.Page + 1), "inspect": ""})
	}
	for _, size := range page.Sizes {
		gv.Pager.Sizes = append(gv.Pager.Sizes, sizeLink{
			Size:    size,
			Href:    pageURL(u, map[string]string{"size": strconv.Itoa(size), "page": "", "inspect": ""}),
			Current: size == page.Size,
		})
	}
	return gv
}

// -----------------------------------------------------------------------------

func inspectLinks(u *url.URL) func(string) []actionLink {
	return func(key string) []actionLink {
		return []actionLink{{Label: "View JSON", Href: pageURL(u, map[string]string{"inspect": key})}}
	}
}

func fundLinks(key string) []actionLink {
	id := url.PathEscape(key)
	return []actionLink{
		{Label: "Edit", Href: "/funds?edit=" + url.QueryEscape(key)},
		{Label: "Delete", Href: "/funds/" + id + "/delete"},
	}
}

// -----------------------------------------------------------------------------

// inspection opens the overlay when the query names a row of the result.
func inspection(c *gin.Context, scr screens.Screen) *inspectorView {
	key := c.Query("inspect")
	if key == "" {
		return nil
	}
	view, ok := scr.Inspect(key)
	if !ok {
		view = inspector.View{Text: inspector.Placeholder, Empty: true}
	}
	return &inspectorView{
		Text:   view.Text,
		Pretty: view.Pretty,
		Close:  pageURL(c.Request.URL, map[string]string{"inspect": ""}),
	}
}

// -----------------------------------------------------------------------------

// authFailed reports whether page shows the expired-session failure.
func authFailed(page grid.Page) bool {
	return page.Failed && page.Message == helpers.AuthMessage
}

// -----------------------------------------------------------------------------

func fundInputs(values map[string]string, editing bool) []fundInput {
	inputs := make([]fundInput, 0, len(screens.FundFields))
	for _, f := range screens.FundFields {
		inputs = append(inputs, fundInput{
			Name:     f.Name,
			Label:    f.Label,
			Kind:     f.Kind,
			Value:    values[f.Name],
			ReadOnly: editing && f.ReadOnly,
		})
	}
	return inputs
}
