package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trade-dashboard/src/helpers"
	"trade-dashboard/src/models"
	"trade-dashboard/src/pipeline"
	"trade-dashboard/src/screens"

	"github.com/gin-gonic/gin"
)

const (
	msgBusy         = "A search is already running. Please wait for it to finish."
	msgUnknownFund  = "Fund not found."
	mutationSettle  = 3 * time.Second
	postRedirection = http.StatusSeeOther
)

// -----------------------------------------------------------------------------
// Inquiry screens
// -----------------------------------------------------------------------------

func (s *DashboardServer) inquiryPage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		scr, _ := workspace(c).Screens.Inquiry(name)
		scr.EnsureLoaded(time.Now())
		s.renderInquiry(c, scr, scr.Form(), "", http.StatusOK)
	}
}

// -----------------------------------------------------------------------------

// inquirySubmit accepts the filter form. An accepted query redirects back to
// the screen, which shows it loading; a rejected one re-renders the form.
func (s *DashboardServer) inquirySubmit(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		scr, _ := workspace(c).Screens.Inquiry(name)
		if err := c.Request.ParseForm(); err != nil {
			s.renderInquiry(c, scr, scr.Form(), "The form could not be read.", http.StatusBadRequest)
			return
		}
		values := c.Request.PostForm

		err := scr.SubmitForm(values)
		switch {
		case err == nil:
			c.Redirect(postRedirection, screenPath(name))
		case pipeline.IsBusy(err):
			s.renderInquiry(c, scr, submitted(values), msgBusy, http.StatusConflict)
		default:
			s.errors.Handle(err, name)
			msg := helpers.AsDashboardError(err).UserMessage()
			s.renderInquiry(c, scr, submitted(values), msg, http.StatusUnprocessableEntity)
		}
	}
}

// inquiryRefresh re-runs the screen's last accepted query.
func (s *DashboardServer) inquiryRefresh(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		scr, _ := workspace(c).Screens.Inquiry(name)
		scr.Refresh()
		c.Redirect(postRedirection, screenPath(name))
	}
}

func submitted(values url.Values) screens.FormValues {
	return screens.FormValues{
		ReferenceID: screens.Sanitize(values.Get(screens.FieldReference)),
		StartDate:   values.Get(screens.FieldStartDate),
		EndDate:     values.Get(screens.FieldEndDate),
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) renderInquiry(c *gin.Context, scr screens.InquiryScreen, form screens.FormValues, formError string, status int) {
	ws := workspace(c)
	def := scr.Definition()
	page := scr.Render(s.gridOptions(c))

	if formError == "" {
		formError = scr.ValidationMessage()
	}

	c.HTML(status, "inquiry.html", inquiryView{
		layoutView: s.layout(ws, scr),
		Def:        def,
		Action:     screenPath(def.Name),
		Refresh:    refreshPath(def.Name),
		CanRefresh: scr.Refreshable(),
		Form:       form,
		FormError:  formError,
		Grid:       gridPage(page, c.Request.URL, inspectLinks(c.Request.URL)),
		Inspector:  inspection(c, scr),
		AuthFailed: authFailed(page),
	})
}

// -----------------------------------------------------------------------------
// Fund Master
// -----------------------------------------------------------------------------

func (s *DashboardServer) fundsPage(c *gin.Context) {
	ws := workspace(c)
	fm := ws.Screens.Funds
	fm.EnsureLoaded(time.Now())

	view := s.fundsView(c)
	if id := c.Query("edit"); id != "" {
		if f, ok := fm.Fund(id); ok {
			view.Form = &fundFormView{
				Title:  "Edit Fund " + f.FundID,
				Action: "/funds/" + url.PathEscape(f.FundID),
				Inputs: fundInputs(screens.FundFormValues(f), true),
			}
		} else {
			ws.Notices.Push(models.SeverityError, "Error: "+msgUnknownFund)
			view.Notices = ws.Notices.Active()
		}
	} else if c.Query("new") != "" {
		view.Form = &fundFormView{
			Title:  "Add Fund",
			Action: "/funds",
			Inputs: fundInputs(map[string]string{}, false),
		}
	}

	c.HTML(http.StatusOK, "funds.html", view)
}

func (s *DashboardServer) fundsView(c *gin.Context) fundsView {
	ws := workspace(c)
	fm := ws.Screens.Funds
	page := fm.Render(s.gridOptions(c))
	return fundsView{
		layoutView: s.layout(ws, fm),
		Grid:       gridPage(page, c.Request.URL, fundLinks),
		Inspector:  inspection(c, fm),
		AuthFailed: authFailed(page),
	}
}

// rejectFund re-renders a refused fund form with what was posted.
func (s *DashboardServer) rejectFund(c *gin.Context, form fundFormView, editing bool, values url.Values, err error) {
	posted := make(map[string]string, len(screens.FundFields))
	for _, f := range screens.FundFields {
		posted[f.Name] = values.Get(f.Name)
	}
	form.Inputs = fundInputs(posted, editing)
	form.Error = helpers.AsDashboardError(err).UserMessage()

	view := s.fundsView(c)
	view.Form = &form
	c.HTML(http.StatusUnprocessableEntity, "funds.html", view)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) fundCreate(c *gin.Context) {
	fm := workspace(c).Screens.Funds
	if err := c.Request.ParseForm(); err != nil {
		c.Redirect(postRedirection, "/funds")
		return
	}
	if err := fm.Create(c.Request.Context(), c.Request.PostForm); err != nil {
		s.errors.Handle(err, "funds.create")
		s.rejectFund(c, fundFormView{Title: "Add Fund", Action: "/funds"}, false, c.Request.PostForm, err)
		return
	}
	s.settle(c, fm)
	c.Redirect(postRedirection, "/funds")
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) fundUpdate(c *gin.Context) {
	fm := workspace(c).Screens.Funds
	id := c.Param("id")
	if err := c.Request.ParseForm(); err != nil {
		c.Redirect(postRedirection, "/funds")
		return
	}
	if err := fm.Update(c.Request.Context(), id, c.Request.PostForm); err != nil {
		s.errors.Handle(err, "funds.update")
		if _, ok := fm.Fund(id); !ok {
			c.Redirect(postRedirection, "/funds?edit="+url.QueryEscape(id))
			return
		}
		form := fundFormView{Title: "Edit Fund " + id, Action: "/funds/" + url.PathEscape(id)}
		c.Request.PostForm.Set("fundID", id)
		s.rejectFund(c, form, true, c.Request.PostForm, err)
		return
	}
	s.settle(c, fm)
	c.Redirect(postRedirection, "/funds")
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) fundDeleteConfirm(c *gin.Context) {
	ws := workspace(c)
	fm := ws.Screens.Funds
	id := c.Param("id")

	f, ok := fm.Fund(id)
	if !ok {
		ws.Notices.Push(models.SeverityError, "Error: "+msgUnknownFund)
		c.Redirect(http.StatusFound, "/funds")
		return
	}
	c.HTML(http.StatusOK, "confirm.html", confirmView{
		layoutView: s.layout(ws, fm),
		FundID:     f.FundID,
		FundName:   f.FundName,
		Action:     "/funds/" + url.PathEscape(f.FundID) + "/delete",
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) fundDelete(c *gin.Context) {
	fm := workspace(c).Screens.Funds
	id := c.Param("id")

	confirmed := c.PostForm("confirm") == "yes"
	err := fm.Delete(c.Request.Context(), id, confirmed)
	switch {
	case err == screens.ErrConfirmationRequired:
		c.Redirect(postRedirection, "/funds/"+url.PathEscape(id)+"/delete")
		return
	case err != nil:
		s.errors.Handle(err, "funds.delete")
	default:
		s.settle(c, fm)
	}
	c.Redirect(postRedirection, "/funds")
}

// -----------------------------------------------------------------------------

// settle gives the re-fetch after a mutation a moment to land so the
// redirect shows the new list instead of a spinner.
func (s *DashboardServer) settle(c *gin.Context, scr screens.Screen) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationSettle)
	defer cancel()
	_ = scr.Wait(ctx)
}

// -----------------------------------------------------------------------------
// Notices
// -----------------------------------------------------------------------------

func (s *DashboardServer) dismissNotice(c *gin.Context) {
	ws := workspace(c)
	if id, err := strconv.ParseUint(c.Param("id"), 10, 64); err == nil {
		ws.Notices.Dismiss(id)
	}
	back := c.PostForm("back")
	if back == "" || back[0] != '/' || (len(back) > 1 && back[1] == '/') {
		back = "/"
	}
	c.Redirect(postRedirection, back)
}
