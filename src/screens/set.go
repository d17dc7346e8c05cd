package screens

import (
	"time"

	"trade-dashboard/src/interfaces"
	"trade-dashboard/src/models"
	"trade-dashboard/src/pipeline"
	"trade-dashboard/src/utils"
)

// Set is the screens of one workspace. Screens never share state.
type Set struct {
	Trades     *Inquiry[models.MTradeRecord]
	Exceptions *Inquiry[models.MExceptionRecord]
	Messages   *Inquiry[models.MRawMessageRecord]
	Summary    *Inquiry[models.MSummaryRow]
	Funds      *FundMaster
}

// -----------------------------------------------------------------------------

func NewSet(client interfaces.IBackendClient, observer pipeline.Observer, notices NoticeSink, loc *time.Location, cal *utils.TradingCalendar) *Set {
	if cal == nil {
		cal = utils.NewWeekdayCalendar(loc)
	}
	return &Set{
		Trades:     NewInquiry[models.MTradeRecord](TradesDefinition(), client, observer, loc),
		Exceptions: NewInquiry[models.MExceptionRecord](ExceptionsDefinition(loc), client, observer, loc),
		Messages:   NewInquiry[models.MRawMessageRecord](MessagesDefinition(loc), client, observer, loc),
		Summary: NewInquiry[models.MSummaryRow](SummaryDefinition(), client, observer, loc).
			WithDefaults(func(now time.Time) models.MFilterCriteria { return DefaultCriteria(cal, now) }),
		Funds: NewFundMaster(client, observer, notices),
	}
}

// -----------------------------------------------------------------------------

// Inquiry returns the inquiry screen called name.
func (s *Set) Inquiry(name string) (InquiryScreen, bool) {
	switch name {
	case Trades:
		return s.Trades, true
	case Exceptions:
		return s.Exceptions, true
	case Messages:
		return s.Messages, true
	case Summary:
		return s.Summary, true
	}
	return nil, false
}

// Screen returns any screen, the Fund Master included.
func (s *Set) Screen(name string) (Screen, bool) {
	if name == Funds {
		return s.Funds, true
	}
	return s.Inquiry(name)
}

// Names lists the screens in navigation order.
func Names() []string {
	return []string{Summary, Trades, Exceptions, Messages, Funds}
}
