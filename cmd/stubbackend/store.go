package main

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"trade-dashboard/src/models"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

// backendStore is the in-memory data set behind the stub routes.
type backendStore struct {
	mu         sync.RWMutex
	trades     []models.MTradeRecord
	exceptions []models.MExceptionRecord
	messages   []models.MRawMessageRecord
	funds      map[string]models.MFundRecord
}

func num(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func strPtr(s string) *string { return &s }

// newBackendStore seeds trades around now so the default summary range
// always has data.
func newBackendStore(now time.Time) *backendStore {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	s := &backendStore{funds: make(map[string]models.MFundRecord)}

	funds := []string{"F100", "F200", "F300"}
	for i := 0; i < 24; i++ {
		trade := day.AddDate(0, 0, -i/3)
		fund := funds[i%len(funds)]
		ref := fmt.Sprintf("CR-%04d", 1000+i)
		qty := decimal.NewFromInt(int64(100 * (i + 1)))
		price := decimal.RequireFromString("101.2500").Add(decimal.NewFromInt(int64(i)))
		principal := qty.Mul(price)
		outbound := fmt.Sprintf(`{"clientReferenceNumber":%q,"fundNumber":%q,"quantity":%s,"price":%s}`, ref, fund, qty, price)
		s.trades = append(s.trades, models.MTradeRecord{
			ClientReferenceNumber: ref,
			FundNumber:            fund,
			SecurityID:            fmt.Sprintf("US%09d", 37833100+i),
			TradeDate:             models.NewDate(trade),
			SettleDate:            models.NewDate(trade.AddDate(0, 0, 2)),
			Quantity:              decimal.NewNullDecimal(qty),
			Price:                 decimal.NewNullDecimal(price),
			Principal:             decimal.NewNullDecimal(principal),
			NetAmount:             decimal.NewNullDecimal(principal.Sub(decimal.NewFromInt(5))),
			BaseCurrency:          "USD",
			OutboundJSON:          strPtr(outbound),
		})

		if i%4 == 0 {
			s.exceptions = append(s.exceptions, models.MExceptionRecord{
				ID:                    int64(500 + i),
				ClientReferenceNumber: ref,
				FailureReason:         "Security not found in master",
				ErrorType:             "VALIDATION",
				CreatedAt:             models.NewTimestamp(trade.Add(9*time.Hour + time.Duration(i)*time.Minute)),
				FailedTradeJSON:       strPtr(outbound),
			})
		}

		s.messages = append(s.messages, models.MRawMessageRecord{
			ID:         int64(9000 + i),
			MessageKey: "trade-in-" + ref,
			CreatedAt:  models.NewTimestamp(trade.Add(8 * time.Hour)),
			JSONData:   strPtr(outbound),
		})
	}
	// One payload that does not parse, for the inspector's error path.
	s.messages[0].JSONData = strPtr(`{"clientReferenceNumber": "CR-1000",`)

	for i, id := range funds {
		s.funds[id] = models.MFundRecord{
			FundID:        id,
			FundName:      fmt.Sprintf("Stub Fund %d", i+1),
			FundTicker:    fmt.Sprintf("STB%d", i+1),
			ISIN:          fmt.Sprintf("US00000000%02d", i+1),
			FundType:      "Mutual Fund",
			Domicile:      "US",
			BaseCurrency:  "USD",
			ManagementFee: num("0.75"),
			NAV:           num("10.2500"),
			NAVDate:       models.NewDate(day),
			Status:        "Active",
		}
	}
	return s
}

// -----------------------------------------------------------------------------
// Filters
// -----------------------------------------------------------------------------

type window struct {
	start, end time.Time
	set        bool
}

// parseWindow accepts each layout the dashboard sends. End dates without a
// time cover the whole day.
func parseWindow(start, end string) (window, error) {
	if start == "" && end == "" {
		return window{}, nil
	}
	from, err := parseStamp(start)
	if err != nil {
		return window{}, err
	}
	to, err := parseStamp(end)
	if err != nil {
		return window{}, err
	}
	if len(end) == len(models.DateLayout) {
		to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return window{start: from, end: to, set: true}, nil
}

func parseStamp(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05.000Z", "2006-01-02T15:04", models.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func (w window) contains(t time.Time) bool {
	return !w.set || (!t.Before(w.start) && !t.After(w.end))
}

// -----------------------------------------------------------------------------
// Queries
// -----------------------------------------------------------------------------

func (s *backendStore) Trades(ref string, w window) []models.MTradeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.MTradeRecord{}
	for _, t := range s.trades {
		if ref != "" && !strings.EqualFold(t.ClientReferenceNumber, ref) {
			continue
		}
		if w.contains(t.TradeDate.Time) {
			out = append(out, t)
		}
	}
	return out
}

func (s *backendStore) Exceptions(ref string, w window) []models.MExceptionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.MExceptionRecord{}
	for _, e := range s.exceptions {
		if ref != "" && !strings.EqualFold(e.ClientReferenceNumber, ref) {
			continue
		}
		if w.contains(e.CreatedAt.Time) {
			out = append(out, e)
		}
	}
	return out
}

func (s *backendStore) Messages(w window) []models.MRawMessageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.MRawMessageRecord{}
	for _, m := range s.messages {
		if w.contains(m.CreatedAt.Time) {
			out = append(out, m)
		}
	}
	return out
}

func (s *backendStore) Summary(w window) []models.MSummaryRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := map[string]*models.MSummaryRow{}
	for _, t := range s.trades {
		if !w.contains(t.TradeDate.Time) {
			continue
		}
		r, ok := rows[t.FundNumber]
		if !ok {
			r = &models.MSummaryRow{FundNumber: t.FundNumber}
			rows[t.FundNumber] = r
		}
		r.TradesReceived++
		r.TradesCreated++
	}
	for _, e := range s.exceptions {
		for _, t := range s.trades {
			if t.ClientReferenceNumber == e.ClientReferenceNumber && w.contains(t.TradeDate.Time) {
				rows[t.FundNumber].Exceptions++
				rows[t.FundNumber].TradesCreated--
				break
			}
		}
	}

	out := make([]models.MSummaryRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FundNumber < out[j].FundNumber })
	return out
}

// -----------------------------------------------------------------------------
// Funds
// -----------------------------------------------------------------------------

func (s *backendStore) Funds() []models.MFundRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MFundRecord, 0, len(s.funds))
	for _, f := range s.funds {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FundID < out[j].FundID })
	return out
}

func (s *backendStore) CreateFund(f models.MFundRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.funds[f.FundID]; exists {
		return false
	}
	s.stamp(&f)
	s.funds[f.FundID] = f
	return true
}

func (s *backendStore) UpdateFund(id string, f models.MFundRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.funds[id]; !exists {
		return false
	}
	f.FundID = id
	s.stamp(&f)
	s.funds[id] = f
	return true
}

func (s *backendStore) DeleteFund(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.funds[id]; !exists {
		return false
	}
	delete(s.funds, id)
	return true
}

func (s *backendStore) stamp(f *models.MFundRecord) {
	ts := models.NewTimestamp(time.Now().UTC())
	f.LastUpdatedBy = "stub"
	f.LastUpdatedDate = &ts
}
