package domain

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ScopeKind selects the visibility boundary applied before user filters.
type ScopeKind int

const (
	ScopePublic ScopeKind = iota
	ScopeOwned
	ScopeAll
)

// Scope is a visibility boundary. For ScopeOwned, OrganizerIDs is the membership set.
type Scope struct {
	Kind         ScopeKind
	OrganizerIDs []int64
}

// PublicScope limits results to published events.
func PublicScope() Scope { return Scope{Kind: ScopePublic} }

// OwnedScope limits results to events of the given organizers.
func OwnedScope(organizerIDs []int64) Scope {
	return Scope{Kind: ScopeOwned, OrganizerIDs: organizerIDs}
}

// AllScope applies no visibility restriction.
func AllScope() Scope { return Scope{Kind: ScopeAll} }

// EventFilters are the optional, user-supplied listing filters.
type EventFilters struct {
	Query    string
	Category string
	City     string
	Year     string
	Ordering string
}

// EventFiltersFromValues reads q, category, city, year and ordering from a query string.
func EventFiltersFromValues(v url.Values) EventFilters {
	return EventFilters{
		Query:    v.Get("q"),
		Category: v.Get("category"),
		City:     v.Get("city"),
		Year:     v.Get("year"),
		Ordering: v.Get("ordering"),
	}
}

// PredicateKind names a single filter condition.
type PredicateKind string

const (
	PredStatus      PredicateKind = "status"
	PredOrganizerIn PredicateKind = "organizer_in"
	PredVenue       PredicateKind = "venue"
	PredEventIn     PredicateKind = "event_in"
	PredText        PredicateKind = "text"
	PredCategory    PredicateKind = "category"
	PredCity        PredicateKind = "city"
	PredYear        PredicateKind = "year"
)

// Predicate is one AND-ed condition of an EventQuery.
type Predicate struct {
	Kind PredicateKind
	Text string
	Num  int
	IDs  []int64
	// Zone is the calendar zone for year matching; nil means UTC.
	Zone *time.Location
}

// Match evaluates the predicate against a listing.
func (p Predicate) Match(e *EventListing) bool {
	switch p.Kind {
	case PredStatus:
		return string(e.Status) == p.Text
	case PredOrganizerIn:
		return slices.Contains(p.IDs, e.OrganizerID)
	case PredVenue:
		return len(p.IDs) == 1 && e.VenueID == p.IDs[0]
	case PredEventIn:
		return slices.Contains(p.IDs, e.ID)
	case PredText:
		needle := strings.ToLower(p.Text)
		return strings.Contains(strings.ToLower(e.Title), needle) ||
			strings.Contains(strings.ToLower(e.OrganizerName), needle)
	case PredCategory:
		return e.HasCategory(p.Text)
	case PredCity:
		return e.CitySlug == p.Text
	case PredYear:
		zone := p.Zone
		if zone == nil {
			zone = time.UTC
		}
		return e.StartAt.In(zone).Year() == p.Num
	}
	return false
}

// OrderField is a sortable event column.
type OrderField string

const (
	OrderStartAt   OrderField = "start_at"
	OrderPriceFrom OrderField = "price_from"
)

// OrderBy is the primary sort key. Ties are always broken by ascending id.
type OrderBy struct {
	Field OrderField
	Desc  bool
}

// DefaultOrder is ascending start time.
var DefaultOrder = OrderBy{Field: OrderStartAt}

// ParseOrdering accepts start_at, -start_at, price_from and -price_from; anything else yields DefaultOrder.
func ParseOrdering(s string) OrderBy {
	switch s {
	case "start_at":
		return OrderBy{Field: OrderStartAt}
	case "-start_at":
		return OrderBy{Field: OrderStartAt, Desc: true}
	case "price_from":
		return OrderBy{Field: OrderPriceFrom}
	case "-price_from":
		return OrderBy{Field: OrderPriceFrom, Desc: true}
	}
	return DefaultOrder
}

// Compare orders two listings by o, then by id.
func (o OrderBy) Compare(a, b *EventListing) int {
	c := 0
	switch o.Field {
	case OrderPriceFrom:
		c = cmpInt64(int64(a.PriceFrom), int64(b.PriceFrom))
	default:
		c = a.StartAt.Compare(b.StartAt)
	}
	if o.Desc {
		c = -c
	}
	if c != 0 {
		return c
	}
	return cmpInt64(a.ID, b.ID)
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// EventQuery is a backend-independent description of an event listing query.
type EventQuery struct {
	Predicates []Predicate
	Order      OrderBy
}

// Match reports whether every predicate holds for e.
func (q EventQuery) Match(e *EventListing) bool {
	for _, p := range q.Predicates {
		if !p.Match(e) {
			return false
		}
	}
	return true
}

// Where returns a copy of q with extra predicates appended.
func (q EventQuery) Where(preds ...Predicate) EventQuery {
	out := EventQuery{Order: q.Order}
	out.Predicates = append(slices.Clone(q.Predicates), preds...)
	return out
}

// InZone returns a copy of q whose year predicates use the given calendar zone.
func (q EventQuery) InZone(loc *time.Location) EventQuery {
	out := q.Where()
	for i := range out.Predicates {
		if out.Predicates[i].Kind == PredYear {
			out.Predicates[i].Zone = loc
		}
	}
	return out
}

// ComposeEventQuery folds a scope and the user filters into one query.
// Scope predicates come first; unparseable year and unknown ordering are ignored.
func ComposeEventQuery(scope Scope, f EventFilters) EventQuery {
	q := EventQuery{Order: ParseOrdering(f.Ordering)}
	switch scope.Kind {
	case ScopePublic:
		q.Predicates = append(q.Predicates, Predicate{Kind: PredStatus, Text: string(EventStatusPublished)})
	case ScopeOwned:
		q.Predicates = append(q.Predicates, Predicate{Kind: PredOrganizerIn, IDs: slices.Clone(scope.OrganizerIDs)})
	}
	if f.Query != "" {
		q.Predicates = append(q.Predicates, Predicate{Kind: PredText, Text: f.Query})
	}
	if f.Category != "" {
		q.Predicates = append(q.Predicates, Predicate{Kind: PredCategory, Text: f.Category})
	}
	if f.City != "" {
		q.Predicates = append(q.Predicates, Predicate{Kind: PredCity, Text: f.City})
	}
	if year, ok := parseYear(f.Year); ok {
		q.Predicates = append(q.Predicates, Predicate{Kind: PredYear, Num: year})
	}
	return q
}

func parseYear(s string) (int, bool) {
	if s == "" || !digitsOnly(s) {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return y, true
}
