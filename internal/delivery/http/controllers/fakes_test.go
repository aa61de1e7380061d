package controllers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

var (
	testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	organizer  = domain.Authenticated{UserID: 2, Username: "org", Role: domain.RoleOrganizer}
)

func asPrincipal(r *http.Request, p domain.Principal) *http.Request {
	return r.WithContext(middleware.WithPrincipal(r.Context(), p))
}

func jazzNight() *domain.EventListing {
	avg := 4.0
	start := time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)
	return &domain.EventListing{
		Event: domain.Event{
			ID:        1,
			Title:     "Jazz Night",
			Slug:      "jazz-night",
			StartAt:   start,
			EndAt:     start.Add(3 * time.Hour),
			Status:    domain.EventStatusPublished,
			PriceFrom: 250000,
		},
		VenueName:     "Arena",
		OrganizerName: "Acme Live",
		Categories:    []*domain.Category{{ID: 1, Name: "Music", Slug: "music"}},
		AvgRating:     &avg,
		ReviewsCount:  2,
	}
}

// fakeEventService implements domain.EventService for controller tests.
type fakeEventService struct {
	err        error
	detail     *domain.EventDetail
	detailErr  error
	lastFilter domain.EventFilters
	lastParams domain.PaginationParams
	lastCreate domain.CreateEventInput
	lastUpdate domain.UpdateEventInput
	updated    bool
	calendar   []byte
}

func (f *fakeEventService) page() *domain.Page[*domain.EventListing] {
	return domain.NewPage([]*domain.EventListing{jazzNight()}, 1, f.lastParams, 1)
}

func (f *fakeEventService) ListPublicEvents(_ context.Context, filters domain.EventFilters, params domain.PaginationParams) (*domain.Page[*domain.EventListing], error) {
	f.lastFilter, f.lastParams = filters, params
	if f.err != nil {
		return nil, f.err
	}
	return f.page(), nil
}

func (f *fakeEventService) ListOwnedEvents(_ context.Context, _ domain.Principal, filters domain.EventFilters, params domain.PaginationParams) (*domain.Page[*domain.EventListing], error) {
	f.lastFilter, f.lastParams = filters, params
	if f.err != nil {
		return nil, f.err
	}
	return f.page(), nil
}

func (f *fakeEventService) GetEvent(_ context.Context, slug string) (*domain.EventListing, error) {
	if f.err != nil {
		return nil, f.err
	}
	if slug != "jazz-night" {
		return nil, domain.ErrNotFound
	}
	return jazzNight(), nil
}

func (f *fakeEventService) GetEventDetail(_ context.Context, _ domain.Principal, _ string) (*domain.EventDetail, error) {
	return f.detail, f.detailErr
}

func (f *fakeEventService) CreateEvent(_ context.Context, _ domain.Principal, in domain.CreateEventInput) (*domain.EventListing, error) {
	f.lastCreate = in
	if f.err != nil {
		return nil, f.err
	}
	return jazzNight(), nil
}

func (f *fakeEventService) UpdateEvent(_ context.Context, _ domain.Principal, _ string, in domain.UpdateEventInput) (*domain.EventListing, error) {
	f.lastUpdate, f.updated = in, true
	if f.err != nil {
		return nil, f.err
	}
	return jazzNight(), nil
}

func (f *fakeEventService) DeleteEvent(_ context.Context, _ domain.Principal, _ string) error {
	return f.err
}

func (f *fakeEventService) ExportCalendar(_ context.Context, _ string) ([]byte, error) {
	return f.calendar, f.err
}

type fakeCategoryService struct {
	cats       []*domain.Category
	lastParams domain.PaginationParams
}

func (f *fakeCategoryService) ListCategories(_ context.Context, params domain.PaginationParams) (*domain.Page[*domain.Category], error) {
	f.lastParams = params
	return domain.NewPage(f.cats, len(f.cats), params, 1), nil
}

func (f *fakeCategoryService) AllCategories(context.Context) ([]*domain.Category, error) {
	return f.cats, nil
}

func (f *fakeCategoryService) GetCategory(_ context.Context, slug string) (*domain.CategoryDetail, error) {
	for _, c := range f.cats {
		if c.Slug == slug {
			return &domain.CategoryDetail{Category: c, Events: []*domain.EventListing{jazzNight()}}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCategoryService) CreateCategory(_ context.Context, p domain.Principal, in domain.CategoryInput) (*domain.Category, error) {
	if _, ok := p.(domain.Authenticated); !ok {
		return nil, domain.ErrForbidden
	}
	return &domain.Category{ID: 9, Name: *in.Name, Slug: "theatre"}, nil
}

func (f *fakeCategoryService) UpdateCategory(_ context.Context, _ domain.Principal, _ string, _ domain.CategoryInput) (*domain.Category, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeCategoryService) DeleteCategory(context.Context, domain.Principal, string) error {
	return nil
}

func (f *fakeCategoryService) ListTags(_ context.Context, params domain.PaginationParams) (*domain.Page[*domain.Tag], error) {
	f.lastParams = params
	tags := []*domain.Tag{{ID: 1, Name: "Live", Slug: "live"}}
	return domain.NewPage(tags, 13, params, 2), nil
}

type fakeVenueService struct {
	venues []*domain.VenueView
	err    error
	lastIn domain.VenueInput
}

func (f *fakeVenueService) ListVenues(_ context.Context, params domain.PaginationParams) (*domain.Page[*domain.VenueView], error) {
	return domain.NewPage(f.venues, len(f.venues), params, 1), nil
}

func (f *fakeVenueService) AllVenues(context.Context) ([]*domain.VenueView, error) {
	return f.venues, nil
}

func (f *fakeVenueService) GetVenue(_ context.Context, _ string) (*domain.VenueDetail, error) {
	if len(f.venues) == 0 {
		return nil, domain.ErrNotFound
	}
	return &domain.VenueDetail{Venue: f.venues[0]}, nil
}

func (f *fakeVenueService) CreateVenue(_ context.Context, _ domain.Principal, in domain.VenueInput) (*domain.VenueView, error) {
	f.lastIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.venues[0], nil
}

func (f *fakeVenueService) UpdateVenue(_ context.Context, _ domain.Principal, _ string, in domain.VenueInput) (*domain.VenueView, error) {
	f.lastIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.venues[0], nil
}

func (f *fakeVenueService) DeleteVenue(context.Context, domain.Principal, string) error {
	return f.err
}

type fakeReviewService struct {
	lastSlug string
	err      error
}

func (f *fakeReviewService) ListLatest(_ context.Context, eventSlug string) ([]*domain.ReviewView, error) {
	f.lastSlug = eventSlug
	return []*domain.ReviewView{{ID: 3, EventTitle: "Jazz Night", Username: "aigerim", Rating: 5, Comment: "great", CreatedAt: time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)}}, nil
}

func (f *fakeReviewService) AddReview(_ context.Context, _ domain.Principal, _ string, in domain.ReviewInput) (*domain.ReviewView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ReviewView{ID: 4, EventTitle: "Jazz Night", Username: "org", Rating: in.Rating, Comment: in.Comment}, nil
}

type fakeFavoriteService struct{ on bool }

func (f *fakeFavoriteService) Toggle(_ context.Context, p domain.Principal, slug string) (bool, error) {
	if slug != "jazz-night" {
		return false, domain.ErrNotFound
	}
	f.on = !f.on
	return f.on, nil
}

func (f *fakeFavoriteService) ListFavorites(context.Context, domain.Principal) ([]*domain.EventListing, error) {
	return nil, nil
}

type fakeAccountService struct {
	tickets []*domain.TicketView
}

func (f *fakeAccountService) ListOrders(context.Context, domain.Principal) ([]*domain.Order, error) {
	return nil, nil
}

func (f *fakeAccountService) ListTickets(context.Context, domain.Principal) ([]*domain.TicketView, error) {
	return f.tickets, nil
}

func (f *fakeAccountService) GetTicket(_ context.Context, _ domain.Principal, code string) (*domain.TicketView, error) {
	for _, t := range f.tickets {
		if t.Code == code {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAccountService) TicketQRCode(ctx context.Context, p domain.Principal, code string) ([]byte, error) {
	if _, err := f.GetTicket(ctx, p, code); err != nil {
		return nil, err
	}
	return []byte("\x89PNG"), nil
}

func (f *fakeAccountService) TicketPDF(ctx context.Context, p domain.Principal, code string) ([]byte, error) {
	if _, err := f.GetTicket(ctx, p, code); err != nil {
		return nil, err
	}
	return []byte("%PDF-1.3"), nil
}

type fakeAuthService struct {
	loginErr   error
	lastAddr   string
	registered domain.RegisterInput
}

func (f *fakeAuthService) Register(_ context.Context, in domain.RegisterInput) (*domain.RegisterResult, error) {
	f.registered = in
	return &domain.RegisterResult{User: &domain.User{ID: 5, Username: in.Username, Email: in.Email}, EmailSent: false}, nil
}

func (f *fakeAuthService) VerifyEmail(_ context.Context, token string) (*domain.User, error) {
	if token != "good" {
		return nil, domain.ErrInvalidToken
	}
	return &domain.User{ID: 5, Username: "aigerim", IsActive: true}, nil
}

func (f *fakeAuthService) Login(_ context.Context, clientAddr, username, _ string) (string, *domain.User, error) {
	f.lastAddr = clientAddr
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return "signed.jwt", &domain.User{ID: 5, Username: username, IsActive: true}, nil
}

type fakeUserService struct {
	lastUpdate domain.UpdateAccountInput
}

func (f *fakeUserService) LoadPrincipal(context.Context, int64) (domain.Principal, error) {
	return domain.Anonymous{}, nil
}

func (f *fakeUserService) GetAccount(_ context.Context, p domain.Principal) (*domain.Account, error) {
	id, ok := domain.UserIDOf(p)
	if !ok {
		return nil, domain.ErrForbidden
	}
	return &domain.Account{
		User:    &domain.User{ID: id, Username: "org", Email: "org@example.com", IsActive: true},
		Profile: &domain.UserProfile{UserID: id, Role: domain.RoleOrganizer, CitySlug: "almaty"},
	}, nil
}

func (f *fakeUserService) UpdateAccount(ctx context.Context, p domain.Principal, in domain.UpdateAccountInput) (*domain.Account, error) {
	f.lastUpdate = in
	return f.GetAccount(ctx, p)
}
