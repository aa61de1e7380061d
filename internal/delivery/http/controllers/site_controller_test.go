package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeData unwraps the success envelope into dest.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var resp struct {
		Data  json.RawMessage    `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Nil(t, resp.Error)
	require.NoError(t, json.Unmarshal(resp.Data, dest))
}

func TestEventController_List(t *testing.T) {
	events := &fakeEventService{}
	ctrl := NewEventController(testLogger, events)
	rr := httptest.NewRecorder()

	ctrl.List(rr, httptest.NewRequest(http.MethodGet, "/events?page=3&page_size=50", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.PaginationParams{Page: 3, PageSize: helpers.ListingPageSize}, events.lastParams, "site listings ignore page_size")
	var data ListResponse[EventJSON]
	decodeData(t, rr, &data)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "Acme Live", data.Items[0].Organizer)
	assert.Equal(t, 1, data.Pagination.TotalPages)
}

func TestEventController_Mine(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "manager", wantStatus: http.StatusOK},
		{name: "no organizer access", err: domain.ErrNoAccess, wantStatus: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewEventController(testLogger, &fakeEventService{err: tt.err})
			rr := httptest.NewRecorder()
			ctrl.Mine(rr, asPrincipal(httptest.NewRequest(http.MethodGet, "/events/mine", nil), organizer))
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestEventController_Detail(t *testing.T) {
	detail := &domain.EventDetail{
		Event:     jazzNight(),
		Schedules: []*domain.EventSchedule{{StartAt: jazzNight().StartAt, EndAt: jazzNight().EndAt, Note: "Doors"}},
		CanManage: true,
	}
	ctrl := NewEventController(testLogger, &fakeEventService{detail: detail})
	req := httptest.NewRequest(http.MethodGet, "/events/jazz-night", nil)
	req.SetPathValue("slug", "jazz-night")
	rr := httptest.NewRecorder()

	ctrl.Detail(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var data EventDetailJSON
	decodeData(t, rr, &data)
	assert.True(t, data.CanManage)
	require.Len(t, data.Schedules, 1)
	assert.Equal(t, "Doors", data.Schedules[0].Note)
	assert.Empty(t, data.Images)
	assert.NotNil(t, data.Reviews)
}

func TestEventController_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantSubstr string
	}{
		{
			name:       "success",
			body:       `{"title":"Jazz","start_at":"2026-05-01 19:00","end_at":"2026-05-01 22:00","venue_id":1,"organizer_id":2,"category_ids":[1]}`,
			wantStatus: http.StatusCreated,
		},
		{name: "unknown field", body: `{"title":"Jazz","colour":"red"}`, wantStatus: http.StatusBadRequest, wantSubstr: helpers.ErrCodeInvalidJSON},
		{name: "required fields", body: `{"title":" "}`, wantStatus: http.StatusBadRequest, wantSubstr: "title is required; start_at is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &fakeEventService{}
			ctrl := NewEventController(testLogger, events)
			rr := httptest.NewRecorder()

			ctrl.Create(rr, asPrincipal(httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(tt.body)), organizer))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantSubstr != "" {
				assert.Contains(t, rr.Body.String(), tt.wantSubstr)
			} else {
				assert.Equal(t, []int64{1}, events.lastCreate.CategoryIDs)
			}
		})
	}
}

func TestEventController_UpdateLeavesOmittedFields(t *testing.T) {
	events := &fakeEventService{}
	ctrl := NewEventController(testLogger, events)
	req := httptest.NewRequest(http.MethodPatch, "/events/jazz-night", bytes.NewBufferString(`{"is_featured":true}`))
	req.SetPathValue("slug", "jazz-night")
	rr := httptest.NewRecorder()

	ctrl.Update(rr, asPrincipal(req, organizer))

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, events.lastUpdate.IsFeatured)
	assert.True(t, *events.lastUpdate.IsFeatured)
	assert.Nil(t, events.lastUpdate.Title)
}

func TestCatalogController(t *testing.T) {
	cats := &fakeCategoryService{cats: []*domain.Category{{ID: 1, Name: "Music", Slug: "music"}}}
	venues := &fakeVenueService{venues: []*domain.VenueView{{
		Venue: domain.Venue{ID: 10, Name: "Arena", Slug: "arena", Address: "Abay 1"},
		City:  &domain.City{ID: 1, Name: "Almaty", Slug: "almaty"},
	}}}
	ctrl := NewCatalogController(testLogger, nil, venues, cats)

	t.Run("tags use their own page size", func(t *testing.T) {
		rr := httptest.NewRecorder()
		ctrl.ListTags(rr, httptest.NewRequest(http.MethodGet, "/tags?page=2", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, helpers.TagListingPageSize, cats.lastParams.PageSize)
		var data ListResponse[domain.Tag]
		decodeData(t, rr, &data)
		assert.Equal(t, helpers.PaginationMeta{Page: 2, PageSize: 12, Total: 13, TotalPages: 2}, data.Pagination)
	})

	t.Run("category detail", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/categories/music", nil)
		req.SetPathValue("slug", "music")
		rr := httptest.NewRecorder()
		ctrl.GetCategory(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		var data CategoryDetailJSON
		decodeData(t, rr, &data)
		assert.Equal(t, "music", data.Category.Slug)
		assert.Len(t, data.Events, 1)
	})

	t.Run("anonymous cannot create a category", func(t *testing.T) {
		rr := httptest.NewRecorder()
		ctrl.CreateCategory(rr, httptest.NewRequest(http.MethodPost, "/categories", bytes.NewBufferString(`{"name":"Theatre"}`)))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("venue city slug is forwarded", func(t *testing.T) {
		rr := httptest.NewRecorder()
		body := `{"name":"Arena","city":"almaty","address":"Abay 1","capacity":500}`
		ctrl.CreateVenue(rr, asPrincipal(httptest.NewRequest(http.MethodPost, "/venues", bytes.NewBufferString(body)), organizer))
		require.Equal(t, http.StatusCreated, rr.Code)
		require.NotNil(t, venues.lastIn.CitySlug)
		assert.Equal(t, "almaty", *venues.lastIn.CitySlug)
		assert.Equal(t, 500, *venues.lastIn.Capacity)
		var data VenueJSON
		decodeData(t, rr, &data)
		assert.Equal(t, "Almaty", data.City.Name)
	})

	t.Run("venue in use", func(t *testing.T) {
		venues.err = domain.NewValidationError("venue is used by events")
		defer func() { venues.err = nil }()
		req := httptest.NewRequest(http.MethodDelete, "/venues/arena", nil)
		req.SetPathValue("slug", "arena")
		rr := httptest.NewRecorder()
		ctrl.DeleteVenue(rr, asPrincipal(req, organizer))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "venue is used by events")
	})
}

func TestEngagementController(t *testing.T) {
	reviews := &fakeReviewService{}
	ctrl := NewEngagementController(testLogger, reviews, &fakeFavoriteService{})

	req := httptest.NewRequest(http.MethodPost, "/events/jazz-night/reviews", bytes.NewBufferString(`{"rating":5,"comment":"great"}`))
	req.SetPathValue("slug", "jazz-night")
	rr := httptest.NewRecorder()
	ctrl.AddReview(rr, asPrincipal(req, organizer))
	require.Equal(t, http.StatusCreated, rr.Code)
	var review ReviewJSON
	decodeData(t, rr, &review)
	assert.Equal(t, 5, review.Rating)

	reviews.err = domain.NewValidationError("you have already reviewed this event")
	req = httptest.NewRequest(http.MethodPost, "/events/jazz-night/reviews", bytes.NewBufferString(`{"rating":4}`))
	req.SetPathValue("slug", "jazz-night")
	rr = httptest.NewRecorder()
	ctrl.AddReview(rr, asPrincipal(req, organizer))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	for _, want := range []bool{true, false} {
		req = httptest.NewRequest(http.MethodPost, "/favorites/jazz-night/toggle", nil)
		req.SetPathValue("slug", "jazz-night")
		rr = httptest.NewRecorder()
		ctrl.ToggleFavorite(rr, asPrincipal(req, organizer))
		require.Equal(t, http.StatusOK, rr.Code)
		var fav FavoriteResponse
		decodeData(t, rr, &fav)
		assert.Equal(t, want, fav.Favorited)
	}

	rr = httptest.NewRecorder()
	ctrl.ListFavorites(rr, asPrincipal(httptest.NewRequest(http.MethodGet, "/favorites", nil), organizer))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[],"error":null}`, rr.Body.String())
}

func TestAccountController_Tickets(t *testing.T) {
	code := "6f1c2a9e-3b1d-4c55-9a7e-2f7d8b0c1e42"
	svc := &fakeAccountService{tickets: []*domain.TicketView{{ID: 1, Code: code, Status: domain.TicketStatusNew, EventTitle: "Jazz Night"}}}
	ctrl := NewAccountController(testLogger, svc)

	tests := []struct {
		name        string
		handler     http.HandlerFunc
		code        string
		wantStatus  int
		wantType    string
		wantDispose string
	}{
		{name: "qr", handler: ctrl.TicketQR, code: code, wantStatus: http.StatusOK, wantType: "image/png"},
		{name: "pdf", handler: ctrl.TicketPDF, code: code, wantStatus: http.StatusOK, wantType: "application/pdf", wantDispose: "ticket-" + code + ".pdf"},
		{name: "foreign ticket", handler: ctrl.TicketQR, code: "00000000-0000-0000-0000-000000000000", wantStatus: http.StatusNotFound, wantType: "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tickets/"+tt.code, nil)
			req.SetPathValue("code", tt.code)
			rr := httptest.NewRecorder()
			tt.handler(rr, asPrincipal(req, organizer))
			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantType, rr.Header().Get("Content-Type"))
			if tt.wantDispose != "" {
				assert.Contains(t, rr.Header().Get("Content-Disposition"), tt.wantDispose)
			}
		})
	}

	rr := httptest.NewRecorder()
	ctrl.ListTickets(rr, asPrincipal(httptest.NewRequest(http.MethodGet, "/tickets", nil), organizer))
	require.Equal(t, http.StatusOK, rr.Code)
	var tickets []TicketJSON
	decodeData(t, rr, &tickets)
	require.Len(t, tickets, 1)
	assert.Equal(t, "Jazz Night", tickets[0].Event)

	rr = httptest.NewRecorder()
	ctrl.ListOrders(rr, asPrincipal(httptest.NewRequest(http.MethodGet, "/orders", nil), organizer))
	assert.JSONEq(t, `{"data":[],"error":null}`, rr.Body.String())
}

func TestAuthController(t *testing.T) {
	t.Run("register", func(t *testing.T) {
		svc := &fakeAuthService{}
		ctrl := NewAuthController(testLogger, svc)
		rr := httptest.NewRecorder()
		ctrl.Register(rr, httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(`{"username":"aigerim","email":"a@example.com","password":"secret123"}`)))
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.NotContains(t, rr.Body.String(), "password")
		var data RegisterResponse
		decodeData(t, rr, &data)
		assert.False(t, data.EmailSent)
		assert.Equal(t, "aigerim", data.User.Username)
		assert.Equal(t, "a@example.com", svc.registered.Email)
	})

	t.Run("verify", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeAuthService{})
		req := httptest.NewRequest(http.MethodGet, "/auth/verify/bad", nil)
		req.SetPathValue("token", "bad")
		rr := httptest.NewRecorder()
		ctrl.Verify(rr, req)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, helpers.ErrCodeBadRequest, decodeError(t, rr).Code)
	})

	tests := []struct {
		name       string
		body       string
		loginErr   error
		wantStatus int
		wantCode   string
	}{
		{name: "success", body: `{"username":"aigerim","password":"secret123"}`, wantStatus: http.StatusOK},
		{name: "missing password", body: `{"username":"aigerim"}`, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeValidation},
		{name: "bad credentials", body: `{"username":"aigerim","password":"x"}`, loginErr: domain.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized, wantCode: helpers.ErrCodeUnauthorized},
		{name: "inactive", body: `{"username":"aigerim","password":"x"}`, loginErr: domain.ErrInactiveAccount, wantStatus: http.StatusForbidden, wantCode: helpers.ErrCodeEmailNotVerified},
		{name: "throttled", body: `{"username":"aigerim","password":"x"}`, loginErr: domain.ErrTooManyAttempts, wantStatus: http.StatusTooManyRequests, wantCode: helpers.ErrCodeTooManyRequests},
	}
	for _, tt := range tests {
		t.Run("login "+tt.name, func(t *testing.T) {
			svc := &fakeAuthService{loginErr: tt.loginErr}
			ctrl := NewAuthController(testLogger, svc)
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tt.body))
			req.RemoteAddr = "203.0.113.7:51234"
			rr := httptest.NewRecorder()

			ctrl.Login(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rr).Code)
				return
			}
			assert.Equal(t, "203.0.113.7", svc.lastAddr)
			var data LoginResponse
			decodeData(t, rr, &data)
			assert.Equal(t, "Bearer", data.TokenType)
			assert.Equal(t, "signed.jwt", data.Token)
		})
	}
}

func TestUserController(t *testing.T) {
	svc := &fakeUserService{}
	ctrl := NewUserController(testLogger, svc)

	rr := httptest.NewRecorder()
	ctrl.Me(rr, asPrincipal(httptest.NewRequest(http.MethodGet, "/users/me", nil), organizer))
	require.Equal(t, http.StatusOK, rr.Code)
	var acc AccountJSON
	decodeData(t, rr, &acc)
	assert.Equal(t, domain.RoleOrganizer, acc.Role)
	assert.Equal(t, "almaty", acc.City)

	rr = httptest.NewRecorder()
	ctrl.UpdateMe(rr, asPrincipal(httptest.NewRequest(http.MethodPatch, "/users/me", bytes.NewBufferString(`{"city":"","bio":"hi"}`)), organizer))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, svc.lastUpdate.CitySlug)
	assert.Empty(t, *svc.lastUpdate.CitySlug)
	assert.Nil(t, svc.lastUpdate.Email)

	rr = httptest.NewRecorder()
	ctrl.Me(rr, httptest.NewRequest(http.MethodGet, "/users/me", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
