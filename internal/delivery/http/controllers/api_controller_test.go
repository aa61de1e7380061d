package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPIController(events *fakeEventService) *APIController {
	cats := &fakeCategoryService{cats: []*domain.Category{{ID: 1, Name: "Music", Slug: "music"}}}
	venues := &fakeVenueService{venues: []*domain.VenueView{{Venue: domain.Venue{ID: 10, Name: "Arena", Slug: "arena", Address: "Abay 1"}}}}
	return NewAPIController(testLogger, events, cats, venues, &fakeReviewService{})
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIError {
	t.Helper()
	var resp helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestAPIController_ListEvents(t *testing.T) {
	events := &fakeEventService{}
	ctrl := newAPIController(events)
	req := httptest.NewRequest(http.MethodGet, "/api/events?q=jazz&category=music&page=2&page_size=500", nil)
	rr := httptest.NewRecorder()

	ctrl.ListEvents(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "jazz", events.lastFilter.Query)
	assert.Equal(t, "music", events.lastFilter.Category)
	assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: helpers.MaxPageSize}, events.lastParams)

	body := rr.Body.String()
	assert.Contains(t, body, `"avg_rating":4.0`)
	assert.Contains(t, body, `"price_from":"2500.00"`)
	assert.Contains(t, body, `"start_at":"2026-05-01T19:00:00Z"`)

	var resp EventListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, []string{"Music"}, resp.Results[0].Categories)
	assert.Equal(t, []string{}, resp.Results[0].Tags)
}

func TestAPIController_CreateEvent(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		fakeErr     error
		wantStatus  int
		wantCode    string
		wantMessage string
		check       func(t *testing.T, in domain.CreateEventInput)
	}{
		{
			name:       "success coerces ids and price",
			body:       `{"title":"Jazz Night","start_at":"2026-05-01T19:00:00","end_at":"2026-05-01T22:00:00","venue_id":10,"organizer_id":"7","price_from":2500}`,
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, in domain.CreateEventInput) {
				assert.Equal(t, "Jazz Night", in.Title)
				assert.Equal(t, int64(10), in.VenueID)
				assert.Equal(t, int64(7), in.OrganizerID)
				assert.Equal(t, "2500", in.PriceFrom)
				assert.Empty(t, in.Status)
			},
		},
		{
			name:        "invalid json",
			body:        `{"title":`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    helpers.ErrCodeInvalidJSON,
			wantMessage: "Invalid JSON payload.",
		},
		{
			name:        "json array is not an object",
			body:        `[1,2]`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    helpers.ErrCodeInvalidJSON,
			wantMessage: "Invalid JSON payload.",
		},
		{
			name:        "missing fields are listed in order",
			body:        `{"title":"Jazz","start_at":"2026-05-01T19:00:00"}`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    helpers.ErrCodeValidation,
			wantMessage: "Missing fields: end_at, venue_id, organizer_id",
		},
		{
			name:       "non numeric organizer becomes zero",
			body:       `{"title":"Jazz","start_at":"x","end_at":"y","venue_id":1,"organizer_id":"abc"}`,
			fakeErr:    domain.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantCode:   helpers.ErrCodeForbidden,
			check: func(t *testing.T, in domain.CreateEventInput) {
				assert.Zero(t, in.OrganizerID)
			},
		},
		{
			name:        "service validation",
			body:        `{"title":"Jazz","start_at":"x","end_at":"y","venue_id":1,"organizer_id":7}`,
			fakeErr:     domain.NewValidationError("start_at and end_at must be ISO datetime."),
			wantStatus:  http.StatusBadRequest,
			wantCode:    helpers.ErrCodeValidation,
			wantMessage: "start_at and end_at must be ISO datetime.",
		},
		{
			name:        "internal error is hidden",
			body:        `{"title":"Jazz","start_at":"x","end_at":"y","venue_id":1,"organizer_id":7}`,
			fakeErr:     errors.New("pq: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    helpers.ErrCodeInternalError,
			wantMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &fakeEventService{err: tt.fakeErr}
			ctrl := newAPIController(events)
			req := asPrincipal(httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString(tt.body)), organizer)
			rr := httptest.NewRecorder()

			ctrl.CreateEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			if tt.wantCode != "" {
				apiErr := decodeError(t, rr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				if tt.wantMessage != "" {
					assert.Equal(t, tt.wantMessage, apiErr.Message)
				}
			} else {
				var ev EventJSON
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&ev))
				assert.Equal(t, "jazz-night", ev.Slug)
			}
			if tt.check != nil {
				tt.check(t, events.lastCreate)
			}
		})
	}
}

func TestAPIController_UpdateEvent(t *testing.T) {
	manageable := &domain.EventDetail{Event: jazzNight(), CanManage: true}
	readOnly := &domain.EventDetail{Event: jazzNight()}

	tests := []struct {
		name        string
		body        string
		detail      *domain.EventDetail
		detailErr   error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantUpdate  bool
	}{
		{name: "invalid json on missing event is 404", body: `{bad`, detailErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound, wantMessage: "Event not found."},
		{name: "invalid json without rights is 403", body: `{bad`, detail: readOnly, wantStatus: http.StatusForbidden, wantCode: helpers.ErrCodeForbidden},
		{name: "invalid json with rights is 400", body: `{bad`, detail: manageable, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeInvalidJSON, wantMessage: "Invalid JSON payload."},
		{name: "valid body updates", body: `{"title":"Jazz Night II","venue_id":3}`, wantStatus: http.StatusOK, wantUpdate: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &fakeEventService{detail: tt.detail, detailErr: tt.detailErr}
			ctrl := newAPIController(events)
			req := httptest.NewRequest(http.MethodPut, "/api/events/jazz-night", bytes.NewBufferString(tt.body))
			req.SetPathValue("slug", "jazz-night")
			rr := httptest.NewRecorder()

			ctrl.UpdateEvent(rr, asPrincipal(req, organizer))

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantUpdate, events.updated)
			if tt.wantCode != "" {
				apiErr := decodeError(t, rr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				if tt.wantMessage != "" {
					assert.Equal(t, tt.wantMessage, apiErr.Message)
				}
			}
		})
	}

	t.Run("only title description and status are forwarded", func(t *testing.T) {
		events := &fakeEventService{}
		ctrl := newAPIController(events)
		req := httptest.NewRequest(http.MethodPut, "/api/events/jazz-night", bytes.NewBufferString(`{"title":"New","status":"cancelled","price_from":"10"}`))
		req.SetPathValue("slug", "jazz-night")
		rr := httptest.NewRecorder()

		ctrl.UpdateEvent(rr, asPrincipal(req, organizer))

		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, events.lastUpdate.Title)
		assert.Equal(t, "New", *events.lastUpdate.Title)
		require.NotNil(t, events.lastUpdate.Status)
		assert.Equal(t, "cancelled", *events.lastUpdate.Status)
		assert.Nil(t, events.lastUpdate.Description)
		assert.Nil(t, events.lastUpdate.PriceFrom)
	})
}

func TestAPIController_GetAndDelete(t *testing.T) {
	ctrl := newAPIController(&fakeEventService{})

	req := httptest.NewRequest(http.MethodGet, "/api/events/nope", nil)
	req.SetPathValue("slug", "nope")
	rr := httptest.NewRecorder()
	ctrl.GetEvent(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Event not found.", decodeError(t, rr).Message)

	req = httptest.NewRequest(http.MethodDelete, "/api/events/jazz-night", nil)
	req.SetPathValue("slug", "jazz-night")
	rr = httptest.NewRecorder()
	ctrl.DeleteEvent(rr, asPrincipal(req, organizer))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"deleted"}`, rr.Body.String())

	forbidden := newAPIController(&fakeEventService{err: domain.ErrForbidden})
	rr = httptest.NewRecorder()
	forbidden.DeleteEvent(rr, asPrincipal(req, organizer))
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Not enough permissions.", decodeError(t, rr).Message)
}

func TestAPIController_Collections(t *testing.T) {
	reviews := &fakeReviewService{}
	ctrl := newAPIController(&fakeEventService{})
	ctrl.Reviews = reviews

	rr := httptest.NewRecorder()
	ctrl.ListCategories(rr, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"results":[{"id":1,"name":"Music","slug":"music"}]}`, rr.Body.String())

	rr = httptest.NewRecorder()
	ctrl.ListVenues(rr, httptest.NewRequest(http.MethodGet, "/api/venues", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"results":[{"id":10,"name":"Arena","slug":"arena","address":"Abay 1"}]}`, rr.Body.String())

	rr = httptest.NewRecorder()
	ctrl.ListReviews(rr, httptest.NewRequest(http.MethodGet, "/api/reviews?event=jazz-night", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "jazz-night", reviews.lastSlug)
	assert.JSONEq(t, `{"results":[{"id":3,"event":"Jazz Night","user":"aigerim","rating":5,"comment":"great","created_at":"2026-05-02T10:00:00Z"}]}`, rr.Body.String())
}

func TestAPIController_Calendar(t *testing.T) {
	ctrl := newAPIController(&fakeEventService{calendar: []byte("BEGIN:VCALENDAR\r\n")})
	req := httptest.NewRequest(http.MethodGet, "/api/events/jazz-night/calendar.ics", nil)
	req.SetPathValue("slug", "jazz-night")
	rr := httptest.NewRecorder()

	ctrl.Calendar(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), `filename="jazz-night.ics"`)
	assert.Equal(t, "BEGIN:VCALENDAR\r\n", rr.Body.String())
}
