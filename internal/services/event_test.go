package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventhub/internal/access"
	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var almaty = time.FixedZone("ALMT", 5*60*60)

var (
	staffUser       = domain.Authenticated{UserID: 1, Username: "staff", IsElevated: true}
	memberUser      = domain.Authenticated{UserID: 2, Username: "member", Role: domain.RoleOrganizer}
	plainUser       = domain.Authenticated{UserID: 3, Username: "plain", Role: domain.RoleUser}
	outsiderOrgUser = domain.Authenticated{UserID: 4, Username: "outsider", Role: domain.RoleOrganizer}
)

func listing(id int64, title, slug string, status domain.EventStatus, orgID int64, orgName, city string, start time.Time, price domain.Price, cats ...string) *domain.EventListing {
	l := &domain.EventListing{
		Event: domain.Event{
			ID:          id,
			Title:       title,
			Slug:        slug,
			StartAt:     start,
			EndAt:       start.Add(2 * time.Hour),
			VenueID:     10,
			OrganizerID: orgID,
			Status:      status,
			PriceFrom:   price,
		},
		VenueName:     "Arena",
		CitySlug:      city,
		OrganizerName: orgName,
		Categories:    []*domain.Category{},
		Tags:          []*domain.Tag{},
	}
	for _, c := range cats {
		l.Categories = append(l.Categories, &domain.Category{Name: c, Slug: c})
	}
	return l
}

func eventFixtures() []*domain.EventListing {
	return []*domain.EventListing{
		listing(1, "Jazz Night", "jazz-night", domain.EventStatusPublished, 1, "Acme Live", "almaty",
			time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC), 1000, "music"),
		listing(2, "Rock Fest", "rock-fest", domain.EventStatusPublished, 2, "Steppe Events", "astana",
			time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), 500, "music", "outdoor"),
		listing(3, "Draft Talk", "draft-talk", domain.EventStatusDraft, 1, "Acme Live", "almaty",
			time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC), 0),
		// 19:30 UTC on Dec 31 is already 2026 in Almaty.
		listing(4, "New Year Party", "new-year-party", domain.EventStatusPublished, 2, "Steppe Events", "almaty",
			time.Date(2025, 12, 31, 19, 30, 0, 0, time.UTC), 2000),
	}
}

type eventTestEnv struct {
	svc     domain.EventService
	events  *fakeEventRepo
	reviews *fakeReviewRepo
	cal     *fakeCalendar
}

type fakeCalendar struct {
	exported *domain.EventListing
}

func (f *fakeCalendar) Export(e *domain.EventListing, _ []*domain.EventSchedule) ([]byte, error) {
	f.exported = e
	return []byte("BEGIN:VCALENDAR"), nil
}

func newEventTestEnv() *eventTestEnv {
	events := newFakeEventRepo(eventFixtures()...)
	venues := newFakeVenueRepo(&domain.VenueView{Venue: domain.Venue{ID: 10, Name: "Arena", Slug: "arena", CityID: 1}})
	orgs := &fakeOrganizerRepo{orgs: []*domain.Organizer{
		{ID: 1, Name: "Acme Live", Slug: "acme-live"},
		{ID: 2, Name: "Steppe Events", Slug: "steppe-events"},
	}}
	reviews := &fakeReviewRepo{}
	resolver := access.NewResolver(fakeMemberships{{user: 2, org: 1}: true})
	cal := &fakeCalendar{}
	return &eventTestEnv{
		svc:     NewEventService(events, venues, orgs, reviews, resolver, cal, almaty, 5*time.Second),
		events:  events,
		reviews: reviews,
		cal:     cal,
	}
}

func ids(items []*domain.EventListing) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func firstPage(size int) domain.PaginationParams {
	return domain.PaginationParams{Page: 1, PageSize: size}
}

func TestEventService_ListPublicEvents_Filters(t *testing.T) {
	env := newEventTestEnv()
	ctx := context.Background()

	tests := []struct {
		name    string
		filters domain.EventFilters
		want    []int64
	}{
		{name: "published only, by start", want: []int64{1, 2, 4}},
		{name: "title substring", filters: domain.EventFilters{Query: "JAZZ"}, want: []int64{1}},
		{name: "organizer name substring", filters: domain.EventFilters{Query: "steppe"}, want: []int64{2, 4}},
		{name: "category", filters: domain.EventFilters{Category: "music"}, want: []int64{1, 2}},
		{name: "city", filters: domain.EventFilters{City: "almaty"}, want: []int64{1, 4}},
		{name: "year in configured zone", filters: domain.EventFilters{Year: "2026"}, want: []int64{4}},
		{name: "non-digit year ignored", filters: domain.EventFilters{Year: "20x6"}, want: []int64{1, 2, 4}},
		{name: "price descending", filters: domain.EventFilters{Ordering: "-price_from"}, want: []int64{4, 1, 2}},
		{name: "unknown ordering falls back", filters: domain.EventFilters{Ordering: "title"}, want: []int64{1, 2, 4}},
		{name: "no match", filters: domain.EventFilters{Query: "opera"}, want: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := env.svc.ListPublicEvents(ctx, tt.filters, firstPage(9))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(page.Items))
			assert.Equal(t, len(tt.want), page.Total)
		})
	}
}

func TestEventService_ListPublicEvents_Pagination(t *testing.T) {
	env := newEventTestEnv()
	ctx := context.Background()

	tests := []struct {
		name       string
		params     domain.PaginationParams
		wantNumber int
		wantPages  int
		want       []int64
	}{
		{name: "first page", params: domain.PaginationParams{Page: 1, PageSize: 2}, wantNumber: 1, wantPages: 2, want: []int64{1, 2}},
		{name: "past the end clamps to last", params: domain.PaginationParams{Page: 7, PageSize: 2}, wantNumber: 2, wantPages: 2, want: []int64{4}},
		{name: "invalid page is first", params: domain.PaginationParams{Page: 0, PageSize: 2}, wantNumber: 1, wantPages: 2, want: []int64{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := env.svc.ListPublicEvents(ctx, domain.EventFilters{}, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNumber, page.Number)
			assert.Equal(t, tt.wantPages, page.Pages)
			assert.Equal(t, tt.want, ids(page.Items))
		})
	}

	t.Run("empty result has one page", func(t *testing.T) {
		page, err := env.svc.ListPublicEvents(ctx, domain.EventFilters{Query: "none"}, domain.PaginationParams{Page: 3, PageSize: 9})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Number)
		assert.Equal(t, 1, page.Pages)
		assert.Empty(t, page.Items)
		assert.NotNil(t, page.Items)
	})
}

func TestEventService_ListPublicEvents_RepoError(t *testing.T) {
	env := newEventTestEnv()
	env.events.err = errors.New("db down")

	_, err := env.svc.ListPublicEvents(context.Background(), domain.EventFilters{}, firstPage(9))
	require.Error(t, err)
	assert.Equal(t, "list events: count: db down", err.Error())
}

func TestEventService_ListOwnedEvents(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		p       domain.Principal
		want    []int64
		wantErr error
	}{
		{name: "elevated sees every status", p: staffUser, want: []int64{3, 1, 2, 4}},
		{name: "member sees own organizer", p: memberUser, want: []int64{3, 1}},
		{name: "organizer without memberships gets empty page", p: outsiderOrgUser, want: []int64{}},
		{name: "plain user has no access", p: plainUser, wantErr: domain.ErrNoAccess},
		{name: "anonymous has no access", p: domain.Anonymous{}, wantErr: domain.ErrNoAccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEventTestEnv()
			page, err := env.svc.ListOwnedEvents(ctx, tt.p, domain.EventFilters{}, firstPage(9))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(page.Items))
			assert.Equal(t, 1, page.Pages)
		})
	}

	t.Run("filters apply within scope", func(t *testing.T) {
		env := newEventTestEnv()
		page, err := env.svc.ListOwnedEvents(ctx, memberUser, domain.EventFilters{Category: "music"}, firstPage(9))
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, ids(page.Items))
	})
}

func TestEventService_GetEventDetail(t *testing.T) {
	env := newEventTestEnv()
	ctx := context.Background()
	env.reviews.reviews = []*domain.Review{{ID: 1, EventID: 1, UserID: 3, Rating: 5}}
	env.reviews.nextID = 1

	detail, err := env.svc.GetEventDetail(ctx, memberUser, "jazz-night")
	require.NoError(t, err)
	assert.True(t, detail.CanManage)
	assert.Len(t, detail.Reviews, 1)
	assert.NotNil(t, detail.Schedules)
	assert.NotNil(t, detail.Images)

	detail, err = env.svc.GetEventDetail(ctx, domain.Anonymous{}, "jazz-night")
	require.NoError(t, err)
	assert.False(t, detail.CanManage)

	_, err = env.svc.GetEventDetail(ctx, memberUser, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func validCreateInput() domain.CreateEventInput {
	return domain.CreateEventInput{
		Title:       "Jazz Night",
		StartAt:     "2025-05-01T19:00",
		EndAt:       "2025-05-01T22:00:00+05:00",
		VenueID:     10,
		OrganizerID: 1,
		PriceFrom:   "12.5",
		CategoryIDs: []int64{7},
	}
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("member creates draft with derived unique slug", func(t *testing.T) {
		env := newEventTestEnv()
		got, err := env.svc.CreateEvent(ctx, memberUser, validCreateInput())
		require.NoError(t, err)
		assert.Equal(t, "jazz-night-2", got.Slug)
		assert.Equal(t, domain.EventStatusDraft, got.Status)
		assert.Equal(t, domain.Price(1250), got.PriceFrom)
		assert.True(t, got.StartAt.Equal(time.Date(2025, 5, 1, 19, 0, 0, 0, almaty)))
		assert.True(t, got.EndAt.Equal(time.Date(2025, 5, 1, 22, 0, 0, 0, almaty)))
		assert.Equal(t, []int64{7}, env.events.categories[got.ID])
	})

	t.Run("access is checked before datetimes", func(t *testing.T) {
		env := newEventTestEnv()
		in := validCreateInput()
		in.StartAt = "not a date"
		_, err := env.svc.CreateEvent(ctx, outsiderOrgUser, in)
		require.ErrorIs(t, err, domain.ErrForbidden)

		_, err = env.svc.CreateEvent(ctx, memberUser, in)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"start_at and end_at must be ISO datetime."}, verr.Messages)
	})

	t.Run("member of another organizer is forbidden", func(t *testing.T) {
		env := newEventTestEnv()
		in := validCreateInput()
		in.OrganizerID = 2
		_, err := env.svc.CreateEvent(ctx, memberUser, in)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("validation collects every message", func(t *testing.T) {
		env := newEventTestEnv()
		in := validCreateInput()
		in.Title = "Late Show"
		in.EndAt = "2025-04-30T10:00"
		in.VenueID = 99
		in.Status = "archived"
		_, err := env.svc.CreateEvent(ctx, staffUser, in)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.ElementsMatch(t, []string{
			"end_at must not be earlier than start_at",
			"status must be one of draft, published, cancelled",
			"venue does not exist",
		}, verr.Messages)
	})

	t.Run("explicit slug must be free", func(t *testing.T) {
		env := newEventTestEnv()
		in := validCreateInput()
		in.Slug = "rock-fest"
		_, err := env.svc.CreateEvent(ctx, staffUser, in)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Messages, "slug already exists")
	})

	t.Run("unknown category stores nothing", func(t *testing.T) {
		env := newEventTestEnv()
		env.events.unknownCategories = map[int64]bool{999: true}
		in := validCreateInput()
		in.Title = "Steppe Gig"
		in.CategoryIDs = []int64{7, 999}
		in.TagIDs = []int64{3}

		_, err := env.svc.CreateEvent(ctx, staffUser, in)
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, err.Error(), "category_id does not exist")

		exists, err := env.events.SlugExists(ctx, "steppe-gig")
		require.NoError(t, err)
		assert.False(t, exists)

		// A retry with valid links gets the derived slug, not a suffixed duplicate.
		in.CategoryIDs = []int64{7}
		got, err := env.svc.CreateEvent(ctx, staffUser, in)
		require.NoError(t, err)
		assert.Equal(t, "steppe-gig", got.Slug)
		assert.Equal(t, []int64{3}, env.events.tags[got.ID])
	})

	t.Run("negative price rejected", func(t *testing.T) {
		env := newEventTestEnv()
		in := validCreateInput()
		in.PriceFrom = "-1"
		_, err := env.svc.CreateEvent(ctx, staffUser, in)
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestEventService_UpdateEvent(t *testing.T) {
	ctx := context.Background()
	title := "Jazz Night Live"
	published := "published"
	bogus := "bogus"

	t.Run("member updates title", func(t *testing.T) {
		env := newEventTestEnv()
		got, err := env.svc.UpdateEvent(ctx, memberUser, "draft-talk", domain.UpdateEventInput{Title: &title, Status: &published})
		require.NoError(t, err)
		assert.Equal(t, title, got.Title)
		assert.Equal(t, domain.EventStatusPublished, got.Status)
		assert.Equal(t, "draft-talk", got.Slug)
	})

	t.Run("other organizer forbidden", func(t *testing.T) {
		env := newEventTestEnv()
		_, err := env.svc.UpdateEvent(ctx, memberUser, "rock-fest", domain.UpdateEventInput{Title: &title})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("moving to a foreign organizer forbidden", func(t *testing.T) {
		env := newEventTestEnv()
		other := int64(2)
		_, err := env.svc.UpdateEvent(ctx, memberUser, "jazz-night", domain.UpdateEventInput{OrganizerID: &other})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		env := newEventTestEnv()
		_, err := env.svc.UpdateEvent(ctx, staffUser, "jazz-night", domain.UpdateEventInput{Status: &bogus})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("missing event", func(t *testing.T) {
		env := newEventTestEnv()
		_, err := env.svc.UpdateEvent(ctx, staffUser, "missing", domain.UpdateEventInput{Title: &title})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	env := newEventTestEnv()
	ctx := context.Background()

	require.ErrorIs(t, env.svc.DeleteEvent(ctx, plainUser, "jazz-night"), domain.ErrForbidden)
	require.NoError(t, env.svc.DeleteEvent(ctx, memberUser, "jazz-night"))

	_, err := env.svc.GetEvent(ctx, "jazz-night")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_ExportCalendar(t *testing.T) {
	env := newEventTestEnv()

	out, err := env.svc.ExportCalendar(context.Background(), "rock-fest")
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR", string(out))
	require.NotNil(t, env.cal.exported)
	assert.Equal(t, "Rock Fest", env.cal.exported.Title)
}
