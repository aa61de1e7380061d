package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"eventhub/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository that evaluates composed queries with Match.
type fakeEventRepo struct {
	listings   []*domain.EventListing
	schedules  map[int64][]*domain.EventSchedule
	nextID     int64
	categories map[int64][]int64
	tags       map[int64][]int64
	lastQuery  domain.EventQuery
	err        error // returned by Count and List when set
	createErr  error
	// unknownCategories makes Create reject matching category ids like a foreign key would.
	unknownCategories map[int64]bool
}

func newFakeEventRepo(listings ...*domain.EventListing) *fakeEventRepo {
	f := &fakeEventRepo{
		schedules:  make(map[int64][]*domain.EventSchedule),
		categories: make(map[int64][]int64),
		tags:       make(map[int64][]int64),
		nextID:     1,
	}
	for _, l := range listings {
		f.listings = append(f.listings, l)
		if l.ID >= f.nextID {
			f.nextID = l.ID + 1
		}
	}
	return f
}

func (f *fakeEventRepo) matching(q domain.EventQuery) []*domain.EventListing {
	var out []*domain.EventListing
	for _, l := range f.listings {
		if q.Match(l) {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, q.Order.Compare)
	return out
}

func (f *fakeEventRepo) Count(_ context.Context, q domain.EventQuery) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.lastQuery = q
	return len(f.matching(q)), nil
}

func (f *fakeEventRepo) List(_ context.Context, q domain.EventQuery, limit, offset int) ([]*domain.EventListing, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastQuery = q
	out := f.matching(q)
	if offset >= len(out) {
		return []*domain.EventListing{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEventRepo) GetBySlug(_ context.Context, slug string) (*domain.EventListing, error) {
	for _, l := range f.listings {
		if l.Slug == slug {
			cp := *l
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, l := range f.listings {
		if l.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEventRepo) Create(_ context.Context, e *domain.Event, categoryIDs, tagIDs []int64) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, id := range categoryIDs {
		if f.unknownCategories[id] {
			return domain.NewValidationError("category_id does not exist")
		}
	}
	e.ID = f.nextID
	f.nextID++
	f.listings = append(f.listings, &domain.EventListing{Event: *e, Categories: []*domain.Category{}, Tags: []*domain.Tag{}})
	if len(categoryIDs) > 0 {
		f.categories[e.ID] = categoryIDs
	}
	if len(tagIDs) > 0 {
		f.tags[e.ID] = tagIDs
	}
	return nil
}

func (f *fakeEventRepo) Update(_ context.Context, e *domain.Event) error {
	for _, l := range f.listings {
		if l.ID == e.ID {
			l.Event = *e
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeEventRepo) Delete(_ context.Context, id int64) error {
	for i, l := range f.listings {
		if l.ID == id {
			f.listings = append(f.listings[:i], f.listings[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeEventRepo) ListSchedules(_ context.Context, eventID int64) ([]*domain.EventSchedule, error) {
	return f.schedules[eventID], nil
}

func (f *fakeEventRepo) ListImages(_ context.Context, _ int64) ([]*domain.EventImage, error) {
	return nil, nil
}

type membershipKey struct{ user, org int64 }

// fakeMemberships is an in-memory MembershipRepository for tests.
type fakeMemberships map[membershipKey]bool

func (f fakeMemberships) Exists(_ context.Context, userID, organizerID int64) (bool, error) {
	return f[membershipKey{userID, organizerID}], nil
}

func (f fakeMemberships) OrganizerIDsForUser(_ context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	for k := range f {
		if k.user == userID {
			ids = append(ids, k.org)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// fakeVenueRepo is an in-memory VenueRepository for tests.
type fakeVenueRepo struct {
	venues []*domain.VenueView
	nextID int64
	delErr error
}

func newFakeVenueRepo(venues ...*domain.VenueView) *fakeVenueRepo {
	f := &fakeVenueRepo{venues: venues, nextID: 100}
	return f
}

func (f *fakeVenueRepo) Count(context.Context) (int, error) { return len(f.venues), nil }

func (f *fakeVenueRepo) List(_ context.Context, limit, offset int) ([]*domain.VenueView, error) {
	out := slices.Clone(f.venues)
	slices.SortFunc(out, func(a, b *domain.VenueView) int { return strings.Compare(a.Name, b.Name) })
	if offset >= len(out) {
		return []*domain.VenueView{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeVenueRepo) GetByID(_ context.Context, id int64) (*domain.VenueView, error) {
	for _, v := range f.venues {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeVenueRepo) GetBySlug(_ context.Context, slug string) (*domain.VenueView, error) {
	for _, v := range f.venues {
		if v.Slug == slug {
			cp := *v
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeVenueRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, v := range f.venues {
		if v.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVenueRepo) Create(_ context.Context, v *domain.Venue) error {
	v.ID = f.nextID
	f.nextID++
	f.venues = append(f.venues, &domain.VenueView{Venue: *v})
	return nil
}

func (f *fakeVenueRepo) Update(_ context.Context, v *domain.Venue) error {
	for _, cur := range f.venues {
		if cur.ID == v.ID {
			cur.Venue = *v
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeVenueRepo) Delete(_ context.Context, id int64) error {
	if f.delErr != nil {
		return f.delErr
	}
	for i, v := range f.venues {
		if v.ID == id {
			f.venues = append(f.venues[:i], f.venues[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeCityRepo is an in-memory CityRepository for tests.
type fakeCityRepo map[string]*domain.City

func (f fakeCityRepo) GetBySlug(_ context.Context, slug string) (*domain.City, error) {
	if c, ok := f[slug]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

// fakeOrganizerRepo is an in-memory OrganizerRepository for tests.
type fakeOrganizerRepo struct {
	orgs []*domain.Organizer
}

func (f *fakeOrganizerRepo) Count(context.Context) (int, error) { return len(f.orgs), nil }

func (f *fakeOrganizerRepo) List(_ context.Context, limit, offset int) ([]*domain.Organizer, error) {
	if offset >= len(f.orgs) {
		return []*domain.Organizer{}, nil
	}
	out := f.orgs[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeOrganizerRepo) GetByID(_ context.Context, id int64) (*domain.Organizer, error) {
	for _, o := range f.orgs {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeOrganizerRepo) GetBySlug(_ context.Context, slug string) (*domain.Organizer, error) {
	for _, o := range f.orgs {
		if o.Slug == slug {
			return o, nil
		}
	}
	return nil, domain.ErrNotFound
}

// fakeCategoryRepo is an in-memory CategoryRepository for tests.
type fakeCategoryRepo struct {
	cats   []*domain.Category
	nextID int64
}

func (f *fakeCategoryRepo) Count(context.Context) (int, error) { return len(f.cats), nil }

func (f *fakeCategoryRepo) List(_ context.Context, limit, offset int) ([]*domain.Category, error) {
	if offset >= len(f.cats) {
		return []*domain.Category{}, nil
	}
	out := f.cats[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCategoryRepo) GetBySlug(_ context.Context, slug string) (*domain.Category, error) {
	for _, c := range f.cats {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCategoryRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	_, err := f.GetBySlug(context.Background(), slug)
	return err == nil, nil
}

func (f *fakeCategoryRepo) Create(_ context.Context, c *domain.Category) error {
	f.nextID++
	c.ID = f.nextID
	f.cats = append(f.cats, c)
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, c *domain.Category) error {
	for i, cur := range f.cats {
		if cur.ID == c.ID {
			f.cats[i] = c
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id int64) error {
	for i, c := range f.cats {
		if c.ID == id {
			f.cats = append(f.cats[:i], f.cats[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeTagRepo is an in-memory TagRepository for tests.
type fakeTagRepo struct{ tags []*domain.Tag }

func (f *fakeTagRepo) Count(context.Context) (int, error) { return len(f.tags), nil }

func (f *fakeTagRepo) List(_ context.Context, limit, offset int) ([]*domain.Tag, error) {
	if offset >= len(f.tags) {
		return []*domain.Tag{}, nil
	}
	out := f.tags[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// fakeReviewRepo is an in-memory ReviewRepository for tests.
type fakeReviewRepo struct {
	reviews []*domain.Review
	nextID  int64
}

func (f *fakeReviewRepo) Create(_ context.Context, r *domain.Review) error {
	for _, cur := range f.reviews {
		if cur.EventID == r.EventID && cur.UserID == r.UserID {
			return domain.ErrAlreadyExists
		}
	}
	f.nextID++
	r.ID = f.nextID
	f.reviews = append(f.reviews, r)
	return nil
}

func (f *fakeReviewRepo) GetView(_ context.Context, id int64) (*domain.ReviewView, error) {
	for _, r := range f.reviews {
		if r.ID == id {
			return &domain.ReviewView{ID: r.ID, EventID: r.EventID, UserID: r.UserID, Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeReviewRepo) ListLatest(_ context.Context, _ string, limit int) ([]*domain.ReviewView, error) {
	out := []*domain.ReviewView{}
	for i := len(f.reviews) - 1; i >= 0 && len(out) < limit; i-- {
		v, _ := f.GetView(context.Background(), f.reviews[i].ID)
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeReviewRepo) ListByEvent(_ context.Context, eventID int64) ([]*domain.ReviewView, error) {
	var out []*domain.ReviewView
	for _, r := range f.reviews {
		if r.EventID == eventID {
			v, _ := f.GetView(context.Background(), r.ID)
			out = append(out, v)
		}
	}
	return out, nil
}

// fakeFavoriteRepo is an in-memory FavoriteRepository keeping insertion order.
type fakeFavoriteRepo struct {
	rows []domain.Favorite
}

func (f *fakeFavoriteRepo) Add(_ context.Context, userID, eventID int64) (bool, error) {
	for _, r := range f.rows {
		if r.UserID == userID && r.EventID == eventID {
			return false, nil
		}
	}
	f.rows = append(f.rows, domain.Favorite{UserID: userID, EventID: eventID})
	return true, nil
}

func (f *fakeFavoriteRepo) Remove(_ context.Context, userID, eventID int64) error {
	for i, r := range f.rows {
		if r.UserID == userID && r.EventID == eventID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeFavoriteRepo) ListEventIDs(_ context.Context, userID int64) ([]int64, error) {
	var ids []int64
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			ids = append(ids, f.rows[i].EventID)
		}
	}
	return ids, nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	users    map[int64]*domain.User
	profiles map[int64]*domain.UserProfile
	nextID   int64
	getErr   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[int64]*domain.User),
		profiles: make(map[int64]*domain.UserProfile),
		nextID:   1,
	}
}

func (f *fakeUserRepo) add(u *domain.User) *domain.User {
	if u.ID == 0 {
		u.ID = f.nextID
	}
	if u.ID >= f.nextID {
		f.nextID = u.ID + 1
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, cur := range f.users {
		if cur.Username == u.Username {
			return domain.ErrAlreadyExists
		}
	}
	f.add(u)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) EmailTaken(_ context.Context, email string, excludeID int64) (bool, error) {
	for _, u := range f.users {
		if u.ID != excludeID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Activate(_ context.Context, id int64) error {
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsActive = true
	return nil
}

func (f *fakeUserRepo) GetProfile(_ context.Context, userID int64) (*domain.UserProfile, error) {
	if p, ok := f.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) UpsertProfile(_ context.Context, p *domain.UserProfile) error {
	cp := *p
	if cur, ok := f.profiles[p.UserID]; ok {
		cp.Role = cur.Role
	}
	f.profiles[p.UserID] = &cp
	return nil
}

// fakeAttemptStore is an in-memory AttemptStore recording TTLs.
type fakeAttemptStore struct {
	counts  map[string]int
	lastTTL time.Duration
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{counts: make(map[string]int)}
}

func (f *fakeAttemptStore) Get(_ context.Context, key string) (int, error) {
	return f.counts[key], nil
}

func (f *fakeAttemptStore) Incr(_ context.Context, key string, ttl time.Duration) (int, error) {
	f.counts[key]++
	f.lastTTL = ttl
	return f.counts[key], nil
}

func (f *fakeAttemptStore) Reset(_ context.Context, key string) error {
	delete(f.counts, key)
	return nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct{}

func (fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + salt + "-" + password, nil
}

func (fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+salt+"-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokens issues "<purpose>-<id>" tokens and verifies them back.
type fakeTokens struct {
	issued []domain.TokenPurpose
}

func (f *fakeTokens) Issue(userID int64, purpose domain.TokenPurpose, _ time.Duration) (string, error) {
	f.issued = append(f.issued, purpose)
	return fmt.Sprintf("%s-%d", purpose, userID), nil
}

func (f *fakeTokens) Verify(token string, purpose domain.TokenPurpose) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(strings.TrimPrefix(token, string(purpose)+"-"), "%d", &id); err != nil || !strings.HasPrefix(token, string(purpose)+"-") {
		return 0, domain.ErrInvalidToken
	}
	return id, nil
}

// fakeEmailService records verification emails.
type fakeEmailService struct {
	sent []*domain.VerifyEmailData
	err  error
}

func (f *fakeEmailService) SendVerifyEmail(_ context.Context, data *domain.VerifyEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}
