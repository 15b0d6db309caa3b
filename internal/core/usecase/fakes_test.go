package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
)

func strp(s string) *string { return &s }
func i64p(n int64) *int64   { return &n }

// ---- cars ----

type fakeCarRepo struct {
	cars      map[int64]domain.Car
	updateErr error
	upsertErr error
	listErr   error
	lastPatch domain.FieldPatch
}

func newFakeCarRepo(cars ...domain.Car) *fakeCarRepo {
	r := &fakeCarRepo{cars: map[int64]domain.Car{}}
	for _, c := range cars {
		r.cars[c.ID] = c
	}
	return r
}

func (r *fakeCarRepo) sorted() []domain.Car {
	out := make([]domain.Car, 0, len(r.cars))
	for _, c := range r.cars {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeCarRepo) GetByID(_ context.Context, id int64) (*domain.Car, error) {
	c, ok := r.cars[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *fakeCarRepo) FindByLookup(_ context.Context, key domain.CarLookupKey, value interface{}) ([]domain.Car, error) {
	var out []domain.Car
	for _, c := range r.sorted() {
		switch key {
		case domain.CarLookupByVIN:
			if c.VIN != nil && *c.VIN == value.(string) {
				out = append(out, c)
			}
		case domain.CarLookupByModel:
			if c.Model != nil && strings.Contains(strings.ToLower(*c.Model), strings.ToLower(value.(string))) {
				out = append(out, c)
			}
		case domain.CarLookupByMake:
			if c.Make != nil && strings.Contains(strings.ToLower(*c.Make), strings.ToLower(value.(string))) {
				out = append(out, c)
			}
		case domain.CarLookupByYear:
			if c.Year != nil && *c.Year == value.(int64) {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (r *fakeCarRepo) ListAll(context.Context) ([]domain.Car, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.sorted(), nil
}

func (r *fakeCarRepo) UpdateFields(_ context.Context, id int64, patch domain.FieldPatch) (int, error) {
	r.lastPatch = patch
	if r.updateErr != nil {
		return 0, r.updateErr
	}
	if _, ok := r.cars[id]; !ok {
		return 0, domain.ErrNotFound
	}
	return len(patch), nil
}

func (r *fakeCarRepo) Upsert(_ context.Context, fields domain.FieldPatch) (port.UpsertResult, error) {
	r.lastPatch = fields
	if r.upsertErr != nil {
		return port.UpsertResult{}, r.upsertErr
	}
	if vin, ok := fields["vin"].(string); ok {
		for _, c := range r.cars {
			if c.VIN != nil && *c.VIN == vin {
				return port.UpsertResult{Car: c, Changed: len(fields)}, nil
			}
		}
	}
	id := int64(-1)
	for existing := range r.cars {
		if existing <= id {
			id = existing - 1
		}
	}
	c := domain.Car{ID: id}
	if vin, ok := fields["vin"].(string); ok {
		c.VIN = &vin
	}
	if lead, ok := fields["lead_id"].(int64); ok {
		c.LeadID = &lead
	}
	r.cars[id] = c
	return port.UpsertResult{Car: c, Created: true}, nil
}

func (r *fakeCarRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.cars[id]
	return ok, nil
}

// ---- pickups ----

type fakePickupRepo struct {
	pickups   map[int64]domain.Pickup
	updateErr error
	inserted  []domain.FieldPatch
}

func (r *fakePickupRepo) GetByID(_ context.Context, id int64) (*domain.Pickup, error) {
	p, ok := r.pickups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *fakePickupRepo) ListAll(context.Context) ([]domain.Pickup, error) {
	var out []domain.Pickup
	for _, p := range r.pickups {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePickupRepo) UpdateFields(_ context.Context, id int64, patch domain.FieldPatch) (int, error) {
	if r.updateErr != nil {
		return 0, r.updateErr
	}
	if _, ok := r.pickups[id]; !ok {
		return 0, domain.ErrNotFound
	}
	return len(patch), nil
}

func (r *fakePickupRepo) Insert(_ context.Context, fields domain.FieldPatch) (domain.Pickup, error) {
	r.inserted = append(r.inserted, fields)
	p := domain.Pickup{PickUpID: -int64(len(r.inserted))}
	if id, ok := fields["car_id"].(int64); ok {
		p.CarID = &id
	}
	return p, nil
}

// ---- schedules ----

type fakeScheduleRepo struct {
	buyers    map[int64]bool
	schedules []domain.Schedule
}

func (r *fakeScheduleRepo) BuyerExists(_ context.Context, id int64) (bool, error) {
	return r.buyers[id], nil
}

func (r *fakeScheduleRepo) ListByBuyer(_ context.Context, id int64) ([]domain.Schedule, error) {
	var out []domain.Schedule
	for _, s := range r.schedules {
		if s.BuyerID == id {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) Add(_ context.Context, s domain.Schedule) (domain.Schedule, bool, error) {
	for _, existing := range r.schedules {
		if existing.BuyerID == s.BuyerID && existing.ScheduleTime == s.ScheduleTime {
			return existing, true, nil
		}
	}
	s.ID = int64(len(r.schedules) + 1)
	r.schedules = append(r.schedules, s)
	return s, false, nil
}

// ---- ava ----

type fakeAva struct {
	mu        sync.Mutex
	replies   []string
	prompts   []string
	loginUser string
	loginErr  error
	sessionID string
	askErr    error
}

func (a *fakeAva) Login(_ context.Context, user, _ string) (string, error) {
	a.loginUser = user
	if a.loginErr != nil {
		return "", a.loginErr
	}
	return "tok-" + user, nil
}

func (a *fakeAva) CreateSession(_ context.Context, _, _ string) (string, error) {
	return a.sessionID, nil
}

func (a *fakeAva) Ask(_ context.Context, _ domain.AvaConversation, message string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prompts = append(a.prompts, message)
	if a.askErr != nil {
		return "", a.askErr
	}
	if len(a.replies) == 0 {
		return "", nil
	}
	r := a.replies[0]
	a.replies = a.replies[1:]
	return r, nil
}

// ---- session store ----

type memStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	logs     map[string][]domain.LogEntry
}

func newMemStore(sessions ...domain.Session) *memStore {
	s := &memStore{sessions: map[string]domain.Session{}, logs: map[string][]domain.LogEntry{}}
	for _, sess := range sessions {
		s.sessions[sess.ID] = sess
	}
	return s
}

func (s *memStore) Save(_ context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *memStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *memStore) FindByLead(_ context.Context, leadID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.LeadID == leadID {
			return &sess, nil
		}
	}
	return nil, nil
}

func (s *memStore) AppendLog(_ context.Context, id string, e domain.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	s.logs[id] = append(s.logs[id], e)
	return nil
}

func (s *memStore) Logs(_ context.Context, id string) ([]domain.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.LogEntry(nil), s.logs[id]...), nil
}

type fakeTokens struct{}

func (fakeTokens) GenerateToken(sessionID, leadID string) (string, error) {
	return "jwt:" + sessionID + ":" + leadID, nil
}

func (fakeTokens) ValidateToken(token string) (string, error) {
	return strings.TrimPrefix(token, "jwt:"), nil
}

// ---- distance / auctions ----

type fakeLocations struct {
	byState map[string][]string
}

func (l *fakeLocations) States(context.Context) ([]string, error) {
	var out []string
	for s := range l.byState {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func (l *fakeLocations) Addresses(_ context.Context, state string, limit int) ([]string, error) {
	a, ok := l.byState[state]
	if !ok {
		return nil, domain.ErrStateCSVMissing
	}
	if len(a) > limit {
		a = a[:limit]
	}
	return a, nil
}

func (l *fakeLocations) Source(state string) string { return "csv/" + state + ".csv" }

// fakeDistance расстояние в метрах по адресу назначения
type fakeDistance struct {
	mu      sync.Mutex
	meters  map[string]float64
	origins []string
}

func (d *fakeDistance) Closest(_ context.Context, origin string, dests []string) (*domain.DistanceMatch, error) {
	d.mu.Lock()
	d.origins = append(d.origins, origin)
	d.mu.Unlock()

	var best *domain.DistanceMatch
	for _, dest := range dests {
		m, ok := d.meters[dest]
		if !ok {
			continue
		}
		if best == nil || m < best.DistanceMeters {
			best = &domain.DistanceMatch{Address: dest, DistanceMeters: m, DurationText: "1 hour"}
		}
	}
	return best, nil
}

// ---- sms / events / metrics ----

type fakeSMS struct {
	to, text string
	err      error
}

func (s *fakeSMS) SendSMS(_ context.Context, to, text string) error {
	s.to, s.text = to, text
	return s.err
}

type fakePublisher struct {
	mu          sync.Mutex
	tools       []domain.ToolExecutedEvent
	escalations []domain.EscalationRequestedEvent
}

func (p *fakePublisher) PublishToolExecuted(_ context.Context, ev domain.ToolExecutedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tools = append(p.tools, ev)
	return nil
}

func (p *fakePublisher) PublishEscalationRequested(_ context.Context, ev domain.EscalationRequestedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.escalations = append(p.escalations, ev)
	return nil
}

type fakeMetrics struct {
	tools []string
	plans []string
}

func (m *fakeMetrics) ObserveTool(name string, status domain.ToolStatus, _ float64) {
	m.tools = append(m.tools, name+":"+string(status))
}
func (m *fakeMetrics) ObservePlan(action string)         { m.plans = append(m.plans, action) }
func (m *fakeMetrics) ObserveAva(string, error, float64) {}
