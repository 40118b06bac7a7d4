package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/availability"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// memStore is an in-memory implementation of every store port.  WithinTx
// serializes transactions and restores the reservations on error.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	categories map[uint64]model.RoomCategory
	rooms      map[uint64][]uint64
	prices     map[uint64]map[uint64]model.ServicePrice
	clients    map[uint64]bool
	res        map[uint64]model.Reservation
	nextID     uint64

	roomCalls    int
	overlapCalls int
	fail         map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		categories: map[uint64]model.RoomCategory{
			1: {ID: 1, Name: "Deluxe", Capacity: 4, NightlyRate: money("100"), IsActive: true},
			2: {ID: 2, Name: "Suite", Capacity: 2, NightlyRate: money("250"), IsActive: true},
		},
		rooms: map[uint64][]uint64{1: {11, 10, 12}, 2: {20}},
		prices: map[uint64]map[uint64]model.ServicePrice{
			1: {
				5: {ServiceID: 5, Price: money("30")},
				6: {ServiceID: 6, Price: money("45.50")},
			},
		},
		clients: map[uint64]bool{7: true},
		res:     map[uint64]model.Reservation{},
		fail:    map[string]error{},
	}
}

func (m *memStore) failing(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fail[op]
}

func (m *memStore) GetByIDCategory(id uint64) (model.RoomCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return model.RoomCategory{}, repository.ErrNotFound
	}
	return c, nil
}

func (m *memStore) ListActiveByCategory(_ context.Context, categoryID uint64) ([]uint64, error) {
	if err := m.failing("rooms"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roomCalls++
	return append([]uint64(nil), m.rooms[categoryID]...), nil
}

func (m *memStore) GetPrices(_ context.Context, categoryID uint64, ids []uint64) ([]model.ServicePrice, error) {
	if err := m.failing("prices"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ServicePrice, 0, len(ids))
	for _, id := range ids {
		p, ok := m.prices[categoryID][id]
		if !ok {
			return nil, repository.ErrNotFound
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) ClientExists(_ context.Context, clientID uint64) (bool, error) {
	if err := m.failing("clients"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients[clientID], nil
}

func (m *memStore) FindOverlapping(_ context.Context, roomID uint64, entry, departure time.Time, exclude uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overlapCalls++
	for _, r := range m.res {
		if r.RoomID != roomID || r.ID == exclude || !r.Active || !r.Status.Holds() {
			continue
		}
		if availability.Overlaps(entry, departure, r.EntryDate, r.DepartureDate) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Create(_ context.Context, r *model.Reservation) error {
	if err := m.failing("create"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	for i := range r.Services {
		r.Services[i].ReservationID = r.ID
	}
	m.res[r.ID] = *r
	return nil
}

func (m *memStore) Update(_ context.Context, r *model.Reservation) error {
	if err := m.failing("update"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.res[r.ID]; !ok {
		return repository.ErrNotFound
	}
	m.res[r.ID] = *r
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	if err := m.failing("get"); err != nil {
		return model.Reservation{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.res[id]
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	return r, nil
}

func (m *memStore) GetAll(_ context.Context) ([]model.Reservation, error) {
	if err := m.failing("list"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for _, r := range m.res {
		if r.Active {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetByClientID(_ context.Context, clientID uint64) ([]model.ClientReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ClientReservation
	for _, r := range m.res {
		if r.ClientID == clientID {
			out = append(out, model.ClientReservation{Reservation: r, ClientName: "Ana Pérez"})
		}
	}
	return out, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.res)
}

// categoryView adapts the category map to availability.CategoryStore.  The
// method name clashes with the reservation GetByID on memStore.
type categoryView struct{ m *memStore }

func (c categoryView) GetByID(_ context.Context, id uint64) (model.RoomCategory, error) {
	if err := c.m.failing("category"); err != nil {
		return model.RoomCategory{}, err
	}
	return c.m.GetByIDCategory(id)
}

type memTx struct{ m *memStore }

func (t memTx) Rooms() availability.RoomStore   { return t.m }
func (t memTx) Reservations() ReservationStore { return t.m }

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := make(map[uint64]model.Reservation, len(m.res))
	for k, v := range m.res {
		snapshot[k] = v
	}
	m.mu.Unlock()

	if err := fn(ctx, memTx{m}); err != nil {
		m.mu.Lock()
		m.res = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

type auditEntry struct {
	level string
	op    string
	err   error
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *recordingAuditor) Failure(_ context.Context, op string, err error, _ map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{level: "error", op: op, err: err})
}

func (a *recordingAuditor) Warning(_ context.Context, op string, err error, _ map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{level: "warn", op: op, err: err})
}

var errDiskGone = errors.New("disk gone")
