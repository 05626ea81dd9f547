package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/NasaVasa/reservewatch/internal/domain"
)

type fakeTriggerRepo struct {
	mu            sync.Mutex
	triggers      map[string]domain.ReserveTrigger
	mutations     int
	setEnabledErr error
}

func newFakeTriggerRepo(triggers ...domain.ReserveTrigger) *fakeTriggerRepo {
	repo := &fakeTriggerRepo{triggers: make(map[string]domain.ReserveTrigger)}
	for _, trigger := range triggers {
		repo.triggers[trigger.ID] = trigger
	}
	return repo
}

func (r *fakeTriggerRepo) Create(ctx context.Context, trigger *domain.ReserveTrigger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations++
	r.triggers[trigger.ID] = *trigger
	return nil
}

func (r *fakeTriggerRepo) Get(ctx context.Context, id string) (*domain.ReserveTrigger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	trigger, ok := r.triggers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &trigger, nil
}

func (r *fakeTriggerRepo) List(ctx context.Context) ([]domain.ReserveTrigger, error) {
	return r.list(false), nil
}

func (r *fakeTriggerRepo) ListEnabled(ctx context.Context) ([]domain.ReserveTrigger, error) {
	return r.list(true), nil
}

func (r *fakeTriggerRepo) list(onlyEnabled bool) []domain.ReserveTrigger {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ReserveTrigger, 0, len(r.triggers))
	for _, trigger := range r.triggers {
		if onlyEnabled && !trigger.IsEnabled {
			continue
		}
		out = append(out, trigger)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeTriggerRepo) Update(ctx context.Context, trigger *domain.ReserveTrigger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.triggers[trigger.ID]; !ok {
		return domain.ErrNotFound
	}
	r.mutations++
	r.triggers[trigger.ID] = *trigger
	return nil
}

func (r *fakeTriggerRepo) SetEnabled(ctx context.Context, id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setEnabledErr != nil {
		return r.setEnabledErr
	}
	trigger, ok := r.triggers[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.mutations++
	trigger.IsEnabled = enabled
	r.triggers[id] = trigger
	return nil
}

func (r *fakeTriggerRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.triggers[id]; !ok {
		return domain.ErrNotFound
	}
	r.mutations++
	delete(r.triggers, id)
	return nil
}

type fakeReserveRepo struct {
	mu        sync.Mutex
	reserves  map[string]domain.ReserveSnapshot
	mutations int
	saveErr   error
}

func newFakeReserveRepo(snapshots ...domain.ReserveSnapshot) *fakeReserveRepo {
	repo := &fakeReserveRepo{reserves: make(map[string]domain.ReserveSnapshot)}
	for _, snapshot := range snapshots {
		repo.reserves[snapshot.Currency] = snapshot
	}
	return repo
}

func (r *fakeReserveRepo) List(ctx context.Context) ([]domain.ReserveSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ReserveSnapshot, 0, len(r.reserves))
	for _, snapshot := range r.reserves {
		out = append(out, snapshot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

func (r *fakeReserveRepo) Save(ctx context.Context, snapshots []domain.ReserveSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mutations++
	for _, snapshot := range snapshots {
		r.reserves[snapshot.Currency] = snapshot
	}
	return nil
}

func (r *fakeReserveRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations++
	r.reserves = make(map[string]domain.ReserveSnapshot)
	return nil
}

type fakeFetcher struct {
	results []domain.Reserves
	err     error
	calls   int
}

func (f *fakeFetcher) FetchReserves(ctx context.Context) (domain.Reserves, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return domain.Reserves{}, nil
	}
	next := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return next, nil
}

type sentNotification struct {
	tag, title, body string
}

type fakeNotifier struct {
	mu       sync.Mutex
	disabled bool
	err      error
	sent     []sentNotification
}

func (n *fakeNotifier) Enabled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return !n.disabled
}

func (n *fakeNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.disabled = !enabled
}

func (n *fakeNotifier) Notify(ctx context.Context, tag, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{tag: tag, title: title, body: body})
	return n.err
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]domain.Order
	updateErr error
	updates   int
}

func newFakeOrderRepo(orders ...domain.Order) *fakeOrderRepo {
	repo := &fakeOrderRepo{orders: make(map[string]domain.Order)}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (r *fakeOrderRepo) Upsert(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) Get(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &order, nil
}

func (r *fakeOrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.orders[order.ID]; !ok {
		return domain.ErrNotFound
	}
	r.updates++
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

type fakeExchange struct {
	orders map[string]*domain.Order
	errs   map[string]error
	calls  int
}

func (e *fakeExchange) FetchReserves(ctx context.Context) (domain.Reserves, error) {
	return domain.Reserves{}, nil
}

func (e *fakeExchange) GetOrder(ctx context.Context, id, token string) (*domain.Order, error) {
	e.calls++
	if err, ok := e.errs[id]; ok {
		return nil, err
	}
	order, ok := e.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}
