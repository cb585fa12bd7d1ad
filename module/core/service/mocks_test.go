package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/cache"
)

type mockLocationRepo struct {
	insertFn                func(ctx context.Context, r *domain.PositionReport) (bool, error)
	updateVehicleLocationFn func(ctx context.Context, r *domain.PositionReport) error
	getLatestFn             func(ctx context.Context, vehicleID string) (*domain.PositionReport, error)
	getHistoryFn            func(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionReport, error)
	getDriverHistoryFn      func(ctx context.Context, query *domain.DriverHistoryQuery) ([]domain.PositionReport, error)
	getAllVehiclesFn        func(ctx context.Context) ([]domain.Vehicle, error)
}

func (m *mockLocationRepo) Insert(ctx context.Context, r *domain.PositionReport) (bool, error) {
	return m.insertFn(ctx, r)
}

func (m *mockLocationRepo) UpdateVehicleLocation(ctx context.Context, r *domain.PositionReport) error {
	return m.updateVehicleLocationFn(ctx, r)
}

func (m *mockLocationRepo) GetLatest(ctx context.Context, vehicleID string) (*domain.PositionReport, error) {
	return m.getLatestFn(ctx, vehicleID)
}

func (m *mockLocationRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionReport, error) {
	return m.getHistoryFn(ctx, query)
}

func (m *mockLocationRepo) GetDriverHistory(ctx context.Context, query *domain.DriverHistoryQuery) ([]domain.PositionReport, error) {
	return m.getDriverHistoryFn(ctx, query)
}

func (m *mockLocationRepo) GetAllVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return m.getAllVehiclesFn(ctx)
}

type mockZoneRepo struct {
	createFn     func(ctx context.Context, z *domain.Zone) error
	listFn       func(ctx context.Context) ([]domain.Zone, error)
	listActiveFn func(ctx context.Context) ([]domain.Zone, error)
}

func (m *mockZoneRepo) Create(ctx context.Context, z *domain.Zone) error {
	return m.createFn(ctx, z)
}

func (m *mockZoneRepo) List(ctx context.Context) ([]domain.Zone, error) {
	return m.listFn(ctx)
}

func (m *mockZoneRepo) ListActive(ctx context.Context) ([]domain.Zone, error) {
	return m.listActiveFn(ctx)
}

// mockTransitionRepo keeps inserted events so GetLatest can answer from
// them unless getLatestFn overrides it.
type mockTransitionRepo struct {
	mu          sync.Mutex
	inserted    []domain.ZoneTransitionEvent
	notified    []string
	insertErr   error
	getLatestFn func(ctx context.Context, vehicleID, zoneID string) (*domain.ZoneTransitionEvent, error)
}

func (m *mockTransitionRepo) Insert(_ context.Context, ev *domain.ZoneTransitionEvent) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, *ev)
	return nil
}

func (m *mockTransitionRepo) GetLatest(ctx context.Context, vehicleID, zoneID string) (*domain.ZoneTransitionEvent, error) {
	if m.getLatestFn != nil {
		return m.getLatestFn(ctx, vehicleID, zoneID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.inserted) - 1; i >= 0; i-- {
		ev := m.inserted[i]
		if ev.VehicleID == vehicleID && ev.ZoneID == zoneID {
			return &ev, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTransitionRepo) MarkNotified(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified = append(m.notified, id)
	return nil
}

func (m *mockTransitionRepo) notifiedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.notified...)
}

type mockShipmentRepo struct {
	getFn               func(ctx context.Context, id string) (*domain.Shipment, error)
	recordCrossingFn    func(ctx context.Context, exit, entry *domain.StateCrossingEvent) (bool, error)
	listEnteredStatesFn func(ctx context.Context, shipmentID string) ([]string, error)
}

func (m *mockShipmentRepo) Get(ctx context.Context, id string) (*domain.Shipment, error) {
	return m.getFn(ctx, id)
}

func (m *mockShipmentRepo) RecordCrossing(ctx context.Context, exit, entry *domain.StateCrossingEvent) (bool, error) {
	return m.recordCrossingFn(ctx, exit, entry)
}

func (m *mockShipmentRepo) ListEnteredStates(ctx context.Context, shipmentID string) ([]string, error) {
	return m.listEnteredStatesFn(ctx, shipmentID)
}

type mockMileageRepo struct {
	openFn         func(ctx context.Context, rec *domain.StateMileageRecord) error
	closeFn        func(ctx context.Context, shipmentID, stateCode string, exitTime time.Time) (bool, error)
	addMilesFn     func(ctx context.Context, rec *domain.StateMileageRecord) error
	addFuelFn      func(ctx context.Context, shipmentID, stateCode string, gallons float64, toll decimal.Decimal) error
	currentStateFn func(ctx context.Context, shipmentID string) (string, error)
	iftaReportFn   func(ctx context.Context, query *domain.IFTAQuery) ([]domain.IFTARow, error)
}

func (m *mockMileageRepo) Open(ctx context.Context, rec *domain.StateMileageRecord) error {
	return m.openFn(ctx, rec)
}

func (m *mockMileageRepo) Close(ctx context.Context, shipmentID, stateCode string, exitTime time.Time) (bool, error) {
	return m.closeFn(ctx, shipmentID, stateCode, exitTime)
}

func (m *mockMileageRepo) AddMiles(ctx context.Context, rec *domain.StateMileageRecord) error {
	return m.addMilesFn(ctx, rec)
}

func (m *mockMileageRepo) AddFuel(ctx context.Context, shipmentID, stateCode string, gallons float64, toll decimal.Decimal) error {
	return m.addFuelFn(ctx, shipmentID, stateCode, gallons, toll)
}

func (m *mockMileageRepo) CurrentState(ctx context.Context, shipmentID string) (string, error) {
	return m.currentStateFn(ctx, shipmentID)
}

func (m *mockMileageRepo) IFTAReport(ctx context.Context, query *domain.IFTAQuery) ([]domain.IFTARow, error) {
	return m.iftaReportFn(ctx, query)
}

type mockComplianceEventRepo struct {
	inserted []domain.ComplianceEvent
	err      error
}

func (m *mockComplianceEventRepo) Insert(_ context.Context, ev *domain.ComplianceEvent) error {
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.inserted {
		if existing.ID == ev.ID {
			return nil
		}
	}
	m.inserted = append(m.inserted, *ev)
	return nil
}

func (m *mockComplianceEventRepo) ListByShipment(_ context.Context, shipmentID string) ([]domain.ComplianceEvent, error) {
	var out []domain.ComplianceEvent
	for _, ev := range m.inserted {
		if ev.ShipmentID == shipmentID {
			out = append(out, ev)
		}
	}
	return out, nil
}

// memStateStore is an in-memory vehicle zone state.
type memStateStore struct {
	mu       sync.Mutex
	vehicles map[string]*cache.VehicleZoneState
	loadErr  error
	setErr   error
	setCalls int
}

func newMemStateStore() *memStateStore {
	return &memStateStore{vehicles: map[string]*cache.VehicleZoneState{}}
}

func (m *memStateStore) vehicle(id string) *cache.VehicleZoneState {
	v, ok := m.vehicles[id]
	if !ok {
		v = &cache.VehicleZoneState{Inside: map[string]bool{}}
		m.vehicles[id] = v
	}
	return v
}

func (m *memStateStore) Load(_ context.Context, vehicleID string) (*cache.VehicleZoneState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	v := m.vehicle(vehicleID)
	out := &cache.VehicleZoneState{EvaluatedAt: v.EvaluatedAt, Inside: make(map[string]bool, len(v.Inside))}
	for k, in := range v.Inside {
		out.Inside[k] = in
	}
	return out, nil
}

func (m *memStateStore) SetZone(_ context.Context, vehicleID, zoneID string, inside bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.vehicle(vehicleID).Inside[zoneID] = inside
	return nil
}

func (m *memStateStore) MarkEvaluated(_ context.Context, vehicleID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.vehicle(vehicleID).EvaluatedAt = at
	return nil
}

// mockLocker is a real per-vehicle mutex so concurrent tests observe the
// same serialization the redis lock gives.
type mockLocker struct {
	mu       sync.Mutex
	vehicles map[string]*sync.Mutex
	err      error
	locked   []string
	released int
}

func (m *mockLocker) Lock(_ context.Context, vehicleID string) (func(context.Context) error, error) {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return nil, m.err
	}
	if m.vehicles == nil {
		m.vehicles = map[string]*sync.Mutex{}
	}
	vm, ok := m.vehicles[vehicleID]
	if !ok {
		vm = &sync.Mutex{}
		m.vehicles[vehicleID] = vm
	}
	m.locked = append(m.locked, vehicleID)
	m.mu.Unlock()

	vm.Lock()
	return func(context.Context) error {
		vm.Unlock()
		m.mu.Lock()
		m.released++
		m.mu.Unlock()
		return nil
	}, nil
}

type mockCrossingHandler struct {
	currentStateFn func(ctx context.Context, shipmentID string) (string, error)
	err            error
	calls          []*domain.CrossingInput
}

func (m *mockCrossingHandler) CurrentState(ctx context.Context, shipmentID string) (string, error) {
	return m.currentStateFn(ctx, shipmentID)
}

func (m *mockCrossingHandler) HandleStateCrossing(_ context.Context, in *domain.CrossingInput) ([]domain.ComplianceCheckItem, error) {
	m.calls = append(m.calls, in)
	return nil, m.err
}

type recordingBroadcaster struct {
	transitions []domain.ZoneTransitionEvent
	crossings   []domain.CrossingAlert
}

func (r *recordingBroadcaster) BroadcastTransition(ev domain.ZoneTransitionEvent) {
	r.transitions = append(r.transitions, ev)
}

func (r *recordingBroadcaster) BroadcastCrossing(alert domain.CrossingAlert) {
	r.crossings = append(r.crossings, alert)
}

type mockPublisher struct {
	mu          sync.Mutex
	confirmed   bool
	err         error
	keys        [][]string
	transitions []domain.ZoneTransitionEvent
	crossings   []domain.CrossingAlert
}

func (m *mockPublisher) PublishTransition(_ context.Context, routingKeys []string, ev *domain.ZoneTransitionEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, routingKeys)
	m.transitions = append(m.transitions, *ev)
	return m.confirmed, m.err
}

func (m *mockPublisher) PublishCrossing(_ context.Context, routingKeys []string, alert *domain.CrossingAlert) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, routingKeys)
	m.crossings = append(m.crossings, *alert)
	return m.confirmed, m.err
}
