package tests

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tanapark/internal/domain"
	"tanapark/internal/gateway"
	internalRedis "tanapark/internal/redis"
	"tanapark/internal/repository"
)

// ──────────────────────────────────────────────
// FAKE CLOCK
// ──────────────────────────────────────────────

// FakeClock is a controllable clock for deterministic fee and timestamp tests.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewFakeClock creates a clock frozen at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{t: t}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is a mock implementation of VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.ParkedVehicle

	// Counters for verification
	CreateCallCount   int32
	CheckoutCallCount int32
	CheckoutApplied   int32

	// Error injection
	CreateError   error
	CheckoutError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string]*domain.ParkedVehicle),
	}
}

// AddVehicle seeds a vehicle into the mock repository.
func (m *MockVehicleRepository) AddVehicle(vehicle *domain.ParkedVehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.ParkedVehicle) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *vehicle
	m.vehicles[vehicle.ID] = &copy
	return nil
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.ParkedVehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *vehicle
	return &copy, nil
}

func (m *MockVehicleRepository) GetByPaymentReference(ctx context.Context, txRef string) (*domain.ParkedVehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.vehicles {
		if v.PaymentReference == txRef {
			copy := *v
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockVehicleRepository) ListByStatus(ctx context.Context, status domain.VehicleStatus) ([]*domain.ParkedVehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.ParkedVehicle
	for _, v := range m.vehicles {
		if v.Status == status {
			copy := *v
			result = append(result, &copy)
		}
	}
	return result, nil
}

// Checkout mirrors the conditional UPDATE: it only applies while the vehicle
// is still PARKED, and reports whether a row changed.
func (m *MockVehicleRepository) Checkout(ctx context.Context, id string, update repository.CheckoutUpdate) (bool, error) {
	atomic.AddInt32(&m.CheckoutCallCount, 1)
	if m.CheckoutError != nil {
		return false, m.CheckoutError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok || vehicle.Status != domain.VehicleStatusParked {
		return false, nil
	}
	vehicle.Status = domain.VehicleStatusCheckedOut
	vehicle.CheckedOutAt = update.CheckedOutAt
	vehicle.PaymentMethod = update.PaymentMethod
	vehicle.BaseAmount = update.BaseAmount
	vehicle.VATAmount = update.VATAmount
	vehicle.TotalPaidAmount = update.TotalPaidAmount
	vehicle.PaymentReference = update.PaymentReference
	vehicle.IsFlagged = false
	vehicle.FlaggedAt = time.Time{}
	vehicle.FlaggedBy = ""
	vehicle.NotificationSent = false
	atomic.AddInt32(&m.CheckoutApplied, 1)
	return true, nil
}

func (m *MockVehicleRepository) UpdateFlag(ctx context.Context, id string, update repository.FlagUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	vehicle.IsFlagged = update.Flagged
	vehicle.FlaggedAt = update.FlaggedAt
	vehicle.FlaggedBy = update.FlaggedBy
	vehicle.NotificationSent = update.NotificationSent
	return nil
}

// GetVehicle returns the stored vehicle for test assertions.
func (m *MockVehicleRepository) GetVehicle(id string) *domain.ParkedVehicle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vehicles[id]
}

// CountVehicles returns how many vehicles exist.
func (m *MockVehicleRepository) CountVehicles() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vehicles)
}

// ──────────────────────────────────────────────
// MOCK PENDING PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPendingPaymentRepository is a mock implementation of PendingPaymentRepository.
type MockPendingPaymentRepository struct {
	mu      sync.RWMutex
	pending map[string]*domain.PendingPackagePayment

	ConsumeCallCount int32
	CreateError      error
}

// NewMockPendingPaymentRepository creates a new mock pending payment repository.
func NewMockPendingPaymentRepository() *MockPendingPaymentRepository {
	return &MockPendingPaymentRepository{
		pending: make(map[string]*domain.PendingPackagePayment),
	}
}

func (m *MockPendingPaymentRepository) Create(ctx context.Context, p *domain.PendingPackagePayment) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *p
	m.pending[p.TxRef] = &copy
	return nil
}

func (m *MockPendingPaymentRepository) GetByTxRef(ctx context.Context, txRef string) (*domain.PendingPackagePayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pending[txRef]
	if !ok {
		return nil, nil
	}
	copy := *p
	return &copy, nil
}

func (m *MockPendingPaymentRepository) Consume(ctx context.Context, txRef string) (bool, error) {
	atomic.AddInt32(&m.ConsumeCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pending[txRef]; !ok {
		return false, nil
	}
	delete(m.pending, txRef)
	return true, nil
}

func (m *MockPendingPaymentRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for txRef, p := range m.pending {
		if !p.ExpiresAt.After(cutoff) {
			delete(m.pending, txRef)
			removed++
		}
	}
	return removed, nil
}

// CountPending returns how many pending payments exist.
func (m *MockPendingPaymentRepository) CountPending() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pending)
}

// HasPending reports whether a pending payment exists for txRef.
func (m *MockPendingPaymentRepository) HasPending(txRef string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.pending[txRef]
	return ok
}

// ──────────────────────────────────────────────
// MOCK PRICING REPOSITORY
// ──────────────────────────────────────────────

// MockPricingRepository is a mock implementation of PricingRepository.
type MockPricingRepository struct {
	mu  sync.RWMutex
	cfg *domain.PricingConfiguration

	GetError error
}

// NewMockPricingRepository creates a mock pricing repository seeded with cfg.
func NewMockPricingRepository(cfg *domain.PricingConfiguration) *MockPricingRepository {
	return &MockPricingRepository{cfg: cfg}
}

func (m *MockPricingRepository) Get(ctx context.Context) (*domain.PricingConfiguration, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg, nil
}

func (m *MockPricingRepository) Save(ctx context.Context, cfg *domain.PricingConfiguration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
	return nil
}

// ──────────────────────────────────────────────
// MOCK VALET REPOSITORY
// ──────────────────────────────────────────────

// MockValetRepository is a mock implementation of ValetRepository.
type MockValetRepository struct {
	mu     sync.RWMutex
	valets map[string]*domain.Valet
}

// NewMockValetRepository creates a new mock valet repository.
func NewMockValetRepository() *MockValetRepository {
	return &MockValetRepository{valets: make(map[string]*domain.Valet)}
}

// AddValet seeds a valet into the mock repository.
func (m *MockValetRepository) AddValet(valet *domain.Valet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valets[valet.ID] = valet
}

func (m *MockValetRepository) Create(ctx context.Context, valet *domain.Valet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valets[valet.ID] = valet
	return nil
}

func (m *MockValetRepository) GetByID(ctx context.Context, id string) (*domain.Valet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	valet, ok := m.valets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *valet
	return &copy, nil
}

func (m *MockValetRepository) GetAll(ctx context.Context) ([]*domain.Valet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Valet, 0, len(m.valets))
	for _, v := range m.valets {
		copy := *v
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK GATEWAY
// ──────────────────────────────────────────────

// MockGateway is a scriptable implementation of the payment gateway client.
// Verify responses are consumed from VerifyScript in order; the last entry
// repeats once the script runs out, and an empty script means every call
// reports success.
type MockGateway struct {
	mu sync.Mutex

	Key             string
	InitializeError error

	InitializedRefs []string
	VerifyCallCount int32

	VerifyScript []VerifyStep
}

// VerifyStep is one scripted Verify outcome.
type VerifyStep struct {
	Status domain.PaymentStatus
	Err    error
}

// NewMockGateway creates a new mock gateway with a sandbox key.
func NewMockGateway() *MockGateway {
	return &MockGateway{Key: "CHAPUBK_TEST-mock"}
}

func (g *MockGateway) Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.Session, error) {
	if g.InitializeError != nil {
		return nil, g.InitializeError
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.InitializedRefs = append(g.InitializedRefs, req.TxRef)
	return &gateway.Session{
		TxRef:       req.TxRef,
		PublicKey:   g.Key,
		CheckoutURL: fmt.Sprintf("https://checkout.example/%s", req.TxRef),
	}, nil
}

func (g *MockGateway) Verify(ctx context.Context, txRef string) (*gateway.VerifyResult, error) {
	call := atomic.AddInt32(&g.VerifyCallCount, 1)

	g.mu.Lock()
	script := g.VerifyScript
	g.mu.Unlock()

	if len(script) == 0 {
		return &gateway.VerifyResult{TxRef: txRef, Status: domain.PaymentStatusSuccessful}, nil
	}

	idx := int(call) - 1
	if idx >= len(script) {
		idx = len(script) - 1
	}
	step := script[idx]
	if step.Err != nil {
		return nil, step.Err
	}
	return &gateway.VerifyResult{TxRef: txRef, Status: step.Status}, nil
}

func (g *MockGateway) PublicKey() string {
	return g.Key
}

// ──────────────────────────────────────────────
// MOCK SMS SENDER
// ──────────────────────────────────────────────

// SentMessage is one recorded SMS.
type SentMessage struct {
	Phone   string
	Message string
}

// MockSMSSender records dispatched messages.
type MockSMSSender struct {
	mu       sync.Mutex
	Messages []SentMessage

	SendError error
}

// NewMockSMSSender creates a new mock SMS sender.
func NewMockSMSSender() *MockSMSSender {
	return &MockSMSSender{}
}

func (m *MockSMSSender) Send(ctx context.Context, phone, message string) error {
	if m.SendError != nil {
		return m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, SentMessage{Phone: phone, Message: message})
	return nil
}

// CountMessages returns how many messages were recorded.
func (m *MockSMSSender) CountMessages() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}

// ──────────────────────────────────────────────
// MOCK SESSION STORE
// ──────────────────────────────────────────────

// MockSessionStore is an in-memory implementation of the checkout session
// store with the same replace-prior-session semantics as the Redis one.
type MockSessionStore struct {
	mu           sync.RWMutex
	sessions     map[string]*internalRedis.CheckoutSession
	vehicleIndex map[string]string
}

// NewMockSessionStore creates a new mock session store.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		sessions:     make(map[string]*internalRedis.CheckoutSession),
		vehicleIndex: make(map[string]string),
	}
}

func (m *MockSessionStore) Put(ctx context.Context, session *internalRedis.CheckoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session.VehicleID != "" {
		if prev, ok := m.vehicleIndex[session.VehicleID]; ok && prev != session.TxRef {
			delete(m.sessions, prev)
		}
		m.vehicleIndex[session.VehicleID] = session.TxRef
	}
	copy := *session
	m.sessions[session.TxRef] = &copy
	return nil
}

func (m *MockSessionStore) Get(ctx context.Context, txRef string) (*internalRedis.CheckoutSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[txRef]
	if !ok {
		return nil, nil
	}
	copy := *session
	return &copy, nil
}

func (m *MockSessionStore) Delete(ctx context.Context, txRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[txRef]; ok && session.VehicleID != "" {
		delete(m.vehicleIndex, session.VehicleID)
	}
	delete(m.sessions, txRef)
	return nil
}

// HasSession reports whether a session exists for txRef.
func (m *MockSessionStore) HasSession(txRef string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[txRef]
	return ok
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore implements SetNX-style locking in memory.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireTxRefLock(ctx context.Context, txRef string, ttl time.Duration) (bool, error) {
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[txRef] {
		return false, nil
	}
	m.locks[txRef] = true
	return true, nil
}

func (m *MockLockStore) ReleaseTxRefLock(ctx context.Context, txRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, txRef)
	return nil
}

// Hold pre-acquires a lock so tests can simulate a concurrent committer.
func (m *MockLockStore) Hold(txRef string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[txRef] = true
}
