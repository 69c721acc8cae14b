package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"tanapark/internal/domain"
)

// SessionTTL bounds how long an in-flight checkout session survives. It
// matches the pending-payment expiry so an abandoned session and its pending
// record age out together.
const SessionTTL = 24 * time.Hour

// Key prefixes
const (
	sessionPrefix      = "checkout:session:"
	vehicleIndexPrefix = "checkout:vehicle:"
)

// SessionKind distinguishes what a confirmed payment commits.
type SessionKind string

const (
	SessionKindHourly  SessionKind = "HOURLY"
	SessionKindPackage SessionKind = "PACKAGE"
)

// CheckoutSession is the transient record for one in-flight txRef: enough to
// resume verification after the gateway redirect and to commit the hourly
// checkout without recomputing the fee.
type CheckoutSession struct {
	TxRef     string              `json:"tx_ref"`
	Kind      SessionKind         `json:"kind"`
	VehicleID string              `json:"vehicle_id,omitempty"` // empty for package sessions
	Fee       domain.FeeBreakdown `json:"fee"`
	Phone     string              `json:"phone,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// SessionStore keeps in-flight checkout sessions in Redis.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Put stores a session keyed by txRef. For hourly sessions it also replaces
// the vehicle's index entry and removes that vehicle's previous session, so a
// retry never resumes against a stale txRef.
func (s *SessionStore) Put(ctx context.Context, session *CheckoutSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	if session.VehicleID != "" {
		indexKey := vehicleIndexPrefix + session.VehicleID
		prevTxRef, err := s.client.Get(ctx, indexKey).Result()
		if err == nil && prevTxRef != "" && prevTxRef != session.TxRef {
			_ = s.client.Del(ctx, sessionPrefix+prevTxRef).Err()
		}
		if err := s.client.Set(ctx, indexKey, session.TxRef, SessionTTL).Err(); err != nil {
			return err
		}
	}

	return s.client.Set(ctx, sessionPrefix+session.TxRef, data, SessionTTL).Err()
}

// Get retrieves a session by txRef. Returns nil on a miss.
func (s *SessionStore) Get(ctx context.Context, txRef string) (*CheckoutSession, error) {
	data, err := s.client.Get(ctx, sessionPrefix+txRef).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var session CheckoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes a session once its txRef reaches a terminal outcome.
func (s *SessionStore) Delete(ctx context.Context, txRef string) error {
	session, err := s.Get(ctx, txRef)
	if err != nil {
		return err
	}

	if session != nil && session.VehicleID != "" {
		_ = s.client.Del(ctx, vehicleIndexPrefix+session.VehicleID).Err()
	}

	return s.client.Del(ctx, sessionPrefix+txRef).Err()
}
