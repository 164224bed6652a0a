package mqtt

import (
	"fmt"
	"sync"
	"time"

	coremqtt "github.com/kilianp07/mealmatch/core/mqtt"
	"github.com/kilianp07/mealmatch/core/model"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// MockPublisher is a simple publisher used in tests. Deliveries are recorded
// per volunteer. Volunteers listed in FailIDs fail to publish, those in
// NoAckIDs receive the order but never acknowledge it.
type MockPublisher struct {
	Deliveries map[string]model.Assignment
	FailIDs    map[string]bool
	NoAckIDs   map[string]bool
	AckResults map[string]bool
	mu         sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Deliveries: make(map[string]model.Assignment),
		FailIDs:    make(map[string]bool),
		NoAckIDs:   make(map[string]bool),
		AckResults: make(map[string]bool),
	}
}

// SendDelivery records the order or returns an error if configured to fail.
func (m *MockPublisher) SendDelivery(a model.Assignment) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[a.VolunteerID] {
		return "", fmt.Errorf("publish failed")
	}
	m.Deliveries[a.VolunteerID] = a
	orderID := fmt.Sprintf("order-%s-%s", a.BatchID, a.VolunteerID)
	m.AckResults[orderID] = !m.NoAckIDs[a.VolunteerID]
	return orderID, nil
}

// WaitForAck simulates an immediate acknowledgment based on the stored result.
// Unacknowledged orders report a timeout without waiting.
func (m *MockPublisher) WaitForAck(orderID string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	ok, exists := m.AckResults[orderID]
	m.mu.Unlock()
	if !exists {
		return false, fmt.Errorf("unknown order")
	}
	if !ok {
		return false, coremqtt.ErrAckTimeout
	}
	return true, nil
}

// Sent returns the number of recorded deliveries.
func (m *MockPublisher) Sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Deliveries)
}
