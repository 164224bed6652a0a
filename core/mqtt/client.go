package mqtt

import (
	"time"

	"github.com/kilianp07/mealmatch/core/model"
)

// Client forwards delivery orders to volunteers and waits for their
// acknowledgment.
type Client interface {
	// SendDelivery sends the assignment to its volunteer and returns the order
	// identifier used to track the acknowledgment.
	SendDelivery(a model.Assignment) (orderID string, err error)

	// WaitForAck waits for an acknowledgment for the provided order
	// identifier or until the timeout expires.
	WaitForAck(orderID string, timeout time.Duration) (bool, error)
}
