// Package events defines the allocation related events emitted on the event bus.
//
// Available event types:
//   - BatchEvent: a batch entered an allocation run
//   - AssignmentEvent: units were assigned to a recipient through a volunteer
//   - PendingEvent: a run ended with units left over
//   - AckEvent: volunteer acknowledgment result for a delivery order
package events
