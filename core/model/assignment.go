package model

// Assignment records that a volunteer carries Quantity units of a batch to a
// recipient. It is never mutated once produced.
type Assignment struct {
	BatchID     string `json:"batch_id"`
	VolunteerID string `json:"volunteer_id"`
	RecipientID string `json:"recipient_id"`
	Quantity    int    `json:"quantity"`
}
