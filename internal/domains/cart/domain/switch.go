package domain

import "time"

// SwitchRequest is a pending cross-bakery add waiting for the user's answer.
// It is a value the store holds while awaiting confirmation; the candidate is
// only applied on confirm and discarded on cancel.
type SwitchRequest struct {
	Candidate    CartItem  `json:"candidate"`
	FromBakeryID string    `json:"fromBakeryId"`
	ToBakeryID   string    `json:"toBakeryId"`
	RequestedAt  time.Time `json:"requestedAt"`
}
