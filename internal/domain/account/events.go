package account

import "time"

const EventPartnerStatusChanged = "partner.status_changed"

type PartnerStatusChangedEvent struct {
	PartnerID  string        `json:"partner_id"`
	From       PartnerStatus `json:"from"`
	To         PartnerStatus `json:"to"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func (PartnerStatusChangedEvent) EventName() string { return EventPartnerStatusChanged }
func (e PartnerStatusChangedEvent) AggregateID() string { return e.PartnerID }
