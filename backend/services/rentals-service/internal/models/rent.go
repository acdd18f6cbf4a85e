package models

import "time"

// Status is the lifecycle state of a rental.
type Status string

const (
	StatusRenting    Status = "renting"
	StatusRented     Status = "rented"
	StatusPaid       Status = "paid"
	StatusInProgress Status = "in_progress"
	StatusCancelled  Status = "cancelled"
)

// Rent is one power-bank rental. Records are created in renting state elsewhere and only
// change status through the rent service.
type Rent struct {
	ID             string     `json:"rentId"`
	Status         Status     `json:"status"`
	StartStationID string     `json:"startStationId"`
	EndStationID   *string    `json:"endStationId,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	UsageDuration  *int       `json:"usageDuration,omitempty"`
	TotalPayment   *int64     `json:"totalPayment,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Revision       int64      `json:"revision"`
}
