package models

// BatterySlot is one dock position as reported by a vendor. Never persisted.
type BatterySlot struct {
	SlotID          int    `json:"slotId"`
	BatteryID       string `json:"batteryId"`
	CapacityPercent int    `json:"capacityPercent"`
	LockStatus      int    `json:"lockStatus"`
	BatteryAbnormal bool   `json:"batteryAbnormal"`
	CableAbnormal   bool   `json:"cableAbnormal"`
	ContactAbnormal bool   `json:"contactAbnormal"`
}
