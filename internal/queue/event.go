// Package queue defines message payloads exchanged over the message broker.
package queue

// EquipmentAssignedEvent is published when an equipment update assigns
// (or reassigns) an item to a user. It carries enough information for
// downstream consumers to notify the assignee or feed an audit trail
// without querying the primary database.
type EquipmentAssignedEvent struct {
	EquipmentID  uint64 `json:"equipment_id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
	CategoryName string `json:"category_name"`
	AssignedTo   uint64 `json:"assigned_to"`
	AssignedBy   uint64 `json:"assigned_by"`
	AssignedAt   string `json:"assigned_at"`
}

// EquipmentDeletedEvent is published after an equipment delete cascade
// completes, so consumers can reconcile caches or external inventories.
type EquipmentDeletedEvent struct {
	EquipmentID  uint64   `json:"equipment_id"`
	Name         string   `json:"name"`
	SerialNumber string   `json:"serial_number"`
	ImagePaths   []string `json:"image_paths"`
	DeletedBy    uint64   `json:"deleted_by"`
	DeletedAt    string   `json:"deleted_at"`
}
