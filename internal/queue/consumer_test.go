package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

// fakeAcknowledger records how a delivery was settled.
type fakeAcknowledger struct {
	acked  bool
	nacked bool
}

func (a *fakeAcknowledger) Ack(uint64, bool) error        { a.acked = true; return nil }
func (a *fakeAcknowledger) Nack(uint64, bool, bool) error { a.nacked = true; return nil }
func (a *fakeAcknowledger) Reject(uint64, bool) error     { a.nacked = true; return nil }

func TestFormatAssignedEvent(t *testing.T) {
	body, err := json.Marshal(EquipmentAssignedEvent{
		EquipmentID:  9,
		Name:         "ThinkPad X1",
		SerialNumber: "SN-9",
		CategoryName: "Laptops",
		AssignedTo:   4,
		AssignedBy:   1,
		AssignedAt:   "2026-03-01T10:00:00Z",
	})
	require.NoError(t, err)

	line, err := formatEvent(AssignedQueue, body)
	require.NoError(t, err)
	require.Contains(t, line, "ASSIGNED")
	require.Contains(t, line, "equipment=9")
	require.Contains(t, line, "serial=SN-9")
	require.Contains(t, line, "to_user=4")
	require.Contains(t, line, "2026-03-01T10:00:00Z")
}

func TestFormatDeletedEvent(t *testing.T) {
	body, err := json.Marshal(EquipmentDeletedEvent{
		EquipmentID:  9,
		Name:         "ThinkPad X1",
		SerialNumber: "SN-9",
		ImagePaths:   []string{"/uploads/products/a.jpg", "/uploads/products/b.jpg"},
		DeletedBy:    1,
		DeletedAt:    "2026-03-01T10:00:00Z",
	})
	require.NoError(t, err)

	line, err := formatEvent(DeletedQueue, body)
	require.NoError(t, err)
	require.Contains(t, line, "DELETED")
	require.Contains(t, line, "images=2")
	require.Contains(t, line, "by_user=1")
}

func TestFormatEventRejectsGarbage(t *testing.T) {
	_, err := formatEvent(AssignedQueue, []byte("not json"))
	require.Error(t, err)

	_, err = formatEvent("equipment.unknown", []byte("{}"))
	require.Error(t, err)
}

func TestHandleDeliveryAcksAndLogs(t *testing.T) {
	t.Chdir(t.TempDir())

	body, err := json.Marshal(EquipmentAssignedEvent{EquipmentID: 9, SerialNumber: "SN-9"})
	require.NoError(t, err)

	ack := &fakeAcknowledger{}
	handleDelivery(AssignedQueue, amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body})
	require.True(t, ack.acked)
	require.False(t, ack.nacked)

	logged, err := os.ReadFile(filepath.Join(auditLogDir, auditLogFile))
	require.NoError(t, err)
	require.Contains(t, string(logged), "equipment=9")
}

func TestHandleDeliveryRejectsPoisonMessage(t *testing.T) {
	t.Chdir(t.TempDir())

	ack := &fakeAcknowledger{}
	handleDelivery(AssignedQueue, amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte("not json")})
	require.False(t, ack.acked)
	require.True(t, ack.nacked)

	_, err := os.Stat(filepath.Join(auditLogDir, auditLogFile))
	require.True(t, os.IsNotExist(err))
}
