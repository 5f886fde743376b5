package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	e := New(BillCreated, "g1", "b1", 1234)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, BillCreated, e.Type)
	assert.Equal(t, "g1", e.GroupID)
	assert.Equal(t, "b1", e.EntityID)
	assert.True(t, decimal.RequireFromString("12.34").Equal(e.Amount))
	assert.False(t, e.OccurredAt.IsZero())
	assert.NotEqual(t, e.ID, New(BillCreated, "g1", "b1", 1234).ID)
}

func TestMessage(t *testing.T) {
	e := New(PaymentRecorded, "group-7", "p1", 500)
	msg, err := message(e)
	require.NoError(t, err)

	assert.Equal(t, []byte("group-7"), msg.Key)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "type", msg.Headers[0].Key)
	assert.Equal(t, []byte("payment.recorded"), msg.Headers[0].Value)
	assert.Equal(t, e.OccurredAt, msg.Time)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "payment.recorded", decoded["type"])
	assert.Equal(t, "group-7", decoded["group_id"])
	assert.Equal(t, "p1", decoded["entity_id"])
	assert.Equal(t, "5", decoded["amount"])
}

func TestRecorder(t *testing.T) {
	var r Recorder
	ctx := context.Background()
	require.NoError(t, r.Publish(ctx, New(BillCreated, "g", "b1", 1)))
	require.NoError(t, r.Publish(ctx, New(BillDeleted, "g", "b1", 1)))

	got := r.Events()
	require.Len(t, got, 2)
	assert.Equal(t, BillCreated, got[0].Type)
	assert.Equal(t, BillDeleted, got[1].Type)

	// the returned slice is a copy
	got[0].Type = PaymentDeleted
	assert.Equal(t, BillCreated, r.Events()[0].Type)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), New(BillCreated, "g", "b", 1)))
	assert.NoError(t, p.Close())
}
