package webhook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }
func intPtr(i int) *int              { return &i }
func strPtr(s string) *string        { return &s }

func TestDeliveryStatus(t *testing.T) {
	now := time.Now().UTC()

	t.Run("pending by default", func(t *testing.T) {
		d := Delivery{}
		assert.Equal(t, Pending, d.Status())
	})

	t.Run("delivered", func(t *testing.T) {
		d := Delivery{DeliveredAt: timePtr(now)}
		assert.Equal(t, Delivered, d.Status())
	})

	t.Run("failed", func(t *testing.T) {
		d := Delivery{FailedAt: timePtr(now)}
		assert.Equal(t, Failed, d.Status())
	})
}

func TestDueForRetry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("pending with past retry is due", func(t *testing.T) {
		d := Delivery{NextRetryAt: timePtr(now.Add(-time.Minute))}
		assert.True(t, d.DueForRetry(now))
	})

	t.Run("pending with future retry is not due", func(t *testing.T) {
		d := Delivery{NextRetryAt: timePtr(now.Add(time.Minute))}
		assert.False(t, d.DueForRetry(now))
	})

	t.Run("terminal deliveries are never due", func(t *testing.T) {
		d := Delivery{DeliveredAt: timePtr(now), NextRetryAt: timePtr(now.Add(-time.Minute))}
		assert.False(t, d.DueForRetry(now))
	})
}

func TestApplyOutcome(t *testing.T) {
	now := time.Now().UTC()

	t.Run("success outcome sets delivered and clears retry", func(t *testing.T) {
		d := Delivery{ID: "del_1", AttemptNumber: 2, NextRetryAt: timePtr(now.Add(time.Minute))}

		err := d.ApplyOutcome(Outcome{
			ResponseStatus: intPtr(200),
			ResponseBody:   strPtr("ok"),
			DeliveredAt:    timePtr(now),
		}, now)

		require.NoError(t, err)
		assert.Equal(t, Delivered, d.Status())
		assert.Equal(t, 200, d.ResponseStatus)
		assert.Nil(t, d.NextRetryAt)
		assert.Nil(t, d.FailedAt)
	})

	t.Run("terminal failure sets failed and clears retry", func(t *testing.T) {
		d := Delivery{ID: "del_1", NextRetryAt: timePtr(now.Add(time.Minute))}

		err := d.ApplyOutcome(Outcome{
			Error:    strPtr("connection refused"),
			FailedAt: timePtr(now),
		}, now)

		require.NoError(t, err)
		assert.Equal(t, Failed, d.Status())
		assert.Equal(t, "connection refused", d.Error)
		assert.Nil(t, d.NextRetryAt)
		assert.Nil(t, d.DeliveredAt)
	})

	t.Run("scheduled retry keeps the delivery pending", func(t *testing.T) {
		d := Delivery{ID: "del_1"}
		nextRetry := now.Add(30 * time.Second)

		err := d.ApplyOutcome(Outcome{
			ResponseStatus: intPtr(503),
			Error:          strPtr("unexpected response status 503"),
			NextRetryAt:    timePtr(nextRetry),
		}, now)

		require.NoError(t, err)
		assert.Equal(t, Pending, d.Status())
		require.NotNil(t, d.NextRetryAt)
		assert.True(t, d.NextRetryAt.Equal(nextRetry))
	})

	t.Run("terminal states are exclusive", func(t *testing.T) {
		delivered := Delivery{ID: "del_1", DeliveredAt: timePtr(now)}
		err := delivered.ApplyOutcome(Outcome{FailedAt: timePtr(now)}, now)
		require.Error(t, err)
		assert.Nil(t, delivered.FailedAt)

		failed := Delivery{ID: "del_2", FailedAt: timePtr(now)}
		err = failed.ApplyOutcome(Outcome{DeliveredAt: timePtr(now)}, now)
		require.Error(t, err)
		assert.Nil(t, failed.DeliveredAt)

		fresh := Delivery{ID: "del_3"}
		err = fresh.ApplyOutcome(Outcome{DeliveredAt: timePtr(now), FailedAt: timePtr(now)}, now)
		require.Error(t, err)
	})

	t.Run("identity and payload are untouched", func(t *testing.T) {
		d := Delivery{
			ID:         "del_1",
			EventID:    "evt_1",
			EndpointID: "ep_1",
			EventType:  "project.created",
			Payload:    []byte(`{"id":"evt_1"}`),
		}

		require.NoError(t, d.ApplyOutcome(Outcome{DeliveredAt: timePtr(now)}, now))
		assert.Equal(t, "evt_1", d.EventID)
		assert.Equal(t, "ep_1", d.EndpointID)
		assert.Equal(t, []byte(`{"id":"evt_1"}`), d.Payload)
	})
}

func TestResetForRetry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("failed delivery resets and bumps attempt", func(t *testing.T) {
		d := Delivery{
			ID:            "del_1",
			AttemptNumber: 5,
			Error:         "unexpected response status 500",
			FailedAt:      timePtr(now.Add(-time.Hour)),
		}

		require.NoError(t, d.ResetForRetry(now))
		assert.Equal(t, Pending, d.Status())
		assert.Equal(t, 6, d.AttemptNumber)
		assert.Empty(t, d.Error)
		assert.Nil(t, d.FailedAt)
		assert.Nil(t, d.NextRetryAt)
	})

	t.Run("delivered delivery is rejected", func(t *testing.T) {
		d := Delivery{ID: "del_1", AttemptNumber: 1, DeliveredAt: timePtr(now)}

		err := d.ResetForRetry(now)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Equal(t, 1, d.AttemptNumber)
	})

	t.Run("pending delivery is rejected", func(t *testing.T) {
		d := Delivery{ID: "del_1", AttemptNumber: 1}

		err := d.ResetForRetry(now)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})
}
