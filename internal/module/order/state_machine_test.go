package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateMachine_NextState(t *testing.T) {
	sm := NewStateMachine()

	tests := []struct {
		name    string
		from    Status
		event   Event
		want    Status
		applies bool
	}{
		{"pending captured", StatusPending, EventPaymentCaptured, StatusPaid, true},
		{"pending failed", StatusPending, EventPaymentFailed, StatusPaymentFailed, true},
		{"pending still pending", StatusPending, EventPaymentPending, StatusPending, false},
		{"paid captured replay", StatusPaid, EventPaymentCaptured, StatusPaid, false},
		{"paid complete", StatusPaid, EventAdminComplete, StatusComplete, true},
		{"processing complete", StatusProcessing, EventAdminComplete, StatusComplete, true},
		{"pending complete", StatusPending, EventAdminComplete, StatusPending, false},
		{"failed captured", StatusPaymentFailed, EventPaymentCaptured, StatusPaymentFailed, false},
		{"complete captured", StatusComplete, EventPaymentCaptured, StatusComplete, false},
		{"cancelled captured", StatusCancelled, EventPaymentCaptured, StatusCancelled, false},
		{"complete complete", StatusComplete, EventAdminComplete, StatusComplete, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := sm.NextState(tt.from, tt.event)
			assert.Equal(t, tt.applies, ok)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestStateMachine_Transition(t *testing.T) {
	sm := NewStateMachine()

	o := &Order{Status: StatusPending}
	assert.NoError(t, sm.Transition(o, EventPaymentCaptured))
	assert.Equal(t, StatusPaid, o.Status)

	err := sm.Transition(o, EventPaymentCaptured)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusPaid, o.Status)
}

func TestStateMachine_CanComplete(t *testing.T) {
	sm := NewStateMachine()

	assert.True(t, sm.CanComplete(StatusPaid))
	assert.True(t, sm.CanComplete(StatusProcessing))
	assert.False(t, sm.CanComplete(StatusPending))
	assert.False(t, sm.CanComplete(StatusPaymentFailed))
	assert.False(t, sm.CanComplete(StatusComplete))
	assert.False(t, sm.CanComplete(StatusCancelled))
}

func TestValidOverrideStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPaid, StatusProcessing, StatusComplete} {
		assert.True(t, ValidOverrideStatus(s), string(s))
	}
	for _, s := range []Status{StatusPaymentFailed, StatusCancelled, Status("shipped"), Status("")} {
		assert.False(t, ValidOverrideStatus(s), string(s))
	}
}
