package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{"INCOME", TypeIncome, false},
		{"SPENDING", TypeSpending, false},
		{"income", "", true},
		{"EXPENSE", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{"PENDING", StatusPending, false},
		{"ACCEPTED", StatusAccepted, false},
		{"REJECTED", StatusRejected, false},
		{"COMMENTED", StatusCommented, false},
		{"pending", "", true},
		{"DONE", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusAccepted.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusCommented.Terminal())
}

func TestAction_Status(t *testing.T) {
	tests := []struct {
		action Action
		want   Status
	}{
		{ActionAccept, StatusAccepted},
		{ActionReject, StatusRejected},
		{ActionComment, StatusCommented},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.action.Status())
		})
	}
}

func TestParseAction(t *testing.T) {
	for _, valid := range []string{"ACCEPT", "REJECT", "COMMENT"} {
		_, err := ParseAction(valid)
		require.NoError(t, err)
	}
	for _, invalid := range []string{"accept", "APPROVE", "", "ACCEPTED"} {
		_, err := ParseAction(invalid)
		require.Error(t, err)
	}
}
