package roster

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShiftNamesMatch(t *testing.T) {
	tests := []struct {
		a    string
		b    string
		want bool
	}{
		{"Morning Shift", "Morning Shift", true},
		{"morning", "Morning Shift", true}, // 旧枚举值对当前展示名
		{"MORNING", "morning shift", true},
		{"  Evening Shift  ", "evening", true},
		{"Night Shift", "night", true},
		{"morning", "evening", false},
		{"Morning Shift", "Night Shift", false},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			require.Equal(t, tt.want, ShiftNamesMatch(tt.a, tt.b))
			require.Equal(t, tt.want, ShiftNamesMatch(tt.b, tt.a))
		})
	}
}
