package admission

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantMatched int
		wantAdmit   bool
	}{
		{
			name:        "all four markers",
			text:        "Wipe Record\nDevice: /dev/sda\nWipe Method: nwipe dodshort\nStatus: SUCCESS",
			wantMatched: 4,
			wantAdmit:   true,
		},
		{
			name:        "three of four admitted",
			text:        "Wipe Record for Device /dev/sdb using Wipe Method zero-fill",
			wantMatched: 3,
			wantAdmit:   true,
		},
		{
			name:        "single marker rejected",
			text:        "Device inventory listing",
			wantMatched: 1,
			wantAdmit:   false,
		},
		{
			name:        "two markers rejected",
			text:        "Device: /dev/sdc Status: unknown",
			wantMatched: 2,
			wantAdmit:   false,
		},
		{
			name:        "case insensitive",
			text:        strings.ToUpper("wipe record device wipe method status"),
			wantMatched: 4,
			wantAdmit:   true,
		},
		{
			name:        "empty text rejected",
			text:        "",
			wantMatched: 0,
			wantAdmit:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Check(tt.text)
			assert.Equal(t, tt.wantMatched, res.Matched)
			assert.Equal(t, tt.wantAdmit, res.Admitted)
		})
	}
}
