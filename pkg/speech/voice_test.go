package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoiceFor(t *testing.T) {
	pool := []string{"ava", "ben", "chloe"}

	tests := []struct {
		name      string
		index     int
		pool      []string
		allowlist []string
		rotate    bool
		want      string
	}{
		{"empty pool falls back to engine default", 0, nil, nil, true, ""},
		{"rotation disabled always first voice", 5, pool, nil, false, "ava"},
		{"round robin index 0", 0, pool, nil, true, "ava"},
		{"round robin wraps at pool length", 3, pool, nil, true, "ava"},
		{"round robin index 4", 4, pool, nil, true, "ben"},
		{"allowlist restricts pool", 0, pool, []string{"chloe"}, true, "chloe"},
		{"allowlist rotation", 1, pool, []string{"ava", "chloe"}, true, "chloe"},
		{"empty restriction uses full pool", 1, pool, []string{"nobody"}, true, "ben"},
		{"negative index clamps to zero", -2, pool, nil, true, "ava"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VoiceFor(tt.index, tt.pool, tt.allowlist, tt.rotate))
		})
	}
}
