package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
		{int64(2) * 1024 * 1024 * 1024 * 1024, "2.0 TB"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatBytes(tc.in), "FormatBytes(%d)", tc.in)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "29 дней 12 часов", FormatDuration(29*24*time.Hour+12*time.Hour))
	assert.Equal(t, "5 часов 30 минут", FormatDuration(5*time.Hour+30*time.Minute))
	assert.Equal(t, "45 минут", FormatDuration(45*time.Minute))
	assert.Equal(t, "0 минут", FormatDuration(30*time.Second))
}
