package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voicetime/pkg/utils"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		want    string
	}{
		{"zero", 0, "00h00m00s"},
		{"seconds only", 42, "00h00m42s"},
		{"minutes and seconds", 330, "00h05m30s"},
		{"one hour thirty five", 5700, "01h35m00s"},
		{"hours not wrapped at 24", 90000, "25h00m00s"},
		{"negative balance", -90, "-00h01m30s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, utils.FormatDuration(tt.seconds))
		})
	}
}

func TestParseDuration(t *testing.T) {
	t.Run("hours and minutes", func(t *testing.T) {
		seconds, err := utils.ParseDuration("1h30m")
		require.NoError(t, err)
		require.Equal(t, int64(5400), seconds)
	})

	t.Run("seconds only", func(t *testing.T) {
		seconds, err := utils.ParseDuration("90s")
		require.NoError(t, err)
		require.Equal(t, int64(90), seconds)
	})

	t.Run("case insensitive with spaces", func(t *testing.T) {
		seconds, err := utils.ParseDuration("2H 15M")
		require.NoError(t, err)
		require.Equal(t, int64(8100), seconds)
	})

	t.Run("junk between tokens ignored", func(t *testing.T) {
		seconds, err := utils.ParseDuration("about 1h and 5m or so")
		require.NoError(t, err)
		require.Equal(t, int64(3900), seconds)
	})

	t.Run("no tokens", func(t *testing.T) {
		_, err := utils.ParseDuration("abc")
		require.ErrorIs(t, err, utils.ErrParse)
	})

	t.Run("zero total rejected", func(t *testing.T) {
		_, err := utils.ParseDuration("0m")
		require.ErrorIs(t, err, utils.ErrParse)
	})

	t.Run("empty string", func(t *testing.T) {
		_, err := utils.ParseDuration("")
		require.ErrorIs(t, err, utils.ErrParse)
	})
}
