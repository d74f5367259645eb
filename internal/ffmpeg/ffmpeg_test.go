package ffmpeg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbe(t *testing.T) {
	info, err := parseProbe([]byte(`{"streams":[{"width":1920,"height":1080,"avg_frame_rate":"24000/1001","color_transfer":"bt709","color_space":"bt709"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.InDelta(t, 23.976, info.FrameRate, 0.001)
	assert.False(t, info.HDR)
}

func TestParseProbe_HDR(t *testing.T) {
	tests := map[string]string{
		"pq":             `{"streams":[{"width":8,"height":8,"avg_frame_rate":"25","color_transfer":"smpte2084"}]}`,
		"hlg":            `{"streams":[{"width":8,"height":8,"avg_frame_rate":"25","color_transfer":"arib-std-b67"}]}`,
		"bt2020":         `{"streams":[{"width":8,"height":8,"avg_frame_rate":"25","color_space":"BT2020nc"}]}`,
		"master display": `{"streams":[{"width":8,"height":8,"avg_frame_rate":"25","master_display":"G(13250,34500)"}]}`,
	}
	for name, out := range tests {
		t.Run(name, func(t *testing.T) {
			info, err := parseProbe([]byte(out))
			require.NoError(t, err)
			assert.True(t, info.HDR)
		})
	}
}

func TestParseProbe_Errors(t *testing.T) {
	for name, out := range map[string]string{
		"not json":   `nope`,
		"no streams": `{"streams":[]}`,
		"no size":    `{"streams":[{"avg_frame_rate":"25"}]}`,
		"bad rate":   `{"streams":[{"width":8,"height":8,"avg_frame_rate":"25/0"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseProbe([]byte(out))
			assert.Error(t, err)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	for in, want := range map[string]float64{
		"12.5":        12.5,
		"00:05:10":    310,
		"01:00:00.25": 3600.25,
	} {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}
	_, err := ParseTimestamp("5:10")
	assert.Error(t, err)
}

func TestFrameArgs(t *testing.T) {
	args := frameArgs(FrameOptions{
		URL:                "in.mkv",
		SampleEveryNFrames: 5,
		TimeRange:          &TimeRange{Start: "00:00:10", End: "00:00:40"},
	})
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-ss 00:00:10")
	assert.Contains(t, joined, "-t 30.000")
	assert.Contains(t, joined, `select=not(mod(n\,5))`)
	assert.Equal(t, "pipe:1", args[len(args)-1])
	assert.Less(t, strings.Index(joined, "-ss"), strings.Index(joined, "-i in.mkv"))
}

func TestRawArgs(t *testing.T) {
	args := rawArgs(Options{URL: "in.mp4", Width: 320, Height: 180, FPS: 2})
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-s 320x180")
	assert.Contains(t, joined, "-r 2")
	assert.NotContains(t, joined, "-b:v")
	assert.Contains(t, joined, "-f rawvideo -pix_fmt rgb24 pipe:1")
}
