package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// VideoInfo is what the pipeline needs to know about the first video stream.
type VideoInfo struct {
	Width     int
	Height    int
	FrameRate float64
	HDR       bool
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	Width         int             `json:"width"`
	Height        int             `json:"height"`
	AvgFrameRate  string          `json:"avg_frame_rate"`
	ColorTransfer string          `json:"color_transfer"`
	ColorSpace    string          `json:"color_space"`
	MasterDisplay json.RawMessage `json:"master_display"`
}

// ProbeVideo runs ffprobe on url and describes its first video stream.
func ProbeVideo(ctx context.Context, url string) (VideoInfo, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,avg_frame_rate,color_transfer,color_space,master_display",
		"-of", "json",
		url,
	}
	output, err := exec.CommandContext(ctx, "ffprobe", args...).Output()
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe error: %w", err)
	}
	return parseProbe(output)
}

func parseProbe(output []byte) (VideoInfo, error) {
	var data probeOutput
	if err := json.Unmarshal(output, &data); err != nil {
		return VideoInfo{}, fmt.Errorf("error parsing ffprobe output: %w", err)
	}
	if len(data.Streams) == 0 {
		return VideoInfo{}, fmt.Errorf("no video streams found")
	}
	s := data.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return VideoInfo{}, fmt.Errorf("invalid dimensions %dx%d", s.Width, s.Height)
	}
	rate, err := ParseFrameRate(s.AvgFrameRate)
	if err != nil {
		return VideoInfo{}, err
	}
	return VideoInfo{
		Width:     s.Width,
		Height:    s.Height,
		FrameRate: rate,
		HDR:       s.isHDR(),
	}, nil
}

// isHDR checks the common PQ/HLG transfer, BT.2020 and mastering display markers.
func (s probeStream) isHDR() bool {
	transfer := strings.ToLower(s.ColorTransfer)
	if strings.Contains(transfer, "smpte2084") || strings.Contains(transfer, "arib-std-b67") {
		return true
	}
	if strings.Contains(strings.ToLower(s.ColorSpace), "bt2020") {
		return true
	}
	return len(s.MasterDisplay) > 0
}

// ParseFrameRate parses ffprobe rates such as "24000/1001" or "25".
func ParseFrameRate(rate string) (float64, error) {
	num, den, ok := strings.Cut(rate, "/")
	if !ok {
		v, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid framerate: %w", err)
		}
		return v, nil
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0, fmt.Errorf("invalid framerate format %q", rate)
	}
	return n / d, nil
}

// ParseTimestamp converts "SS[.fff]" or "HH:MM:SS[.fff]" to seconds.
func ParseTimestamp(ts string) (float64, error) {
	if seconds, err := strconv.ParseFloat(ts, 64); err == nil {
		return seconds, nil
	}
	parts := strings.Split(ts, ":")
	if len(parts) == 3 {
		h, errH := strconv.ParseFloat(parts[0], 64)
		m, errM := strconv.ParseFloat(parts[1], 64)
		s, errS := strconv.ParseFloat(parts[2], 64)
		if errH == nil && errM == nil && errS == nil {
			return h*3600 + m*60 + s, nil
		}
	}
	return 0, fmt.Errorf("invalid time format: %s", ts)
}
