package video

import (
	"bufio"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plexquant/internal/config"
	"plexquant/internal/ffmpeg"
	"plexquant/internal/imageproc"
)

func TestChunkFrames(t *testing.T) {
	// 2x1 frames are 6 bytes; 5 whole frames plus a partial one.
	buf := make([]byte, 5*6+4)
	for i := range buf {
		buf[i] = byte(i)
	}
	chunks := ChunkFrames(buf, 2, 1, 2)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 2)
	assert.Len(t, chunks[1], 2)
	assert.Len(t, chunks[2], 1)
	assert.Equal(t, Frame{24, 25, 26, 27, 28, 29}, chunks[2][0])

	assert.Nil(t, ChunkFrames(buf, 0, 1, 2))
	assert.Nil(t, ChunkFrames(buf, 2, 1, 0))
	assert.Empty(t, ChunkFrames(buf[:5], 2, 1, 2))
}

func TestAverageColor(t *testing.T) {
	avg, brightness := averageColor([]byte{0, 100, 255, 255, 100, 255})
	assert.Equal(t, [3]uint8{127, 100, 255}, avg)
	assert.InDelta(t, (0+100+255+255+100+255)/(2*3*255.0), brightness, 1e-9)

	avg, brightness = averageColor(nil)
	assert.Zero(t, avg)
	assert.Zero(t, brightness)
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func pngStream(t *testing.T, prefix []byte, imgs ...image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(prefix)
	for _, img := range imgs {
		require.NoError(t, png.Encode(&buf, img))
	}
	return buf.Bytes()
}

func TestReadPNGFrame(t *testing.T) {
	stream := pngStream(t, []byte("ffmpeg noise"),
		solid(3, 2, color.RGBA{R: 10, A: 255}),
		solid(3, 2, color.RGBA{G: 20, A: 255}),
	)
	r := bufio.NewReader(bytes.NewReader(stream))

	first, err := readPNGFrame(r)
	require.NoError(t, err)
	second, err := readPNGFrame(r)
	require.NoError(t, err)
	_, err = readPNGFrame(r)
	assert.ErrorIs(t, err, io.EOF)

	dst := make([]byte, 3*2*3)
	require.Equal(t, len(dst), toRGB24(first, dst))
	assert.Equal(t, []byte{10, 0, 0}, dst[:3])
	toRGB24(second, dst)
	assert.Equal(t, []byte{0, 20, 0}, dst[15:])
}

func TestToRGB24_Truncates(t *testing.T) {
	dst := make([]byte, 4)
	assert.Equal(t, 3, toRGB24(solid(2, 2, color.RGBA{R: 1, G: 2, B: 3, A: 255}), dst))
	assert.Equal(t, []byte{1, 2, 3, 0}, dst)
}

func newTestProcessor(t *testing.T) *FrameProcessor {
	t.Helper()
	cfg := config.Default()
	cfg.Clustering.Clusters = 2
	cfg.Sampling.PixelsPerFrame = 32
	fp := NewFrameProcessor("clip.mkv", t.TempDir(), nil, 5, imageproc.NewAnalyzer(cfg, nil, nil), nil)
	fp.info = ffmpeg.VideoInfo{Width: 4, Height: 4, FrameRate: 25}
	return fp
}

func TestFrameProcessor_Consume(t *testing.T) {
	fp := newTestProcessor(t)
	colors := []color.RGBA{
		{R: 200, A: 255},
		{G: 200, A: 255},
		{B: 200, A: 255},
		{R: 50, G: 50, B: 50, A: 255},
	}
	imgs := make([]image.Image, len(colors))
	for i, c := range colors {
		imgs[i] = solid(4, 4, c)
	}

	n, err := fp.consume(context.Background(), bytes.NewReader(pngStream(t, nil, imgs...)))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	rep := fp.Report()
	require.Len(t, rep.Frames, 4)
	for i, fr := range rep.Frames {
		assert.Equal(t, i*5, fr.FrameNumber)
		assert.InDelta(t, float64(i*5)/25, fr.Timestamp, 1e-9)
		c := colors[i]
		assert.Equal(t, [3]uint8{c.R, c.G, c.B}, fr.AvgColor)
		assert.Equal(t, [3]int{int(c.R), int(c.G), int(c.B)}, fr.Colors[0])
	}
}

func TestFrameProcessor_ConsumeCanceled(t *testing.T) {
	fp := newTestProcessor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fp.consume(ctx, bytes.NewReader(pngStream(t, nil, solid(4, 4, color.RGBA{A: 255}))))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReportRoundTrip(t *testing.T) {
	rep := Report{
		RunID:     "abc",
		Video:     "clip.mkv",
		Width:     4,
		Height:    4,
		FrameRate: 25,
		Frames: []FrameResult{{
			FrameNumber: 5,
			Timestamp:   0.2,
			AvgColor:    [3]uint8{1, 2, 3},
			FrameAnalysis: imageproc.FrameAnalysis{
				Colors:      [][3]int{{1, 2, 3}},
				Proportions: []float64{1},
				Hues:        []float64{105},
				Saturations: []float64{127},
				Epochs:      2,
				Converged:   true,
			},
		}},
	}

	for _, compress := range []bool{false, true} {
		var buf bytes.Buffer
		require.NoError(t, WriteReport(&buf, rep, compress))
		got, err := ReadReport(&buf, compress)
		require.NoError(t, err)
		if diff := cmp.Diff(rep, got); diff != "" {
			t.Errorf("compress=%v: report mismatch (-want +got):\n%s", compress, diff)
		}
	}
}

func TestWriteReportFile(t *testing.T) {
	fp := newTestProcessor(t)
	fp.Compress = true
	path, err := fp.writeReport()
	require.NoError(t, err)
	assert.Contains(t, path, "analysis_results.json.zst")
}
