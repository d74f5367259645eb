// Package video extracts frames from a video and analyzes their palettes.
package video

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"plexquant/internal/ffmpeg"
	"plexquant/internal/imageproc"
	"plexquant/internal/logging"
)

// maxReadErrors is how many consecutive undecodable frames end a run.
const maxReadErrors = 5

// FrameResult stores analysis results for a processed frame.
type FrameResult struct {
	FrameNumber int      `json:"frame_number"`
	Timestamp   float64  `json:"timestamp"`
	AvgColor    [3]uint8 `json:"avg_color"`
	Brightness  float64  `json:"brightness"`
	imageproc.FrameAnalysis
}

// Report is the results file written at the end of a run.
type Report struct {
	RunID     string        `json:"run_id"`
	Video     string        `json:"video"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	FrameRate float64       `json:"frame_rate"`
	HDR       bool          `json:"hdr"`
	Frames    []FrameResult `json:"frames"`
}

// FrameBuffer is a reusable RGB24 frame buffer.
type FrameBuffer struct {
	data []byte
}

// FrameBufferPool bounds the number of frames in flight.
type FrameBufferPool struct {
	pool chan *FrameBuffer
}

// NewFrameBufferPool creates poolSize buffers of bufferSize bytes.
func NewFrameBufferPool(bufferSize, poolSize int) *FrameBufferPool {
	pool := make(chan *FrameBuffer, poolSize)
	for i := 0; i < poolSize; i++ {
		pool <- &FrameBuffer{data: make([]byte, bufferSize)}
	}
	return &FrameBufferPool{pool: pool}
}

// Get blocks until a buffer is free.
func (p *FrameBufferPool) Get() *FrameBuffer {
	return <-p.pool
}

// Put returns a buffer to the pool.
func (p *FrameBufferPool) Put(buffer *FrameBuffer) {
	p.pool <- buffer
}

// FrameProcessor runs the ffmpeg -> PNG -> palette pipeline for one video.
type FrameProcessor struct {
	VideoURL           string
	OutputDir          string
	TimeRange          *ffmpeg.TimeRange
	SampleEveryNFrames int
	// InFlight bounds concurrently analyzed frames.
	InFlight int
	// Seed derives each frame's random source.
	Seed uint64
	// Compress writes the report as zstd.
	Compress bool
	// DebugEvery saves every Nth processed frame as PNG; 0 disables.
	DebugEvery int

	Analyzer *imageproc.Analyzer
	Logger   *logging.Logger

	runID        string
	info         ffmpeg.VideoInfo
	results      []FrameResult
	resultsMutex sync.Mutex
}

// NewFrameProcessor creates a processor with a fresh run id.
func NewFrameProcessor(videoURL, outputDir string, timeRange *ffmpeg.TimeRange, sampleEveryNFrames int, analyzer *imageproc.Analyzer, logger *logging.Logger) *FrameProcessor {
	if logger == nil {
		logger = logging.Noop()
	}
	runID := uuid.NewString()
	return &FrameProcessor{
		VideoURL:           videoURL,
		OutputDir:          outputDir,
		TimeRange:          timeRange,
		SampleEveryNFrames: max(1, sampleEveryNFrames),
		InFlight:           3,
		Analyzer:           analyzer,
		Logger:             logger.WithRun(runID),
		runID:              runID,
	}
}

// RunID identifies this processor's run in logs and the report.
func (fp *FrameProcessor) RunID() string {
	return fp.runID
}

// ProcessFrames extracts every Nth frame, analyzes it and writes the report.
func (fp *FrameProcessor) ProcessFrames(ctx context.Context) error {
	if !strings.Contains(fp.VideoURL, "://") {
		if _, err := os.Stat(fp.VideoURL); err != nil {
			return fmt.Errorf("cannot access video file '%s': %w", fp.VideoURL, err)
		}
	}
	if err := os.MkdirAll(fp.OutputDir, 0o755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	startTime := time.Now()

	info, err := ffmpeg.ProbeVideo(ctx, fp.VideoURL)
	if err != nil {
		return fmt.Errorf("error getting video info: %w", err)
	}
	fp.info = info
	fp.Logger.InfoContext(ctx, "video probed",
		"width", info.Width,
		"height", info.Height,
		"fps", info.FrameRate,
		"hdr", info.HDR,
	)

	proc, err := ffmpeg.StartFrameExtraction(ctx, ffmpeg.FrameOptions{
		URL:                fp.VideoURL,
		SampleEveryNFrames: fp.SampleEveryNFrames,
		TimeRange:          fp.TimeRange,
	})
	if err != nil {
		return fmt.Errorf("error creating FFmpeg process: %w", err)
	}
	fp.Logger.DebugContext(ctx, "ffmpeg started", "args", strings.Join(proc.Args(), " "))

	frameCount, readErr := fp.consume(ctx, proc.Stdout)
	proc.Stdout.Close()
	if waitErr := proc.Wait(); waitErr != nil && readErr == nil && ctx.Err() == nil {
		fp.Logger.WarnContext(ctx, "ffmpeg exited with error", "error", waitErr)
	}
	if readErr != nil {
		return readErr
	}

	resultsFile, err := fp.writeReport()
	if err != nil {
		return err
	}
	fp.Logger.InfoContext(ctx, "processing complete",
		"frames", frameCount,
		"elapsed", time.Since(startTime).Round(time.Millisecond),
		"results", resultsFile,
	)
	return nil
}

// consume decodes PNG frames from r until EOF and analyzes them concurrently.
func (fp *FrameProcessor) consume(ctx context.Context, r io.Reader) (int, error) {
	frameSize := fp.info.Width * fp.info.Height * 3
	bufferPool := NewFrameBufferPool(frameSize, max(1, fp.InFlight))
	reader := bufio.NewReaderSize(r, 1<<20)

	var wg sync.WaitGroup
	defer wg.Wait()

	frameCount, readErrors := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			fp.Logger.InfoContext(ctx, "processing canceled")
			return frameCount, err
		}

		img, err := readPNGFrame(reader)
		if errors.Is(err, io.EOF) {
			return frameCount, nil
		}
		if err != nil {
			readErrors++
			fp.Logger.WarnContext(ctx, "error reading PNG frame", "error", err, "consecutive", readErrors)
			if readErrors > maxReadErrors {
				return frameCount, fmt.Errorf("too many frame read errors: %w", err)
			}
			continue
		}
		readErrors = 0

		buffer := bufferPool.Get()
		n := toRGB24(img, buffer.data)

		wg.Add(1)
		go func(frameNum int, buffer *FrameBuffer, n int) {
			defer wg.Done()
			defer bufferPool.Put(buffer)
			fp.analyze(ctx, frameNum, buffer.data[:n])
		}(frameCount, buffer, n)

		frameCount++
	}
}

func (fp *FrameProcessor) analyze(ctx context.Context, frameNum int, frame []byte) {
	logger := fp.Logger.WithFrame(frameNum)
	result := FrameResult{
		FrameNumber: frameNum * fp.SampleEveryNFrames,
	}
	if fp.info.FrameRate > 0 {
		result.Timestamp = float64(result.FrameNumber) / fp.info.FrameRate
	}
	result.AvgColor, result.Brightness = averageColor(frame)

	analysis, err := fp.Analyzer.AnalyzeFrame(ctx, frame, imageproc.FrameRand(fp.Seed, frameNum))
	if err != nil {
		logger.ErrorContext(ctx, "error analyzing frame", "error", err)
	} else {
		result.FrameAnalysis = analysis
	}

	if fp.DebugEvery > 0 && frameNum%fp.DebugEvery == 0 {
		logger.InfoContext(ctx, "progress", "processed", frameNum)
		if err := fp.saveDebugImage(frameNum, frame); err != nil {
			logger.WarnContext(ctx, "error saving debug image", "error", err)
		}
	}

	fp.resultsMutex.Lock()
	fp.results = append(fp.results, result)
	fp.resultsMutex.Unlock()
}

// averageColor returns the mean RGB of a packed frame and its brightness in [0, 1].
func averageColor(frame []byte) ([3]uint8, float64) {
	pixelCount := uint64(len(frame) / 3)
	if pixelCount == 0 {
		return [3]uint8{}, 0
	}
	var rSum, gSum, bSum uint64
	for i := 0; i+2 < len(frame); i += 3 {
		rSum += uint64(frame[i])
		gSum += uint64(frame[i+1])
		bSum += uint64(frame[i+2])
	}
	avg := [3]uint8{uint8(rSum / pixelCount), uint8(gSum / pixelCount), uint8(bSum / pixelCount)}
	brightness := float64(rSum+gSum+bSum) / (float64(pixelCount) * 3.0 * 255.0)
	return avg, brightness
}

// toRGB24 packs img into dst row by row and returns the bytes written.
// Pixels beyond dst's capacity are dropped.
func toRGB24(img image.Image, dst []byte) int {
	b := img.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if n+3 > len(dst) {
				return n
			}
			r, g, bl, _ := img.At(x, y).RGBA()
			dst[n], dst[n+1], dst[n+2] = uint8(r>>8), uint8(g>>8), uint8(bl>>8)
			n += 3
		}
	}
	return n
}

var pngSignature = []byte{137, 80, 78, 71, 13, 10, 26, 10}

// readPNGFrame skips to the next PNG signature in r and decodes one image.
func readPNGFrame(r *bufio.Reader) (image.Image, error) {
	for {
		signature, err := r.Peek(len(pngSignature))
		if err != nil {
			return nil, err
		}
		if bytes.Equal(signature, pngSignature) {
			return png.Decode(r)
		}
		if _, err := r.Discard(1); err != nil {
			return nil, err
		}
	}
}

func (fp *FrameProcessor) saveDebugImage(frameNum int, frame []byte) error {
	w, h := fp.info.Width, fp.info.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, j := 0, 0; i+2 < len(frame) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = frame[i], frame[i+1], frame[i+2], 255
	}
	return imageproc.SavePNG(filepath.Join(fp.OutputDir, fmt.Sprintf("frame_%04d.png", frameNum)), img)
}

// Report returns a snapshot of the results, ordered by frame number.
func (fp *FrameProcessor) Report() Report {
	fp.resultsMutex.Lock()
	frames := make([]FrameResult, len(fp.results))
	copy(frames, fp.results)
	fp.resultsMutex.Unlock()

	sort.Slice(frames, func(i, j int) bool {
		return frames[i].FrameNumber < frames[j].FrameNumber
	})
	return Report{
		RunID:     fp.runID,
		Video:     fp.VideoURL,
		Width:     fp.info.Width,
		Height:    fp.info.Height,
		FrameRate: fp.info.FrameRate,
		HDR:       fp.info.HDR,
		Frames:    frames,
	}
}

func (fp *FrameProcessor) writeReport() (string, error) {
	path := filepath.Join(fp.OutputDir, "analysis_results.json")
	if fp.Compress {
		path += ".zst"
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating results file: %w", err)
	}
	if err := WriteReport(f, fp.Report(), fp.Compress); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("error writing results file: %w", err)
	}
	return path, nil
}

// WriteReport encodes r as indented JSON, zstd-compressed when compress is set.
func WriteReport(w io.Writer, r Report, compress bool) error {
	if !compress {
		return encodeReport(w, r)
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("error creating zstd writer: %w", err)
	}
	if err := encodeReport(enc, r); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func encodeReport(w io.Writer, r Report) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(r); err != nil {
		return fmt.Errorf("error marshaling results: %w", err)
	}
	return nil
}

// ReadReport decodes a report written by WriteReport.
func ReadReport(r io.Reader, compressed bool) (Report, error) {
	if compressed {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return Report{}, fmt.Errorf("error creating zstd reader: %w", err)
		}
		defer dec.Close()
		r = dec
	}
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return Report{}, fmt.Errorf("error decoding results: %w", err)
	}
	return rep, nil
}
