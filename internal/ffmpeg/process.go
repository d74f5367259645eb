// Package ffmpeg starts ffmpeg and ffprobe and reads decoded frames from them.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// TimeRange limits processing to [Start, End]. Either bound may be empty.
type TimeRange struct {
	Start string
	End   string
}

// Options describes a raw RGB24 decode.
type Options struct {
	URL     string
	Width   int
	Height  int
	FPS     int
	Bitrate string
}

// FrameOptions describes a PNG frame extraction.
type FrameOptions struct {
	URL                string
	SampleEveryNFrames int
	TimeRange          *TimeRange
}

// Process is a running ffmpeg whose stdout carries decoded frames.
type Process struct {
	Stdout io.ReadCloser
	cmd    *exec.Cmd
	stderr *bytes.Buffer
}

// Args returns the full command line.
func (p *Process) Args() []string {
	return p.cmd.Args
}

// Wait waits for ffmpeg to exit, attaching its stderr to any failure.
func (p *Process) Wait() error {
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg error: %w - stderr: %s", err, p.stderr.String())
	}
	return nil
}

func start(ctx context.Context, args []string) (*Process, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in $PATH: %w", err)
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("error creating stdout pipe: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("error starting ffmpeg: %w", err)
	}
	return &Process{Stdout: stdout, cmd: cmd, stderr: stderr}, nil
}

var inputArgs = []string{
	"-probesize", "32M",
	"-analyzeduration", "10M",
	"-reconnect", "1",
	"-reconnect_at_eof", "1",
	"-reconnect_streamed", "1",
	"-reconnect_delay_max", "10",
}

func rawArgs(opts Options) []string {
	args := []string{"-loglevel", "error"}
	args = append(args, inputArgs...)
	args = append(args,
		"-i", opts.URL,
		"-an",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
	)
	if opts.Bitrate != "" {
		args = append(args, "-b:v", opts.Bitrate)
	}
	if opts.FPS > 0 {
		args = append(args, "-r", fmt.Sprintf("%d", opts.FPS))
	}
	return append(args, "-f", "rawvideo", "-pix_fmt", "rgb24", "pipe:1")
}

func frameArgs(opts FrameOptions) []string {
	args := []string{"-loglevel", "error"}
	if tr := opts.TimeRange; tr != nil {
		if tr.Start != "" {
			args = append(args, "-ss", tr.Start)
		}
		if tr.End != "" {
			startSec, _ := ParseTimestamp(tr.Start)
			endSec, err := ParseTimestamp(tr.End)
			if err == nil && endSec > startSec {
				args = append(args, "-t", fmt.Sprintf("%.3f", endSec-startSec))
			}
		}
	}
	args = append(args, inputArgs...)
	every := max(1, opts.SampleEveryNFrames)
	return append(args,
		"-i", opts.URL,
		"-vf", fmt.Sprintf("select=not(mod(n\\,%d))", every),
		"-vsync", "vfr",
		"-an",
		"-f", "image2pipe",
		"-pix_fmt", "rgb24",
		"-vcodec", "png",
		"pipe:1",
	)
}

// StartRaw starts a raw RGB24 decode of opts.URL scaled to Width x Height.
func StartRaw(ctx context.Context, opts Options) (*Process, error) {
	return start(ctx, rawArgs(opts))
}

// StartFrameExtraction starts a decode emitting every Nth frame as PNG.
func StartFrameExtraction(ctx context.Context, opts FrameOptions) (*Process, error) {
	return start(ctx, frameArgs(opts))
}

// ReadAll reads at most maxBytes of p's output, then waits for ffmpeg. When
// the limit cuts the stream short, ffmpeg's broken-pipe exit is not an error.
func ReadAll(ctx context.Context, p *Process, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(p.Stdout, maxBytes))
	p.Stdout.Close()
	if err != nil {
		_ = p.Wait()
		return nil, fmt.Errorf("stream read error: %w", err)
	}

	if err := p.Wait(); err != nil && int64(len(data)) < maxBytes {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Join(ctxErr, err)
		}
		return nil, err
	}
	return data, nil
}
