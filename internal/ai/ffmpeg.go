package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpegDecoder decodes videos by shelling out to ffprobe and ffmpeg. Frames
// are streamed as raw RGBA over a pipe, so nothing touches the disk.
type FFmpegDecoder struct {
	ffmpegPath string
	infoPath   string
	logger     *slog.Logger
}

func NewFFmpegDecoder(logger *slog.Logger) (*FFmpegDecoder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	infoPath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}
	logger.Debug("found video tools", "ffmpeg", ffmpegPath, "ffprobe", infoPath)

	return &FFmpegDecoder{
		ffmpegPath: ffmpegPath,
		infoPath:   infoPath,
		logger:     logger,
	}, nil
}

type streamReport struct {
	Streams []struct {
		Width         int    `json:"width"`
		Height        int    `json:"height"`
		RFrameRate    string `json:"r_frame_rate"`
		AvgFrameRate  string `json:"avg_frame_rate"`
		NbFrames      string `json:"nb_frames"`
		NbReadPackets string `json:"nb_read_packets"`
	} `json:"streams"`
}

func (d *FFmpegDecoder) Inspect(videoPath string) (*VideoInfo, error) {
	out, err := d.streams(videoPath, "stream=width,height,r_frame_rate,avg_frame_rate,nb_frames")
	if err != nil {
		return nil, err
	}
	if len(out.Streams) == 0 {
		return nil, fmt.Errorf("no video stream in %s", videoPath)
	}
	st := out.Streams[0]

	info := &VideoInfo{
		Width:  st.Width,
		Height: st.Height,
	}
	info.FrameRate = parseFrameRate(st.AvgFrameRate)
	if info.FrameRate <= 0 {
		info.FrameRate = parseFrameRate(st.RFrameRate)
	}

	if n, err := strconv.ParseInt(st.NbFrames, 10, 64); err == nil && n > 0 {
		info.FrameCount = n
	} else {
		// Some containers (webm, mkv) carry no frame count; count packets instead.
		counted, err := d.streams(videoPath, "stream=nb_read_packets", "-count_packets")
		if err == nil && len(counted.Streams) > 0 {
			if n, err := strconv.ParseInt(counted.Streams[0].NbReadPackets, 10, 64); err == nil {
				info.FrameCount = n
			}
		}
	}

	return info, nil
}

func (d *FFmpegDecoder) streams(videoPath, entries string, extra ...string) (*streamReport, error) {
	args := []string{"-v", "error", "-select_streams", "v:0"}
	args = append(args, extra...)
	args = append(args, "-show_entries", entries, "-of", "json", videoPath)

	cmd := exec.Command(d.infoPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var out streamReport
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &out, nil
}

func (d *FFmpegDecoder) Decode(videoPath string, info *VideoInfo, fn func(index int, img image.Image) error) error {
	if info.Width <= 0 || info.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", info.Width, info.Height)
	}

	cmd := exec.Command(d.ffmpegPath, decodeArgs(videoPath)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	frameSize := info.Width * info.Height * 4
	img := &image.RGBA{
		Pix:    make([]byte, frameSize),
		Stride: info.Width * 4,
		Rect:   image.Rect(0, 0, info.Width, info.Height),
	}

	index := 0
	var walkErr error
	for {
		if _, err := io.ReadFull(stdout, img.Pix); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				walkErr = fmt.Errorf("failed to read frame %d: %w", index, err)
			}
			break
		}
		if err := fn(index, img); err != nil {
			walkErr = err
			break
		}
		index++
	}

	// Drain so ffmpeg is not blocked on a full pipe when we stopped early.
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	if walkErr != nil {
		return walkErr
	}
	if waitErr != nil {
		d.logger.Debug("ffmpeg stderr", "output", stderr.String())
		if index == 0 {
			return fmt.Errorf("ffmpeg failed: %w: %s", waitErr, strings.TrimSpace(stderr.String()))
		}
		d.logger.Warn("ffmpeg exited with error after decoding frames",
			"path", videoPath, "frames", index, "error", waitErr)
	}
	return nil
}

// decodeArgs keeps frames in stored orientation. Without -noautorotate a
// rotated phone clip comes out with width and height swapped relative to the
// stream info, which breaks the fixed frame size.
func decodeArgs(videoPath string) []string {
	return []string{
		"-v", "error",
		"-noautorotate",
		"-i", videoPath,
		"-an",
		"-vsync", "passthrough",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	}
}

// parseFrameRate accepts ffprobe rationals such as "30000/1001" or a plain
// number. Anything unreadable yields 0.
func parseFrameRate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0
	}
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	dv, err := strconv.ParseFloat(den, 64)
	if err != nil || dv == 0 {
		return 0
	}
	return n / dv
}
