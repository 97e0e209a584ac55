package audio

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/wav"
	"github.com/zeebo/blake3"
)

// Info describes a validated WAV submission.
type Info struct {
	Duration   time.Duration
	SampleRate int
	Channels   int
	Checksum   string
}

// ErrInvalidWAV marks a payload that is not a usable WAV file.
var ErrInvalidWAV = errors.New("invalid wav file")

// Validate checks that path is a readable WAV with a positive duration and
// returns its parameters plus the BLAKE3 checksum of the file content.
func Validate(path string) (Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return Info{}, fmt.Errorf("%w: %s", ErrInvalidWAV, filepath.Base(path))
	}
	duration, err := decoder.Duration()
	if err != nil {
		return Info{}, fmt.Errorf("%w: %s: duration: %v", ErrInvalidWAV, filepath.Base(path), err)
	}
	if duration <= 0 {
		return Info{}, fmt.Errorf("%w: %s: empty recording", ErrInvalidWAV, filepath.Base(path))
	}

	checksum, err := Checksum(path)
	if err != nil {
		return Info{}, err
	}

	return Info{
		Duration:   duration,
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		Checksum:   checksum,
	}, nil
}

// Checksum returns the hex BLAKE3 digest of the file at path.
func Checksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash audio file: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Intake validates sourcePath and copies it into audioDir under the
// canonical recording name. It returns the stored path and the file info.
func Intake(sourcePath, audioDir, handle string, book, unit int, now time.Time) (string, Info, error) {
	info, err := Validate(sourcePath)
	if err != nil {
		return "", Info{}, err
	}

	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return "", Info{}, fmt.Errorf("ensure audio directory: %w", err)
	}

	base := fmt.Sprintf("%s_book%d_unit%d_%s", handle, book, unit, now.UTC().Format("20060102_150405"))
	target := filepath.Join(audioDir, base+".wav")
	for suffix := 1; ; suffix++ {
		if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) {
			break
		}
		target = filepath.Join(audioDir, fmt.Sprintf("%s_%d.wav", base, suffix))
	}

	if err := copyFile(sourcePath, target); err != nil {
		return "", Info{}, fmt.Errorf("store audio file: %w", err)
	}
	return target, info, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
