package testsupport

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"recite/internal/config"
)

// DefaultCatalogCSV is a small three-verse catalog used across tests.
const DefaultCatalogCSV = `sequence,book,unit,translation,footnote
1,1,1,first verse text,
2,1,2,second verse text,
3,2,1,third verse text,
`

// WriteCatalog writes CSV catalog content to the config's catalog path.
// When content is empty the default three-verse catalog is written.
func WriteCatalog(t testing.TB, cfg *config.Config, content string) {
	t.Helper()

	if content == "" {
		content = DefaultCatalogCSV
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.CatalogFile), 0o755); err != nil {
		t.Fatalf("mkdir catalog dir: %v", err)
	}
	if err := os.WriteFile(cfg.Paths.CatalogFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
}

// WriteWAV writes a short valid mono WAV file and returns its path.
func WriteWAV(t testing.TB, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}

	const (
		sampleRate = 16000
		samples    = sampleRate / 10 // 100ms tone
	)
	encoder := wav.NewEncoder(file, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, samples),
	}
	for i := range buf.Data {
		buf.Data[i] = int(8000 * math.Sin(2*math.Pi*440*float64(i)/sampleRate))
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close wav encoder: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close wav file: %v", err)
	}
	return path
}
