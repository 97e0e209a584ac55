package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Verse is one addressable unit of source text requiring an audio recording.
// Book and Unit locate the verse; the pair also defines assignment order.
type Verse struct {
	ID   string `json:"id"`
	Book int    `json:"book"`
	Unit int    `json:"unit"`
	Text string `json:"text"`
}

// Catalog is the ordered, immutable verse table for the session.
type Catalog struct {
	verses []Verse
	byID   map[string]int
}

// Load reads the catalog from a CSV file. The first row is a header and is
// skipped; each remaining row must carry at least sequence, book, unit, and
// translation columns.
func Load(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	cat, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse reads catalog rows from r. Exposed separately so tests and alternate
// sources can feed readers directly.
func Parse(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, errors.New("no verse rows after header")
	}

	verses := make([]Verse, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		if len(row) < 4 {
			return nil, fmt.Errorf("line %d: expected at least 4 columns, got %d", line, len(row))
		}
		seq, err := parseInt(row[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: sequence: %w", line, err)
		}
		book, err := parseInt(row[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: book: %w", line, err)
		}
		unit, err := parseInt(row[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: unit: %w", line, err)
		}
		text := norm.NFC.String(strings.TrimSpace(row[3]))
		if text == "" {
			return nil, fmt.Errorf("line %d: empty translation text", line)
		}
		verses = append(verses, Verse{
			ID:   strconv.Itoa(seq),
			Book: book,
			Unit: unit,
			Text: text,
		})
	}

	sort.SliceStable(verses, func(i, j int) bool {
		if verses[i].Book != verses[j].Book {
			return verses[i].Book < verses[j].Book
		}
		return verses[i].Unit < verses[j].Unit
	})

	byID := make(map[string]int, len(verses))
	for i, verse := range verses {
		if _, dup := byID[verse.ID]; dup {
			return nil, fmt.Errorf("duplicate verse id %s", verse.ID)
		}
		byID[verse.ID] = i
	}

	return &Catalog{verses: verses, byID: byID}, nil
}

// Verses returns all verses in assignment order. The slice is shared; callers
// must not modify it.
func (c *Catalog) Verses() []Verse {
	return c.verses
}

// Len returns the number of verses in the catalog.
func (c *Catalog) Len() int {
	return len(c.verses)
}

// Lookup returns the verse with the given identifier.
func (c *Catalog) Lookup(id string) (Verse, bool) {
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Verse{}, false
	}
	return c.verses[idx], true
}

func parseInt(field string) (int, error) {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		return 0, errors.New("empty value")
	}
	// Spreadsheet exports often stringify integers as "12.0".
	if dot := strings.IndexByte(trimmed, '.'); dot >= 0 {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil && f == float64(int(f)) {
			return int(f), nil
		}
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", field, err)
	}
	return value, nil
}
