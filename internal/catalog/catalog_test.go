package catalog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recite/internal/catalog"
)

const sampleCSV = `sequence,book,unit,translation,footnote
2,1,2,second verse,
1,1,1,first verse,note
3,2,1,third verse,
`

func TestParseOrdersByBookAndUnit(t *testing.T) {
	cat, err := catalog.Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	verses := cat.Verses()
	if len(verses) != 3 {
		t.Fatalf("expected 3 verses, got %d", len(verses))
	}
	gotIDs := []string{verses[0].ID, verses[1].ID, verses[2].ID}
	wantIDs := []string{"1", "2", "3"}
	for i := range wantIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Fatalf("unexpected order: %v", gotIDs)
		}
	}
	if verses[0].Book != 1 || verses[0].Unit != 1 || verses[0].Text != "first verse" {
		t.Fatalf("unexpected first verse: %+v", verses[0])
	}
}

func TestParseNormalizesFloatSequences(t *testing.T) {
	cat, err := catalog.Parse(strings.NewReader("sequence,book,unit,translation,footnote\n7.0,1.0,4.0,text,\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	verse, ok := cat.Lookup("7")
	if !ok {
		t.Fatal("expected id 7 after float normalization")
	}
	if verse.Book != 1 || verse.Unit != 4 {
		t.Fatalf("unexpected verse: %+v", verse)
	}
}

func TestParseRejectsMalformedRows(t *testing.T) {
	cases := []struct {
		name string
		csv  string
	}{
		{"header only", "sequence,book,unit,translation,footnote\n"},
		{"short row", "h,h,h,h,h\n1,1\n"},
		{"bad sequence", "h,h,h,h,h\nx,1,1,text,\n"},
		{"empty text", "h,h,h,h,h\n1,1,1,   ,\n"},
		{"duplicate id", "h,h,h,h,h\n1,1,1,a,\n1,1,2,b,\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := catalog.Parse(strings.NewReader(tc.csv)); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := catalog.Load(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing catalog file")
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cat.Len() != 3 {
		t.Fatalf("expected 3 verses, got %d", cat.Len())
	}
	if _, ok := cat.Lookup("2"); !ok {
		t.Fatal("expected lookup to find verse 2")
	}
}
