package pdb

import "bytes"
import "compress/gzip"
import "context"
import "fmt"
import "os"
import "path/filepath"
import "strings"
import "testing"

func gz(t testing.TB, lines ...string) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(strings.Join(lines, "\n"))); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadReader(t *testing.T) {
	data := gz(t,
		`{"rcsb_id": "1AAA"}`,
		``,
		`not json`,
		`{"rcsb_id": "2BBB"}`,
		`null`,
		`[1, 2]`,
		`{"rcsb_id": "3CCC"}`,
	)
	entries, stats, err := LoadReader(context.Background(), bytes.NewReader(data), 2)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Lines != 6 || stats.Entries != 3 || stats.Malformed != 3 {
		t.Errorf("stats %+v", stats)
	}
	for i, id := range []string{"1AAA", "2BBB", "3CCC"} {
		if entries[i].ID() != id {
			t.Errorf("entry %d is %q, want %q", i, entries[i].ID(), id)
		}
	}
}

func TestLoadLineSize(t *testing.T) {
	// a single entry far above the default scanner buffer still decodes
	long := fmt.Sprintf(`{"rcsb_id": "4DDD", "pdbx_seq_one_letter_code": %q}`, strings.Repeat("A", 1<<20))
	entries, _, err := LoadReader(context.Background(), bytes.NewReader(gz(t, `{"rcsb_id": "1AAA"}`, long)), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("%d entries", len(entries))
	}
	if n, ok := SequenceLength(entries[1]); !ok || n != 1<<20 {
		t.Errorf("long sequence of %d", n)
	}

	huge := `{"rcsb_id": "5EEE", "pdbx_seq_one_letter_code": "` + strings.Repeat("A", MaxLineSize) + `"}`
	_, _, err = LoadReader(context.Background(), bytes.NewReader(gz(t, `{"rcsb_id": "1AAA"}`, huge, `{"rcsb_id": "2BBB"}`)), 2)
	if err == nil {
		t.Errorf("line over %d bytes accepted", MaxLineSize)
	}
}

func TestLoadKeepsOrderAcrossChunks(t *testing.T) {
	var lines []string
	for i := 0; i < 3*chunkLines+17; i++ {
		lines = append(lines, fmt.Sprintf(`{"rcsb_id": "%d"}`, i))
	}
	entries, stats, err := LoadReader(context.Background(), bytes.NewReader(gz(t, lines...)), 4)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != len(lines) {
		t.Fatalf("got %d entries", stats.Entries)
	}
	for i, e := range entries {
		if e.ID() != fmt.Sprint(i) {
			t.Fatalf("entry %d is %q", i, e.ID())
		}
	}
}

func TestLoadErrors(t *testing.T) {
	if _, _, err := LoadReader(context.Background(), strings.NewReader("plain text"), 1); err == nil {
		t.Errorf("missing gzip header not reported")
	}
	data := gz(t, `{"rcsb_id": "1AAA"}`, `{"rcsb_id": "2BBB"}`)
	if _, _, err := LoadReader(context.Background(), bytes.NewReader(data[:len(data)-6]), 1); err == nil {
		t.Errorf("truncated stream not reported")
	}
	if _, _, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.json.gz"), 1); err == nil {
		t.Errorf("missing file not reported")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := LoadReader(ctx, bytes.NewReader(data), 1); err == nil {
		t.Errorf("cancelled context not reported")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdb.json.gz")
	if err := os.WriteFile(path, gz(t, full, full), 0644); err != nil {
		t.Fatal(err)
	}
	entries, _, err := Load(context.Background(), path, 0)
	if err != nil {
		t.Fatal(err)
	}
	ds, stats := Build(entries, Matthews, BuildOptions{Filter: true})
	if ds.Len() != 2 || stats.Skipped != 0 || stats.Filtered != 0 {
		t.Errorf("built %d rows, stats %+v", ds.Len(), stats)
	}
}
