package pak

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/pathrules"
)

func TestOpen_SingleRawEntry(t *testing.T) {
	t.Parallel()

	payload := []byte("hello pak")
	path := createPakFile(t, 8, "../../../Game/", false, []fixtureEntry{
		{path: "../../../Game/Content/a.txt", data: payload, timestamp: 1234},
	})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	info := r.Info()
	if info.Version != 8 {
		t.Errorf("version=%d, want 8", info.Version)
	}
	if info.MountPoint != "../../../Game/" {
		t.Errorf("mount point=%q", info.MountPoint)
	}
	if info.EntryCount != 1 {
		t.Fatalf("entry count=%d, want 1", info.EntryCount)
	}

	entry, ok := r.Entry("Content/a.txt")
	if !ok {
		t.Fatal("entry Content/a.txt not found")
	}
	if entry.Timestamp != 1234 {
		t.Errorf("timestamp=%d, want 1234", entry.Timestamp)
	}
	if entry.IsCompressed() {
		t.Error("raw entry reports compressed")
	}

	got, err := r.ReadEntry("Content/a.txt")
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload=%q, want %q", got, payload)
	}
}

func TestOpen_LegacyFooterNoTimestamps(t *testing.T) {
	t.Parallel()

	path := createPakFile(t, 3, "Mount/", true, []fixtureEntry{
		{path: `Mount/Dir\b.bin`, data: []byte{1, 2, 3}},
	})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	if r.Version() != 3 {
		t.Errorf("version=%d, want 3", r.Version())
	}

	entry, ok := r.Entry("Dir/b.bin")
	if !ok {
		t.Fatalf("entry not found; have %v", r.Entries())
	}
	if entry.Timestamp != 0 {
		t.Errorf("timestamp=%d, want zero sentinel before version 8", entry.Timestamp)
	}
}

func TestOpen_PathNormalization(t *testing.T) {
	t.Parallel()

	path := createPakFile(t, 8, "Base/", false, []fixtureEntry{
		{path: `Base/Sub\file.txt`, data: []byte("x")},
		{path: "/rooted.txt", data: []byte("y")},
	})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	if _, ok := r.Entry("Sub/file.txt"); !ok {
		t.Errorf("normalized path Sub/file.txt missing; have %v", r.Entries())
	}
	if _, ok := r.Entry("rooted.txt"); !ok {
		t.Errorf("leading slash not stripped; have %v", r.Entries())
	}
}

func TestNormalizeEntryPath_Idempotent(t *testing.T) {
	t.Parallel()

	once := normalizeEntryPath(`Mount/Dir\x.txt`, "Mount/")
	twice := normalizeEntryPath(once, "Mount/")
	if once != twice {
		t.Errorf("normalization not idempotent: %q vs %q", once, twice)
	}
	if once != "Dir/x.txt" {
		t.Errorf("normalized=%q, want Dir/x.txt", once)
	}
}

func TestOpen_DuplicatePathLastWins(t *testing.T) {
	t.Parallel()

	path := createPakFile(t, 8, "", false, []fixtureEntry{
		{path: "same.txt", data: []byte("first")},
		{path: "same.txt", data: []byte("second")},
	})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	if got := r.Info().EntryCount; got != 1 {
		t.Fatalf("entry count=%d, want 1", got)
	}
	if got := r.Info().ReplacedPaths; got != 1 {
		t.Errorf("replaced paths=%d, want 1", got)
	}

	got, err := r.ReadEntry("same.txt")
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("payload=%q, want last-seen entry", got)
	}
}

func TestOpen_EmptyArchiveIsValid(t *testing.T) {
	t.Parallel()

	path := createPakFile(t, 8, "Mount/", false, nil)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	if len(r.Entries()) != 0 {
		t.Errorf("entries=%d, want 0", len(r.Entries()))
	}
}

func TestOpen_SuspiciousEntryCount(t *testing.T) {
	t.Parallel()

	// Hand-build an index whose count field reads 0xFFFFFFFF.
	var index bytes.Buffer
	writeIndexString(&index, "Mount/")
	index.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	var out bytes.Buffer
	out.Write(index.Bytes())

	var ft [footerSizeV2]byte
	binary.LittleEndian.PutUint32(ft[17:21], pakMagic)
	binary.LittleEndian.PutUint32(ft[21:25], 8)
	binary.LittleEndian.PutUint64(ft[25:33], 0)
	binary.LittleEndian.PutUint64(ft[33:41], uint64(index.Len()))
	out.Write(ft[:])

	path := filepath.Join(t.TempDir(), "suspicious.pak")
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path)
	if !errors.Is(err, ErrSuspiciousEntryCount) {
		t.Fatalf("expected ErrSuspiciousEntryCount, got %v", err)
	}
}

func TestOpen_EncryptedIndex(t *testing.T) {
	t.Parallel()

	data := buildPakBytes(t, 9, "Mount/", false, true, []fixtureEntry{
		{path: "a.txt", data: []byte("x")},
	})
	path := filepath.Join(t.TempDir(), "encrypted.pak")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path)
	if !errors.Is(err, ErrEncryptedIndex) {
		t.Fatalf("expected ErrEncryptedIndex, got %v", err)
	}

	// Metadata helper still reports footer-level info for encrypted archives.
	info, err := ReadArchiveInfo(path)
	if err != nil {
		t.Fatalf("ReadArchiveInfo: %v", err)
	}
	if !info.Encrypted {
		t.Error("info.Encrypted=false, want true")
	}
	if info.EntryCount != 0 {
		t.Errorf("entry count=%d, want 0 for encrypted index", info.EntryCount)
	}
}

func TestReader_Summaries(t *testing.T) {
	t.Parallel()

	content := []byte("some content to compress some content to compress")
	path := createPakFile(t, 8, "", false, []fixtureEntry{
		{path: "raw.bin", data: []byte("abc")},
		{
			path:             "packed.bin",
			data:             zlibCompress(t, content),
			uncompressedSize: uint64(len(content)),
			method:           uint32(MethodZlib),
		},
	})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	collect := func() []EntrySummary {
		var out []EntrySummary
		for s := range r.Summaries() {
			out = append(out, s)
		}
		return out
	}

	first := collect()
	second := collect()
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("summaries len=%d/%d, want 2/2", len(first), len(second))
	}
	if first[0] != second[0] || first[1] != second[1] {
		t.Error("summaries iterator is not restartable")
	}
	if first[0].Path != "raw.bin" || first[0].Compressed {
		t.Errorf("unexpected first summary: %+v", first[0])
	}
	if first[1].Path != "packed.bin" || !first[1].Compressed {
		t.Errorf("unexpected second summary: %+v", first[1])
	}
	if first[1].UncompressedSize != uint64(len(content)) {
		t.Errorf("uncompressed size=%d, want %d", first[1].UncompressedSize, len(content))
	}
}

func TestOpenWithOptions_PrefixAndRules(t *testing.T) {
	t.Parallel()

	path := createPakFile(t, 8, "", false, []fixtureEntry{
		{path: "Content/Maps/one.umap", data: []byte("1")},
		{path: "Content/Maps/two.txt", data: []byte("2")},
		{path: "Config/engine.ini", data: []byte("3")},
	})

	r, err := OpenWithOptions(path, ReaderOptions{PathPrefix: "Content"})
	if err != nil {
		t.Fatalf("OpenWithOptions prefix: %v", err)
	}
	defer func() { _ = r.Close() }()

	if got := len(r.Entries()); got != 2 {
		t.Fatalf("prefix filter entries=%d, want 2", got)
	}

	rRules, err := OpenWithOptions(path, ReaderOptions{
		Rules: []pathrules.Rule{
			{Action: pathrules.ActionInclude, Pattern: "*.umap"},
		},
	})
	if err != nil {
		t.Fatalf("OpenWithOptions rules: %v", err)
	}
	defer func() { _ = rRules.Close() }()

	entries := rRules.Entries()
	if len(entries) != 1 || entries[0].Path != "Content/Maps/one.umap" {
		t.Fatalf("rule filter entries=%v, want only one.umap", entries)
	}
}

func TestReader_ClosedAndMissing(t *testing.T) {
	t.Parallel()

	path := createPakFile(t, 8, "", false, []fixtureEntry{
		{path: "a.txt", data: []byte("x")},
	})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := r.ReadEntry("missing.txt"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := r.ReadEntry("a.txt"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
}
