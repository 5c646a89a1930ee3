// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

package pak

import (
	"github.com/woozymasta/pathrules"
)

// Internal binary layout and format limits.
const (
	pakMagic        = 0x5A6F12E1 // little-endian magic near end of file
	footerSizeV2    = 44         // GUID + flag + magic + version + offset + size
	footerSizeV1    = 28         // magic + version + offset + size (pre-encryption)
	hashSize        = 20         // SHA1 digest size per index entry
	timestampsFrom  = 8          // archive version that introduced per-entry timestamps
	maxStringLen    = 64 * 1024  // max index string length in characters
	maxEntryCount   = 1_000_000  // entry count sanity ceiling
	maxBlockCount   = 64 * 1024  // compression block count sanity ceiling per entry
	methodEncrypted = 0x80000000 // encrypted-payload bit stored in the method field
)

// CompressionMethod is the per-entry codec code with the encryption bit masked out.
type CompressionMethod uint32

// Compression method codes stored in the entry record.
const (
	// MethodNone marks verbatim stored payload.
	MethodNone CompressionMethod = 0x00
	// MethodZlib marks zlib (deflate) compressed payload.
	MethodZlib CompressionMethod = 0x01
	// MethodGzip marks gzip-framed deflate payload.
	MethodGzip CompressionMethod = 0x02
	// MethodOodle marks the engine "custom" codec slot, Oodle in shipped games.
	MethodOodle CompressionMethod = 0x04
)

// String returns a short codec name for listings and logs.
func (m CompressionMethod) String() string {
	switch m {
	case MethodNone:
		return "none"
	case MethodZlib:
		return "zlib"
	case MethodGzip:
		return "gzip"
	case MethodOodle:
		return "oodle"
	default:
		return "unknown"
	}
}

// CompressionBlock is one compressed sub-range of an entry payload.
// Offsets are relative to the entry's own data offset, not the file start.
type CompressionBlock struct {
	// Start is the first byte of the compressed block.
	Start uint64 `json:"start" yaml:"start"`
	// End is one past the last byte of the compressed block.
	End uint64 `json:"end" yaml:"end"`
}

// Entry describes one parsed index entry. Entries are immutable after parse.
type Entry struct {
	// Path is the normalized slash-separated path with mount point stripped.
	Path string `json:"path" yaml:"path"`
	// Offset is the absolute byte offset of this entry's payload.
	Offset uint64 `json:"offset" yaml:"offset"`
	// CompressedSize is the stored payload size in bytes.
	CompressedSize uint64 `json:"compressed_size" yaml:"compressed_size"`
	// UncompressedSize is the final payload size; equals CompressedSize for raw entries.
	UncompressedSize uint64 `json:"uncompressed_size" yaml:"uncompressed_size"`
	// Method is the codec code with the encryption bit already masked out.
	Method CompressionMethod `json:"method" yaml:"method"`
	// Timestamp is the stored entry timestamp; zero for archives before version 8.
	Timestamp uint64 `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	// Hash is the stored 20-byte digest. Advisory only, never verified here.
	Hash [hashSize]byte `json:"hash" yaml:"hash"`
	// Blocks is the compression block table; empty for single-span entries.
	Blocks []CompressionBlock `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	// Encrypted reports whether payload bytes are AES-encrypted.
	Encrypted bool `json:"encrypted,omitempty" yaml:"encrypted,omitempty"`
	// PathValid reports whether the stored path decoded without replacement runes.
	PathValid bool `json:"path_valid" yaml:"path_valid"`
}

// IsCompressed reports whether extraction must run payload through a codec.
// Size equality takes precedence over a nonzero method code.
func (e *Entry) IsCompressed() bool {
	return e.Method != MethodNone && e.CompressedSize != e.UncompressedSize
}

// EntrySummary is a listing projection of one entry.
type EntrySummary struct {
	// Path is the normalized entry path.
	Path string `json:"path" yaml:"path"`
	// UncompressedSize is the final payload size in bytes.
	UncompressedSize uint64 `json:"uncompressed_size" yaml:"uncompressed_size"`
	// Compressed reports whether the entry is stored compressed.
	Compressed bool `json:"compressed" yaml:"compressed"`
}

// ArchiveInfo contains archive-level metadata from footer and index parse.
type ArchiveInfo struct {
	// MountPoint is the raw mount point string from the index.
	MountPoint string `json:"mount_point" yaml:"mount_point"`
	// Version is the PAK format version from the footer.
	Version uint32 `json:"version" yaml:"version"`
	// IndexOffset is the absolute index offset from the footer.
	IndexOffset uint64 `json:"index_offset" yaml:"index_offset"`
	// IndexSize is the index size in bytes from the footer.
	IndexSize uint64 `json:"index_size" yaml:"index_size"`
	// Encrypted reports whether the footer marks the index as encrypted.
	Encrypted bool `json:"encrypted" yaml:"encrypted"`
	// EntryCount is the number of entries that survived parsing.
	EntryCount int `json:"entry_count" yaml:"entry_count"`
	// ReplacedPaths counts duplicate normalized paths overwritten during parse.
	ReplacedPaths int `json:"replaced_paths,omitempty" yaml:"replaced_paths,omitempty"`
	// SkippedEntries counts malformed entries dropped during parse.
	SkippedEntries int `json:"skipped_entries,omitempty" yaml:"skipped_entries,omitempty"`
}

// ReaderOptions configures parse behavior.
type ReaderOptions struct {
	// PathPrefix limits visible entries to one normalized path prefix.
	PathPrefix string `json:"path_prefix,omitempty" yaml:"path_prefix,omitempty"`
	// Rules are ordered include/exclude rules applied to normalized entry paths.
	Rules []pathrules.Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
	// RuleMatcherOptions control rule matching behavior.
	RuleMatcherOptions pathrules.MatcherOptions `json:"rule_matcher_options,omitzero" yaml:"rule_matcher_options,omitzero"`
	// MaxEntryCount overrides the entry count sanity ceiling (zero means default).
	MaxEntryCount uint32 `json:"max_entry_count,omitempty" yaml:"max_entry_count,omitempty"`
}

// ExtractOutcome is the result of extracting one entry during a batch.
type ExtractOutcome struct {
	// Err is nil on success or the specific per-entry failure.
	Err error `json:"-" yaml:"-"`
	// Path is the archive entry path.
	Path string `json:"path" yaml:"path"`
	// OutputPath is the absolute destination path; empty when extraction failed early.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	// Written is the number of payload bytes written to disk.
	Written int64 `json:"written,omitempty" yaml:"written,omitempty"`
}

// ExtractFileMode controls output file open behavior during extraction.
type ExtractFileMode string

// Output file creation policies for extraction.
const (
	// ExtractFileModeAuto first tries create-only, then falls back to truncate for existing files.
	ExtractFileModeAuto ExtractFileMode = "auto"
	// ExtractFileModeTruncate opens existing files with truncate and creates missing files.
	ExtractFileModeTruncate ExtractFileMode = "truncate"
	// ExtractFileModeCreateOnly creates files only when absent and fails on existing files.
	ExtractFileModeCreateOnly ExtractFileMode = "create_only"
)

// ExtractOptions configures Extract behavior.
type ExtractOptions struct {
	// OnEntryDone is called after one entry's outcome is known.
	OnEntryDone func(outcome ExtractOutcome) `json:"-" yaml:"-"`
	// Entries limits extraction to a selected metadata list; nil means all parsed entries.
	Entries []Entry `json:"-" yaml:"-"`
	// FileMode controls output file creation policy.
	FileMode ExtractFileMode `json:"file_mode,omitempty" yaml:"file_mode,omitempty"`
	// MaxWorkers is number of extraction workers (zero means GOMAXPROCS).
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
}

// applyDefaults fills zero-valued reader options with defaults.
func (opts *ReaderOptions) applyDefaults() {
	if opts.MaxEntryCount == 0 {
		opts.MaxEntryCount = maxEntryCount
	}

	if opts.RuleMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.RuleMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		}
	}

	if opts.RuleMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.RuleMatcherOptions.DefaultAction = pathrules.ActionExclude
	}
}

// applyDefaults fills zero-valued extract options with defaults.
func (opts *ExtractOptions) applyDefaults() {
	if opts.FileMode == "" {
		opts.FileMode = ExtractFileModeAuto
	}
}
