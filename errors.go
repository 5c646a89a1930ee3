// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

package pak

import "errors"

// Sentinel errors for PAK operations. Use errors.Is in callers.
var (
	// ErrTruncated means the file is shorter than the minimal footer.
	ErrTruncated = errors.New("file too short for PAK footer")
	// ErrBadMagic means no recognizable footer layout was found.
	ErrBadMagic = errors.New("no PAK magic found in footer")
	// ErrInvalidIndexRegion means footer index offset or size fail sanity bounds.
	ErrInvalidIndexRegion = errors.New("invalid index offset or size")
	// ErrEncryptedIndex means the index is AES-encrypted and cannot be parsed without a key.
	ErrEncryptedIndex = errors.New("index is encrypted")
	// ErrEncryptedPayload means one entry's payload is encrypted and cannot be extracted.
	ErrEncryptedPayload = errors.New("entry payload is encrypted")
	// ErrSuspiciousEntryCount means an index count field exceeds its sanity ceiling.
	ErrSuspiciousEntryCount = errors.New("suspicious index count")
	// ErrUnreadableEntry means one index entry failed to decode.
	ErrUnreadableEntry = errors.New("unreadable index entry")
	// ErrEntryNotFound means the entry is not found.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrNilReader means the reader is nil.
	ErrNilReader = errors.New("reader is nil")
	// ErrClosed means the reader or resource is already closed.
	ErrClosed = errors.New("reader or resource already closed")
	// ErrSizeOverflow means a stored size does not fit the platform int.
	ErrSizeOverflow = errors.New("stored size exceeds platform limits")
	// ErrInvalidEntryRules means one or more entry selection rules are invalid.
	ErrInvalidEntryRules = errors.New("invalid entry selection rules")
	// ErrInvalidExtractPath means archive entry path is invalid for extraction destination.
	ErrInvalidExtractPath = errors.New("invalid extract path")
)
