package badger

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/poiesic/icdmap/core"
)

// Key prefixes for different data types
const (
	codeRecordPrefix        = "codrec"
	codeRecordStringPrefix  = "codrecs"
	codeRecordChapterPrefix = "codrecc"
	metaRecordPrefix        = "metrec"
)

// makeCodeRecordKey generates a key for a code record by ID.
func makeCodeRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", codeRecordPrefix, id))
}

// makeCodeStringKey generates a key for the code string index.
// Format: prefix:code (code already normalized, no dot, uppercase)
func makeCodeStringKey(code string) []byte {
	return []byte(fmt.Sprintf("%s:%s", codeRecordStringPrefix, code))
}

// makeChapterKey generates a composite key for the chapter index.
// Format: prefix:chapter:code
func makeChapterKey(chapter int, code string) []byte {
	prefix := codeRecordChapterPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 + len(code)
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(chapter))
	offset += 8
	copy(buf[offset:], []byte(code))
	return buf
}

// makePartialChapterKey generates a partial key for chapter scans.
// Format: prefix:chapter
func makePartialChapterKey(chapter int) []byte {
	prefix := codeRecordChapterPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(chapter))
	return buf
}

// isIndexKey reports whether a key under the codrec prefix belongs to a
// secondary index rather than a primary record.
func isIndexKey(key []byte) bool {
	return bytes.HasPrefix(key, []byte(codeRecordStringPrefix)) ||
		bytes.HasPrefix(key, []byte(codeRecordChapterPrefix))
}

// makeIndexInfoKey generates the key for the index metadata singleton.
func makeIndexInfoKey() []byte {
	return []byte(fmt.Sprintf("%s:idx", metaRecordPrefix))
}

// makeCheckpointKey generates a key for pipeline stage checkpoints.
func makeCheckpointKey(stage string) []byte {
	return []byte(fmt.Sprintf("%s:chkpt", stage))
}
