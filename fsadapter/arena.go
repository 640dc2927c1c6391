package fsadapter

import (
	"encoding/binary"
	"unicode/utf16"
)

// arenaBuilder assembles a synthetic wire-format listing buffer matching
// the plugin record layout, for DirectoryListingSource
// implementations backed by os.ReadDir rather than a real plugin ABI.
type arenaBuilder struct {
	buf []byte
}

func (b *arenaBuilder) append(e Entry, last bool) {
	nameUTF16 := utf16.Encode([]rune(e.Name))
	nameBytes := make([]byte, len(nameUTF16)*2)
	for i, u := range nameUTF16 {
		binary.LittleEndian.PutUint16(nameBytes[i*2:], u)
	}

	recordStart := len(b.buf)
	record := make([]byte, recordHeaderSize+len(nameBytes))
	binary.LittleEndian.PutUint32(record[4:8], uint32(e.Attributes))
	binary.LittleEndian.PutUint64(record[8:16], uint64(e.LastWriteTime))
	binary.LittleEndian.PutUint64(record[16:24], e.SizeBytes)
	binary.LittleEndian.PutUint16(record[24:26], uint16(len(nameBytes)))
	copy(record[recordHeaderSize:], nameBytes)

	b.buf = append(b.buf, record...)

	if !last {
		nextOffset := uint32(len(b.buf) - recordStart)
		binary.LittleEndian.PutUint32(b.buf[recordStart:recordStart+4], nextOffset)
	}
}

// build returns the assembled buffer and its logical size (equal to its
// allocated size: this builder never over-allocates).
func (b *arenaBuilder) build() (data []byte, bufferSize, allocatedSize uint32) {
	n := uint32(len(b.buf))
	return b.buf, n, n
}

// buildArena encodes entries into a single wire-format buffer.
func buildArena(entries []Entry) (data []byte, bufferSize, allocatedSize uint32) {
	var b arenaBuilder
	for i, e := range entries {
		b.append(e, i == len(entries)-1)
	}
	return b.build()
}
