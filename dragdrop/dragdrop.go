// Package dragdrop encodes and decodes the "Internal file drop" payload
// exchanged between panes: a little-endian binary blob of
// NUL-terminated UTF-16 strings identifying the source plugin, its
// instance context, and the dragged paths.
package dragdrop

import (
	"bytes"
	"encoding/binary"
	"errors"
	"unicode/utf16"
)

// Version is the only payload version readers accept.
const Version = 1

// ErrInvalidPayload is returned for any framing violation: wrong version,
// truncated fields, missing NUL terminators, or counts that overflow the
// blob.
var ErrInvalidPayload = errors.New("dragdrop: invalid payload")

// maxStringChars bounds a single string's declared UTF-16 length, so a
// corrupt count cannot drive a giant allocation before the range check.
const maxStringChars = 1 << 20

// Payload is one internal file drop.
type Payload struct {
	PluginID        string
	InstanceContext string
	Paths           []string
}

// Encode serializes p into the wire blob.
func (p *Payload) Encode() []byte {
	var buf bytes.Buffer

	writeU32 := func(v uint32) {
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], v)
		buf.Write(tmp[:])
	}
	writeString := func(s string) {
		for _, u := range utf16.Encode([]rune(s)) {
			var tmp [2]byte
			binary.LittleEndian.PutUint16(tmp[:], u)
			buf.Write(tmp[:])
		}
		buf.Write([]byte{0, 0}) // NUL terminator
	}

	pluginUnits := utf16.Encode([]rune(p.PluginID))
	contextUnits := utf16.Encode([]rune(p.InstanceContext))

	writeU32(Version)
	writeU32(uint32(len(pluginUnits)))
	writeU32(uint32(len(contextUnits)))
	writeU32(uint32(len(p.Paths)))
	writeString(p.PluginID)
	writeString(p.InstanceContext)

	for _, path := range p.Paths {
		writeU32(uint32(len(utf16.Encode([]rune(path)))))
		writeString(path)
	}

	return buf.Bytes()
}

// Decode parses a wire blob, validating every NUL terminator and
// range-checking every offset; any violation rejects the whole payload.
func Decode(data []byte) (*Payload, error) {
	r := &reader{data: data}

	version, err := r.u32()
	if err != nil || version != Version {
		return nil, ErrInvalidPayload
	}
	pluginChars, err := r.u32()
	if err != nil {
		return nil, ErrInvalidPayload
	}
	contextChars, err := r.u32()
	if err != nil {
		return nil, ErrInvalidPayload
	}
	pathCount, err := r.u32()
	if err != nil {
		return nil, ErrInvalidPayload
	}

	payload := &Payload{}
	if payload.PluginID, err = r.string(pluginChars); err != nil {
		return nil, ErrInvalidPayload
	}
	if payload.InstanceContext, err = r.string(contextChars); err != nil {
		return nil, ErrInvalidPayload
	}

	for i := uint32(0); i < pathCount; i++ {
		chars, err := r.u32()
		if err != nil {
			return nil, ErrInvalidPayload
		}
		path, err := r.string(chars)
		if err != nil {
			return nil, ErrInvalidPayload
		}
		payload.Paths = append(payload.Paths, path)
	}

	if !r.exhausted() {
		return nil, ErrInvalidPayload
	}
	return payload, nil
}

type reader struct {
	data []byte
	pos  int
}

func (r *reader) u32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, ErrInvalidPayload
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// string reads chars UTF-16 units plus the mandatory NUL terminator.
func (r *reader) string(chars uint32) (string, error) {
	if chars > maxStringChars {
		return "", ErrInvalidPayload
	}
	byteLen := int(chars)*2 + 2
	if r.pos+byteLen > len(r.data) {
		return "", ErrInvalidPayload
	}

	units := make([]uint16, chars)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(r.data[r.pos+i*2:])
		if units[i] == 0 {
			// Embedded NUL inside the declared length.
			return "", ErrInvalidPayload
		}
	}
	termOff := r.pos + int(chars)*2
	if r.data[termOff] != 0 || r.data[termOff+1] != 0 {
		return "", ErrInvalidPayload
	}

	r.pos += byteLen
	return string(utf16.Decode(units)), nil
}

func (r *reader) exhausted() bool { return r.pos == len(r.data) }
