package pif

import (
	"bytes"
	"encoding/json"
	"errors"
	"unicode/utf8"
)

// Metadata is the free-form content of the META chunk. Values are what
// encoding/json produces: strings, float64, bool, nil, []any and
// map[string]any.
type Metadata map[string]any

var errMetadataNotObject = errors.New("pif: META is not a JSON object")

// marshal renders m as indented JSON without HTML escaping.
func (m Metadata) marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func parseMetadata(data []byte) (Metadata, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("pif: META is not valid UTF-8")
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errMetadataNotObject
	}
	return m, nil
}

// lenientMetadata returns the last of chunks that parses as metadata.
// Chunks that fail to parse are skipped and logged. When none parses the
// result is empty metadata, and the error of the last chunk is returned
// for callers that want to report it.
func lenientMetadata(chunks [][]byte) (Metadata, error) {
	var lastChunkErr error
	for i := len(chunks) - 1; i >= 0; i-- {
		m, err := parseMetadata(chunks[i])
		if err == nil {
			return m, nil
		}
		Logger().Warn("pif: ignoring unreadable META chunk", "size", len(chunks[i]), "err", err)
		if lastChunkErr == nil {
			lastChunkErr = err
		}
	}
	return Metadata{}, lastChunkErr
}
