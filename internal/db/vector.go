package db

import (
	"encoding/binary"
	"fmt"
)

// EncodeVector packs v as little-endian float32 values, the layout stored
// in the verses table and the embedding cache.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	if _, err := binary.Encode(buf, binary.LittleEndian, v); err != nil {
		panic(fmt.Sprintf("encode vector: %v", err))
	}
	return buf
}

// DecodeVector unpacks a blob written by EncodeVector.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("vector blob of %d bytes is not float32-aligned", len(data))
	}
	vec := make([]float32, len(data)/4)
	if _, err := binary.Decode(data, binary.LittleEndian, vec); err != nil {
		return nil, fmt.Errorf("decode vector: %w", err)
	}
	return vec, nil
}
