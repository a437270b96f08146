package cluster

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	domclu "github.com/kailas-cloud/topix/internal/domain/cluster"
)

// Hash field names of a stored cluster.
const (
	fieldVector = "vector"
	fieldSize   = "size"
)

func clusterToHash(c domclu.Cluster) map[string]string {
	return map[string]string{
		fieldVector: vectorToBytes(c.Centroid()),
		fieldSize:   strconv.Itoa(c.Size()),
	}
}

func clusterFromHash(id string, m map[string]string) (domclu.Cluster, error) {
	raw, ok := m[fieldVector]
	if !ok {
		return domclu.Cluster{}, fmt.Errorf("cluster %s: missing vector field", id)
	}
	centroid, err := bytesToVector(raw)
	if err != nil {
		return domclu.Cluster{}, fmt.Errorf("cluster %s: %w", id, err)
	}

	size, err := strconv.Atoi(m[fieldSize])
	if err != nil {
		return domclu.Cluster{}, fmt.Errorf("cluster %s: bad size %q", id, m[fieldSize])
	}

	return domclu.Reconstruct(id, centroid, size), nil
}

// vectorToBytes encodes a float32 vector as little-endian bytes, the layout
// RediSearch expects for VECTOR fields of TYPE FLOAT32.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func bytesToVector(s string) ([]float32, error) {
	if len(s)%4 != 0 {
		return nil, fmt.Errorf("vector payload length %d not a multiple of 4", len(s))
	}
	v := make([]float32, len(s)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32([]byte(s[i*4 : i*4+4])))
	}
	return v, nil
}
