package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"github.com/matzehuels/relief/pkg/heightmap"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashGrid fingerprints a grid by its shape and the exact bit pattern of
// every cell. Grids that differ only in NaN payloads hash differently.
func HashGrid(g *heightmap.Grid) string {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(g.Height()))
	binary.LittleEndian.PutUint32(buf[4:], uint32(g.Width()))
	h.Write(buf[:])
	for _, v := range g.Values() {
		binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(v))
		h.Write(buf[:4])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashGrids combines several grid hashes in order.
func HashGrids(grids ...*heightmap.Grid) string {
	if len(grids) == 1 {
		return HashGrid(grids[0])
	}
	hashes := make([]string, len(grids))
	for i, g := range grids {
		hashes[i] = HashGrid(g)
	}
	data, _ := json.Marshal(hashes)
	return Hash(data)
}
