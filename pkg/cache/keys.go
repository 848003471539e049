package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey identifies a computed layout of a room configuration.
	LayoutKey(configHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies one rendered document of a plan.
	ArtifactKey(planHash string, opts ArtifactKeyOpts) string

	// ArchiveKey identifies a credential archive.
	ArchiveKey(batchHash string, format string) string
}

// LayoutKeyOpts are the inputs besides the configuration that change a layout.
type LayoutKeyOpts struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Board       string  `json:"board"`
	MaxSeatSize float64 `json:"max_seat_size"`
}

// ArtifactKeyOpts are the inputs besides the plan that change a document.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Title       string  `json:"title,omitempty"`
	MaxSeatSize float64 `json:"max_seat_size,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
	MaxSeats    int     `json:"max_seats"`
	MaxColumns  int     `json:"max_columns"`
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(configHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", configHash, opts)
}

// ArtifactKey returns "artifact:<format>:<sha256>".
func (DefaultKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, planHash, opts)
}

// ArchiveKey returns "archive:<format>:<sha256>".
func (DefaultKeyer) ArchiveKey(batchHash string, format string) string {
	return hashKey("archive:"+format, batchHash)
}

// ScopedKeyer prefixes every key of an inner keyer, giving each
// establishment its own namespace.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (the default keyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(configHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(configHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(planHash, opts)
}

func (k *ScopedKeyer) ArchiveKey(batchHash string, format string) string {
	return k.prefix + k.inner.ArchiveKey(batchHash, format)
}

// hashKey returns prefix:sha256(json(parts)).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON returns the hex SHA-256 of v's JSON encoding.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}
