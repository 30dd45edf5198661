package types

import (
	"crypto/sha1"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ModuleID is a git-style SHA-1 content hash (20 bytes) of an accepted
// artifact. It equals `git hash-object` of the output file, so corpus files
// can be cross-checked against repository blobs, and identical modules
// extracted from unrelated repositories hash to the same ID.
type ModuleID [20]byte

// ComputeModuleID hashes artifact content: SHA-1("blob {len}\0{content}").
func ComputeModuleID(content []byte) ModuleID {
	header := fmt.Sprintf("blob %d\x00", len(content))
	h := sha1.New()
	h.Write([]byte(header))
	h.Write(content)

	var id ModuleID
	copy(id[:], h.Sum(nil))
	return id
}

// Hex returns the 40-character hex form.
func (id ModuleID) Hex() string {
	return hex.EncodeToString(id[:])
}

// String implements Stringer (returns Hex()).
func (id ModuleID) String() string {
	return id.Hex()
}

// IsZero reports whether the ID is unset (no artifact was hashed).
func (id ModuleID) IsZero() bool {
	return id == ModuleID{}
}

// ParseModuleID parses a 40-char hex string.
func ParseModuleID(hexStr string) (ModuleID, error) {
	if len(hexStr) != 40 {
		return ModuleID{}, fmt.Errorf("invalid module ID length: expected 40, got %d", len(hexStr))
	}

	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return ModuleID{}, fmt.Errorf("invalid hex string: %w", err)
	}

	var id ModuleID
	copy(id[:], decoded)
	return id, nil
}

// MarshalJSON implements json.Marshaler.
func (id ModuleID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ModuleID) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}

	parsed, err := ParseModuleID(hexStr)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

// Value implements driver.Valuer for SQL serialization.
func (id ModuleID) Value() (driver.Value, error) {
	return id.Hex(), nil
}

// Scan implements sql.Scanner for SQL deserialization.
func (id *ModuleID) Scan(value interface{}) error {
	if value == nil {
		return fmt.Errorf("cannot scan nil into ModuleID")
	}

	var hexStr string
	switch v := value.(type) {
	case string:
		hexStr = v
	case []byte:
		hexStr = string(v)
	default:
		return fmt.Errorf("cannot scan type %T into ModuleID", value)
	}

	parsed, err := ParseModuleID(hexStr)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}
