package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ShortLen is the number of hex characters shown when a fingerprint is abbreviated.
const ShortLen = 8

// Fingerprint returns the hex SHA-256 of c's canonical JSON. c should already be
// resolved so that defaults are part of the digest.
func Fingerprint(c ContainerSpec) string {
	sum := sha256.Sum256(CanonicalJSON(c))
	return hex.EncodeToString(sum[:])
}

// CanonicalJSON serializes c with sorted keys and no insignificant whitespace.
// Optional fields appear only when set.
func CanonicalJSON(c ContainerSpec) []byte {
	m := map[string]any{
		"name":     c.Name,
		"ip":       c.IP,
		"user":     c.User,
		"image":    c.Image,
		"hostname": c.Hostname,
	}
	if c.UIDGID != nil {
		m["uid_gid"] = *c.UIDGID
	}
	if c.Password != nil {
		if c.Password.Disabled {
			m["password"] = false
		} else {
			m["password"] = c.Password.Value
		}
	}
	if c.Wheel != nil {
		m["wheel"] = *c.Wheel
	}
	if len(c.AuthorizedKeys) > 0 {
		m["authorized_keys"] = c.AuthorizedKeys
	}

	// encoding/json sorts map keys. Strings, ints, bools and string slices can't fail.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(m)
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}

// Short abbreviates a fingerprint for display.
func Short(fp string) string {
	if len(fp) <= ShortLen {
		return fp
	}
	return fp[:ShortLen]
}
