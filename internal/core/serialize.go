package core

// serialize.go derives Source Keys.
//
// The encoding matches PHP's serialize() for a list of strings, which is what
// Drupal's migrate framework hashes to build source_ids_hash. Values are not
// escaped: a component containing `";` can collide with a different list.
// Source identifiers are simple PIDs and datastream IDs, so the format is kept
// as the destination expects it.

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// EncodeSourceIDs serializes an ordered list of components.
//
//	EncodeSourceIDs([]string{"pid"}) == `a:1:{i:0;s:3:"pid";}`
func EncodeSourceIDs(ids []string) string {
	var b strings.Builder
	b.WriteString("a:")
	b.WriteString(strconv.Itoa(len(ids)))
	b.WriteString(":{")
	for i, v := range ids {
		b.WriteString("i:")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(";s:")
		b.WriteString(strconv.Itoa(len(v))) // byte length
		b.WriteString(`:"`)
		b.WriteString(v)
		b.WriteString(`";`)
	}
	b.WriteString("}")
	return b.String()
}

// HashSourceIDs returns the lowercase hex SHA-256 digest of an encoding.
func HashSourceIDs(encoded string) string {
	sum := sha256.Sum256([]byte(encoded))
	return hex.EncodeToString(sum[:])
}

// SourceKey returns the Source Key for ordered source-identifier components.
func SourceKey(ids ...string) string {
	return HashSourceIDs(EncodeSourceIDs(ids))
}
