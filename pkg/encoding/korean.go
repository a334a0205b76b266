// Package encoding converts the EUC-KR text stored in game archives.
package encoding

import (
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// DecodeEUCKR converts EUC-KR bytes to a UTF-8 string.
// Bytes that fail to decode are returned unchanged.
func DecodeEUCKR(data []byte) string {
	result, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// EncodeEUCKR converts a UTF-8 string to EUC-KR bytes.
// Strings that cannot be encoded are returned as their UTF-8 bytes.
func EncodeEUCKR(s string) []byte {
	result, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}
