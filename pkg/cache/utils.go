package cache

import (
	"fmt"
	"strings"
)

// GenerateKey joins a prefix and id into a colon-separated key.
func GenerateKey(prefix, id string) string {
	return prefix + ":" + id
}

// GenerateKeyWithParams appends each param to the prefix as a colon-separated
// segment.
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, param := range params {
		b.WriteByte(':')
		fmt.Fprintf(&b, "%v", param)
	}
	return b.String()
}
