package pronounce

import (
	"crypto/md5"
	"fmt"
	"sort"
	"strings"
)

// ClipName derives the stable content-addressed filename for a clip request.
// Identical (provider, text, resolved options, format) always map to the
// same name, so an existing file can be served without re-running the
// provider. Callers should pass resolved options, which fold aliases of the
// same request onto one name.
func ClipName(provider, text string, opts map[string]string, format string) string {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(provider)
	b.WriteByte(0)
	b.WriteString(text)
	for _, k := range keys {
		b.WriteByte(0)
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(opts[k])
	}
	b.WriteByte(0)
	b.WriteString(format)

	return fmt.Sprintf("%x.%s", md5.Sum([]byte(b.String())), format)
}
