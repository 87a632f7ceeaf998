package content

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeText converts raw bytes of imported file to string. UTF-8 is
// expected, byte order mark (UTF-8 or UTF-16) is honored and dropped, invalid
// sequences are replaced. Line endings are normalized to "\n".
func DecodeText(data []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("unable to decode text: %w", err)
	}
	return strings.ReplaceAll(strings.ReplaceAll(string(out), "\r\n", "\n"), "\r", "\n"), nil
}
