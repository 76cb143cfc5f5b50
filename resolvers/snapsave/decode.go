package snapsave

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The service returns its result markup wrapped in an eval()-packed script:
// a payload string, a substitution alphabet, an offset and a radix. The
// packer encodes each byte as (value+offset) in base radix, with digits
// written as alphabet characters and entries separated by alphabet[radix].

const baseCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ+/"

var (
	packedArgsRe = regexp.MustCompile(`\("([^"]+)",(\d+),"([^"]+)",(\d+),(\d+),(\d+)\)`)
	innerHTMLRe  = regexp.MustCompile(`(?s)innerHTML\s*=\s*"(.+?)";`)
	htmlEscapes  = strings.NewReplacer(`\"`, `"`, `\/`, `/`, `\\`, `\`, `\n`, "", `\t`, "")
)

func decodeResponse(body string) (string, error) {
	m := packedArgsRe.FindStringSubmatch(body)
	if m == nil {
		// Occasionally the result comes back as plain markup.
		if strings.Contains(body, "href") {
			return body, nil
		}
		return "", fmt.Errorf("unrecognized response format")
	}
	offset, err := strconv.Atoi(m[4])
	if err != nil {
		return "", fmt.Errorf("bad offset: %w", err)
	}
	radix, err := strconv.Atoi(m[5])
	if err != nil {
		return "", fmt.Errorf("bad radix: %w", err)
	}
	decoded, err := unpack(m[1], m[3], offset, radix)
	if err != nil {
		return "", err
	}
	if html := innerHTMLRe.FindStringSubmatch(decoded); html != nil {
		return htmlEscapes.Replace(html[1]), nil
	}
	return decoded, nil
}

func unpack(payload, alphabet string, offset, radix int) (string, error) {
	if radix >= len(alphabet) {
		return "", fmt.Errorf("radix %d out of range for alphabet of %d", radix, len(alphabet))
	}
	delim := alphabet[radix]
	var out []byte
	for i := 0; i < len(payload); i++ {
		var entry []byte
		for i < len(payload) && payload[i] != delim {
			entry = append(entry, payload[i])
			i++
		}
		digits := string(entry)
		for j := 0; j < len(alphabet); j++ {
			digits = strings.ReplaceAll(digits, string(alphabet[j]), strconv.Itoa(j))
		}
		v, err := parseBase(digits, radix)
		if err != nil {
			return "", err
		}
		out = append(out, byte(v-offset))
	}
	return string(out), nil
}

func parseBase(s string, radix int) (int, error) {
	v := 0
	for _, c := range s {
		idx := strings.IndexRune(baseCharset[:radix], c)
		if idx < 0 {
			return 0, fmt.Errorf("digit %q out of range for radix %d", c, radix)
		}
		v = v*radix + idx
	}
	return v, nil
}
