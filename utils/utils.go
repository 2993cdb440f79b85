package utils

import (
	"crypto/md5"
	"encoding/hex"
	"math/rand"
	"regexp"
	"strings"
)

// ContainsString returns true iff the provided string slice hay contains
// string needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// RandomAlphabetString returns a random lower-case string of length n.
func RandomAlphabetString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// TextToMd5Hash returns the hex md5 digest of the given text.
func TextToMd5Hash(text string) string {
	digest := md5.Sum([]byte(text))
	return hex.EncodeToString(digest[:])
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	slugUmlauts = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")
)

// Slugify turns a display name into the url-safe identifier used by the
// retrieval facets, e.g. "Vertrauenswürdiger Account" -> "vertrauenswuerdiger-account".
func Slugify(name string) string {
	s := slugUmlauts.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = slugInvalid.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
