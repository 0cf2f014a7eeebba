// Package texttool implements the transforms behind the built-in text and
// generator tools. Every transform is a pure function of its input except
// the generators, which ignore the input and produce fresh text.
package texttool

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pralaynaskar/ToolView-sub001/internal/tool"
)

// ErrDecode is returned when encoded input is malformed.
var ErrDecode = errors.New("malformed input")

// Builtins returns the transform for every built-in tool.
func Builtins() map[tool.ID]tool.Transform {
	return map[tool.ID]tool.Transform{
		tool.UpperCase:            pure(Upper),
		tool.LowerCase:            pure(Lower),
		tool.TitleCase:            pure(Title),
		tool.SentenceCase:         pure(Sentence),
		tool.ReverseText:          pure(Reverse),
		tool.TrimWhitespace:       pure(TrimLines),
		tool.CollapseSpaces:       pure(CollapseSpaces),
		tool.RemoveEmptyLines:     pure(RemoveEmptyLines),
		tool.RemoveDuplicateLines: pure(RemoveDuplicateLines),
		tool.SortLines:            pure(SortLines),
		tool.Slugify:              pure(Slugify),
		tool.TextStats:            pure(Stats),
		tool.Base64Encode:         pure(Base64Encode),
		tool.Base64Decode:         Base64Decode,
		tool.URLEncode:            pure(URLEncode),
		tool.URLDecode:            URLDecode,
		tool.UUIDGenerator:        pure(func(string) string { return uuid.NewString() }),
		tool.LoremIpsum:           pure(func(string) string { return Lorem }),
	}
}

func pure(fn func(string) string) tool.Transform {
	return func(s string) (string, error) {
		return fn(s), nil
	}
}

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
	title = cases.Title(language.English)
)

// Upper converts s to upper case.
func Upper(s string) string {
	return upper.String(s)
}

// Lower converts s to lower case.
func Lower(s string) string {
	return lower.String(s)
}

// Title capitalises the first letter of every word and lowers the rest.
func Title(s string) string {
	return title.String(s)
}

// Sentence lowers s and capitalises the first letter of each sentence.
// A sentence starts at the beginning of the text or after '.', '!' or '?'
// followed by whitespace.
func Sentence(s string) string {
	s = Lower(s)
	var b strings.Builder
	b.Grow(len(s))

	capNext := true
	sawEnd := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			if capNext {
				r = unicode.ToUpper(r)
				capNext = false
			}
			sawEnd = false
		case r == '.' || r == '!' || r == '?':
			sawEnd = true
		case unicode.IsSpace(r):
			if sawEnd {
				capNext = true
			}
		default:
			sawEnd = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Reverse reverses s by grapheme cluster so combining marks and emoji
// sequences stay intact.
func Reverse(s string) string {
	var clusters []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := len(clusters) - 1; i >= 0; i-- {
		b.WriteString(clusters[i])
	}
	return b.String()
}

// TrimLines removes leading and trailing whitespace from every line.
func TrimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

var spaceRun = regexp.MustCompile(`[ \t]+`)

// CollapseSpaces replaces runs of spaces and tabs with one space.
func CollapseSpaces(s string) string {
	return spaceRun.ReplaceAllString(s, " ")
}

// RemoveEmptyLines drops blank lines.
func RemoveEmptyLines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// RemoveDuplicateLines keeps the first occurrence of every line.
func RemoveDuplicateLines(s string) string {
	seen := make(map[string]bool)
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// SortLines sorts lines using English collation, so case and accents do
// not split otherwise equal words.
func SortLines(s string) string {
	lines := strings.Split(s, "\n")
	c := collate.New(language.English, collate.IgnoreCase)
	c.SortStrings(lines)
	return strings.Join(lines, "\n")
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify produces a lower-case, hyphen separated ASCII slug.
// Accents are stripped before non-alphanumeric runs become hyphens.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	slug := nonSlug.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}

// Stats reports character, word and line counts of s.
// Characters are counted as grapheme clusters.
func Stats(s string) string {
	chars := uniseg.GraphemeClusterCount(s)
	words := len(strings.Fields(s))
	lines := 0
	if s != "" {
		lines = strings.Count(s, "\n") + 1
	}
	return fmt.Sprintf("Characters: %d\nWords: %d\nLines: %d", chars, words, lines)
}

// Base64Encode encodes s as standard padded base64.
func Base64Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// Base64Decode decodes standard base64. Surrounding whitespace is ignored.
func Base64Decode(s string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("base64: %w: %v", ErrDecode, err)
	}
	return string(data), nil
}

// URLEncode percent-encodes s for use in a query string.
func URLEncode(s string) string {
	return url.QueryEscape(s)
}

// URLDecode reverses URLEncode.
func URLDecode(s string) (string, error) {
	out, err := url.QueryUnescape(s)
	if err != nil {
		return "", fmt.Errorf("url: %w: %v", ErrDecode, err)
	}
	return out, nil
}

// Lorem is the placeholder paragraph produced by the lorem ipsum tool.
const Lorem = "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do " +
	"eiusmod tempor incididunt ut labore et dolore magna aliqua. Ut enim ad " +
	"minim veniam, quis nostrud exercitation ullamco laboris nisi ut aliquip " +
	"ex ea commodo consequat."
