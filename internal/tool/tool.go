// Package tool defines the catalog of tools ToolView offers.
//
// Built-in tools form a closed set: each has an ID constant and a row in a
// metadata table that is fixed at compile time. Listing pages filter that
// table by category or tag. Tools added at runtime (Lua scripts) live only
// in a Registry and carry the Custom ID.
package tool

import (
	"strings"
)

// ID identifies a built-in tool.
type ID int

// Built-in tools.
const (
	// Custom marks a tool registered at runtime.
	Custom ID = iota

	UpperCase
	LowerCase
	TitleCase
	SentenceCase
	ReverseText
	TrimWhitespace
	CollapseSpaces
	RemoveEmptyLines
	RemoveDuplicateLines
	SortLines
	Slugify
	TextStats
	Base64Encode
	Base64Decode
	URLEncode
	URLDecode
	UUIDGenerator
	LoremIpsum

	numIDs
)

// Category groups tools on listing pages.
type Category int

const (
	CategoryText Category = iota
	CategoryGenerator
	CategoryScript
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryText:
		return "text"
	case CategoryGenerator:
		return "generator"
	case CategoryScript:
		return "script"
	default:
		return "unknown"
	}
}

// Info describes a tool.
type Info struct {
	ID          ID
	Slug        string
	Name        string
	Category    Category
	Tags        []string
	Description string
}

// HasTag reports whether the tool carries tag (case-insensitive).
func (i Info) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

var table = [numIDs]Info{
	UpperCase: {
		Slug: "upper-case", Name: "UPPER CASE", Category: CategoryText,
		Tags:        []string{"case", "format"},
		Description: "Convert every letter to upper case.",
	},
	LowerCase: {
		Slug: "lower-case", Name: "lower case", Category: CategoryText,
		Tags:        []string{"case", "format"},
		Description: "Convert every letter to lower case.",
	},
	TitleCase: {
		Slug: "title-case", Name: "Title Case", Category: CategoryText,
		Tags:        []string{"case", "format"},
		Description: "Capitalise the first letter of every word.",
	},
	SentenceCase: {
		Slug: "sentence-case", Name: "Sentence case", Category: CategoryText,
		Tags:        []string{"case", "format"},
		Description: "Capitalise the first letter of every sentence.",
	},
	ReverseText: {
		Slug: "reverse", Name: "Reverse Text", Category: CategoryText,
		Tags:        []string{"order"},
		Description: "Reverse the characters of the text.",
	},
	TrimWhitespace: {
		Slug: "trim", Name: "Trim Whitespace", Category: CategoryText,
		Tags:        []string{"whitespace", "cleanup"},
		Description: "Remove leading and trailing whitespace from every line.",
	},
	CollapseSpaces: {
		Slug: "collapse-spaces", Name: "Remove Extra Spaces", Category: CategoryText,
		Tags:        []string{"whitespace", "cleanup"},
		Description: "Replace runs of spaces and tabs with a single space.",
	},
	RemoveEmptyLines: {
		Slug: "remove-empty-lines", Name: "Remove Empty Lines", Category: CategoryText,
		Tags:        []string{"lines", "cleanup"},
		Description: "Drop lines that are empty or only whitespace.",
	},
	RemoveDuplicateLines: {
		Slug: "dedupe-lines", Name: "Remove Duplicate Lines", Category: CategoryText,
		Tags:        []string{"lines", "cleanup"},
		Description: "Keep the first occurrence of every line.",
	},
	SortLines: {
		Slug: "sort-lines", Name: "Sort Lines", Category: CategoryText,
		Tags:        []string{"lines", "order"},
		Description: "Sort lines alphabetically.",
	},
	Slugify: {
		Slug: "slugify", Name: "Slugify", Category: CategoryText,
		Tags:        []string{"url", "format"},
		Description: "Turn text into a lower-case, hyphen separated URL slug.",
	},
	TextStats: {
		Slug: "stats", Name: "Word Counter", Category: CategoryText,
		Tags:        []string{"count"},
		Description: "Report character, word and line counts.",
	},
	Base64Encode: {
		Slug: "base64-encode", Name: "Base64 Encode", Category: CategoryText,
		Tags:        []string{"encoding"},
		Description: "Encode text as standard base64.",
	},
	Base64Decode: {
		Slug: "base64-decode", Name: "Base64 Decode", Category: CategoryText,
		Tags:        []string{"encoding"},
		Description: "Decode standard base64 text.",
	},
	URLEncode: {
		Slug: "url-encode", Name: "URL Encode", Category: CategoryText,
		Tags:        []string{"encoding", "url"},
		Description: "Percent-encode text for use in a query string.",
	},
	URLDecode: {
		Slug: "url-decode", Name: "URL Decode", Category: CategoryText,
		Tags:        []string{"encoding", "url"},
		Description: "Decode percent-encoded text.",
	},
	UUIDGenerator: {
		Slug: "uuid", Name: "UUID Generator", Category: CategoryGenerator,
		Tags:        []string{"random", "id"},
		Description: "Generate a random version 4 UUID.",
	},
	LoremIpsum: {
		Slug: "lorem-ipsum", Name: "Lorem Ipsum", Category: CategoryGenerator,
		Tags:        []string{"placeholder"},
		Description: "Generate a paragraph of placeholder text.",
	},
}

func init() {
	for id := range table {
		table[id].ID = ID(id)
	}
}

// Valid reports whether id names a built-in tool.
func (id ID) Valid() bool {
	return id > Custom && id < numIDs
}

// String returns the tool slug.
func (id ID) String() string {
	if !id.Valid() {
		return "custom"
	}
	return table[id].Slug
}

// Lookup returns the metadata for a built-in tool.
func Lookup(id ID) (Info, bool) {
	if !id.Valid() {
		return Info{}, false
	}
	return table[id], true
}

// BySlug finds a built-in tool by slug.
func BySlug(slug string) (Info, bool) {
	for id := Custom + 1; id < numIDs; id++ {
		if table[id].Slug == slug {
			return table[id], true
		}
	}
	return Info{}, false
}

// All returns every built-in tool in ID order.
func All() []Info {
	out := make([]Info, 0, numIDs-1)
	for id := Custom + 1; id < numIDs; id++ {
		out = append(out, table[id])
	}
	return out
}

// ByCategory returns the built-in tools in category c.
func ByCategory(c Category) []Info {
	return filter(All(), func(i Info) bool { return i.Category == c })
}

// WithTag returns the built-in tools carrying tag.
func WithTag(tag string) []Info {
	return filter(All(), func(i Info) bool { return i.HasTag(tag) })
}

func filter(infos []Info, keep func(Info) bool) []Info {
	var out []Info
	for _, i := range infos {
		if keep(i) {
			out = append(out, i)
		}
	}
	return out
}
