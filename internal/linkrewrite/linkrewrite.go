// Package linkrewrite turns a resolved vault path and an optional section
// into the destination URL and anchor a CommonMark link or image event
// needs: relativized against the root note's destination directory,
// percent-encoded per path segment, with the heading anchor slugified the
// way Obsidian (and most static site generators) slugify headings.
package linkrewrite

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DestinationURL computes the percent-encoded, relative destination for a
// link or image pointing at targetDest (an absolute or root-relative
// destination path) from a note whose own destination file lives at
// rootDestDir (the directory containing the root note's destination
// file, not the current or embedded note's). section, if non-empty, is
// slugified and appended as a "#slug" anchor; an empty slugification
// result is dropped rather than producing a bare "#".
func DestinationURL(rootDestDir, targetDest, section string) string {
	rel, err := filepath.Rel(rootDestDir, targetDest)
	if err != nil {
		rel = targetDest
	}
	rel = filepath.ToSlash(rel)

	encoded := encodeSegments(rel)

	if section == "" {
		return encoded
	}
	slug := Slugify(section)
	if slug == "" {
		return encoded
	}
	return encoded + "#" + slug
}

// SelfAnchor computes a self-reference anchor ("#slug") for an empty-target
// reference whose section is the current note's heading. An empty
// slugification result yields an empty string: no anchor is emitted.
func SelfAnchor(section string) string {
	slug := Slugify(section)
	if slug == "" {
		return ""
	}
	return "#" + slug
}

// encodeSegments percent-encodes each "/"-delimited segment of rel
// independently, always escaping space, '?', '#', '%' in addition to
// url.PathEscape's own unsafe set, while leaving the "/" separators
// themselves untouched.
func encodeSegments(rel string) string {
	segments := strings.Split(rel, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// Slugify computes a heading anchor slug by Unicode-normalizing to NFKD,
// dropping the combining marks (category Mn) that decomposition splits
// off, lowercasing, replacing runs of other non-alphanumeric characters
// with a single hyphen, then trimming leading/trailing hyphens.
// Dropping the marks rather than hyphenating them keeps an accented
// letter inside its word ("Café" slugifies to "cafe").
func Slugify(heading string) string {
	decomposed := norm.NFKD.String(heading)

	var sb strings.Builder
	prevHyphen := false
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue // combining mark split off by the NFKD decomposition above
		}
		lower := unicode.ToLower(r)
		if unicode.IsLetter(lower) || unicode.IsDigit(lower) {
			sb.WriteRune(lower)
			prevHyphen = false
			continue
		}
		if !prevHyphen {
			sb.WriteByte('-')
			prevHyphen = true
		}
	}

	return strings.Trim(sb.String(), "-")
}

// IsEmbeddableAsset reports whether target's extension (case-insensitive)
// is in exts, the configured set of extensions the Embed Expander renders
// as an image rather than recursing into as a Markdown note or linking to
// as a generic asset.
func IsEmbeddableAsset(target string, exts []string) bool {
	ext := strings.ToLower(path.Ext(target))
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
