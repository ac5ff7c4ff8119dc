package rdf

import (
	"net/url"
	"path/filepath"
	"strings"
)

// FileScheme is the scheme prefix of local file URIs
const FileScheme = "file://"

// FileURI returns the file:// URI of a local path. The path is made
// absolute and is not percent-encoded, so stripping FileScheme yields the
// path back verbatim.
func FileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return FileScheme + filepath.ToSlash(abs)
}

// DirURI returns the file:// URI of a directory with a trailing slash
func DirURI(path string) string {
	uri := FileURI(path)
	if !strings.HasSuffix(uri, "/") {
		uri += "/"
	}
	return uri
}

// ResolveIRI resolves ref against base. Absolute references are returned
// unchanged; unparsable input falls back to plain concatenation.
func ResolveIRI(base, ref string) string {
	if base == "" || isAbsolute(ref) {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return base + ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return base + ref
	}
	resolved := b.ResolveReference(r)
	if resolved.Scheme == "file" {
		// keep file URIs unescaped, matching FileURI
		out := FileScheme + resolved.Path
		if resolved.Fragment != "" {
			out += "#" + resolved.Fragment
		}
		return out
	}
	return resolved.String()
}

func isAbsolute(ref string) bool {
	i := strings.Index(ref, ":")
	if i <= 0 {
		return false
	}
	for _, c := range ref[:i] {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			return false
		}
	}
	return true
}
