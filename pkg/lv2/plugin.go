package lv2

import (
	"strings"

	"github.com/lv2meta/lv2meta/internal/rdf"
	"github.com/lv2meta/lv2meta/internal/sparql"
)

// Plugin identifies one discovered plugin. The URI is the subject of every
// query issued on its behalf; the data URI names the graph holding its
// description.
type Plugin struct {
	uri        string
	bundleURI  string
	dataURI    string
	libraryURI string
}

// NewPlugin creates a plugin descriptor. The URI must not be empty.
func NewPlugin(uri, bundleURI, dataURI, libraryURI string) (*Plugin, error) {
	if uri == "" {
		return nil, contractViolation("NewPlugin", "", "", "empty plugin URI")
	}
	return &Plugin{
		uri:        uri,
		bundleURI:  bundleURI,
		dataURI:    dataURI,
		libraryURI: libraryURI,
	}, nil
}

// URI returns the plugin's identity
func (p *Plugin) URI() string { return p.uri }

// BundleURI returns the location of the plugin's bundle directory
func (p *Plugin) BundleURI() string { return p.bundleURI }

// DataURI returns the location of the plugin's data file
func (p *Plugin) DataURI() string { return p.dataURI }

// LibraryURI returns the location of the plugin's shared library
func (p *Plugin) LibraryURI() string { return p.libraryURI }

// Duplicate returns an independent descriptor with the same identity.
// Strings are immutable, so the copy never aliases mutable state.
func (p *Plugin) Duplicate() *Plugin {
	dup := *p
	return &dup
}

// BundlePath returns the bundle location as a local path, or false when it
// is not a file URI.
func (p *Plugin) BundlePath() (string, bool) {
	return LocalPath(p.bundleURI)
}

// DataPath returns the data location as a local path, or false when it is
// not a file URI.
func (p *Plugin) DataPath() (string, bool) {
	return LocalPath(p.dataURI)
}

// LibraryPath returns the library location as a local path, or false when
// it is not a file URI.
func (p *Plugin) LibraryPath() (string, bool) {
	return LocalPath(p.libraryURI)
}

// QueryContext binds the plugin to the "plugin:" and "data:" query prefixes
func (p *Plugin) QueryContext() sparql.QueryContext {
	return sparql.QueryContext{
		Subject:    p.uri,
		Graph:      p.dataURI,
		Namespaces: Namespaces(),
	}
}

// LocalPath strips the file scheme from location verbatim. Any other
// scheme yields false.
func LocalPath(location string) (string, bool) {
	if !strings.HasPrefix(location, rdf.FileScheme) {
		return "", false
	}
	return location[len(rdf.FileScheme):], true
}
