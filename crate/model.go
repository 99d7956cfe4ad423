// Package crate models the per-group metadata manifest: an RO-Crate style
// JSON-LD graph holding one root description, the registered files and
// their authors.
//
// The package is pure. Parse and Serialize convert between bytes and the
// typed model, Reconcile merges a newly registered file into a manifest.
// Storage is the caller's concern.
package crate

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
)

// JSON-LD identifiers and types used in the graph.
const (
	ContextURL = "https://w3id.org/ro/crate/1.1/context"
	ProfileURL = "https://w3id.org/ro/crate/1.1"

	MetadataID = "ro-crate-metadata.json"
	RootID     = "./"

	TypeCreativeWork = "CreativeWork"
	TypeDataset      = "Dataset"
	TypeFile         = "File"
	TypePerson       = "Person"
)

// fileIDSeparator joins the group URI and the file id in a file identifier.
const fileIDSeparator = "%"

// Group identifies the manifest owner and carries the URI its file ids are built on.
type Group struct {
	ID  string
	URI string
}

// NewGroup builds a Group whose URI is "{baseURI}/{id}".
func NewGroup(baseURI, id string) Group {
	return Group{
		ID:  id,
		URI: strings.TrimSuffix(baseURI, "/") + "/" + id,
	}
}

// FileURI returns the identifier of fileID within the group.
func (g Group) FileURI(fileID string) string {
	return g.URI + fileIDSeparator + fileID
}

// Manifest is the in-memory form of a group manifest.
// Files and Authors are kept sorted by Identifier.
type Manifest struct {
	Root    Root
	Files   []FileEntry
	Authors []AuthorEntry

	// Extra holds graph nodes of other types, kept verbatim. Values are held
	// in decoded JSON form, with numbers as json.Number.
	Extra []Node
}

// Root is the dataset description of the group.
type Root struct {
	Identifier    string
	Name          string
	Description   string
	Version       int
	URL           string
	DatePublished string
}

// FileEntry describes one registered file.
type FileEntry struct {
	Identifier     string
	Name           string
	EncodingFormat string
	Description    string
	Version        int
	DatePublished  string

	// Author is the Identifier of an AuthorEntry in the same manifest, or empty.
	Author string

	ContentSize int64
	License     string
	DateCreated string
}

// AuthorEntry describes a person who uploaded files to the group.
type AuthorEntry struct {
	Identifier string
	Name       string
}

// Node is a graph node the service does not model.
type Node map[string]any

// ID returns the group identifier.
func (m *Manifest) ID() string {
	return m.Root.Identifier
}

// File returns the entry with the given identifier.
func (m *Manifest) File(identifier string) (FileEntry, bool) {
	i, ok := searchFile(m.Files, identifier)
	if !ok {
		return FileEntry{}, false
	}
	return m.Files[i], true
}

// Author returns the author with the given identifier.
func (m *Manifest) Author(identifier string) (AuthorEntry, bool) {
	i, ok := searchAuthor(m.Authors, identifier)
	if !ok {
		return AuthorEntry{}, false
	}
	return m.Authors[i], true
}

// Clone returns a deep copy. Extra nodes are copied through JSON, so the
// copy holds them in the same form Parse produces.
func (m *Manifest) Clone() *Manifest {
	c := &Manifest{
		Root:    m.Root,
		Files:   slices.Clone(m.Files),
		Authors: slices.Clone(m.Authors),
	}
	for _, n := range m.Extra {
		c.Extra = append(c.Extra, cloneNode(n))
	}
	return c
}

func cloneNode(n Node) Node {
	raw, err := json.Marshal(n)
	if err == nil {
		cp := Node{}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err = dec.Decode(&cp); err == nil {
			return cp
		}
	}

	cp := make(Node, len(n))
	for k, v := range n {
		cp[k] = v
	}
	return cp
}

// Normalize sorts Files and Authors by Identifier.
func (m *Manifest) Normalize() {
	slices.SortStableFunc(m.Files, func(a, b FileEntry) int { return strings.Compare(a.Identifier, b.Identifier) })
	slices.SortStableFunc(m.Authors, func(a, b AuthorEntry) int { return strings.Compare(a.Identifier, b.Identifier) })
}

func searchFile(files []FileEntry, identifier string) (int, bool) {
	return slices.BinarySearchFunc(files, identifier, func(f FileEntry, id string) int {
		return strings.Compare(f.Identifier, id)
	})
}

func searchAuthor(authors []AuthorEntry, identifier string) (int, bool) {
	return slices.BinarySearchFunc(authors, identifier, func(a AuthorEntry, id string) int {
		return strings.Compare(a.Identifier, id)
	})
}
