package crate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"slices"
	"strings"

	"github.com/code19m/errx"
	"github.com/gowebpki/jcs"
	"github.com/samber/lo"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/cast"
)

//go:embed manifest.schema.json
var schemaText string

const schemaURL = "https://filedepot.schemas.local/manifest.schema.json"

var manifestSchema = compileSchema()

func compileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, strings.NewReader(schemaText)); err != nil {
		panic(err)
	}
	return c.MustCompile(schemaURL)
}

type ref struct {
	ID string `json:"@id"`
}

// refs accepts a single reference object or an array of them.
type refs []ref

func (r *refs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var many []ref
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*r = many
		return nil
	}
	var one ref
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*r = refs{one}
	return nil
}

func (r refs) MarshalJSON() ([]byte, error) {
	if len(r) == 1 {
		return json.Marshal(r[0])
	}
	return json.Marshal([]ref(r))
}

// types accepts "@type" as a string or an array of strings.
type types []string

func (t *types) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var many []string
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*t = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*t = types{one}
	return nil
}

func (t types) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// number accepts JSON numbers and numeric strings.
type number int64

func (n *number) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		return err
	}
	*n = number(i)
	return nil
}

type document struct {
	Context any   `json:"@context"`
	Graph   []any `json:"@graph"`
}

type nodeHead struct {
	ID   string `json:"@id"`
	Type types  `json:"@type"`
}

type descriptorNode struct {
	ID         string `json:"@id"`
	Type       string `json:"@type"`
	ConformsTo ref    `json:"conformsTo"`
	About      ref    `json:"about"`
}

type rootNode struct {
	ID            string `json:"@id"`
	Type          types  `json:"@type"`
	Identifier    string `json:"identifier,omitempty"`
	Name          string `json:"name,omitempty"`
	Description   string `json:"description,omitempty"`
	Version       number `json:"version,omitempty"`
	URL           string `json:"url,omitempty"`
	DatePublished string `json:"datePublished,omitempty"`
	HasPart       []ref  `json:"hasPart,omitempty"`
}

type fileNode struct {
	ID             string `json:"@id"`
	Type           types  `json:"@type"`
	Name           string `json:"name,omitempty"`
	EncodingFormat string `json:"encodingFormat,omitempty"`
	Description    string `json:"description,omitempty"`
	Version        number `json:"version,omitempty"`
	DatePublished  string `json:"datePublished,omitempty"`
	Author         refs   `json:"author,omitempty"`
	ContentSize    number `json:"contentSize,omitempty"`
	License        string `json:"license,omitempty"`
	DateCreated    string `json:"dateCreated,omitempty"`
}

type personNode struct {
	ID   string `json:"@id"`
	Type types  `json:"@type"`
	Name string `json:"name,omitempty"`
}

// Parse decodes stored manifest bytes. Errors carry CodeMalformedManifest.
//
// The metadata descriptor node is dropped and rebuilt by Serialize. Nodes
// that are neither the root, a File nor a Person are kept in Extra.
// Repeated File or Person nodes collapse into one entry, the last one wins.
func Parse(data []byte) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, malformed("not a JSON document", errx.D{"error": err.Error()})
	}
	if err := manifestSchema.Validate(generic); err != nil {
		return nil, malformed("schema violation", errx.D{"error": err.Error()})
	}

	var doc struct {
		Graph []json.RawMessage `json:"@graph"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, malformed("not a JSON document", errx.D{"error": err.Error()})
	}

	m := &Manifest{}
	var hasRoot bool
	files := map[string]int{}
	authors := map[string]int{}

	for i, raw := range doc.Graph {
		var head nodeHead
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, malformed("unreadable node", errx.D{"index": i, "error": err.Error()})
		}

		switch {
		case head.ID == MetadataID:
			continue

		case head.ID == RootID:
			if hasRoot {
				return nil, malformed("duplicate root dataset", nil)
			}
			var n rootNode
			if err := json.Unmarshal(raw, &n); err != nil {
				return nil, malformed("unreadable root dataset", errx.D{"error": err.Error()})
			}
			if n.Identifier == "" {
				return nil, malformed("root dataset has no identifier", nil)
			}
			m.Root = Root{
				Identifier:    n.Identifier,
				Name:          n.Name,
				Description:   n.Description,
				Version:       int(n.Version),
				URL:           n.URL,
				DatePublished: n.DatePublished,
			}
			hasRoot = true

		case slices.Contains(head.Type, TypeFile):
			var n fileNode
			if err := json.Unmarshal(raw, &n); err != nil {
				return nil, malformed("unreadable file node", errx.D{"id": head.ID, "error": err.Error()})
			}
			entry := fileEntryFromNode(n)
			if at, ok := files[entry.Identifier]; ok {
				m.Files[at] = entry
				continue
			}
			files[entry.Identifier] = len(m.Files)
			m.Files = append(m.Files, entry)

		case slices.Contains(head.Type, TypePerson):
			var n personNode
			if err := json.Unmarshal(raw, &n); err != nil {
				return nil, malformed("unreadable person node", errx.D{"id": head.ID, "error": err.Error()})
			}
			entry := AuthorEntry{Identifier: n.ID, Name: n.Name}
			if at, ok := authors[entry.Identifier]; ok {
				m.Authors[at] = entry
				continue
			}
			authors[entry.Identifier] = len(m.Authors)
			m.Authors = append(m.Authors, entry)

		default:
			node := Node{}
			nd := json.NewDecoder(bytes.NewReader(raw))
			nd.UseNumber()
			if err := nd.Decode(&node); err != nil {
				return nil, malformed("unreadable node", errx.D{"id": head.ID, "error": err.Error()})
			}
			m.Extra = append(m.Extra, node)
		}
	}

	if !hasRoot {
		return nil, malformed("no root dataset", nil)
	}

	for _, f := range m.Files {
		if f.Author == "" {
			continue
		}
		if _, ok := authors[f.Author]; !ok {
			return nil, malformed("file references unknown author", errx.D{
				"file":   f.Identifier,
				"author": f.Author,
			})
		}
	}

	m.Normalize()
	return m, nil
}

func fileEntryFromNode(n fileNode) FileEntry {
	entry := FileEntry{
		Identifier:     n.ID,
		Name:           n.Name,
		EncodingFormat: n.EncodingFormat,
		Description:    n.Description,
		Version:        int(n.Version),
		DatePublished:  n.DatePublished,
		ContentSize:    int64(n.ContentSize),
		License:        n.License,
		DateCreated:    n.DateCreated,
	}
	if len(n.Author) > 0 {
		entry.Author = n.Author[0].ID
	}
	return entry
}

// Serialize encodes the manifest as a canonical (RFC 8785) JSON-LD document.
//
// Graph order is fixed: metadata descriptor, root dataset, files and then
// persons each sorted by identifier, then extra nodes in their stored order.
// Equal manifests always produce identical bytes.
func Serialize(m *Manifest) ([]byte, error) {
	c := m.Clone()
	c.Normalize()

	graph := make([]any, 0, 2+len(c.Files)+len(c.Authors)+len(c.Extra))
	graph = append(graph,
		descriptorNode{
			ID:         MetadataID,
			Type:       TypeCreativeWork,
			ConformsTo: ref{ID: ProfileURL},
			About:      ref{ID: RootID},
		},
		rootNode{
			ID:            RootID,
			Type:          types{TypeDataset},
			Identifier:    c.Root.Identifier,
			Name:          c.Root.Name,
			Description:   c.Root.Description,
			Version:       number(c.Root.Version),
			URL:           c.Root.URL,
			DatePublished: c.Root.DatePublished,
			HasPart: lo.Map(c.Files, func(f FileEntry, _ int) ref {
				return ref{ID: f.Identifier}
			}),
		},
	)

	for _, f := range c.Files {
		n := fileNode{
			ID:             f.Identifier,
			Type:           types{TypeFile},
			Name:           f.Name,
			EncodingFormat: f.EncodingFormat,
			Description:    f.Description,
			Version:        number(f.Version),
			DatePublished:  f.DatePublished,
			ContentSize:    number(f.ContentSize),
			License:        f.License,
			DateCreated:    f.DateCreated,
		}
		if f.Author != "" {
			n.Author = refs{{ID: f.Author}}
		}
		graph = append(graph, n)
	}
	for _, a := range c.Authors {
		graph = append(graph, personNode{ID: a.Identifier, Type: types{TypePerson}, Name: a.Name})
	}
	graph = append(graph, lo.ToAnySlice(c.Extra)...)

	raw, err := json.Marshal(document{Context: ContextURL, Graph: graph})
	if err != nil {
		return nil, errx.Wrap(err)
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return out, nil
}
