package flow

import (
	"encoding/json"
	"fmt"
	"os"
)

// Document is the canonical serialization format for flow graphs.
// It is human-readable and round-trips: import → layout → export → re-import
// produces an identical graph.
type Document struct {
	Title string `json:"title,omitempty"`
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Graph converts the document into a validated graph, returning the dropped
// dangling links alongside it.
func (d Document) Graph() (*Graph, []Link, error) {
	return Build(d.Nodes, d.Links)
}

// Export converts a graph back into its serialization format.
func Export(g *Graph, title string) Document {
	doc := Document{Title: title, Links: g.Links()}
	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, *n)
	}
	return doc
}

// MarshalDocument serializes a document to pretty-printed JSON bytes.
func MarshalDocument(d Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// UnmarshalDocument deserializes JSON bytes into a document.
func UnmarshalDocument(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("unmarshal flow document: %w", err)
	}
	return d, nil
}

// ReadDocumentFile reads a flow document from a JSON file.
func ReadDocumentFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalDocument(data)
}

// WriteDocumentFile writes a flow document to a JSON file.
func WriteDocumentFile(d Document, path string) error {
	data, err := MarshalDocument(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
