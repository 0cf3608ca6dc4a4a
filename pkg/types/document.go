package types

// DocType identifies the source format of a document.
type DocType string

const (
	DocText     DocType = "txt"
	DocMarkdown DocType = "markdown"
	DocPDF      DocType = "pdf"
	DocStatute  DocType = "statute"
)

// Document is a raw text loaded by the ingestion step. Immutable once loaded.
type Document struct {
	ID         string
	SourcePath string
	RawText    string
	DocType    DocType
	Metadata   map[string]string
}

// Len returns the length of the document text in bytes.
func (d Document) Len() int {
	return len(d.RawText)
}
