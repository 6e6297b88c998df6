package domain

// Metadata keys recognized on a RawUnit. Loaders set MetaFileType,
// the ingestion service stamps MetaUploadID once per uploaded file.
const (
	MetaFileType = "file_type"
	MetaUploadID = "upload_id"
)

// UnknownSource is reported when a retrieved chunk carries no source id.
const UnknownSource = "Unknown"

// RawUnit is a single logical text unit produced by a loader: one per
// file for plain documents, one per record for tabular sources.
// Immutable after creation.
type RawUnit struct {
	Text     string
	SourceID string
	Metadata map[string]string
}

// Chunk is a bounded, overlapping slice of a document's text, the unit
// of embedding and retrieval. StartOffset is the byte offset of Text
// within the concatenation of all RawUnit text seen for SourceID.
type Chunk struct {
	Text        string
	SourceID    string
	StartOffset int
	UploadID    string
	FileType    string
}

// IndexEntry pairs a chunk with its embedding vector. IDs are assigned
// by the index, never by callers. All vectors in one index share the
// same dimension.
type IndexEntry struct {
	ID     string
	Vector []float32
	Chunk  Chunk
}

// QueryResult is a retrieved chunk with a relevance score in [0,1],
// 1.0 meaning identical and 0.0 unrelated.
type QueryResult struct {
	Chunk     Chunk
	Relevance float64
}

// ContextBundle is the concatenated retrieved text plus provenance,
// handed to answer generation. Sources parallels the retrieved chunks
// in order, duplicates preserved.
type ContextBundle struct {
	ContextText string
	Sources     []string
}

// AnswerResult is the generated answer with the source ids of the
// chunks it was conditioned on.
type AnswerResult struct {
	Text    string
	Sources []string
}

// IndexStats is a read-only aggregation over current index entries.
type IndexStats struct {
	Count            int
	DistinctSources  []string
	CountsByFileType map[string]int
}
