package chunking

// DocType identifies the kind of financial document being processed and
// drives chunker selection.
type DocType string

const (
	DocTypeSECFiling          DocType = "sec_filing"
	DocTypeEarningsTranscript DocType = "earnings_transcript"
	DocTypeResearchReport     DocType = "research_report"
	DocTypeFinancialModel     DocType = "financial_model"
	DocTypeOther              DocType = "other"
)

// ParseDocType maps a string to a known DocType, defaulting to other.
func ParseDocType(s string) DocType {
	switch DocType(s) {
	case DocTypeSECFiling, DocTypeEarningsTranscript, DocTypeResearchReport, DocTypeFinancialModel:
		return DocType(s)
	default:
		return DocTypeOther
	}
}

// ChunkMetadata is carried by each chunk and stored alongside embeddings.
// It is a value type: chunkers derive per-section copies by assigning over
// a plain struct copy, never by mutating shared state.
type ChunkMetadata struct {
	DocType        DocType  `json:"doc_type"`
	Ticker         string   `json:"ticker,omitempty"`
	FilingDate     string   `json:"filing_date,omitempty"`
	SectionName    string   `json:"section_name,omitempty"`
	ItemNumber     string   `json:"item_number,omitempty"`
	Speaker        string   `json:"speaker,omitempty"`
	PageNumbers    []int    `json:"page_numbers,omitempty"`
	SourceFilename string   `json:"source_filename,omitempty"`
}

// Chunk is a single retrievable piece of a document. Chunks are created
// once by a chunker and never mutated afterwards.
type Chunk struct {
	Text        string        `json:"text"`
	Metadata    ChunkMetadata `json:"metadata"`
	ChunkIndex  int           `json:"chunk_index"`
	TotalChunks int           `json:"total_chunks"`
	TokenCount  int           `json:"token_count"`
}

// Chunker is the contract shared by all chunking strategies. Chunk index
// numbering is dense and 0-based across the returned slice.
type Chunker interface {
	Chunk(text string, meta ChunkMetadata) []Chunk
}

// number assigns the final chunk_index / total_chunks pair over the
// complete output, after any sub-chunking passes.
func number(chunks []Chunk) []Chunk {
	for i := range chunks {
		chunks[i].ChunkIndex = i
		chunks[i].TotalChunks = len(chunks)
	}
	return chunks
}
