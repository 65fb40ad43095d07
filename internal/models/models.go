package models

// ChunkKind distinguishes body text from tabular content.
type ChunkKind string

const (
	ChunkText  ChunkKind = "text"
	ChunkTable ChunkKind = "table"
)

// Chunk is one bounded unit of extracted content, tagged with its source
// file and 1-indexed page number. Created during extraction, never edited.
type Chunk struct {
	Kind  ChunkKind
	Text  string     // set for ChunkText
	Table [][]string // set for ChunkTable, rows of cells
	File  string
	Page  int
}

// Metadata is the stored payload metadata of an indexed chunk.
type Metadata struct {
	File string `json:"file"`
	Page int    `json:"page"`
}

// Document is the index-ready projection of a Chunk: normalized content
// plus metadata, one-to-one with the Chunk it came from.
type Document struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Conversation roles.
const (
	RoleUser = "USER"
	RoleAI   = "AI"
)

// Turn is one conversation entry.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Citation points at the source material supporting an answer. Either
// field may be absent, rendered as null.
type Citation struct {
	File *string `json:"file"`
	Page *int    `json:"page"`
}
