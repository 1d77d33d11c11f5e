package models

// GeneratedModule represents one generated source file
type GeneratedModule struct {
	Module   string   // dotted name of the source module
	Classes  []string // classes emitted, in order
	FilePath string   // path where the file should be written, set by the caller
	Content  string   // generated source text
}
