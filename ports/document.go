package ports

// DocumentReader turns a file into plain text
type DocumentReader interface {
	ReadText(path string) (string, error)
	Supports(path string) bool
}
