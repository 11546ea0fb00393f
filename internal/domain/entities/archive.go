package entities

// Archive represents a downloaded source archive
type Archive struct {
	URL    string
	Path   string
	Size   int64
	SHA256 string
}

// Publication records where a rendered formula was written
type Publication struct {
	Path    string
	Changed bool // false when the destination already held identical content
}
