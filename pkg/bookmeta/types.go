package bookmeta

// License is a collection's license as declared in its metadata.
type License struct {
	URL     string `json:"url" yaml:"url"`
	Type    string `json:"type" yaml:"type"`
	Version string `json:"version" yaml:"version"`
	Text    string `json:"text" yaml:"text"`
}

// ColMeta is the metadata of one collection.
type ColMeta struct {
	Title   string  `json:"title" yaml:"title"`
	License License `json:"license" yaml:"license"`
}

// SlugMeta ties a books.xml entry to its collection metadata.
type SlugMeta struct {
	SlugName     string  `json:"slugName" yaml:"slugName"`
	CollectionID string  `json:"collectionId" yaml:"collectionId"`
	Href         string  `json:"href" yaml:"href"`
	ColMeta      ColMeta `json:"colMeta" yaml:"colMeta"`
}

// BookMeta is the metadata of every collection in a book repository.
type BookMeta struct {
	SlugsMeta []SlugMeta `json:"slugsMeta" yaml:"slugsMeta"`
}

// PrimaryLicense returns the license of the first collection.
func (m *BookMeta) PrimaryLicense() (License, bool) {
	if len(m.SlugsMeta) == 0 {
		return License{}, false
	}
	return m.SlugsMeta[0].ColMeta.License, true
}
