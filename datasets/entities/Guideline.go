package entities

// GuidelineLink points at an external guideline page. It is navigational only.
type GuidelineLink struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// GuidelineSection groups links (adult, paeds, primary care).
type GuidelineSection struct {
	Key   string          `json:"key" yaml:"key"`
	Title string          `json:"title" yaml:"title"`
	Links []GuidelineLink `json:"links" yaml:"links"`
}

// Guidelines is the national antimicrobial guideline index plus printable
// protocol documents.
type Guidelines struct {
	Home      string             `json:"home" yaml:"home"`
	Sections  []GuidelineSection `json:"sections" yaml:"sections"`
	Documents []GuidelineLink    `json:"documents,omitempty" yaml:"documents"`
}

// Section returns the section with the given key.
func (g Guidelines) Section(key string) (GuidelineSection, bool) {
	for _, s := range g.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return GuidelineSection{}, false
}

// LinkCount returns the number of links across all sections.
func (g Guidelines) LinkCount() int {
	n := 0
	for _, s := range g.Sections {
		n += len(s.Links)
	}
	return n
}
