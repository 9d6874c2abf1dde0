package pipeline

import (
	"regexp"
	"strings"

	"github.com/alnah/go-nb2medium/internal/notebook"
)

var jpegLinkPattern = regexp.MustCompile(`(!\[jpeg\])\(([^)]*)\.jpg\)`)

// FixJPEG renames .jpg images of store to .jpeg and rewrites the matching
// ![jpeg](...) links of md. Medium rejects the .jpg spelling.
func FixJPEG(md string, store *notebook.ImageStore) string {
	if store != nil {
		for _, name := range store.Names() {
			if strings.HasSuffix(name, ".jpg") {
				store.Rename(name, strings.TrimSuffix(name, ".jpg")+".jpeg")
			}
		}
	}
	return jpegLinkPattern.ReplaceAllString(md, "${1}(${2}.jpeg)")
}

// UnreferencedImages lists the names of store that md never mentions.
func UnreferencedImages(md string, store *notebook.ImageStore) []string {
	var missing []string
	for _, name := range store.Names() {
		if !strings.Contains(md, name) {
			missing = append(missing, name)
		}
	}
	return missing
}
