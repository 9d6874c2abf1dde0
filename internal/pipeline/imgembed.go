package pipeline

import (
	"encoding/base64"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-nb2medium/internal/notebook"
)

// InlineImages replaces img[src] values that name an image of store with a
// data: URI, so a preview page needs no side files. The src may be the bare
// synthetic name or a saved, URL-escaped relative path ending in it.
// Remote URLs and unknown names are left alone.
func InlineImages(htmlContent string, store *notebook.ImageStore) (string, error) {
	if store == nil || store.Len() == 0 {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}
	inlineNode(doc, store)
	return renderHTML(doc, isFragment)
}

func inlineNode(n *html.Node, store *notebook.ImageStore) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		for i, attr := range n.Attr {
			if attr.Key != "src" {
				continue
			}
			if uri, ok := dataURI(attr.Val, store); ok {
				n.Attr[i].Val = uri
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		inlineNode(c, store)
	}
}

func dataURI(src string, store *notebook.ImageStore) (string, bool) {
	if src == "" || strings.HasPrefix(src, "data:") || strings.Contains(src, "://") {
		return "", false
	}
	name := src
	if unescaped, err := url.PathUnescape(src); err == nil {
		name = unescaped
	}
	data, ok := store.Get(name)
	if !ok {
		data, ok = store.Get(path.Base(name))
	}
	if !ok {
		return "", false
	}
	return "data:" + imageMediaType(name) + ";base64," + base64.StdEncoding.EncodeToString(data), true
}

// imageMediaType maps an image file name to its media type.
func imageMediaType(name string) string {
	switch ext := notebook.Extension(name); ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "svg":
		return "image/svg+xml"
	case "tif", "tiff":
		return "image/tiff"
	case "":
		return "application/octet-stream"
	default:
		return "image/" + ext
	}
}

// parseHTML parses a full document or a body fragment. Fragments are wrapped
// in a document node so traversal is uniform.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders doc back to text, without a wrapper for fragments.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder
	if !isFragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
