package media

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// findVideoSource returns the src of the first <video> element in the
// document, falling back to that element's first <source src>. ok is false
// when there is no <video> element or it carries no usable source.
func findVideoSource(r io.Reader) (src string, ok bool, err error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", false, err
	}

	video := findFirst(doc, atom.Video)
	if video == nil {
		return "", false, nil
	}
	if s := attr(video, "src"); s != "" {
		return s, true, nil
	}
	if source := findFirst(video, atom.Source); source != nil {
		if s := attr(source, "src"); s != "" {
			return s, true, nil
		}
	}
	return "", false, nil
}

// findFirst walks n depth-first in document order.
func findFirst(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
