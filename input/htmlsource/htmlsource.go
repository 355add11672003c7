// Package htmlsource adapts golang.org/x/net/html into the minimal DOM
// model package dom defines (D1 in SPEC_FULL.md): it is the concrete
// load_doc the driver calls. Tokenizing and entity-decoding are handled by
// x/net/html itself; this package only reshapes its node tree into ours and
// collects the inline <style> text and <link rel="stylesheet"> hrefs the
// driver needs to assemble the cascade chain.
package htmlsource

import (
	"io"
	"os"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/go-webcore/minibrowser/core/browserr"
	"github.com/go-webcore/minibrowser/engine/dom"
)

func tracer() tracing.Trace {
	return tracing.Select("minibrowser.htmlsource")
}

// Stylesheet is one referenced or inline stylesheet collected while walking
// the document, in source order: either literal <style> text, or an
// external href the driver must fetch and parse itself.
type Stylesheet struct {
	Inline string // set when Href == ""
	Href   string // set when Inline == ""
}

// Document is the result of loading a page: the DOM root (C3) plus the
// stylesheets referenced from <style>/<link> tags, in document order, and
// the base URL other relative references resolve against.
type Document struct {
	Root        *dom.Node
	Stylesheets []Stylesheet
	BaseURL     string
}

// Load parses r as HTML and builds a Document. baseURL is recorded
// verbatim; this package does no network I/O of its own (external fetch
// belongs to the driver, per spec §6).
func Load(r io.Reader, baseURL string) (*Document, error) {
	tree, err := html.Parse(r)
	if err != nil {
		return nil, browserr.Wrap(err, browserr.Parse, "parsing HTML from %s", baseURL)
	}
	doc := &Document{BaseURL: baseURL}
	doc.Root = convert(tree, doc)
	if doc.Root == nil {
		doc.Root = dom.NewElement("html", nil)
	}
	tracer().Infof("htmlsource: loaded %s, %d referenced stylesheet(s)", baseURL, len(doc.Stylesheets))
	return doc, nil
}

// LoadFile opens path and loads it as HTML, using the file's path itself as
// the base URL for relative references — the same "relative_filepath_to_url"
// convenience original_source/src/net/mod.rs provides for local pages.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, browserr.Wrap(err, browserr.IO, "opening %s", path)
	}
	defer f.Close()
	return Load(f, path)
}

// convert walks one x/net/html node and its siblings are handled by the
// caller; it returns nil for node kinds this DOM has no representation for
// (comments, processing instructions), in which case the caller skips it.
func convert(n *html.Node, doc *Document) *dom.Node {
	switch n.Type {
	case html.DocumentNode:
		return convertChildren(n, doc, "")
	case html.DoctypeNode:
		return dom.NewMeta(n.Data, attrMap(n))
	case html.ElementNode:
		return convertElement(n, doc)
	case html.TextNode:
		if n.Data == "" {
			return nil
		}
		return dom.NewText(n.Data)
	default: // CommentNode, RawNode, ErrorNode
		return nil
	}
}

// convertChildren folds n's children into a single synthetic node's
// children list, used only for the document root where x/net/html's
// top-level node itself carries no tag.
func convertChildren(n *html.Node, doc *Document, tag string) *dom.Node {
	var first *dom.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		converted := convert(c, doc)
		if converted == nil {
			continue
		}
		if converted.Type == dom.ElementNode && tag == "" {
			// The <html> element itself — the DOM's single root.
			first = converted
			continue
		}
	}
	if first != nil {
		return first
	}
	// No <html> element found (a fragment); synthesize one so the DOM
	// always has a single root, matching dom.Node's documented invariant.
	root := dom.NewElement("html", nil)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if converted := convert(c, doc); converted != nil {
			root.Children = append(root.Children, converted)
		}
	}
	return root
}

func convertElement(n *html.Node, doc *Document) *dom.Node {
	attrs := attrMap(n)
	el := dom.NewElement(n.Data, attrs)
	switch n.DataAtom {
	case atom.Style:
		el.Children = convertChildrenList(n, doc)
		doc.Stylesheets = append(doc.Stylesheets, Stylesheet{Inline: textContent(n)})
		return el
	case atom.Link:
		if strings.EqualFold(attrs["rel"], "stylesheet") {
			if href := attrs["href"]; href != "" {
				doc.Stylesheets = append(doc.Stylesheets, Stylesheet{Href: href})
			}
		}
	}
	el.Children = convertChildrenList(n, doc)
	return el
}

func convertChildrenList(n *html.Node, doc *Document) []*dom.Node {
	var children []*dom.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if converted := convert(c, doc); converted != nil {
			children = append(children, converted)
		}
	}
	return children
}

// textContent concatenates n's direct text-node children, used to pull a
// <style> element's literal CSS out of the x/net/html tree for the driver.
// The CSS also stays in the DOM as the <style> element's text child.
func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func attrMap(n *html.Node) dom.AttrMap {
	if len(n.Attr) == 0 {
		return nil
	}
	m := make(dom.AttrMap, len(n.Attr))
	for _, a := range n.Attr {
		m[a.Key] = a.Val
	}
	return m
}
