package dom

import "strings"

// NodeType discriminates the variant a Node holds.
type NodeType int

const (
	// ElementNode is a tagged element with attributes and children.
	ElementNode NodeType = iota
	// TextNode is a run of character data; it never has children.
	TextNode
	// MetaNode is a directive-like node such as <!doctype html>.
	MetaNode
)

// AttrMap is a node's attribute table, keyed by attribute name.
type AttrMap map[string]string

// Node is the document tree's single node type: an Element, a Text run, or
// a Meta directive. Only the fields relevant to Type are meaningful.
type Node struct {
	Type       NodeType
	Tag        string // ElementNode
	Attributes AttrMap
	Text       string // TextNode
	Directive  string // MetaNode
	Children   []*Node
}

// NewElement builds an ElementNode. A nil attrs is replaced with an empty map
// so callers can always index Attributes without a nil check.
func NewElement(tag string, attrs AttrMap, children ...*Node) *Node {
	if attrs == nil {
		attrs = AttrMap{}
	}
	return &Node{Type: ElementNode, Tag: tag, Attributes: attrs, Children: children}
}

// NewText builds a TextNode.
func NewText(content string) *Node {
	return &Node{Type: TextNode, Text: content}
}

// NewMeta builds a MetaNode, e.g. for <!doctype html>.
func NewMeta(directive string, attrs AttrMap) *Node {
	if attrs == nil {
		attrs = AttrMap{}
	}
	return &Node{Type: MetaNode, Directive: directive, Attributes: attrs}
}

// ID returns the element's "id" attribute, or "" if unset or not an element.
func (n *Node) ID() string {
	if n == nil || n.Type != ElementNode {
		return ""
	}
	return n.Attributes["id"]
}

// Classes returns the element's space-separated "class" attribute, split
// into individual class names. Empty fields (consecutive spaces) are dropped.
func (n *Node) Classes() []string {
	if n == nil || n.Type != ElementNode {
		return nil
	}
	return strings.Fields(n.Attributes["class"])
}

// blockLevel is the set of tags the empty-strip pass treats as block-level
// for the purposes of deciding which whitespace-only text nodes are
// insignificant. It is not a complete CSS default-display table (that lives
// in the embedded user-agent stylesheet); it only needs to be good enough to
// tell "whitespace between tags" apart from "whitespace inside a run of
// text/inline content".
var blockLevel = map[string]bool{
	"html": true, "body": true, "head": true,
	"div": true, "p": true, "section": true, "article": true,
	"header": true, "footer": true, "nav": true, "main": true, "aside": true,
	"ul": true, "ol": true, "li": true,
	"table": true, "thead": true, "tbody": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "form": true, "figure": true,
}

// StripEmptyNodes removes whitespace-only text-node children that sit
// between two block-level siblings (or at the start/end of a block-level
// parent's child list, next to nothing), since such whitespace is
// presentationally insignificant. Whitespace inside a run of inline content
// (text mixed with <span>, <a>, <em>, ...) is preserved, since it is
// significant there (e.g. the space between two words split across tags).
func StripEmptyNodes(n *Node) {
	if n == nil || n.Type != ElementNode {
		return
	}
	kept := n.Children[:0]
	for i, child := range n.Children {
		if child.Type == TextNode && isWhitespaceOnly(child.Text) {
			prevBlock := (i == 0 && isBlockLevel(n)) || (i > 0 && isBlockLevel(n.Children[i-1]))
			nextBlock := (i == len(n.Children)-1 && isBlockLevel(n)) || (i < len(n.Children)-1 && isBlockLevel(n.Children[i+1]))
			if prevBlock && nextBlock {
				continue
			}
		}
		kept = append(kept, child)
	}
	n.Children = kept
	for _, child := range n.Children {
		StripEmptyNodes(child)
	}
}

func isBlockLevel(n *Node) bool {
	return n.Type == ElementNode && blockLevel[n.Tag]
}

func isWhitespaceOnly(s string) bool {
	return strings.TrimSpace(s) == ""
}

// entities is the small, fixed table of named character references this
// pass understands. A document parser built on golang.org/x/net/html has
// already expanded entities during tokenization (see input/htmlsource's doc
// comment); ExpandEntities exists for text assembled programmatically, e.g.
// by tests, that still carries raw "&amp;"-style references.
var entities = map[string]string{
	"&amp;":  "&",
	"&lt;":   "<",
	"&gt;":   ">",
	"&quot;": `"`,
	"&apos;": "'",
	"&nbsp;": " ",
}

// ExpandEntities replaces named character references in every text node of
// the subtree rooted at n, in place. It runs once, before styling, per the
// data-model lifetime described for the document tree.
func ExpandEntities(n *Node) {
	if n == nil {
		return
	}
	if n.Type == TextNode {
		for entity, repl := range entities {
			if strings.Contains(n.Text, entity) {
				n.Text = strings.ReplaceAll(n.Text, entity, repl)
			}
		}
	}
	for _, child := range n.Children {
		ExpandEntities(child)
	}
}

// GetElementsByTagName returns every descendant Element of n (not n itself)
// whose tag matches name, in document (pre-)order. "*" matches any element.
func GetElementsByTagName(n *Node, name string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, child := range cur.Children {
			if child.Type == ElementNode && (name == "*" || child.Tag == name) {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(n)
	return out
}
