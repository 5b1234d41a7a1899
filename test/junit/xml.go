package junit

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/bitrise-io/go-utils/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/pkg/errors"
)

// ErrMissingTestSuite is returned when neither the document root nor any of
// its direct children is a testsuite element.
var ErrMissingTestSuite = errors.New("the XML structure is missing the expected 'testsuite' element")

// Element is a generic XML element.
// Attributes are kept as a list so that an absent attribute can be told apart
// from an empty one.
type Element struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",chardata"`
	Nodes   []Element  `xml:",any"`
}

// Tag ...
func (e Element) Tag() string {
	return e.XMLName.Local
}

// Attr returns the value of an unqualified attribute and whether it is set.
func (e Element) Attr(name string) (string, bool) {
	for _, attr := range e.Attrs {
		if attr.Name.Space == "" && attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value, or def if the attribute is absent.
func (e Element) AttrOr(name, def string) string {
	if value, ok := e.Attr(name); ok {
		return value
	}
	return def
}

// Text returns the character data of the element, CDATA sections included.
func (e Element) Text() string {
	return e.Content
}

// Child returns the first direct child with the given tag.
func (e Element) Child(tag string) (Element, bool) {
	for _, node := range e.Nodes {
		if node.Tag() == tag {
			return node, true
		}
	}
	return Element{}, false
}

// Find returns the first descendant (document order) with the given tag.
// The element itself is not considered.
func (e Element) Find(tag string) (Element, bool) {
	for _, node := range e.Nodes {
		if node.Tag() == tag {
			return node, true
		}
		if found, ok := node.Find(tag); ok {
			return found, true
		}
	}
	return Element{}, false
}

// FindAll returns every descendant with the given tag in document order.
// The element itself is not considered.
func (e Element) FindAll(tag string) []Element {
	var found []Element
	for _, node := range e.Nodes {
		if node.Tag() == tag {
			found = append(found, node)
		}
		found = append(found, node.FindAll(tag)...)
	}
	return found
}

// Parse decodes a whole XML document and returns its root element.
func Parse(reader io.Reader) (Element, error) {
	var root Element
	if err := xml.NewDecoder(reader).Decode(&root); err != nil {
		return Element{}, errors.Wrap(err, "failed to parse XML")
	}
	return root, nil
}

// ParseFile reads and decodes the XML document at pth.
func ParseFile(pth string) (Element, error) {
	data, err := fileutil.ReadBytesFromFile(pth)
	if err != nil {
		return Element{}, errors.Wrapf(err, "failed to read %s", pth)
	}
	return Parse(bytes.NewReader(data))
}

// FindTestSuite returns the root if it is a testsuite, otherwise the first
// testsuite among the root's direct children.
// When no suite is found the top level children are logged for diagnostics.
func FindTestSuite(root Element, logger log.Logger) (Element, error) {
	if root.Tag() == "testsuite" {
		return root, nil
	}

	if suite, ok := root.Child("testsuite"); ok {
		return suite, nil
	}

	logger.Warnf("No 'testsuite' element found. Available elements:")
	for _, node := range root.Nodes {
		logger.Printf("Element: %s, Attributes: %s", node.Tag(), formatAttrs(node.Attrs))
	}

	return Element{}, ErrMissingTestSuite
}

func formatAttrs(attrs []xml.Attr) string {
	parts := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		name := attr.Name.Local
		if attr.Name.Space != "" {
			name = attr.Name.Space + ":" + name
		}
		parts = append(parts, name+"="+`"`+attr.Value+`"`)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
