package b2mml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Marshal serializes doc as indented XML with every element in the b2mml
// namespace prefix.
func Marshal(doc *Document) ([]byte, error) {
	if doc == nil || doc.Root == nil {
		return nil, errors.New("b2mml: nil document")
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := encodeNode(enc, doc.Name, doc.Root); err != nil {
		return nil, fmt.Errorf("b2mml: encode %s: %w", doc.Name, err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("b2mml: flush: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func qualified(name string) xml.Name {
	return xml.Name{Local: Prefix + ":" + name}
}

func encodeNode(enc *xml.Encoder, name string, n *Node) error {
	start := xml.StartElement{Name: qualified(name)}
	for _, a := range n.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, f := range n.Fields {
		if err := encodeValue(enc, f.Name, f.Value); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func encodeValue(enc *xml.Encoder, name string, v any) error {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		start := xml.StartElement{Name: qualified(name)}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		if err := enc.EncodeToken(xml.CharData(val)); err != nil {
			return err
		}
		return enc.EncodeToken(start.End())
	case *Node:
		if val == nil {
			return nil
		}
		return encodeNode(enc, name, val)
	case []any:
		for _, elem := range val {
			if err := encodeValue(enc, name, elem); err != nil {
				return err
			}
		}
		return nil
	default:
		return encodeValue(enc, name, fmt.Sprint(val))
	}
}

// Unmarshal parses XML text into a document tree. Namespace prefixes are
// dropped from element names; namespace declarations are kept as attributes.
// Elements holding only text become string fields, repeated elements become
// repeated fields.
func Unmarshal(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	type frame struct {
		name string
		node *Node
		text strings.Builder
	}
	var (
		stack []*frame
		doc   *Document
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("b2mml: parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			f := &frame{name: t.Name.Local, node: &Node{}}
			for _, a := range t.Attr {
				f.node.Attrs = append(f.node.Attrs, Attr{Name: attrName(a.Name), Value: a.Value})
			}
			stack = append(stack, f)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				doc = &Document{Name: f.name, Root: f.node}
				continue
			}
			parent := stack[len(stack)-1].node
			if len(f.node.Fields) == 0 {
				parent.Set(f.name, strings.TrimSpace(f.text.String()))
			} else {
				parent.Set(f.name, f.node)
			}
		}
	}

	if doc == nil {
		return nil, errors.New("b2mml: no root element")
	}
	return doc, nil
}

func attrName(n xml.Name) string {
	switch n.Space {
	case "":
		return n.Local
	case "xmlns":
		return "xmlns:" + n.Local
	case XSINamespace:
		return "xsi:" + n.Local
	default:
		return n.Local
	}
}
