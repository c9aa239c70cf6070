package document

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
)

// WriteXML serializes the document as nested elements with string-valued
// attributes. Absent optional attributes are omitted. Attribute order is
// deterministic: the identifying attribute first, remaining attributes
// sorted by name.
func (d *Document) WriteXML(w io.Writer) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	docElem := startElement("document", xml.Attr{Name: name("id"), Value: d.ID})
	if err := enc.EncodeToken(docElem); err != nil {
		return err
	}

	for _, s := range d.Sentences {
		sentElem := startElement("sentence",
			xml.Attr{Name: name("id"), Value: s.ID},
			xml.Attr{Name: name("begin"), Value: strconv.Itoa(s.Begin)},
			xml.Attr{Name: name("end"), Value: strconv.Itoa(s.End)},
			xml.Attr{Name: name("text"), Value: s.Text},
		)
		if err := enc.EncodeToken(sentElem); err != nil {
			return err
		}

		for _, l := range s.Layers {
			layerElem := startElement("layer", xml.Attr{Name: name("tag"), Value: l.Tag})
			layerElem.Attr = append(layerElem.Attr, sortedAttrs(l.Attrs)...)
			if err := enc.EncodeToken(layerElem); err != nil {
				return err
			}

			for _, n := range l.Nodes {
				nodeElem := startElement("node", xml.Attr{Name: name("id"), Value: n.ID})
				nodeElem.Attr = append(nodeElem.Attr, sortedAttrs(n.Attrs)...)
				if err := enc.EncodeToken(nodeElem); err != nil {
					return err
				}
				if err := enc.EncodeToken(nodeElem.End()); err != nil {
					return err
				}
			}

			if err := enc.EncodeToken(layerElem.End()); err != nil {
				return err
			}
		}

		if err := enc.EncodeToken(sentElem.End()); err != nil {
			return err
		}
	}

	if err := enc.EncodeToken(docElem.End()); err != nil {
		return err
	}
	return enc.Flush()
}

// XML returns the document's XML serialization as a string.
func (d *Document) XML() (string, error) {
	var buf bytes.Buffer
	if err := d.WriteXML(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func name(local string) xml.Name {
	return xml.Name{Local: local}
}

func startElement(local string, attrs ...xml.Attr) xml.StartElement {
	return xml.StartElement{Name: name(local), Attr: attrs}
}

func sortedAttrs(attrs map[string]string) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	result := make([]xml.Attr, len(keys))
	for i, k := range keys {
		result[i] = xml.Attr{Name: name(k), Value: attrs[k]}
	}
	return result
}
