package mensa

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Parsed feed document types. The upstream XML inconsistently represents "one"
// vs "many" children; decoding repeated elements into slices normalizes that
// shape at the parse boundary, so the normalizer never has to care.

type Canteen struct {
	Days []Day `xml:"day"`
}

type Day struct {
	Date       string     `xml:"date,attr"`
	Closed     *struct{}  `xml:"closed"`
	Categories []Category `xml:"category"`
}

type Category struct {
	Name  string     `xml:"name,attr"`
	Meals []MealItem `xml:"meal"`
}

type MealItem struct {
	Name   string   `xml:"name"`
	Prices []Price  `xml:"price"`
	Notes  []string `xml:"note"`
}

type Price struct {
	Role  string `xml:"role,attr"`
	Value string `xml:",chardata"`
}

// Price roles used by the upstream feed.
const (
	PriceRoleStudent  = "student"
	PriceRoleEmployee = "employee"
	PriceRoleOther    = "other"
)

type menuDocument struct {
	XMLName xml.Name `xml:"openmensa"`
	Canteen *Canteen `xml:"canteen"`
}

type metaDocument struct {
	XMLName xml.Name     `xml:"openmensa"`
	Canteen *metaCanteen `xml:"canteen"`
}

type metaCanteen struct {
	Times []metaTimes `xml:"times"`
}

type metaTimes struct {
	Type      string       `xml:"type,attr"`
	Monday    metaDayTimes `xml:"monday"`
	Tuesday   metaDayTimes `xml:"tuesday"`
	Wednesday metaDayTimes `xml:"wednesday"`
	Thursday  metaDayTimes `xml:"thursday"`
	Friday    metaDayTimes `xml:"friday"`
	Saturday  metaDayTimes `xml:"saturday"`
	Sunday    metaDayTimes `xml:"sunday"`
}

type metaDayTimes struct {
	Open   string `xml:"open,attr"`
	Closed string `xml:"closed,attr"`
}

// ParseMenu decodes a venue menu document. A missing canteen node is not an
// error here; the normalizer logs and treats it as an empty menu so one broken
// venue never affects the others.
func ParseMenu(data []byte) (*Canteen, error) {
	var doc menuDocument
	if err := decodeXML(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode menu document: %w", err)
	}
	return doc.Canteen, nil
}

// ParseMeta decodes a venue meta document into its weekly opening hours.
func ParseMeta(data []byte) (*OpeningTimes, error) {
	var doc metaDocument
	if err := decodeXML(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode meta document: %w", err)
	}
	if doc.Canteen == nil {
		return nil, fmt.Errorf("meta document has no canteen node")
	}

	times := &OpeningTimes{}
	for _, t := range doc.Canteen.Times {
		if t.Type != "" && t.Type != "opening" {
			continue
		}
		times.Monday = openRange(t.Monday)
		times.Tuesday = openRange(t.Tuesday)
		times.Wednesday = openRange(t.Wednesday)
		times.Thursday = openRange(t.Thursday)
		times.Friday = openRange(t.Friday)
		times.Saturday = openRange(t.Saturday)
		times.Sunday = openRange(t.Sunday)
	}
	return times, nil
}

func openRange(d metaDayTimes) string {
	if d.Closed == "true" {
		return ""
	}
	return strings.TrimSpace(d.Open)
}

func decodeXML(data []byte, v interface{}) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charsetReader
	return decoder.Decode(v)
}

// charsetReader handles the legacy single-byte encodings the upstream feed
// host has been observed to declare.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return input, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "iso-8859-15":
		return charmap.ISO8859_15.NewDecoder().Reader(input), nil
	case "windows-1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("unsupported charset: %s", charset)
	}
}
