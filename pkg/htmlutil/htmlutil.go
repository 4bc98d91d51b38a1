package htmlutil

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("astrocat.pkg.htmlutil")

// ErrNoFrame is returned by FindFrame when no frame matches.
var ErrNoFrame = errors.New("no matching frame")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// FrameSources returns the src attribute of every frame element in document order.
func FrameSources(doc *goquery.Document) []string {
	var sources []string
	doc.Find("frame").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if ok {
			sources = append(sources, src)
		}
	})
	return sources
}

// FindFrame returns the src of the first frame whose src contains `include`
// and does not contain `exclude` (an empty exclude excludes nothing).
func FindFrame(ctx context.Context, body []byte, include, exclude string) (string, error) {
	_, span := tracer.Start(ctx, "FindFrame")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return "", err
	}

	for _, src := range FrameSources(doc) {
		span.AddEvent("frame", trace.WithAttributes(attribute.String("src", src)))
		if !strings.Contains(src, include) {
			continue
		}
		if exclude != "" && strings.Contains(src, exclude) {
			continue
		}
		return src, nil
	}

	span.SetStatus(codes.Error, "no matching frame")
	return "", ErrNoFrame
}

// IsFrameset reports whether a document is made of frames rather than content.
func IsFrameset(body []byte) bool {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return false
	}
	return doc.Find("frameset, frame").Length() > 0
}

// PreText returns the concatenated text of every <pre> block, and false if
// the document has none.
func PreText(ctx context.Context, body []byte) (string, bool, error) {
	_, span := tracer.Start(ctx, "PreText")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return "", false, err
	}

	pre := doc.Find("pre")
	if pre.Length() == 0 {
		return "", false, nil
	}
	var out strings.Builder
	for _, node := range pre.Nodes {
		out.WriteString(GetText(node))
	}
	span.SetAttributes(attribute.Int("length", out.Len()))
	return out.String(), true, nil
}
