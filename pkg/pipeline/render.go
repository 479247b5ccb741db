package pipeline

import (
	"bytes"
	"context"
	"fmt"

	coio "github.com/matzehuels/coalesce/pkg/io"
	"github.com/matzehuels/coalesce/pkg/render/nodelink"
)

// cacheableFormats are the formats worth caching; the rest are cheap
// encodings of the simplified document.
var cacheableFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
}

// DOTOptions are the diagram options used for DOT, SVG and PNG output.
var DOTOptions = nodelink.Options{Intervals: true, RankByTime: true}

// Render encodes doc in every requested format.
func Render(ctx context.Context, doc *coio.Document, formats []string) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		data, err := renderFormat(ctx, doc, format)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, doc *coio.Document, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		if err := coio.WriteJSON(doc, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		if err := coio.WriteTOML(doc, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(nodelink.ToDOT(doc.Nodes, doc.Edges, DOTOptions)), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(doc.Nodes, doc.Edges, DOTOptions))
	case FormatPNG:
		return nodelink.RenderPNG(ctx, nodelink.ToDOT(doc.Nodes, doc.Edges, DOTOptions))
	}
	return nil, ValidateFormat(format)
}
