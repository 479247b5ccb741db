// Package nodelink draws genealogies as node-link diagrams.
//
// Nodes are drawn top to bottom from the oldest to the youngest; samples are
// filled boxes, ancestors are ellipses. Each parent/child pair is one arrow
// labelled with the genome intervals it covers.
//
//	dot := nodelink.ToDOT(res.Nodes, res.Edges, nodelink.Options{Intervals: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [ToDOT] output can also be saved and processed with external Graphviz
// tools. Rendering is done in-process by [github.com/goccy/go-graphviz].
package nodelink
