package render

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/specialistvlad/partsegnet/internal/netspec"
)

type graphTemplateData struct {
	Title string
	Nodes template.JS
	Edges template.JS
}

var graphTemplate = template.Must(template.New("graph").Parse(`<!doctype html>
<html>
<head>
<title>{{.Title}}</title>

<script type="text/javascript" src="https://cdnjs.cloudflare.com/ajax/libs/vis/4.21.0/vis.min.js"></script>
<link href="https://cdnjs.cloudflare.com/ajax/libs/vis/4.21.0/vis-network.min.css" rel="stylesheet" type="text/css" />

<style type="text/css">
#network {
width: 100%;
height: 95vh;
}
</style>
</head>
<body>

<div id="network"></div>

<script type="text/javascript">
new vis.Network(
document.getElementById('network'),
{nodes: new vis.DataSet({{.Nodes}}), edges: new vis.DataSet({{.Edges}})},
{layout: {hierarchical: {direction: 'UD', sortMethod: 'directed'}}});
</script>

</body>
</html>
`))

// WriteHTML renders net as a standalone HTML page.
func WriteHTML(ctx context.Context, w io.Writer, net *netspec.Net) error {
	nodes, edges, err := CreateNetwork(ctx, net)
	if err != nil {
		return err
	}
	jsonNodes, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("encoding nodes: %w", err)
	}
	jsonEdges, err := json.Marshal(edges)
	if err != nil {
		return fmt.Errorf("encoding edges: %w", err)
	}

	title := net.Name
	if title == "" {
		title = "network"
	}
	return graphTemplate.Execute(w, graphTemplateData{
		Title: title,
		Nodes: template.JS(jsonNodes),
		Edges: template.JS(jsonEdges),
	})
}
