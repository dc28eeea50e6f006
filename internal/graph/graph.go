// Package graph projects a table model onto the node/edge shape the diagram
// canvas renders, and back.
package graph

import (
	"fmt"
	"regexp"

	"erdsketch/internal/model"
	"erdsketch/internal/sqlgen"
)

// DefaultColor is the edge color used when the referenced table has none.
const DefaultColor = "#0074D9"

const (
	NodeType = "tableNode"
	EdgeType = "customEdge"
)

// Layout controls the seed position of converted nodes. Node i is placed at
// (i*XSpacing, i*YSpacing).
type Layout struct {
	XSpacing float64 `yaml:"x_spacing" json:"xSpacing"`
	YSpacing float64 `yaml:"y_spacing" json:"ySpacing"`
}

// DefaultLayout is the diagonal seed layout.
func DefaultLayout() Layout {
	return Layout{XSpacing: 400, YSpacing: 200}
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the payload of a table node.
type NodeData struct {
	Label      string            `json:"label"`
	Table      string            `json:"table,omitempty"`
	Attributes []model.Attribute `json:"attributes"`
	Color      string            `json:"color,omitempty"` // display only
}

// Node is one table on the canvas.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// Edge points from the referenced (key) column to the referencing column.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
	SourceAttr   string `json:"sourceAttr"`
	TargetAttr   string `json:"targetAttr"`
	Type         string `json:"type"`
	Label        string `json:"label,omitempty"`
	Color        string `json:"color,omitempty"`
}

// Graph is the canvas model: nodes in table order, then derived edges.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Convert places one node per table and derives the foreign key edges.
func Convert(s model.Schema, l Layout) Graph {
	nodes := make([]Node, len(s.Tables))
	for i, t := range s.Tables {
		attrs := make([]model.Attribute, len(t.Attributes))
		copy(attrs, t.Attributes)
		nodes[i] = Node{
			ID:       t.Name,
			Type:     NodeType,
			Position: Position{X: float64(i) * l.XSpacing, Y: float64(i) * l.YSpacing},
			Data:     NodeData{Label: t.Name, Table: t.Name, Attributes: attrs},
		}
	}
	return Graph{Nodes: nodes, Edges: EdgesFromForeignKeys(nodes)}
}

// EdgesFromForeignKeys builds one edge per FK attribute whose referenced table
// matches a node by table name, label or id. Attributes referencing unknown
// tables produce no edge.
func EdgesFromForeignKeys(nodes []Node) []Edge {
	edges := []Edge{}
	for _, n := range nodes {
		for _, a := range n.Data.Attributes {
			if a.Type != model.FK || !a.HasReference() {
				continue
			}
			ref := findNode(nodes, a.RefTable)
			if ref == nil {
				continue
			}
			color := ref.Data.Color
			if color == "" {
				color = DefaultColor
			}
			edges = append(edges, Edge{
				ID:           EdgeID(ref.ID, a.RefAttr, n.ID, a.Name),
				Source:       ref.ID,
				Target:       n.ID,
				SourceHandle: SourceHandle(ref.ID, a.RefAttr),
				TargetHandle: TargetHandle(n.ID, a.Name),
				SourceAttr:   a.RefAttr,
				TargetAttr:   a.Name,
				Type:         EdgeType,
				Label:        "FK",
				Color:        color,
			})
		}
	}
	return edges
}

func findNode(nodes []Node, name string) *Node {
	for i := range nodes {
		d := nodes[i].Data
		if d.Table == name || d.Label == name || nodes[i].ID == name {
			return &nodes[i]
		}
	}
	return nil
}

// TableName is the SQL name of a node: its label with whitespace runs
// replaced by "_", or Table_<id> when the label is empty.
func (n Node) TableName() string {
	label := n.Data.Label
	if label == "" {
		label = "Table_" + n.ID
	}
	return sqlgen.TableName(label)
}

// Tables projects the nodes back onto the table model, in node order.
func (g Graph) Tables() []model.Table {
	out := make([]model.Table, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		attrs := make([]model.Attribute, len(n.Data.Attributes))
		copy(attrs, n.Data.Attributes)
		out = append(out, model.Table{Name: n.TableName(), Attributes: attrs})
	}
	return out
}

// EdgeID is the stable id of the edge from refTable.refAttr to table.attr.
func EdgeID(refTable, refAttr, table, attr string) string {
	return fmt.Sprintf("%s-%s-to-%s-%s", refTable, refAttr, table, attr)
}

func SourceHandle(table, attr string) string { return table + "-" + attr + "-source" }

func TargetHandle(table, attr string) string { return table + "-" + attr + "-target" }

// Side is the end of an edge a handle belongs to.
type Side string

const (
	Source Side = "source"
	Target Side = "target"
)

var handlePattern = regexp.MustCompile(`^(.+)-(.+)-(source|target)$`)

// ParseHandle splits a handle id into table, attribute and side. The table
// part is matched greedily, so attribute names cannot contain "-".
func ParseHandle(h string) (table, attr string, side Side, ok bool) {
	m := handlePattern.FindStringSubmatch(h)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], Side(m[3]), true
}

// Connection is an edge the user drew between two handles.
type Connection struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

// ConnectionInfo is a decoded Connection.
type ConnectionInfo struct {
	SourceTable string `json:"sourceTable"`
	SourceAttr  string `json:"sourceAttr"`
	TargetTable string `json:"targetTable"`
	TargetAttr  string `json:"targetAttr"`
}

// ParseConnection decodes both handles of c. It fails unless the source
// handle is a source side and the target handle a target side.
func ParseConnection(c Connection) (ConnectionInfo, bool) {
	st, sa, ss, ok := ParseHandle(c.SourceHandle)
	if !ok || ss != Source {
		return ConnectionInfo{}, false
	}
	tt, ta, ts, ok := ParseHandle(c.TargetHandle)
	if !ok || ts != Target {
		return ConnectionInfo{}, false
	}
	return ConnectionInfo{SourceTable: st, SourceAttr: sa, TargetTable: tt, TargetAttr: ta}, true
}

// ValidConnection rejects self loops and connections without decodable handles.
func ValidConnection(c Connection) bool {
	if c.Source == c.Target {
		return false
	}
	_, ok := ParseConnection(c)
	return ok
}

// Connect turns a drawn connection into a foreign key: the target attribute
// starts referencing the source attribute. The updated graph is returned with
// its edges rebuilt; g is not modified.
func (g Graph) Connect(c Connection) (Graph, error) {
	if !ValidConnection(c) {
		return g, fmt.Errorf("invalid connection %s -> %s", c.SourceHandle, c.TargetHandle)
	}
	info, _ := ParseConnection(c)

	nodes := make([]Node, len(g.Nodes))
	for i, n := range g.Nodes {
		n.Data.Attributes = append([]model.Attribute(nil), n.Data.Attributes...)
		nodes[i] = n
	}

	src := findNode(nodes, info.SourceTable)
	if src == nil {
		return g, fmt.Errorf("connection source table %s: reference not found", info.SourceTable)
	}
	var srcAttr *model.Attribute
	for i := range src.Data.Attributes {
		if src.Data.Attributes[i].Name == info.SourceAttr {
			srcAttr = &src.Data.Attributes[i]
		}
	}
	if srcAttr == nil || srcAttr.Type == model.FK {
		return g, fmt.Errorf("connection source column %s.%s: reference not found", info.SourceTable, info.SourceAttr)
	}

	dst := findNode(nodes, info.TargetTable)
	if dst == nil {
		return g, fmt.Errorf("connection target table %s: reference not found", info.TargetTable)
	}
	refName := src.Data.Label
	if refName == "" {
		refName = src.ID
	}
	found := false
	for i := range dst.Data.Attributes {
		if a := &dst.Data.Attributes[i]; a.Name == info.TargetAttr {
			a.SetReference(refName, srcAttr.Name)
			found = true
		}
	}
	if !found {
		return g, fmt.Errorf("connection target column %s.%s: reference not found", info.TargetTable, info.TargetAttr)
	}

	return Graph{Nodes: nodes, Edges: EdgesFromForeignKeys(nodes)}, nil
}
