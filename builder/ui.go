package builder

import (
	"strconv"

	"go.viam.com/xviz/message"
)

type uiEntry struct {
	table *message.TreeTable
	nodes map[int]struct{}
}

// UIPrimitiveBuilder fills the tree table of a UI primitive stream.
type UIPrimitiveBuilder struct {
	b      *Builder
	stream string
	entry  *uiEntry
}

// UIPrimitive scopes the builder to the UI primitive stream id.
func (b *Builder) UIPrimitive(id string) (*UIPrimitiveBuilder, error) {
	_, enabled, err := b.scope(id, message.CategoryUIPrimitive)
	if err != nil {
		return nil, err
	}
	ub := &UIPrimitiveBuilder{b: b, stream: id}
	if !enabled {
		return ub, nil
	}
	entry, ok := b.ui[id]
	if !ok {
		entry = &uiEntry{nodes: map[int]struct{}{}}
		b.ui[id] = entry
	}
	ub.entry = entry
	return ub, nil
}

// TreeTable declares the columns of the stream's tree table.
func (ub *UIPrimitiveBuilder) TreeTable(columns []message.TreeTableColumn) error {
	if err := ub.b.checkOpen(ub.stream); err != nil {
		return err
	}
	if ub.entry == nil {
		return nil
	}
	if ub.entry.table != nil {
		return &DuplicateAssignmentError{Stream: ub.stream, Field: "treetable"}
	}
	ub.entry.table = &message.TreeTable{Columns: append([]message.TreeTableColumn(nil), columns...)}
	ub.b.touch()
	return nil
}

// Row adds node id under parent; a nil parent makes it a root.
func (ub *UIPrimitiveBuilder) Row(id int, parent *int, values ...string) error {
	if err := ub.b.checkOpen(ub.stream); err != nil {
		return err
	}
	if ub.entry == nil {
		return nil
	}
	if ub.entry.table == nil {
		return &NoPrimitiveError{Stream: ub.stream, Field: "row"}
	}
	if _, ok := ub.entry.nodes[id]; ok {
		return &DuplicateAssignmentError{Stream: ub.stream, Field: "row " + strconv.Itoa(id)}
	}
	node := message.TreeTableNode{ID: id, ColumnValues: append([]string(nil), values...)}
	if parent != nil {
		p := *parent
		node.Parent = &p
	}
	ub.entry.nodes[id] = struct{}{}
	ub.entry.table.Nodes = append(ub.entry.table.Nodes, node)
	return nil
}

func (b *Builder) finishUIPrimitives(update *message.StreamSet) {
	for id, e := range b.ui {
		if e.table == nil {
			continue
		}
		if update.UIPrimitives == nil {
			update.UIPrimitives = map[string]message.UIPrimitiveState{}
		}
		update.UIPrimitives[id] = message.UIPrimitiveState{TreeTable: e.table}
	}
}
