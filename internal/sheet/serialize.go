package sheet

import "encoding/json"

// ColumnDoc is one entry of the serialized "columns" array.
type ColumnDoc struct {
	ID   ColumnID `json:"id"`
	Type string   `json:"type"`
}

// RowDoc is one entry of the serialized "rows" array.
type RowDoc struct {
	ID                   RowID          `json:"id"`
	CellValuesByColumnID map[string]any `json:"cellValuesByColumnId"`
}

// TableDoc is the exact wire shape getData() must produce.
type TableDoc struct {
	Columns []ColumnDoc `json:"columns"`
	Rows    []RowDoc    `json:"rows"`
}

// Doc builds the TableDoc for t.
func (t *Table) Doc() TableDoc {
	doc := TableDoc{
		Columns: make([]ColumnDoc, 0, len(t.columnOrder)),
		Rows:    make([]RowDoc, 0, len(t.rowOrder)),
	}
	for _, col := range t.columnOrder {
		doc.Columns = append(doc.Columns, ColumnDoc{ID: col, Type: t.columnTypes[col].String()})
	}
	for _, row := range t.rowOrder {
		byCol := t.cells[row]
		values := make(map[string]any, len(byCol))
		for col, v := range byCol {
			values[string(col)] = v.Raw()
		}
		doc.Rows = append(doc.Rows, RowDoc{ID: row, CellValuesByColumnID: values})
	}
	return doc
}

// Serialize renders t as the exact wire document a client's getData
// returns.
func (t *Table) Serialize() (string, error) {
	b, err := json.Marshal(t.Doc())
	if err != nil {
		return "", err
	}
	return string(b), nil
}
