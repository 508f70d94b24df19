package ws

import (
	"encoding/json"

	"tablesync/internal/sheet"
)

// ClientMessage is the envelope a browser sends over the socket: Type names
// one of the eight update variants or a lifecycle action, and the carried
// fields mirror that variant's constructor arguments. The coordinator/
// client contract itself never leaves process — this envelope only carries
// primitive intent across the wire, never an update.Update value.
type ClientMessage struct {
	Type string `json:"type"`

	RowID       string  `json:"rowId,omitempty"`
	ColumnID    string  `json:"columnId,omitempty"`
	TargetIndex int     `json:"targetIndex,omitempty"`
	CellType    string  `json:"cellType,omitempty"`
	TextValue   string  `json:"textValue,omitempty"`
	NumberValue float64 `json:"numberValue,omitempty"`
}

// ServerMessage is the envelope pushed down to a browser: a lifecycle ack
// or the latest materialized view.
type ServerMessage struct {
	Type    string          `json:"type"`
	Version sheet.Version   `json:"version,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Content string          `json:"content,omitempty"`
}
