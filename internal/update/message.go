package update

import "tablesync/internal/sheet"

// Message is the 4-tuple a client sends to propose an edit and the
// coordinator echoes back once ordered into history. GroupID ties a run
// of messages issued between sync points together for dependent
// rejection; Version is the client's baseline version, used only while
// NeedsTransform is true.
type Message struct {
	Version   sheet.Version
	GroupID   sheet.GroupID
	Update    Update
	MessageID sheet.MessageID
}
