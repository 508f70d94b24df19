package presence

import "fmt"

// Key semantics:
//   - roomKey(coordinatorID): connected-client set, ZSet<clientId, expireAtUnix>
//   - namesKey(coordinatorID): clientId -> last-known groupId, Hash
const (
	keyRoomFmt  = "tablesync:room:%s"
	keyNamesFmt = "tablesync:room:groups:%s"
)

func roomKey(coordinatorID string) string  { return fmt.Sprintf(keyRoomFmt, coordinatorID) }
func namesKey(coordinatorID string) string { return fmt.Sprintf(keyNamesFmt, coordinatorID) }
