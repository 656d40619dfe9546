package progress

import (
	"encoding/json"
	"fmt"
)

// decodeRoot parses a persisted record, migrating legacy shapes forward.
//
// A legacy single-user record is a bare profile at the root: it has a
// "chapters" key and no "users" key. It is wrapped into a synthetic
// Default User profile that becomes the current user.
func decodeRoot(data []byte) (*RootRecord, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode progress record: %w", err)
	}

	_, hasChapters := probe["chapters"]
	_, hasUsers := probe["users"]

	if hasChapters && !hasUsers {
		var legacy UserProfile
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("decode legacy profile: %w", err)
		}
		if legacy.Name == "" {
			legacy.Name = DefaultUserName
		}
		root := newRoot()
		root.Users[DefaultUserID] = &legacy
		root.CurrentUser = DefaultUserID
		root.normalize()
		return root, nil
	}

	var root RootRecord
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode progress record: %w", err)
	}
	if root.SchemaVersion == 0 {
		root.SchemaVersion = SchemaVersion
	}
	root.normalize()
	return &root, nil
}
