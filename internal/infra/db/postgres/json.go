package postgres

import "encoding/json"

// jsonbArg marshals a map for a jsonb parameter; nil maps become NULL.
func jsonbArg(m map[string]interface{}) (interface{}, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// jsonbMergeArg is like jsonbArg but yields an empty object for nil so the
// value can be concatenated onto an existing jsonb column unconditionally.
func jsonbMergeArg(m map[string]interface{}) (interface{}, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// scanJSONB unmarshals a jsonb column read as raw bytes; NULL stays nil.
func scanJSONB(b []byte, dst *map[string]interface{}) {
	if len(b) == 0 {
		return
	}
	_ = json.Unmarshal(b, dst)
}
