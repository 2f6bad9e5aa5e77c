package memory

// ExtractUserID walks a filters mapping breadth-first looking for a usable
// user_id. Clients send filters in several shapes: a plain value, a
// comparison object like {"eq": "u1"}, a membership object like
// {"in": ["u1"]}, or any of those nested under AND/OR groups.
// Returns "" when no user_id can be recovered.
func ExtractUserID(filters map[string]interface{}) string {
	if len(filters) == 0 {
		return ""
	}

	queue := []interface{}{filters}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		switch node := current.(type) {
		case map[string]interface{}:
			if v, ok := node["user_id"]; ok {
				if userID := userIDFromValue(v); userID != "" {
					return userID
				}
			}
			for _, v := range node {
				queue = append(queue, v)
			}
		case []interface{}:
			for _, v := range node {
				queue = append(queue, v)
			}
		}
	}

	return ""
}

// userIDFromValue unwraps the supported value shapes for a user_id filter.
func userIDFromValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case map[string]interface{}:
		if eq, ok := value["eq"].(string); ok {
			return eq
		}
		if in, ok := value["in"].([]interface{}); ok && len(in) > 0 {
			if first, ok := in[0].(string); ok {
				return first
			}
		}
	}
	return ""
}
