package handlers

import "fmt"

// eventKey derives the kafka partition key from the event payload. Events
// that carry no id field (cart_cleared) get an empty key.
func eventKey(event map[string]any, field string) string {
	if v, ok := event[field]; ok {
		return fmt.Sprint(v)
	}
	return ""
}
