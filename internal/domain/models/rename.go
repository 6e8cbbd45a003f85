package models

// KeyChange is one entry of a bulk rename plan: the component's current key,
// the key computed by substring replacement, and whether the new key collides
// with another existing component.
type KeyChange struct {
	Key       string `json:"key"`
	NewKey    string `json:"newKey"`
	Duplicate bool   `json:"duplicate"`
}

// BulkUpdateKeyResult is the response of a bulk key update, ordered by old
// key. It is returned for dry runs and applied runs alike.
type BulkUpdateKeyResult struct {
	Keys []KeyChange `json:"keys"`
}

// HasDuplicates reports whether any planned key collides with an existing one.
func (r *BulkUpdateKeyResult) HasDuplicates() bool {
	for _, k := range r.Keys {
		if k.Duplicate {
			return true
		}
	}
	return false
}

// DuplicateKeys returns the colliding new keys, in plan order.
func (r *BulkUpdateKeyResult) DuplicateKeys() []string {
	var keys []string
	for _, k := range r.Keys {
		if k.Duplicate {
			keys = append(keys, k.NewKey)
		}
	}
	return keys
}
