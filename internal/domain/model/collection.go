package model

import "encoding/json"

// Collection is the ordered list of looked-up repositories, oldest first.
// Duplicates are allowed; entries are never edited or removed individually.
type Collection []RepositorySummary

// Append returns a new Collection with repo added at the end. The receiver's
// backing array is never shared with the result.
func (c Collection) Append(repo RepositorySummary) Collection {
	out := make(Collection, len(c), len(c)+1)
	copy(out, c)
	return append(out, repo)
}

// Clone returns an independent copy. A nil Collection clones to an empty one.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// Find returns the first entry whose FullName matches fullName.
func (c Collection) Find(fullName string) (RepositorySummary, bool) {
	for _, r := range c {
		if r.FullName == fullName {
			return r, true
		}
	}
	return RepositorySummary{}, false
}

// Encode serializes the collection as a JSON array. A nil collection encodes
// as "[]" so stored values always decode back to a slice.
func (c Collection) Encode() ([]byte, error) {
	return json.Marshal(c.Clone())
}

// DecodeCollection parses a value produced by Encode.
func DecodeCollection(data []byte) (Collection, error) {
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c == nil {
		c = Collection{}
	}
	return c, nil
}
