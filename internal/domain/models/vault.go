package models

import "sort"

// Secrets is the full key/value map stored in a namespace vault
type Secrets map[string]string

// Clone returns an independent copy
func (s Secrets) Clone() Secrets {
	out := make(Secrets, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// With returns a copy with key set to value
func (s Secrets) With(key, value string) Secrets {
	out := s.Clone()
	out[key] = value
	return out
}

// Without returns a copy with key removed
func (s Secrets) Without(key string) Secrets {
	out := s.Clone()
	delete(out, key)
	return out
}

// Keys returns the keys in sorted order
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
