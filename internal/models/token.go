package models

import "encoding/json"

// TokenMetadata is one resolved metadata entry per token. Created by the
// metadata resolver, persisted by the store, never mutated afterwards except
// by a full pipeline rerun that replaces the whole store.
type TokenMetadata struct {
	// Key is the token identifier derived from the title.
	Key TokenKey `json:"key"`
	// Title is the token title as it appears in the metadata document.
	Title string `json:"title"`
	// Description is the free-text description of the token.
	Description string `json:"description"`
	// Traits maps trait name to trait value. The set of names is fixed per
	// collection; an absent value is recorded as the empty string and scored
	// as its own category.
	Traits map[string]string `json:"traits"`
	// Media is the resolved HTTP(S) URL of the token media.
	Media string `json:"media"`
	// Tags is an opaque passthrough of the metadata document's tags field.
	Tags json.RawMessage `json:"tags,omitempty"`
}
