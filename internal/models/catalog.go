package models

import (
	"bytes"
	"encoding/json"
)

// Category is a top-level navigation group owned by the backend.
type Category struct {
	ID     string   `json:"_id"`
	Name   string   `json:"name"`
	Slug   string   `json:"slug"`
	Image  string   `json:"image,omitempty"`
	Images []string `json:"images,omitempty"`
}

// Manufacturer is a product brand.
type Manufacturer struct {
	ID     string   `json:"_id"`
	Name   string   `json:"name"`
	Slug   string   `json:"slug"`
	Image  string   `json:"image,omitempty"`
	Images []string `json:"images,omitempty"`
}

// Subcategory belongs to a Category.
type Subcategory struct {
	ID         string   `json:"_id"`
	Name       string   `json:"name"`
	Slug       string   `json:"slug"`
	Image      string   `json:"image,omitempty"`
	Images     []string `json:"images,omitempty"`
	CategoryID Ref      `json:"categoryId"`
}

// Cover returns the first usable image of a navigation entity.
func Cover(image string, images []string) string {
	if image != "" {
		return image
	}
	for _, img := range images {
		if img != "" {
			return img
		}
	}
	return ""
}

// Ref is a reference that the backend sends either as a bare id or as an
// embedded document.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// UnmarshalJSON accepts "id", {"_id": ...} and null.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}

	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}

	type plain Ref
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Ref(p)
	return nil
}

// IsZero reports whether the reference is empty.
func (r Ref) IsZero() bool {
	return r.ID == "" && r.Name == "" && r.Slug == ""
}
