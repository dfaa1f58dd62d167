package models

// SessionEntry is one persisted key of a visitor session, the server-side
// counterpart of a browser local-storage slot.
type SessionEntry struct {
	BaseModel
	SessionID string `gorm:"size:64;not null;uniqueIndex:idx_session_key" json:"session_id"`
	Key       string `gorm:"size:64;not null;uniqueIndex:idx_session_key" json:"key"`
	Value     string `gorm:"type:text" json:"value"`
}

// CartItem is a product line held in the visitor's cart.
type CartItem struct {
	ProductID string  `json:"productId"`
	Slug      string  `json:"slug"`
	Title     string  `json:"title"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}
