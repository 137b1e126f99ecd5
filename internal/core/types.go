// Package core provides the domain types shared by the cache, upstream and bot packages.
package core

// DefaultDisplayName is used when an upstream record carries no author name.
const DefaultDisplayName = "unknown"

// Item is one presentable meme: an image plus the author shown in the footer.
// Items are values; nothing mutates them after construction.
type Item struct {
	DisplayName string `json:"display_name"`
	ImageURL    string `json:"image_url"`
	// AvatarURL is empty when the author has no avatar.
	AvatarURL string `json:"avatar_url,omitempty"`
}

// NewItem builds an Item from raw upstream fields.
// Returns false when imageURL is empty; such records never become items.
func NewItem(displayName, imageURL, avatarURL string) (Item, bool) {
	if imageURL == "" {
		return Item{}, false
	}
	if displayName == "" {
		displayName = DefaultDisplayName
	}
	return Item{
		DisplayName: displayName,
		ImageURL:    imageURL,
		AvatarURL:   avatarURL,
	}, true
}

// HasAvatar reports whether the item carries its own author avatar.
func (i Item) HasAvatar() bool {
	return i.AvatarURL != ""
}
