package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User owns its addresses and profile (both deleted with it), shares tags
// with other users and keeps a wishlist of favourite products.
type User struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string     `gorm:"not null" json:"name"`
	Email            string     `gorm:"not null;index" json:"email"`
	Password         string     `gorm:"not null" json:"-"`
	Addresses        []*Address `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
	Profile          *Profile   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Tags             []*Tag     `gorm:"many2many:user_tags" json:"tags,omitempty"`
	FavoriteProducts []*Product `gorm:"many2many:wishlists" json:"favorite_products,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Link restores the back-references of everything loaded with the user.
func (u *User) Link() {
	for _, a := range u.Addresses {
		a.user = u
	}
	if u.Profile != nil {
		u.Profile.user = u
	}
	for _, t := range u.Tags {
		t.addUser(u)
	}
}

// AddAddress appends address and points it at u. An address already in the
// list (same pointer or id) is not added twice.
func (u *User) AddAddress(address *Address) {
	if address == nil {
		return
	}
	if u.indexOfAddress(address) < 0 {
		u.Addresses = append(u.Addresses, address)
	}
	address.user = u
	address.UserID = u.ID
}

// RemoveAddress drops address from the list and clears its back-reference.
// Unknown addresses are ignored.
func (u *User) RemoveAddress(address *Address) {
	if address == nil {
		return
	}
	idx := u.indexOfAddress(address)
	if idx < 0 {
		return
	}
	removed := u.Addresses[idx]
	u.Addresses = slices.Delete(u.Addresses, idx, idx+1)
	for _, a := range []*Address{removed, address} {
		a.user = nil
		a.UserID = uuid.Nil
	}
}

func (u *User) indexOfAddress(address *Address) int {
	return slices.IndexFunc(u.Addresses, func(existing *Address) bool {
		return existing == address || (address.ID != uuid.Nil && existing.ID == address.ID)
	})
}

func (u *User) AddressByID(id uuid.UUID) *Address {
	for _, a := range u.Addresses {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// SetProfile replaces any existing profile without complaint.
func (u *User) SetProfile(profile *Profile) {
	u.Profile = profile
	if profile != nil {
		profile.user = u
		profile.UserID = u.ID
	}
}

// RemoveProfile empties the user's profile slot. The profile keeps
// pointing at the user; the repository deletes it as an orphan.
func (u *User) RemoveProfile() {
	u.Profile = nil
}

// AddTags adds each tag once. A tag already present by pointer or id is skipped.
func (u *User) AddTags(tags ...*Tag) {
	for _, t := range tags {
		if t == nil || u.hasTag(t) {
			continue
		}
		u.Tags = append(u.Tags, t)
		t.addUser(u)
	}
}

// RemoveTag removes every tag called name. Tags sharing a name cannot be
// told apart here; use RemoveTagByID when that matters.
func (u *User) RemoveTag(name string) int {
	return u.removeTags(func(t *Tag) bool { return t.Name == name })
}

func (u *User) RemoveTagByID(id uuid.UUID) bool {
	return u.removeTags(func(t *Tag) bool { return t.ID == id }) > 0
}

func (u *User) removeTags(match func(*Tag) bool) int {
	kept := make([]*Tag, 0, len(u.Tags))
	removed := 0
	for _, t := range u.Tags {
		if match(t) {
			t.removeUser(u)
			removed++
			continue
		}
		kept = append(kept, t)
	}
	u.Tags = kept
	return removed
}

func (u *User) hasTag(tag *Tag) bool {
	for _, t := range u.Tags {
		if sameTag(t, tag) {
			return true
		}
	}
	return false
}

// AddFavorite puts product on the wishlist; false if it was already there.
func (u *User) AddFavorite(product *Product) bool {
	for _, p := range u.FavoriteProducts {
		if sameProduct(p, product) {
			return false
		}
	}
	u.FavoriteProducts = append(u.FavoriteProducts, product)
	return true
}

func (u *User) RemoveFavorite(productID uuid.UUID) bool {
	before := len(u.FavoriteProducts)
	u.FavoriteProducts = slices.DeleteFunc(u.FavoriteProducts, func(p *Product) bool {
		return p.ID == productID
	})
	return len(u.FavoriteProducts) != before
}
