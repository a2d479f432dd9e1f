package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Base
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	FirstName    string     `gorm:"size:100;not null" json:"first_name"`
	LastName     string     `gorm:"size:100;not null" json:"last_name"`
	Phone        string     `gorm:"size:20" json:"phone,omitempty"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	IsVerified   bool       `gorm:"default:false" json:"is_verified"`

	Addresses []Address       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
	Orders    []Order         `gorm:"foreignKey:UserID" json:"-"`
	Reviews   []ProductReview `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Wishlist  []Wishlist      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type Address struct {
	Base
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	StreetAddress string    `gorm:"size:255;not null" json:"street_address"`
	Apartment     string    `gorm:"size:100" json:"apartment,omitempty"`
	City          string    `gorm:"size:100;not null" json:"city"`
	State         string    `gorm:"size:100;not null" json:"state"`
	PostalCode    string    `gorm:"size:20;not null" json:"postal_code"`
	Country       string    `gorm:"size:100;not null;default:'Argentina'" json:"country"`
	IsDefault     bool      `gorm:"default:false" json:"is_default"`
	AddressType   string    `gorm:"size:20;default:'shipping'" json:"address_type"`
}

func (Address) TableName() string {
	return "addresses"
}

// FullAddress renders the address as a single display line.
func (a *Address) FullAddress() string {
	parts := a.StreetAddress
	if a.Apartment != "" {
		parts += ", Apt " + a.Apartment
	}
	return parts + ", " + a.City + ", " + a.State + ", " + a.PostalCode
}
