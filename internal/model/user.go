package model

import (
	"slices"
	"time"
)

// User is the externally visible farmer profile. It never carries the credential.
type User struct {
	ID            string   `json:"id" gorm:"primaryKey;size:64"`
	Name          string   `json:"name" gorm:"size:255;not null"`
	Email         string   `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Phone         string   `json:"phone" gorm:"size:32"`
	District      string   `json:"district" gorm:"size:64;index"`
	FarmSize      string   `json:"farmSize" gorm:"size:64"`
	Experience    string   `json:"experience" gorm:"size:64"`
	Language      string   `json:"language" gorm:"size:32"`
	FarmType      string   `json:"farmType" gorm:"size:64"`
	MainCrops     []string `json:"mainCrops" gorm:"serializer:json"`
	Address       string   `json:"address" gorm:"size:512"`
	Notifications bool     `json:"notifications"`
	WeatherAlerts bool     `json:"weatherAlerts"`
	MarketUpdates bool     `json:"marketUpdates"`
}

// Clone returns a deep copy so callers can't alias MainCrops.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.MainCrops != nil {
		c.MainCrops = slices.Clone(u.MainCrops)
	}
	return &c
}

// Account is a store entry: the profile plus its credential.
type Account struct {
	User         `gorm:"embedded"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// TableName keeps the table name stable regardless of the embedded struct.
func (Account) TableName() string {
	return "users"
}

// ProfilePatch is a partial profile. Nil fields are left untouched by Apply.
type ProfilePatch struct {
	Name          *string   `json:"name,omitempty"`
	Email         *string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string   `json:"phone,omitempty"`
	District      *string   `json:"district,omitempty"`
	FarmSize      *string   `json:"farmSize,omitempty"`
	Experience    *string   `json:"experience,omitempty"`
	Language      *string   `json:"language,omitempty"`
	FarmType      *string   `json:"farmType,omitempty"`
	MainCrops     *[]string `json:"mainCrops,omitempty"`
	Address       *string   `json:"address,omitempty"`
	Notifications *bool     `json:"notifications,omitempty"`
	WeatherAlerts *bool     `json:"weatherAlerts,omitempty"`
	MarketUpdates *bool     `json:"marketUpdates,omitempty"`
}

// Apply returns a copy of u with every provided field of p overwritten.
func (p ProfilePatch) Apply(u *User) *User {
	out := u.Clone()
	setString(&out.Name, p.Name)
	setString(&out.Email, p.Email)
	setString(&out.Phone, p.Phone)
	setString(&out.District, p.District)
	setString(&out.FarmSize, p.FarmSize)
	setString(&out.Experience, p.Experience)
	setString(&out.Language, p.Language)
	setString(&out.FarmType, p.FarmType)
	setString(&out.Address, p.Address)
	if p.MainCrops != nil {
		out.MainCrops = slices.Clone(*p.MainCrops)
	}
	setBool(&out.Notifications, p.Notifications)
	setBool(&out.WeatherAlerts, p.WeatherAlerts)
	setBool(&out.MarketUpdates, p.MarketUpdates)
	return out
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p == ProfilePatch{}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
