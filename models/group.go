package models

import (
	"time"

	"gorm.io/gorm"
)

// Group is a named set of users. Route permissions name groups; membership
// in any named group (or in globalAdmins) grants access to a route.
type Group struct {
	gorm.Model
	ID        uint
	Name      string `gorm:"index:,unique"`
	Members   []User `gorm:"many2many:user_groups;"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasMember reports whether user is in the group's loaded Members. Callers
// must Preload("Members") first; an unloaded group matches nobody.
func (g Group) HasMember(user User) bool {
	hasMember := false
	for _, member := range g.Members {
		if member.Uuid == user.Uuid {
			hasMember = true
			break
		}
	}
	return hasMember
}
