package models

import (
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Uuid   string  `gorm:"index:,unique"`
	Groups []Group `gorm:"many2many:user_groups;"`
}

// Info fetches the Slack profile for this user. Returns nil if the lookup
// fails; callers should fall back to the raw Uuid.
func (u User) Info(api slack.Client) *slack.User {
	info, err := api.GetUserInfo(u.Uuid)
	if err != nil {
		log.Warn().Err(err).Str("uuid", u.Uuid).Msg("Failed to get user info")
		return nil
	}

	return info
}
