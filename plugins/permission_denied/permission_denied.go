package permission_denied

import (
	"github.com/relay-bot/relay/plugins/helpers"
	"github.com/relay-bot/relay/router"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

func GetMentionRoute() *router.MentionRoute {
	var pluginRoute router.MentionRoute
	pluginRoute.Permissions = append(pluginRoute.Permissions, "*")
	pluginRoute.Name = "permission_denied"
	pluginRoute.Plugin = func(rtr router.Router, route router.Route, api slack.Client, ev slackevents.AppMentionEvent, message string) {
		helpers.AddReaction(api, ev.Channel, "permission_denied", "astonished", ev.TimeStamp)
		helpers.PostMessage(
			api,
			ev.Channel,
			"permission_denied",
			slack.MsgOptionText("I'm sorry, <@"+ev.User+">, but you're not allowed to do that.", false),
		)
	}
	return &pluginRoute
}

// GetSlashCommandRoute replies ephemerally through the command's Responder
// so the denial is only visible to the invoking user.
func GetSlashCommandRoute() *router.SlashCommandRoute {
	var pluginRoute router.SlashCommandRoute
	pluginRoute.Permissions = append(pluginRoute.Permissions, "*")
	pluginRoute.Name = "permission_denied.slash"
	pluginRoute.Plugin = func(rtr router.Router, route router.Route, api slack.Client, cmd slack.SlashCommand, resp *router.Responder) {
		if err := resp.ReplyImmediately("I'm sorry, <@" + cmd.UserID + ">, but you're not allowed to do that."); err != nil {
			log.Error().Err(err).Str("user", cmd.UserID).Str("plugin", "permission_denied").Msg("Failed to send denial reply")
		}
	}
	return &pluginRoute
}
