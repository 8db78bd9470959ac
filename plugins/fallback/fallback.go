package fallback

import (
	"github.com/relay-bot/relay/plugins/helpers"
	"github.com/relay-bot/relay/router"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

func GetMentionRoute() *router.MentionRoute {
	var pluginRoute router.MentionRoute
	pluginRoute.Permissions = append(pluginRoute.Permissions, "*")
	pluginRoute.Name = "fallback"
	pluginRoute.Plugin = func(rtr router.Router, route router.Route, api slack.Client, ev slackevents.AppMentionEvent, message string) {
		helpers.PostMessage(
			api,
			ev.Channel,
			"fallback",
			slack.MsgOptionText(usageFor(ev.User), false),
			helpers.ThreadReplyOption(ev.ThreadTimeStamp),
		)
	}
	return &pluginRoute
}

func usageFor(user string) string {
	return "Hi there, <@" + user + ">! I didn't catch that. I mostly work through the " +
		"`/attribute-speakers` slash command:\n" +
		"`/attribute-speakers EXECUTION_ID speaker_00:name,speaker_01:name TRANSCRIPTION_ID`\n" +
		"You can also mention me with `my groups` or `list groups`."
}
