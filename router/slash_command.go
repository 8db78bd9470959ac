package router

import "github.com/slack-go/slack"

// SlashCommandRoute handles Slack slash command invocations.
// Plugin execution is dispatched asynchronously in a goroutine, so the HTTP
// handler acknowledges the command with an empty 200 within Slack's 3-second
// deadline. All user-visible output goes through the provided Responder,
// which delivers ephemeral messages via the command's response_url and
// enforces the reply-exactly-once lifecycle.
type SlashCommandRoute struct {
	Route
	Command string // Slack command name, e.g. "/attribute-speakers"
	Plugin  func(router Router, route Route, api slack.Client, cmd slack.SlashCommand, resp *Responder)
}

// Execute calls Plugin()
func (route SlashCommandRoute) Execute(router Router, api slack.Client, cmd slack.SlashCommand, resp *Responder) {
	route.Plugin(router, route.Route, api, cmd, resp)
}
