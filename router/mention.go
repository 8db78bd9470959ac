package router

import (
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// MentionRoute handles app_mention events dispatched by pattern match.
type MentionRoute struct {
	Route
	Plugin func(router Router, route Route, api slack.Client, ev slackevents.AppMentionEvent, message string)
}

// Execute calls Plugin()
func (route MentionRoute) Execute(router Router, api slack.Client, ev slackevents.AppMentionEvent, message string) {
	route.Plugin(router, route.Route, api, ev, message)
}

// mentionRoutesSortedByPriority implements Sort such that those with higher priority are first
type mentionRoutesSortedByPriority []MentionRoute

func (a mentionRoutesSortedByPriority) Len() int { return len(a) }

func (a mentionRoutesSortedByPriority) Swap(i, j int) {
	a[i], a[j] = a[j], a[i]
}

func (a mentionRoutesSortedByPriority) Less(i, j int) bool {
	return a[i].Priority > a[j].Priority
}
