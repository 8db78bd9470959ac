package groups

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/relay-bot/relay/models"
	"github.com/relay-bot/relay/plugins/helpers"
	"github.com/relay-bot/relay/router"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"gorm.io/gorm"
)

// Group membership is what gates access to the workflow bridge: admins can
// add operators to a group named in a route's Permissions (or rely on the
// default open "*" routes).

func getMyGroups() *router.MentionRoute {
	var pluginRoute router.MentionRoute
	pluginRoute.Permissions = append(pluginRoute.Permissions, "*")
	pluginRoute.Name = "groups.getMyGroups"
	pluginRoute.Pattern = `(?i)^((list )?my groups|which groups am I (in|a member of))[.?]?$`
	pluginRoute.Help = "my groups"
	pluginRoute.Plugin = func(rtr router.Router, route router.Route, api slack.Client, ev slackevents.AppMentionEvent, message string) {
		var currentUser models.User
		rtr.DbConnection.Preload("Groups").FirstOrCreate(&currentUser, models.User{Uuid: ev.User})

		greeting := "Here are your groups, <@" + ev.User + ">:"
		if info := currentUser.Info(api); info != nil && info.RealName != "" {
			greeting = fmt.Sprintf("Here are your groups, %s:", info.RealName)
		}

		response := greeting + "\n"
		if len(currentUser.Groups) > 0 {
			for _, group := range currentUser.Groups {
				response += fmt.Sprintf("*-* %s\n", group.Name)
			}
		} else {
			response += "You don't seem to be a member of _any_ groups. Bummer."
		}

		helpers.PostMessage(api, ev.Channel, route.Name, slack.MsgOptionText(response, false))
	}
	return &pluginRoute
}

func getAllGroups() *router.MentionRoute {
	var pluginRoute router.MentionRoute
	pluginRoute.Permissions = append(pluginRoute.Permissions, "admins")
	pluginRoute.Name = "groups.getAllGroups"
	pluginRoute.Pattern = `(?i)^(list|list all|all) groups\.?$`
	pluginRoute.Help = "list groups"
	pluginRoute.Plugin = func(rtr router.Router, route router.Route, api slack.Client, ev slackevents.AppMentionEvent, message string) {
		var groups []models.Group
		rtr.DbConnection.Find(&groups)

		response := "Here are *all* the groups I know about:\n"
		for _, group := range groups {
			response += fmt.Sprintf("*-* %s\n", group.Name)
		}

		helpers.PostMessage(api, ev.Channel, route.Name, slack.MsgOptionText(response, false))
	}
	return &pluginRoute
}

func addUserToGroup() *router.MentionRoute {
	var pluginRoute router.MentionRoute
	pluginRoute.Permissions = append(pluginRoute.Permissions, "admins")
	pluginRoute.Name = "groups.addUserToGroup"
	pluginRoute.Pattern = `(?i)^add <@([a-z0-9]+)> to( group)? ([a-z0-9-]+)\.?$`
	pluginRoute.Help = "add @user to GROUP"
	pluginRoute.Plugin = func(rtr router.Router, route router.Route, api slack.Client, ev slackevents.AppMentionEvent, message string) {
		helpers.AddReaction(api, ev.Channel, route.Name, "tada", ev.TimeStamp)

		re := regexp.MustCompile(route.Pattern)
		results := re.FindStringSubmatch(message)
		userName := results[1]
		groupName := results[3]

		var foundGroup models.Group
		var foundUser models.User
		rtr.DbConnection.Where(models.Group{Name: groupName}).FirstOrCreate(&foundGroup)
		rtr.DbConnection.Where(models.User{Uuid: userName}).FirstOrCreate(&foundUser)
		rtr.DbConnection.Model(&foundGroup).Association("Members").Append(&foundUser)

		helpers.PostMessage(
			api,
			ev.Channel,
			route.Name,
			slack.MsgOptionText(fmt.Sprintf("I successfully added <@%s> to %s!", userName, groupName), false),
		)
	}
	return &pluginRoute
}

func removeUserFromGroup() *router.MentionRoute {
	var pluginRoute router.MentionRoute
	pluginRoute.Permissions = append(pluginRoute.Permissions, "admins")
	pluginRoute.Name = "groups.removeUserFromGroup"
	pluginRoute.Pattern = `(?i)^remove <@([a-z0-9]+)> from( group)? ([a-z0-9-]+)\.?$`
	pluginRoute.Help = "remove @user from GROUP"
	pluginRoute.Plugin = func(rtr router.Router, route router.Route, api slack.Client, ev slackevents.AppMentionEvent, message string) {
		re := regexp.MustCompile(route.Pattern)
		results := re.FindStringSubmatch(message)
		userName := results[1]
		groupName := results[3]

		var foundGroup models.Group
		var foundUser models.User
		var response string

		rtr.DbConnection.Where(models.User{Uuid: userName}).FirstOrCreate(&foundUser)
		groupQueryResult := rtr.DbConnection.Preload("Members").Where(models.Group{Name: groupName}).First(&foundGroup)

		if errors.Is(groupQueryResult.Error, gorm.ErrRecordNotFound) {
			response = fmt.Sprintf("I couldn't find a group named '%s'.", groupName)
		} else if !foundGroup.HasMember(foundUser) {
			response = fmt.Sprintf("It doesn't look like <@%s> is a member of %s.", userName, groupName)
		} else {
			var newMembersList []models.User
			for _, member := range foundGroup.Members {
				if member.Uuid != foundUser.Uuid {
					newMembersList = append(newMembersList, member)
				}
			}
			rtr.DbConnection.Model(&foundGroup).Association("Members").Replace(newMembersList)
			response = fmt.Sprintf("<@%s> is no longer a member of %s!", userName, groupName)
		}

		helpers.PostMessage(api, ev.Channel, route.Name, slack.MsgOptionText(response, false))
	}
	return &pluginRoute
}

// GetMentionRoutes Slice of all MentionRoutes
func GetMentionRoutes() []router.MentionRoute {
	return []router.MentionRoute{
		*getMyGroups(),
		*getAllGroups(),
		*addUserToGroup(),
		*removeUserFromGroup(),
	}
}
