package router

import (
	"regexp"
	"sort"

	"github.com/relay-bot/relay/models"

	"gorm.io/gorm"
)

// Route holds the metadata shared by all route kinds.
type Route struct {
	Name        string
	Pattern     string
	Description string
	Help        string
	Permissions []string
	Priority    int
}

// Router dispatches Slack events and slash commands to registered routes.
type Router struct {
	MentionRoutes           map[string]MentionRoute
	SlashCommandRoutes      map[string]SlashCommandRoute
	DefaultMentionRoute     MentionRoute
	DeniedMentionRoute      MentionRoute
	DeniedSlashCommandRoute SlashCommandRoute
	DbConnection            *gorm.DB
	BotUID                  string
}

// NewRouter returns a Router with empty route tables.
func NewRouter() *Router {
	var newRouter Router
	newRouter.MentionRoutes = make(map[string]MentionRoute)
	newRouter.SlashCommandRoutes = make(map[string]SlashCommandRoute)
	return &newRouter
}

// SetupDb migrates the schemas backing the permission layer.
func (router Router) SetupDb() {
	router.DbConnection.AutoMigrate(&models.Group{})
	router.DbConnection.AutoMigrate(&models.User{})
}

// FindMentionRouteByName returns the named mention route.
func (router Router) FindMentionRouteByName(name string) (MentionRoute, bool) {
	route, exists := router.MentionRoutes[name]
	return route, exists
}

// FindMentionRouteByMessage returns the highest-priority mention route whose
// Pattern matches the message.
func (router Router) FindMentionRouteByMessage(message string) (MentionRoute, bool) {
	var matchingRoute MentionRoute
	foundRoute := false
	sortedRoutes := make([]MentionRoute, 0, len(router.MentionRoutes))

	for _, value := range router.MentionRoutes {
		sortedRoutes = append(sortedRoutes, value)
	}
	sort.Sort(mentionRoutesSortedByPriority(sortedRoutes))

	for _, route := range sortedRoutes {
		re := regexp.MustCompile(route.Pattern)
		if re.MatchString(message) {
			matchingRoute = route
			foundRoute = true
			break
		}
	}
	return matchingRoute, foundRoute
}

// FindSlashCommandRouteByCommand returns the route registered for the given
// command name (e.g. "/attribute-speakers").
func (router Router) FindSlashCommandRouteByCommand(command string) (SlashCommandRoute, bool) {
	for _, route := range router.SlashCommandRoutes {
		if route.Command == command {
			return route, true
		}
	}
	return SlashCommandRoute{}, false
}

// Can returns true if `u` possesses any of the provided permissions. Members
// of globalAdmins always pass; routes with no permissions or a "*" entry are
// open to everyone.
func (router Router) Can(u models.User, permissions []string) bool {
	isAllowed := false
	var userGroupNames []string
	var userGroups []models.Group

	router.DbConnection.Model(&u).Association("Groups").Find(&userGroups)

	for _, userGroup := range userGroups {
		groupName := userGroup.Name
		// If the user is a global admin, let them through
		if groupName == "globalAdmins" {
			isAllowed = true
			break
		}
		userGroupNames = append(userGroupNames, userGroup.Name)
	}

	if isAllowed {
		return isAllowed
	} else if len(permissions) == 0 {
		// if no permissions are defined, assume it is open/allow all
		return true
	} else {
		for _, groupName := range permissions {
			// If everyone is allowed, stop checking
			if groupName == "*" {
				isAllowed = true
				break
			}

			// user groups _must_ be smaller than all groups
			for _, userGroup := range userGroupNames {
				if groupName == userGroup {
					isAllowed = true
					break
				}
			}
			if isAllowed {
				break
			}
		}
	}
	return isAllowed
}

// AddMentionRoute upserts an element into MentionRoutes keyed by Name.
func (router Router) AddMentionRoute(route MentionRoute) {
	router.MentionRoutes[route.Name] = route
}

// AddMentionRoutes calls AddMentionRoute() for each element in routes.
func (router Router) AddMentionRoutes(routes []MentionRoute) {
	for _, route := range routes {
		router.AddMentionRoute(route)
	}
}

// AddSlashCommandRoute upserts an element into SlashCommandRoutes keyed by Name.
func (router Router) AddSlashCommandRoute(route SlashCommandRoute) {
	router.SlashCommandRoutes[route.Name] = route
}

// AddSlashCommandRoutes calls AddSlashCommandRoute() for each element in routes.
func (router Router) AddSlashCommandRoutes(routes []SlashCommandRoute) {
	for _, route := range routes {
		router.AddSlashCommandRoute(route)
	}
}
