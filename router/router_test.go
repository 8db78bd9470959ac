package router

import (
	"testing"

	"github.com/relay-bot/relay/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory SQLite: %v", err)
	}
	db.AutoMigrate(&models.Group{}, &models.User{})
	return db
}

func TestNewRouter_EmptyTables(t *testing.T) {
	r := NewRouter()
	assert.Empty(t, r.MentionRoutes)
	assert.Empty(t, r.SlashCommandRoutes)
}

func TestFindSlashCommandRouteByCommand(t *testing.T) {
	r := NewRouter()
	r.AddSlashCommandRoute(SlashCommandRoute{
		Route:   Route{Name: "attribution.attributeSpeakers"},
		Command: "/attribute-speakers",
	})

	route, exists := r.FindSlashCommandRouteByCommand("/attribute-speakers")
	assert.True(t, exists)
	assert.Equal(t, "attribution.attributeSpeakers", route.Name)

	_, exists = r.FindSlashCommandRouteByCommand("/unknown")
	assert.False(t, exists)
}

func TestAddSlashCommandRoutes_UpsertsByName(t *testing.T) {
	r := NewRouter()
	r.AddSlashCommandRoutes([]SlashCommandRoute{
		{Route: Route{Name: "one"}, Command: "/one"},
		{Route: Route{Name: "one"}, Command: "/one-replaced"},
	})

	assert.Len(t, r.SlashCommandRoutes, 1)
	assert.Equal(t, "/one-replaced", r.SlashCommandRoutes["one"].Command)
}

func TestFindMentionRouteByMessage_PrefersHigherPriority(t *testing.T) {
	r := NewRouter()
	r.AddMentionRoute(MentionRoute{
		Route: Route{Name: "catchall", Pattern: `.*`, Priority: -10},
	})
	r.AddMentionRoute(MentionRoute{
		Route: Route{Name: "specific", Pattern: `(?i)^my groups$`, Priority: 10},
	})

	route, exists := r.FindMentionRouteByMessage("my groups")
	assert.True(t, exists)
	assert.Equal(t, "specific", route.Name)
}

func TestFindMentionRouteByMessage_NoMatch(t *testing.T) {
	r := NewRouter()
	r.AddMentionRoute(MentionRoute{
		Route: Route{Name: "groups", Pattern: `(?i)^my groups$`},
	})

	_, exists := r.FindMentionRouteByMessage("something else entirely")
	assert.False(t, exists)
}

func TestFindMentionRouteByName(t *testing.T) {
	r := NewRouter()
	r.AddMentionRoute(MentionRoute{Route: Route{Name: "groups"}})

	_, exists := r.FindMentionRouteByName("groups")
	assert.True(t, exists)
	_, exists = r.FindMentionRouteByName("missing")
	assert.False(t, exists)
}

func TestCan_OpenRoutes(t *testing.T) {
	r := NewRouter()
	r.DbConnection = setupTestDB(t)

	var user models.User
	r.DbConnection.FirstOrCreate(&user, models.User{Uuid: "U123"})

	assert.True(t, r.Can(user, nil), "routes without permissions are open")
	assert.True(t, r.Can(user, []string{"*"}), "star routes are open")
}

func TestCan_GroupMembership(t *testing.T) {
	r := NewRouter()
	r.DbConnection = setupTestDB(t)

	var member, outsider models.User
	r.DbConnection.FirstOrCreate(&member, models.User{Uuid: "U_MEMBER"})
	r.DbConnection.FirstOrCreate(&outsider, models.User{Uuid: "U_OUTSIDER"})

	var operators models.Group
	r.DbConnection.Where(models.Group{Name: "workflow-operators"}).FirstOrCreate(&operators)
	r.DbConnection.Model(&operators).Association("Members").Append(&member)

	assert.True(t, r.Can(member, []string{"workflow-operators"}))
	assert.False(t, r.Can(outsider, []string{"workflow-operators"}))
}

func TestCan_GlobalAdminsOverride(t *testing.T) {
	r := NewRouter()
	r.DbConnection = setupTestDB(t)

	var admin models.User
	r.DbConnection.FirstOrCreate(&admin, models.User{Uuid: "U_ADMIN"})

	var globalAdmins models.Group
	r.DbConnection.Where(models.Group{Name: "globalAdmins"}).FirstOrCreate(&globalAdmins)
	r.DbConnection.Model(&globalAdmins).Association("Members").Append(&admin)

	assert.True(t, r.Can(admin, []string{"some-locked-down-group"}))
}

func TestUpdateBotUID(t *testing.T) {
	r := NewRouter()

	body := []byte(`{"type":"event_callback","authorizations":[{"user_id":"U_BOT","team_id":"T123"}]}`)
	err := r.UpdateBotUID(body)

	assert.NoError(t, err)
	assert.Equal(t, "U_BOT", r.BotUID)
}

func TestUpdateBotUID_NoAuthorizations(t *testing.T) {
	r := NewRouter()
	r.BotUID = "U_OLD"

	err := r.UpdateBotUID([]byte(`{"type":"event_callback"}`))

	assert.NoError(t, err)
	assert.Equal(t, "U_OLD", r.BotUID, "missing authorizations leave the cached UID alone")
}
