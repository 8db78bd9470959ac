package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/relay-bot/relay/models"
	"github.com/relay-bot/relay/n8n"
	"github.com/relay-bot/relay/plugins/attribution"
	"github.com/relay-bot/relay/plugins/fallback"
	"github.com/relay-bot/relay/plugins/groups"
	"github.com/relay-bot/relay/plugins/permission_denied"
	"github.com/relay-bot/relay/router"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

var (
	// Slack Bot User OAuth Access Token which starts with "xoxb-"
	slackOauthToken = os.Getenv("SLACK_OAUTH_TOKEN")

	// Slack signing secret
	signingSecret = os.Getenv("SLACK_SIGNING_SECRET")

	// Base URL of the n8n instance holding waiting executions
	webhookBaseURL = os.Getenv("N8N_WEBHOOK_BASE_URL")

	dbUser     = os.Getenv("RELAY_DB_USER")
	dbPass     = os.Getenv("RELAY_DB_PASS")
	dbHost     = os.Getenv("RELAY_DB_HOST")
	dbName     = os.Getenv("RELAY_DB_NAME")
	listenPort = os.Getenv("RELAY_LISTEN_PORT")
	admins     = globalAdminsFromString(os.Getenv("RELAY_GLOBAL_ADMINS"))

	api *slack.Client
)

type Relay struct {
	Router   router.Router
	Client   *slack.Client
	Webhooks *n8n.Client
}

func requestLog(code int, r http.Request, denied bool) {
	string_code := strconv.Itoa(code)
	event := log.Info().Str("method", r.Method).Str("code", string_code).Str("uri", r.URL.String())
	if denied {
		event = event.Str("access", "denied")
	}
	event.Msg("")
}

// verifySlackRequest reads the request body, verifies the Slack signing secret,
// and returns the body bytes. On failure it writes the appropriate HTTP status
// and returns a non-nil error.
func verifySlackRequest(w http.ResponseWriter, r *http.Request) ([]byte, int, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil, http.StatusBadRequest, err
	}

	sv, err := slack.NewSecretsVerifier(r.Header, signingSecret)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return nil, http.StatusUnauthorized, err
	}
	if _, err := sv.Write(body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return nil, http.StatusInternalServerError, err
	}
	if err := sv.Ensure(); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return nil, http.StatusUnauthorized, err
	}

	return body, http.StatusOK, nil
}

func getListenPort() string {
	if listenPort != "" {
		return listenPort
	} else {
		return "3000"
	}
}

func globalAdminsFromString(admins string) []string {
	uuids := strings.Split(admins, ",")
	var trimmedUuids []string
	for _, uuid := range uuids {
		trimmedUuids = append(trimmedUuids, strings.TrimSpace(uuid))
	}

	return trimmedUuids
}

func stripBotMention(body string, botUuid string) string {
	return strings.TrimSpace(strings.ReplaceAll(body, "<@"+botUuid+">", ""))
}

// safeGo runs a plugin in its own goroutine so a panic in one invocation
// never takes down the server or touches other invocations.
func safeGo(routeName string, logger zerolog.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Interface("panic", r).
					Str("route", routeName).
					Str("stack", string(debug.Stack())).
					Msg("Plugin panicked")
			}
		}()
		fn()
	}()
}

// Setup validates required configuration, wires the Slack and n8n clients,
// registers routes, and connects to the DB. Missing credentials or base URL
// are startup errors; the caller is expected to treat them as fatal.
func Setup() (*Relay, error) {
	var bot Relay

	if slackOauthToken == "" {
		return &bot, errors.New("SLACK_OAUTH_TOKEN is not set")
	}
	if signingSecret == "" {
		return &bot, errors.New("SLACK_SIGNING_SECRET is not set")
	}
	if webhookBaseURL == "" {
		return &bot, errors.New("N8N_WEBHOOK_BASE_URL is not set")
	}

	api = slack.New(slackOauthToken)
	bot.Client = api
	bot.Webhooks = n8n.New(webhookBaseURL)

	log.Debug().Str("globalAdmins", strings.Join(admins, ", ")).Msg("Pulled globalAdmins")

	bot.Router = *router.NewRouter()

	bot.Router.DefaultMentionRoute = *fallback.GetMentionRoute()
	bot.Router.DeniedMentionRoute = *permission_denied.GetMentionRoute()
	bot.Router.DeniedSlashCommandRoute = *permission_denied.GetSlashCommandRoute()
	bot.Router.AddMentionRoutes(groups.GetMentionRoutes())
	bot.Router.AddSlashCommandRoutes(attribution.GetSlashCommandRoutes(bot.Webhooks))
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	log.Debug().Msg("Connecting to DB...")
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True", dbUser, dbPass, dbHost, dbName)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return &bot, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return &bot, err
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(3 * time.Minute)

	var version string
	db.Raw("SELECT VERSION() as version").Scan(&version)
	log.Debug().Msg(fmt.Sprintf("Connected to DB: %s", version))

	bot.Router.DbConnection = db
	bot.Router.SetupDb()

	var globalAdmins models.Group
	var globalAdminUsers []models.User

	for _, userName := range admins {
		var user models.User
		db.FirstOrCreate(&user, models.User{Uuid: userName})
		globalAdminUsers = append(globalAdminUsers, user)
	}

	db.Where(models.Group{Name: "globalAdmins"}).FirstOrCreate(&globalAdmins)
	db.Model(&globalAdmins).Association("Members").Replace(globalAdminUsers)

	return &bot, nil
}

func SetupWithConfig(token, secret, baseURL, databaseUser, databasePass, databaseHost, databaseName, port string, globalAdmins []string) (*Relay, error) {
	// quick and dirty, just override the global values which were set from ENV vars
	slackOauthToken = token
	signingSecret = secret
	webhookBaseURL = baseURL
	admins = globalAdmins
	dbUser = databaseUser
	dbPass = databasePass
	dbHost = databaseHost
	dbName = databaseName
	listenPort = port

	return Setup()
}

// Handler returns an http.Handler with all Relay routes registered.
func (bot Relay) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/relay", func(w http.ResponseWriter, r *http.Request) {
		statusCode := http.StatusOK
		accessDenied := false
		defer func() { requestLog(statusCode, *r, accessDenied) }()

		body, code, err := verifySlackRequest(w, r)
		if err != nil {
			statusCode = code
			return
		}

		eventsAPIEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
		if err != nil {
			statusCode = http.StatusInternalServerError
			w.WriteHeader(statusCode)
			return
		}

		if eventsAPIEvent.Type == slackevents.URLVerification {
			var res *slackevents.ChallengeResponse

			err := json.Unmarshal([]byte(body), &res)
			if err != nil {
				statusCode = http.StatusInternalServerError
				w.WriteHeader(statusCode)
				return
			}
			w.Header().Set("Content-Type", "text")
			w.Write([]byte(res.Challenge))
		}

		if eventsAPIEvent.Type == slackevents.CallbackEvent {
			innerEvent := eventsAPIEvent.InnerEvent
			err := bot.Router.UpdateBotUID(body)
			if err != nil {
				statusCode = http.StatusInternalServerError
				w.WriteHeader(statusCode)
				return
			}

			eventUser := userFromInnerEvent(&innerEvent)
			// Ignore all events that Relay produces to avoid infinite loops
			if bot.Router.BotUID == eventUser {
				w.WriteHeader(http.StatusOK)
				return
			}

			var currentUser models.User
			bot.Router.DbConnection.FirstOrCreate(&currentUser, models.User{Uuid: eventUser})

			switch ev := innerEvent.Data.(type) {
			case *slackevents.AppMentionEvent:
				trimmedMessage := stripBotMention(ev.Text, bot.Router.BotUID)
				route, exists := bot.Router.FindMentionRouteByMessage(trimmedMessage)
				if !exists {
					route = bot.Router.DefaultMentionRoute
				}

				if !bot.Router.Can(currentUser, route.Permissions) {
					log.Warn().Str("user", currentUser.Uuid).Str("route", route.Name).Msg("Permission failure")
					accessDenied = true
					route = bot.Router.DeniedMentionRoute
				}

				reqLogger := log.With().Str("request_id", uuid.NewString()).Logger()
				reqLogger.Debug().Str("user", currentUser.Uuid).Str("route", route.Name).Msg(trimmedMessage)

				safeGo(route.Name, reqLogger, func() { route.Execute(bot.Router, *bot.Client, *ev, trimmedMessage) })
			}
		}
	})
	mux.HandleFunc("/relay/command", func(w http.ResponseWriter, r *http.Request) {
		statusCode := http.StatusOK
		accessDenied := false
		defer func() { requestLog(statusCode, *r, accessDenied) }()

		body, code, err := verifySlackRequest(w, r)
		if err != nil {
			statusCode = code
			return
		}

		// Restore body so SlashCommandParse can read it via ParseForm
		r.Body = io.NopCloser(bytes.NewBuffer(body))
		cmd, err := slack.SlashCommandParse(r)
		if err != nil {
			statusCode = http.StatusBadRequest
			w.WriteHeader(statusCode)
			return
		}

		route, exists := bot.Router.FindSlashCommandRouteByCommand(cmd.Command)
		if !exists {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"response_type":"ephemeral","text":"Unknown command."}`))
			return
		}

		var currentUser models.User
		bot.Router.DbConnection.FirstOrCreate(&currentUser, models.User{Uuid: cmd.UserID})

		reqLogger := log.With().Str("request_id", uuid.NewString()).Logger()
		resp := router.NewResponder(cmd.ResponseURL)

		if !bot.Router.Can(currentUser, route.Permissions) {
			reqLogger.Warn().Str("user", currentUser.Uuid).Str("route", route.Name).Msg("Permission failure")
			accessDenied = true
			w.WriteHeader(http.StatusOK)
			deniedRoute := bot.Router.DeniedSlashCommandRoute
			safeGo(deniedRoute.Name, reqLogger, func() {
				deniedRoute.Execute(bot.Router, *bot.Client, cmd, resp)
			})
			return
		}

		reqLogger.Debug().Str("user", currentUser.Uuid).Str("route", route.Name).Str("command", cmd.Command).Msg("Slash command")

		// The empty 200 is the platform-level ack; the plugin replies through
		// the Responder once it knows the outcome.
		w.WriteHeader(http.StatusOK)
		safeGo(route.Name, reqLogger, func() { route.Execute(bot.Router, *bot.Client, cmd, resp) })
	})

	return mux
}

func (bot Relay) Run() error {
	handler := bot.Handler()
	log.Print(fmt.Sprintf("Server listening on port %s", getListenPort()))
	return http.ListenAndServe(fmt.Sprintf(":%s", getListenPort()), handler)
}
