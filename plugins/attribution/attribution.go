package attribution

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/relay-bot/relay/n8n"
	"github.com/relay-bot/relay/router"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

const (
	invalidMetadataMessage = "❌ Invalid metadata format. Please use format 'speaker_00:name,speaker_01:name'"
	unexpectedErrorMessage = "❌ An unexpected error occurred. Please check the bot logs."
	usageMessage           = "Usage: `/attribute-speakers EXECUTION_ID speaker_00:name,speaker_01:name TRANSCRIPTION_ID`"
)

// ParseSpeakerMetadata parses a metadata string like
// "speaker_00:Alice, speaker_01:Bob" into a speaker-id to display-name map.
// Each comma-separated segment must contain exactly one ':'; a single bad
// segment fails the whole parse.
func ParseSpeakerMetadata(metadata string) (map[string]string, error) {
	speakers := make(map[string]string)
	for _, pair := range strings.Split(metadata, ",") {
		parts := strings.Split(strings.TrimSpace(pair), ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("segment %q is not a speaker_id:name pair", pair)
		}
		speakers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return speakers, nil
}

// metadataSender is the part of *n8n.Client the handler needs.
type metadataSender interface {
	WebhookURL(executionID string) string
	SendMetadata(executionID string, speakers map[string]string, transcriptionID string) error
}

// Handle runs one /attribute-speakers invocation: parse the metadata, defer,
// post the payload to the waiting n8n execution, and report the outcome.
// Every path ends in exactly one terminal reply on resp; the immediate
// (non-deferred) path is only taken for a metadata parse failure, before any
// network I/O.
func Handle(webhooks metadataSender, executionID, metadata, transcriptionID string, resp *router.Responder) {
	speakers, err := ParseSpeakerMetadata(metadata)
	if err != nil {
		log.Error().Err(err).Str("execution_id", executionID).Msg("Error parsing metadata string")
		if err := resp.ReplyImmediately(invalidMetadataMessage); err != nil {
			log.Error().Err(err).Str("execution_id", executionID).Msg("Failed to send invalid-format reply")
		}
		return
	}

	// Ack before the webhook call; it can take up to the full client timeout.
	if err := resp.Defer(); err != nil {
		log.Error().Err(err).Str("execution_id", executionID).Msg("Failed to defer reply")
		return
	}

	log.Info().Str("execution_id", executionID).Str("url", webhooks.WebhookURL(executionID)).Msg("Sending metadata to n8n")
	sendErr := webhooks.SendMetadata(executionID, speakers, transcriptionID)

	var followUp string
	var statusErr *n8n.StatusError
	var connErr *n8n.ConnectionError
	switch {
	case sendErr == nil:
		log.Info().Str("execution_id", executionID).Msg("n8n workflow successfully triggered")
		followUp = fmt.Sprintf("✅ Successfully sent metadata for execution `%s` to the workflow!", executionID)
	case errors.As(sendErr, &statusErr):
		log.Error().Int("status", statusErr.StatusCode).Str("body", statusErr.Body).Str("execution_id", executionID).Msg("n8n rejected the webhook call")
		followUp = fmt.Sprintf("❌ Failed to send metadata to the workflow for execution `%s`.", executionID)
		followUp += fmt.Sprintf("\n_Details: Received status %d from n8n._", statusErr.StatusCode)
		if statusErr.StatusCode == http.StatusNotFound {
			followUp += "\n_(This often means the execution ID is incorrect or the workflow is no longer waiting.)_"
		}
	case errors.As(sendErr, &connErr):
		log.Error().Err(sendErr).Str("execution_id", executionID).Msg("Error sending request to n8n")
		followUp = fmt.Sprintf("❌ Failed to send metadata to the workflow for execution `%s`.", executionID)
		followUp += "\n_(Could not connect to the n8n instance.)_"
	default:
		log.Error().Err(sendErr).Str("execution_id", executionID).Msg("An unexpected error occurred processing /attribute-speakers")
		followUp = unexpectedErrorMessage
	}

	if err := resp.FollowUp(followUp); err != nil {
		log.Error().Err(err).Str("execution_id", executionID).Msg("Failed to send follow-up")
	}
}

// splitArgs splits the raw slash command text into the three arguments. The
// metadata value may contain spaces ("speaker_00:Alice, speaker_01:Bob"), so
// everything between the first and last whitespace-separated fields is
// rejoined as metadata.
func splitArgs(text string) (executionID, metadata, transcriptionID string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return "", "", "", false
	}
	executionID = fields[0]
	transcriptionID = fields[len(fields)-1]
	metadata = strings.Join(fields[1:len(fields)-1], " ")
	return executionID, metadata, transcriptionID, true
}

func attributeSpeakers(webhooks *n8n.Client) *router.SlashCommandRoute {
	var pluginRoute router.SlashCommandRoute
	pluginRoute.Permissions = append(pluginRoute.Permissions, "*")
	pluginRoute.Name = "attribution.attributeSpeakers"
	pluginRoute.Command = "/attribute-speakers"
	pluginRoute.Description = "Send speaker metadata back to a waiting n8n workflow"
	pluginRoute.Help = "/attribute-speakers EXECUTION_ID speaker_00:name,speaker_01:name TRANSCRIPTION_ID"
	pluginRoute.Plugin = func(rtr router.Router, route router.Route, api slack.Client, cmd slack.SlashCommand, resp *router.Responder) {
		executionID, metadata, transcriptionID, ok := splitArgs(cmd.Text)
		if !ok {
			if err := resp.ReplyImmediately(usageMessage); err != nil {
				log.Error().Err(err).Str("user", cmd.UserID).Msg("Failed to send usage reply")
			}
			return
		}

		log.Info().Str("user", cmd.UserID).Str("execution_id", executionID).Msg("Received /attribute-speakers")
		Handle(webhooks, executionID, metadata, transcriptionID, resp)
	}
	return &pluginRoute
}

// GetSlashCommandRoutes returns all slash command routes from this plugin.
func GetSlashCommandRoutes(webhooks *n8n.Client) []router.SlashCommandRoute {
	return []router.SlashCommandRoute{
		*attributeSpeakers(webhooks),
	}
}
