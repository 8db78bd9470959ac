package helpers

import (
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// ThreadReplyOption returns a slack.MsgOptionTS for threading replies when
// the given threadTS is non-empty. When threadTS is empty (i.e. the
// triggering message was not in a thread), a no-op MsgOption is returned
// so callers can include it unconditionally.
func ThreadReplyOption(threadTS string) slack.MsgOption {
	if threadTS != "" {
		return slack.MsgOptionTS(threadTS)
	}
	// Return a no-op option by composing zero options.
	return slack.MsgOptionCompose()
}

// PostMessage sends a Slack message to the given channel, logging any error
// with consistent structured fields. It returns the channel and timestamp of
// the posted message; both are empty when the post failed.
func PostMessage(api slack.Client, channel, plugin string, options ...slack.MsgOption) (string, string) {
	postedChannel, timestamp, err := api.PostMessage(channel, options...)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Str("plugin", plugin).Msg("Failed to post message")
		return "", ""
	}
	return postedChannel, timestamp
}

// AddReaction adds a reaction to a message, logging any error with
// consistent structured fields.
func AddReaction(api slack.Client, channel, plugin, reaction, timestamp string) {
	msgRef := slack.NewRefToMessage(channel, timestamp)
	if err := api.AddReaction(reaction, msgRef); err != nil {
		log.Error().Err(err).Str("channel", channel).Str("plugin", plugin).Str("reaction", reaction).Msg("Failed to add reaction")
	}
}
