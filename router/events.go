package router

import "encoding/json"

type eventEnvelope struct {
	Authorizations []struct {
		UserID string `json:"user_id"`
	} `json:"authorizations"`
}

// UpdateBotUID records the bot's own user ID from an event callback's
// authorizations block so the dispatcher can ignore events the bot itself
// generated.
func (router *Router) UpdateBotUID(body []byte) error {
	var envelope eventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return err
	}
	if len(envelope.Authorizations) > 0 {
		router.BotUID = envelope.Authorizations[0].UserID
	}
	return nil
}
