package cmd

import (
	"strings"

	relay "github.com/relay-bot/relay/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "server",
		Aliases: []string{"serve"},
		Short:   "Run the bot",
		Long:    `Run the bot`,
		RunE:    server,
	}
}

func server(cmd *cobra.Command, args []string) error {
	myBot, err := relay.SetupWithConfig(
		viper.GetString("SLACK_OAUTH_TOKEN"),
		viper.GetString("SLACK_SIGNING_SECRET"),
		viper.GetString("N8N_WEBHOOK_BASE_URL"),
		viper.GetString("RELAY_DB_USER"),
		viper.GetString("RELAY_DB_PASS"),
		viper.GetString("RELAY_DB_HOST"),
		viper.GetString("RELAY_DB_NAME"),
		viper.GetString("RELAY_LISTEN_PORT"),
		splitAdmins(viper.GetString("RELAY_GLOBAL_ADMINS")),
	)
	if err != nil {
		return err
	}

	return myBot.Run()
}

func splitAdmins(admins string) []string {
	var trimmed []string
	for _, uuid := range strings.Split(admins, ",") {
		trimmed = append(trimmed, strings.TrimSpace(uuid))
	}
	return trimmed
}
