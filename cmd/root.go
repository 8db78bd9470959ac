package cmd

import (
	"os"

	"github.com/relay-bot/relay/conf"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Version: conf.GitVersion,
		Use:     conf.Executable,
		Short:   "Relay bridges Slack slash commands to waiting n8n workflows",
		Long: `Relay is a Slack bot that connects the /attribute-speakers slash command
to n8n's "webhook waiting" resume endpoint. A user supplies an execution ID,
a speaker metadata string, and a transcription ID; Relay parses the metadata
into a speaker map, posts it to the waiting workflow, and reports the outcome
back to the user as an ephemeral reply.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.OnInitialize(initConfig)
	rootCmd := newRootCmd()
	setupFlags(rootCmd)
	addSubcommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func setupFlags(c *cobra.Command) {
	c.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.relay.yaml)")
	c.MarkPersistentFlagFilename("config")
}

func addSubcommands(c *cobra.Command) {
	c.AddCommand(newVersionCmd())
	c.AddCommand(newServerCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			println(err.Error())
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".relay")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		println("Using config file:", viper.ConfigFileUsed())
	}
}
