package discord

import (
	"github.com/NebulaScout/TeamTrack/internal/messages"
	"github.com/bwmarrin/discordgo"
)

type DiscordBot struct {
	providerName string

	bot     *discordgo.Session
	enabled bool
}

func NewDiscordBot(token string, enabled bool) (*DiscordBot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	return &DiscordBot{
		providerName: "discord",
		bot:          dg,
		enabled:      enabled,
	}, nil
}

func (b *DiscordBot) SendMessage(configs ...messages.MessageConfig) error {
	if !b.enabled {
		return nil
	}

	for _, c := range configs {
		if c.Provider != b.providerName {
			continue
		}

		if _, err := b.bot.ChannelMessageSend(c.Channel, c.Text); err != nil {
			return err
		}
	}

	return nil
}

func (b *DiscordBot) IsEnabled() bool {
	return b.enabled
}
