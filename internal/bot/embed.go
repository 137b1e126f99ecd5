package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"speechmeme/internal/core"
)

const (
	// UnavailableMessage is sent, ephemerally, when no items can be served.
	UnavailableMessage = "❌ Unable to fetch SpeechMeme data, please try again later!"

	footerFormat = "Author: %s • SpeechMeme Bot"
	embedColor   = 0x000000
)

// FooterText renders the embed footer for item.
func FooterText(item core.Item) string {
	return fmt.Sprintf(footerFormat, item.DisplayName)
}

// MemeEmbed renders item as an embed. The footer icon is the author's avatar,
// or fallbackIcon (the bot's own avatar) when the author has none.
func MemeEmbed(item core.Item, fallbackIcon string, now time.Time) *discordgo.MessageEmbed {
	icon := item.AvatarURL
	if icon == "" {
		icon = fallbackIcon
	}
	return &discordgo.MessageEmbed{
		Color:     embedColor,
		Timestamp: now.UTC().Format(time.RFC3339),
		Image:     &discordgo.MessageEmbedImage{URL: item.ImageURL},
		Footer: &discordgo.MessageEmbedFooter{
			Text:    FooterText(item),
			IconURL: icon,
		},
	}
}

func memeResponse(item core.Item, fallbackIcon string, now time.Time) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{MemeEmbed(item, fallbackIcon, now)},
		},
	}
}

func unavailableResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: UnavailableMessage,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}
