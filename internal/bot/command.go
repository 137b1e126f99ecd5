package bot

import "github.com/bwmarrin/discordgo"

// CommandName is the slash command served by the bot.
const CommandName = "speechmeme"

// Command returns the /speechmeme definition: installable by users and usable
// in guilds, DMs with the bot and private channels.
func Command() *discordgo.ApplicationCommand {
	integrationTypes := []discordgo.ApplicationIntegrationType{
		discordgo.ApplicationIntegrationUserInstall,
	}
	contexts := []discordgo.InteractionContextType{
		discordgo.InteractionContextGuild,
		discordgo.InteractionContextBotDM,
		discordgo.InteractionContextPrivateChannel,
	}
	return &discordgo.ApplicationCommand{
		Name:             CommandName,
		Description:      "Random SpeechMeme GIF From speechmeme.com",
		IntegrationTypes: &integrationTypes,
		Contexts:         &contexts,
	}
}
