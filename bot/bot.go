/* bot.go
 * Contains logic used for creating the bot and the helpers shared by the command handlers. Requires a discord bot
 * token and APIPtr, both of which are passed in from main.go
 */

package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/go-andiamo/splitter"

	"cyber-scout/api/api"
	"cyber-scout/api/logic"
	"cyber-scout/api/shared"
)

// Discord rejects messages longer than this
const maxMessageLength = 2000

type Bot struct {
	BotToken string
	APIPtr   *api.API
	Logger   *slog.Logger
}

func NewBot(botToken string, apiPtr *api.API) (*Bot, error) {
	if botToken == "" {
		return nil, fmt.Errorf("botToken is required but none was provided")
	}
	if apiPtr == nil {
		return nil, fmt.Errorf("apiPtr is required but none was provided")
	}

	return &Bot{
		BotToken: botToken,
		APIPtr:   apiPtr,
		Logger:   apiPtr.Logger,
	}, nil
}

func (b *Bot) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// we use splitter here instead of strings.Fields so event names with spaces, e.g. "Granite State", are one argument
var spaceSplitter = func() splitter.Splitter {
	s, err := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	if err != nil {
		panic(err)
	}
	return s
}()

// commandArgs returns the arguments after the command word with enclosing quotes removed.
// Preconditions: Receives the message content
// Postconditions: Returns the arguments, or an error if a quote is left open
func commandArgs(content string) ([]string, error) {
	firstLine, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	parts, err := spaceSplitter.Split(firstLine)
	if err != nil {
		return nil, err
	}
	if len(parts) < 2 {
		return nil, nil
	}

	var args []string
	for _, part := range parts[1:] {
		part = strings.NewReplacer("\"", "", "“", "", "”", "").Replace(strings.TrimSpace(part))
		if part != "" {
			args = append(args, part)
		}
	}
	return args, nil
}

// commandBody returns everything after the command word, including later lines
func commandBody(content string) string {
	content = strings.TrimLeft(content, " ")
	idx := strings.IndexAny(content, " \t\n")
	if idx < 0 {
		return ""
	}
	return strings.TrimLeft(content[idx:], " ")
}

func userOf(message *discordgo.MessageCreate) shared.User {
	return shared.User{UserID: message.Author.ID, Username: message.Author.Username}
}

// codeBlock wraps a rendered table so Discord shows it in a monospace font. Tables too long for one message are cut
func codeBlock(s string) string {
	const fence = "```"
	limit := maxMessageLength - 2*len(fence) - 2
	if len(s) > limit {
		s = s[:limit]
	}
	return fence + "\n" + s + "\n" + fence
}

// send posts a message and logs a failure
func (b *Bot) send(session DiscordSession, channelID, content string) {
	if _, err := session.ChannelMessageSend(channelID, content); err != nil {
		b.logger().Error("failed to send message", "channel", channelID, "error", err)
	}
}

// sendError turns an API error into a reply. Errors the user can fix are shown as is, anything else is logged
func (b *Bot) sendError(session DiscordSession, channelID, action string, err error) {
	switch {
	case errors.Is(err, shared.ErrNoMatches):
		b.send(session, channelID, fmt.Sprintf("Nothing has been scouted yet: %s", err))
	case errors.Is(err, shared.ErrInvalidRecord),
		errors.Is(err, shared.ErrImportParse),
		errors.Is(err, api.ErrNotScheduled),
		errors.Is(err, logic.ErrUnknownEvent),
		errors.Is(err, api.ErrNoEvent):
		b.send(session, channelID, fmt.Sprintf("Error %s: %s", action, err))
	default:
		b.logger().Error("command failed", "action", action, "error", err)
		b.send(session, channelID, fmt.Sprintf("An unexpected error occurred %s", action))
	}
}

// usage replies with the expected form of a command
func (b *Bot) usage(session DiscordSession, channelID, form string) {
	b.send(session, channelID, fmt.Sprintf("Usage: `%s`", form))
}

// Helper function to check if a string starts with a given command word
// Preconditions: Recieves an input string and a command
// Postconditions: Returns true if the input is the command or the command followed by whitespace
func startsWith(inputString string, command string) bool {
	if !strings.HasPrefix(inputString, command) {
		return false
	}
	rest := inputString[len(command):]
	return rest == "" || strings.ContainsAny(rest[:1], " \t\n")
}
