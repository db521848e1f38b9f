/* handlers.go
 * Contains testable handler methods that accept DiscordSession interface
 */

package bot

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"cyber-scout/api/export"
	"cyber-scout/api/logic"
)

// Rejected rows listed in an import reply before the rest are summarised
const maxListedRowErrors = 10

// helpMessageHandler handles the $help command with a DiscordSession interface
func (b *Bot) helpMessageHandler(session DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("Cyber Scout v1.0\n")
	res.WriteString("`$event`: shows the event being scouted. `$event <key or name>` switches event, e.g. `$event 2025nhsal` or `$event \"Granite State\"`\n")
	res.WriteString("`$districts`: lists this season's districts, the keys SCOUT_DISTRICT accepts\n")
	res.WriteString("`$submit <row>`: submits one scouting row from the spreadsheet (tab or comma separated)\n")
	res.WriteString("`$import` followed by rows on the next lines: submits every row, bad rows are listed and skipped\n")
	res.WriteString("`$records <team> [n]`: a team's best and worst head to head records\n")
	res.WriteString("`$h2h <team> <opponent>`: head to head record over the matches both teams were scouted in\n")
	res.WriteString("`$compare <team> <team> [average|total|<match>]`: compares two teams, the percentage is the second team relative to the first\n")
	res.WriteString("`$change <team> <start match> <end match>`: percentage change of a team between two matches\n")
	res.WriteString("`$trend <team>`: chart of a team's points per match\n")
	res.WriteString("`$summary <team>`: a team's points per match as CSV\n")
	res.WriteString("`$export [team]`: spreadsheet of every scouted match, or one team's\n")
	b.send(session, message.ChannelID, res.String())
}

// eventHandler handles the $event command with a DiscordSession interface
func (b *Bot) eventHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	args, err := commandArgs(message.Content)
	if err != nil {
		b.usage(session, message.ChannelID, "$event <key or name>")
		return
	}

	if len(args) > 0 {
		event, err := b.APIPtr.SelectEvent(ctx, strings.Join(args, " "))
		if err != nil {
			b.sendError(session, message.ChannelID, "selecting event", err)
			return
		}
		b.logger().Info("event selected", "event", event.Key, "user", message.Author.Username)
	}

	info := b.APIPtr.EventInfo()
	if info.Key == "" {
		b.send(session, message.ChannelID, "No event selected. Use `$event <key or name>` to pick one")
		return
	}
	var res strings.Builder
	res.WriteString(fmt.Sprintf("Event: %s (%s)\n", info.Name, info.Key))
	res.WriteString(fmt.Sprintf("Rubric: %s\n", info.Rubric))
	res.WriteString(fmt.Sprintf("Qualification matches scheduled: %d\n", info.ScheduledMatches))
	res.WriteString(fmt.Sprintf("Records: %d across %d teams\n", info.Records, info.Teams))
	b.send(session, message.ChannelID, res.String())
}

// districtsHandler handles the $districts command with a DiscordSession interface
func (b *Bot) districtsHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	districts, err := b.APIPtr.Districts(ctx)
	if err != nil {
		b.sendError(session, message.ChannelID, "fetching districts", err)
		return
	}
	if len(districts) == 0 {
		b.send(session, message.ChannelID, "No districts found. Is TBA_API_KEY set?")
		return
	}

	var res strings.Builder
	for _, d := range districts {
		res.WriteString(fmt.Sprintf("%s: %s\n", d.Key, d.DisplayName))
	}
	b.send(session, message.ChannelID, res.String())
}

// submitHandler handles the $submit command with a DiscordSession interface
func (b *Bot) submitHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	row := strings.Trim(stripCodeFence(commandBody(message.Content)), "\r\n")
	if strings.TrimSpace(row) == "" {
		b.usage(session, message.ChannelID, "$submit <row>")
		return
	}

	scored, err := b.APIPtr.SubmitRow(ctx, userOf(message), row)
	if err != nil {
		b.sendError(session, message.ChannelID, "submitting match", err)
		return
	}
	b.send(session, message.ChannelID, fmt.Sprintf("Recorded team %d match %d: %d points (auto %d, teleop %d, endgame %d), %d RP",
		scored.TeamNumber, scored.MatchNumber, scored.TotalPoints, scored.AutoPoints, scored.TeleopPoints,
		scored.EndgamePoints, scored.RankPoints.Total))
}

// importHandler handles the $import command with a DiscordSession interface
func (b *Bot) importHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	body := stripCodeFence(commandBody(message.Content))
	if strings.TrimSpace(body) == "" {
		b.usage(session, message.ChannelID, "$import <rows, one per line>")
		return
	}

	summary := b.APIPtr.ImportRows(ctx, userOf(message), body)
	var res strings.Builder
	res.WriteString(fmt.Sprintf("Imported %d records", len(summary.Accepted)))
	if len(summary.Errors) == 0 {
		b.send(session, message.ChannelID, res.String())
		return
	}

	res.WriteString(fmt.Sprintf(", %d rows rejected:\n", len(summary.Errors)))
	for i, rowErr := range summary.Errors {
		if i == maxListedRowErrors {
			res.WriteString(fmt.Sprintf("...and %d more\n", len(summary.Errors)-maxListedRowErrors))
			break
		}
		res.WriteString(fmt.Sprintf("- %s\n", rowErr.Error()))
	}
	b.send(session, message.ChannelID, res.String())
}

// recordsHandler handles the $records command with a DiscordSession interface
func (b *Bot) recordsHandler(session DiscordSession, message *discordgo.MessageCreate) {
	args, err := commandArgs(message.Content)
	if err != nil || len(args) < 1 || len(args) > 2 {
		b.usage(session, message.ChannelID, "$records <team> [n]")
		return
	}
	team, err := logic.ParseTeamNumber(args[0])
	if err != nil {
		b.sendError(session, message.ChannelID, "reading team", err)
		return
	}
	n := logic.DefaultRecordLimit
	if len(args) == 2 {
		if n, err = strconv.Atoi(args[1]); err != nil || n < 1 {
			b.usage(session, message.ChannelID, "$records <team> [n]")
			return
		}
	}

	records, err := b.APIPtr.Records(team, n)
	if err != nil {
		b.sendError(session, message.ChannelID, "getting records", err)
		return
	}
	if len(records.Best) == 0 {
		b.send(session, message.ChannelID, fmt.Sprintf("Team %d hasn't shared a match number with another scouted team yet", team))
		return
	}
	b.send(session, message.ChannelID, codeBlock(export.RecordsTable(records)))
}

// headToHeadHandler handles the $h2h command with a DiscordSession interface
func (b *Bot) headToHeadHandler(session DiscordSession, message *discordgo.MessageCreate) {
	teams, ok := b.teamArgs(session, message, 2, "$h2h <team> <opponent>")
	if !ok {
		return
	}
	record := b.APIPtr.HeadToHead(teams[0], teams[1])
	b.send(session, message.ChannelID, fmt.Sprintf("%d vs %d: %s", teams[0], teams[1], record))
}

// compareHandler handles the $compare command with a DiscordSession interface
func (b *Bot) compareHandler(session DiscordSession, message *discordgo.MessageCreate) {
	const form = "$compare <team> <team> [average|total|<match>]"
	args, err := commandArgs(message.Content)
	if err != nil || len(args) < 2 || len(args) > 3 {
		b.usage(session, message.ChannelID, form)
		return
	}
	teamA, errA := logic.ParseTeamNumber(args[0])
	teamB, errB := logic.ParseTeamNumber(args[1])
	if errA != nil || errB != nil {
		b.usage(session, message.ChannelID, form)
		return
	}

	var comparison logic.Comparison
	mode := ""
	if len(args) == 3 {
		mode = args[2]
	}
	if match, matchErr := logic.ParseMatchNumber(mode); mode != "" && matchErr == nil {
		comparison, err = b.APIPtr.CompareMatch(teamA, teamB, match)
	} else {
		aggregate, modeErr := logic.ParseAggregateMode(mode)
		if modeErr != nil {
			b.usage(session, message.ChannelID, form)
			return
		}
		comparison, err = b.APIPtr.Compare(teamA, teamB, aggregate)
	}
	if err != nil {
		b.sendError(session, message.ChannelID, "comparing teams", err)
		return
	}
	b.send(session, message.ChannelID, codeBlock(export.ComparisonTable(comparison)))
}

// changeHandler handles the $change command with a DiscordSession interface
func (b *Bot) changeHandler(session DiscordSession, message *discordgo.MessageCreate) {
	const form = "$change <team> <start match> <end match>"
	args, err := commandArgs(message.Content)
	if err != nil || len(args) != 3 {
		b.usage(session, message.ChannelID, form)
		return
	}
	team, err := logic.ParseTeamNumber(args[0])
	if err != nil {
		b.usage(session, message.ChannelID, form)
		return
	}
	start, errStart := logic.ParseMatchNumber(args[1])
	end, errEnd := logic.ParseMatchNumber(args[2])
	if errStart != nil || errEnd != nil {
		b.usage(session, message.ChannelID, form)
		return
	}

	change, err := b.APIPtr.Change(team, start, end)
	if err != nil {
		b.sendError(session, message.ChannelID, "computing change", err)
		return
	}
	b.send(session, message.ChannelID, codeBlock(export.ChangeTable(team, start, end, change)))
}

// trendHandler handles the $trend command with a DiscordSession interface
func (b *Bot) trendHandler(session DiscordSession, message *discordgo.MessageCreate) {
	teams, ok := b.teamArgs(session, message, 1, "$trend <team>")
	if !ok {
		return
	}
	png, err := b.APIPtr.Trend(teams[0])
	if err != nil {
		b.sendError(session, message.ChannelID, "drawing chart", err)
		return
	}
	b.sendFile(session, message.ChannelID, fmt.Sprintf("trend-%d.png", teams[0]), png)
}

// summaryHandler handles the $summary command with a DiscordSession interface
func (b *Bot) summaryHandler(session DiscordSession, message *discordgo.MessageCreate) {
	teams, ok := b.teamArgs(session, message, 1, "$summary <team>")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := b.APIPtr.ExportSummary(&buf, teams[0]); err != nil {
		b.sendError(session, message.ChannelID, "building summary", err)
		return
	}
	b.sendFile(session, message.ChannelID, fmt.Sprintf("summary-%d.csv", teams[0]), buf.Bytes())
}

// exportHandler handles the $export command with a DiscordSession interface
func (b *Bot) exportHandler(session DiscordSession, message *discordgo.MessageCreate) {
	args, err := commandArgs(message.Content)
	if err != nil || len(args) > 1 {
		b.usage(session, message.ChannelID, "$export [team]")
		return
	}
	team := 0
	name := "scouting"
	if key := b.APIPtr.EventInfo().Key; key != "" {
		name = key
	}
	if len(args) == 1 {
		if team, err = logic.ParseTeamNumber(args[0]); err != nil {
			b.usage(session, message.ChannelID, "$export [team]")
			return
		}
		name = fmt.Sprintf("%s-%d", name, team)
	}

	var buf bytes.Buffer
	if err := b.APIPtr.ExportWorkbook(&buf, team); err != nil {
		b.sendError(session, message.ChannelID, "exporting", err)
		return
	}
	b.sendFile(session, message.ChannelID, name+".xlsx", buf.Bytes())
}

// teamArgs reads exactly n team numbers, replying with the usage when they are missing or malformed
func (b *Bot) teamArgs(session DiscordSession, message *discordgo.MessageCreate, n int, form string) ([]int, bool) {
	args, err := commandArgs(message.Content)
	if err != nil || len(args) != n {
		b.usage(session, message.ChannelID, form)
		return nil, false
	}
	teams := make([]int, n)
	for i, arg := range args {
		if teams[i], err = logic.ParseTeamNumber(arg); err != nil {
			b.usage(session, message.ChannelID, form)
			return nil, false
		}
	}
	return teams, true
}

func (b *Bot) sendFile(session DiscordSession, channelID, name string, data []byte) {
	if _, err := session.ChannelFileSend(channelID, name, bytes.NewReader(data)); err != nil {
		b.logger().Error("failed to upload file", "channel", channelID, "file", name, "error", err)
	}
}

// stripCodeFence removes ``` lines so rows pasted inside a code block keep their tabs
func stripCodeFence(body string) string {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// newMessageHandler routes messages to appropriate handlers with a DiscordSession interface
// botUserID is the bot's user ID to prevent self-responses
func (b *Bot) newMessageHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	// Prevent bot from responding to its own messages
	if message.Author == nil || message.Author.ID == botUserID {
		return
	}

	// Route to appropriate handler
	switch content := message.Content; {
	case startsWith(content, "$help"):
		b.helpMessageHandler(session, message)

	case startsWith(content, "$event"):
		b.eventHandler(ctx, session, message)

	case startsWith(content, "$districts"):
		b.districtsHandler(ctx, session, message)
	case startsWith(content, "$submit"):
		b.submitHandler(ctx, session, message)

	case startsWith(content, "$import"):
		b.importHandler(ctx, session, message)

	case startsWith(content, "$records"):
		b.recordsHandler(session, message)

	case startsWith(content, "$h2h"):
		b.headToHeadHandler(session, message)

	case startsWith(content, "$compare"):
		b.compareHandler(session, message)

	case startsWith(content, "$change"):
		b.changeHandler(session, message)

	case startsWith(content, "$trend"):
		b.trendHandler(session, message)

	case startsWith(content, "$summary"):
		b.summaryHandler(session, message)

	case startsWith(content, "$export"):
		b.exportHandler(session, message)
	}
}
