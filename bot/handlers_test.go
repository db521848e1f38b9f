/* handlers_test.go
 * Contains unit tests for bot command handlers using mock Discord session
 */

package bot

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cyber-scout/api/api"
	"cyber-scout/api/external"
	"cyber-scout/api/flatrow"
	"cyber-scout/api/logic"
	"cyber-scout/api/shared"
)

const testEventKey = "2025nhsal"

func testMatches() []external.Match {
	return []external.Match{
		{
			Key: testEventKey + "_qm1", EventKey: testEventKey, CompLevel: "qm", MatchNumber: 1,
			Alliances: external.Alliances{
				Red:  external.Alliance{Score: 120, TeamKeys: []string{"frc4481", "frc254", "frc1678"}},
				Blue: external.Alliance{Score: 95, TeamKeys: []string{"frc118", "frc971", "frc2056"}},
			},
		},
		{
			Key: testEventKey + "_qm2", EventKey: testEventKey, CompLevel: "qm", MatchNumber: 2,
			Alliances: external.Alliances{
				Red:  external.Alliance{Score: 60, TeamKeys: []string{"frc118", "frc254", "frc1678"}},
				Blue: external.Alliance{Score: 70, TeamKeys: []string{"frc4481", "frc971", "frc2056"}},
			},
		},
	}
}

// createTestBot creates a Bot with a mock store and TBA source and the test event loaded
func createTestBot(t *testing.T) (*Bot, *api.MockStore) {
	t.Helper()
	mockStore := api.NewMockStore(testEventKey)
	mockTBA := api.NewMockTBA()
	mockTBA.MatchesByEvent[testEventKey] = testMatches()
	mockTBA.DistrictEventList = []external.Event{
		{Key: testEventKey, Name: "NE District Granite State Event", ShortName: "Granite State"},
		{Key: "2025mabos", Name: "NE District Boston Event"},
	}

	apiPtr := api.NewAPI(api.Options{
		Store:    mockStore,
		TBA:      mockTBA,
		District: "2025ne",
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, apiPtr.LoadEvent(t.Context(), mockTBA.DistrictEventList[0]))

	bot, err := NewBot("test_token", apiPtr)
	require.NoError(t, err)
	return bot, mockStore
}

// createMockMessage creates a mock Discord message for testing
func createMockMessage(content, userID, username, channelID string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{
		Message: &discordgo.Message{
			Content:   content,
			ChannelID: channelID,
			Author: &discordgo.User{
				ID:       userID,
				Username: username,
			},
		},
	}
}

// run routes one message through the bot and returns the session
func run(t *testing.T, bot *Bot, content string) *MockDiscordSession {
	t.Helper()
	session := NewMockDiscordSession()
	bot.newMessageHandler(t.Context(), session, createMockMessage(content, "user123", "TestUser", "channel123"), "bot123")
	return session
}

// row encodes a record scoring teleop coral on L1 as a tab separated flat row
func row(t *testing.T, team, match, coral int) string {
	t.Helper()
	scored, err := logic.Score(shared.RawMatchRecord{TeamNumber: team, MatchNumber: match, TeleopCoral: shared.CoralCounts{coral}})
	require.NoError(t, err)
	return flatrow.Encode(scored)
}

// seed submits records for 4481 and 254 in matches 1 and 2
func seed(t *testing.T, bot *Bot) {
	t.Helper()
	for _, line := range []string{row(t, 4481, 1, 2), row(t, 254, 1, 3), row(t, 4481, 2, 4), row(t, 254, 2, 1)} {
		_, err := bot.APIPtr.SubmitRow(t.Context(), shared.User{Username: "seed"}, line)
		require.NoError(t, err)
	}
}

// region routing tests

func TestNewMessageHandler_IgnoresSelf(t *testing.T) {
	bot, _ := createTestBot(t)
	session := NewMockDiscordSession()
	bot.newMessageHandler(t.Context(), session, createMockMessage("$help", "bot123", "Bot", "channel123"), "bot123")
	assert.Empty(t, session.SentMessages)
}

func TestNewMessageHandler_IgnoresUnknown(t *testing.T) {
	bot, _ := createTestBot(t)
	assert.Empty(t, run(t, bot, "hello there").SentMessages)
	assert.Empty(t, run(t, bot, "$helpme").SentMessages)
}

func TestHelpMessage(t *testing.T) {
	bot, _ := createTestBot(t)
	session := run(t, bot, "$help")

	require.Len(t, session.SentMessages, 1)
	msg := session.GetLastMessage()
	assert.Equal(t, "channel123", msg.ChannelID)
	for _, cmd := range []string{"$event", "$submit", "$import", "$records", "$h2h", "$compare", "$change", "$trend", "$summary", "$export"} {
		assert.Contains(t, msg.Content, cmd)
	}
}

func TestSendFailureIsLogged(t *testing.T) {
	bot, _ := createTestBot(t)
	session := NewMockDiscordSession()
	session.ErrorToReturn = errors.New("discord down")
	assert.NotPanics(t, func() {
		bot.newMessageHandler(t.Context(), session, createMockMessage("$help", "user123", "TestUser", "channel123"), "bot123")
	})
}

// endregion

// region event tests

func TestEvent_ShowsCurrent(t *testing.T) {
	bot, _ := createTestBot(t)
	msg := run(t, bot, "$event").GetLastMessage()
	assert.Contains(t, msg.Content, "Granite State (2025nhsal)")
	assert.Contains(t, msg.Content, "Qualification matches scheduled: 2")
	assert.Contains(t, msg.Content, logic.DefaultRubricName)
}

func TestEvent_Switch(t *testing.T) {
	bot, mockStore := createTestBot(t)
	msg := run(t, bot, `$event "Boston"`).GetLastMessage()
	assert.Contains(t, msg.Content, "(2025mabos)")
	assert.Equal(t, "2025mabos", mockStore.GetEventKey())
}

func TestEvent_Unknown(t *testing.T) {
	bot, _ := createTestBot(t)
	msg := run(t, bot, "$event zzzz").GetLastMessage()
	assert.Contains(t, msg.Content, "Error selecting event")
}

func TestEvent_NoneSelected(t *testing.T) {
	bot, err := NewBot("test_token", api.NewAPI(api.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}))
	require.NoError(t, err)
	msg := run(t, bot, "$event").GetLastMessage()
	assert.Contains(t, msg.Content, "No event selected")
}

// endregion

// region submit and import tests

func TestSubmit_Success(t *testing.T) {
	bot, mockStore := createTestBot(t)
	msg := run(t, bot, "$submit "+row(t, 4481, 1, 2)).GetLastMessage()

	assert.Equal(t, "Recorded team 4481 match 1: 4 points (auto 0, teleop 4, endgame 0), 3 RP", msg.Content)
	stored := mockStore.StoredMatches()
	require.Len(t, stored, 1)
	assert.Equal(t, []string{"TestUser"}, mockStore.SubmittedBy)
}

func TestSubmit_InCodeBlock(t *testing.T) {
	bot, _ := createTestBot(t)
	msg := run(t, bot, "$submit\n```\n"+row(t, 4481, 2, 1)+"\n```").GetLastMessage()
	assert.True(t, strings.HasPrefix(msg.Content, "Recorded team 4481 match 2"), msg.Content)
}

func TestSubmit_NotScheduled(t *testing.T) {
	bot, mockStore := createTestBot(t)
	msg := run(t, bot, "$submit "+row(t, 9999, 1, 2)).GetLastMessage()
	assert.Contains(t, msg.Content, "Error submitting match")
	assert.Contains(t, msg.Content, api.ErrNotScheduled.Error())
	assert.Empty(t, mockStore.StoredMatches())
}

func TestSubmit_BadRow(t *testing.T) {
	bot, _ := createTestBot(t)
	msg := run(t, bot, "$submit 4481,1").GetLastMessage()
	assert.Contains(t, msg.Content, "Error submitting match")
	assert.Contains(t, msg.Content, flatrow.ErrFieldCount.Error())
}

func TestSubmit_Usage(t *testing.T) {
	bot, _ := createTestBot(t)
	assert.Contains(t, run(t, bot, "$submit").GetLastMessage().Content, "Usage")
}

func TestImport(t *testing.T) {
	bot, _ := createTestBot(t)
	content := "$import\n" + flatrow.Header() + "\n" + row(t, 4481, 1, 2) + "\n" + row(t, 9999, 1, 2) + "\n" + row(t, 254, 2, 2)
	msg := run(t, bot, content).GetLastMessage()

	assert.Contains(t, msg.Content, "Imported 2 records, 1 rows rejected")
	assert.Contains(t, msg.Content, "row 4:")
	assert.Equal(t, 2, bot.APIPtr.Repo.Len())
}

func TestImport_AllValid(t *testing.T) {
	bot, _ := createTestBot(t)
	msg := run(t, bot, "$import\n"+row(t, 4481, 1, 2)).GetLastMessage()
	assert.Equal(t, "Imported 1 records", msg.Content)
}

func TestImport_ManyErrorsSummarised(t *testing.T) {
	bot, _ := createTestBot(t)
	content := "$import" + strings.Repeat("\nbad\trow", maxListedRowErrors+3)
	msg := run(t, bot, content).GetLastMessage()
	assert.Contains(t, msg.Content, "...and 3 more")
}

// endregion

// region query tests

func TestRecords(t *testing.T) {
	bot, _ := createTestBot(t)
	seed(t, bot)

	msg := run(t, bot, "$records frc4481").GetLastMessage()
	assert.True(t, strings.HasPrefix(msg.Content, "```"))
	assert.Contains(t, msg.Content, "Best records for 4481")
	assert.Contains(t, msg.Content, "254")
}

func TestRecords_UnknownTeam(t *testing.T) {
	bot, _ := createTestBot(t)
	msg := run(t, bot, "$records 118").GetLastMessage()
	assert.Contains(t, msg.Content, "Nothing has been scouted yet")
}

func TestRecords_Usage(t *testing.T) {
	bot, _ := createTestBot(t)
	assert.Contains(t, run(t, bot, "$records").GetLastMessage().Content, "Usage")
	assert.Contains(t, run(t, bot, "$records 4481 zero").GetLastMessage().Content, "Usage")
	assert.Contains(t, run(t, bot, "$records abc").GetLastMessage().Content, "Error reading team")
}

func TestHeadToHead(t *testing.T) {
	bot, _ := createTestBot(t)
	seed(t, bot)

	msg := run(t, bot, "$h2h 4481 254").GetLastMessage()
	assert.Equal(t, "4481 vs 254: 1-1 (50.0%)", msg.Content)

	msg = run(t, bot, "$h2h 4481 118").GetLastMessage()
	assert.Equal(t, "4481 vs 118: no shared matches", msg.Content)
}

func TestCompare(t *testing.T) {
	bot, _ := createTestBot(t)
	seed(t, bot)

	msg := run(t, bot, "$compare 4481 254").GetLastMessage()
	assert.Contains(t, msg.Content, "Average points")

	msg = run(t, bot, "$compare 4481 254 total").GetLastMessage()
	assert.Contains(t, msg.Content, "Total points")

	msg = run(t, bot, "$compare 4481 254 qm2").GetLastMessage()
	assert.Contains(t, msg.Content, "Single match")
	assert.Contains(t, msg.Content, "-75.00%")

	msg = run(t, bot, "$compare 4481 254 median").GetLastMessage()
	assert.Contains(t, msg.Content, "Usage")

	msg = run(t, bot, "$compare 4481 118").GetLastMessage()
	assert.Contains(t, msg.Content, "Nothing has been scouted yet")
}

func TestChange(t *testing.T) {
	bot, _ := createTestBot(t)
	seed(t, bot)

	msg := run(t, bot, "$change 4481 1 2").GetLastMessage()
	assert.Contains(t, msg.Content, "4481: match 1 to 2")
	assert.Contains(t, msg.Content, "100.0%")

	msg = run(t, bot, "$change 4481 1").GetLastMessage()
	assert.Contains(t, msg.Content, "Usage")

	msg = run(t, bot, "$change 4481 1 9").GetLastMessage()
	assert.Contains(t, msg.Content, "Nothing has been scouted yet")
}

// endregion

// region file tests

func TestTrend(t *testing.T) {
	bot, _ := createTestBot(t)
	seed(t, bot)

	session := run(t, bot, "$trend 4481")
	file := session.GetLastFile()
	assert.Equal(t, "trend-4481.png", file.Name)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("\x89PNG")))
	assert.Empty(t, session.SentMessages)
}

func TestSummary(t *testing.T) {
	bot, _ := createTestBot(t)
	seed(t, bot)

	file := run(t, bot, "$summary 254").GetLastFile()
	assert.Equal(t, "summary-254.csv", file.Name)
	assert.Equal(t, "Match,Auto,Teleop,Endgame,Total\n1,0,6,0,6\n2,0,2,0,2\n", string(file.Data))
}

func TestExport(t *testing.T) {
	bot, _ := createTestBot(t)
	seed(t, bot)

	file := run(t, bot, "$export").GetLastFile()
	assert.Equal(t, "2025nhsal.xlsx", file.Name)
	f, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Matches")
	require.NoError(t, err)
	assert.Len(t, rows, 5)

	file = run(t, bot, "$export 254").GetLastFile()
	assert.Equal(t, "2025nhsal-254.xlsx", file.Name)
}

// endregion

// region districts tests

func TestDistricts(t *testing.T) {
	bot, _ := createTestBot(t)
	bot.APIPtr.TBA.(*api.MockTBA).DistrictList = []external.District{
		{Key: "2025ne", DisplayName: "New England"},
		{Key: "2025chs", DisplayName: "Chesapeake"},
	}

	session := run(t, bot, "$districts")
	msg := session.GetLastMessage().Content
	assert.Contains(t, msg, "2025ne: New England")
	assert.Less(t, strings.Index(msg, "2025chs"), strings.Index(msg, "2025ne"))
}

func TestDistricts_None(t *testing.T) {
	bot, _ := createTestBot(t)

	session := run(t, bot, "$districts")
	assert.Contains(t, session.GetLastMessage().Content, "No districts found")
}

// endregion
