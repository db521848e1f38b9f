/* api.go
 * This file contains the public methods for interacting with this package. Front ends (bot, web server and CLI)
 * should only call the methods in this file, not the sub packages for scoring, storage and export
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"cyber-scout/api/export"
	"cyber-scout/api/external"
	"cyber-scout/api/flatrow"
	"cyber-scout/api/logic"
	"cyber-scout/api/shared"
	"cyber-scout/api/store"
)

// API provides methods for interacting with the scouting data layer
type API struct {
	Store   store.Interface
	TBA     EventSource
	Repo    *store.Repository
	Metrics *Metrics
	Logger  *slog.Logger

	district string
	homeTeam int
	year     int

	mu       sync.RWMutex
	event    external.Event
	schedule *external.EventSchedule
}

// NewAPI creates a new API instance with the provided configuration. A zero rubric selects the default one
func NewAPI(opts Options) *API {
	rubric := opts.Rubric
	if rubric.Name == "" {
		rubric = logic.DefaultRubric()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	year := opts.Year
	if year == 0 {
		year = time.Now().Year()
	}
	return &API{
		Store:    opts.Store,
		TBA:      opts.TBA,
		Repo:     store.NewRepository(rubric),
		Metrics:  opts.Metrics,
		Logger:   logger,
		district: opts.District,
		homeTeam: opts.HomeTeam,
		year:     year,
	}
}

// region event selection

// CandidateEvents returns the events offered for selection: the configured district's events followed by the home
// team's recent events, without duplicates
func (a *API) CandidateEvents(ctx context.Context) ([]external.Event, error) {
	if a.TBA == nil {
		return nil, nil
	}

	var events []external.Event
	if a.district != "" {
		districtEvents, err := a.TBA.DistrictEvents(ctx, a.district)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch district events: %w", err)
		}
		events = append(events, districtEvents...)
	}
	if a.homeTeam > 0 {
		teamEvents, err := a.TBA.TeamEvents(ctx, a.homeTeam, a.year)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch team events: %w", err)
		}
		for _, e := range teamEvents {
			if !slices.ContainsFunc(events, func(x external.Event) bool { return x.Key == e.Key }) {
				events = append(events, e)
			}
		}
	}
	return events, nil
}

// Districts lists the season's districts
func (a *API) Districts(ctx context.Context) ([]external.District, error) {
	if a.TBA == nil {
		return nil, nil
	}
	districts, err := a.TBA.Districts(ctx, a.year)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch districts: %w", err)
	}
	slices.SortFunc(districts, func(x, y external.District) int { return strings.Compare(x.Key, y.Key) })
	return districts, nil
}

// SelectEvent resolves a key or name against the candidate events and loads it.
// Preconditions: Receives the query typed by the user
// Postconditions: Returns the loaded event, or an error wrapping logic.ErrUnknownEvent if nothing matches
func (a *API) SelectEvent(ctx context.Context, query string) (external.Event, error) {
	events, err := a.CandidateEvents(ctx)
	if err != nil {
		return external.Event{}, err
	}

	event, err := logic.ResolveEvent(query, events)
	if errors.Is(err, logic.ErrUnknownEvent) && a.TBA != nil {
		// Events outside the district can still be picked by key
		if byKey, keyErr := a.TBA.Event(ctx, strings.ToLower(strings.TrimSpace(query))); keyErr == nil && byKey.Key != "" {
			event, err = byKey, nil
		}
	}
	if err != nil {
		return external.Event{}, err
	}

	if err := a.LoadEvent(ctx, event); err != nil {
		return external.Event{}, err
	}
	return event, nil
}

// LoadEvent makes the event current: the schedule is read from the cache (or TBA once the cache expired) and the
// records stored for the event are rescored into a fresh repository
func (a *API) LoadEvent(ctx context.Context, event external.Event) error {
	if event.Key == "" {
		return ErrNoEvent
	}
	if a.Store != nil {
		a.Store.SetEventKey(event.Key)
	}

	a.mu.Lock()
	a.event = event
	a.schedule = external.NewEventSchedule(event.Key, nil)
	a.mu.Unlock()

	if err := a.loadSchedule(ctx); err != nil {
		a.Logger.Warn("event schedule unavailable, submissions are not checked", "event", event.Key, "error", err)
	}
	return a.restoreMatches(ctx)
}

func (a *API) loadSchedule(ctx context.Context) error {
	if a.Store != nil {
		doc, err := a.Store.FetchSchedule(ctx)
		if err == nil && !doc.Expired(time.Now()) {
			a.SetSchedule(external.NewEventSchedule(a.eventKey(), doc.Matches))
			return nil
		}
	}
	return a.RefreshSchedule(ctx)
}

// RefreshSchedule fetches the event's matches from TBA and caches them
func (a *API) RefreshSchedule(ctx context.Context) error {
	key := a.eventKey()
	if key == "" {
		return ErrNoEvent
	}
	if a.TBA == nil {
		return fmt.Errorf("no TBA client configured")
	}

	matches, err := a.TBA.EventMatches(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to fetch event matches: %w", err)
	}
	a.SetSchedule(external.NewEventSchedule(key, matches))

	if a.Store != nil {
		if err := a.Store.StoreSchedule(ctx, matches); err != nil {
			a.Logger.Warn("failed to cache event schedule", "event", key, "error", err)
		}
	}
	return nil
}

func (a *API) restoreMatches(ctx context.Context) error {
	a.Repo.Clear()
	if a.Store == nil {
		a.Metrics.setRecords(0)
		return nil
	}

	stored, err := a.Store.LoadMatches(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore matches: %w", err)
	}
	// Stored points are not trusted, the active rubric may differ from the one they were scored with
	for _, rec := range stored {
		if _, err := a.Repo.Insert(rec.RawMatchRecord); err != nil {
			a.Logger.Warn("skipping stored record", "team", rec.TeamNumber, "match", rec.MatchNumber, "error", err)
		}
	}
	a.Metrics.setRecords(a.Repo.Len())
	return nil
}

// SetSchedule replaces the schedule submissions are checked against. A nil schedule disables the checks
func (a *API) SetSchedule(s *external.EventSchedule) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.schedule = s
}

// Schedule returns the current schedule, nil before an event is loaded
func (a *API) Schedule() *external.EventSchedule {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.schedule
}

// Event returns the current event
func (a *API) Event() external.Event {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.event
}

func (a *API) eventKey() string {
	return a.Event().Key
}

// EventInfo summarises the current event
func (a *API) EventInfo() EventInfo {
	event := a.Event()
	info := EventInfo{
		Key:     event.Key,
		Name:    event.DisplayName(),
		Rubric:  a.Repo.Rubric().Name,
		Records: a.Repo.Len(),
		Teams:   len(a.Repo.Teams()),
	}
	if s := a.Schedule(); s != nil {
		info.ScheduledMatches = s.Len()
	}
	return info
}

// ApplyMatchScore updates the schedule with a match TBA pushed. Matches for other events are ignored
func (a *API) ApplyMatchScore(ctx context.Context, m external.Match) error {
	s := a.Schedule()
	if s == nil || m.EventKey != s.EventKey {
		a.Logger.Debug("ignoring match for another event", "match", m.Key)
		return nil
	}
	s.Update(m)

	if a.Store != nil {
		if err := a.Store.StoreSchedule(ctx, s.Matches()); err != nil {
			return fmt.Errorf("failed to cache match %s: %w", m.Key, err)
		}
	}
	return nil
}

// endregion

// region submission

// SubmitMatch validates a record against the schedule, scores it and stores it.
// Preconditions: Receives the submitting user and the raw record
// Postconditions: Returns the stored scored record. ErrNotScheduled is returned when a schedule is loaded and the team
// isn't in that qualification match, validation errors wrap shared.ErrInvalidRecord. A failed database write is
// logged but the record stays in the session
func (a *API) SubmitMatch(ctx context.Context, user shared.User, raw shared.RawMatchRecord) (shared.ScoredMatchRecord, error) {
	if s := a.Schedule(); s != nil && s.Len() > 0 && raw.TeamNumber > 0 && raw.MatchNumber > 0 {
		if !s.IsScheduled(raw.TeamNumber, raw.MatchNumber) {
			a.Metrics.submission(OutcomeUnscheduled)
			return shared.ScoredMatchRecord{}, fmt.Errorf("team %d match %d: %w", raw.TeamNumber, raw.MatchNumber, ErrNotScheduled)
		}
		if raw.StartingPosition == "" {
			if pos, ok := s.TeamSlot(raw.TeamNumber, raw.MatchNumber); ok {
				raw.StartingPosition = pos
			}
		}
		if raw.MatchResult == "" {
			if outcome, ok := s.AllianceResult(raw.TeamNumber, raw.MatchNumber); ok {
				raw.MatchResult = outcome.Result
			}
		}
	}

	scored, err := a.Repo.Insert(raw)
	if err != nil {
		a.Metrics.submission(OutcomeInvalid)
		return shared.ScoredMatchRecord{}, err
	}
	a.Metrics.accepted(scored.TotalPoints, scored.RankPoints.Total, a.Repo.Len())

	if a.Store != nil {
		if err := a.Store.SaveMatch(ctx, scored, user); err != nil {
			a.Metrics.persistFailed()
			a.Logger.Error("failed to persist match", "team", scored.TeamNumber, "match", scored.MatchNumber, "error", err)
		}
	}
	return scored, nil
}

// SubmitRow parses one flat row (tab or comma delimited) and submits it
func (a *API) SubmitRow(ctx context.Context, user shared.User, line string) (shared.ScoredMatchRecord, error) {
	fields, err := flatrow.SplitRow(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return shared.ScoredMatchRecord{}, fmt.Errorf("%w: %w", shared.ErrImportParse, err)
	}
	raw, err := flatrow.FromFlatRow(fields)
	if err != nil {
		return shared.ScoredMatchRecord{}, fmt.Errorf("%w: %w", shared.ErrImportParse, err)
	}
	return a.SubmitMatch(ctx, user, raw)
}

// ImportRows submits every row of a pasted block. Rows that fail to parse or submit are reported, the rest are kept
func (a *API) ImportRows(ctx context.Context, user shared.User, text string) ImportSummary {
	return a.submitAll(ctx, user, flatrow.ParseRows(text))
}

// ImportWorkbook submits every row of an xlsx export
func (a *API) ImportWorkbook(ctx context.Context, user shared.User, r io.Reader) (ImportSummary, error) {
	result, err := export.ReadWorkbook(r)
	if err != nil {
		return ImportSummary{}, err
	}
	return a.submitAll(ctx, user, result), nil
}

func (a *API) submitAll(ctx context.Context, user shared.User, result flatrow.ImportResult) ImportSummary {
	summary := ImportSummary{Errors: slices.Clone(result.Errors)}
	for i, raw := range result.Records {
		scored, err := a.SubmitMatch(ctx, user, raw)
		if err != nil {
			summary.Errors = append(summary.Errors, flatrow.RowError{Row: result.Rows[i], Err: err})
			continue
		}
		summary.Accepted = append(summary.Accepted, scored)
	}
	slices.SortStableFunc(summary.Errors, func(x, y flatrow.RowError) int { return x.Row - y.Row })
	return summary
}

// ClearMatches drops the session's records and the stored ones for the current event
func (a *API) ClearMatches(ctx context.Context) error {
	a.Repo.Clear()
	a.Metrics.setRecords(0)
	if a.Store == nil {
		return nil
	}
	return a.Store.ClearMatches(ctx)
}

// endregion

// region queries

// HeadToHead compares two teams over their shared match numbers
func (a *API) HeadToHead(team, opponent int) logic.HeadToHeadRecord {
	return logic.HeadToHead(team, opponent, a.Repo)
}

// Records returns a team's best and worst head to head records
func (a *API) Records(team, n int) (logic.Records, error) {
	if !slices.Contains(a.Repo.Teams(), team) {
		return logic.Records{}, fmt.Errorf("team %d: %w", team, shared.ErrNoMatches)
	}
	return logic.BestAndWorstRecords(team, a.Repo, n), nil
}

// Compare compares two teams over all of their matches
func (a *API) Compare(teamA, teamB int, mode logic.AggregateMode) (logic.Comparison, error) {
	return logic.CompareAggregate(teamA, teamB, mode, a.Repo)
}

// CompareMatch compares two teams on one match number
func (a *API) CompareMatch(teamA, teamB, match int) (logic.Comparison, error) {
	return logic.CompareMatch(teamA, teamB, match, a.Repo)
}

// Change returns the percentage change of a team between two of its matches
func (a *API) Change(team, startMatch, endMatch int) (logic.PercentageChanges, error) {
	return logic.MatchChange(team, startMatch, endMatch, a.Repo)
}

// TeamSummary returns a team's points per recorded match
func (a *API) TeamSummary(team int) []logic.MatchPoints {
	return logic.TeamSummary(team, a.Repo)
}

// Trend renders a team's points per match as a PNG
func (a *API) Trend(team int) ([]byte, error) {
	return export.TrendChart(team, a.TeamSummary(team), export.DefaultPalette)
}

// endregion

// region export

// records returns every record, or one team's when team is positive
func (a *API) records(team int) []shared.ScoredMatchRecord {
	if team <= 0 {
		return a.Repo.Snapshot()
	}
	return slices.Collect(a.Repo.ByTeam(team))
}

// ExportTSV writes the flat rows (with header) of every record or of one team
func (a *API) ExportTSV(w io.Writer, team int) error {
	return export.WriteTSV(w, a.records(team))
}

// ExportWorkbook writes an xlsx workbook of every record or of one team
func (a *API) ExportWorkbook(w io.Writer, team int) error {
	return export.WriteWorkbook(w, a.records(team))
}

// ExportSummary writes a team's per match summary as CSV
func (a *API) ExportSummary(w io.Writer, team int) error {
	summary := a.TeamSummary(team)
	if len(summary) == 0 {
		return fmt.Errorf("team %d: %w", team, shared.ErrNoMatches)
	}
	return export.WriteSummaryCSV(w, summary)
}

// endregion

// Close disconnects the database client if there is one
func (a *API) Close(ctx context.Context) error {
	if a.Store == nil {
		return nil
	}
	return a.Store.GetClient().Disconnect(ctx)
}
