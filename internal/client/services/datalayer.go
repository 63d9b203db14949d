package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/babylog/internal/client/client"
	"github.com/dmitrijs2005/babylog/internal/client/events"
	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/repositories/kv"
	"github.com/dmitrijs2005/babylog/internal/client/units"
	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/logging"
	"github.com/dmitrijs2005/babylog/internal/timex"
)

// Deps are the collaborators the data layer is assembled from. Store is
// required; the rest default to no-op or system values. Remote may be nil,
// in which case Sync returns nil.
type Deps struct {
	Store    kv.Store
	Bus      *events.Bus
	Clock    timex.Clock
	Location *time.Location
	Logger   logging.Logger
	Remote   client.Client
}

// DataLayer is the boundary the UI surfaces talk to. Its operations never
// return errors: failures are logged and reported as empty results, false
// or nil. The underlying services stay reachable for callers that need
// the precise error (sync, backup, request validation).
type DataLayer struct {
	log   logging.Logger
	bus   *events.Bus
	clock timex.Clock

	entries     EntryService
	profiles    ProfileService
	sleep       TimerService
	breast      TimerService
	preferences PreferenceService
	weights     WeightService
	summary     SummaryService
	backup      BackupService
	sync        SyncService
}

func NewDataLayer(d Deps) (*DataLayer, error) {
	if d.Store == nil {
		return nil, errors.New("data layer: nil store")
	}
	if d.Bus == nil {
		d.Bus = events.NewBus()
	}
	if d.Clock == nil {
		d.Clock = timex.SystemClock()
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}

	js := kv.NewJSONStore(d.Store)
	profiles := NewProfileService(js, d.Bus, d.Clock)
	entries := NewEntryService(js, profiles, d.Bus, d.Clock, d.Location)

	sleep, err := NewTimerService(models.TimerKindSleep, js, entries, profiles, d.Bus, d.Clock)
	if err != nil {
		return nil, err
	}
	breast, err := NewTimerService(models.TimerKindBreast, js, entries, profiles, d.Bus, d.Clock)
	if err != nil {
		return nil, err
	}

	dl := &DataLayer{
		log:         d.Logger.With("module", "datalayer"),
		bus:         d.Bus,
		clock:       d.Clock,
		entries:     entries,
		profiles:    profiles,
		sleep:       sleep,
		breast:      breast,
		preferences: NewPreferenceService(js, d.Bus, d.Clock),
		weights:     NewWeightService(js, profiles, d.Bus, d.Clock, d.Logger),
		summary:     NewSummaryService(entries, d.Clock),
		backup:      NewBackupService(d.Store, d.Bus, d.Clock),
	}
	if d.Remote != nil {
		dl.sync = NewSyncService(js, d.Remote, profiles, entries, d.Bus, d.Clock)
	}
	return dl, nil
}

// report logs err at a level matching its category. Missing records are
// an expected outcome and are not logged.
func (d *DataLayer) report(ctx context.Context, op string, err error) {
	switch {
	case err == nil, errors.Is(err, common.ErrNotFound):
	case errors.Is(err, common.ErrCorruptData):
		d.log.Warn(ctx, op+": corrupt data", "error", err)
	case errors.Is(err, common.ErrInvalidEntry),
		errors.Is(err, common.ErrInvalidProfile),
		errors.Is(err, common.ErrInvalidWeight),
		errors.Is(err, common.ErrInvalidDate),
		errors.Is(err, common.ErrInvalidTimer):
		d.log.Warn(ctx, op+": rejected", "error", err)
	default:
		d.log.Error(ctx, op+" failed", "error", err)
	}
}

func (d *DataLayer) Entries() EntryService          { return d.entries }
func (d *DataLayer) Profiles() ProfileService       { return d.profiles }
func (d *DataLayer) Preferences() PreferenceService { return d.preferences }
func (d *DataLayer) Weights() WeightService         { return d.weights }
func (d *DataLayer) Summary() SummaryService        { return d.summary }
func (d *DataLayer) Backup() BackupService          { return d.backup }
func (d *DataLayer) Sync() SyncService              { return d.sync }
func (d *DataLayer) Clock() timex.Clock             { return d.clock }
func (d *DataLayer) Location() *time.Location       { return d.entries.Location() }

// Timer returns the state machine for kind, or nil for an unknown kind.
func (d *DataLayer) Timer(kind models.TimerKind) TimerService {
	switch kind {
	case models.TimerKindSleep:
		return d.sleep
	case models.TimerKindBreast:
		return d.breast
	}
	return nil
}

// Bootstrap runs the startup migrations. It reports whether they succeeded.
func (d *DataLayer) Bootstrap(ctx context.Context) bool {
	err := d.profiles.Bootstrap(ctx)
	d.report(ctx, "bootstrap", err)
	return err == nil
}

// Subscribe registers fn on the change bus.
func (d *DataLayer) Subscribe(fn events.Listener) (unsubscribe func()) {
	return d.bus.Subscribe(fn)
}

/*************
 * Entries
 *************/

func (d *DataLayer) GetEntries(ctx context.Context) []models.Entry {
	list, err := d.entries.GetEntries(ctx)
	if err != nil {
		d.report(ctx, "get entries", err)
		return []models.Entry{}
	}
	return list
}

// AddEntry saves e and returns the stored copy with its stamped fields.
func (d *DataLayer) AddEntry(ctx context.Context, e models.Entry) (models.Entry, bool) {
	saved, err := d.entries.Save(ctx, e)
	if err != nil {
		d.report(ctx, "save entry", err)
		return models.Entry{}, false
	}
	return saved, true
}

func (d *DataLayer) SaveEntry(ctx context.Context, e models.Entry) bool {
	_, ok := d.AddEntry(ctx, e)
	return ok
}

func (d *DataLayer) UpdateEntry(ctx context.Context, id string, patch models.EntryPatch) bool {
	_, err := d.entries.Update(ctx, id, patch)
	d.report(ctx, "update entry", err)
	return err == nil
}

func (d *DataLayer) DeleteEntry(ctx context.Context, id string) bool {
	err := d.entries.Delete(ctx, id)
	d.report(ctx, "delete entry", err)
	return err == nil
}

func (d *DataLayer) GetEntriesByDate(ctx context.Context, date string) []models.Entry {
	list, err := d.entries.GetByDate(ctx, date)
	if err != nil {
		d.report(ctx, "get entries by date", err)
		return []models.Entry{}
	}
	return list
}

func (d *DataLayer) GetEntriesInRange(ctx context.Context, from, to time.Time) []models.Entry {
	list, err := d.entries.GetInRange(ctx, from, to)
	if err != nil {
		d.report(ctx, "get entries in range", err)
		return []models.Entry{}
	}
	return list
}

/*************
 * Profiles
 *************/

func (d *DataLayer) GetAllBabyProfiles(ctx context.Context) []models.BabyProfile {
	list, err := d.profiles.GetAll(ctx)
	if err != nil {
		d.report(ctx, "get profiles", err)
		return []models.BabyProfile{}
	}
	if list == nil {
		return []models.BabyProfile{}
	}
	return list
}

func (d *DataLayer) GetBabyProfile(ctx context.Context, id string) (models.BabyProfile, bool) {
	p, err := d.profiles.Get(ctx, id)
	if err != nil {
		d.report(ctx, "get profile", err)
		return models.BabyProfile{}, false
	}
	return p, true
}

// ActiveBabyProfile returns the active profile, if any.
func (d *DataLayer) ActiveBabyProfile(ctx context.Context) (models.BabyProfile, bool) {
	id := d.GetActiveBabyID(ctx)
	if id == "" {
		return models.BabyProfile{}, false
	}
	return d.GetBabyProfile(ctx, id)
}

func (d *DataLayer) SaveBabyProfile(ctx context.Context, p models.BabyProfile) (models.BabyProfile, bool) {
	saved, err := d.profiles.Save(ctx, p)
	if err != nil {
		d.report(ctx, "save profile", err)
		return models.BabyProfile{}, false
	}
	return saved, true
}

func (d *DataLayer) GetActiveBabyID(ctx context.Context) string {
	id, err := d.profiles.GetActiveBabyID(ctx)
	d.report(ctx, "get active profile", err)
	return id
}

func (d *DataLayer) SetActiveBabyID(ctx context.Context, id string) bool {
	err := d.profiles.SetActiveBabyID(ctx, id)
	d.report(ctx, "set active profile", err)
	return err == nil
}

func (d *DataLayer) DeleteBabyProfile(ctx context.Context, id string) bool {
	err := d.profiles.Delete(ctx, id)
	d.report(ctx, "delete profile", err)
	return err == nil
}

// MigrateOldEntriesToFirstProfile returns the number of rows stamped.
func (d *DataLayer) MigrateOldEntriesToFirstProfile(ctx context.Context) int {
	n, err := d.profiles.MigrateOrphans(ctx)
	d.report(ctx, "migrate orphans", err)
	return n
}

/*************
 * Timers
 *************/

func (d *DataLayer) start(ctx context.Context, t TimerService, side *models.BreastSide) *models.ActiveSession {
	s, err := t.Start(ctx, side)
	if err != nil {
		d.report(ctx, fmt.Sprintf("start %s timer", t.Kind()), err)
		return nil
	}
	return &s
}

// stop returns the recorded entry even when clearing the session failed
// afterwards; the entry is stored either way.
func (d *DataLayer) stop(ctx context.Context, t TimerService) *models.Entry {
	e, err := t.Stop(ctx)
	d.report(ctx, fmt.Sprintf("stop %s timer", t.Kind()), err)
	return e
}

func (d *DataLayer) active(ctx context.Context, t TimerService) *models.ActiveSession {
	s, err := t.GetActive(ctx)
	d.report(ctx, fmt.Sprintf("get active %s", t.Kind()), err)
	if err != nil {
		return nil
	}
	return s
}

func (d *DataLayer) StartSleepTimer(ctx context.Context) *models.ActiveSession {
	return d.start(ctx, d.sleep, nil)
}

func (d *DataLayer) StopSleepTimer(ctx context.Context) *models.Entry {
	return d.stop(ctx, d.sleep)
}

func (d *DataLayer) GetActiveSleep(ctx context.Context) *models.ActiveSession {
	return d.active(ctx, d.sleep)
}

func (d *DataLayer) StartBreastTimer(ctx context.Context, side models.BreastSide) *models.ActiveSession {
	return d.start(ctx, d.breast, &side)
}

func (d *DataLayer) StopBreastTimer(ctx context.Context) *models.Entry {
	return d.stop(ctx, d.breast)
}

func (d *DataLayer) GetActiveBreast(ctx context.Context) *models.ActiveSession {
	return d.active(ctx, d.breast)
}

// Elapsed reports the whole minutes of the running kind timer.
func (d *DataLayer) Elapsed(ctx context.Context, kind models.TimerKind) (int, bool) {
	t := d.Timer(kind)
	if t == nil {
		return 0, false
	}
	m, running, err := t.Elapsed(ctx)
	d.report(ctx, fmt.Sprintf("elapsed %s", kind), err)
	return m, running && err == nil
}

/*************
 * Preferences and units
 *************/

func (d *DataLayer) LoadPreferences(ctx context.Context) models.Preferences {
	p, err := d.preferences.Load(ctx)
	d.report(ctx, "load preferences", err)
	return p
}

func (d *DataLayer) SavePreferences(ctx context.Context, p models.Preferences) bool {
	err := d.preferences.Save(ctx, p)
	d.report(ctx, "save preferences", err)
	return err == nil
}

// UpdatePreferences applies patch and returns the resulting preferences;
// on failure the currently loadable preferences are returned.
func (d *DataLayer) UpdatePreferences(ctx context.Context, patch models.PreferencesPatch) (models.Preferences, bool) {
	p, err := d.preferences.Update(ctx, patch)
	if err != nil {
		d.report(ctx, "update preferences", err)
		return d.LoadPreferences(ctx), false
	}
	return p, true
}

func (d *DataLayer) ConvertVolume(v float64, from, to models.UnitSystem) float64 {
	return units.ConvertVolume(v, from, to)
}

func (d *DataLayer) ConvertWeight(v float64, from, to models.UnitSystem) float64 {
	return units.ConvertWeight(v, from, to)
}

/*************
 * Summaries
 *************/

func (d *DataLayer) GetDailySummary(ctx context.Context, date string) models.DailySummary {
	s, err := d.summary.Daily(ctx, date)
	if err != nil {
		d.report(ctx, "daily summary", err)
		return models.DailySummary{Date: date}
	}
	return s
}

func (d *DataLayer) GetRangeSummary(ctx context.Context, from string, days int) ([]models.DailySummary, models.PeriodSummary) {
	daily, period, err := d.summary.Range(ctx, from, days)
	if err != nil {
		d.report(ctx, "range summary", err)
		return []models.DailySummary{}, models.PeriodSummary{}
	}
	return daily, period
}

func (d *DataLayer) Today() string {
	return d.summary.Today()
}

/*************
 * Weights
 *************/

func (d *DataLayer) AddWeight(ctx context.Context, lb float64, timestamp int64, notes string) (models.WeightEntry, bool) {
	w, err := d.weights.Add(ctx, lb, timestamp, notes)
	if err != nil {
		d.report(ctx, "add weight", err)
		return models.WeightEntry{}, false
	}
	return w, true
}

func (d *DataLayer) GetWeights(ctx context.Context) []models.WeightEntry {
	list, err := d.weights.List(ctx)
	if err != nil {
		d.report(ctx, "get weights", err)
		return []models.WeightEntry{}
	}
	return list
}

func (d *DataLayer) DeleteWeight(ctx context.Context, id string) bool {
	err := d.weights.Delete(ctx, id)
	d.report(ctx, "delete weight", err)
	return err == nil
}
