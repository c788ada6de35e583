package main

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"

	"go.uber.org/zap"
)

const (
	warnProgressNotSaved = "Your progress could not be saved. Changes are kept until the dashboard restarts."
	warnThemeNotSaved    = "Your theme preference could not be saved."
)

// Snapshot is the JSON view of the dashboard state.
type Snapshot struct {
	UserID        string   `json:"userId"`
	Completed     int      `json:"completed"`
	Total         int      `json:"total"`
	Percent       int      `json:"percent"`
	RingOffset    float64  `json:"ringOffset"`
	Circumference float64  `json:"circumference"`
	Theme         Theme    `json:"theme"`
	View          ViewMode `json:"view"`
	RoleLabel     string   `json:"roleLabel"`
	Warning       string   `json:"warning,omitempty"`
}

// Dashboard is the application state: progress, theme and view mode plus the
// static catalog. Every exported method takes the lock, so handlers can share
// one instance.
type Dashboard struct {
	mu       sync.Mutex
	userID   string
	catalog  Catalog
	progress *ProgressStore
	theme    *ThemeController
	view     *ViewController
	tmpl     *template.Template
	log      *zap.Logger
	metrics  *Metrics
	flash    []string // warnings shown once on the next page render
}

func NewDashboard(kv KVStore, catalog Catalog, userID string, log *zap.Logger, metrics *Metrics) (*Dashboard, error) {
	tmpl, err := parseDashboardTemplate()
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Dashboard{
		userID:   userID,
		catalog:  catalog,
		progress: NewProgressStore(kv, userID, log),
		theme:    NewThemeController(kv, log),
		view:     NewViewController(),
		tmpl:     tmpl,
		log:      log,
		metrics:  metrics,
	}, nil
}

// Boot restores progress and theme, then renders the page once to make sure
// every element the dashboard writes into exists. Storage trouble is logged
// and tolerated; a broken layout is fatal.
func (d *Dashboard) Boot(ctx context.Context, systemDark bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.progress.Load(ctx)
	if _, err := d.theme.Resolve(ctx, systemDark); err != nil {
		d.metrics.StorageWriteFailed("theme")
		d.warnLocked(warnThemeNotSaved)
	}

	var buf bytes.Buffer
	if err := d.tmpl.Execute(&buf, d.pageLocked(false)); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	if err := validateLayout(&buf, requiredElements); err != nil {
		return fmt.Errorf("dashboard layout: %w", err)
	}

	d.log.Info("dashboard ready",
		zap.String("user", d.userID),
		zap.Int("completed", d.progress.CompletedCount()),
		zap.Int("lessons", d.catalog.TotalLessons()),
		zap.String("theme", string(d.theme.Current())),
	)
	return nil
}

func (d *Dashboard) UserID() string { return d.userID }

func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// ToggleLesson flips a catalog lesson. A failed write is reported in
// Snapshot.Warning, not as an error.
func (d *Dashboard) ToggleLesson(ctx context.Context, lessonID int) (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.catalog.Lesson(lessonID); !ok {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrLessonNotFound, lessonID)
	}

	completed, err := d.progress.Toggle(ctx, lessonID)
	d.metrics.LessonToggled(completed)
	snap := d.snapshotLocked()
	if err != nil {
		d.metrics.StorageWriteFailed("progress")
		d.warnLocked(warnProgressNotSaved)
		snap.Warning = warnProgressNotSaved
	}
	d.log.Debug("lesson toggled", zap.Int("lesson", lessonID), zap.Bool("completed", completed))
	return snap, nil
}

func (d *Dashboard) ToggleTheme(ctx context.Context) Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.theme.Toggle(ctx)
	snap := d.snapshotLocked()
	if err != nil {
		d.metrics.StorageWriteFailed("theme")
		d.warnLocked(warnThemeNotSaved)
		snap.Warning = warnThemeNotSaved
	}
	return snap
}

func (d *Dashboard) ToggleRole() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.view.ToggleRole()
	return d.snapshotLocked()
}

// ExportProgress returns a copy of the raw completion map.
func (d *Dashboard) ExportProgress() CompletionMap {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.progress.Map()
}

// RestoreProgress replaces the completion map wholesale. Keys are not checked
// against the catalog, matching what Load accepts from storage.
func (d *Dashboard) RestoreProgress(ctx context.Context, m CompletionMap) Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.progress.Replace(ctx, m)
	snap := d.snapshotLocked()
	if err != nil {
		d.metrics.StorageWriteFailed("progress")
		d.warnLocked(warnProgressNotSaved)
		snap.Warning = warnProgressNotSaved
	}
	return snap
}

// ResetProgress clears every completion.
func (d *Dashboard) ResetProgress(ctx context.Context) Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.progress.Reset(ctx)
	snap := d.snapshotLocked()
	if err != nil {
		d.metrics.StorageWriteFailed("progress")
		d.warnLocked(warnProgressNotSaved)
		snap.Warning = warnProgressNotSaved
	}
	return snap
}

func (d *Dashboard) Lessons() []LessonCard {
	d.mu.Lock()
	defer d.mu.Unlock()
	return renderLessonList(d.catalog.Lessons, d.progress.Map())
}

func (d *Dashboard) Roster() []RosterRow {
	return renderRoster(d.catalog.Roster)
}

// Page builds the template data and consumes any pending warnings.
func (d *Dashboard) Page() PageData {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pageLocked(true)
}

func (d *Dashboard) Template() *template.Template { return d.tmpl }

func (d *Dashboard) pageLocked(drainFlash bool) PageData {
	mode := d.view.Mode()
	page := PageData{
		Theme:         d.theme.Current(),
		View:          mode,
		RoleLabel:     mode.RoleLabel(),
		ToggleCaption: mode.ToggleCaption(),
		StudentHidden: mode == ViewTeacher,
		TeacherHidden: mode == ViewStudent,
		Ring:          renderRing(d.progress.CompletedCount(), d.catalog.TotalLessons()),
		Lessons:       renderLessonList(d.catalog.Lessons, d.progress.Map()),
		Roster:        renderRoster(d.catalog.Roster),
	}
	if drainFlash && len(d.flash) > 0 {
		page.Warnings = d.flash
		d.flash = nil
	}
	return page
}

func (d *Dashboard) snapshotLocked() Snapshot {
	ring := renderRing(d.progress.CompletedCount(), d.catalog.TotalLessons())
	mode := d.view.Mode()
	return Snapshot{
		UserID:        d.userID,
		Completed:     ring.Completed,
		Total:         ring.Total,
		Percent:       ring.Percent,
		RingOffset:    ring.Offset,
		Circumference: ring.Circumference,
		Theme:         d.theme.Current(),
		View:          mode,
		RoleLabel:     mode.RoleLabel(),
	}
}

func (d *Dashboard) warnLocked(msg string) {
	for _, w := range d.flash {
		if w == msg {
			return
		}
	}
	d.flash = append(d.flash, msg)
}
