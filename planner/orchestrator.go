package planner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"trip_itinerary_planner/generator"
	"trip_itinerary_planner/itinerary"
)

// defaultAreaTitle scopes a day with no resolved visit and no day title.
const defaultAreaTitle = "周辺エリア"

// fillOrder is the fixed kind sequence within a day. Visit resolves first so
// the day's area and the avoidance data are settled before food/hotel/move.
var fillOrder = []itinerary.ItemKind{
	itinerary.KindVisit,
	itinerary.KindFood,
	itinerary.KindHotel,
	itinerary.KindMove,
}

// Filler is the slice of the generation layer the orchestrator needs.
type Filler interface {
	Fill(ctx context.Context, req generator.FillRequest) (itinerary.Item, error)
}

// Hints carries the form-derived context reused by every fill request.
type Hints struct {
	DepartLabel     string
	DestinationHint string
	Optional        string
}

// HintsFromRequest derives fill hints from the original outline form input.
func HintsFromRequest(req generator.OutlineRequest) Hints {
	var parts []string
	if t := strings.TrimSpace(req.Destination.Text); t != "" {
		parts = append(parts, "TEXT:"+t)
	}
	if len(req.Destination.Links) > 0 {
		urls := make([]string, 0, len(req.Destination.Links))
		for _, l := range req.Destination.Links {
			urls = append(urls, l.URL)
			if len(urls) == 8 {
				break
			}
		}
		parts = append(parts, "URLS:\n"+strings.Join(urls, "\n"))
	}
	return Hints{
		DepartLabel:     req.Depart.Label(),
		DestinationHint: strings.Join(parts, "\n"),
		Optional:        req.OptionalBlock(),
	}
}

// Progress is the live fill position, for UI polling.
type Progress struct {
	Running     bool               `json:"running"`
	CurrentDay  int                `json:"currentDay,omitempty"`
	CurrentKind itinerary.ItemKind `json:"currentKind,omitempty"`
}

// Orchestrator drives the Phase-2 fills over one itinerary. Day 1 fans out
// concurrently; later days run strictly sequentially because each request
// carries the visit/food titles of every completed earlier day. All state
// mutations are single merges under the mutex, each a pure transform of a
// deep copy, so out-of-order day-1 completions cannot interleave mid-update.
type Orchestrator struct {
	filler      Filler
	hints       Hints
	fillTimeout time.Duration

	mu       sync.Mutex
	it       *itinerary.Itinerary
	warnings []string
	progress Progress
	stopped  bool
}

func New(filler Filler, base *itinerary.Itinerary, hints Hints) *Orchestrator {
	return &Orchestrator{
		filler:      filler,
		hints:       hints,
		fillTimeout: 60 * time.Second,
		it:          base.Clone(),
	}
}

// Snapshot returns a deep copy of the current itinerary.
func (o *Orchestrator) Snapshot() *itinerary.Itinerary {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.it.Clone()
}

// Warnings lists the fill failures accumulated so far.
func (o *Orchestrator) Warnings() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.warnings))
	copy(out, o.warnings)
	return out
}

func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress
}

// RenameTrip updates the trip name on the live itinerary.
func (o *Orchestrator) RenameTrip(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	cp := o.it.Clone()
	cp.TripName = name
	o.it = cp
}

// Stop prevents further fills from being issued. In-flight calls still
// complete and merge; no cancellation reaches the HTTP layer.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	o.stopped = true
	o.mu.Unlock()
}

func (o *Orchestrator) halted(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stopped
}

func (o *Orchestrator) setProgress(p Progress) {
	o.mu.Lock()
	o.progress = p
	o.mu.Unlock()
}

// Run fills every day of the itinerary: day 1 with all kinds in flight at
// once, day 2 onward one kind at a time. It returns when all fills have
// completed, failed, or been skipped by Stop/context.
func (o *Orchestrator) Run(ctx context.Context) {
	o.setProgress(Progress{Running: true, CurrentDay: 1})
	defer o.setProgress(Progress{})
	o.run(ctx)
}

// Start marks the run as in progress and launches it in the background. The
// running flag is set before the goroutine is scheduled, so a poller never
// sees an idle gap between starting and the first fill.
func (o *Orchestrator) Start(ctx context.Context) {
	o.setProgress(Progress{Running: true, CurrentDay: 1})
	go func() {
		defer o.setProgress(Progress{})
		o.run(ctx)
	}()
}

func (o *Orchestrator) run(ctx context.Context) {
	snapshot := o.Snapshot()
	if len(snapshot.Days) == 0 || o.halted(ctx) {
		return
	}

	o.fillDayParallel(ctx, 1)

	for day := 2; day <= len(snapshot.Days); day++ {
		if o.halted(ctx) {
			return
		}
		o.fillDaySequential(ctx, day)
	}
}

type fillTarget struct {
	idx  int
	kind itinerary.ItemKind
}

// targetsFor lists the day's fillable slots in fixed kind order. Only the
// first item of each kind is targeted; skeleton days carry at most one.
func targetsFor(day *itinerary.Day) []fillTarget {
	var targets []fillTarget
	for _, kind := range fillOrder {
		for idx, item := range day.Items {
			if item.Kind == kind {
				targets = append(targets, fillTarget{idx: idx, kind: kind})
				break
			}
		}
	}
	return targets
}

// areaFor resolves the day's geographic scope: the visit item's title wins,
// then the day title, then a generic label.
func areaFor(day *itinerary.Day) string {
	for _, item := range day.Items {
		if item.Kind == itinerary.KindVisit && strings.TrimSpace(item.Title) != "" {
			return strings.TrimSpace(item.Title)
		}
	}
	if day.Title != nil && strings.TrimSpace(*day.Title) != "" {
		return strings.TrimSpace(*day.Title)
	}
	return defaultAreaTitle
}

// previousVisits joins the visit/food titles of all days strictly before
// dayIndex, the avoidance input for repeat and partial-name collisions.
func previousVisits(it *itinerary.Itinerary, dayIndex int) string {
	var titles []string
	for _, d := range it.Days {
		if d.DayIndex >= dayIndex {
			continue
		}
		for _, item := range d.Items {
			if item.Kind != itinerary.KindVisit && item.Kind != itinerary.KindFood {
				continue
			}
			if t := strings.TrimSpace(item.Title); t != "" {
				titles = append(titles, t)
			}
		}
	}
	return strings.Join(titles, ", ")
}

func neighbourTitle(day *itinerary.Day, idx int) *string {
	if idx < 0 || idx >= len(day.Items) {
		return nil
	}
	t := day.Items[idx].Title
	if strings.TrimSpace(t) == "" {
		return nil
	}
	return &t
}

func (o *Orchestrator) buildRequest(snapshot *itinerary.Itinerary, day *itinerary.Day, target fillTarget) generator.FillRequest {
	return generator.FillRequest{
		DayIndex:        day.DayIndex,
		Kind:            target.kind,
		AreaTitle:       areaFor(day),
		DepartLabel:     o.hints.DepartLabel,
		OutlineTitle:    day.Items[target.idx].Title,
		PrevTitle:       neighbourTitle(day, target.idx-1),
		NextTitle:       neighbourTitle(day, target.idx+1),
		DestinationHint: o.hints.DestinationHint,
		Optional:        o.hints.Optional,
		PreviousVisits:  previousVisits(snapshot, day.DayIndex),
		TripDays:        len(snapshot.Days),
	}
}

func (o *Orchestrator) fillOne(ctx context.Context, req generator.FillRequest, target fillTarget) {
	// Detached timeout context: a user Stop must not abort in-flight calls.
	fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.fillTimeout)
	defer cancel()

	item, err := o.filler.Fill(fillCtx, req)
	if err != nil {
		o.addWarning(fmt.Sprintf("Day%d %sの詳細生成に失敗: %v", req.DayIndex, req.Kind, err))
		return
	}
	o.merge(req.DayIndex, target.idx, item)
}

func (o *Orchestrator) fillDayParallel(ctx context.Context, dayIndex int) {
	snapshot := o.Snapshot()
	day := snapshot.FindDay(dayIndex)
	if day == nil {
		return
	}

	var wg sync.WaitGroup
	for _, target := range targetsFor(day) {
		req := o.buildRequest(snapshot, day, target)
		wg.Add(1)
		go func(req generator.FillRequest, target fillTarget) {
			defer wg.Done()
			o.fillOne(ctx, req, target)
		}(req, target)
	}
	wg.Wait()
}

func (o *Orchestrator) fillDaySequential(ctx context.Context, dayIndex int) {
	// Targets are fixed up front; the request itself is rebuilt from the
	// latest snapshot before each call so the area and avoidance data see
	// every merge that has landed, including earlier kinds of this day.
	base := o.Snapshot()
	baseDay := base.FindDay(dayIndex)
	if baseDay == nil {
		return
	}

	for _, target := range targetsFor(baseDay) {
		if o.halted(ctx) {
			return
		}
		o.setProgress(Progress{Running: true, CurrentDay: dayIndex, CurrentKind: target.kind})

		snapshot := o.Snapshot()
		day := snapshot.FindDay(dayIndex)
		if day == nil || target.idx >= len(day.Items) {
			continue
		}
		o.fillOne(ctx, o.buildRequest(snapshot, day, target), target)
	}
}

func (o *Orchestrator) addWarning(msg string) {
	o.mu.Lock()
	o.warnings = append(o.warnings, msg)
	o.mu.Unlock()
}

// merge lands one fill result: deep-copy the latest state, overwrite the
// (day, index) slot kind-preservingly, substitute the deterministic fallback
// title if the model's is blank, promote the visit title to an empty day
// title, recompute budgets, then swap the copy in.
func (o *Orchestrator) merge(dayIndex, itemIdx int, filled itinerary.Item) {
	o.mu.Lock()
	defer o.mu.Unlock()

	cp := o.it.Clone()
	day := cp.FindDay(dayIndex)
	if day == nil || itemIdx < 0 || itemIdx >= len(day.Items) {
		return
	}
	cur := day.Items[itemIdx]

	merged := filled
	merged.Kind = cur.Kind
	if merged.Title == "" {
		merged.Title = itinerary.FallbackTitle(
			cur.Kind,
			areaFor(day),
			neighbourTitle(day, itemIdx-1),
			neighbourTitle(day, itemIdx+1),
		)
	}
	day.Items[itemIdx] = merged

	if cur.Kind == itinerary.KindVisit && (day.Title == nil || strings.TrimSpace(*day.Title) == "") {
		title := merged.Title
		day.Title = &title
	}

	cp.RecomputeBudgets()
	o.it = cp
}
