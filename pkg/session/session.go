// Package session holds the in-memory state of one validation work assignment:
// its items, its bounding boxes, and a ledger of local edits not yet persisted.
// Mutations are synchronous and optimistic; the network is only touched by the
// explicit drain (SaveAllChanges), the workflow transitions and the lifecycle
// guard. The session is written for a single interactive writer; the internal
// lock only exists so the heartbeat goroutine can run alongside it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gowebpki/jcs"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/entities"
)

var (
	// ErrSaveInFlight is returned by workflow transitions that need a flush
	// while another drain is still outstanding.
	ErrSaveInFlight = errors.New("a save is already in flight")
)

// Config tunes the session. The windows are placeholders carried over from the
// original tool, not tuned values; override them freely.
type Config struct {
	ReadOnly bool

	// DuplicateWindow suppresses a repeated createItem with identical type and
	// metadata inside this window (double-click guard). Default 3s.
	DuplicateWindow time.Duration

	// HeartbeatInterval is how often the lifecycle guard refreshes the
	// assignment lease. Default 5m.
	HeartbeatInterval time.Duration

	// ExpiryCheckInterval is how often the guard re-evaluates idleness.
	// Default 1m.
	ExpiryCheckInterval time.Duration

	// IdleTimeout flags the session expired this long after the last confirmed
	// activity. A UX signal only; the backend is the arbiter of the lease.
	// Default 30m.
	IdleTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.DuplicateWindow <= 0 {
		c.DuplicateWindow = 3 * time.Second
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 5 * time.Minute
	}
	if c.ExpiryCheckInterval <= 0 {
		c.ExpiryCheckInterval = time.Minute
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 30 * time.Minute
	}
	return c
}

// ValidationSession is the aggregate root of one work assignment. Construct it
// with Load (or NewFromSnapshot) and discard it after completion, abandonment
// or navigation away.
type ValidationSession struct {
	backend Backend
	cfg     Config
	now     func() time.Time
	rng     *rand.Rand

	mu sync.Mutex

	workLog           *entities.ValidationWorkLog
	recognition       *entities.Recognition
	images            []entities.Image
	recipe            *entities.Recipe
	recipeLines       []entities.RecipeLine
	recipeLineOptions []entities.RecipeLineOption
	activeMenu        []entities.MenuEntry

	items       []*entities.WorkItem
	annotations []*entities.WorkAnnotation
	ledger      *changeLedger

	tempItemSeq int64

	lastCreatedType string
	lastCreatedMeta string
	lastCreatedAt   time.Time

	selectedItemID int64
	lastError      string
	lastActivity   time.Time
	expired        bool

	saving    atomic.Bool
	observers []func()
}

// Load fetches the full session snapshot for a work log and builds the session.
func Load(ctx context.Context, backend Backend, workLogID int64, cfg Config) (*ValidationSession, error) {
	snap, err := backend.FetchSession(ctx, workLogID)
	if err != nil {
		return nil, fmt.Errorf("load validation session %d: %w", workLogID, err)
	}
	return NewFromSnapshot(backend, snap, cfg), nil
}

// NewFromSnapshot builds a session from an already-fetched snapshot.
func NewFromSnapshot(backend Backend, snap *domain.ValidationSessionSnapshot, cfg Config) *ValidationSession {
	s := &ValidationSession{
		backend:           backend,
		cfg:               cfg.withDefaults(),
		now:               time.Now,
		rng:               rand.New(rand.NewSource(time.Now().UnixNano())),
		workLog:           snap.WorkLog,
		recognition:       snap.Recognition,
		images:            snap.Images,
		recipe:            snap.Recipe,
		recipeLines:       snap.RecipeLines,
		recipeLineOptions: snap.RecipeLineOptions,
		activeMenu:        snap.ActiveMenu,
		ledger:            newChangeLedger(),
	}
	s.items = make([]*entities.WorkItem, 0, len(snap.Items))
	for i := range snap.Items {
		it := snap.Items[i]
		s.items = append(s.items, &it)
	}
	s.annotations = make([]*entities.WorkAnnotation, 0, len(snap.Annotations))
	for i := range snap.Annotations {
		a := snap.Annotations[i]
		s.annotations = append(s.annotations, &a)
	}
	s.lastActivity = s.now()
	return s
}

// Subscribe registers a callback invoked after every state change, so a UI can
// re-render. Callbacks run outside the session lock.
func (s *ValidationSession) Subscribe(fn func()) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *ValidationSession) notify() {
	s.mu.Lock()
	obs := make([]func(), len(s.observers))
	copy(obs, s.observers)
	s.mu.Unlock()
	for _, fn := range obs {
		fn()
	}
}

func (s *ValidationSession) ReadOnly() bool { return s.cfg.ReadOnly }

func (s *ValidationSession) WorkLogID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workLog == nil {
		return 0
	}
	return s.workLog.ID
}

// WorkLog returns the live work log descriptor.
func (s *ValidationSession) WorkLog() *entities.ValidationWorkLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workLog
}

// Items returns the live item pointers in insertion order.
func (s *ValidationSession) Items() []*entities.WorkItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entities.WorkItem, len(s.items))
	copy(out, s.items)
	return out
}

// Annotations returns the live annotation pointers in insertion order.
func (s *ValidationSession) Annotations() []*entities.WorkAnnotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entities.WorkAnnotation, len(s.annotations))
	copy(out, s.annotations)
	return out
}

func (s *ValidationSession) Images() []entities.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.images
}

func (s *ValidationSession) RecipeLines() []entities.RecipeLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recipeLines
}

func (s *ValidationSession) ActiveMenu() []entities.MenuEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeMenu
}

// SelectItem records which item the editor has focused; 0 clears the selection.
func (s *ValidationSession) SelectItem(id int64) {
	s.mu.Lock()
	s.selectedItemID = id
	s.mu.Unlock()
	s.notify()
}

func (s *ValidationSession) SelectedItemID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedItemID
}

// LastError returns the message of the most recent failed drain, cleared by the
// next successful one.
func (s *ValidationSession) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Expired reports the client-side idleness flag maintained by the guard.
func (s *ValidationSession) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expired
}

// HasUnsavedChanges is true iff any ledger bucket is non-empty.
func (s *ValidationSession) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.ledger.isEmpty()
}

func (s *ValidationSession) markActivityLocked() {
	s.lastActivity = s.now()
	s.expired = false
}

func canonicalMetadata(meta map[string]any) string {
	if len(meta) == 0 {
		return ""
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		return string(raw)
	}
	return string(canon)
}

// CreateItem adds a tray object with a temporary negative ID and records it in
// the created-items bucket. Returns nil without error when the session is
// read-only or the call is a duplicate within the suppression window.
func (s *ValidationSession) CreateItem(req domain.CreateWorkItemRequest) *entities.WorkItem {
	s.mu.Lock()
	if s.cfg.ReadOnly {
		s.mu.Unlock()
		log.Printf("[session] createItem ignored: session is read-only")
		return nil
	}

	meta := canonicalMetadata(req.Metadata)
	now := s.now()
	if req.Type == s.lastCreatedType && meta == s.lastCreatedMeta &&
		now.Sub(s.lastCreatedAt) < s.cfg.DuplicateWindow {
		s.mu.Unlock()
		log.Printf("[session] createItem ignored: duplicate %s within %s", req.Type, s.cfg.DuplicateWindow)
		return nil
	}

	s.tempItemSeq--
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	workLogID := req.WorkLogID
	recognitionID := req.RecognitionID
	if s.workLog != nil {
		workLogID = s.workLog.ID
		recognitionID = s.workLog.RecognitionID
	}
	item := &entities.WorkItem{
		ID:                s.tempItemSeq,
		WorkLogID:         workLogID,
		RecognitionID:     recognitionID,
		Type:              req.Type,
		RecipeLineID:      req.RecipeLineID,
		Quantity:          quantity,
		BottleOrientation: req.BottleOrientation,
		Metadata:          req.Metadata,
		IsModified:        true,
	}
	item.CreatedAt = now
	item.UpdatedAt = now

	s.items = append(s.items, item)
	s.ledger.createdItems = append(s.ledger.createdItems, item)
	s.lastCreatedType = req.Type
	s.lastCreatedMeta = meta
	s.lastCreatedAt = now
	s.mu.Unlock()
	s.notify()
	return item
}

func (s *ValidationSession) findItemLocked(id int64) *entities.WorkItem {
	for _, it := range s.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// UpdateItem merges the patch into the item. Edits to a pending creation stay
// in the created-items bucket; everything else is routed to updated-items.
func (s *ValidationSession) UpdateItem(id int64, patch domain.WorkItemPatch) error {
	s.mu.Lock()
	if s.cfg.ReadOnly {
		s.mu.Unlock()
		log.Printf("[session] updateItem ignored: session is read-only")
		return nil
	}
	item := s.findItemLocked(id)
	if item == nil {
		s.mu.Unlock()
		return domain.ErrWorkItemNotFound
	}
	patch.Apply(item)
	item.IsModified = true
	item.UpdatedAt = s.now()
	if !s.ledger.hasCreatedItem(id) {
		s.ledger.updatedItems[id] = item
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// DeleteItem removes the item and cascades removal of every annotation that
// references it. Deleting a pending creation is net-zero for the backend.
func (s *ValidationSession) DeleteItem(id int64) error {
	s.mu.Lock()
	if s.cfg.ReadOnly {
		s.mu.Unlock()
		log.Printf("[session] deleteItem ignored: session is read-only")
		return nil
	}
	idx := -1
	for i, it := range s.items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.ErrWorkItemNotFound
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)

	// Cascade: drop owned annotations from the live slice and from every
	// ledger bucket. Persisted ones are removed server-side by the item
	// delete's own cascade, so no delete-bucket entries are needed.
	kept := s.annotations[:0]
	for _, a := range s.annotations {
		if a.WorkItemID == id {
			s.ledger.purgeAnnotation(a.ID)
			continue
		}
		kept = append(kept, a)
	}
	s.annotations = kept

	if !s.ledger.dropCreatedItem(id) {
		delete(s.ledger.updatedItems, id)
		s.ledger.deletedItemIDs = append(s.ledger.deletedItemIDs, id)
	}
	if s.selectedItemID == id {
		s.selectedItemID = 0
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// CreateAnnotation adds a bounding box with a time-derived negative temporary
// ID, collision-resistant under rapid successive calls.
func (s *ValidationSession) CreateAnnotation(req domain.CreateAnnotationRequest) *entities.WorkAnnotation {
	s.mu.Lock()
	if s.cfg.ReadOnly {
		s.mu.Unlock()
		log.Printf("[session] createAnnotation ignored: session is read-only")
		return nil
	}
	now := s.now()
	id := -(now.UnixMilli()*1000 + s.rng.Int63n(1000))
	for s.findAnnotationLocked(id) != nil {
		id--
	}
	workLogID := req.WorkLogID
	if s.workLog != nil {
		workLogID = s.workLog.ID
	}
	ann := &entities.WorkAnnotation{
		ID:                  id,
		WorkLogID:           workLogID,
		WorkItemID:          req.WorkItemID,
		ImageID:             req.ImageID,
		InitialAnnotationID: req.InitialAnnotationID,
		BBox:                req.BBox,
		IsOccluded:          req.IsOccluded,
		OcclusionMetadata:   req.OcclusionMetadata,
		IsModified:          true,
		IsTemp:              true,
	}
	ann.CreatedAt = now
	ann.UpdatedAt = now

	s.annotations = append(s.annotations, ann)
	s.ledger.createdAnnotations = append(s.ledger.createdAnnotations, ann)
	s.mu.Unlock()
	s.notify()
	return ann
}

func (s *ValidationSession) findAnnotationLocked(id int64) *entities.WorkAnnotation {
	for _, a := range s.annotations {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// UpdateAnnotation merges the patch, folding edits to pending creations into
// the created-annotations bucket like UpdateItem does for items.
func (s *ValidationSession) UpdateAnnotation(id int64, patch domain.AnnotationPatch) error {
	s.mu.Lock()
	if s.cfg.ReadOnly {
		s.mu.Unlock()
		log.Printf("[session] updateAnnotation ignored: session is read-only")
		return nil
	}
	ann := s.findAnnotationLocked(id)
	if ann == nil {
		s.mu.Unlock()
		return domain.ErrAnnotationNotFound
	}
	patch.Apply(ann)
	ann.IsModified = true
	ann.UpdatedAt = s.now()
	if !s.ledger.hasCreatedAnnotation(id) {
		s.ledger.updatedAnnotations[id] = ann
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// DeleteAnnotation removes a single box. Annotations own no children, so there
// is nothing to cascade.
func (s *ValidationSession) DeleteAnnotation(id int64) error {
	s.mu.Lock()
	if s.cfg.ReadOnly {
		s.mu.Unlock()
		log.Printf("[session] deleteAnnotation ignored: session is read-only")
		return nil
	}
	idx := -1
	for i, a := range s.annotations {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.ErrAnnotationNotFound
	}
	s.annotations = append(s.annotations[:idx], s.annotations[idx+1:]...)
	if !s.ledger.dropCreatedAnnotation(id) {
		delete(s.ledger.updatedAnnotations, id)
		s.ledger.deletedAnnotationIDs = append(s.ledger.deletedAnnotationIDs, id)
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// SaveAllChanges drains the ledger in a fixed order: created items first (so
// their server IDs exist before anything references them), then item updates
// and deletes, then annotation creates/updates/deletes. Entries leave their
// bucket as the server confirms them, so a failed drain can simply be retried.
// A second call while a drain is in flight is dropped with a warning.
func (s *ValidationSession) SaveAllChanges(ctx context.Context) error {
	// The guard comes first so a re-entrant caller returns immediately
	// instead of parking on the lock held by the in-flight drain.
	if !s.saving.CompareAndSwap(false, true) {
		log.Printf("[session] saveAllChanges skipped: a save is already in flight")
		return nil
	}
	defer s.saving.Store(false)

	s.mu.Lock()
	if s.ledger.isEmpty() {
		s.mu.Unlock()
		return nil
	}
	err := s.drainLocked(ctx)
	s.mu.Unlock()
	s.notify()
	return err
}

func (s *ValidationSession) drainLocked(ctx context.Context) error {
	// (1) created items, building the temporary -> server ID map
	for len(s.ledger.createdItems) > 0 {
		it := s.ledger.createdItems[0]
		tempID := it.ID
		payload := *it
		payload.ID = 0
		newID, err := s.backend.CreateItem(ctx, &payload)
		if err != nil {
			return s.failSaveLocked("create item", err)
		}
		it.ID = newID
		it.IsModified = false
		for _, a := range s.annotations {
			if a.WorkItemID == tempID {
				a.WorkItemID = newID
			}
		}
		s.ledger.createdItems = s.ledger.createdItems[1:]
	}

	// (2) updated items
	for _, id := range sortedKeys(s.ledger.updatedItems) {
		it := s.ledger.updatedItems[id]
		if err := s.backend.UpdateItem(ctx, it); err != nil {
			return s.failSaveLocked("update item", err)
		}
		it.IsModified = false
		delete(s.ledger.updatedItems, id)
	}

	// (3) deleted items (server cascades their annotations)
	for len(s.ledger.deletedItemIDs) > 0 {
		id := s.ledger.deletedItemIDs[0]
		if err := s.backend.DeleteItem(ctx, id); err != nil {
			return s.failSaveLocked("delete item", err)
		}
		s.ledger.deletedItemIDs = s.ledger.deletedItemIDs[1:]
	}

	// (4) created annotations; owners were remapped in step 1
	for len(s.ledger.createdAnnotations) > 0 {
		a := s.ledger.createdAnnotations[0]
		if a.WorkItemID < 0 {
			return s.failSaveLocked("create annotation",
				fmt.Errorf("annotation %d references unsaved item %d", a.ID, a.WorkItemID))
		}
		payload := *a
		payload.ID = 0
		newID, err := s.backend.CreateAnnotation(ctx, &payload)
		if err != nil {
			return s.failSaveLocked("create annotation", err)
		}
		a.ID = newID
		a.IsTemp = false
		a.IsModified = false
		s.ledger.createdAnnotations = s.ledger.createdAnnotations[1:]
	}

	// (5) updated annotations
	for _, id := range sortedKeys(s.ledger.updatedAnnotations) {
		a := s.ledger.updatedAnnotations[id]
		if err := s.backend.UpdateAnnotation(ctx, a); err != nil {
			return s.failSaveLocked("update annotation", err)
		}
		a.IsModified = false
		delete(s.ledger.updatedAnnotations, id)
	}

	// (6) deleted annotations
	for len(s.ledger.deletedAnnotationIDs) > 0 {
		id := s.ledger.deletedAnnotationIDs[0]
		if err := s.backend.DeleteAnnotation(ctx, id); err != nil {
			return s.failSaveLocked("delete annotation", err)
		}
		s.ledger.deletedAnnotationIDs = s.ledger.deletedAnnotationIDs[1:]
	}

	s.ledger.reset()
	s.lastError = ""
	s.markActivityLocked()
	return nil
}

func (s *ValidationSession) failSaveLocked(op string, err error) error {
	wrapped := fmt.Errorf("save changes: %s: %w", op, err)
	s.lastError = wrapped.Error()
	log.Printf("[session] %v", wrapped)
	return wrapped
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// ResetToInitial discards every local edit by asking the backend for a fresh
// baseline snapshot. All-or-nothing: on failure the current state and ledger
// are left untouched.
func (s *ValidationSession) ResetToInitial(ctx context.Context) error {
	if s.cfg.ReadOnly {
		log.Printf("[session] resetToInitial ignored: session is read-only")
		return nil
	}
	res, err := s.backend.Reset(ctx, s.WorkLogID())
	if err != nil {
		return fmt.Errorf("reset to initial: %w", err)
	}

	s.mu.Lock()
	s.items = make([]*entities.WorkItem, 0, len(res.Items))
	for i := range res.Items {
		it := res.Items[i]
		s.items = append(s.items, &it)
	}
	s.annotations = make([]*entities.WorkAnnotation, 0, len(res.Annotations))
	for i := range res.Annotations {
		a := res.Annotations[i]
		s.annotations = append(s.annotations, &a)
	}
	s.ledger.reset()
	s.selectedItemID = 0
	s.lastError = ""
	s.markActivityLocked()
	s.mu.Unlock()
	s.notify()
	return nil
}

// flushPending saves outstanding edits ahead of a workflow transition.
func (s *ValidationSession) flushPending(ctx context.Context) error {
	if !s.HasUnsavedChanges() {
		return nil
	}
	if err := s.SaveAllChanges(ctx); err != nil {
		return err
	}
	// SaveAllChanges drops re-entrant calls; a still-dirty ledger here means
	// another drain held the guard.
	if s.HasUnsavedChanges() {
		return ErrSaveInFlight
	}
	return nil
}

// Validate recomputes the validation status for the active step.
func (s *ValidationSession) Validate() ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	stepType := ""
	if s.workLog != nil {
		if step := s.workLog.CurrentStep(); step != nil {
			stepType = step.Type
		}
	}
	return Validate(s.items, s.annotations, s.images, s.recipeLines, stepType)
}

// CompleteValidation finalizes the assignment. Only reachable from the last
// step and only when the validation engine reports a clean state; pending
// edits are flushed first.
func (s *ValidationSession) CompleteValidation(ctx context.Context) error {
	s.mu.Lock()
	if s.workLog == nil || s.workLog.Status == domain.WorkLogStatusCompleted ||
		s.workLog.Status == domain.WorkLogStatusAbandoned {
		s.mu.Unlock()
		return domain.ErrWorkLogTerminal
	}
	if !s.workLog.IsLastStep() {
		s.mu.Unlock()
		return domain.ErrNotLastStep
	}
	s.mu.Unlock()

	if res := s.Validate(); !res.CanComplete {
		return domain.ErrValidationIncomplete
	}
	if err := s.flushPending(ctx); err != nil {
		return err
	}
	if err := s.backend.Complete(ctx, s.WorkLogID()); err != nil {
		return fmt.Errorf("complete validation: %w", err)
	}

	s.mu.Lock()
	s.workLog.Status = domain.WorkLogStatusCompleted
	if step := s.workLog.CurrentStep(); step != nil {
		step.Status = domain.StepStatusCompleted
	}
	s.markActivityLocked()
	s.mu.Unlock()
	s.notify()
	return nil
}

// AbandonValidation releases the assignment back to the queue from any
// non-terminal state, flushing pending edits first so work is not lost.
func (s *ValidationSession) AbandonValidation(ctx context.Context) error {
	s.mu.Lock()
	if s.workLog == nil || s.workLog.Status == domain.WorkLogStatusCompleted ||
		s.workLog.Status == domain.WorkLogStatusAbandoned {
		s.mu.Unlock()
		return domain.ErrWorkLogTerminal
	}
	s.mu.Unlock()

	if err := s.flushPending(ctx); err != nil {
		return err
	}
	if err := s.backend.Abandon(ctx, s.WorkLogID()); err != nil {
		return fmt.Errorf("abandon validation: %w", err)
	}

	s.mu.Lock()
	s.workLog.Status = domain.WorkLogStatusAbandoned
	s.mu.Unlock()
	s.notify()
	return nil
}

// NextStep marks the current step completed and activates the following one,
// in place, without reloading the session. The backend owns the transition.
func (s *ValidationSession) NextStep(ctx context.Context) error {
	return s.advanceStep(ctx, false)
}

// SkipStep advances without requiring validation to pass, marking the current
// step skipped instead of completed.
func (s *ValidationSession) SkipStep(ctx context.Context) error {
	return s.advanceStep(ctx, true)
}

func (s *ValidationSession) advanceStep(ctx context.Context, skip bool) error {
	s.mu.Lock()
	if s.workLog == nil || s.workLog.Status == domain.WorkLogStatusCompleted ||
		s.workLog.Status == domain.WorkLogStatusAbandoned {
		s.mu.Unlock()
		return domain.ErrWorkLogTerminal
	}
	if s.workLog.CurrentStep() == nil {
		s.mu.Unlock()
		return domain.ErrNoStepsRemaining
	}
	s.mu.Unlock()

	if err := s.flushPending(ctx); err != nil {
		return err
	}
	res, err := s.backend.NextStep(ctx, s.WorkLogID(), skip)
	if err != nil {
		return fmt.Errorf("next step: %w", err)
	}

	s.mu.Lock()
	if step := s.workLog.CurrentStep(); step != nil {
		if skip {
			step.Status = domain.StepStatusSkipped
		} else {
			step.Status = domain.StepStatusCompleted
		}
	}
	if res.Completed || res.NewStepIndex < 0 {
		s.workLog.Status = domain.WorkLogStatusCompleted
	} else {
		s.workLog.CurrentStepIndex = res.NewStepIndex
		if step := s.workLog.CurrentStep(); step != nil {
			step.Status = domain.StepStatusInProgress
		}
	}
	s.markActivityLocked()
	s.mu.Unlock()
	s.notify()
	return nil
}
