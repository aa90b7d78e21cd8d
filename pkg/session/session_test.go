package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/entities"
)

// stubBackend records every call and hands out configurable IDs. Create calls
// can be made to block or fail to exercise the drain's failure paths.
type stubBackend struct {
	mu sync.Mutex

	nextItemID int64
	nextAnnID  int64

	createdItems []entities.WorkItem
	updatedItems []int64
	deletedItems []int64
	createdAnns  []entities.WorkAnnotation
	updatedAnns  []int64
	deletedAnns  []int64

	failCreateAnnotation error
	blockCreateItem      chan struct{}

	completeCalls  int
	abandonCalls   int
	heartbeatCalls int
	nextStepRes    *domain.NextStepResponse
	resetRes       *domain.ResetResponse
}

func (b *stubBackend) FetchSession(ctx context.Context, workLogID int64) (*domain.ValidationSessionSnapshot, error) {
	return nil, errors.New("not used in tests")
}

func (b *stubBackend) CreateItem(ctx context.Context, item *entities.WorkItem) (int64, error) {
	if b.blockCreateItem != nil {
		<-b.blockCreateItem
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextItemID++
	b.createdItems = append(b.createdItems, *item)
	return b.nextItemID, nil
}

func (b *stubBackend) UpdateItem(ctx context.Context, item *entities.WorkItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updatedItems = append(b.updatedItems, item.ID)
	return nil
}

func (b *stubBackend) DeleteItem(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletedItems = append(b.deletedItems, id)
	return nil
}

func (b *stubBackend) CreateAnnotation(ctx context.Context, a *entities.WorkAnnotation) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failCreateAnnotation != nil {
		return 0, b.failCreateAnnotation
	}
	b.nextAnnID++
	b.createdAnns = append(b.createdAnns, *a)
	return b.nextAnnID, nil
}

func (b *stubBackend) UpdateAnnotation(ctx context.Context, a *entities.WorkAnnotation) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updatedAnns = append(b.updatedAnns, a.ID)
	return nil
}

func (b *stubBackend) DeleteAnnotation(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletedAnns = append(b.deletedAnns, id)
	return nil
}

func (b *stubBackend) Complete(ctx context.Context, workLogID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.completeCalls++
	return nil
}

func (b *stubBackend) Abandon(ctx context.Context, workLogID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.abandonCalls++
	return nil
}

func (b *stubBackend) NextStep(ctx context.Context, workLogID int64, skip bool) (*domain.NextStepResponse, error) {
	if b.nextStepRes != nil {
		return b.nextStepRes, nil
	}
	return &domain.NextStepResponse{NewStepIndex: 1}, nil
}

func (b *stubBackend) Reset(ctx context.Context, workLogID int64) (*domain.ResetResponse, error) {
	if b.resetRes != nil {
		return b.resetRes, nil
	}
	return &domain.ResetResponse{}, nil
}

func (b *stubBackend) Heartbeat(ctx context.Context, workLogID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.heartbeatCalls++
	return nil
}

func (b *stubBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.createdItems) + len(b.updatedItems) + len(b.deletedItems) +
		len(b.createdAnns) + len(b.updatedAnns) + len(b.deletedAnns)
}

func testSnapshot() *domain.ValidationSessionSnapshot {
	return &domain.ValidationSessionSnapshot{
		WorkLog: &entities.ValidationWorkLog{
			ID:            7,
			RecognitionID: 100,
			Status:        domain.WorkLogStatusActive,
			ValidationSteps: []entities.ValidationStep{
				{Type: domain.StepFoodValidation, Status: domain.StepStatusInProgress},
				{Type: domain.StepPlateValidation, Status: domain.StepStatusPending},
			},
		},
		Recognition: &entities.Recognition{ID: 100},
		Images: []entities.Image{
			{ID: 1, RecognitionID: 100, CameraNumber: 1, Width: 1000, Height: 800},
		},
	}
}

func newTestSession(t *testing.T, backend Backend, cfg Config) *ValidationSession {
	t.Helper()
	return NewFromSnapshot(backend, testSnapshot(), cfg)
}

func TestCreateItemAllocatesTemporaryID(t *testing.T) {
	s := newTestSession(t, &stubBackend{}, Config{})

	first := s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypeFood})
	require.NotNil(t, first)
	assert.Negative(t, first.ID)
	assert.Equal(t, 1, first.Quantity)
	assert.True(t, first.IsModified)
	assert.Equal(t, int64(7), first.WorkLogID)

	second := s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypePlate})
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID, "temporary IDs must not collide")
	assert.True(t, s.HasUnsavedChanges())
}

// P1: an update to a pending creation folds into the created bucket.
func TestUpdateFoldsIntoPendingCreate(t *testing.T) {
	s := newTestSession(t, &stubBackend{}, Config{})

	item := s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypeFood})
	require.NotNil(t, item)

	qty := 3
	require.NoError(t, s.UpdateItem(item.ID, domain.WorkItemPatch{Quantity: &qty}))

	assert.Len(t, s.ledger.createdItems, 1)
	assert.Empty(t, s.ledger.updatedItems)
	assert.Equal(t, 3, s.ledger.createdItems[0].Quantity, "patch merged into the pending creation")
}

// P2: deleting a pending creation leaves an empty ledger.
func TestDeleteOfPendingCreateIsNetZero(t *testing.T) {
	s := newTestSession(t, &stubBackend{}, Config{})

	item := s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypeBuzzer})
	require.NotNil(t, item)
	require.NoError(t, s.DeleteItem(item.ID))

	assert.Empty(t, s.Items())
	assert.False(t, s.HasUnsavedChanges())
	assert.Empty(t, s.ledger.deletedItemIDs)
}

// P3: deleting an item cascades its annotations out of the live slice and
// every ledger bucket.
func TestDeleteItemCascadesAnnotations(t *testing.T) {
	snap := testSnapshot()
	snap.Items = []entities.WorkItem{{ID: 10, WorkLogID: 7, Type: domain.ItemTypeFood, Quantity: 1}}
	snap.Annotations = []entities.WorkAnnotation{
		{ID: 20, WorkLogID: 7, WorkItemID: 10, ImageID: 1, BBox: entities.BBox{X: 1, Y: 1, W: 5, H: 5}},
	}
	s := NewFromSnapshot(&stubBackend{}, snap, Config{})

	// one locally drawn box and one pending edit on the persisted box
	drawn := s.CreateAnnotation(domain.CreateAnnotationRequest{
		WorkItemID: 10, ImageID: 1, BBox: entities.BBox{X: 2, Y: 2, W: 4, H: 4},
	})
	require.NotNil(t, drawn)
	occluded := true
	require.NoError(t, s.UpdateAnnotation(20, domain.AnnotationPatch{IsOccluded: &occluded}))

	require.NoError(t, s.DeleteItem(10))

	assert.Empty(t, s.Annotations())
	assert.Empty(t, s.ledger.createdAnnotations)
	assert.Empty(t, s.ledger.updatedAnnotations)
	assert.Empty(t, s.ledger.deletedAnnotationIDs, "server cascade owns persisted boxes of a deleted item")
	assert.Equal(t, []int64{10}, s.ledger.deletedItemIDs)
}

// P4: the dirty flag tracks each of the six buckets.
func TestHasUnsavedChangesPerMutation(t *testing.T) {
	baseline := func() (*ValidationSession, *stubBackend) {
		snap := testSnapshot()
		snap.Items = []entities.WorkItem{{ID: 10, WorkLogID: 7, Type: domain.ItemTypeFood, Quantity: 1}}
		snap.Annotations = []entities.WorkAnnotation{
			{ID: 20, WorkLogID: 7, WorkItemID: 10, ImageID: 1, BBox: entities.BBox{W: 5, H: 5}},
		}
		b := &stubBackend{}
		return NewFromSnapshot(b, snap, Config{}), b
	}

	mutations := map[string]func(s *ValidationSession){
		"create item": func(s *ValidationSession) {
			s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypeOther})
		},
		"update item": func(s *ValidationSession) {
			qty := 2
			_ = s.UpdateItem(10, domain.WorkItemPatch{Quantity: &qty})
		},
		"delete item": func(s *ValidationSession) {
			_ = s.DeleteItem(10)
		},
		"create annotation": func(s *ValidationSession) {
			s.CreateAnnotation(domain.CreateAnnotationRequest{WorkItemID: 10, ImageID: 1, BBox: entities.BBox{W: 1, H: 1}})
		},
		"update annotation": func(s *ValidationSession) {
			occ := true
			_ = s.UpdateAnnotation(20, domain.AnnotationPatch{IsOccluded: &occ})
		},
		"delete annotation": func(s *ValidationSession) {
			_ = s.DeleteAnnotation(20)
		},
	}

	for name, mutate := range mutations {
		s, _ := baseline()
		assert.False(t, s.HasUnsavedChanges(), "%s: pristine session must be clean", name)
		mutate(s)
		assert.True(t, s.HasUnsavedChanges(), "%s: ledger must be dirty", name)
		require.NoError(t, s.SaveAllChanges(context.Background()), name)
		assert.False(t, s.HasUnsavedChanges(), "%s: drain must clear the ledger", name)
	}
}

// P5: the drain remaps temporary item IDs into annotations before they are sent.
func TestSaveRemapsTemporaryIDs(t *testing.T) {
	b := &stubBackend{nextItemID: 916, nextAnnID: 5000}
	s := newTestSession(t, b, Config{})

	item := s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypeFood})
	require.NotNil(t, item)
	tempID := item.ID

	ann := s.CreateAnnotation(domain.CreateAnnotationRequest{
		WorkItemID: tempID, ImageID: 1, BBox: entities.BBox{X: 10, Y: 10, W: 50, H: 50},
	})
	require.NotNil(t, ann)

	require.NoError(t, s.SaveAllChanges(context.Background()))

	assert.Equal(t, int64(917), item.ID)
	assert.Equal(t, int64(5001), ann.ID)
	assert.Equal(t, int64(917), ann.WorkItemID)
	assert.False(t, ann.IsTemp)
	assert.False(t, s.HasUnsavedChanges())

	require.Len(t, b.createdAnns, 1)
	assert.Equal(t, int64(917), b.createdAnns[0].WorkItemID, "wire payload must carry the remapped owner")
}

// P6: identical creates inside the window collapse; outside it they do not.
func TestDuplicateCreateSuppression(t *testing.T) {
	s := newTestSession(t, &stubBackend{}, Config{})
	now := time.Now()
	s.now = func() time.Time { return now }

	meta := map[string]any{"color": "red", "label": "buzzer 4"}
	first := s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypeBuzzer, Metadata: meta})
	require.NotNil(t, first)

	now = now.Add(2 * time.Second)
	dup := s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypeBuzzer, Metadata: map[string]any{"label": "buzzer 4", "color": "red"}})
	assert.Nil(t, dup, "identical type+metadata inside the window is a no-op")
	assert.Len(t, s.Items(), 1)
	assert.Len(t, s.ledger.createdItems, 1)

	now = now.Add(2 * time.Second) // 4s after the first create
	again := s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypeBuzzer, Metadata: meta})
	assert.NotNil(t, again, "outside the window the same payload is a new item")
	assert.Len(t, s.Items(), 2)
}

// P7: a read-only session ignores every mutation.
func TestReadOnlySessionRejectsMutations(t *testing.T) {
	snap := testSnapshot()
	snap.Items = []entities.WorkItem{{ID: 10, WorkLogID: 7, Type: domain.ItemTypeFood, Quantity: 1}}
	snap.Annotations = []entities.WorkAnnotation{
		{ID: 20, WorkLogID: 7, WorkItemID: 10, ImageID: 1, BBox: entities.BBox{W: 5, H: 5}},
	}
	s := NewFromSnapshot(&stubBackend{}, snap, Config{ReadOnly: true})

	assert.Nil(t, s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypeFood}))
	qty := 9
	assert.NoError(t, s.UpdateItem(10, domain.WorkItemPatch{Quantity: &qty}))
	assert.NoError(t, s.DeleteItem(10))
	assert.Nil(t, s.CreateAnnotation(domain.CreateAnnotationRequest{WorkItemID: 10, ImageID: 1}))
	occ := true
	assert.NoError(t, s.UpdateAnnotation(20, domain.AnnotationPatch{IsOccluded: &occ}))
	assert.NoError(t, s.DeleteAnnotation(20))

	assert.Len(t, s.Items(), 1)
	assert.Len(t, s.Annotations(), 1)
	assert.Equal(t, 1, s.Items()[0].Quantity, "no patch may land on a read-only session")
	assert.False(t, s.Annotations()[0].IsOccluded)
	assert.False(t, s.HasUnsavedChanges())
}

// P8: a second SaveAllChanges while one is in flight issues no extra requests.
func TestReentrantSaveIssuesNoExtraRequests(t *testing.T) {
	b := &stubBackend{blockCreateItem: make(chan struct{})}
	s := newTestSession(t, b, Config{})

	require.NotNil(t, s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypeFood}))

	firstDone := make(chan error, 1)
	go func() { firstDone <- s.SaveAllChanges(context.Background()) }()

	// wait until the first drain is parked inside the backend call
	require.Eventually(t, func() bool { return s.saving.Load() }, time.Second, time.Millisecond)

	require.NoError(t, s.SaveAllChanges(context.Background()), "re-entrant call is dropped, not queued")
	assert.Equal(t, 0, b.callCount(), "second call must not reach the backend")

	close(b.blockCreateItem)
	require.NoError(t, <-firstDone)
	assert.Equal(t, 1, b.callCount())
	assert.False(t, s.HasUnsavedChanges())
}

// The end-to-end scenario from the workflow: draw a plate, box it, save.
func TestCreateAnnotateSaveScenario(t *testing.T) {
	b := &stubBackend{nextItemID: 7, nextAnnID: 54}
	s := newTestSession(t, b, Config{})

	item := s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypePlate})
	require.NotNil(t, item)
	assert.Negative(t, item.ID)
	assert.Equal(t, domain.ItemTypePlate, item.Type)
	assert.Equal(t, 1, item.Quantity)
	assert.True(t, item.IsModified)
	assert.True(t, s.HasUnsavedChanges())

	ann := s.CreateAnnotation(domain.CreateAnnotationRequest{
		ImageID: 1, WorkItemID: item.ID, BBox: entities.BBox{X: 10, Y: 10, W: 50, H: 50},
	})
	require.NotNil(t, ann)
	assert.Negative(t, ann.ID)
	assert.Equal(t, item.ID, ann.WorkItemID)

	require.NoError(t, s.SaveAllChanges(context.Background()))

	items := s.Items()
	anns := s.Annotations()
	require.Len(t, items, 1)
	require.Len(t, anns, 1)
	assert.Equal(t, int64(8), items[0].ID)
	assert.Equal(t, int64(55), anns[0].ID)
	assert.Equal(t, int64(8), anns[0].WorkItemID)
	assert.False(t, s.HasUnsavedChanges())
}

func TestFailedDrainKeepsUndrainedEntries(t *testing.T) {
	b := &stubBackend{failCreateAnnotation: errors.New("boom")}
	s := newTestSession(t, b, Config{})

	item := s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypeFood})
	require.NotNil(t, item)
	ann := s.CreateAnnotation(domain.CreateAnnotationRequest{
		WorkItemID: item.ID, ImageID: 1, BBox: entities.BBox{W: 5, H: 5},
	})
	require.NotNil(t, ann)

	err := s.SaveAllChanges(context.Background())
	require.Error(t, err)
	assert.NotEmpty(t, s.LastError())

	// the item create was confirmed and left its bucket; the annotation stays
	assert.Positive(t, item.ID)
	assert.Empty(t, s.ledger.createdItems)
	assert.Len(t, s.ledger.createdAnnotations, 1)
	assert.True(t, s.HasUnsavedChanges())

	// a retry only replays what is still pending
	b.mu.Lock()
	b.failCreateAnnotation = nil
	b.mu.Unlock()
	require.NoError(t, s.SaveAllChanges(context.Background()))
	assert.False(t, s.HasUnsavedChanges())
	assert.Empty(t, s.LastError())
	assert.Len(t, b.createdItems, 1, "confirmed creates are never re-sent")
}

func TestResetToInitialReplacesStateWholesale(t *testing.T) {
	b := &stubBackend{resetRes: &domain.ResetResponse{
		Items: []entities.WorkItem{{ID: 10, WorkLogID: 7, Type: domain.ItemTypeFood, Quantity: 1}},
		Annotations: []entities.WorkAnnotation{
			{ID: 20, WorkLogID: 7, WorkItemID: 10, ImageID: 1, BBox: entities.BBox{W: 3, H: 3}},
		},
	}}
	s := newTestSession(t, b, Config{})

	require.NotNil(t, s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypeOther}))
	s.SelectItem(99)

	require.NoError(t, s.ResetToInitial(context.Background()))

	require.Len(t, s.Items(), 1)
	assert.Equal(t, int64(10), s.Items()[0].ID)
	require.Len(t, s.Annotations(), 1)
	assert.False(t, s.HasUnsavedChanges())
	assert.Zero(t, s.SelectedItemID())
}

func TestNextStepAdvancesInPlace(t *testing.T) {
	b := &stubBackend{nextStepRes: &domain.NextStepResponse{
		NewStepIndex: 1,
		CurrentStep:  &entities.ValidationStep{Type: domain.StepPlateValidation, Status: domain.StepStatusInProgress},
	}}
	s := newTestSession(t, b, Config{})

	require.NotNil(t, s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypeFood}))
	require.NoError(t, s.NextStep(context.Background()))

	wl := s.WorkLog()
	assert.Equal(t, 1, wl.CurrentStepIndex)
	assert.Equal(t, domain.StepStatusCompleted, wl.ValidationSteps[0].Status)
	assert.Equal(t, domain.StepStatusInProgress, wl.ValidationSteps[1].Status)
	assert.False(t, s.HasUnsavedChanges(), "pending edits are flushed before the transition")
}

func TestSkipStepMarksStepSkipped(t *testing.T) {
	b := &stubBackend{nextStepRes: &domain.NextStepResponse{
		NewStepIndex: 1,
		CurrentStep:  &entities.ValidationStep{Type: domain.StepPlateValidation, Status: domain.StepStatusInProgress},
	}}
	s := newTestSession(t, b, Config{})

	require.NoError(t, s.SkipStep(context.Background()))
	assert.Equal(t, domain.StepStatusSkipped, s.WorkLog().ValidationSteps[0].Status)
}

func TestCompleteValidationGuards(t *testing.T) {
	s := newTestSession(t, &stubBackend{}, Config{})
	assert.ErrorIs(t, s.CompleteValidation(context.Background()), domain.ErrNotLastStep)
}

func TestCompleteValidationOnLastStep(t *testing.T) {
	b := &stubBackend{}
	snap := testSnapshot()
	snap.WorkLog.CurrentStepIndex = 1 // plate validation, the last step
	snap.Items = []entities.WorkItem{{ID: 10, WorkLogID: 7, Type: domain.ItemTypePlate, Quantity: 1}}
	snap.Annotations = []entities.WorkAnnotation{
		{ID: 20, WorkLogID: 7, WorkItemID: 10, ImageID: 1, BBox: entities.BBox{X: 1, Y: 1, W: 10, H: 10}},
	}
	s := NewFromSnapshot(b, snap, Config{})

	require.NoError(t, s.CompleteValidation(context.Background()))
	assert.Equal(t, domain.WorkLogStatusCompleted, s.WorkLog().Status)
	assert.Equal(t, 1, b.completeCalls)

	assert.ErrorIs(t, s.CompleteValidation(context.Background()), domain.ErrWorkLogTerminal)
}

func TestCompleteValidationBlockedByEngine(t *testing.T) {
	b := &stubBackend{}
	snap := testSnapshot()
	snap.WorkLog.CurrentStepIndex = 1
	snap.Items = []entities.WorkItem{{ID: 10, WorkLogID: 7, Type: domain.ItemTypePlate, Quantity: 1}}
	// no annotations: the plate has no box, the engine must block completion
	s := NewFromSnapshot(b, snap, Config{})

	assert.ErrorIs(t, s.CompleteValidation(context.Background()), domain.ErrValidationIncomplete)
	assert.Equal(t, 0, b.completeCalls)
}

func TestAbandonValidationFlushesAndReleases(t *testing.T) {
	b := &stubBackend{}
	s := newTestSession(t, b, Config{})

	require.NotNil(t, s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypeFood}))
	require.NoError(t, s.AbandonValidation(context.Background()))

	assert.Equal(t, domain.WorkLogStatusAbandoned, s.WorkLog().Status)
	assert.Equal(t, 1, b.abandonCalls)
	assert.False(t, s.HasUnsavedChanges())
}

func TestSaveAllChangesNoopsWhenClean(t *testing.T) {
	b := &stubBackend{}
	s := newTestSession(t, b, Config{})
	require.NoError(t, s.SaveAllChanges(context.Background()))
	assert.Equal(t, 0, b.callCount())
}

func TestObserversFireOnMutation(t *testing.T) {
	s := newTestSession(t, &stubBackend{}, Config{})
	var fired int
	s.Subscribe(func() { fired++ })

	s.CreateItem(domain.CreateWorkItemRequest{Type: domain.ItemTypeFood})
	assert.Equal(t, 1, fired)
}
