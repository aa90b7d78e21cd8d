package session

import (
	"Tray-Validation-Backend/entities"
)

// changeLedger tracks local mutations not yet persisted to the backend. Six
// buckets, one per entity kind and operation. An entity lives in at most one
// bucket: edits to a pending creation are folded into the creation entry, and
// deleting a pending creation drops it from the ledger entirely (the backend
// never hears about it).
//
// Created buckets hold pointers into the session's live slices, so in-place
// edits and the temp-ID remap during a drain are visible here for free.
type changeLedger struct {
	createdItems   []*entities.WorkItem
	updatedItems   map[int64]*entities.WorkItem
	deletedItemIDs []int64

	createdAnnotations   []*entities.WorkAnnotation
	updatedAnnotations   map[int64]*entities.WorkAnnotation
	deletedAnnotationIDs []int64
}

func newChangeLedger() *changeLedger {
	return &changeLedger{
		updatedItems:       make(map[int64]*entities.WorkItem),
		updatedAnnotations: make(map[int64]*entities.WorkAnnotation),
	}
}

func (l *changeLedger) isEmpty() bool {
	return len(l.createdItems) == 0 &&
		len(l.updatedItems) == 0 &&
		len(l.deletedItemIDs) == 0 &&
		len(l.createdAnnotations) == 0 &&
		len(l.updatedAnnotations) == 0 &&
		len(l.deletedAnnotationIDs) == 0
}

func (l *changeLedger) reset() {
	l.createdItems = nil
	l.updatedItems = make(map[int64]*entities.WorkItem)
	l.deletedItemIDs = nil
	l.createdAnnotations = nil
	l.updatedAnnotations = make(map[int64]*entities.WorkAnnotation)
	l.deletedAnnotationIDs = nil
}

func (l *changeLedger) hasCreatedItem(id int64) bool {
	for _, it := range l.createdItems {
		if it.ID == id {
			return true
		}
	}
	return false
}

func (l *changeLedger) dropCreatedItem(id int64) bool {
	for i, it := range l.createdItems {
		if it.ID == id {
			l.createdItems = append(l.createdItems[:i], l.createdItems[i+1:]...)
			return true
		}
	}
	return false
}

func (l *changeLedger) hasCreatedAnnotation(id int64) bool {
	for _, a := range l.createdAnnotations {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (l *changeLedger) dropCreatedAnnotation(id int64) bool {
	for i, a := range l.createdAnnotations {
		if a.ID == id {
			l.createdAnnotations = append(l.createdAnnotations[:i], l.createdAnnotations[i+1:]...)
			return true
		}
	}
	return false
}

// purgeAnnotation removes every trace of an annotation from the ledger,
// regardless of which bucket holds it. Used when a cascade delete wipes boxes
// belonging to a deleted item.
func (l *changeLedger) purgeAnnotation(id int64) {
	l.dropCreatedAnnotation(id)
	delete(l.updatedAnnotations, id)
	for i, did := range l.deletedAnnotationIDs {
		if did == id {
			l.deletedAnnotationIDs = append(l.deletedAnnotationIDs[:i], l.deletedAnnotationIDs[i+1:]...)
			return
		}
	}
}
