package main

import "errors"

var (
	ErrKeyNotFound      = errors.New("key not found")
	ErrStorageWrite     = errors.New("storage write failed")
	ErrCorruptProgress  = errors.New("stored progress is not a valid completion map")
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrMissingElement   = errors.New("missing element")
	ErrDuplicateLesson  = errors.New("duplicate lesson id")
	ErrUnknownStorageDB = errors.New("unknown storage driver")
)
