// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return "Campaign not found"
}

// Helper constructor
func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrTemplateNotFound is returned by the catalog for unknown template keys.
type ErrTemplateNotFound struct {
	Key string
}

func (e *ErrTemplateNotFound) Error() string {
	return fmt.Sprintf("template with key '%s' not found", e.Key)
}

func NewTemplateNotFound(key string) error {
	return &ErrTemplateNotFound{Key: key}
}

// ErrTaskNotFound is returned for unknown workflow or video task IDs.
type ErrTaskNotFound struct {
	TaskID string
}

func (e *ErrTaskNotFound) Error() string {
	return fmt.Sprintf("task with ID %s not found", e.TaskID)
}

func NewTaskNotFound(id string) error {
	return &ErrTaskNotFound{TaskID: id}
}

// ValidationError marks a malformed creation request (HTTP 400).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// RenderError is a terminal media-renderer failure, raised only after every
// internal fallback is exhausted.
type RenderError struct {
	Stage string
	Cause error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed at %s: %v", e.Stage, e.Cause)
}

func (e *RenderError) Unwrap() error { return e.Cause }

func NewRenderError(stage string, cause error) error {
	return &RenderError{Stage: stage, Cause: cause}
}

// StorageError wraps any object-storage fault with its original cause.
type StorageError struct {
	Op    string
	Key   string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

func NewStorageError(op, key string, cause error) error {
	return &StorageError{Op: op, Key: key, Cause: cause}
}

// PublishError is a per-platform publish failure. The orchestrator records
// it on the platform result and keeps going.
type PublishError struct {
	Platform string
	Cause    error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to %s failed: %v", e.Platform, e.Cause)
}

func (e *PublishError) Unwrap() error { return e.Cause }

func NewPublishError(platform string, cause error) error {
	return &PublishError{Platform: platform, Cause: cause}
}
