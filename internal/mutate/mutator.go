package mutate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraops-io/terraops/internal/logging"
	"github.com/terraops-io/terraops/internal/ops"
	"github.com/terraops-io/terraops/internal/store"
)

// retainBackups is how many timestamped backup sets are kept. Older sets
// are pruned after each successful backup so the area cannot grow
// unbounded.
const retainBackups = 20

// objectStore is the slice of the bucket the mutator uses.
type objectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte, metadata map[string]string) error
	List(ctx context.Context, prefix string) ([]store.Object, error)
	Copy(ctx context.Context, srcKey, dstKey string) error
	Delete(ctx context.Context, key string) error
	Prefixes(ctx context.Context, prefix string) ([]string, error)
	Name() string
}

// validateTrigger dispatches a follow-up validate operation after writes.
type validateTrigger interface {
	Dispatch(ctx context.Context, req ops.Request) (*ops.Handle, error)
}

// Mutator applies change batches to the source tree.
type Mutator struct {
	bucket       objectStore
	sourcePrefix string
	backupPrefix string
	validator    validateTrigger
	now          func() time.Time
}

// NewMutator returns a Mutator over the given bucket. validator may be nil,
// in which case no validation job is triggered after writes.
func NewMutator(bucket objectStore, sourcePrefix, backupPrefix string, validator validateTrigger) *Mutator {
	if sourcePrefix == "" {
		sourcePrefix = store.DefaultSourcePrefix
	}
	if backupPrefix == "" {
		backupPrefix = store.DefaultBackupPrefix
	}
	return &Mutator{
		bucket:       bucket,
		sourcePrefix: sourcePrefix,
		backupPrefix: backupPrefix,
		validator:    validator,
		now:          time.Now,
	}
}

// Request is one modification call: a batch of changes applied in order.
type Request struct {
	ModificationType string   `json:"modification_type,omitempty"`
	Description      string   `json:"description,omitempty"`
	Changes          []Change `json:"changes"`
	DryRun           bool     `json:"dry_run"`
}

// ChangeRecord reports the outcome of one change. Changes whose anchor or
// old content was not found are recorded here with Applied=false rather
// than silently dropped.
type ChangeRecord struct {
	File         string `json:"file"`
	Action       Action `json:"action"`
	Applied      bool   `json:"applied"`
	Detail       string `json:"detail"`
	LinesAdded   int    `json:"lines_added,omitempty"`
	LinesRemoved int    `json:"lines_removed,omitempty"`
	Preview      string `json:"preview,omitempty"`
}

// Result is the outcome of one Modify call.
type Result struct {
	Status           string         `json:"status"`
	DryRun           bool           `json:"dry_run"`
	ModificationType string         `json:"modification_type,omitempty"`
	Description      string         `json:"description,omitempty"`
	Changes          []ChangeRecord `json:"changes_made"`
	FilesModified    int            `json:"total_files_modified"`
	BackupLocation   string         `json:"backup_location,omitempty"`
	Message          string         `json:"message"`
	NextSteps        []string       `json:"next_steps,omitempty"`
	Validation       *ops.Handle    `json:"validation,omitempty"`
}

// Modify applies the change batch. Dry runs compute previews without
// touching storage. Real runs take a full backup of the source tree before
// any write is observable; if the backup fails nothing is written. Writes
// across multiple files are not transactional; the backup is the recovery
// mechanism.
func (m *Mutator) Modify(ctx context.Context, req Request) (*Result, error) {
	if len(req.Changes) == 0 {
		return nil, &ops.Rejection{
			Kind:    ops.KindInvalidRequest,
			Message: "no changes provided; specify the changes to make",
		}
	}
	for _, c := range req.Changes {
		if err := c.Validate(); err != nil {
			return nil, &ops.Rejection{Kind: ops.KindInvalidRequest, Message: err.Error()}
		}
	}

	result := &Result{
		DryRun:           req.DryRun,
		ModificationType: req.ModificationType,
		Description:      req.Description,
	}

	if !req.DryRun {
		location, err := m.backup(ctx)
		if err != nil {
			return nil, fmt.Errorf("backup failed, aborting before any write: %w", err)
		}
		result.BackupLocation = location
	}

	// Apply changes in order against in-memory content, one buffer per
	// file, writing each touched file once at the end.
	contents := make(map[string]string)
	original := make(map[string]string)
	touched := make(map[string]bool)

	for _, change := range req.Changes {
		current, ok := contents[change.File]
		if !ok {
			data, err := m.bucket.Get(ctx, m.sourcePrefix+change.File)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
			current = string(data)
			contents[change.File] = current
			original[change.File] = current
		}

		next, detail, applied := change.Apply(current)
		record := ChangeRecord{
			File:    change.File,
			Action:  change.Action,
			Applied: applied,
			Detail:  detail,
		}
		if applied {
			record.LinesAdded = change.LinesAdded()
			record.LinesRemoved = change.LinesRemoved()
			contents[change.File] = next
			touched[change.File] = true
		}
		result.Changes = append(result.Changes, record)
	}

	if req.DryRun {
		for i := range result.Changes {
			file := result.Changes[i].File
			if result.Changes[i].Applied {
				result.Changes[i].Preview = diffPreview(original[file], contents[file], file)
			}
		}
	} else {
		for file := range touched {
			meta := map[string]string{
				"modified-by":       "terraops",
				"modification-type": req.ModificationType,
				"timestamp":         m.now().UTC().Format(time.RFC3339),
			}
			if err := m.bucket.Put(ctx, m.sourcePrefix+file, []byte(contents[file]), meta); err != nil {
				return nil, fmt.Errorf("failed writing %s (backup at %s): %w", file, result.BackupLocation, err)
			}
		}
	}

	result.FilesModified = len(touched)
	if len(touched) == 0 {
		result.Status = "no_changes"
		result.Message = "no changes took effect"
		return result, nil
	}

	result.Status = "success"
	if req.DryRun {
		result.Message = "changes previewed (dry_run=true); set dry_run=false to apply"
		return result, nil
	}

	result.Message = "changes applied successfully"
	result.NextSteps = []string{
		"validation has been triggered; poll status for the result",
		"run terraform plan to review changes",
		"run terraform apply to deploy changes",
	}

	if m.validator != nil {
		handle, err := m.validator.Dispatch(ctx, ops.Request{Operation: ops.OpValidate})
		if err != nil {
			// The edits are already written; validation failing to launch is
			// reported, not rolled back.
			logging.Warn("failed to trigger validation", "error", err)
			result.NextSteps[0] = "run terraform validate to check syntax (automatic trigger failed)"
		} else {
			result.Validation = handle
		}
	}
	return result, nil
}

// backup copies every source file to a timestamped prefix. It must succeed
// before any write proceeds.
func (m *Mutator) backup(ctx context.Context) (string, error) {
	stamp := m.now().UTC().Format("20060102_150405")
	dst := m.backupPrefix + stamp + "/"

	objects, err := m.bucket.List(ctx, m.sourcePrefix)
	if err != nil {
		return "", err
	}

	copied := 0
	for _, obj := range objects {
		if !store.IsSourceFile(obj.Key) {
			continue
		}
		backupKey := dst + obj.Key[len(m.sourcePrefix):]
		if err := m.bucket.Copy(ctx, obj.Key, backupKey); err != nil {
			return "", err
		}
		copied++
	}

	location := fmt.Sprintf("s3://%s/%s (%d files)", m.bucket.Name(), dst, copied)
	logging.Info("created modification backup", "location", dst, "files", copied)

	if err := m.pruneBackups(ctx); err != nil {
		// Retention is best-effort; a failed prune never blocks the edit.
		logging.Warn("backup prune failed", "error", err)
	}
	return location, nil
}

// pruneBackups keeps the newest retainBackups timestamped sets. Prefixes
// sort lexically, which for the timestamp format is chronological.
func (m *Mutator) pruneBackups(ctx context.Context) error {
	prefixes, err := m.bucket.Prefixes(ctx, m.backupPrefix)
	if err != nil {
		return err
	}
	if len(prefixes) <= retainBackups {
		return nil
	}
	for _, p := range prefixes[:len(prefixes)-retainBackups] {
		objects, err := m.bucket.List(ctx, p)
		if err != nil {
			return err
		}
		for _, obj := range objects {
			if err := m.bucket.Delete(ctx, obj.Key); err != nil {
				return err
			}
		}
	}
	return nil
}
