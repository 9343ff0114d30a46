// Package pipeline holds cross-stage plumbing: the shared error
// taxonomy (§7) and the GOC export projection (§12).
package pipeline

import "fmt"

// ContractError marks a broken data contract: an input references an
// entity the catalog does not know about, or a row is malformed. These
// are fatal with no recovery (§7).
type ContractError struct {
	Entity string // e.g. "gene", "hit row"
	ID     string
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract violation: %s %q: %s", e.Entity, e.ID, e.Reason)
}

// NewContractError builds a ContractError identifying the offending entity.
func NewContractError(entity, id, reason string) error {
	return &ContractError{Entity: entity, ID: id, Reason: reason}
}

// DataQualityWarnings accumulates soft warnings before they are upgraded
// to fatal, per §7's "up to 10 warnings before upgrading to fatal when
// building paralogs" rule. The ortholog builder does not use it: a
// missing gene reference there is an immediate ContractError.
type DataQualityWarnings struct {
	Limit int
	count int
	last  error
}

// NewDataQualityWarnings returns a tracker that becomes fatal after limit
// warnings have accumulated.
func NewDataQualityWarnings(limit int) *DataQualityWarnings {
	return &DataQualityWarnings{Limit: limit}
}

// Add records a warning. It returns a fatal error once the configured
// limit is exceeded, nil otherwise (caller should log-and-continue).
func (w *DataQualityWarnings) Add(err error) error {
	w.count++
	w.last = err
	if w.count > w.Limit {
		return fmt.Errorf("too many data-quality warnings (%d, limit %d), last: %w", w.count, w.Limit, w.last)
	}
	return nil
}

func (w *DataQualityWarnings) Count() int {
	return w.count
}
