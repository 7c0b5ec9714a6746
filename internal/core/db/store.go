// internal/core/db/store.go
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/solatis/subordinate/internal/definition"
	"github.com/solatis/subordinate/internal/types"
)

/*
 * Tenant-scoped persistence.
 *
 * Every read and write carries the tenant ID taken from the authenticated
 * API key; a rule set ID owned by another tenant behaves as if it did not
 * exist. Rule sets are stored as YAML in the form definition.Parse accepts,
 * so what a client uploads is what a later ApplyControls compiles.
 */

// RuleSetRecord is one stored rule set.
type RuleSetRecord struct {
	ID         types.RuleSetID `db:"rule_set_id"`
	TenantID   string          `db:"tenant_id"`
	Name       string          `db:"name"`
	Definition string          `db:"definition"`
	RuleCount  int             `db:"rule_count"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

// RuleSet parses the stored definition.
func (r *RuleSetRecord) RuleSet() (*types.RuleSet, error) {
	sets, err := definition.Parse([]byte(r.Definition))
	if err != nil {
		return nil, fmt.Errorf("stored rule set %s: %w", r.ID, err)
	}
	if len(sets) != 1 {
		return nil, fmt.Errorf("stored rule set %s: %d sets in definition", r.ID, len(sets))
	}
	set := sets[0]
	set.ID = r.ID
	return set, nil
}

// Evaluation is the audit record of one ApplyControls call.
type Evaluation struct {
	ID             types.EvaluationID
	TenantID       string
	RuleSetID      types.RuleSetID
	Components     int
	RulesApplied   int
	ActionsApplied int
	EvaluatedAt    time.Time
}

// APIKeyRecord is an API key without its secret material.
type APIKeyRecord struct {
	ID         string       `db:"api_key_id"`
	TenantID   string       `db:"tenant_id"`
	Name       string       `db:"name"`
	SecretID   string       `db:"secret_id"`
	CreatedAt  time.Time    `db:"created_at"`
	LastUsedAt sql.NullTime `db:"last_used_at"`
	RevokedAt  sql.NullTime `db:"revoked_at"`
}

// ErrAPIKeyNotFound indicates no active key with the given ID exists for
// the tenant.
var ErrAPIKeyNotFound = errors.New("api key not found")

// Store persists rule sets, evaluations and API keys.
type Store struct {
	q   *Queries
	now func() time.Time
}

// NewStore wraps loaded queries.
func NewStore(q *Queries) *Store {
	return &Store{q: q, now: func() time.Time { return time.Now().UTC() }}
}

// SaveRuleSet inserts set, or replaces the tenant's rule set with the same
// ID. A set without an ID is assigned a new one. The set must compile
// against its own references.
func (s *Store) SaveRuleSet(tenantID string, set *types.RuleSet) (*RuleSetRecord, error) {
	recs, err := s.SaveRuleSets(tenantID, []*types.RuleSet{set})
	if err != nil {
		return nil, err
	}
	return recs[0], nil
}

// SaveRuleSets saves every set in one transaction: either all are stored
// or none is. Sets are checked and their IDs validated before anything
// is written; an ID may appear only once.
func (s *Store) SaveRuleSets(tenantID string, sets []*types.RuleSet) ([]*RuleSetRecord, error) {
	if tenantID == "" || len(sets) == 0 {
		return nil, fmt.Errorf("%w: tenant and rule set required", types.ErrInvalidArgument)
	}

	ids := make([]types.RuleSetID, len(sets))
	seen := make(map[types.RuleSetID]bool, len(sets))
	for i, set := range sets {
		if set == nil {
			return nil, fmt.Errorf("%w: rule set required", types.ErrInvalidArgument)
		}
		if err := definition.Check(set); err != nil {
			return nil, err
		}

		id := set.ID
		if id == "" {
			id = types.NewRuleSetID()
		} else if _, err := types.ParseRuleSetID(string(id)); err != nil {
			return nil, fmt.Errorf("%w: rule set id %q: %v", types.ErrInvalidArgument, id, err)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: rule set id %s given twice", types.ErrInvalidArgument, id)
		}
		seen[id] = true
		ids[i] = id
	}

	recs := make([]*RuleSetRecord, 0, len(sets))
	err := s.q.InTx(func(q *Queries) error {
		now := s.now()
		for i, set := range sets {
			rec, err := saveRuleSet(q, tenantID, set, ids[i], now)
			if err != nil {
				return err
			}
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func saveRuleSet(q *Queries, tenantID string, set *types.RuleSet, id types.RuleSetID, now time.Time) (*RuleSetRecord, error) {
	stored := *set
	stored.ID = id
	data, err := definition.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rule set: %w", err)
	}

	res, err := q.Exec("upsert-rule-set", string(id), tenantID, set.Name, string(data), len(set.Rules), now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to save rule set: %w", err)
	}
	// The upsert is a no-op when the ID belongs to another tenant.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: rule set id %s is taken", types.ErrInvalidArgument, id)
	}

	return getRecord(q, tenantID, id)
}

// GetRuleSet loads and parses a tenant's rule set.
func (s *Store) GetRuleSet(tenantID string, id types.RuleSetID) (*types.RuleSet, error) {
	rec, err := getRecord(s.q, tenantID, id)
	if err != nil {
		return nil, err
	}
	return rec.RuleSet()
}

func getRecord(q *Queries, tenantID string, id types.RuleSetID) (*RuleSetRecord, error) {
	var rec RuleSetRecord
	err := q.Get("get-rule-set", &rec, tenantID, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", types.ErrRuleSetNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rule set: %w", err)
	}
	return &rec, nil
}

// ListRuleSets returns the tenant's rule sets ordered by ID.
func (s *Store) ListRuleSets(tenantID string) ([]RuleSetRecord, error) {
	var recs []RuleSetRecord
	if err := s.q.Select("list-rule-sets", &recs, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list rule sets: %w", err)
	}
	return recs, nil
}

// RecordEvaluation appends an evaluation to the audit trail. A missing ID
// or timestamp is filled in.
func (s *Store) RecordEvaluation(e *Evaluation) error {
	if e.ID == "" {
		e.ID = types.NewEvaluationID()
	}
	if e.EvaluatedAt.IsZero() {
		e.EvaluatedAt = s.now()
	}
	_, err := s.q.Exec("insert-evaluation",
		string(e.ID), e.TenantID, string(e.RuleSetID), e.Components, e.RulesApplied, e.ActionsApplied, e.EvaluatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record evaluation: %w", err)
	}
	return nil
}

// CountEvaluations returns how often a rule set has been applied.
func (s *Store) CountEvaluations(tenantID string, id types.RuleSetID) (int, error) {
	var n int
	if err := s.q.Get("count-evaluations", &n, tenantID, string(id)); err != nil {
		return 0, fmt.Errorf("failed to count evaluations: %w", err)
	}
	return n, nil
}

// CreateAPIKey stores the HMAC of a newly issued key.
func (s *Store) CreateAPIKey(tenantID, name, secretID string, keyHash []byte) (*APIKeyRecord, error) {
	if tenantID == "" || len(keyHash) == 0 {
		return nil, fmt.Errorf("%w: tenant and key hash required", types.ErrInvalidArgument)
	}
	rec := &APIKeyRecord{
		ID:        uuid.Must(uuid.NewV7()).String(),
		TenantID:  tenantID,
		Name:      name,
		SecretID:  secretID,
		CreatedAt: s.now(),
	}
	_, err := s.q.Exec("insert-api-key", rec.ID, tenantID, name, secretID, keyHash, rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create api key: %w", err)
	}
	return rec, nil
}

// RevokeAPIKey marks an active key revoked.
func (s *Store) RevokeAPIKey(tenantID, id string) error {
	res, err := s.q.Exec("revoke-api-key", s.now(), tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrAPIKeyNotFound, id)
	}
	return nil
}

// ListAPIKeys returns the tenant's keys, revoked ones included.
func (s *Store) ListAPIKeys(tenantID string) ([]APIKeyRecord, error) {
	var recs []APIKeyRecord
	if err := s.q.Select("list-api-keys", &recs, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	return recs, nil
}
