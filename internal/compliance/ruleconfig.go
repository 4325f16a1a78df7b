package compliance

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// InMemoryRuleConfig holds rule active flags in memory. With no flags set,
// every built-in rule is active.
type InMemoryRuleConfig struct {
	mu    sync.RWMutex
	flags map[RuleID]bool
}

func NewInMemoryRuleConfig() *InMemoryRuleConfig {
	return &InMemoryRuleConfig{flags: make(map[RuleID]bool)}
}

// SetActive toggles one rule.
func (s *InMemoryRuleConfig) SetActive(ruleID RuleID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[ruleID] = active
}

func (s *InMemoryRuleConfig) ActiveFlags(_ context.Context) (map[RuleID]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[RuleID]bool, len(s.flags))
	for k, v := range s.flags {
		out[k] = v
	}
	return out, nil
}

// PostgresRuleConfig reads rule active flags from the rule_configs table,
// which the initial migration seeds with every built-in rule enabled.
type PostgresRuleConfig struct {
	db *sql.DB
}

func NewPostgresRuleConfig(db *sql.DB) *PostgresRuleConfig {
	return &PostgresRuleConfig{db: db}
}

func (s *PostgresRuleConfig) ActiveFlags(ctx context.Context) (map[RuleID]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT rule_id, active FROM rule_configs`)
	if err != nil {
		return nil, fmt.Errorf("query rule configs: %w", err)
	}
	defer rows.Close()

	out := make(map[RuleID]bool)
	for rows.Next() {
		var (
			ruleID string
			active bool
		)
		if err := rows.Scan(&ruleID, &active); err != nil {
			return nil, fmt.Errorf("scan rule config: %w", err)
		}
		out[RuleID(ruleID)] = active
	}
	return out, rows.Err()
}
