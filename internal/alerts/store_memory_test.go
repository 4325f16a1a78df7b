package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"normativa/internal/compliance"
	id "normativa/pkg/domain"
)

func TestInMemoryStoreReplaceSwapsWholeSet(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	condoID := id.NewCondoID()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	mk := func(ruleID compliance.RuleID, status compliance.Status) compliance.Alert {
		return compliance.Alert{
			ID: id.NewAlertID(), CondoID: condoID, RuleID: ruleID, Status: status, CreatedAt: now,
		}
	}

	require.NoError(t, store.ReplaceForCondo(ctx, condoID, []compliance.Alert{
		mk(compliance.RuleAnnualAssembly, compliance.StatusOpen),
		mk(compliance.RuleFireInsurance, compliance.StatusOpen),
	}))

	require.NoError(t, store.ReplaceForCondo(ctx, condoID, []compliance.Alert{
		mk(compliance.RuleAnnualAssembly, compliance.StatusOK),
	}))

	got, err := store.ListByCondo(ctx, condoID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, compliance.RuleAnnualAssembly, got[0].RuleID)
	assert.Equal(t, compliance.StatusOK, got[0].Status)
}

func TestInMemoryStoreIsolatesCondos(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	a, b := id.NewCondoID(), id.NewCondoID()

	require.NoError(t, store.ReplaceForCondo(ctx, a, []compliance.Alert{
		{ID: id.NewAlertID(), CondoID: a, RuleID: compliance.RuleCertifications, Status: compliance.StatusOpen},
	}))

	got, err := store.ListByCondo(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, got)
}
