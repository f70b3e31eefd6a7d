package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	rewardsdb "waste-collect/internal/rewards-service/adapters/driven/db"
)

// The settlement transaction writes the rewards service's ledger_entries
// table directly. The two services must agree on its columns or every
// completion rolls back at the insert.
func TestSettleLedgerInsertMatchesRewardsSchema(t *testing.T) {
	open := strings.Index(insertEarnedEntry, "(")
	closing := strings.Index(insertEarnedEntry, ")")
	require.True(t, open >= 0 && closing > open, "insert should name its columns explicitly")

	inserted := splitColumns(insertEarnedEntry[open+1 : closing])
	owned := splitColumns(rewardsdb.LedgerColumns)

	require.ElementsMatch(t, owned, inserted)
}

func splitColumns(list string) []string {
	var out []string
	for _, c := range strings.Split(list, ",") {
		out = append(out, strings.TrimSpace(c))
	}
	return out
}
