package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetflow/internal/auth"
	"github.com/MrJamesThe3rd/budgetflow/internal/database"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ISSUER", "budgetflow")

	out, err := run(t, "token", "--user", "42", "--ttl", "5m")
	require.NoError(t, err)

	userID, err := auth.NewTokens("cli-secret", "budgetflow", time.Minute).Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenCommand_Errors(t *testing.T) {
	type testCase struct {
		name   string
		secret string
		args   []string
	}

	tests := []testCase{
		{name: "MissingUser", secret: "s", args: []string{"token"}},
		{name: "NoSecret", secret: "", args: []string{"token", "--user", "1"}},
		{name: "NonPositiveUser", secret: "s", args: []string{"token", "--user", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tt.secret)

			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestMigrateCommand_Print(t *testing.T) {
	out, err := run(t, "migrate", "--print")
	require.NoError(t, err)

	assert.Equal(t, database.Schema(), out)
	assert.Contains(t, out, "bank_sync_schedules")
}
