package main

import (
	"bytes"
	"errors"
	"testing"

	"storefront-cache/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(args ...string) (string, error) {
	c := rootCmd()
	out := new(bytes.Buffer)
	c.SetOut(out)
	c.SetErr(out)
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	var names []string
	for _, sub := range rootCmd().Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"warm", "stats", "invalidate-region", "invalidate"}, names)
}

func TestInvalidateCmd_RejectsInvalidEvents(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown entity", args: []string{"invalidate", "--entity", "order", "--type", "update"}},
		{name: "type not valid for entity", args: []string{"invalidate", "--entity", "user", "--type", "create", "--id", "U1"}},
		{name: "product without id", args: []string{"invalidate", "--entity", "product", "--type", "update"}},
		{name: "review without product", args: []string{"invalidate", "--entity", "review", "--type", "create"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(tt.args...)
			require.Error(t, err)
			var domainErr *domain.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, domain.ErrInvalidEvent, domainErr.Code)
		})
	}
}

func TestInvalidateCmd_RequiresEntityAndType(t *testing.T) {
	_, err := execute("invalidate", "--id", "P1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestInvalidateRegionCmd_RequiresRegion(t *testing.T) {
	_, err := execute("invalidate-region")
	require.Error(t, err)
}

func TestPrintJSON(t *testing.T) {
	out := new(bytes.Buffer)
	require.NoError(t, printJSON(out, map[string]int64{"keys_deleted": 3}))
	assert.JSONEq(t, `{"keys_deleted":3}`, out.String())
}
