package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Commands(t *testing.T) {
	root := rootCmd()

	for _, path := range [][]string{
		{"match"}, {"apply"}, {"serve"}, {"status"},
		{"tags", "list"}, {"tags", "sync"}, {"tags", "enable"}, {"tags", "disable"},
		{"locations", "list"}, {"locations", "set"}, {"locations", "remove"},
		{"runs", "list"}, {"runs", "show"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestApplyCmd_RequiresTxn(t *testing.T) {
	root := rootCmd()
	root.SetArgs([]string{"apply", "--note", "x"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "txn")
}

func TestMatchCmd_Flags(t *testing.T) {
	cmd := matchCmd()
	assert.NotNil(t, cmd.Flags().Lookup("json"))
}
