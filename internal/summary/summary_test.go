/*
   hs-airdrop - Handshake key-commitment tree builder

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as published
   by the Free Software Foundation, version 3.

   This program is distributed in the hope that it will be useful, but
   WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU Affero
   General Public License for more details.
*/

package summary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/builder"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/config"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/treefile"
)

func TestBuildComputesRewardWithinBound(t *testing.T) {
	c := config.Default()
	tree := treefile.Result{Leaves: 13}
	checksums := make([][32]byte, 256)

	counters := map[string]builder.SourceCounters{
		"github": {ValidUsers: 5, ValidKeys: 10, InvalidKeys: 2},
	}

	r, err := Build(c, tree, checksums, 1, 20, counters)
	require.NoError(t, err)
	require.LessOrEqual(t, uint64(tree.Leaves+20)*r.Reward, c.MaxAirdrop)
	require.Equal(t, 10, r.Keys)
	require.Equal(t, 8, r.Subleaves)
}

func TestBuildZeroDenominatorYieldsZeroReward(t *testing.T) {
	c := config.Default()
	tree := treefile.Result{Leaves: 0}
	checksums := make([][32]byte, 256)

	r, err := Build(c, tree, checksums, 0, 0, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), r.Reward)
}

func TestWriteJSONAndMetricsProduceFiles(t *testing.T) {
	c := config.Default()
	tree := treefile.Result{Leaves: 1}
	checksums := make([][32]byte, 256)
	r, err := Build(c, tree, checksums, 0, 0, map[string]builder.SourceCounters{
		"strongset": {ValidKeys: 1},
	})
	require.NoError(t, err)

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "etc", "tree.json")
	require.NoError(t, WriteJSON(r, jsonPath))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "\"reward\"")

	metricsPath := filepath.Join(dir, "etc", "metrics.prom")
	require.NoError(t, WriteMetrics(r, metricsPath))
	metricsData, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	require.Contains(t, string(metricsData), "hs_airdrop_reward")
}
