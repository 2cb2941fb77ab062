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

// Package summary writes the run's final report: etc/tree.json (spec
// section 6) and an etc/metrics.prom Prometheus text-exposition dump of
// the same counters for scraping by an external collector.
package summary

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/builder"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/config"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/merkle"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/treefile"
)

// Report is the etc/tree.json shape: the fields spec section 6 names,
// plus build_id and the per-source counters under sources.
type Report struct {
	BuildID   string            `json:"build_id"`
	Checksum  string            `json:"checksum"`
	Root      string            `json:"root"`
	Leaves    int               `json:"leaves"`
	Keys      int               `json:"keys"`
	Subleaves int               `json:"subleaves"`
	Depth     int               `json:"depth"`
	Subdepth  int               `json:"subdepth"`
	Faucet    int               `json:"faucet"`
	Shares    int               `json:"shares"`
	Reward    uint64            `json:"reward"`
	Checksums []string          `json:"checksums"`
	Sources   map[string]Source `json:"sources"`
}

// Source mirrors builder.SourceCounters for JSON reporting.
type Source struct {
	ValidUsers   int `json:"valid_users"`
	InvalidUsers int `json:"invalid_users"`
	ValidKeys    int `json:"valid_keys"`
	InvalidKeys  int `json:"invalid_keys"`
	DroppedFull  int `json:"dropped_full"`
	Duplicates   int `json:"duplicates"`
}

// Build assembles the Report from a finalized tree result, the bucket
// checksums, faucet totals, and the builder's per-source counters. It
// asserts the reward invariant from spec section 4.7 before returning.
func Build(c config.Constants, tree treefile.Result, checksums [][32]byte, faucetEntries, faucetShares int, counters map[string]builder.SourceCounters) (Report, error) {
	totalKeys := 0
	sources := make(map[string]Source, len(counters))
	for name, sc := range counters {
		totalKeys += sc.ValidKeys
		sources[name] = Source{
			ValidUsers:   sc.ValidUsers,
			InvalidUsers: sc.InvalidUsers,
			ValidKeys:    sc.ValidKeys,
			InvalidKeys:  sc.InvalidKeys,
			DroppedFull:  sc.DroppedFull,
			Duplicates:   sc.Duplicates,
		}
	}

	denom := uint64(tree.Leaves + faucetShares)
	var reward uint64
	if denom > 0 {
		reward = c.MaxAirdrop / denom
	}
	if denom*reward > c.MaxAirdrop {
		return Report{}, errors.Errorf("reward invariant violated: (%d)*%d > %d", denom, reward, c.MaxAirdrop)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return Report{}, errors.Wrap(err, "generating build id")
	}

	checksumHexes := make([]string, len(checksums))
	for i, sum := range checksums {
		checksumHexes[i] = hex.EncodeToString(sum[:])
	}

	return Report{
		BuildID:   id.String(),
		Checksum:  hex.EncodeToString(tree.Checksum[:]),
		Root:      hex.EncodeToString(tree.Root[:]),
		Leaves:    tree.Leaves,
		Keys:      totalKeys,
		Subleaves: treefile.LeafWidth,
		Depth:     merkle.Depth(tree.Leaves),
		Subdepth:  merkle.Depth(treefile.LeafWidth),
		Faucet:    faucetEntries,
		Shares:    faucetShares,
		Reward:    reward,
		Checksums: checksumHexes,
		Sources:   sources,
	}, nil
}

// WriteJSON writes r to "<prefix>/etc/tree.json".
func WriteJSON(r Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(path))
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// WriteMetrics renders per-source counters as Prometheus gauges in text
// exposition format to path. There is no HTTP server in this tool; the
// registry is built, gathered, and dumped to a file once at the very end
// of the run for an external collector to scrape offline.
func WriteMetrics(r Report, path string) error {
	reg := prometheus.NewRegistry()

	validKeys := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hs_airdrop_valid_keys",
		Help: "Validated keys routed into the tree, by source.",
	}, []string{"source"})
	invalidKeys := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hs_airdrop_invalid_keys",
		Help: "Keys rejected by a classifier outcome, by source.",
	}, []string{"source"})
	duplicates := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hs_airdrop_duplicate_identities",
		Help: "Entries skipped due to a faucet dedup match, by source.",
	}, []string{"source"})
	leaves := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hs_airdrop_tree_leaves",
		Help: "Total subtrees committed to the final tree.",
	})
	reward := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hs_airdrop_reward",
		Help: "Per-share reward computed for this build.",
	})

	reg.MustRegister(validKeys, invalidKeys, duplicates, leaves, reward)

	for name, src := range r.Sources {
		validKeys.WithLabelValues(name).Set(float64(src.ValidKeys))
		invalidKeys.WithLabelValues(name).Set(float64(src.InvalidKeys))
		duplicates.WithLabelValues(name).Set(float64(src.Duplicates))
	}
	leaves.Set(float64(r.Leaves))
	reward.Set(float64(r.Reward))

	families, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			return errors.Wrap(err, "encoding metric family")
		}
	}
	return nil
}

