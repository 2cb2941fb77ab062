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

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Ilhamseptiadi002/hs-airdrop/internal/build"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/builder"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/config"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/ingest"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/randsrc"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/summary"
	"github.com/Ilhamseptiadi002/hs-airdrop/internal/treefile"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(log, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run(log *logrus.Logger, args []string) error {
	if len(args) != 2 {
		return errors.Errorf("usage: %s <prefix>", args[0])
	}
	prefix := args[1]

	constants, err := config.Load(prefix, config.Default())
	if err != nil {
		return err
	}

	dirs, err := build.PrepareOutputDirs(prefix)
	if err != nil {
		return err
	}

	b := builder.New(constants, log, randsrc.CSPRNG())

	faucetEntries, err := ingest.LoadFaucet(prefix)
	if err != nil {
		return err
	}
	ingest.RegisterFaucetDedup(b, faucetEntries)

	sshUsers, pgpUsers, err := ingest.LoadGitHub(prefix)
	if err != nil {
		return err
	}
	if err := ingest.IngestGitHub(b, sshUsers, pgpUsers); err != nil {
		return err
	}

	strongSetData, err := ingest.LoadStrongSet(prefix)
	if err != nil {
		return err
	}
	if err := ingest.IngestStrongSet(b, strongSetData); err != nil {
		return err
	}

	hnUsers, err := ingest.LoadHackerNews(prefix)
	if err != nil {
		return err
	}
	if err := ingest.IngestHackerNews(b, hnUsers); err != nil {
		return err
	}

	log.WithField("sources", len(b.Summary())).Info("ingestion complete")
	for name, c := range b.Summary() {
		log.WithFields(logrus.Fields{
			"source":        name,
			"valid_users":   c.ValidUsers,
			"invalid_users": c.InvalidUsers,
			"valid_keys":    c.ValidKeys,
			"invalid_keys":  c.InvalidKeys,
		}).Info("source totals")
	}

	tree, err := treefile.Finalize(b.Subtrees(), filepath.Join(dirs.Build, "tree.bin"))
	if err != nil {
		return err
	}

	checksums, err := b.Buckets.WriteAll(dirs.Nonces)
	if err != nil {
		return err
	}

	report, err := summary.Build(constants, tree, checksums, len(faucetEntries), ingest.TotalShares(faucetEntries), b.Summary())
	if err != nil {
		return err
	}

	if err := summary.WriteJSON(report, filepath.Join(dirs.Etc, "tree.json")); err != nil {
		return err
	}
	if err := summary.WriteMetrics(report, filepath.Join(dirs.Etc, "metrics.prom")); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"leaves": report.Leaves,
		"keys":   report.Keys,
		"reward": report.Reward,
	}).Info("build complete")

	return nil
}
