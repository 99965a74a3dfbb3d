// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyfold Contributors

package main

import (
	"bufio"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/keyfold/keyfold/internal/auth"
	"github.com/keyfold/keyfold/internal/config"
)

// NewHashCmd creates the hash subcommand. It reads a password from
// stdin and prints its argon2id digest, for seeding or debugging.
func NewHashCmd() *cobra.Command {
	params := config.Default().Argon2

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash a password read from stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return oops.Code("HASH_READ_FAILED").Wrap(err)
			}
			password := strings.TrimRight(line, "\r\n")

			hasher := auth.NewArgon2idHasher(auth.Argon2Params{
				Time:      params.Time,
				MemoryKiB: params.MemoryKiB,
				Threads:   params.Threads,
			})
			hash, err := hasher.Hash(password)
			if err != nil {
				return err
			}

			cmd.Println(hash)
			return nil
		},
	}

	cmd.Flags().Uint32Var(&params.Time, "time", params.Time, "argon2id iterations")
	cmd.Flags().Uint32Var(&params.MemoryKiB, "memory-kib", params.MemoryKiB, "argon2id memory in KiB")
	cmd.Flags().Uint8Var(&params.Threads, "threads", params.Threads, "argon2id parallelism")

	return cmd
}
