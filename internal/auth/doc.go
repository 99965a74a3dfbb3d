// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyfold Contributors

// Package auth is the credential-management core for Keyfold.
//
// # Domain Types
//
// Account is the stored credential record and should be created with
// NewAccount, which validates its fields. Direct struct initialization
// bypasses validation and may create invalid state. Profile is the
// outward-facing view of an account and never carries secret material.
//
// # Components
//
//   - RegistrationRequest/LoginRequest carry raw input and validate it
//     with explicit per-rule checks.
//   - PasswordHasher hashes and verifies passwords; Argon2idHasher is
//     the argon2id implementation with tunable cost.
//   - CredentialStore holds accounts keyed by username; its
//     InsertIfAbsent is the atomic uniqueness enforcement point.
//   - Service orchestrates Register and Login and reports outcomes as
//     coded errors for the transport layer to translate.
package auth
