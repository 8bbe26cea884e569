// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/canonical/tenant-auth/pkg/tokens"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Inspect tokens issued by this service",
}

var tokenVerifyCmd = &cobra.Command{
	Use:   "verify <jwt>",
	Short: "Verify a token with the configured secret and print its claims",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, err := loadSpecs()
		if err != nil {
			return err
		}

		codec, err := tokens.NewCodec(specs.JWTSecret, specs.TenantClaim)
		if err != nil {
			return err
		}

		return verifyToken(codec, args[0], cmd.OutOrStdout())
	},
}

type claimsOutput struct {
	Kind        string    `json:"kind"`
	Subject     string    `json:"subject"`
	Tenant      string    `json:"tenant"`
	Authorities []string  `json:"authorities,omitempty"`
	JTI         string    `json:"jti,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func verifyToken(codec *tokens.Codec, token string, out io.Writer) error {
	claims, err := codec.Verify(token)
	if err != nil {
		return fmt.Errorf("token rejected: %w", err)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	return encoder.Encode(claimsOutput{
		Kind:        claims.Kind.String(),
		Subject:     claims.Subject,
		Tenant:      claims.Tenant,
		Authorities: claims.Authorities,
		JTI:         claims.JTI,
		IssuedAt:    claims.IssuedAt,
		ExpiresAt:   claims.ExpiresAt,
	})
}

func init() {
	tokenCmd.AddCommand(tokenVerifyCmd)
	rootCmd.AddCommand(tokenCmd)
}
