package main

import (
	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/auth"
)

// NewHashCmd creates the hash subcommand.
func NewHashCmd() *cobra.Command {
	var verifyAgainst string

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash a password, or verify one against an encoded hash",
		Long: `Hash a password with argon2id and print the encoded result.
With --verify, check the password against the given encoded hash
instead and print "match" or "mismatch".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasher := auth.NewArgon2idHasher()

			if verifyAgainst != "" {
				ok, err := hasher.Verify(args[0], verifyAgainst)
				if err != nil {
					return err
				}
				if ok {
					cmd.Println("match")
				} else {
					cmd.Println("mismatch")
				}
				return nil
			}

			encoded, err := hasher.Hash(args[0])
			if err != nil {
				return err
			}
			cmd.Println(encoded)
			return nil
		},
	}

	cmd.Flags().StringVar(&verifyAgainst, "verify", "", "encoded hash to verify the password against")

	return cmd
}
