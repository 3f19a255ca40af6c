package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tuition-node/crypto"
	"tuition-node/modules"
)

var DeriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Print the derived address and bump of a record",
}

func parseAddresses(args []string) ([]crypto.Address, error) {
	addresses := make([]crypto.Address, len(args))
	for i, arg := range args {
		address, err := crypto.ParseAddress(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		addresses[i] = address
	}
	return addresses, nil
}

func printDerived(seeds [][]byte) error {
	address, bump, err := modules.FindAddress(seeds)
	if err != nil {
		return err
	}
	fmt.Printf("%s %d\n", address, bump)
	return nil
}

var deriveProtocolCmd = &cobra.Command{
	Use:   "protocol [admin]",
	Short: "Protocol record of an administrator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addresses, err := parseAddresses(args)
		if err != nil {
			return err
		}
		return printDerived(modules.ProtocolSeeds(addresses[0]))
	},
}

var deriveInstitutionCmd = &cobra.Command{
	Use:   "institution [admin] [protocol]",
	Short: "Institution record of an administrator under a protocol",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addresses, err := parseAddresses(args)
		if err != nil {
			return err
		}
		return printDerived(modules.InstitutionSeeds(addresses[0], addresses[1]))
	},
}

var deriveSubjectCmd = &cobra.Command{
	Use:   "subject [institution] [seq]",
	Short: "Subject record with the given sequence id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addresses, err := parseAddresses(args[:1])
		if err != nil {
			return err
		}
		seq, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return err
		}
		return printDerived(modules.SubjectSeeds(addresses[0], seq))
	},
}

var deriveEnrollmentCmd = &cobra.Command{
	Use:   "enrollment [student] [subject]",
	Short: "Enrollment record of a student in a subject",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addresses, err := parseAddresses(args)
		if err != nil {
			return err
		}
		return printDerived(modules.EnrollmentSeeds(addresses[0], addresses[1]))
	},
}

func init() {
	DeriveCmd.AddCommand(deriveProtocolCmd)
	DeriveCmd.AddCommand(deriveInstitutionCmd)
	DeriveCmd.AddCommand(deriveSubjectCmd)
	DeriveCmd.AddCommand(deriveEnrollmentCmd)
}
