package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kilianp07/mealmatch/config"
	"github.com/kilianp07/mealmatch/core/model"
)

var fleetFile string

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recipients and volunteers of the fleet file",
	RunE:  runFleetLs,
}

func init() {
	fleetLsCmd.Flags().StringVar(&fleetFile, "fleet", "", "fleet file, defaults to fleet_path from the configuration")
	fleetCmd.AddCommand(fleetLsCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	path, err := fleetPath(fleetFile)
	if err != nil {
		return err
	}
	fleet, err := config.LoadFleet(path)
	if err != nil {
		return err
	}
	recipients, volunteers := fleet.Populate()
	w := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(w, "Recipients:"); err != nil {
		return err
	}
	if err := recipientTable(w, recipients.List()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Volunteers:"); err != nil {
		return err
	}
	return volunteerTable(w, volunteers.List())
}

func volunteerTable(w io.Writer, vs []model.Volunteer) error {
	t := tablewriter.NewWriter(w)
	t.Header("ID", "Name", "Distance", "Available")
	for _, v := range vs {
		row := []string{v.ID, v.Name, strconv.FormatFloat(v.Distance, 'f', -1, 64), strconv.FormatBool(v.Available)}
		if err := t.Append(row); err != nil {
			return err
		}
	}
	return t.Render()
}
