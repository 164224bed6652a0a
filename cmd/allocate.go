package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kilianp07/mealmatch/config"
	"github.com/kilianp07/mealmatch/core/allocation"
	"github.com/kilianp07/mealmatch/core/model"
	"github.com/kilianp07/mealmatch/core/store"
	"github.com/kilianp07/mealmatch/infra/logger"
)

var allocateOpts struct {
	fleet    string
	batchID  string
	donorID  string
	location string
	quantity int
}

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Allocate one batch against a fleet file and print the result",
	RunE:  runAllocate,
}

func init() {
	f := allocateCmd.Flags()
	f.StringVar(&allocateOpts.fleet, "fleet", "", "fleet file, defaults to fleet_path from the configuration")
	f.StringVar(&allocateOpts.batchID, "batch-id", "", "batch identifier")
	f.StringVar(&allocateOpts.donorID, "donor-id", "", "donor identifier")
	f.StringVar(&allocateOpts.location, "location", "", "donor location")
	f.IntVarP(&allocateOpts.quantity, "quantity", "q", 0, "number of food units in the batch")
	rootCmd.AddCommand(allocateCmd)
}

// demoBatch is used when neither the fleet file nor the flags describe a batch.
func demoBatch() model.Batch {
	return model.Batch{ID: "1001", DonorID: "501", Quantity: 20, DonorLocation: "HostelCanteen"}
}

// fleetPath returns the --fleet flag or falls back to the configuration.
func fleetPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	if err := applyLogLevel(cfg.LogLevel); err != nil {
		return "", err
	}
	if cfg.FleetPath == "" {
		return "", fmt.Errorf("no fleet file: use --fleet or set fleet_path")
	}
	return cfg.FleetPath, nil
}

func batchFor(cmd *cobra.Command, fleet *config.Fleet) model.Batch {
	b := demoBatch()
	if fleet.Batch != nil {
		b = *fleet.Batch
	}
	flags := cmd.Flags()
	if flags.Changed("batch-id") {
		b.ID = allocateOpts.batchID
	}
	if flags.Changed("donor-id") {
		b.DonorID = allocateOpts.donorID
	}
	if flags.Changed("location") {
		b.DonorLocation = allocateOpts.location
	}
	if flags.Changed("quantity") {
		b.Quantity = allocateOpts.quantity
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	return b
}

func runAllocate(cmd *cobra.Command, args []string) error {
	if logLevel != "" {
		if err := logger.SetLevel(logLevel); err != nil {
			return err
		}
	}
	path, err := fleetPath(allocateOpts.fleet)
	if err != nil {
		return err
	}
	fleet, err := config.LoadFleet(path)
	if err != nil {
		return err
	}
	recipients, volunteers := fleet.Populate()
	mgr, err := allocation.NewManager(allocation.Greedy{}, recipients, volunteers, nil, 0, nil, nil, logger.New("allocate"))
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			logger.New("allocate").Errorf("manager close: %v", err)
		}
	}()

	batch := batchFor(cmd, fleet)
	res, err := mgr.Process(context.Background(), &batch)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), res, recipients)
}

func printResult(w io.Writer, res allocation.Result, recipients *store.RecipientStore) error {
	if _, err := fmt.Fprintf(w, "Batch %s from donor %s: %d/%d units allocated (%s, %s)\n",
		res.BatchID, res.DonorID, res.Original-res.Remaining, res.Original, res.Status, res.Reason); err != nil {
		return err
	}
	assignments := tablewriter.NewWriter(w)
	assignments.Header("Volunteer", "Recipient", "Quantity")
	for _, a := range res.Assignments {
		if err := assignments.Append([]string{a.VolunteerID, a.RecipientID, strconv.Itoa(a.Quantity)}); err != nil {
			return err
		}
	}
	if err := assignments.Render(); err != nil {
		return err
	}
	if res.Remaining > 0 {
		if _, err := fmt.Fprintf(w, "Batch %s pending: %d units left\n", res.BatchID, res.Remaining); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "Final recipient capacities:"); err != nil {
		return err
	}
	return recipientTable(w, recipients.List())
}

func recipientTable(w io.Writer, rs []model.Recipient) error {
	t := tablewriter.NewWriter(w)
	t.Header("ID", "Name", "Capacity", "Urgency", "Distance")
	for _, r := range rs {
		row := []string{r.ID, r.Name, strconv.Itoa(r.Capacity), strconv.Itoa(r.Urgency), strconv.FormatFloat(r.Distance, 'f', -1, 64)}
		if err := t.Append(row); err != nil {
			return err
		}
	}
	return t.Render()
}
