package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	blobs3 "herd-weight-tracker/internal/adapters/blob/s3"
	"herd-weight-tracker/internal/adapters/ingest/amqpin"
	"herd-weight-tracker/internal/adapters/storage/sheet"
	"herd-weight-tracker/internal/domain/weights"
)

func runWeigh(ctx context.Context, a *app, args []string) error {
	fs := subFlags("weigh")
	id := fs.String("id", "", "animal id")
	kg := fs.Float64("kg", 0, "weight in kg")
	atRaw := fs.String("at", "", "timestamp (default now)")
	if err := parseSub(fs, args); err != nil {
		return err
	}

	var at time.Time
	if strings.TrimSpace(*atRaw) != "" {
		t, err := weights.ParseTimestamp(*atRaw, a.svc.Location())
		if err != nil {
			return invalidInvocationf("-at must be YYYY-MM-DD HH:MM:SS or RFC3339")
		}
		at = t
	}

	o, err := a.svc.Upsert(ctx, *id, at, *kg)
	if err != nil {
		if errors.Is(err, weights.ErrInvalidInput) || errors.Is(err, weights.ErrInvalidWeight) {
			return invalidInvocationf("%v", err)
		}
		return err
	}

	if a.asJSON {
		return a.printJSON(observationJSON(o))
	}
	_, err = fmt.Fprintf(a.out, "Logged %skg for %s at %s\n",
		weights.FormatWeight(o.WeightKg), o.AnimalID, weights.FormatTimestamp(o.At))
	return err
}

func runAnimals(ctx context.Context, a *app, args []string) error {
	if err := parseSub(subFlags("animals"), args); err != nil {
		return err
	}
	ids, err := a.svc.ListAnimalIDs(ctx)
	if err != nil {
		return err
	}
	if a.asJSON {
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			out = append(out, string(id))
		}
		return a.printJSON(out)
	}
	for _, id := range ids {
		fmt.Fprintln(a.out, id)
	}
	return nil
}

func runTimestamps(ctx context.Context, a *app, args []string) error {
	if err := parseSub(subFlags("timestamps"), args); err != nil {
		return err
	}
	ts, err := a.svc.Timestamps(ctx)
	if err != nil {
		return err
	}
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, weights.FormatTimestamp(t))
	}
	if a.asJSON {
		return a.printJSON(out)
	}
	for _, t := range out {
		fmt.Fprintln(a.out, t)
	}
	return nil
}

func runLookup(ctx context.Context, a *app, args []string) error {
	fs := subFlags("lookup")
	id := fs.String("id", "", "animal id")
	atRaw := fs.String("at", "", "timestamp")
	if err := parseSub(fs, args); err != nil {
		return err
	}
	at, err := weights.ParseTimestamp(*atRaw, a.svc.Location())
	if err != nil {
		return invalidInvocationf("-at must be YYYY-MM-DD HH:MM:SS or RFC3339")
	}

	kg, err := a.svc.WeightAt(ctx, *id, at)
	if err != nil {
		if errors.Is(err, weights.ErrInvalidInput) {
			return invalidInvocationf("%v", err)
		}
		return err
	}

	o := weights.Observation{AnimalID: weights.NormalizeAnimalID(*id), At: at, WeightKg: kg}
	if a.asJSON {
		return a.printJSON(observationJSON(o))
	}
	_, err = fmt.Fprintf(a.out, "%s at %s: %skg\n", o.AnimalID, weights.FormatTimestamp(at), weights.FormatWeight(kg))
	return err
}

func runHistory(ctx context.Context, a *app, args []string) error {
	fs := subFlags("history")
	id := fs.String("id", "", "animal id")
	if err := parseSub(fs, args); err != nil {
		return err
	}

	rep, err := a.facade.AnimalReport(ctx, *id)
	if err != nil {
		return err
	}
	series, err := a.svc.SeriesFor(ctx, *id)
	if err != nil {
		return err
	}

	if a.asJSON {
		obs := make([]map[string]any, 0, len(series))
		for _, o := range series {
			obs = append(obs, observationJSON(o))
		}
		return a.printJSON(map[string]any{
			"animal_id":           string(rep.AnimalID),
			"observations":        obs,
			"current_weight_kg":   rep.CurrentWeight,
			"mean_weight_kg":      rep.MeanWeight,
			"gain_status":         string(rep.GainStatus),
			"gain_per_day":        rep.GainPerDay,
			"gain_days":           rep.GainDays,
			"horizon_days":        rep.HorizonDays,
			"projected_weight_kg": rep.Projected,
		})
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "TAKEN AT\tWEIGHT (kg)\n")
	for _, o := range series {
		fmt.Fprintf(tw, "%s\t%s\n", weights.FormatTimestamp(o.At), weights.FormatWeight(o.WeightKg))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nAnimal %s: %d observations, current %.2fkg, mean %.2fkg\n",
		rep.AnimalID, rep.Observations, rep.CurrentWeight, rep.MeanWeight)
	if rep.GainPerDay == nil {
		fmt.Fprintf(a.out, "GMD: n/a (%s)\n", rep.GainStatus)
		return nil
	}
	fmt.Fprintf(a.out, "GMD: %.3f kg/day over %d days\n", *rep.GainPerDay, rep.GainDays)
	fmt.Fprintf(a.out, "Projected in %d days: %.2fkg\n", rep.HorizonDays, *rep.Projected)
	return nil
}

func runHerd(ctx context.Context, a *app, args []string) error {
	if err := parseSub(subFlags("herd"), args); err != nil {
		return err
	}
	rep, err := a.facade.HerdReport(ctx)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(map[string]any{
			"animals":                rep.Animals,
			"weighed_animals":        rep.WeighedAnimals,
			"gain_animals":           rep.GainAnimals,
			"mean_current_weight_kg": rep.MeanCurrentWeight,
			"mean_gain_per_day":      rep.MeanGainPerDay,
			"horizon_days":           rep.HorizonDays,
			"projected_weight_kg":    rep.ProjectedWeight,
		})
	}

	fmt.Fprintf(a.out, "Animals: %d (weighed %d, with GMD %d)\n", rep.Animals, rep.WeighedAnimals, rep.GainAnimals)
	fmt.Fprintf(a.out, "Mean current weight: %s\n", optional(rep.MeanCurrentWeight, "%.2fkg"))
	fmt.Fprintf(a.out, "Mean GMD: %s\n", optional(rep.MeanGainPerDay, "%.3f kg/day"))
	fmt.Fprintf(a.out, "Projected in %d days: %s\n", rep.HorizonDays, optional(rep.ProjectedWeight, "%.2fkg"))
	return nil
}

func runSimulate(ctx context.Context, a *app, args []string) error {
	fs := subFlags("simulate")
	id := fs.String("id", "", "animal id")
	target := fs.Float64("target", 0, "target weight in kg")
	priceRaw := fs.String("price", "0", "price per arroba (15 kg)")
	if err := parseSub(fs, args); err != nil {
		return err
	}
	price, err := decimal.NewFromString(*priceRaw)
	if err != nil || price.IsNegative() {
		return invalidInvocationf("-price must be a non-negative decimal")
	}
	if *target <= 0 {
		return invalidInvocationf("-target must be positive")
	}

	sim, err := a.facade.SimulateGoal(ctx, *id, *target, price)
	if err != nil {
		return err
	}

	if a.asJSON {
		return a.printJSON(map[string]any{
			"animal_id":         string(sim.AnimalID),
			"current_weight_kg": sim.CurrentWeight,
			"target_weight_kg":  sim.TargetWeight,
			"gain_per_day":      sim.GainPerDay,
			"gain_source":       string(sim.GainSource),
			"days":              sim.Days,
			"estimated_date":    sim.EstimatedDate.Format("2006-01-02"),
			"value":             sim.Value.StringFixed(2),
		})
	}
	fmt.Fprintf(a.out, "Animal %s: %.2fkg -> %.2fkg at %.3f kg/day (%s)\n",
		sim.AnimalID, sim.CurrentWeight, sim.TargetWeight, sim.GainPerDay, sim.GainSource)
	fmt.Fprintf(a.out, "Days: %d, estimated date: %s\n", sim.Days, sim.EstimatedDate.Format("2006-01-02"))
	fmt.Fprintf(a.out, "Value: %s\n", sim.Value.StringFixed(2))
	return nil
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := subFlags("export")
	out := fs.String("o", "", "output .xlsx path")
	if err := parseSub(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*out) == "" {
		return invalidInvocationf("-o is required")
	}

	g, err := a.repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := sheet.Export(g, f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Exported %d animals to %s\n", len(g.Rows), *out)
	return err
}

func runBackup(ctx context.Context, a *app, args []string) error {
	if err := parseSub(subFlags("backup"), args); err != nil {
		return err
	}
	if a.cfg.Backup.Bucket == "" {
		return invalidInvocationf("backup.bucket (BACKUP_S3_BUCKET) is required")
	}

	g, err := a.repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := sheet.Export(g, &buf); err != nil {
		return err
	}

	up, err := blobs3.New(ctx, a.cfg.Backup)
	if err != nil {
		return err
	}
	key, err := up.Upload(ctx, buf.Bytes())
	if err != nil {
		return err
	}
	a.log.Info("backup uploaded", map[string]any{"bucket": a.cfg.Backup.Bucket, "key": key, "bytes": buf.Len()})
	_, err = fmt.Fprintf(a.out, "s3://%s/%s\n", a.cfg.Backup.Bucket, key)
	return err
}

func runConsume(ctx context.Context, a *app, args []string) error {
	if err := parseSub(subFlags("consume"), args); err != nil {
		return err
	}
	if a.cfg.AMQP.DSN == "" {
		return invalidInvocationf("amqp.dsn (AMQP_DSN) is required")
	}
	return amqpin.NewSubscriber(a.cfg.AMQP, a.svc, a.log).Run(ctx)
}

func observationJSON(o weights.Observation) map[string]any {
	return map[string]any{
		"animal_id": string(o.AnimalID),
		"taken_at":  weights.FormatTimestamp(o.At),
		"weight_kg": o.WeightKg,
	}
}

func optional(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}
