package metrics

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"nyayadrishti/casemetrics/internal/frame"
	"nyayadrishti/casemetrics/internal/logging"
)

// Dataset is one load of the two source tables. Hearings may be nil when no
// hearing file is configured; views that need hearings then fail with
// ErrNoJoinKey.
type Dataset struct {
	Cases    *frame.Frame
	Hearings *frame.Frame
}

// LoadDataset reads the cases CSV and, when hearingsPath is non-empty, the
// hearings CSV concurrently.
func LoadDataset(ctx context.Context, log *zap.Logger, casesPath, hearingsPath string) (Dataset, error) {
	log = logging.OrNop(log)
	var ds Dataset

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := readCSVFile(ctx, casesPath)
		if err != nil {
			return fmt.Errorf("loading cases: %w", err)
		}
		ds.Cases = f
		return nil
	})
	if hearingsPath != "" {
		g.Go(func() error {
			f, err := readCSVFile(ctx, hearingsPath)
			if err != nil {
				return fmt.Errorf("loading hearings: %w", err)
			}
			ds.Hearings = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Dataset{}, err
	}

	fields := []zap.Field{zap.String("cases", casesPath), zap.Int("case_rows", ds.Cases.Len())}
	if ds.Hearings != nil {
		fields = append(fields, zap.String("hearings", hearingsPath), zap.Int("hearing_rows", ds.Hearings.Len()))
	}
	log.Debug("dataset loaded", fields...)
	return ds, nil
}

func readCSVFile(ctx context.Context, path string) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := frame.ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
