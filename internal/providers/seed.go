package providers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/letehaha/currency-rates/internal/apperrors"
	"github.com/letehaha/currency-rates/internal/core/domain"
)

// SeedSource is one bundled history file parsed into the same snapshot shape
// a live provider produces. The bootstrap path runs these through the regular
// normalize-fill-store pipeline, attributed to the real provider so later
// incremental syncs pick up from the bundle's last date.
type SeedSource struct {
	Provider   string
	Currencies []domain.Currency
	Snapshots  []domain.DailySnapshot
}

// LoadECBSeed parses a bundled eurofxref-hist.xml file.
func LoadECBSeed(path string) (SeedSource, error) {
	ecb := NewECB()

	data, err := os.ReadFile(path)
	if err != nil {
		return SeedSource{}, fmt.Errorf("failed to read ECB seed file %s: %w", path, err)
	}

	snapshots, err := parseECBXML(data, ecb.Name())
	if err != nil {
		return SeedSource{}, err
	}

	return SeedSource{
		Provider:   ecb.Name(),
		Currencies: ecb.Currencies(),
		Snapshots:  snapshots,
	}, nil
}

// LoadNBUSeed parses a bundled NBU exchange_site JSON dump.
func LoadNBUSeed(path string) (SeedSource, error) {
	nbu := NewNBU()

	data, err := os.ReadFile(path)
	if err != nil {
		return SeedSource{}, fmt.Errorf("failed to read NBU seed file %s: %w", path, err)
	}

	var records []nbuBatchRate
	if err := json.Unmarshal(data, &records); err != nil {
		return SeedSource{}, fmt.Errorf("%w: decode NBU seed file %s: %v", apperrors.ErrParse, path, err)
	}

	return SeedSource{
		Provider:   nbu.Name(),
		Currencies: nbu.Currencies(),
		Snapshots:  nbuSnapshots(records, nbu.Name()),
	}, nil
}
