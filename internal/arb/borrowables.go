package arb

import (
	"encoding/json"
	"fmt"
	"os"

	"routeScope/internal/model"
)

type borrowablesFile struct {
	Borrowables []model.Borrowable `json:"borrowables"`
}

// LoadBorrowables reads and validates the borrowables config file.
func LoadBorrowables(path string) ([]model.Borrowable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read borrowables: %w", err)
	}

	var file borrowablesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse borrowables: %w", err)
	}
	if len(file.Borrowables) == 0 {
		return nil, fmt.Errorf("borrowables file %s lists no tokens", path)
	}

	seen := make(map[string]struct{}, len(file.Borrowables))
	for _, borrowable := range file.Borrowables {
		if borrowable.Address == "" {
			return nil, fmt.Errorf("borrowable with empty address in %s", path)
		}
		if borrowable.OracleKey == "" {
			return nil, fmt.Errorf("borrowable %s has no oracle key", borrowable.Address)
		}
		if _, dup := seen[borrowable.Address]; dup {
			return nil, fmt.Errorf("duplicate borrowable %s", borrowable.Address)
		}
		seen[borrowable.Address] = struct{}{}
	}

	return file.Borrowables, nil
}
