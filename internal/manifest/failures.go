package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nexusmusic/nexusdl/internal/models"
	"github.com/nexusmusic/nexusdl/internal/shared"
)

// FailuresFileName is the canonical failure list file name inside a run
// directory.
const FailuresFileName = "failures.json"

// LoadFailures reads a failure list from disk.
func LoadFailures(path string) ([]models.Failure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	var failures []models.Failure
	if err := json.Unmarshal(data, &failures); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidManifest, path, err)
	}

	return failures, nil
}

// SaveFailures persists a failure list, or removes the file when the list
// is empty. Absence of the file implies full success for the run. Returns
// true when an existing file was removed.
func SaveFailures(path string, failures []models.Failure) (bool, error) {
	if len(failures) == 0 {
		if _, err := os.Stat(path); err == nil {
			if err := os.Remove(path); err != nil {
				return false, fmt.Errorf("%w: %v", shared.ErrStorage, err)
			}
			return true, nil
		}
		return false, nil
	}

	data, err := shared.MarshalJSON(failures, true)
	if err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	return false, nil
}
