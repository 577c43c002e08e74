package types

import (
	"fmt"

	"github.com/blang/semver"
)

type Version struct {
	Version              string `json:"version"`
	StoreVersionRequired string `json:"storeVersionRequired"`
}

var CurrentVersion = Version{
	Version:              "1.3.0",
	StoreVersionRequired: "1.0.0",
}

// CheckStoreVersion refuses a local store written by a newer major version,
// or one older than StoreVersionRequired.
func CheckStoreVersion(written string) error {
	current := semver.MustParse(CurrentVersion.Version)
	required := semver.MustParse(CurrentVersion.StoreVersionRequired)
	store, err := semver.Parse(written)
	if err != nil {
		return fmt.Errorf("local store has an unreadable version %q: %v", written, err)
	}
	if store.Major > current.Major {
		return fmt.Errorf("local store was written by version %s, but this is version %s; you must upgrade to continue", written, CurrentVersion.Version)
	}
	if store.LT(required) {
		return fmt.Errorf("local store version %s is older than the required %s; delete it and log in again", written, CurrentVersion.StoreVersionRequired)
	}
	return nil
}
