package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
)

////////////////////////////////////////////////////////////
// Snapshots
////////////////////////////////////////////////////////////

const configExportDN = "uni/fabric/configexp-defaultOneTime"

// saveConfigSnapshot triggers the controller's one-time config export.
func (c *Client) saveConfigSnapshot(description string) error {
	mo := NewMO("configExportP").
		Set("dn", configExportDN).
		Set("adminSt", "triggered").
		Set("descr", description)
	payload, err := mo.JSON()
	if err != nil {
		return err
	}
	if _, err := c.post("/api/mo", payload); err != nil {
		return errors.Wrap(err, "config snapshot")
	}
	log.Info("Saved controller config snapshot.")
	return nil
}

// BackupEntry holds everything read from the controller for one migration.
type BackupEntry struct {
	migration         Migration
	switchProfiles    []SwitchProfile
	interfaceProfiles []InterfaceProfile
	explicitGroups    []ExplicitGroup
	staticPaths       []StaticPath
}

func (e BackupEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"line":              e.migration.Line,
		"source":            e.migration.Source,
		"destination":       e.migration.Dest,
		"switchProfiles":    e.switchProfiles,
		"interfaceProfiles": e.interfaceProfiles,
		"explicitGroups":    e.explicitGroups,
		"staticPaths":       e.staticPaths,
	})
}

// Backup is the local record of the source configuration.
type Backup struct {
	controller string
	entries    []*BackupEntry
	timestamp  time.Time
}

func NewBackup(controller string) *Backup {
	return &Backup{controller: controller, timestamp: time.Now()}
}

func (b *Backup) add(m Migration) *BackupEntry {
	entry := &BackupEntry{migration: m}
	b.entries = append(b.entries, entry)
	return entry
}

func (b *Backup) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"controller": b.controller,
		"migrations": b.entries,
		"timestamp":  b.timestamp,
	})
}

func (b *Backup) write(fn string) error {
	prettyData, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(fn, prettyData, 0600); err != nil {
		return err
	}
	log.Info(fmt.Sprintf("Wrote backup of source objects to %s", fn))
	return nil
}
