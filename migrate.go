package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

////////////////////////////////////////////////////////////
// Migrator
////////////////////////////////////////////////////////////

const (
	outcomeCreated = "created"
	outcomePlanned = "planned"
	outcomeExists  = "exists"
	outcomeFailed  = "failed"
)

var errMigrationFailed = errors.New("migration finished with errors")

// Result is the outcome of one object write, or of a whole migration line
// when class is empty.
type Result struct {
	line    int
	class   string
	dn      string
	outcome string
	err     error
}

type Migrator struct {
	client  *Client
	opts    *Options
	backup  *Backup
	results []Result
}

func NewMigrator(client *Client, opts *Options) *Migrator {
	return &Migrator{
		client: client,
		opts:   opts,
		backup: NewBackup(opts.IP),
	}
}

func (m *Migrator) record(r Result) {
	m.results = append(m.results, r)
}

func (m *Migrator) failed() bool {
	for _, r := range m.results {
		if r.outcome == outcomeFailed {
			return true
		}
	}
	return false
}

// apply commits mo at target. A failed commit is logged and recorded;
// it does not stop the migration.
func (m *Migrator) apply(line int, mo *MO, dn string, target string) {
	result := Result{line: line, class: mo.class, dn: dn, outcome: outcomeCreated}
	if m.opts.DryRun {
		result.outcome = outcomePlanned
	}
	payload, err := mo.JSON()
	if err == nil {
		err = m.client.commit(target, payload)
	}
	if err != nil {
		result.outcome = outcomeFailed
		result.err = err
		log.WithFields(logrus.Fields{
			"class": mo.class,
			"dn":    dn,
		}).Error(err)
	} else {
		log.WithFields(logrus.Fields{
			"class":  mo.class,
			"dn":     dn,
			"result": result.outcome,
		}).Info(fmt.Sprintf("%s %s", mo.class, result.outcome))
	}
	m.record(result)
}

func (m *Migrator) applyMO(line int, mo *MO) {
	dn := mo.Attr("dn")
	m.apply(line, mo, dn, dn)
}

// Run migrates each line in order. A read error aborts only its own line;
// a lost session fails every line not yet migrated.
func (m *Migrator) Run(migrations []Migration) error {
	if !m.opts.SkipSnapshot && !m.opts.DryRun {
		if err := m.client.saveConfigSnapshot("Fabric migration pre-change snapshot"); err != nil {
			log.Error(err)
			log.Warn("Continuing without a controller snapshot.")
		}
	}
	for i, migration := range migrations {
		if err := m.client.refreshIfStale(); err != nil {
			log.Error(err)
			for _, skipped := range migrations[i:] {
				m.record(Result{line: skipped.Line, outcome: outcomeFailed, err: err})
			}
			break
		}
		if err := m.migrate(migration); err != nil {
			log.WithFields(logrus.Fields{
				"line":        migration.Line,
				"source":      migration.Source,
				"destination": migration.Dest,
			}).Error(err)
			m.record(Result{line: migration.Line, outcome: outcomeFailed, err: err})
			continue
		}
		log.WithFields(logrus.Fields{
			"source":      migration.Source,
			"destination": migration.Dest,
		}).Info("Fabric access migration complete")
	}
	if m.opts.Backup != "" {
		if err := m.backup.write(m.opts.Backup); err != nil {
			log.Error(err)
		}
	}
	if m.failed() {
		return errMigrationFailed
	}
	return nil
}

func (m *Migrator) migrate(mg Migration) error {
	c := m.client
	log.WithFields(logrus.Fields{
		"line":        mg.Line,
		"source":      mg.Source,
		"destination": mg.Dest,
	}).Info("Starting migration")

	pods, err := c.nodePods(mg)
	if err != nil {
		return err
	}
	entry := m.backup.add(mg)

	switchProfiles, err := c.getSwitchProfiles()
	if err != nil {
		return err
	}
	interfaceProfiles, err := c.getInterfaceProfiles()
	if err != nil {
		return err
	}
	staticPaths, err := c.getStaticPaths(mg)
	if err != nil {
		return err
	}
	entry.staticPaths = staticPaths

	seenSwitch := make(map[string]bool)
	seenInterface := make(map[string]bool)
	for i, dest := range mg.Dest {
		sources := profilesFor(switchProfiles, mg.Source[i])
		if len(sources) == 0 {
			log.WithFields(logrus.Fields{
				"node": mg.Source[i],
			}).Warn("No switch profile covers source node")
		}
		for _, existing := range profilesFor(switchProfiles, dest) {
			log.WithFields(logrus.Fields{
				"node":    dest,
				"profile": existing.name,
			}).Warn("Destination node already has a switch profile")
		}
		for _, profile := range sources {
			if !seenSwitch[profile.dn] {
				seenSwitch[profile.dn] = true
				entry.switchProfiles = append(entry.switchProfiles, profile)
			}
		}
		m.applyMO(mg.Line, newSwitchProfileMO(m.opts, dest, policyGroup(sources)))

		selected := interfaceProfilesFor(interfaceProfiles, sources)
		for _, profile := range selected {
			if !seenInterface[profile.dn] {
				seenInterface[profile.dn] = true
				entry.interfaceProfiles = append(entry.interfaceProfiles, profile)
			}
		}
		profile, conflicts := newInterfaceProfileMO(m.opts.interfaceProfileName(dest), selected)
		for _, rn := range conflicts {
			m.record(Result{
				line:    mg.Line,
				class:   "infraHPortS",
				dn:      profile.Attr("dn") + "/" + rn,
				outcome: outcomeFailed,
				err:     errSelectorConflict,
			})
		}
		m.applyMO(mg.Line, profile)
	}

	if mg.VPC() {
		groups, err := c.getExplicitGroups()
		if err != nil {
			return err
		}
		entry.explicitGroups = groups
		if group, ok := groupFor(groups, mg.Dest); ok {
			log.WithFields(logrus.Fields{
				"name": group.name,
				"id":   group.id,
			}).Warn("Destination nodes already form a VPC protection group")
			m.record(Result{line: mg.Line, class: "fabricExplicitGEp", dn: group.dn, outcome: outcomeExists})
		} else {
			name := m.opts.VPCGroupPrefix + mg.DestPair()
			m.applyMO(mg.Line, newExplicitGroupMO(name, lowestFreeGroupID(groups), mg.Dest, pods))
		}
	}

	rewriter := newPathRewriter(mg, pods)
	for _, path := range staticPaths {
		dn, mo := path.Migrated(rewriter)
		m.apply(mg.Line, mo, dn, parentDN(dn))
	}
	return nil
}

// report writes one row per recorded result.
func (m *Migrator) report(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Line", "Class", "DN", "Result"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	rows := make([][]string, 0, len(m.results))
	for _, r := range m.results {
		outcome := r.outcome
		if r.err != nil {
			outcome = fmt.Sprintf("%s: %v", r.outcome, r.err)
		}
		class := r.class
		if class == "" {
			class = "-"
		}
		rows = append(rows, []string{fmt.Sprint(r.line), class, r.dn, outcome})
	}
	table.AppendBulk(rows)
	table.Render()
}
