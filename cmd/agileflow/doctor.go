package main

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agileflowhq/agileflow/internal/bus"
	"github.com/agileflowhq/agileflow/internal/config"
	"github.com/agileflowhq/agileflow/internal/fingerprint"
	"github.com/agileflowhq/agileflow/internal/index"
	"github.com/agileflowhq/agileflow/internal/storage"
)

// doctorCheck is one health probe's outcome. Degraded states (missing
// ledgers) are warnings, not failures: a fresh project has none of them.
type doctorCheck struct {
	name    string
	ok      bool
	warning bool
	detail  string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of the project's ledgers and bus",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			mu     sync.Mutex
			checks []doctorCheck
		)
		report := func(c doctorCheck) {
			mu.Lock()
			defer mu.Unlock()
			checks = append(checks, c)
		}

		// The probes are independent reads; run them concurrently.
		var g errgroup.Group
		g.Go(func() error { report(checkStatusLedger()); return nil })
		g.Go(func() error { report(checkIdeationIndex()); return nil })
		g.Go(func() error { report(checkMetadata()); return nil })
		g.Go(func() error { report(checkBus()); return nil })
		_ = g.Wait()

		failed := false
		for _, c := range orderChecks(checks) {
			mark := color.GreenString("✓")
			if c.warning {
				mark = color.YellowString("⚠")
			} else if !c.ok {
				mark = color.RedString("✗")
				failed = true
			}
			fmt.Printf("%s %-16s %s\n", mark, c.name, c.detail)
		}
		if failed {
			os.Exit(1)
		}
		return nil
	},
}

func checkStatusLedger() doctorCheck {
	doc, err := storage.ReadStatusDocument(newStore(), rootDir)
	if err != nil {
		return doctorCheck{name: "status.json", ok: true, warning: true, detail: "absent (no stories yet)"}
	}
	return doctorCheck{name: "status.json", ok: true,
		detail: fmt.Sprintf("%d stories", len(doc.Stories))}
}

func checkIdeationIndex() doctorCheck {
	ix := index.New(newStore(), fingerprint.DefaultConfig())
	doc, err := ix.Load(rootDir)
	if err != nil {
		return doctorCheck{name: "ideation-index", detail: err.Error()}
	}
	if len(doc.Ideas) == 0 {
		return doctorCheck{name: "ideation-index", ok: true, warning: true, detail: "empty"}
	}
	if doc.SchemaVersion != index.SchemaVersion {
		return doctorCheck{name: "ideation-index", ok: true, warning: true,
			detail: fmt.Sprintf("schema %s (expected %s)", doc.SchemaVersion, index.SchemaVersion)}
	}
	return doctorCheck{name: "ideation-index", ok: true,
		detail: fmt.Sprintf("%d ideas, next id %d", len(doc.Ideas), doc.NextID)}
}

func checkMetadata() doctorCheck {
	meta, err := config.LoadMetadata(newStore(), rootDir)
	if err != nil {
		return doctorCheck{name: "metadata", detail: err.Error()}
	}
	detail := fmt.Sprintf("%d validation pairs, %d gate hooks",
		len(meta.ValidationPairs), len(meta.QualityGates))
	if config.AgentTeamsEnabled(meta) {
		detail += ", agent teams enabled"
	}
	return doctorCheck{name: "metadata", ok: true, detail: detail}
}

func checkBus() doctorCheck {
	msgs, err := bus.TailMessages(rootDir, bus.DefaultScanDepth)
	if err != nil {
		return doctorCheck{name: "bus", detail: err.Error()}
	}
	if len(msgs) == 0 {
		return doctorCheck{name: "bus", ok: true, warning: true, detail: "no messages"}
	}
	return doctorCheck{name: "bus", ok: true,
		detail: fmt.Sprintf("%d recent messages, last at %s", len(msgs), msgs[0].At)}
}

// orderChecks puts the probes in a stable display order regardless of
// completion order.
func orderChecks(checks []doctorCheck) []doctorCheck {
	order := map[string]int{"status.json": 0, "ideation-index": 1, "metadata": 2, "bus": 3}
	out := make([]doctorCheck, len(checks))
	copy(out, checks)
	sort.Slice(out, func(i, j int) bool { return order[out[i].name] < order[out[j].name] })
	return out
}
