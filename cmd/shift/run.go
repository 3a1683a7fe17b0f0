package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/shift"
	"github.com/aretw0/shift/pkg/adapters/memory"
	"github.com/aretw0/shift/pkg/domain"
	"github.com/aretw0/shift/pkg/ports"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate a page timeline and print state changes",
	Long: `Builds the in-memory host from the page definition, runs the trigger
engine, replays the scripted timeline (clicks, hovers, scrolls) and prints
every state change as it happens.`,
	Run: func(cmd *cobra.Command, args []string) {
		pagePath, _ := cmd.Flags().GetString("page")
		settle, _ := cmd.Flags().GetDuration("settle")

		spec, err := memory.LoadPage(pagePath)
		if err != nil {
			fmt.Printf("Error loading page: %v\n", err)
			os.Exit(1)
		}
		host := memory.NewHost(*spec)

		ctrl, err := shift.New(host, shift.WithLogger(newLogger(cmd)))
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}
		defer ctrl.Close()

		start := time.Now()
		cancel, err := ctrl.Bus().Subscribe(ports.SubscribeAll, func(evt *domain.StateChangedEvent) {
			fmt.Printf("%8s  %s -> %s (%s)\n", time.Since(start).Round(time.Millisecond), evt.ElementID, evt.State, evt.Source)
		})
		if err != nil {
			fmt.Printf("Error subscribing to events: %v\n", err)
			os.Exit(1)
		}
		defer cancel()

		steps := make([]memory.TimelineStep, len(spec.Timeline))
		copy(steps, spec.Timeline)
		sort.SliceStable(steps, func(i, j int) bool { return steps[i].At < steps[j].At })

		for _, step := range steps {
			if wait := step.At - time.Since(start); wait > 0 {
				time.Sleep(wait)
			}
			applyStep(host, step)
		}

		// Let pending delays, debounce windows and timers drain.
		time.Sleep(settle)

		fmt.Println("--- final states ---")
		for _, status := range ctrl.Elements() {
			fmt.Printf("%s: %s\n", status.ID, status.State)
		}
	},
}

func applyStep(host *memory.Host, step memory.TimelineStep) {
	switch step.Action {
	case memory.ActionClick:
		host.Click(step.Target)
	case memory.ActionHoverEnter:
		host.HoverEnter(step.Target)
	case memory.ActionHoverLeave:
		host.HoverLeave(step.Target)
	case memory.ActionScroll:
		host.ScrollTo(step.To)
	case memory.ActionResize:
		host.Resize(step.To)
	case memory.ActionWait, "":
		// Nothing to do; the At offset already waited.
	default:
		fmt.Printf("unknown timeline action %q skipped\n", step.Action)
	}
}

func init() {
	runCmd.Flags().Duration("settle", 500*time.Millisecond, "How long to wait for pending timers after the timeline ends")
	rootCmd.AddCommand(runCmd)
}
