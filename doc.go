/*
Package shift is a declarative trigger engine: configuration attached to an
element of a host document drives that element through a small set of named
states, in response to pointer events, timers, scroll position and state
changes cascading from other elements.

The engine manages trigger resolution, advancement policies, scroll-range
alignment, timer lifecycles and cascade propagation, while the host
environment owns the element tree itself: attribute access, class mutation,
geometry queries and event delegation are all behind the ports.Host
interface. This keeps the core embeddable against any DOM-like tree,
including the in-memory host used for testing and simulation.

# Concept

Each configured element gets its own engine instance holding an advancement
state machine. Trigger sources (click, hover, timers, scroll ranges, cascade
notifications) feed the machine; every successful transition applies the new
state class through the host and publishes a notification on the cascade
bus, which other engines may consume as their own trigger source.

# Usage

	package main

	import (
		"log"

		"github.com/aretw0/shift"
		"github.com/aretw0/shift/pkg/adapters/memory"
	)

	func main() {
		host := memory.NewHost(memory.PageSpec{
			Viewport: memory.ViewportSpec{Height: 800},
			Elements: []memory.ElementSpec{{
				ID:  "hero",
				Top: 100, Height: 200,
				Attributes: map[string]string{
					"states":        "idle active done",
					"trigger-click": "#hero",
				},
			}},
		})

		ctrl, err := shift.New(host)
		if err != nil {
			log.Fatal(err)
		}
		defer ctrl.Close()

		host.Click("hero") // hero advances: idle -> active
	}
*/
package shift
