package shift_test

import (
	"fmt"
	"log"

	"github.com/aretw0/shift"
	"github.com/aretw0/shift/pkg/adapters/memory"
)

// ExampleNew demonstrates driving a click-advanced element on the in-memory
// host. Real deployments swap the host for an adapter over an actual page
// environment.
func ExampleNew() {
	// 1. Describe the page: one accordion panel cycling through two states.
	host := memory.NewHost(memory.PageSpec{
		Viewport: memory.ViewportSpec{Height: 800},
		Elements: []memory.ElementSpec{
			{
				ID:     "faq",
				Top:    200,
				Height: 120,
				Attributes: map[string]string{
					"states":        "collapsed expanded",
					"advancement":   "toggle-initial",
					"trigger-click": "#faq",
				},
			},
		},
	})

	// 2. Initialize a controller; it compiles every configured element and
	// applies its initial state class.
	c, err := shift.New(host)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	// 3. Interact with the page.
	host.Click("faq")
	st, _ := c.StateOf("faq")
	fmt.Println("after click:", st.State)

	host.Click("faq")
	st, _ = c.StateOf("faq")
	fmt.Println("after second click:", st.State)

	// Output:
	// after click: expanded
	// after second click: collapsed
}

// ExampleNew_cascade shows one element reacting to another element's state
// changes through the cascade bus.
func ExampleNew_cascade() {
	host := memory.NewHost(memory.PageSpec{
		Elements: []memory.ElementSpec{
			{
				ID:      "lead",
				Classes: []string{"headline"},
				Attributes: map[string]string{
					"states":        "dim lit",
					"trigger-click": "#lead",
				},
			},
			{
				ID: "follower",
				Attributes: map[string]string{
					"states":          "dim lit",
					"trigger-cascade": ".headline",
				},
			},
		},
	})

	c, err := shift.New(host)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	host.Click("lead")
	lead, _ := c.StateOf("lead")
	follower, _ := c.StateOf("follower")
	fmt.Println("lead:", lead.State)
	fmt.Println("follower:", follower.State)

	// Output:
	// lead: lit
	// follower: lit
}
