// components/demo/demo.go
//
// Demo app – one page exercising every selection mode.
//
//   1. a static bar chart (selection disabled),
//   2. a scatter chart that reruns on selection and echoes the points,
//   3. an ignore-mode chart whose selection is only read on the next run,
//   4. a callback chart inside the page that counts selections in state.
//
// The figures are described in YAML to keep the page readable.
package demo

import (
	"context"
	"fmt"

	"github.com/yanizio/adept-charts/internal/app"
	"github.com/yanizio/adept-charts/internal/chart"
	"github.com/yanizio/adept-charts/internal/figure"
	"github.com/yanizio/adept-charts/internal/runner"
)

// Name is the app's URL segment.
const Name = "demo"

const salesYAML = `
data:
  - type: bar
    name: revenue
    x: [Q1, Q2, Q3, Q4]
    y: [120, 150, 90, 210]
layout:
  title: Quarterly revenue
  height: 320
`

const pointsYAML = `
data:
  - type: scatter
    mode: markers
    x: [1, 2, 3, 4, 5, 6]
    y: [3, 1, 4, 1, 5, 9]
layout:
  dragmode: select
`

// selections counts callback invocations in session state.
const selections = "demo.selections"

// Script renders the demo page.
func Script(c *runner.Context) error {
	sales, err := figure.FromYAML([]byte(salesYAML))
	if err != nil {
		return err
	}
	points, err := figure.FromYAML([]byte(pointsYAML))
	if err != nil {
		return err
	}

	c.Text("## Static chart")
	if _, err := c.Chart(sales, chart.DefaultOptions()); err != nil {
		return err
	}

	c.Text("## Rerun on select")
	o := chart.DefaultOptions()
	o.OnSelect = chart.SelectRerun
	o.Key = "rerun"
	o.UseContainerWidth = true
	res, err := c.Chart(points, o)
	if err != nil {
		return err
	}
	if sel, ok := res.Value(); ok && !sel.IsEmpty() {
		c.Text(fmt.Sprintf("Selected: `%v`", sel.Payload()))
	}

	c.Text("## Ignore on select")
	o = chart.DefaultOptions()
	o.OnSelect = chart.SelectIgnore
	o.Key = "ignore"
	if _, err := c.Chart(points, o); err != nil {
		return err
	}

	c.Text("## Callback on select")
	state := c.State()
	o = chart.DefaultOptions()
	o.Key = "callback"
	o.OnSelect = func(context.Context, chart.Value) error {
		n, _ := state.Get(selections)
		count, _ := n.(int)
		state.Seed(selections, count+1)
		return nil
	}
	if _, err := c.Chart(points, o); err != nil {
		return err
	}
	n, _ := state.Get(selections)
	count, _ := n.(int)
	c.Text(fmt.Sprintf("Callback ran %d time(s).", count))
	return nil
}

// Register app at package init.
func init() { app.Register(Name, Script) }
