// Package node implements the Enlyst action node.
//
// A Node owns the parameter table of the three Enlyst resources (project, lead,
// referral) and dispatches each input item to the matching REST call through an
// operation registry. Parameters are resolved per item: display rules decide
// which properties apply, defaults fill the gaps and the result is validated
// before anything is sent.
//
//	n := node.New(c, node.WithContinueOnFail(true))
//	out, err := n.Execute(ctx, items, node.StaticParams{
//		"resource":  "lead",
//		"operation": "getProjectData",
//		"projectId": "p1",
//	})
package node
