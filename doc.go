// Package reconcile compares two snapshots of a JSON-like tree, the
// original and the target, and reports what changed to declarative
// handlers.
//
// Sort handlers select lists and report element removals, moves and
// additions, correlating lists through a signature key on their parent and
// elements through an item signature. Merge handlers select maps and report
// a merge patch when their relevant keys changed. A Session runs the
// handlers in order, dispatching events one at a time, and keeps a
// validation overlay of the target with root addresses, schema errors and
// dirty flags.
//
//	session := reconcile.NewSession(
//		reconcile.WithSortHandlers(reconcile.SortHandler{
//			Handler: reconcile.Handler{
//				Name:     "items",
//				Search:   reconcile.MustRegex(`^items$`),
//				Callback: callback,
//			},
//			ItemSignature: "id",
//		}),
//	)
//	session.Assign(ctx, original)
//	// edit the target, then
//	report, err := session.Persist(ctx)
package reconcile
