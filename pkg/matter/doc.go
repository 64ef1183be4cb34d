// Package matter implements the Create Matter form controller: the cascading
// region → name → details chain, the name-picker and terms modals, and the
// terms-gated submission.
//
// A Controller is safe for concurrent use. Every operation runs under the
// controller lock; lookups run on their own goroutines and apply their results
// only when no newer upstream change (or reset) happened in the meantime.
// Callers that need settled state call Wait after an operation.
//
//	ctrl, err := matter.New(service, matter.WithSubmitter(store.Submitter(s)))
//	if err != nil { ... }
//	defer ctrl.Close()
//
//	_ = ctrl.Load(ctx)
//	_ = ctrl.ChangeRegion(ctx, "EU")
//	_ = ctrl.Wait(ctx)
//	_ = ctrl.SelectName(ctx, "Jane")
package matter
