// Package binding connects one shared model value to the widgets that edit its
// fields.
//
// A [Root] owns the only mutable copy of the model inside a [Cell] and the
// latest validation [Report]. Widgets never touch the model directly; they
// receive a [Handle], a disposable view made of a [Lens] (how to read and write
// one field) and a snapshot of that field's value and validation outcome.
//
// Writing through a handle runs one synchronous pipeline:
//
//	handle.Set(v)
//	  -> Cell.Commit(lens.With)   // version + 1, or nothing on a fault
//	  -> validator(model)         // whole model, rules may be cross-field
//	  -> report replaced
//	  -> listeners notified       // host schedules a re-render
//
// The handle itself is not updated. The next render materialises fresh handles
// from the root, which observe the new value together with its new outcome.
//
// Handles over composite fields derive child handles with [Child], [Item] and
// [Elem]; the child carries the composed lens, so its writes still land in the
// root's cell.
//
// Nothing in this package locks. A root belongs to one logical thread (the UI
// event loop, or a host that holds a per-form lock while it edits).
//
// Example:
//
//	root := binding.New(models.Profile{}, rules.For[models.Profile](),
//	    binding.WithName("profile"),
//	    binding.WithListener(func(c binding.Change) { element.MarkNeedsBuild() }),
//	)
//	name := models.BindProfileName(root.Handle())
//	if err := name.SetRaw("Alice", binding.Text); err != nil {
//	    // parse fault: model unchanged
//	}
//	name = models.BindProfileName(root.Handle()) // re-materialise for the next render
package binding
